// Package service runs single sweep passes on behalf of callers that are not
// the CLI sweep loop, such as the HTTP server.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/agbru/mfmprime/internal/config"
	apperrors "github.com/agbru/mfmprime/internal/errors"
	"github.com/agbru/mfmprime/internal/orchestration"
	"github.com/agbru/mfmprime/internal/sequence"
	"github.com/agbru/mfmprime/pkg/models"
)

// ErrMaxValueExceeded is returned when the requested sequence length exceeds
// the service limit.
var ErrMaxValueExceeded = errors.New("maximum n value exceeded")

// SweepRequest describes one pass. Zero-valued fields fall back to the
// service configuration.
type SweepRequest struct {
	// K is the number of correction coefficients. Required.
	K int
	// NMax is the sequence length.
	NMax int
	// Policy names the coefficient policy.
	Policy string
	// Seed feeds the seeded policy.
	Seed uint64
}

// Service defines the interface for sweep operations.
type Service interface {
	Sweep(ctx context.Context, req SweepRequest) (models.SweepRecord, error)
}

// SweepService implements Service on top of orchestration.RunPass.
// Base sequences are shared between requests through an LRU cache, so the
// reported TimeSec of a pass served from the cache excludes their
// construction.
type SweepService struct {
	cfg    config.AppConfig
	maxN   int
	logger zerolog.Logger
	bases  *sequence.BaseCache
}

var _ Service = (*SweepService)(nil)

// NewSweepService creates a new SweepService.
//
// Parameters:
//   - cfg: The base configuration (basis, engine, tester, defaults).
//   - maxN: The largest sequence length a request may ask for.
//   - logger: Receives one Info event per completed pass.
func NewSweepService(cfg config.AppConfig, maxN int, logger zerolog.Logger) *SweepService {
	svc := &SweepService{cfg: cfg, maxN: maxN, logger: logger}
	if cache, err := sequence.NewBaseCache(sequence.DefaultCacheEntries); err == nil {
		svc.bases = cache
	} else {
		logger.Warn().Err(err).Msg("base sequence cache disabled")
	}
	return svc
}

// CacheStats reports the base sequence cache counters.
func (s *SweepService) CacheStats() sequence.CacheStats {
	if s.bases == nil {
		return sequence.CacheStats{}
	}
	return s.bases.Stats()
}

// Resolve merges a request with the service defaults and checks its bounds.
func (s *SweepService) Resolve(req SweepRequest) (config.AppConfig, error) {
	cfg := s.cfg
	if req.NMax > 0 {
		cfg.NMax = req.NMax
	}
	if req.Policy != "" {
		cfg.Policy = req.Policy
	}
	if req.Seed != 0 {
		cfg.Seed = req.Seed
	}
	if cfg.NMax > s.maxN {
		return cfg, fmt.Errorf("%w: %d > %d", ErrMaxValueExceeded, cfg.NMax, s.maxN)
	}
	if cfg.NMax < 2 {
		return cfg, apperrors.NewValidationError("n", "must be at least 2", cfg.NMax)
	}
	if req.K < 1 || req.K > cfg.NMax {
		return cfg, apperrors.NewValidationError("k", fmt.Sprintf("must be in [1, %d]", cfg.NMax), req.K)
	}
	cfg.KValues = []int{req.K}
	return cfg, nil
}

// Sweep runs one pass for req.K and returns its record.
func (s *SweepService) Sweep(ctx context.Context, req SweepRequest) (models.SweepRecord, error) {
	cfg, err := s.Resolve(req)
	if err != nil {
		return models.SweepRecord{}, err
	}
	deps, err := orchestration.NewDependencies(cfg, s.logger)
	if err != nil {
		return models.SweepRecord{}, err
	}
	if s.bases != nil {
		deps.Bases = s.bases.BaseSequence
	}
	rec, err := orchestration.RunPass(ctx, cfg.NMax, req.K, deps, nil)
	if err != nil {
		return models.SweepRecord{}, apperrors.NewSweepError(req.K, err)
	}
	s.logger.Info().
		Int("k", rec.K).
		Int("n", cfg.NMax).
		Str("policy", cfg.Policy).
		Int("prime_count", rec.PrimeCount).
		Float64("time_sec", rec.TimeSec).
		Msg("service sweep complete")
	return rec, nil
}
