// Package calibration measures where the DCT transform engine overtakes the
// direct correction engine on the current machine and persists the result.
package calibration

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sys/cpu"
)

const (
	// CurrentProfileVersion changes whenever the profile layout does.
	CurrentProfileVersion = 2

	// DefaultProfileFileName is the profile file name in the home directory.
	DefaultProfileFileName = ".mfm_calibration.json"

	// profileNSpan is how far the sequence length of a run may be from the
	// calibrated one, as a factor either way, for the profile to apply.
	profileNSpan = 4
)

// Hardware identifies the machine a profile was measured on. Two profiles
// with equal Hardware are interchangeable.
type Hardware struct {
	NumCPU      int    `json:"num_cpu"`
	GOARCH      string `json:"goarch"`
	GOOS        string `json:"goos"`
	WordSize    int    `json:"word_size"`
	CPUFeatures string `json:"cpu_features"`
}

func currentHardware() Hardware {
	return Hardware{
		NumCPU:      runtime.NumCPU(),
		GOARCH:      runtime.GOARCH,
		GOOS:        runtime.GOOS,
		WordSize:    32 << (^uint(0) >> 63),
		CPUFeatures: cpuFeatures(),
	}
}

// cpuFeatures lists the vector extensions that change floating-point
// throughput.
func cpuFeatures() string {
	var f []string
	for _, feat := range []struct {
		name string
		ok   bool
	}{
		{"sse41", cpu.X86.HasSSE41},
		{"avx", cpu.X86.HasAVX},
		{"avx2", cpu.X86.HasAVX2},
		{"fma", cpu.X86.HasFMA},
		{"avx512f", cpu.X86.HasAVX512F},
		{"asimd", cpu.ARM64.HasASIMD},
		{"fphp", cpu.ARM64.HasFPHP},
	} {
		if feat.ok {
			f = append(f, feat.name)
		}
	}
	if len(f) == 0 {
		return "generic"
	}
	return strings.Join(f, ",")
}

// CalibrationProfile is the saved outcome of a -calibrate run.
type CalibrationProfile struct {
	Hardware  `json:"hardware"`
	CPUModel  string `json:"cpu_model"`
	GoVersion string `json:"go_version"`

	// DCTThreshold is the K from which the transform engine is faster.
	DCTThreshold int `json:"dct_threshold"`
	// Confidence is the share of measured K values agreeing with the split.
	Confidence float64 `json:"confidence"`

	CalibratedAt    time.Time `json:"calibrated_at"`
	CalibrationN    int       `json:"calibration_n"`
	CalibrationTime string    `json:"calibration_time"`

	ProfileVersion int `json:"profile_version"`
}

// NewProfile returns an empty profile stamped with the current machine.
func NewProfile() *CalibrationProfile {
	return &CalibrationProfile{
		Hardware:       currentHardware(),
		CPUModel:       fmt.Sprintf("%s-%d-cores", runtime.GOARCH, runtime.NumCPU()),
		GoVersion:      runtime.Version(),
		CalibratedAt:   time.Now(),
		ProfileVersion: CurrentProfileVersion,
	}
}

// GetDefaultProfilePath is ~/.mfm_calibration.json, or the bare file name
// when there is no home directory.
func GetDefaultProfilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultProfileFileName
	}
	return filepath.Join(home, DefaultProfileFileName)
}

func resolvePath(path string) string {
	if path == "" {
		return GetDefaultProfilePath()
	}
	return path
}

// LoadProfile reads the profile at path (the default path when empty).
func LoadProfile(path string) (*CalibrationProfile, error) {
	data, err := os.ReadFile(resolvePath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	var p CalibrationProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}
	return &p, nil
}

// SaveProfile writes p as indented JSON to path (the default path when empty).
func (p *CalibrationProfile) SaveProfile(path string) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	if err := os.WriteFile(resolvePath(path), data, 0o600); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}
	return nil
}

// IsValid reports whether p was measured on this machine with the current
// layout and holds a threshold.
func (p *CalibrationProfile) IsValid() bool {
	return p != nil &&
		p.ProfileVersion == CurrentProfileVersion &&
		p.Hardware == currentHardware() &&
		p.DCTThreshold > 0
}

// Covers reports whether the threshold measured at CalibrationN still holds
// for sequences of length nMax. The crossover K drifts with N, so only runs
// within a factor profileNSpan of the calibrated length reuse it.
func (p *CalibrationProfile) Covers(nMax int) bool {
	if p == nil || p.CalibrationN <= 0 {
		return false
	}
	return nMax*profileNSpan >= p.CalibrationN && nMax <= p.CalibrationN*profileNSpan
}

// IsStale reports whether p is older than maxAge. A nil profile is stale.
func (p *CalibrationProfile) IsStale(maxAge time.Duration) bool {
	return p == nil || time.Since(p.CalibratedAt) > maxAge
}

func (p *CalibrationProfile) String() string {
	if p == nil {
		return "<nil profile>"
	}
	return fmt.Sprintf("CalibrationProfile{CPU: %s [%s], DCT threshold: K=%d, N: %d, Confidence: %.0f%%, Calibrated: %s}",
		p.CPUModel, p.CPUFeatures, p.DCTThreshold, p.CalibrationN, p.Confidence*100,
		p.CalibratedAt.Format(time.RFC3339))
}

// LoadOrCreateProfile returns the profile at path when it is valid for this
// machine, and a fresh one otherwise. The boolean reports which.
func LoadOrCreateProfile(path string) (*CalibrationProfile, bool) {
	p, err := LoadProfile(path)
	if err != nil || !p.IsValid() {
		return NewProfile(), false
	}
	return p, true
}

// ProfileExists reports whether a file exists at path (the default path
// when empty).
func ProfileExists(path string) bool {
	_, err := os.Stat(resolvePath(path))
	return err == nil
}
