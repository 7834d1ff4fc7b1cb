package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/agbru/mfmprime/internal/config"
	"github.com/agbru/mfmprime/internal/testutil"
	"github.com/agbru/mfmprime/pkg/models"
)

func TestPrintExecutionConfig(t *testing.T) {
	t.Parallel()
	cfg := config.AppConfig{
		NMax: 5000, KValues: []int{5, 10}, Timeout: time.Minute,
		Policy: "fixed", Basis: "dct", Engine: "auto", DCTThreshold: 64,
		PrimeTest: "big", PrimeRounds: 20,
	}
	var buf bytes.Buffer
	PrintExecutionConfig(cfg, &buf)
	PrintExecutionMode(cfg, &buf)
	out := testutil.StripAnsiCodes(buf.String())

	for _, want := range []string{
		"Sweeping K in {5, 10} over n = 1..5000 with a timeout of 1m0s.",
		"policy=fixed, basis=dct, engine=auto (DCT threshold K=64)",
		"Primality: big (20 rounds)",
		"Execution mode: Sequential sweep.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	cfg.Parallel = true
	PrintExecutionMode(cfg, &buf)
	if !strings.Contains(testutil.StripAnsiCodes(buf.String()), "Concurrent sweep of 2 K values") {
		t.Errorf("unexpected parallel mode line %q", buf.String())
	}
}

func TestPrintRecordsJSON(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	records := []models.SweepRecord{models.NewSweepRecord(5, 10, 100, 0.25)}
	if err := PrintRecordsJSON(&buf, records); err != nil {
		t.Fatal(err)
	}
	var decoded []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON %q: %v", buf.String(), err)
	}
	if len(decoded) != 1 || decoded[0]["k"] != 5.0 || decoded[0]["prime_fraction"] != 0.1 {
		t.Errorf("unexpected JSON %v", decoded)
	}

	buf.Reset()
	if err := PrintRecordsJSON(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("nil records should encode as [], got %q", buf.String())
	}
}
