package httpapi

import (
	"context"
	"testing"

	"nrgchamp/distilltwin/internal/scheduler"
)

func TestBuildSingleResponseDownsamplesAndTruncatesEvents(t *testing.T) {
	sc := scheduler.Default()
	sc.SimS = 3600 // 3601 raw samples, more than chartCap
	tr, err := scheduler.New(sc, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("run error: %v", err)
	}

	resp := BuildSingleResponse(tr, sc.MetricOpt, sc.GateThresholds.Rho15Low, sc.GateThresholds.Rho15High, sc.GateThresholds.DTsubMin)
	if len(resp.ChartData) > chartCap {
		t.Fatalf("expected chartData capped at %d, got %d", chartCap, len(resp.ChartData))
	}
	if resp.ChartData[0].T != tr.T[0] {
		t.Fatalf("expected first downsampled point to match first raw sample")
	}
	if len(resp.EventLog) > 200 {
		t.Fatalf("expected eventLog truncated to 200, got %d", len(resp.EventLog))
	}
	if len(resp.Metrics) != 6 {
		t.Fatalf("expected 6 loop metric rows, got %d", len(resp.Metrics))
	}
}

func TestDownsampleIdxKeepsAllSamplesUnderCap(t *testing.T) {
	idx := downsampleIdx(50, 700)
	if len(idx) != 50 {
		t.Fatalf("expected all 50 samples kept, got %d", len(idx))
	}
}

func TestDownsampleIdxIncludesFirstAndLast(t *testing.T) {
	idx := downsampleIdx(5000, 700)
	if len(idx) != 700 {
		t.Fatalf("expected exactly 700 samples, got %d", len(idx))
	}
	if idx[0] != 0 {
		t.Fatalf("expected first index 0, got %d", idx[0])
	}
	if idx[len(idx)-1] != 4999 {
		t.Fatalf("expected last index 4999, got %d", idx[len(idx)-1])
	}
}
