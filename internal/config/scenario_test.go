package config

import (
	"encoding/json"
	"testing"

	"nrgchamp/distilltwin/internal/scheduler"
)

func TestBuildScenarioAppliesDefaultsForEmptyRequest(t *testing.T) {
	sc := BuildScenario(EngineRequest{})
	def := scheduler.Default()
	if sc.SimS != def.SimS || sc.Dt != def.Dt {
		t.Fatalf("expected defaults, got sim_s=%v dt=%v", sc.SimS, sc.Dt)
	}
}

func TestBuildScenarioClampsSimSAndDt(t *testing.T) {
	var req EngineRequest
	mustUnmarshal(t, `{"sim_s": 100, "dt": 50}`, &req)
	sc := BuildScenario(req)
	if sc.SimS != 600 {
		t.Fatalf("expected sim_s clamped to 600, got %v", sc.SimS)
	}
	if sc.Dt != 5.0 {
		t.Fatalf("expected dt clamped to 5.0, got %v", sc.Dt)
	}
}

func TestBuildScenarioSwapsInvertedGateThresholds(t *testing.T) {
	var req EngineRequest
	mustUnmarshal(t, `{"g_tt_low": 98, "g_tt_high": 92}`, &req)
	sc := BuildScenario(req)
	if sc.GateThresholds.TT106Low != 92 || sc.GateThresholds.TT106High != 98 {
		t.Fatalf("expected swapped thresholds low=92 high=98, got low=%v high=%v",
			sc.GateThresholds.TT106Low, sc.GateThresholds.TT106High)
	}
}

func TestBuildScenarioAcceptsStringBooleans(t *testing.T) {
	var req EngineRequest
	mustUnmarshal(t, `{"noise": "true", "analyzerFail": "false"}`, &req)
	sc := BuildScenario(req)
	if !sc.Noise {
		t.Fatalf("expected noise=true parsed from string")
	}
	if sc.AnalyzerFail.Enable {
		t.Fatalf("expected analyzerFail=false parsed from string")
	}
}

func TestBuildScenarioFallsBackOnNonFiniteFields(t *testing.T) {
	var req EngineRequest
	mustUnmarshal(t, `{"sp_Ffeed": "NaN"}`, &req)
	sc := BuildScenario(req)
	def := scheduler.Default()
	if sc.Setpoints.Ffeed != def.Setpoints.Ffeed {
		t.Fatalf("expected non-finite sp_Ffeed to fall back to default, got %v", sc.Setpoints.Ffeed)
	}
}

func mustUnmarshal(t *testing.T, s string, v any) {
	t.Helper()
	if err := json.Unmarshal([]byte(s), v); err != nil {
		t.Fatalf("unmarshal %q: %v", s, err)
	}
}
