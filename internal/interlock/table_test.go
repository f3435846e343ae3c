package interlock

import (
	"testing"

	"nrgchamp/distilltwin/internal/plant"
)

func refThresholds() Thresholds {
	return Thresholds{
		TFeedHH: 140, TRebHH: 190, TCondOutHH: 46,
		LV201HH: 90, LV201LL: 10,
		UDrawForceHigh: 80, UDrawForceLow: 10,
	}
}

func cleanSignals() Signals {
	return Signals{TFeedOut: 120, TReb: 165, TCondOut: 35, LV201: 50, DTsub: 5, AnalyzerOK: true}
}

func TestNoRulesActiveOnCleanSignals(t *testing.T) {
	table := New(refThresholds())
	res := table.Evaluate(plant.MVs{Feed: 50, SteamPre: 35, SteamReb: 40, Cw: 45, Reflux: 55, Draw: 25}, cleanSignals())
	if len(res.Active) != 0 {
		t.Fatalf("expected no active rules, got %v", res.Active)
	}
	if res.Force != ForceNone {
		t.Fatalf("expected ForceNone, got %v", res.Force)
	}
}

func TestFeedTempHHZeroesSteamPre(t *testing.T) {
	table := New(refThresholds())
	sig := cleanSignals()
	sig.TFeedOut = 141
	res := table.Evaluate(plant.MVs{SteamPre: 35}, sig)
	if !res.Active[IL01FeedTempHH] {
		t.Fatalf("expected IL-01 active")
	}
	if res.MVs.SteamPre != 0 {
		t.Fatalf("expected u_steam_pre forced to 0, got %v", res.MVs.SteamPre)
	}
}

func TestRebTempHHZeroesSteamReb(t *testing.T) {
	table := New(refThresholds())
	sig := cleanSignals()
	sig.TReb = 191
	res := table.Evaluate(plant.MVs{SteamReb: 40}, sig)
	if !res.Active[IL02RebTempHH] {
		t.Fatalf("expected IL-02 active")
	}
	if res.MVs.SteamReb != 0 {
		t.Fatalf("expected u_steam_reb forced to 0, got %v", res.MVs.SteamReb)
	}
}

func TestCondOutHHForcesRecycle(t *testing.T) {
	table := New(refThresholds())
	sig := cleanSignals()
	sig.TCondOut = 47
	res := table.Evaluate(plant.MVs{}, sig)
	if !res.Active[IL03CondOutHH] {
		t.Fatalf("expected IL-03 active")
	}
	if res.Force != ForceRecycle {
		t.Fatalf("expected ForceRecycle, got %v", res.Force)
	}
}

func TestLevelHHRaisesDrawFloor(t *testing.T) {
	table := New(refThresholds())
	sig := cleanSignals()
	sig.LV201 = 91
	res := table.Evaluate(plant.MVs{Draw: 20}, sig)
	if !res.Active[IL04LevelHH] {
		t.Fatalf("expected IL-04 active")
	}
	if res.MVs.Draw != 80 {
		t.Fatalf("expected u_draw raised to floor 80, got %v", res.MVs.Draw)
	}
	// a draw already above the floor must not be lowered
	res2 := table.Evaluate(plant.MVs{Draw: 95}, sig)
	if res2.MVs.Draw != 95 {
		t.Fatalf("expected draw above floor left untouched, got %v", res2.MVs.Draw)
	}
}

func TestLevelLLCapsDrawCeiling(t *testing.T) {
	table := New(refThresholds())
	sig := cleanSignals()
	sig.LV201 = 9
	res := table.Evaluate(plant.MVs{Draw: 30}, sig)
	if !res.Active[IL05LevelLL] {
		t.Fatalf("expected IL-05 active")
	}
	if res.MVs.Draw != 10 {
		t.Fatalf("expected u_draw capped to ceiling 10, got %v", res.MVs.Draw)
	}
}

func TestAnalyzerFailForcesRecycle(t *testing.T) {
	table := New(refThresholds())
	sig := cleanSignals()
	sig.AnalyzerOK = false
	res := table.Evaluate(plant.MVs{}, sig)
	if !res.Active[IL06AnalyzerFail] {
		t.Fatalf("expected IL-06 active")
	}
	if res.Force != ForceRecycle {
		t.Fatalf("expected ForceRecycle, got %v", res.Force)
	}
}

func TestRuleIDStrings(t *testing.T) {
	cases := map[RuleID]string{
		IL01FeedTempHH: "IL-01", IL02RebTempHH: "IL-02", IL03CondOutHH: "IL-03",
		IL04LevelHH: "IL-04", IL05LevelLL: "IL-05", IL06AnalyzerFail: "IL-06",
	}
	for id, want := range cases {
		if got := id.String(); got != want {
			t.Fatalf("RuleID(%d).String() = %q, want %q", id, got, want)
		}
	}
}
