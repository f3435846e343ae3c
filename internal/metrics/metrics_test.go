package metrics

import (
	"math"
	"testing"
)

func linspace(n int, dt float64) []float64 {
	t := make([]float64, n)
	for i := range t {
		t[i] = float64(i) * dt
	}
	return t
}

func TestIAEZeroWhenPVTracksSPExactly(t *testing.T) {
	tv := linspace(100, 1)
	sp := make([]float64, 100)
	for i := range sp {
		sp[i] = 60
	}
	pv := append([]float64{}, sp...)
	loop := ComputeLoop("L", tv, sp, pv, Options{SettleBand: 0.02, HoldWindowS: 10})
	if loop.IAE != 0 {
		t.Fatalf("expected IAE=0 when PV tracks SP exactly, got %v", loop.IAE)
	}
}

func TestOvershootUndefinedWhenSPFinalZero(t *testing.T) {
	tv := linspace(10, 1)
	sp := make([]float64, 10)
	pv := make([]float64, 10)
	for i := range pv {
		pv[i] = 5
	}
	loop := ComputeLoop("L", tv, sp, pv, Options{})
	if loop.OvershootPct != Undefined {
		t.Fatalf("expected overshoot undefined when sp_final=0, got %v", loop.OvershootPct)
	}
}

func TestSettlingTimeUndefinedWhenSPDoesNotChange(t *testing.T) {
	tv := linspace(50, 1)
	sp := make([]float64, 50)
	pv := make([]float64, 50)
	for i := range sp {
		sp[i] = 60
		pv[i] = 60 + 100 // wildly off, but SP never changes
	}
	loop := ComputeLoop("L", tv, sp, pv, Options{})
	if loop.Settled {
		t.Fatalf("expected Settled=false when SP does not meaningfully change")
	}
	if loop.SettlingTime != Undefined {
		t.Fatalf("expected settling time undefined, got %v", loop.SettlingTime)
	}
}

func TestSettlingTimeFoundAfterStepAndHold(t *testing.T) {
	n := 200
	tv := linspace(n, 1)
	sp := make([]float64, n)
	pv := make([]float64, n)
	for i := 0; i < n; i++ {
		if i == 0 {
			sp[i] = 80
		} else {
			sp[i] = 100
		}
		if i < 50 {
			pv[i] = 80
		} else {
			pv[i] = 100
		}
	}
	loop := ComputeLoop("L", tv, sp, pv, Options{SettleBand: 0.02, HoldWindowS: 10})
	if !loop.Settled {
		t.Fatalf("expected loop to settle")
	}
	if loop.SettlingTime != 50 {
		t.Fatalf("expected settling time 50, got %v", loop.SettlingTime)
	}
}

func TestGateStatsCountsProductAndSwitches(t *testing.T) {
	route := []int{0, 0, 1, 1, 1, 0, 1}
	gs := ComputeGateStats(route)
	wantPct := 100 * 4.0 / 7.0
	if math.Abs(gs.ProductPct-wantPct) > 1e-9 {
		t.Fatalf("expected productPct %v, got %v", wantPct, gs.ProductPct)
	}
	if gs.Switches != 3 {
		t.Fatalf("expected 3 switches, got %v", gs.Switches)
	}
}

func TestGateStatsEmptyRoute(t *testing.T) {
	gs := ComputeGateStats(nil)
	if gs.ProductPct != 0 || gs.Switches != 0 {
		t.Fatalf("expected zero-value stats for empty route, got %+v", gs)
	}
}
