package gate

import "testing"

func refThresholds() Thresholds {
	return Thresholds{
		TT106Low: 92, TT106High: 98,
		Rho15Low: 0.735, Rho15High: 0.745,
		DTsubMin: 3,
		DelayOnS: 120, DelayOffS: 30,
		PermissiveLMin: 20, PermissiveLMax: 80,
	}
}

func TestStartsRecycle(t *testing.T) {
	g := New(refThresholds())
	if g.Route() != Recycle {
		t.Fatalf("expected initial route RECYCLE, got %v", g.Route())
	}
}

func TestPromotesOnlyAfterDelayOn(t *testing.T) {
	g := New(refThresholds())
	// on-spec signal every step
	for i := 0; i < 119; i++ {
		if r := g.Step(1, 95, 0.740, 4, true, true); r != Recycle {
			t.Fatalf("step %d: expected still RECYCLE before delay_on_s elapses, got %v", i, r)
		}
	}
	r := g.Step(1, 95, 0.740, 4, true, true)
	if r != Product {
		t.Fatalf("expected PRODUCT once on_ok held for delay_on_s, got %v", r)
	}
}

func TestOnTimerResetsOnDropout(t *testing.T) {
	g := New(refThresholds())
	for i := 0; i < 60; i++ {
		g.Step(1, 95, 0.740, 4, true, true)
	}
	g.Step(1, 200, 0.740, 4, true, true) // one bad sample resets on_timer
	for i := 0; i < 119; i++ {
		if r := g.Step(1, 95, 0.740, 4, true, true); r != Recycle {
			t.Fatalf("step %d: expected timer to have reset, still RECYCLE, got %v", i, r)
		}
	}
}

func TestDemotesOnlyAfterDelayOffAndHysteresisBand(t *testing.T) {
	g := New(refThresholds())
	for i := 0; i < 120; i++ {
		g.Step(1, 95, 0.740, 4, true, true)
	}
	if g.Route() != Product {
		t.Fatalf("setup: expected PRODUCT before testing demotion")
	}
	// tt106 = 99.5 is outside the ON band (92,98) but still inside the
	// widened OFF band (90,100), so it must not demote at all.
	for i := 0; i < 200; i++ {
		if r := g.Step(1, 99.5, 0.740, 4, true, true); r != Product {
			t.Fatalf("step %d: expected hysteresis to hold PRODUCT, got %v", i, r)
		}
	}
	// now push tt106 fully outside the OFF band and expect demotion
	// after delay_off_s.
	for i := 0; i < 29; i++ {
		if r := g.Step(1, 150, 0.740, 4, true, true); r != Product {
			t.Fatalf("step %d: expected still PRODUCT before delay_off_s elapses, got %v", i, r)
		}
	}
	if r := g.Step(1, 150, 0.740, 4, true, true); r != Recycle {
		t.Fatalf("expected RECYCLE once off_bad held for delay_off_s, got %v", r)
	}
}

func TestAnalyzerBadForcesRecycleImmediately(t *testing.T) {
	g := New(refThresholds())
	for i := 0; i < 120; i++ {
		g.Step(1, 95, 0.740, 4, true, true)
	}
	if r := g.Step(1, 95, 0.740, 4, false, true); r != Recycle {
		t.Fatalf("expected immediate RECYCLE when analyzer not OK, got %v", r)
	}
}

func TestPermissiveBadForcesRecycleImmediately(t *testing.T) {
	g := New(refThresholds())
	for i := 0; i < 120; i++ {
		g.Step(1, 95, 0.740, 4, true, true)
	}
	if r := g.Step(1, 95, 0.740, 4, true, false); r != Recycle {
		t.Fatalf("expected immediate RECYCLE when permissive not OK, got %v", r)
	}
}
