// Package suite implements the deterministic batch of baseline,
// per-loop step, and disturbance scenarios (spec §4.8), running them
// concurrently via golang.org/x/sync/errgroup since independent runs
// share no state (spec §5).
package suite

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"nrgchamp/distilltwin/internal/scheduler"
)

// Result is one scenario's outcome: name, gate stats, summed IAE, and
// per-loop metrics.
type Result struct {
	Name     string
	Gate     GateStats
	TotalIAE float64
	Metrics  scheduler.LoopMetricsBundle
}

// GateStats mirrors metrics.GateStats to keep this package's public
// surface self-contained for JSON encoding at the HTTP boundary.
type GateStats struct {
	ProductPct float64
	Switches   int
}

func buildScenarios(base scheduler.Scenario) []struct {
	name string
	sc   scheduler.Scenario
} {
	clean := base
	clean.Noise = false

	step := func(key string, delta float64) scheduler.Scenario {
		sc := clean
		sc.SPSteps = append([]scheduler.SPStepEvent{}, clean.SPSteps...)
		sc.SPSteps = append(sc.SPSteps, scheduler.SPStepEvent{T: 600, Key: key, Delta: delta})
		return sc
	}

	feedTempDist := clean
	feedTempDist.Disturbances.TFeedDist = 0
	feedTempDist.Disturbances.FeedTempAmp = 8

	cwDegrade := clean
	cwDegrade.Disturbances.TCwDegrade = 0
	cwDegrade.Disturbances.CwDegradeDrop = 0.25

	analyzerFail := clean
	analyzerFail.AnalyzerFail = scheduler.AnalyzerFailSchedule{Enable: true, TFail: 1800}

	return []struct {
		name string
		sc   scheduler.Scenario
	}{
		{"A0_BASELINE", clean},
		{"B1_STEP_TFEED_OUT", step("T_feed_out", 3)},
		{"B2_STEP_TREB", step("T_reb", 3)},
		{"B3_STEP_TCOND_OUT", step("T_cond_out", 2)},
		{"B4_STEP_FFEED", step("F_feed", 5)},
		{"B5_STEP_FREFLUX", step("F_reflux", 5)},
		{"B6_STEP_LV201", step("L_v201", 5)},
		{"C1_DIST_FEED_TEMP", feedTempDist},
		{"C2_DIST_CW_DEGRADE", cwDegrade},
		{"C3_ANALYZER_FAIL", analyzerFail},
	}
}

// Run executes all ten scenarios and returns their results in the
// fixed order of §4.8, regardless of completion order.
func Run(ctx context.Context, base scheduler.Scenario) ([]Result, error) {
	scenarios := buildScenarios(base)
	results := make([]Result, len(scenarios))

	g, gctx := errgroup.WithContext(ctx)
	if n := runtime.GOMAXPROCS(0); n > 0 {
		g.SetLimit(n)
	}

	for i, s := range scenarios {
		i, s := i, s
		g.Go(func() error {
			sched := scheduler.New(s.sc, nil)
			tr, err := sched.Run(gctx)
			if err != nil {
				return err
			}
			m := scheduler.ComputeMetrics(tr, s.sc.MetricOpt)
			gs := scheduler.GateStats(tr)
			results[i] = Result{
				Name:     s.name,
				Gate:     GateStats{ProductPct: gs.ProductPct, Switches: gs.Switches},
				TotalIAE: scheduler.TotalIAE(m),
				Metrics:  m,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
