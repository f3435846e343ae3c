package config

import (
	"time"

	"nrgchamp/distilltwin/internal/scheduler"
)

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// BuildScenario sanitizes req into a runnable Scenario, silently
// normalizing anything malformed per spec §7 rather than erroring.
func BuildScenario(req EngineRequest) scheduler.Scenario {
	sc := scheduler.Default()

	sc.SimS = clamp(req.SimS.orDefault(sc.SimS), 600, 7200)
	sc.Dt = clamp(req.Dt.orDefault(sc.Dt), 0.5, 5.0)
	sc.Noise = req.Noise.orDefault(false)
	if req.Seed != nil {
		sc.Seed = *req.Seed
	} else if sc.Noise {
		sc.Seed = time.Now().UnixNano()
	}

	sc.Setpoints.Ffeed = req.SPFfeed.orDefault(sc.Setpoints.Ffeed)
	sc.Setpoints.Tfeed = req.SPTfeed.orDefault(sc.Setpoints.Tfeed)
	sc.Setpoints.Treb = req.SPTreb.orDefault(sc.Setpoints.Treb)
	sc.Setpoints.Tcond = req.SPTcond.orDefault(sc.Setpoints.Tcond)
	sc.Setpoints.Freflux = req.SPFreflux.orDefault(sc.Setpoints.Freflux)
	sc.Setpoints.Lv201 = req.SPLv201.orDefault(sc.Setpoints.Lv201)

	sanTuning := func(kp, ti flexFloat, def scheduler.LoopTuning) scheduler.LoopTuning {
		out := def
		if v := kp.orDefault(-1); v >= 0 {
			out.Kp = v
		}
		if v := ti.orDefault(-1); v > 0 {
			out.Ti = v
		}
		return out
	}
	sc.Tuning.FIC101 = sanTuning(req.FIC101Kp, req.FIC101Ti, sc.Tuning.FIC101)
	sc.Tuning.TIC101 = sanTuning(req.TIC101Kp, req.TIC101Ti, sc.Tuning.TIC101)
	sc.Tuning.TIC102 = sanTuning(req.TIC102Kp, req.TIC102Ti, sc.Tuning.TIC102)
	sc.Tuning.TIC201 = sanTuning(req.TIC201Kp, req.TIC201Ti, sc.Tuning.TIC201)
	sc.Tuning.FIC201 = sanTuning(req.FIC201Kp, req.FIC201Ti, sc.Tuning.FIC201)
	sc.Tuning.LIC201 = sanTuning(req.LIC201Kp, req.LIC201Ti, sc.Tuning.LIC201)

	ttLow := req.GTTLow.orDefault(sc.GateThresholds.TT106Low)
	ttHigh := req.GTTHigh.orDefault(sc.GateThresholds.TT106High)
	if ttLow > ttHigh {
		ttLow, ttHigh = ttHigh, ttLow
	}
	rhoLow := req.GRhoLow.orDefault(sc.GateThresholds.Rho15Low)
	rhoHigh := req.GRhoHigh.orDefault(sc.GateThresholds.Rho15High)
	if rhoLow > rhoHigh {
		rhoLow, rhoHigh = rhoHigh, rhoLow
	}
	sc.GateThresholds.TT106Low = ttLow
	sc.GateThresholds.TT106High = ttHigh
	sc.GateThresholds.Rho15Low = rhoLow
	sc.GateThresholds.Rho15High = rhoHigh
	sc.GateThresholds.DTsubMin = req.GDTsub.orDefault(sc.GateThresholds.DTsubMin)
	sc.GateThresholds.DelayOnS = req.GDelayOn.orDefault(sc.GateThresholds.DelayOnS)
	sc.GateThresholds.DelayOffS = req.GDelayOff.orDefault(sc.GateThresholds.DelayOffS)

	sc.AnalyzerFail = scheduler.AnalyzerFailSchedule{
		Enable: req.AnalyzerFail.orDefault(false),
		TFail:  1800,
	}

	return sc
}
