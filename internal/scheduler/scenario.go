// Package scheduler implements the fixed-step loop that couples the
// plant, the six PI loops, the quality gate, and the interlock table.
package scheduler

import (
	"nrgchamp/distilltwin/internal/gate"
	"nrgchamp/distilltwin/internal/interlock"
	"nrgchamp/distilltwin/internal/metrics"
	"nrgchamp/distilltwin/internal/plant"
)

// LoopTuning is (Kp, Ti) for one PI loop.
type LoopTuning struct {
	Kp float64
	Ti float64
}

// Tuning bundles the six loops' PI parameters.
type Tuning struct {
	FIC101 LoopTuning // controls F_feed via u_feed
	TIC101 LoopTuning // controls T_feed_out via u_steam_pre
	TIC102 LoopTuning // controls T_reb via u_steam_reb
	TIC201 LoopTuning // controls T_cond_out via u_cw
	FIC201 LoopTuning // controls F_reflux via u_reflux
	LIC201 LoopTuning // controls L_v201 via u_draw (reverse action)
}

// Setpoints is the six base process setpoints.
type Setpoints struct {
	Ffeed   float64
	Tfeed   float64 // T_feed_out
	Treb    float64
	Tcond   float64 // T_cond_out
	Freflux float64
	Lv201   float64
}

// RampRates is the per-signal max rate of setpoint change, units/s.
type RampRates struct {
	Ffeed   float64
	Tfeed   float64
	Treb    float64
	Tcond   float64
	Freflux float64
	Lv201   float64
}

// MVInit is the initial manipulated-variable anchor bundle.
type MVInit struct {
	Feed     float64
	SteamPre float64
	SteamReb float64
	Cw       float64
	Reflux   float64
	Draw     float64
}

// DisturbanceSchedule holds the start-time/amplitude pairs of §3.
type DisturbanceSchedule struct {
	TFeedDist    float64
	FeedTempAmp  float64
	TVaporDist   float64
	VaporLoadAmp float64
	TCwDegrade   float64
	CwDegradeDrop float64
}

// AnalyzerFailSchedule enables an analyzer dropout at a fixed time.
type AnalyzerFailSchedule struct {
	Enable bool
	TFail  float64
}

// SPStepEvent is one {t, key, delta} setpoint step. Recognized keys:
// "F_feed", "T_feed_out", "T_reb", "T_cond_out", "F_reflux", "L_v201".
// Unknown keys are ignored.
type SPStepEvent struct {
	T     float64
	Key   string
	Delta float64
}

// MetricOptions carries the shared settling/hold parameters and a
// per-loop normalization span (loop name -> span, 0 disables).
type MetricOptions struct {
	SettleBand      float64
	HoldWindowS     float64
	NormalizeSpans  map[string]float64
}

// Scenario is the immutable bundle a Scheduler run consumes.
type Scenario struct {
	SimS  float64
	Dt    float64
	Noise bool
	Seed  int64

	Setpoints Setpoints
	RampRates RampRates
	MVInit    MVInit
	Tuning    Tuning

	GateThresholds      gate.Thresholds
	InterlockThresholds interlock.Thresholds
	PlantParams         plant.Params

	Disturbances DisturbanceSchedule
	AnalyzerFail AnalyzerFailSchedule
	SPSteps      []SPStepEvent

	MetricOpt MetricOptions
}

// Default returns a scenario with the reference operating point and
// tuning, suitable as the SuiteDriver's base scenario.
func Default() Scenario {
	return Scenario{
		SimS: 3600, Dt: 1, Noise: false, Seed: 1,
		Setpoints: Setpoints{
			Ffeed: plant.FFeed0, Tfeed: plant.TFeed0, Treb: plant.TReb0,
			Tcond: plant.TCond0, Freflux: 50, Lv201: plant.L0,
		},
		RampRates: RampRates{Ffeed: 0.5, Tfeed: 0.05, Treb: 0.05, Tcond: 0.1, Freflux: 0.5, Lv201: 0.5},
		MVInit: MVInit{
			Feed: plant.UFeed0, SteamPre: plant.USteamP0, SteamReb: plant.USteamR0,
			Cw: plant.UCw0, Reflux: plant.UReflux0, Draw: plant.UDraw0,
		},
		Tuning: Tuning{
			FIC101: LoopTuning{Kp: 1.2, Ti: 40},
			TIC101: LoopTuning{Kp: 1.5, Ti: 90},
			TIC102: LoopTuning{Kp: 1.8, Ti: 120},
			TIC201: LoopTuning{Kp: 1.2, Ti: 80},
			FIC201: LoopTuning{Kp: 1.2, Ti: 40},
			LIC201: LoopTuning{Kp: 2.0, Ti: 150},
		},
		GateThresholds: gate.Thresholds{
			TT106Low: 92, TT106High: 98,
			Rho15Low: 0.735, Rho15High: 0.745,
			DTsubMin: 3,
			DelayOnS: 120, DelayOffS: 30,
			PermissiveLMin: 20, PermissiveLMax: 80,
		},
		InterlockThresholds: interlock.Thresholds{
			TFeedHH: 140, TRebHH: 190, TCondOutHH: 46,
			LV201HH: 90, LV201LL: 10,
			UDrawForceHigh: 80, UDrawForceLow: 10,
		},
		PlantParams: plant.DefaultParams(),
		MetricOpt: MetricOptions{
			SettleBand: 0.02, HoldWindowS: 60,
			NormalizeSpans: map[string]float64{},
		},
	}
}

// LoopNames enumerates the six controller names in scheduler-update order.
var LoopNames = []string{"FIC101", "TIC101", "TIC102", "TIC201", "FIC201", "LIC201"}

// LoopMetricsBundle names the six per-loop metrics results.
type LoopMetricsBundle map[string]metrics.Loop
