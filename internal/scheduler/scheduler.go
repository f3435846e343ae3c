package scheduler

import (
	"context"
	"fmt"
	"math"

	"nrgchamp/distilltwin/internal/gate"
	"nrgchamp/distilltwin/internal/interlock"
	"nrgchamp/distilltwin/internal/pid"
	"nrgchamp/distilltwin/internal/plant"
)

const trackEps = 1e-6

// EventSink receives each scheduler event and every per-step sample as
// they are emitted, in addition to being appended to the returned
// Trace. Sinks are called synchronously from the run loop, so any time
// a sink spends is added to the run.
type EventSink interface {
	OnEvent(t float64, kind, msg string)
	OnTick(t float64, route int, analyzerOK bool, tt106, rho15, lv201 float64)
}

// Scheduler owns one PlantModel, six PiControllers, one QualityGate,
// and the InterlockTable for the duration of a run.
type Scheduler struct {
	sc Scenario

	plant *plant.Model
	table *interlock.Table
	g     *gate.Gate

	fic101, tic101, tic102, tic201, fic201, lic201 *pid.Controller

	ramped   Setpoints
	target   Setpoints
	routePrev gate.Route
	activePrev map[interlock.RuleID]bool
	initDone bool

	sink EventSink
}

// New builds a Scheduler for the given scenario. Controllers are reset
// to the scenario's MV-init anchors; ramped-SP state starts at the
// scenario's base setpoints; the gate starts RECYCLE with zero timers.
func New(sc Scenario, sink EventSink) *Scheduler {
	s := &Scheduler{
		sc:         sc,
		plant:      plant.New(sc.Dt, sc.PlantParams, sc.Seed, sc.Noise),
		table:      interlock.New(sc.InterlockThresholds),
		g:          gate.New(sc.GateThresholds),
		ramped:     sc.Setpoints,
		target:     sc.Setpoints,
		routePrev:  gate.Recycle,
		activePrev: map[interlock.RuleID]bool{},
		sink:       sink,
	}

	s.fic101 = pid.New(sc.Tuning.FIC101.Kp, sc.Tuning.FIC101.Ti, sc.Dt, 0, 100, sc.MVInit.Feed, 0.5, pid.Direct)
	s.tic101 = pid.New(sc.Tuning.TIC101.Kp, sc.Tuning.TIC101.Ti, sc.Dt, 0, 100, sc.MVInit.SteamPre, 0.5, pid.Direct)
	s.tic102 = pid.New(sc.Tuning.TIC102.Kp, sc.Tuning.TIC102.Ti, sc.Dt, 0, 100, sc.MVInit.SteamReb, 0.5, pid.Direct)
	s.tic201 = pid.New(sc.Tuning.TIC201.Kp, sc.Tuning.TIC201.Ti, sc.Dt, 0, 100, sc.MVInit.Cw, 0.5, pid.Direct)
	s.fic201 = pid.New(sc.Tuning.FIC201.Kp, sc.Tuning.FIC201.Ti, sc.Dt, 0, 100, sc.MVInit.Reflux, 0.5, pid.Direct)
	s.lic201 = pid.New(sc.Tuning.LIC201.Kp, sc.Tuning.LIC201.Ti, sc.Dt, 0, 100, sc.MVInit.Draw, 0.5, pid.Reverse)

	u0 := sc.MVInit.Feed
	s.fic101.Reset(&u0)
	u0 = sc.MVInit.SteamPre
	s.tic101.Reset(&u0)
	u0 = sc.MVInit.SteamReb
	s.tic102.Reset(&u0)
	u0 = sc.MVInit.Cw
	s.tic201.Reset(&u0)
	u0 = sc.MVInit.Reflux
	s.fic201.Reset(&u0)
	u0 = sc.MVInit.Draw
	s.lic201.Reset(&u0)

	return s
}

func rampToward(cur, tgt, rate, dt float64) float64 {
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return tgt
	}
	maxDelta := rate * dt
	d := tgt - cur
	if d > maxDelta {
		return cur + maxDelta
	}
	if d < -maxDelta {
		return cur - maxDelta
	}
	return tgt
}

func applySPStep(base Setpoints, events []SPStepEvent, ti float64) Setpoints {
	t := base
	for _, e := range events {
		if ti < e.T {
			continue
		}
		switch e.Key {
		case "F_feed":
			t.Ffeed += e.Delta
		case "T_feed_out":
			t.Tfeed += e.Delta
		case "T_reb":
			t.Treb += e.Delta
		case "T_cond_out":
			t.Tcond += e.Delta
		case "F_reflux":
			t.Freflux += e.Delta
		case "L_v201":
			t.Lv201 += e.Delta
		}
	}
	return t
}

func (s *Scheduler) emit(t float64, kind, msg string, tr *Trace) {
	tr.Events = append(tr.Events, Event{T: t, Msg: fmt.Sprintf("%s: %s", kind, msg)})
	if s.sink != nil {
		s.sink.OnEvent(t, kind, msg)
	}
}

var interlockDesc = map[interlock.RuleID]string{
	interlock.IL01FeedTempHH:  "T_feed_out >= T_feed_HH",
	interlock.IL02RebTempHH:   "T_reb >= T_reb_HH",
	interlock.IL03CondOutHH:   "T_cond_out >= T_cond_out_HH",
	interlock.IL04LevelHH:     "L_v201 >= L_v201_HH",
	interlock.IL05LevelLL:     "L_v201 <= L_v201_LL",
	interlock.IL06AnalyzerFail: "analyzer not OK",
}

// Run advances the scheduler from t=0 to sim_s in dt steps, returning
// the completed trace. If ctx is cancelled mid-run, the partial result
// is discarded and the context error is returned (§5 host-boundary
// cancellation) — the Scheduler itself never returns a partial trace
// on the happy path.
func (s *Scheduler) Run(ctx context.Context) (*Trace, error) {
	if s.sc.Dt <= 0 {
		return nil, fmt.Errorf("scheduler: dt must be positive")
	}
	n := int(s.sc.SimS/s.sc.Dt + 0.5)
	tr := newTrace(n + 1)

	for i := 0; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ti := float64(i) * s.sc.Dt
		s.step(ti, tr)
	}
	return tr, nil
}

func (s *Scheduler) step(ti float64, tr *Trace) {
	sc := &s.sc

	// 1. disturbance schedule
	var d plant.Disturbances
	if ti >= sc.Disturbances.TFeedDist {
		d.DFeedTemp = sc.Disturbances.FeedTempAmp
	}
	if ti >= sc.Disturbances.TVaporDist {
		d.DVaporLoad = sc.Disturbances.VaporLoadAmp
	}
	drop := 0.0
	if ti >= sc.Disturbances.TCwDegrade {
		drop = sc.Disturbances.CwDegradeDrop
	}
	d.CwDegrade = clamp(1-drop, 0, 1)
	d.AnalyzerOK = !sc.AnalyzerFail.Enable || ti < sc.AnalyzerFail.TFail

	// 2. SP targets
	s.target = applySPStep(sc.Setpoints, sc.SPSteps, ti)

	// 3. ramp
	s.ramped.Ffeed = rampToward(s.ramped.Ffeed, s.target.Ffeed, sc.RampRates.Ffeed, sc.Dt)
	s.ramped.Tfeed = rampToward(s.ramped.Tfeed, s.target.Tfeed, sc.RampRates.Tfeed, sc.Dt)
	s.ramped.Treb = rampToward(s.ramped.Treb, s.target.Treb, sc.RampRates.Treb, sc.Dt)
	s.ramped.Tcond = rampToward(s.ramped.Tcond, s.target.Tcond, sc.RampRates.Tcond, sc.Dt)
	s.ramped.Freflux = rampToward(s.ramped.Freflux, s.target.Freflux, sc.RampRates.Freflux, sc.Dt)
	s.ramped.Lv201 = rampToward(s.ramped.Lv201, s.target.Lv201, sc.RampRates.Lv201, sc.Dt)

	// 4. advance plant with previous MVs
	prevMV := plant.MVs{
		Feed: s.fic101.Output(), SteamPre: s.tic101.Output(), SteamReb: s.tic102.Output(),
		Cw: s.tic201.Output(), Reflux: s.fic201.Output(), Draw: s.lic201.Output(),
	}
	pv := s.plant.Update(prevMV, d)
	dTsub := pv.TT201 - pv.TCondOut

	// 5. first-step bumpless init
	if !s.initDone {
		s.fic101.Track(prevMV.Feed, s.ramped.Ffeed, pv.FFeed)
		s.tic101.Track(prevMV.SteamPre, s.ramped.Tfeed, pv.TFeedOut)
		s.tic102.Track(prevMV.SteamReb, s.ramped.Treb, pv.TReb)
		s.tic201.Track(prevMV.Cw, s.ramped.Tcond, pv.TCondOut)
		s.fic201.Track(prevMV.Reflux, s.ramped.Freflux, pv.FReflux)
		s.lic201.Track(prevMV.Draw, s.ramped.Lv201, pv.LV201)
		s.initDone = true
	}

	// 6. run controllers, snapshot pre-interlock MVs
	uFeed := s.fic101.Update(s.ramped.Ffeed, pv.FFeed)
	uSteamPre := s.tic101.Update(s.ramped.Tfeed, pv.TFeedOut)
	uSteamReb := s.tic102.Update(s.ramped.Treb, pv.TReb)
	uCw := s.tic201.Update(s.ramped.Tcond, pv.TCondOut)
	uReflux := s.fic201.Update(s.ramped.Freflux, pv.FReflux)
	uDraw := s.lic201.Update(s.ramped.Lv201, pv.LV201)

	snap := plant.MVs{Feed: uFeed, SteamPre: uSteamPre, SteamReb: uSteamReb, Cw: uCw, Reflux: uReflux, Draw: uDraw}

	// 7. permissive + provisional gate
	permissiveOK := pv.LV201 > sc.GateThresholds.PermissiveLMin && pv.LV201 < sc.GateThresholds.PermissiveLMax
	route := s.g.Step(sc.Dt, pv.TT106, pv.Rho15, dTsub, pv.AnalyzerOK, permissiveOK)

	// 8. interlock walk
	res := s.table.Evaluate(snap, interlock.Signals{
		TFeedOut: pv.TFeedOut, TReb: pv.TReb, TCondOut: pv.TCondOut,
		LV201: pv.LV201, DTsub: dTsub, AnalyzerOK: pv.AnalyzerOK,
	})

	// 9. re-track controllers whose MV was overridden
	if math.Abs(res.MVs.Feed-snap.Feed) > trackEps {
		s.fic101.Track(res.MVs.Feed, s.ramped.Ffeed, pv.FFeed)
	}
	if math.Abs(res.MVs.SteamPre-snap.SteamPre) > trackEps {
		s.tic101.Track(res.MVs.SteamPre, s.ramped.Tfeed, pv.TFeedOut)
	}
	if math.Abs(res.MVs.SteamReb-snap.SteamReb) > trackEps {
		s.tic102.Track(res.MVs.SteamReb, s.ramped.Treb, pv.TReb)
	}
	if math.Abs(res.MVs.Cw-snap.Cw) > trackEps {
		s.tic201.Track(res.MVs.Cw, s.ramped.Tcond, pv.TCondOut)
	}
	if math.Abs(res.MVs.Reflux-snap.Reflux) > trackEps {
		s.fic201.Track(res.MVs.Reflux, s.ramped.Freflux, pv.FReflux)
	}
	if math.Abs(res.MVs.Draw-snap.Draw) > trackEps {
		s.lic201.Track(res.MVs.Draw, s.ramped.Lv201, pv.LV201)
	}

	// 10. force route override
	switch res.Force {
	case interlock.ForceRecycle:
		route = gate.Recycle
	case interlock.ForceProduct:
		route = gate.Product
	}

	// 11. events
	if route != s.routePrev {
		s.emit(ti, "GATE_SWITCH", fmt.Sprintf("route %s -> %s", s.routePrev, route), tr)
		s.routePrev = route
	}
	for id := range res.Active {
		if !s.activePrev[id] {
			s.emit(ti, "INTERLOCK_ON", fmt.Sprintf("%s %s", id, interlockDesc[id]), tr)
		}
	}
	for id := range s.activePrev {
		if !res.Active[id] {
			s.emit(ti, "INTERLOCK_OFF", fmt.Sprintf("%s %s", id, interlockDesc[id]), tr)
		}
	}
	s.activePrev = res.Active

	// 12. log
	tr.T = append(tr.T, ti)
	tr.FFeed = append(tr.FFeed, pv.FFeed)
	tr.TFeedOut = append(tr.TFeedOut, pv.TFeedOut)
	tr.TReb = append(tr.TReb, pv.TReb)
	tr.FReflux = append(tr.FReflux, pv.FReflux)
	tr.TCondOut = append(tr.TCondOut, pv.TCondOut)
	tr.TT106 = append(tr.TT106, pv.TT106)
	tr.TT201 = append(tr.TT201, pv.TT201)
	tr.Rho15 = append(tr.Rho15, pv.Rho15)
	tr.LV201 = append(tr.LV201, pv.LV201)
	tr.SPFfeed = append(tr.SPFfeed, s.ramped.Ffeed)
	tr.SPTfeed = append(tr.SPTfeed, s.ramped.Tfeed)
	tr.SPTreb = append(tr.SPTreb, s.ramped.Treb)
	tr.SPTcond = append(tr.SPTcond, s.ramped.Tcond)
	tr.SPFreflux = append(tr.SPFreflux, s.ramped.Freflux)
	tr.SPLv201 = append(tr.SPLv201, s.ramped.Lv201)
	tr.UFeed = append(tr.UFeed, res.MVs.Feed)
	tr.USteamPre = append(tr.USteamPre, res.MVs.SteamPre)
	tr.USteamReb = append(tr.USteamReb, res.MVs.SteamReb)
	tr.UCw = append(tr.UCw, res.MVs.Cw)
	tr.UReflux = append(tr.UReflux, res.MVs.Reflux)
	tr.UDraw = append(tr.UDraw, res.MVs.Draw)
	tr.DTsub = append(tr.DTsub, dTsub)
	tr.Route = append(tr.Route, int(route))
	tr.AnalyzerOK = append(tr.AnalyzerOK, pv.AnalyzerOK)

	if s.sink != nil {
		s.sink.OnTick(ti, int(route), pv.AnalyzerOK, pv.TT106, pv.Rho15, pv.LV201)
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
