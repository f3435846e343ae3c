// Package plant implements the fixed seven-block distillation-train
// process network: primary FOPDT lags, algebraic couplings, and a
// reflux-drum mass-balance integrator.
package plant

import (
	"math"

	"nrgchamp/distilltwin/internal/fopdt"
)

// Nominal operating point, fixed constants of the model (spec §4.3).
const (
	FFeed0   = 50.0
	TFeed0   = 120.0
	TReb0    = 165.0
	TCond0   = 35.0
	TT106_0  = 95.0
	Rho0     = 0.7400
	L0       = 50.0
	FCond0   = 70.0
	UFeed0   = 50.0
	USteamP0 = 35.0
	USteamR0 = 40.0
	UCw0     = 45.0
	UReflux0 = 55.0
	UDraw0   = 25.0
)

// MVs is the manipulated-variable bundle produced by the controllers.
type MVs struct {
	Feed     float64 // u_feed
	SteamPre float64 // u_steam_pre
	SteamReb float64 // u_steam_reb
	Cw       float64 // u_cw
	Reflux   float64 // u_reflux
	Draw     float64 // u_draw
}

// Clamp restricts every MV to [0,100].
func (m *MVs) Clamp() {
	m.Feed = clamp01to100(m.Feed)
	m.SteamPre = clamp01to100(m.SteamPre)
	m.SteamReb = clamp01to100(m.SteamReb)
	m.Cw = clamp01to100(m.Cw)
	m.Reflux = clamp01to100(m.Reflux)
	m.Draw = clamp01to100(m.Draw)
}

func clamp01to100(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Disturbances holds the per-step exogenous inputs.
type Disturbances struct {
	DFeedTemp  float64
	DVaporLoad float64
	CwDegrade  float64 // [0,1], multiplicative cooling-water degradation
	AnalyzerOK bool
}

// PVs is the full process-variable record produced by one Update.
type PVs struct {
	FFeed      float64
	TFeedOut   float64
	TReb       float64
	FReflux    float64
	TCondOut   float64
	TT106      float64
	TT201      float64
	Rho15      float64
	LV201      float64
	AnalyzerOK bool
}

// Model is the fixed network of seven FopdtBlocks plus the reflux-drum
// level integrator.
type Model struct {
	Dt float64

	gFfeed *fopdt.Block
	gTfeed *fopdt.Block
	gTreb  *fopdt.Block
	gFref  *fopdt.Block
	gTcond *fopdt.Block
	gTT106 *fopdt.Block
	gRho   *fopdt.Block

	level float64

	// noise
	noiseEnabled bool
	rng          *rng
}

// Params carries the per-block gain/tau/theta triples the caller wants
// for each of the seven FOPDT blocks, keyed by role.
type Params struct {
	Ffeed BlockParams
	Tfeed BlockParams
	Treb  BlockParams
	Fref  BlockParams
	Tcond BlockParams
	TT106 BlockParams
	Rho   BlockParams
}

// BlockParams is (gain, time constant, dead time) for one FOPDT block.
type BlockParams struct {
	K, Tau, Theta float64
}

// DefaultParams returns a plausible tuned set of block dynamics for the
// seven process lags, used when the caller supplies none.
func DefaultParams() Params {
	return Params{
		Ffeed: BlockParams{K: 1.0, Tau: 30, Theta: 5},
		Tfeed: BlockParams{K: 0.9, Tau: 90, Theta: 15},
		Treb:  BlockParams{K: 1.3, Tau: 180, Theta: 20},
		Fref:  BlockParams{K: 1.0, Tau: 25, Theta: 5},
		Tcond: BlockParams{K: 0.6, Tau: 120, Theta: 10},
		TT106: BlockParams{K: 1.0, Tau: 60, Theta: 8},
		Rho:   BlockParams{K: 1.0, Tau: 40, Theta: 5},
	}
}

// New builds a Model at the fixed nominal operating point.
func New(dt float64, p Params, seed int64, noise bool) *Model {
	m := &Model{Dt: dt, level: L0, noiseEnabled: noise, rng: newRNG(seed)}
	m.gFfeed = fopdt.New(p.Ffeed.K, p.Ffeed.Tau, p.Ffeed.Theta, dt, FFeed0, UFeed0)
	m.gTfeed = fopdt.New(p.Tfeed.K, p.Tfeed.Tau, p.Tfeed.Theta, dt, TFeed0, USteamP0)
	m.gTreb = fopdt.New(p.Treb.K, p.Treb.Tau, p.Treb.Theta, dt, TReb0, USteamR0)
	m.gFref = fopdt.New(p.Fref.K, p.Fref.Tau, p.Fref.Theta, dt, FFeed0, UReflux0)
	m.gTcond = fopdt.New(p.Tcond.K, p.Tcond.Tau, p.Tcond.Theta, dt, TCond0, UCw0)
	m.gTT106 = fopdt.New(p.TT106.K, p.TT106.Tau, p.TT106.Theta, dt, TT106_0, TT106_0)
	m.gRho = fopdt.New(p.Rho.K, p.Rho.Tau, p.Rho.Theta, dt, Rho0, Rho0)
	return m
}

// Level returns the current reflux-drum inventory.
func (m *Model) Level() float64 { return m.level }

// Update advances the plant by one dt given the current MVs and
// disturbance state, returning the full PV record.
func (m *Model) Update(mv MVs, d Disturbances) PVs {
	mv.Clamp()

	ffeed := m.gFfeed.Update(mv.Feed, 0)
	tfeedOut := m.gTfeed.Update(mv.SteamPre, d.DFeedTemp)
	treb := m.gTreb.Update(mv.SteamReb, d.DVaporLoad)
	freflux := m.gFref.Update(mv.Reflux, 0)
	tcondOut := m.gTcond.Update(mv.Cw*d.CwDegrade, 0)

	tt106SS := TT106_0 + 0.35*(treb-TReb0) - 0.20*(freflux-50) + 0.05*(ffeed-FFeed0)
	tt106 := m.gTT106.Update(tt106SS, 0)

	tt201 := tt106 + 0.20*(treb-TReb0)

	fCondIn := math.Max(0, FCond0+0.20*(treb-TReb0)+0.10*(ffeed-FFeed0))
	fDraw := 0.8 * mv.Draw
	m.level = clampF(m.level+(fCondIn-freflux-fDraw)*(m.Dt/200.0), 0, 100)

	rhoSS := Rho0 + 0.0009*(tt106-TT106_0) - 0.0011*(freflux-50)
	rho15 := m.gRho.Update(rhoSS, 0)

	lv201 := m.level

	if m.noiseEnabled {
		ffeed += m.rng.gauss(0, 0.45)
		tfeedOut += m.rng.gauss(0, 0.22)
		treb += m.rng.gauss(0, 0.22)
		freflux += m.rng.gauss(0, 0.45)
		tcondOut += m.rng.gauss(0, 0.22)
		tt106 += m.rng.gauss(0, 0.20)
		tt201 += m.rng.gauss(0, 0.20)
		lv201 = clampF(lv201+m.rng.gauss(0, 0.2), 0, 100)
		rho15 += m.rng.gauss(0, 0.0005)
	}

	return PVs{
		FFeed: ffeed, TFeedOut: tfeedOut, TReb: treb, FReflux: freflux,
		TCondOut: tcondOut, TT106: tt106, TT201: tt201, Rho15: rho15,
		LV201: lv201, AnalyzerOK: d.AnalyzerOK,
	}
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
