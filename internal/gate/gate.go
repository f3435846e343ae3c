// Package gate implements the two-state hysteretic product/recycle
// quality gate, in the same value-object + explicit-timer idiom the
// pack's circuit breaker uses for its Closed/Open/HalfOpen machine.
package gate

// Route is the gate's output state.
type Route int

const (
	Recycle Route = iota
	Product
)

func (r Route) String() string {
	if r == Product {
		return "PRODUCT"
	}
	return "RECYCLE"
}

// Thresholds holds the ON window and the delay times; OFF thresholds
// are derived by widening the ON window (spec §4.4).
type Thresholds struct {
	TT106Low, TT106High   float64
	Rho15Low, Rho15High   float64
	DTsubMin              float64
	DelayOnS, DelayOffS   float64
	PermissiveLMin, PermissiveLMax float64
}

// off widening constants, fixed per spec (Open Question resolved in DESIGN.md).
const (
	widenTT106 = 2.0
	widenRho   = 0.005
	widenDTsub = 1.0
)

func (t Thresholds) offBand() (ttLow, ttHigh, rhoLow, rhoHigh, dTsubMinOff float64) {
	return t.TT106Low - widenTT106, t.TT106High + widenTT106,
		t.Rho15Low - widenRho, t.Rho15High + widenRho,
		t.DTsubMin - widenDTsub
}

// Gate is the plain-value state machine stepped once per scheduler tick.
type Gate struct {
	Thresholds Thresholds

	route    Route
	onTimer  float64
	offTimer float64
}

// New builds a Gate initialized to RECYCLE with both timers at zero.
func New(th Thresholds) *Gate {
	return &Gate{Thresholds: th, route: Recycle}
}

// Route returns the current route without stepping.
func (g *Gate) Route() Route { return g.route }

// Step advances the gate by dt seconds given the current quality
// signals and the analyzer/permissive flags, returning the (possibly
// unchanged) route.
func (g *Gate) Step(dt, tt106, rho15, dTsub float64, analyzerOK, permissiveOK bool) Route {
	if !analyzerOK || !permissiveOK {
		g.route = Recycle
		g.onTimer = 0
		g.offTimer = 0
		return g.route
	}

	t := g.Thresholds
	onOK := tt106 >= t.TT106Low && tt106 <= t.TT106High &&
		rho15 >= t.Rho15Low && rho15 <= t.Rho15High &&
		dTsub >= t.DTsubMin

	ttLow, ttHigh, rhoLow, rhoHigh, dTsubMinOff := t.offBand()
	offBad := tt106 < ttLow || tt106 > ttHigh ||
		rho15 < rhoLow || rho15 > rhoHigh ||
		dTsub < dTsubMinOff

	switch g.route {
	case Recycle:
		if onOK {
			g.onTimer += dt
		} else {
			g.onTimer = 0
		}
		if g.onTimer >= t.DelayOnS {
			g.route = Product
			g.onTimer = 0
			g.offTimer = 0
		}
	case Product:
		if offBad {
			g.offTimer += dt
		} else {
			g.offTimer = 0
		}
		if g.offTimer >= t.DelayOffS {
			g.route = Recycle
			g.onTimer = 0
			g.offTimer = 0
		}
	}
	return g.route
}
