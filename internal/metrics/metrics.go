// Package metrics computes per-loop control-performance metrics and
// gate routing statistics over a completed trace.
package metrics

import "math"

// Undefined marks a metric that has no meaningful value for this run
// (transported as a null over the wire).
const Undefined = math.MaxFloat64

// Options carries the normalization span, settling band, and hold
// window used by SettlingTime/IAE.
type Options struct {
	NormalizeSpan float64 // 0 disables normalization
	SettleBand    float64 // fraction of |sp_final|, e.g. 0.02
	HoldWindowS   float64
}

// Loop is the (IAE, ITAE, OvershootPct, SettlingTime) bundle for one
// control loop. OvershootPct/SettlingTime use metrics.Undefined when
// the spec calls for "not defined"/"not settled".
type Loop struct {
	Name         string
	IAE          float64
	ITAE         float64
	OvershootPct float64
	SettlingTime float64
	Settled      bool // false also covers "not defined"
}

// ComputeLoop evaluates one loop's metrics from its trace columns.
// t, sp, pv must have equal, non-zero length.
func ComputeLoop(name string, t, sp, pv []float64, opt Options) Loop {
	n := len(t)
	if n < 2 {
		return Loop{Name: name, OvershootPct: Undefined, SettlingTime: Undefined}
	}
	dt := t[1] - t[0]

	var iae, itae float64
	span := 1.0
	if opt.NormalizeSpan > 0 {
		span = opt.NormalizeSpan
	}
	for i := 0; i < n; i++ {
		e := (sp[i] - pv[i]) / span
		ae := math.Abs(e)
		iae += ae * dt
		itae += t[i] * ae * dt
	}

	spFinal := sp[n-1]
	overshoot := Undefined
	if math.Abs(spFinal) >= 1e-9 {
		maxPV := pv[0]
		for _, v := range pv {
			if v > maxPV {
				maxPV = v
			}
		}
		ov := (maxPV - spFinal) / math.Abs(spFinal) * 100
		if ov < 0 {
			ov = 0
		}
		overshoot = ov
	}

	settling := Undefined
	settled := false
	sp0 := sp[0]
	noChange := math.Abs(spFinal-sp0) <= math.Max(1e-6, 0.001*math.Max(1, math.Abs(sp0)))
	if !noChange {
		band := opt.SettleBand
		if band <= 0 {
			band = 0.02
		}
		tol := math.Max(math.Abs(spFinal)*band, 1e-6)

		firstOut := -1
		for i := 0; i < n; i++ {
			if math.Abs(pv[i]-spFinal) > tol {
				firstOut = i
				break
			}
		}
		if firstOut == -1 {
			settling = t[0]
			settled = true
		} else {
			hold := opt.HoldWindowS
			holdSteps := int(hold/dt + 0.5)
			if holdSteps < 1 {
				holdSteps = 1
			}
			found := false
			for i := firstOut; i < n; i++ {
				end := i + holdSteps
				if end > n {
					break
				}
				ok := true
				for j := i; j < end; j++ {
					if math.Abs(pv[j]-spFinal) > tol {
						ok = false
						break
					}
				}
				if ok {
					settling = t[i]
					settled = true
					found = true
					break
				}
			}
			if !found {
				settling = Undefined
				settled = false
			}
		}
	}

	return Loop{
		Name: name, IAE: iae, ITAE: itae,
		OvershootPct: overshoot, SettlingTime: settling, Settled: settled,
	}
}

// GateStats summarizes routing behavior over a complete run.
type GateStats struct {
	ProductPct float64
	Switches   int
}

// ComputeGateStats computes productPct and switches over route[].
// route values follow gate.Route encoding (0=RECYCLE,1=PRODUCT).
func ComputeGateStats(route []int) GateStats {
	if len(route) == 0 {
		return GateStats{}
	}
	product := 0
	switches := 0
	for i, r := range route {
		if r == 1 {
			product++
		}
		if i > 0 && route[i] != route[i-1] {
			switches++
		}
	}
	return GateStats{
		ProductPct: 100 * float64(product) / float64(len(route)),
		Switches:   switches,
	}
}
