package plant

import (
	"math"
	"math/rand"
)

// rng is a seedable Gaussian generator using the Box-Muller transform
// over two uniforms, per the reference behavior (spec §9).
type rng struct {
	src   *rand.Rand
	spare float64
	hasSp bool
}

func newRNG(seed int64) *rng {
	return &rng{src: rand.New(rand.NewSource(seed))}
}

// gauss returns a sample from N(mean, sigma^2).
func (r *rng) gauss(mean, sigma float64) float64 {
	if r.hasSp {
		r.hasSp = false
		return mean + sigma*r.spare
	}
	var u1 float64
	for {
		u1 = r.src.Float64()
		if u1 > 1e-12 {
			break
		}
	}
	u2 := r.src.Float64()

	mag := math.Sqrt(-2 * math.Log(u1))
	z0 := mag * math.Cos(2*math.Pi*u2)
	z1 := mag * math.Sin(2*math.Pi*u2)

	r.spare = z1
	r.hasSp = true
	return mean + sigma*z0
}
