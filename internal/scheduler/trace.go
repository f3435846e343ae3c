package scheduler

// Event is one gate/interlock transition logged during a run.
type Event struct {
	T   float64
	Msg string
}

// Trace is the column-store output of a complete run, sized up front
// from N+1 samples so the hot loop never reallocates (spec §9).
type Trace struct {
	T []float64

	FFeed, TFeedOut, TReb, FReflux, TCondOut, TT106, TT201, Rho15, LV201 []float64
	SPFfeed, SPTfeed, SPTreb, SPTcond, SPFreflux, SPLv201                []float64
	UFeed, USteamPre, USteamReb, UCw, UReflux, UDraw                    []float64
	DTsub      []float64
	Route      []int
	AnalyzerOK []bool

	Events []Event
}

func newTrace(n int) *Trace {
	mk := func() []float64 { return make([]float64, 0, n) }
	return &Trace{
		T:          mk(),
		FFeed:      mk(),
		TFeedOut:   mk(),
		TReb:       mk(),
		FReflux:    mk(),
		TCondOut:   mk(),
		TT106:      mk(),
		TT201:      mk(),
		Rho15:      mk(),
		LV201:      mk(),
		SPFfeed:    mk(),
		SPTfeed:    mk(),
		SPTreb:     mk(),
		SPTcond:    mk(),
		SPFreflux:  mk(),
		SPLv201:    mk(),
		UFeed:      mk(),
		USteamPre:  mk(),
		USteamReb:  mk(),
		UCw:        mk(),
		UReflux:    mk(),
		UDraw:      mk(),
		DTsub:      mk(),
		Route:      make([]int, 0, n),
		AnalyzerOK: make([]bool, 0, n),
	}
}

// Len returns the number of samples currently appended.
func (tr *Trace) Len() int { return len(tr.T) }
