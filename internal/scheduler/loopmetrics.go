package scheduler

import "nrgchamp/distilltwin/internal/metrics"

// ComputeMetrics evaluates the six loops' metrics over a completed
// trace using the scenario's metric options.
func ComputeMetrics(tr *Trace, opt MetricOptions) LoopMetricsBundle {
	span := func(name string) float64 { return opt.NormalizeSpans[name] }
	mopt := func(name string) metrics.Options {
		return metrics.Options{NormalizeSpan: span(name), SettleBand: opt.SettleBand, HoldWindowS: opt.HoldWindowS}
	}
	return LoopMetricsBundle{
		"FIC101": metrics.ComputeLoop("FIC101", tr.T, tr.SPFfeed, tr.FFeed, mopt("FIC101")),
		"TIC101": metrics.ComputeLoop("TIC101", tr.T, tr.SPTfeed, tr.TFeedOut, mopt("TIC101")),
		"TIC102": metrics.ComputeLoop("TIC102", tr.T, tr.SPTreb, tr.TReb, mopt("TIC102")),
		"TIC201": metrics.ComputeLoop("TIC201", tr.T, tr.SPTcond, tr.TCondOut, mopt("TIC201")),
		"FIC201": metrics.ComputeLoop("FIC201", tr.T, tr.SPFreflux, tr.FReflux, mopt("FIC201")),
		"LIC201": metrics.ComputeLoop("LIC201", tr.T, tr.SPLv201, tr.LV201, mopt("LIC201")),
	}
}

// GateStats computes routing statistics over the trace's route column.
func GateStats(tr *Trace) metrics.GateStats {
	return metrics.ComputeGateStats(tr.Route)
}

// TotalIAE sums IAE across all six loops.
func TotalIAE(m LoopMetricsBundle) float64 {
	var total float64
	for _, l := range m {
		total += l.IAE
	}
	return total
}
