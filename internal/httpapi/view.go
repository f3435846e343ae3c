package httpapi

import (
	"nrgchamp/distilltwin/internal/metrics"
	"nrgchamp/distilltwin/internal/scheduler"
	"nrgchamp/distilltwin/internal/suite"
)

// ChartPoint is one downsampled row of the single-mode chartData array
// (spec §6).
type ChartPoint struct {
	T             float64 `json:"t"`
	Tfeed         float64 `json:"Tfeed"`
	SPTfeed       float64 `json:"SP_Tfeed"`
	Treb          float64 `json:"Treb"`
	SPTreb        float64 `json:"SP_Treb"`
	Tcond         float64 `json:"Tcond"`
	SPTcond       float64 `json:"SP_Tcond"`
	TT106         float64 `json:"TT106"`
	TT201         float64 `json:"TT201"`
	Rho15         float64 `json:"rho15"`
	GateRhoLow    float64 `json:"Gate_rho_low"`
	GateRhoHigh   float64 `json:"Gate_rho_high"`
	DTsub         float64 `json:"dTsub"`
	GateDTsubMin  float64 `json:"Gate_dTsub_min"`
	Route         int     `json:"route"`
	AnalyzerOK    int     `json:"analyzer_ok"`
	Ffeed         float64 `json:"Ffeed"`
	SPFfeed       float64 `json:"SP_Ffeed"`
	Freflux       float64 `json:"Freflux"`
	SPFreflux     float64 `json:"SP_Freflux"`
	Lv201         float64 `json:"Lv201"`
	SPLv201       float64 `json:"SP_Lv201"`
	UFeed         float64 `json:"u_feed"`
	USteamPre     float64 `json:"u_steam_pre"`
	USteamReb     float64 `json:"u_steam_reb"`
	UCw           float64 `json:"u_cw"`
	UReflux       float64 `json:"u_reflux"`
	UDraw         float64 `json:"u_draw"`
}

// MetricRow is one entry of the `metrics` array. SettlingTime/OvershootPct
// are nil (transported as JSON null) when metrics.Undefined.
type MetricRow struct {
	Name         string   `json:"name"`
	IAE          float64  `json:"IAE"`
	ITAE         float64  `json:"ITAE"`
	OvershootPct *float64 `json:"OvershootPct"`
	SettlingTime *float64 `json:"SettlingTime"`
}

// GateStatsView is the `gate` object of the single-mode response.
type GateStatsView struct {
	ProductPct float64 `json:"productPct"`
	Switches   int     `json:"switches"`
}

// EventRow is one entry of `eventLog`.
type EventRow struct {
	T   float64 `json:"t"`
	Msg string  `json:"msg"`
}

// SingleResponse is the full single-mode wire response.
type SingleResponse struct {
	ChartData []ChartPoint    `json:"chartData"`
	Metrics   []MetricRow     `json:"metrics"`
	Gate      GateStatsView   `json:"gate"`
	EventLog  []EventRow      `json:"eventLog"`
}

// SuiteRow is one entry of the suite-mode response array.
type SuiteRow struct {
	Name     string        `json:"name"`
	Gate     GateStatsView `json:"gate"`
	TotalIAE float64       `json:"totalIAE"`
	Metrics  []MetricRow   `json:"metrics"`
}

const chartCap = 700

func optionalFloat(v float64) *float64 {
	if v == metrics.Undefined {
		return nil
	}
	return &v
}

func loopRows(m scheduler.LoopMetricsBundle) []MetricRow {
	rows := make([]MetricRow, 0, len(scheduler.LoopNames))
	for _, name := range scheduler.LoopNames {
		l := m[name]
		rows = append(rows, MetricRow{
			Name:         l.Name,
			IAE:          l.IAE,
			ITAE:         l.ITAE,
			OvershootPct: optionalFloat(l.OvershootPct),
			SettlingTime: optionalFloat(l.SettlingTime),
		})
	}
	return rows
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// downsampleIdx returns up to cap evenly-spaced sample indices covering
// [0, n-1], always including the first and last sample.
func downsampleIdx(n, capN int) []int {
	if n <= capN {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	idx := make([]int, capN)
	step := float64(n-1) / float64(capN-1)
	for i := 0; i < capN; i++ {
		idx[i] = int(float64(i)*step + 0.5)
	}
	return idx
}

// BuildSingleResponse shapes a completed trace into the single-mode
// wire response, downsampling chartData to chartCap points and
// truncating eventLog to 200 events.
func BuildSingleResponse(tr *scheduler.Trace, opt scheduler.MetricOptions, gateRhoLow, gateRhoHigh, gateDTsubMin float64) SingleResponse {
	idx := downsampleIdx(tr.Len(), chartCap)
	chart := make([]ChartPoint, 0, len(idx))
	for _, i := range idx {
		chart = append(chart, ChartPoint{
			T: tr.T[i], Tfeed: tr.TFeedOut[i], SPTfeed: tr.SPTfeed[i],
			Treb: tr.TReb[i], SPTreb: tr.SPTreb[i],
			Tcond: tr.TCondOut[i], SPTcond: tr.SPTcond[i],
			TT106: tr.TT106[i], TT201: tr.TT201[i], Rho15: tr.Rho15[i],
			GateRhoLow: gateRhoLow, GateRhoHigh: gateRhoHigh,
			DTsub: tr.DTsub[i], GateDTsubMin: gateDTsubMin,
			Route: tr.Route[i], AnalyzerOK: boolToInt(tr.AnalyzerOK[i]),
			Ffeed: tr.FFeed[i], SPFfeed: tr.SPFfeed[i],
			Freflux: tr.FReflux[i], SPFreflux: tr.SPFreflux[i],
			Lv201: tr.LV201[i], SPLv201: tr.SPLv201[i],
			UFeed: tr.UFeed[i], USteamPre: tr.USteamPre[i], USteamReb: tr.USteamReb[i],
			UCw: tr.UCw[i], UReflux: tr.UReflux[i], UDraw: tr.UDraw[i],
		})
	}

	m := scheduler.ComputeMetrics(tr, opt)
	gs := scheduler.GateStats(tr)

	events := tr.Events
	if len(events) > 200 {
		events = events[:200]
	}
	rows := make([]EventRow, 0, len(events))
	for _, e := range events {
		rows = append(rows, EventRow{T: e.T, Msg: e.Msg})
	}

	return SingleResponse{
		ChartData: chart,
		Metrics:   loopRows(m),
		Gate:      GateStatsView{ProductPct: gs.ProductPct, Switches: gs.Switches},
		EventLog:  rows,
	}
}

// BuildSuiteResponse shapes suite.Run's results into the suite-mode
// wire response, preserving scenario order.
func BuildSuiteResponse(results []suite.Result) []SuiteRow {
	rows := make([]SuiteRow, 0, len(results))
	for _, r := range results {
		rows = append(rows, SuiteRow{
			Name:     r.Name,
			Gate:     GateStatsView{ProductPct: r.Gate.ProductPct, Switches: r.Gate.Switches},
			TotalIAE: r.TotalIAE,
			Metrics:  loopRows(r.Metrics),
		})
	}
	return rows
}
