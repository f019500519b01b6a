package metrics

import "github.com/HdrHistogram/hdrhistogram-go"

// HistogramSummary is the derived percentile/statistics view of a single
// metric's histogram, all duration fields in nanoseconds.
type HistogramSummary struct {
	Count  int64
	Mean   float64
	Min    int64
	Max    int64
	StdDev float64
	P50    int64
	P90    int64
	P95    int64
	P99    int64
	P999   int64
}

// MetricsSummary is the output of Accumulator.Summarize: one
// HistogramSummary per recorded metric name, plus a snapshot of all
// counters.
type MetricsSummary struct {
	Histograms map[string]HistogramSummary
	Counters   map[string]int64
}

func summarizeHistogram(h *hdrhistogram.Histogram) HistogramSummary {
	return HistogramSummary{
		Count:  h.TotalCount(),
		Mean:   h.Mean(),
		Min:    h.Min(),
		Max:    h.Max(),
		StdDev: h.StdDev(),
		P50:    h.ValueAtQuantile(50),
		P90:    h.ValueAtQuantile(90),
		P95:    h.ValueAtQuantile(95),
		P99:    h.ValueAtQuantile(99),
		P999:   h.ValueAtQuantile(99.9),
	}
}
