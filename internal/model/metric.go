package model

import "strconv"

// MetricSeries is one named time series from the source group.
// Times and Values are expected to have equal length; that is not checked.
type MetricSeries struct {
	Metric string    `json:"metric"`
	Times  []float64 `json:"times"`
	Values []float64 `json:"values"`
}

// HasValues reports whether the series has at least one reading.
func (m MetricSeries) HasValues() bool { return len(m.Values) > 0 }

// Latest returns the most recent reading. ok is false for an empty series.
func (m MetricSeries) Latest() (v float64, ok bool) {
	if len(m.Values) == 0 {
		return 0, false
	}
	return m.Values[len(m.Values)-1], true
}

// Row is one line of the metrics table.
type Row struct {
	Metric string  `json:"metric"`
	Value  float64 `json:"value"`
}

// FormatValue renders the value in its shortest exact decimal form (30, 1.5).
func (r Row) FormatValue() string { return FormatNumber(r.Value) }

// FormatNumber renders a reading without trailing zeros or exponent.
func FormatNumber(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// Snapshot is everything extracted from one fetch response.
// Loaded is false until a response carrying the group has been normalized.
type Snapshot struct {
	Group  string         `json:"group"`
	Series []MetricSeries `json:"series"`
	Loaded bool           `json:"loaded"`
}

// Zero returns an empty, unloaded snapshot for initialization.
func Zero() Snapshot { return Snapshot{} }

// Visible returns the series shown in the table and offered by the selector:
// those with at least one value, in source order. Nothing is visible before
// the snapshot is loaded.
func (s Snapshot) Visible() []MetricSeries {
	if !s.Loaded {
		return nil
	}
	out := make([]MetricSeries, 0, len(s.Series))
	for _, m := range s.Series {
		if m.HasValues() {
			out = append(out, m)
		}
	}
	return out
}

// Rows returns one table row per visible series, carrying its latest value.
func (s Snapshot) Rows() []Row {
	visible := s.Visible()
	rows := make([]Row, 0, len(visible))
	for _, m := range visible {
		v, _ := m.Latest()
		rows = append(rows, Row{Metric: m.Metric, Value: v})
	}
	return rows
}

// Options returns the metric names the selector offers.
func (s Snapshot) Options() []string {
	visible := s.Visible()
	names := make([]string, 0, len(visible))
	for _, m := range visible {
		names = append(names, m.Metric)
	}
	return names
}

// Lookup returns the last visible series named metric. Later entries win
// when a name repeats.
func (s Snapshot) Lookup(metric string) (MetricSeries, bool) {
	visible := s.Visible()
	for i := len(visible) - 1; i >= 0; i-- {
		if visible[i].Metric == metric {
			return visible[i], true
		}
	}
	return MetricSeries{}, false
}

// Report is the exported form of a snapshot: the series plus the table rows
// and selector options derived from them.
type Report struct {
	Snapshot
	Rows    []Row    `json:"rows"`
	Options []string `json:"options"`
}

// NewReport derives rows and options from snap.
func NewReport(snap Snapshot) Report {
	if snap.Series == nil {
		snap.Series = []MetricSeries{}
	}
	return Report{Snapshot: snap, Rows: snap.Rows(), Options: snap.Options()}
}
