package telemetry

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Canonical identity column names shared by both source tables.
const (
	ColRegion = "region"
	ColMarket = "market"
	ColSite   = "gnodeb"
	ColDate   = "filedate"
	ColRisk   = "risk"
)

// ColDailyAvg is the single value column of a daily-resampled table.
const ColDailyAvg = "daily_avg"

// All is the sentinel selection meaning "no constraint from this level".
const All = "All"

// Fixed pipeline thresholds.
const (
	// ArrivalRiskThreshold flags a site whose arrival percentage drops below it.
	ArrivalRiskThreshold = 100.0
	// DelayRiskThreshold is the delay risk limit in minutes at every granularity.
	DelayRiskThreshold = 20.0
	// DelaySLAMinutes is the reference line drawn on delay trend charts.
	DelaySLAMinutes = 10.0
	// DailyWindowDays is the width of the dense daily grid.
	DailyWindowDays = 5
)

// DateLayout is the canonical textual form of a report date.
const DateLayout = "2006-01-02"

// Value is an optional numeric cell. A zero Value is missing; a present
// zero is Num(0). Missing must never be conflated with zero anywhere in
// the pipeline.
type Value struct {
	Float64 float64
	Valid   bool
}

// Num returns a present Value.
func Num(f float64) Value {
	return Value{Float64: f, Valid: true}
}

// Missing is the absent Value.
var Missing = Value{}

// Or returns the value, or def when missing.
func (v Value) Or(def float64) float64 {
	if v.Valid {
		return v.Float64
	}
	return def
}

// MarshalJSON encodes missing values as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.Float64)
}

// UnmarshalJSON decodes null as missing.
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Missing
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Num(f)
	return nil
}

// Mean averages the present values. All-missing input yields Missing.
func Mean(values []Value) Value {
	var sum float64
	var n int
	for _, v := range values {
		if v.Valid {
			sum += v.Float64
			n++
		}
	}
	if n == 0 {
		return Missing
	}
	return Num(sum / float64(n))
}

// Granularity is the temporal resolution of a derived view.
type Granularity int

const (
	// Native is the raw 96-column 15-minute resolution.
	Native Granularity = iota
	// Hourly averages each clock hour's four slots.
	Hourly
	// Daily collapses a row to one average per calendar day.
	Daily
)

// String returns the wire name of the granularity.
func (g Granularity) String() string {
	switch g {
	case Native:
		return "native"
	case Hourly:
		return "hourly"
	case Daily:
		return "daily"
	default:
		return "unknown"
	}
}

// ParseGranularity maps a wire name to a Granularity.
func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "native", "15min", "15-min":
		return Native, nil
	case "hourly":
		return Hourly, nil
	case "daily":
		return Daily, nil
	default:
		return Native, fmt.Errorf("unknown granularity %q", s)
	}
}

// Record is one row of a telemetry table: one site on one report date.
// Values is aligned with the owning Table's Columns.
type Record struct {
	Region    string
	Market    string
	Site      string
	Date      time.Time
	DateValid bool
	Values    []Value
	Risk      int
}

// Day returns the record's calendar day at midnight UTC.
func (r Record) Day() time.Time {
	return r.Date.Truncate(24 * time.Hour)
}

// Table is an immutable set of records sharing one value-column layout.
// Derived views always allocate fresh tables; base tables are never
// mutated after normalization.
type Table struct {
	Columns []string
	Rows    []Record
}

// ColumnIndex returns the position of a value column, or -1.
func (t Table) ColumnIndex(label string) int {
	for i, c := range t.Columns {
		if c == label {
			return i
		}
	}
	return -1
}

// Empty reports whether the table has no rows.
func (t Table) Empty() bool {
	return len(t.Rows) == 0
}

// IsDaily reports whether the table carries the daily single-column shape.
func (t Table) IsDaily() bool {
	return len(t.Columns) == 1 && t.Columns[0] == ColDailyAvg
}

// FilterSelection is the explicit, immutable selection state threaded
// through every pipeline call. Zero-value string fields and an empty
// Sites slice mean "All".
type FilterSelection struct {
	Region      string
	Market      string
	Date        string // DateLayout or All
	Sites       []string
	Granularity Granularity
	RiskOnly    bool
}

// constrains reports whether the given selection value narrows a domain.
func constrains(sel string) bool {
	return sel != "" && sel != All
}

// IntervalLabels returns the 96 "HH:MM" native column labels in clock order.
func IntervalLabels() []string {
	labels := make([]string, 0, 96)
	for h := 0; h < 24; h++ {
		for _, m := range []int{0, 15, 30, 45} {
			labels = append(labels, fmt.Sprintf("%02d:%02d", h, m))
		}
	}
	return labels
}

// HourLabels returns the 24 "00".."23" hourly column labels.
func HourLabels() []string {
	labels := make([]string, 24)
	for h := 0; h < 24; h++ {
		labels[h] = fmt.Sprintf("%02d", h)
	}
	return labels
}

// IsIntervalLabel reports whether a column label names a 15-minute slot.
func IsIntervalLabel(label string) bool {
	return len(label) == 5 && label[2] == ':'
}
