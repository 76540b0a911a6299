package telemetry

import (
	"fmt"
	"sort"
	"time"
)

// Resample derives both tables at the requested granularity. Native is a
// pass-through; the base tables are shared, never copied, and never
// mutated downstream.
func Resample(arrival, delay Table, g Granularity) (Table, Table) {
	switch g {
	case Hourly:
		return ToHourly(arrival), ToHourly(delay)
	case Daily:
		return ToDailyPair(arrival, delay)
	default:
		return arrival, delay
	}
}

// ToHourly re-buckets 15-minute interval columns into 24 hourly means.
// Each hour averages its available slots; an hour with all four slots
// missing yields a missing cell. Hours with no source columns at all are
// omitted from the output.
func ToHourly(t Table) Table {
	type hourGroup struct {
		label   string
		indexes []int
	}
	var groups []hourGroup
	for h, label := range HourLabels() {
		g := hourGroup{label: label}
		for _, m := range []int{0, 15, 30, 45} {
			if idx := t.ColumnIndex(fmt.Sprintf("%02d:%02d", h, m)); idx >= 0 {
				g.indexes = append(g.indexes, idx)
			}
		}
		if len(g.indexes) > 0 {
			groups = append(groups, g)
		}
	}

	out := Table{Columns: make([]string, len(groups)), Rows: make([]Record, len(t.Rows))}
	for i, g := range groups {
		out.Columns[i] = g.label
	}
	for ri, row := range t.Rows {
		values := make([]Value, len(groups))
		for gi, g := range groups {
			slot := make([]Value, 0, len(g.indexes))
			for _, idx := range g.indexes {
				slot = append(slot, row.Values[idx])
			}
			values[gi] = Mean(slot)
		}
		nr := row
		nr.Values = values
		out.Rows[ri] = nr
	}
	return out
}

// dailyKey identifies one site on one calendar day.
type dailyKey struct {
	region, market, site string
	day                  time.Time
}

// dailyAgg accumulates the per-day mean and risk sum.
type dailyAgg struct {
	sum   float64
	count int
	risk  int
}

// ToDailyPair builds the dense 5-day daily view of both tables: each
// row carries a single daily_avg value for one (region, market, site,
// day). The grid covers every distinct site triple observed in either
// table crossed with the last DailyWindowDays calendar days, anchored at
// the maximum date seen across both tables. Grid gaps stay missing.
func ToDailyPair(arrival, delay Table) (Table, Table) {
	combos, lastDay, ok := comboGrid(arrival, delay)
	if !ok {
		empty := Table{Columns: []string{ColDailyAvg}}
		return empty, empty
	}

	days := make([]time.Time, DailyWindowDays)
	for i := range days {
		days[i] = lastDay.AddDate(0, 0, i-(DailyWindowDays-1))
	}

	return dailyGrid(arrival, combos, days), dailyGrid(delay, combos, days)
}

// comboGrid collects the sorted distinct identity triples of both tables
// and the maximum observed calendar day. ok is false when no row in
// either table carries a valid date.
func comboGrid(arrival, delay Table) ([][3]string, time.Time, bool) {
	seen := make(map[[3]string]bool)
	var combos [][3]string
	var lastDay time.Time
	var anyDate bool

	collect := func(t Table) {
		for _, row := range t.Rows {
			key := [3]string{row.Region, row.Market, row.Site}
			if !seen[key] {
				seen[key] = true
				combos = append(combos, key)
			}
			if row.DateValid {
				if d := row.Day(); !anyDate || d.After(lastDay) {
					lastDay = d
					anyDate = true
				}
			}
		}
	}
	collect(arrival)
	collect(delay)

	sort.Slice(combos, func(i, j int) bool {
		if combos[i][0] != combos[j][0] {
			return combos[i][0] < combos[j][0]
		}
		if combos[i][1] != combos[j][1] {
			return combos[i][1] < combos[j][1]
		}
		return combos[i][2] < combos[j][2]
	})
	return combos, lastDay, anyDate
}

// dailyGrid collapses a table to per-day aggregates and left-joins them
// onto the combo × day grid.
func dailyGrid(t Table, combos [][3]string, days []time.Time) Table {
	aggs := make(map[dailyKey]*dailyAgg)
	for _, row := range t.Rows {
		// Rows without a parseable date cannot participate in daily grouping.
		if !row.DateValid {
			continue
		}
		avg := Mean(row.Values)
		key := dailyKey{row.Region, row.Market, row.Site, row.Day()}
		agg := aggs[key]
		if agg == nil {
			agg = &dailyAgg{}
			aggs[key] = agg
		}
		if avg.Valid {
			agg.sum += avg.Float64
			agg.count++
		}
		agg.risk += row.Risk
	}

	out := Table{Columns: []string{ColDailyAvg}, Rows: make([]Record, 0, len(combos)*len(days))}
	for _, combo := range combos {
		for _, day := range days {
			row := Record{
				Region:    combo[0],
				Market:    combo[1],
				Site:      combo[2],
				Date:      day,
				DateValid: true,
				Values:    []Value{Missing},
			}
			if agg, ok := aggs[dailyKey{combo[0], combo[1], combo[2], day}]; ok {
				if agg.count > 0 {
					row.Values[0] = Num(agg.sum / float64(agg.count))
				}
				row.Risk = agg.risk
			}
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}
