package telemetry

import (
	"sort"
	"time"
)

// Pivot is a site × interval matrix: one row per distinct site, one
// column per active interval (hour label, 15-minute label, or calendar
// day). Cells are means over duplicate rows; missing stays missing.
type Pivot struct {
	Sites   []string   `json:"sites"`
	Columns []string   `json:"columns"`
	Cells   [][]Value  `json:"cells"`
}

// Empty reports whether the pivot has no site rows.
func (p Pivot) Empty() bool {
	return len(p.Sites) == 0
}

// PivotTable builds the site × interval pivot of a filtered table. For
// daily tables the column set is the distinct calendar days present;
// otherwise it is the table's own interval columns.
func PivotTable(t Table, g Granularity) Pivot {
	if g == Daily {
		return pivotDaily(t)
	}
	return pivotIntervals(t)
}

func pivotIntervals(t Table) Pivot {
	type acc struct {
		sum   []float64
		count []int
	}
	bySite := make(map[string]*acc)
	var sites []string
	for _, row := range t.Rows {
		a := bySite[row.Site]
		if a == nil {
			a = &acc{sum: make([]float64, len(t.Columns)), count: make([]int, len(t.Columns))}
			bySite[row.Site] = a
			sites = append(sites, row.Site)
		}
		for i, v := range row.Values {
			if v.Valid {
				a.sum[i] += v.Float64
				a.count[i]++
			}
		}
	}
	sort.Strings(sites)

	p := Pivot{Sites: sites, Columns: t.Columns, Cells: make([][]Value, len(sites))}
	for si, site := range sites {
		a := bySite[site]
		cells := make([]Value, len(t.Columns))
		for i := range t.Columns {
			if a.count[i] > 0 {
				cells[i] = Num(a.sum[i] / float64(a.count[i]))
			}
		}
		p.Cells[si] = cells
	}
	return p
}

func pivotDaily(t Table) Pivot {
	type cellKey struct {
		site string
		day  time.Time
	}
	type acc struct {
		sum   float64
		count int
	}
	cells := make(map[cellKey]*acc)
	siteSet := make(map[string]bool)
	daySet := make(map[time.Time]bool)
	for _, row := range t.Rows {
		if !row.DateValid {
			continue
		}
		day := row.Day()
		siteSet[row.Site] = true
		daySet[day] = true
		key := cellKey{row.Site, day}
		a := cells[key]
		if a == nil {
			a = &acc{}
			cells[key] = a
		}
		if row.Values[0].Valid {
			a.sum += row.Values[0].Float64
			a.count++
		}
	}

	sites := sortedKeys(siteSet)
	days := make([]time.Time, 0, len(daySet))
	for d := range daySet {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	p := Pivot{Sites: sites, Columns: make([]string, len(days)), Cells: make([][]Value, len(sites))}
	for i, d := range days {
		p.Columns[i] = d.Format(DateLayout)
	}
	for si, site := range sites {
		row := make([]Value, len(days))
		for di, d := range days {
			if a, ok := cells[cellKey{site, d}]; ok && a.count > 0 {
				row[di] = Num(a.sum / float64(a.count))
			}
		}
		p.Cells[si] = row
	}
	return p
}

// Dimension selects the grouping column of an aggregate.
type Dimension int

const (
	// ByRegion groups on the region column.
	ByRegion Dimension = iota
	// ByMarket groups on the market column.
	ByMarket
)

func (d Dimension) key(r Record) string {
	if d == ByMarket {
		return r.Market
	}
	return r.Region
}

// GroupValue is one grouped mean: (dimension value, aggregate).
type GroupValue struct {
	Key   string `json:"key"`
	Value Value  `json:"value"`
}

// GroupCount is one grouped integer sum.
type GroupCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// MeanByGroup averages the table's value columns per group: each column
// is averaged over the group's rows, then the column means are averaged.
// Groups whose cells are all missing aggregate to missing.
func MeanByGroup(t Table, dim Dimension) []GroupValue {
	type acc struct {
		sum   []float64
		count []int
	}
	groups := make(map[string]*acc)
	for _, row := range t.Rows {
		key := dim.key(row)
		a := groups[key]
		if a == nil {
			a = &acc{sum: make([]float64, len(t.Columns)), count: make([]int, len(t.Columns))}
			groups[key] = a
		}
		for i, v := range row.Values {
			if v.Valid {
				a.sum[i] += v.Float64
				a.count[i]++
			}
		}
	}

	out := make([]GroupValue, 0, len(groups))
	for key, a := range groups {
		colMeans := make([]Value, 0, len(a.sum))
		for i := range a.sum {
			if a.count[i] > 0 {
				colMeans = append(colMeans, Num(a.sum[i]/float64(a.count[i])))
			}
		}
		out = append(out, GroupValue{Key: key, Value: Mean(colMeans)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// RiskSumByGroup sums the risk counter per group.
func RiskSumByGroup(t Table, dim Dimension) []GroupCount {
	groups := make(map[string]int)
	for _, row := range t.Rows {
		groups[dim.key(row)] += row.Risk
	}
	out := make([]GroupCount, 0, len(groups))
	for key, sum := range groups {
		out = append(out, GroupCount{Key: key, Count: sum})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// ZeroDistribution counts exactly-zero readings per market across the
// table's value cells. A cell counts only when it is present and equals
// zero; missing is never counted as zero.
func ZeroDistribution(t Table) []GroupCount {
	counts := make(map[string]int)
	for _, row := range t.Rows {
		zeros := 0
		for _, v := range row.Values {
			if v.Valid && v.Float64 == 0 {
				zeros++
			}
		}
		counts[row.Market] += zeros
	}
	out := make([]GroupCount, 0, len(counts))
	for market, n := range counts {
		out = append(out, GroupCount{Key: market, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
