package telemetry

import (
	"sort"
)

// RiskSites flags problematic sites: arrival completeness below
// ArrivalRiskThreshold or delay above DelayRiskThreshold minutes. The
// tables must already be resampled to the given granularity (daily
// tables for Daily, native or hourly otherwise). The result is the
// sorted union of both conditions' matches.
//
// Missing values are treated optimistically: they never count toward a
// row minimum or maximum, and a daily gap is assumed fine (arrival 100,
// delay 0). Absence of data must not manufacture a risk signal.
func RiskSites(arrival, delay Table, g Granularity) []string {
	risky := make(map[string]bool)

	if g == Daily {
		for _, row := range arrival.Rows {
			if row.Values[0].Or(ArrivalRiskThreshold) < ArrivalRiskThreshold {
				risky[row.Site] = true
			}
		}
		for _, row := range delay.Rows {
			if row.Values[0].Or(0) > DelayRiskThreshold {
				risky[row.Site] = true
			}
		}
	} else {
		for _, row := range arrival.Rows {
			if min, ok := rowMin(row.Values); ok && min < ArrivalRiskThreshold {
				risky[row.Site] = true
			}
		}
		for _, row := range delay.Rows {
			if max, ok := rowMax(row.Values); ok && max > DelayRiskThreshold {
				risky[row.Site] = true
			}
		}
	}

	sites := make([]string, 0, len(risky))
	for s := range risky {
		sites = append(sites, s)
	}
	sort.Strings(sites)
	return sites
}

// Intersect keeps the risky sites that are also legal under the current
// cascade, preserving order.
func Intersect(risky, legal []string) []string {
	legalSet := make(map[string]bool, len(legal))
	for _, s := range legal {
		legalSet[s] = true
	}
	out := make([]string, 0, len(risky))
	for _, s := range risky {
		if legalSet[s] {
			out = append(out, s)
		}
	}
	return out
}

func rowMin(values []Value) (float64, bool) {
	var min float64
	var found bool
	for _, v := range values {
		if !v.Valid {
			continue
		}
		if !found || v.Float64 < min {
			min = v.Float64
			found = true
		}
	}
	return min, found
}

func rowMax(values []Value) (float64, bool) {
	var max float64
	var found bool
	for _, v := range values {
		if !v.Valid {
			continue
		}
		if !found || v.Float64 > max {
			max = v.Float64
			found = true
		}
	}
	return max, found
}
