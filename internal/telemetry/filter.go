package telemetry

import (
	"sort"
)

// Domains are the legal candidate sets for each cascading filter level.
// Each level is restricted by the selections made upstream of it:
// region constrains market, region+market constrain date, and
// region+market+date constrain site.
type Domains struct {
	Regions []string `json:"regions"`
	Markets []string `json:"markets"`
	Dates   []string `json:"dates"`
	Sites   []string `json:"sites"`
}

// identityRow is one (region, market, site, date) tuple from the union
// of both tables' identity columns.
type identityRow struct {
	region, market, site, date string
	hasDate                    bool
}

// identityUnion concatenates the identity columns of both tables. A
// value need appear in only one table to be selectable.
func identityUnion(arrival, delay Table) []identityRow {
	rows := make([]identityRow, 0, len(arrival.Rows)+len(delay.Rows))
	collect := func(t Table) {
		for _, r := range t.Rows {
			ir := identityRow{region: r.Region, market: r.Market, site: r.Site}
			if r.DateValid {
				ir.date = r.Day().Format(DateLayout)
				ir.hasDate = true
			}
			rows = append(rows, ir)
		}
	}
	collect(arrival)
	collect(delay)
	return rows
}

// CascadingDomains derives the mutually constrained candidate sets for
// Region, Market, Date and Site from the union of both base tables.
func CascadingDomains(arrival, delay Table, sel FilterSelection) Domains {
	union := identityUnion(arrival, delay)

	regions := make(map[string]bool)
	markets := make(map[string]bool)
	dates := make(map[string]bool)
	sites := make(map[string]bool)

	for _, r := range union {
		if r.region != "" {
			regions[r.region] = true
		}
		if constrains(sel.Region) && r.region != sel.Region {
			continue
		}
		if r.market != "" {
			markets[r.market] = true
		}
		if constrains(sel.Market) && r.market != sel.Market {
			continue
		}
		if r.hasDate {
			dates[r.date] = true
		}
		if constrains(sel.Date) && (!r.hasDate || r.date != sel.Date) {
			continue
		}
		if r.site != "" {
			sites[r.site] = true
		}
	}

	return Domains{
		Regions: sortedKeys(regions),
		Markets: sortedKeys(markets),
		Dates:   sortedKeys(dates),
		Sites:   sortedKeys(sites),
	}
}

// Apply narrows a table to the selection, returning a new table. The
// region, market, date and site predicates are applied independently;
// the two source tables are never required to agree on row counts.
// An empty Sites slice leaves the site dimension unconstrained. Rows
// without a valid date are excluded whenever a date is selected.
func Apply(t Table, sel FilterSelection) Table {
	var siteSet map[string]bool
	if len(sel.Sites) > 0 {
		siteSet = make(map[string]bool, len(sel.Sites))
		for _, s := range sel.Sites {
			siteSet[s] = true
		}
	}

	out := Table{Columns: t.Columns}
	for _, row := range t.Rows {
		if constrains(sel.Region) && row.Region != sel.Region {
			continue
		}
		if constrains(sel.Market) && row.Market != sel.Market {
			continue
		}
		if constrains(sel.Date) {
			if !row.DateValid || row.Day().Format(DateLayout) != sel.Date {
				continue
			}
		}
		if siteSet != nil && !siteSet[row.Site] {
			continue
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
