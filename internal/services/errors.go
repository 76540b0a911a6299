package services

import "errors"

// Service-level sentinel errors. Handlers map these to user-facing
// notices or API errors.
var (
	// ErrNoData reports that the current filter combination yields zero
	// rows in the table a view needs. Non-fatal: sibling views continue.
	ErrNoData = errors.New("no data available for the selected filters")

	// ErrNoRiskSites reports that problematic-sites-only mode matched no
	// sites. Dependent views are skipped, never widened to all sites.
	ErrNoRiskSites = errors.New("no problematic sites found with the current filters")

	// ErrUnknownSite reports a trend request for a site outside the
	// filtered result.
	ErrUnknownSite = errors.New("site not present in the filtered data")
)
