package types

import "errors"

var (
	ErrNoReports           = errors.New("no reports matched the given filters")
	ErrNoReportSource      = errors.New("no report source configured, use --reports")
	ErrReportFetch         = errors.New("failed to fetch report")
	ErrUnsupportedLocation = errors.New("unsupported report location")
	ErrInvalidReport       = errors.New("invalid report document")
	ErrDocumentTooLarge    = errors.New("document too large")
	ErrInvalidZoom         = errors.New("zoom must be a number between 0 and 24")
	ErrNotFound            = errors.New("not found")
	ErrNotReady            = errors.New("reports are still loading")
	ErrNoGeoIPDatabase     = errors.New("no GeoIP database configured")
)
