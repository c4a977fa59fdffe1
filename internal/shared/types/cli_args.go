package types

import "time"

// CLIArgs represents the command-line arguments.
type CLIArgs struct {
	ConfigFile      string
	Profile         string
	Reports         string
	RegionsFile     string
	DiscoverRegions bool
	Accounts        []string
	ExcludeAccounts []string
	Regions         []string
	ExcludeRegions  []string
	Duration        time.Duration
	Filter          string
	Zoom            float64
	Selection       string
	Highlight       string
	Top             int
	ReportName      string
	ReportType      []string
	Dir             string
	Anonymize       bool
	Workers         int
	RateLimit       float64
	CacheDir        string
	GeoIPDatabase   string
	LogFormat       string
	LogLevel        string
	Listen          string
	Refresh         time.Duration
	AllProfiles     bool
}
