package types

// Config represents the application configuration that can be loaded from a file.
type Config struct {
	Profile         string   `json:"profile" yaml:"profile" toml:"profile"`
	Reports         string   `json:"reports" yaml:"reports" toml:"reports"`
	RegionsFile     string   `json:"regions_file" yaml:"regions_file" toml:"regions_file"`
	DiscoverRegions bool     `json:"discover_regions" yaml:"discover_regions" toml:"discover_regions"`
	Accounts        []string `json:"accounts" yaml:"accounts" toml:"accounts"`
	ExcludeAccounts []string `json:"exclude_accounts" yaml:"exclude_accounts" toml:"exclude_accounts"`
	Regions         []string `json:"regions" yaml:"regions" toml:"regions"`
	ExcludeRegions  []string `json:"exclude_regions" yaml:"exclude_regions" toml:"exclude_regions"`
	Duration        string   `json:"duration" yaml:"duration" toml:"duration"`
	Filter          string   `json:"filter" yaml:"filter" toml:"filter"`
	Zoom            float64  `json:"zoom" yaml:"zoom" toml:"zoom"`
	ReportName      string   `json:"report_name" yaml:"report_name" toml:"report_name"`
	ReportType      []string `json:"report_type" yaml:"report_type" toml:"report_type"`
	Dir             string   `json:"dir" yaml:"dir" toml:"dir"`
	Anonymize       bool     `json:"anonymize" yaml:"anonymize" toml:"anonymize"`
	Workers         int      `json:"workers" yaml:"workers" toml:"workers"`
	RateLimit       float64  `json:"rate_limit" yaml:"rate_limit" toml:"rate_limit"`
	CacheDir        string   `json:"cache_dir" yaml:"cache_dir" toml:"cache_dir"`
	GeoIPDatabase   string   `json:"geoip_database" yaml:"geoip_database" toml:"geoip_database"`
	Listen          string   `json:"listen" yaml:"listen" toml:"listen"`
	Refresh         string   `json:"refresh" yaml:"refresh" toml:"refresh"`
}
