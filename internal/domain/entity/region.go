package entity

// AWSRegion is the directory entry for an AWS region.
type AWSRegion struct {
	ID                 string  `json:"id" yaml:"id" toml:"id"`
	Name               string  `json:"name" yaml:"name" toml:"name"`
	Latitude           float64 `json:"latitude" yaml:"latitude" toml:"latitude"`
	Longitude          float64 `json:"longitude" yaml:"longitude" toml:"longitude"`
	GeolocationCountry string  `json:"geolocationCountry" yaml:"geolocation_country" toml:"geolocation_country"`
	GeolocationRegion  string  `json:"geolocationRegion" yaml:"geolocation_region" toml:"geolocation_region"`
	Partition          string  `json:"partition" yaml:"partition" toml:"partition"`
	// Enabled is set when region discovery ran and the caller's account has the region enabled.
	Enabled *bool `json:"enabled,omitempty" yaml:"enabled,omitempty" toml:"enabled,omitempty"`
}
