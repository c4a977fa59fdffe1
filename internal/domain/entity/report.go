package entity

import "strings"

// Report is the content of a single pre-aggregated activity report. One report covers one
// (AWS account, AWS region, time window) scope and never changes once generated.
type Report struct {
	NetworkLocations  map[string]*Location  `json:"networkLocations,omitempty" msgpack:"networkLocations,omitempty"`
	IPAddressNetworks map[string]string     `json:"ipAddressNetworks,omitempty" msgpack:"ipAddressNetworks,omitempty"`
	Principals        map[string]*Principal `json:"principals,omitempty" msgpack:"principals,omitempty"`
}

// IsEmpty reports whether the report carries no data at all.
func (r *Report) IsEmpty() bool {
	return r == nil || (len(r.NetworkLocations) == 0 && len(r.IPAddressNetworks) == 0 && len(r.Principals) == 0)
}

// Location is the geographic centroid of a network CIDR.
type Location struct {
	Latitude         float64  `json:"latitude" msgpack:"latitude"`
	Longitude        float64  `json:"longitude" msgpack:"longitude"`
	CountryCode      string   `json:"countryCode" msgpack:"countryCode"`
	CountryName      string   `json:"countryName" msgpack:"countryName"`
	CityName         string   `json:"cityName" msgpack:"cityName"`
	SubdivisionNames []string `json:"subdivisionNames,omitempty" msgpack:"subdivisionNames,omitempty"`
}

// Label returns a short human readable place name.
func (l *Location) Label() string {
	if l == nil {
		return ""
	}
	parts := make([]string, 0, 3)
	if l.CityName != "" {
		parts = append(parts, l.CityName)
	}
	if len(l.SubdivisionNames) > 0 && l.SubdivisionNames[0] != "" {
		parts = append(parts, l.SubdivisionNames[0])
	}
	switch {
	case l.CountryName != "":
		parts = append(parts, l.CountryName)
	case l.CountryCode != "":
		parts = append(parts, l.CountryCode)
	}
	return strings.Join(parts, ", ")
}

// PrincipalType identifies the kind of AWS identity behind a principal.
type PrincipalType string

const (
	PrincipalTypeUnknown         PrincipalType = ""
	PrincipalTypeAWSAssumedRole  PrincipalType = "AWSAssumedRole"
	PrincipalTypeAWSService      PrincipalType = "AWSService"
	PrincipalTypeAWSIAMUser      PrincipalType = "AWSIAMUser"
	PrincipalTypeAWSAccount      PrincipalType = "AWSAccount"
	PrincipalTypeAWSRole         PrincipalType = "AWSRole"
	PrincipalTypeWebIdentityUser PrincipalType = "WebIdentityUser"
)

// String returns the display name for the principal type.
func (t PrincipalType) String() string {
	switch t {
	case PrincipalTypeAWSAssumedRole:
		return "AWS Assumed Role"
	case PrincipalTypeAWSService:
		return "AWS Service"
	case PrincipalTypeAWSIAMUser:
		return "AWS IAM User"
	case PrincipalTypeAWSAccount:
		return "AWS Account"
	case PrincipalTypeAWSRole:
		return "AWS Role"
	case PrincipalTypeWebIdentityUser:
		return "Web Identity User"
	default:
		return "Unknown"
	}
}

// Principal is one identity's activity within a single report.
type Principal struct {
	Name        string                   `json:"name,omitempty" msgpack:"name,omitempty"`
	Type        PrincipalType            `json:"type,omitempty" msgpack:"type,omitempty"`
	ARN         string                   `json:"arn,omitempty" msgpack:"arn,omitempty"`
	IPAddresses map[string]int           `json:"ipAddresses,omitempty" msgpack:"ipAddresses,omitempty"`
	UserAgents  map[string]int           `json:"userAgents,omitempty" msgpack:"userAgents,omitempty"`
	Events      map[string]*EventSummary `json:"events" msgpack:"events"`
}

// EventSummary counts one kind of API call made by a principal.
type EventSummary struct {
	Name       string         `json:"name" msgpack:"name"`
	Source     string         `json:"source" msgpack:"source"`
	Count      int            `json:"count" msgpack:"count"`
	ErrorCodes map[string]int `json:"errorCodes,omitempty" msgpack:"errorCodes,omitempty"`
}
