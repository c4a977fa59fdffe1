package entity

import (
	"time"

	"github.com/diillson/cloud-snitch-map/pkg/geo"
)

// MapMarker is the rendered form of one map marker.
type MapMarker struct {
	Type         string          `json:"type"`
	Label        string          `json:"label"`
	Location     geo.MapLocation `json:"location"`
	ID           string          `json:"id,omitempty"`
	Name         string          `json:"name,omitempty"`
	CIDR         string          `json:"cidr,omitempty"`
	Rect         *geo.MapRect    `json:"rect,omitempty"`
	MarkerBounds *geo.MapRect    `json:"markerBounds,omitempty"`
	AWSRegionIDs []string        `json:"awsRegionIds,omitempty"`
	NetworkCIDRs []string        `json:"networkCidrs,omitempty"`
	Count        int             `json:"count"`
	Selection    string          `json:"selection"`
	Selected     bool            `json:"selected"`
	Emphasize    bool            `json:"emphasize"`
	Fade         bool            `json:"fade"`
	Layer        int             `json:"layer"`
	Status       string          `json:"status"`
}

// MapFocus is where the map should center for the current selection.
type MapFocus struct {
	Center geo.MapLocation `json:"center"`
	Zoom   float64         `json:"zoom"`
}

// PrincipalSummary is the list view of one aggregated principal.
type PrincipalSummary struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	ShortName    string   `json:"shortName"`
	Type         string   `json:"type"`
	ARN          string   `json:"arn,omitempty"`
	EventCount   int      `json:"eventCount"`
	ErrorCount   int      `json:"errorCount"`
	AccountIDs   []string `json:"accountIds"`
	AWSRegionIDs []string `json:"awsRegionIds"`
	NetworkCIDRs []string `json:"networkCidrs"`
	IPAddresses  int      `json:"ipAddresses"`
	UserAgents   int      `json:"userAgents"`
}

// LoadStatus describes how far report loading has come.
type LoadStatus struct {
	Total    int     `json:"total"`
	Loaded   int     `json:"loaded"`
	Failed   int     `json:"failed"`
	Progress float64 `json:"progress"`
}

// Done reports whether every report has been loaded.
func (s LoadStatus) Done() bool {
	return s.Progress >= 1
}

// MapView is everything needed to render the activity map for one request.
type MapView struct {
	GeneratedAt time.Time          `json:"generatedAt"`
	Zoom        float64            `json:"zoom"`
	Centroids   int                `json:"centroids"`
	Filter      string             `json:"filter,omitempty"`
	Selection   string             `json:"selection"`
	Highlight   string             `json:"highlight,omitempty"`
	Focus       *MapFocus          `json:"focus,omitempty"`
	Status      LoadStatus         `json:"status"`
	EventCount  int                `json:"eventCount"`
	Conflicts   int                `json:"conflicts"`
	Markers     []MapMarker        `json:"markers"`
	Principals  []PrincipalSummary `json:"principals"`
}

// CallerIdentity is the AWS identity behind the configured credentials.
type CallerIdentity struct {
	Profile   string `json:"profile"`
	AccountID string `json:"accountId"`
	ARN       string `json:"arn"`
	UserID    string `json:"userId"`
}

// PrincipalEvent is one kind of API call in a principal's detail view.
type PrincipalEvent struct {
	Key        string         `json:"key"`
	Name       string         `json:"name"`
	Source     string         `json:"source"`
	Count      int            `json:"count"`
	ErrorCount int            `json:"errorCount"`
	ErrorCodes map[string]int `json:"errorCodes,omitempty"`
}

// PrincipalDetail is the full view of one aggregated principal.
type PrincipalDetail struct {
	PrincipalSummary
	IPAddressCounts map[string]int   `json:"ipAddressCounts"`
	UserAgentCounts map[string]int   `json:"userAgentCounts"`
	Events          []PrincipalEvent `json:"events"`
}

// NetworkDetail describes one network CIDR and the principals seen from it.
type NetworkDetail struct {
	CIDR       string             `json:"cidr"`
	Label      string             `json:"label"`
	Location   *Location          `json:"location,omitempty"`
	Principals []PrincipalSummary `json:"principals"`
}
