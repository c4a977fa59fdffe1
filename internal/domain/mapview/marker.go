// Package mapview turns a combined report into the markers shown on the activity map: one marker
// per AWS region and network, grid-clustered for the current zoom level and decorated against the
// current selection.
package mapview

import (
	"github.com/diillson/cloud-snitch-map/internal/domain/entity"
	"github.com/diillson/cloud-snitch-map/internal/domain/selection"
	"github.com/diillson/cloud-snitch-map/pkg/geo"
)

// MarkerType tags a marker variant.
type MarkerType string

const (
	MarkerTypeAWSRegion MarkerType = "aws-region"
	MarkerTypeNetwork   MarkerType = "network"
	MarkerTypeCluster   MarkerType = "cluster"
)

// Marker is one of RegionMarker, NetworkMarker or ClusterMarker.
type Marker interface {
	Type() MarkerType
	Location() geo.MapLocation
	isMarker()
}

// RegionMarker places an AWS region that appears in the report.
type RegionMarker struct {
	Position geo.MapLocation
	ID       string
	Name     string
}

// NetworkMarker places a network CIDR at its geolocated centroid.
type NetworkMarker struct {
	Position geo.MapLocation
	CIDR     string
}

// ClusterMarker stands for two or more markers that fell into the same grid cell.
type ClusterMarker struct {
	Position     geo.MapLocation
	Rect         geo.MapRect
	AWSRegionIDs entity.StringSet
	NetworkCIDRs entity.StringSet
	// MarkerBounds is the tight bounding box of the member positions, always inside Rect.
	MarkerBounds geo.MapRect
}

func (m RegionMarker) Type() MarkerType  { return MarkerTypeAWSRegion }
func (m NetworkMarker) Type() MarkerType { return MarkerTypeNetwork }
func (m ClusterMarker) Type() MarkerType { return MarkerTypeCluster }

func (m RegionMarker) Location() geo.MapLocation  { return m.Position }
func (m NetworkMarker) Location() geo.MapLocation { return m.Position }
func (m ClusterMarker) Location() geo.MapLocation { return m.Position }

func (RegionMarker) isMarker()  {}
func (NetworkMarker) isMarker() {}
func (ClusterMarker) isMarker() {}

// Size is the number of regions and networks folded into the cluster.
func (m ClusterMarker) Size() int {
	return m.AWSRegionIDs.Len() + m.NetworkCIDRs.Len()
}

// Label returns a short display name for any marker.
func Label(m Marker) string {
	switch m := m.(type) {
	case RegionMarker:
		if m.Name != "" {
			return m.Name
		}
		return m.ID
	case NetworkMarker:
		return m.CIDR
	case ClusterMarker:
		if m.NetworkCIDRs.Len() == 0 {
			return pluralize(m.Size(), "region", "regions")
		}
		if m.AWSRegionIDs.Len() == 0 {
			return pluralize(m.Size(), "network", "networks")
		}
		return pluralize(m.Size(), "location", "locations")
	default:
		return ""
	}
}

// HasNetwork reports whether the marker is, or clusters, the given network.
func HasNetwork(m Marker, cidr string) bool {
	switch m := m.(type) {
	case NetworkMarker:
		return m.CIDR == cidr
	case ClusterMarker:
		return m.NetworkCIDRs.Has(cidr)
	default:
		return false
	}
}

// HasAnyNetwork reports whether the marker is, or clusters, at least one of networks.
func HasAnyNetwork(m Marker, networks entity.StringSet) bool {
	switch m := m.(type) {
	case NetworkMarker:
		return networks.Has(m.CIDR)
	case ClusterMarker:
		return m.NetworkCIDRs.Intersects(networks)
	default:
		return false
	}
}

// HasAWSRegion reports whether the marker is, or clusters, the given region.
func HasAWSRegion(m Marker, regionID string) bool {
	switch m := m.(type) {
	case RegionMarker:
		return m.ID == regionID
	case ClusterMarker:
		return m.AWSRegionIDs.Has(regionID)
	default:
		return false
	}
}

// HasAnyAWSRegion reports whether the marker is, or clusters, at least one of regions.
func HasAnyAWSRegion(m Marker, regions entity.StringSet) bool {
	switch m := m.(type) {
	case RegionMarker:
		return regions.Has(m.ID)
	case ClusterMarker:
		return m.AWSRegionIDs.Intersects(regions)
	default:
		return false
	}
}

// SelectionFor returns the selection made by clicking the marker.
func SelectionFor(m Marker) selection.Selection {
	switch m := m.(type) {
	case RegionMarker:
		return selection.AWSRegion{ID: m.ID}
	case NetworkMarker:
		return selection.Network{CIDR: m.CIDR}
	case ClusterMarker:
		return selection.Cluster{Rect: m.Rect, Location: m.Position}
	default:
		return nil
	}
}

// key orders markers that share a position.
func key(m Marker) string {
	switch m := m.(type) {
	case RegionMarker:
		return string(MarkerTypeAWSRegion) + ":" + m.ID
	case NetworkMarker:
		return string(MarkerTypeNetwork) + ":" + m.CIDR
	default:
		return selection.Stringify(SelectionFor(m))
	}
}
