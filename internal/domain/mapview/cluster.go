package mapview

import (
	"fmt"
	"math"
	"sort"

	"github.com/diillson/cloud-snitch-map/internal/domain/entity"
	"github.com/diillson/cloud-snitch-map/internal/domain/report"
	"github.com/diillson/cloud-snitch-map/pkg/geo"
)

const (
	// baseCentroids is the grid resolution per axis at zoom 0.
	baseCentroids = 18
	// MaxZoom is the deepest zoom level a map can be rendered at.
	MaxZoom = 24
	// maxCentroidShift caps the grid at 18<<24 cells per axis, far beyond any usable zoom.
	maxCentroidShift = 24
)

// CentroidsForZoom returns the number of grid cells per axis used to cluster markers at zoom.
// The grid doubles roughly every time zoom+1 doubles.
func CentroidsForZoom(zoom float64) int {
	shift := math.Round(math.Log2(zoom + 1))
	switch {
	case math.IsNaN(shift) || shift < 0:
		shift = 0
	case shift > maxCentroidShift:
		shift = maxCentroidShift
	}
	return baseCentroids << int(shift)
}

func minZoomForCentroids(centroids float64) float64 {
	return math.Ceil(math.Pow(2, math.Log2(centroids/baseCentroids)-0.5) - 1)
}

func maxZoomForCentroids(centroids float64) float64 {
	return math.Floor(math.Pow(2, math.Log2(centroids/baseCentroids)+0.5) - 1)
}

// MinZoomForClusterRect returns the lowest zoom at which a cluster with this grid rect would be
// produced. The rect must have a positive width.
func MinZoomForClusterRect(rect geo.MapRect) float64 {
	return minZoomForCentroids(math.Round(1 / rect.Width()))
}

// MaxZoomForClusterRect returns the highest zoom at which a cluster with this grid rect would be
// produced. The rect must have a positive width.
func MaxZoomForClusterRect(rect geo.MapRect) float64 {
	return maxZoomForCentroids(math.Round(1 / rect.Width()))
}

// FocusZoom keeps zoom when the cluster rect would be rendered at it, otherwise it returns the middle
// of the rect's zoom band, capped at MaxZoom, so the same cluster shows up again. Rects that no zoom
// in [0, MaxZoom] produces keep zoom as is.
func FocusZoom(rect geo.MapRect, zoom float64) float64 {
	centroids := math.Round(1 / rect.Width())
	if math.IsNaN(centroids) || math.IsInf(centroids, 0) || centroids < baseCentroids {
		return zoom
	}
	minZoom := minZoomForCentroids(centroids)
	maxZoom := math.Min(maxZoomForCentroids(centroids), MaxZoom)
	if minZoom > maxZoom || minZoom < 0 {
		return zoom
	}
	if zoom < minZoom || zoom > maxZoom {
		return (minZoom + maxZoom) / 2
	}
	return zoom
}

// IndividualMarkers builds one marker per region of the directory that the report touches,
// followed by one marker per located network.
func IndividualMarkers(r *report.CombinedReport, regions []entity.AWSRegion) []Marker {
	if r == nil {
		return nil
	}

	markers := make([]Marker, 0, len(regions)+len(r.NetworkLocations))
	for _, region := range regions {
		if !r.AWSRegionIDs.Has(region.ID) {
			continue
		}
		markers = append(markers, RegionMarker{
			Position: geo.FromLatLon(region.Latitude, region.Longitude),
			ID:       region.ID,
			Name:     region.Name,
		})
	}

	for _, cidr := range r.SortedNetworkCIDRs() {
		location := r.NetworkLocations[cidr]
		if location == nil {
			continue
		}
		markers = append(markers, NetworkMarker{
			Position: geo.FromLatLon(location.Latitude, location.Longitude),
			CIDR:     cidr,
		})
	}
	return markers
}

type cell struct {
	x, y float64
}

type bucket struct {
	rect         geo.MapRect
	markerBounds geo.MapRect
	members      []Marker
	regionIDs    entity.StringSet
	networkCIDRs entity.StringSet
}

// ClusterMarkers buckets markers into a centroids x centroids grid over Mercator space. Cells with a
// single marker keep it as is; cells with more become one ClusterMarker at the mean member position.
// The result is sorted by position and does not depend on the order of markers.
func ClusterMarkers(markers []Marker, centroids int) []Marker {
	if len(markers) == 0 || centroids <= 0 {
		return []Marker{}
	}

	// ordena a entrada para que a média em ponto flutuante não dependa da ordem recebida
	ordered := make([]Marker, len(markers))
	copy(ordered, markers)
	sort.SliceStable(ordered, func(i, j int) bool { return key(ordered[i]) < key(ordered[j]) })

	radius := 0.5 / float64(centroids)
	centroid := func(v float64) float64 {
		return v - math.Mod(v, radius*2) + radius
	}

	buckets := make(map[cell]*bucket)
	for _, m := range ordered {
		loc := m.Location()
		c := cell{x: centroid(loc.MercatorX), y: centroid(loc.MercatorY)}

		b, ok := buckets[c]
		if !ok {
			b = &bucket{
				rect:         geo.MapRect{MinX: c.x - radius, MinY: c.y - radius, MaxX: c.x + radius, MaxY: c.y + radius},
				markerBounds: geo.PointRect(loc),
				regionIDs:    entity.NewStringSet(),
				networkCIDRs: entity.NewStringSet(),
			}
			buckets[c] = b
		}

		b.members = append(b.members, m)
		b.markerBounds = b.markerBounds.Extend(loc)
		switch m := m.(type) {
		case RegionMarker:
			b.regionIDs.Add(m.ID)
		case NetworkMarker:
			b.networkCIDRs.Add(m.CIDR)
		case ClusterMarker:
			b.regionIDs.AddAll(m.AWSRegionIDs)
			b.networkCIDRs.AddAll(m.NetworkCIDRs)
		}
	}

	out := make([]Marker, 0, len(buckets))
	for _, b := range buckets {
		if len(b.members) == 1 {
			out = append(out, b.members[0])
			continue
		}
		out = append(out, ClusterMarker{
			Position:     meanLocation(b.members),
			Rect:         b.rect,
			AWSRegionIDs: b.regionIDs,
			NetworkCIDRs: b.networkCIDRs,
			MarkerBounds: b.markerBounds,
		})
	}

	sortMarkers(out)
	return out
}

// Cluster is IndividualMarkers followed by ClusterMarkers at the grid for zoom.
func Cluster(r *report.CombinedReport, regions []entity.AWSRegion, zoom float64) []Marker {
	return ClusterMarkers(IndividualMarkers(r, regions), CentroidsForZoom(zoom))
}

func meanLocation(markers []Marker) geo.MapLocation {
	var sumX, sumY float64
	for _, m := range markers {
		sumX += m.Location().MercatorX
		sumY += m.Location().MercatorY
	}
	n := float64(len(markers))
	return geo.FromMercator(sumX/n, sumY/n)
}

func sortMarkers(markers []Marker) {
	sort.Slice(markers, func(i, j int) bool {
		a, b := markers[i].Location(), markers[j].Location()
		if a.MercatorY != b.MercatorY {
			return a.MercatorY < b.MercatorY
		}
		if a.MercatorX != b.MercatorX {
			return a.MercatorX < b.MercatorX
		}
		return key(markers[i]) < key(markers[j])
	})
}

func pluralize(n int, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, plural)
}
