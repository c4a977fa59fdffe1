package mapview

import (
	"math"

	"github.com/diillson/cloud-snitch-map/internal/domain/entity"
	"github.com/diillson/cloud-snitch-map/internal/domain/report"
	"github.com/diillson/cloud-snitch-map/internal/domain/selection"
	"github.com/diillson/cloud-snitch-map/pkg/geo"
)

// MinFocusZoom is the zoom the map moves to, at least, when focusing a region or network.
const MinFocusZoom = 5

// FocusFor resolves where to center the map for sel.
//
// It returns valid=false when sel refers to something that cannot exist: an unknown region once the
// region directory is available, or an unknown network or principal once every report is loaded.
// Invalid selections should be cleared by the caller. A nil focus with valid=true means the
// selection is fine but the map stays where it is.
func FocusFor(sel selection.Selection, r *report.CombinedReport, regions []entity.AWSRegion, zoom float64, loaded bool) (focus *entity.MapFocus, valid bool) {
	switch s := sel.(type) {
	case nil:
		return nil, true

	case selection.AWSRegion:
		for _, region := range regions {
			if region.ID == s.ID {
				return &entity.MapFocus{
					Center: geo.FromLatLon(region.Latitude, region.Longitude),
					Zoom:   math.Max(zoom, MinFocusZoom),
				}, true
			}
		}
		return nil, len(regions) == 0

	case selection.Network:
		if r != nil {
			if location := r.NetworkLocations[s.CIDR]; location != nil {
				return &entity.MapFocus{
					Center: geo.FromLatLon(location.Latitude, location.Longitude),
					Zoom:   math.Max(zoom, MinFocusZoom),
				}, true
			}
		}
		return nil, !loaded

	case selection.Principal:
		if r != nil && r.Principals[s.ID] != nil {
			return nil, true
		}
		return nil, !loaded

	case selection.Cluster:
		return &entity.MapFocus{Center: s.Location, Zoom: FocusZoom(s.Rect, zoom)}, true

	default:
		return nil, false
	}
}
