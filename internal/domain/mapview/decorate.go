package mapview

import (
	"github.com/diillson/cloud-snitch-map/internal/domain/entity"
	"github.com/diillson/cloud-snitch-map/internal/domain/report"
	"github.com/diillson/cloud-snitch-map/internal/domain/selection"
	"github.com/diillson/cloud-snitch-map/pkg/geo"
)

// Status texts shown next to a marker.
const (
	StatusSelected                  = "Currently selected"
	StatusContainsSelectionActivity = "Contains selection activity"
	StatusContainsSelection         = "Contains selection"
	StatusDefault                   = "Click for more information"
)

// Stacking layers, highest on top.
const (
	LayerFaded      = 10
	LayerNormal     = 50
	LayerEmphasized = 100
)

// DecoratedMarker is a marker with its presentation state for the current selection and highlight.
type DecoratedMarker struct {
	Marker    Marker
	Selected  bool
	Emphasize bool
	Fade      bool
	Status    string
}

// Layer returns the stacking layer of the marker.
func (d DecoratedMarker) Layer() int {
	switch {
	case d.Fade:
		return LayerFaded
	case d.Emphasize:
		return LayerEmphasized
	default:
		return LayerNormal
	}
}

// Decorate computes the presentation state of each marker.
//
// A cluster counts as selected when the selected cluster rect holds exactly one marker and that
// marker is a cluster whose members lie inside the selected rect, so a cluster selection survives
// small changes in zoom. Markers fade when highlightPrincipalID is set and they hold none of that
// principal's networks or regions.
func Decorate(markers []Marker, r *report.CombinedReport, sel selection.Selection, highlightPrincipalID string) []DecoratedMarker {
	out := make([]DecoratedMarker, 0, len(markers))

	clusterSel, isClusterSel := sel.(selection.Cluster)
	singleMarkerWithinSelection := isClusterSel && countWithin(markers, clusterSel.Rect) == 1

	var selectedPrincipal, highlightPrincipal *report.CombinedReportPrincipal
	if r != nil {
		if p, ok := sel.(selection.Principal); ok {
			selectedPrincipal = r.Principals[p.ID]
		}
		if highlightPrincipalID != "" {
			highlightPrincipal = r.Principals[highlightPrincipalID]
		}
	}

	for _, m := range markers {
		cluster, isCluster := m.(ClusterMarker)

		equivalentCluster := singleMarkerWithinSelection && isCluster && clusterSel.Rect.Contains(cluster.MarkerBounds)
		selected := equivalentCluster || selection.Equal(SelectionFor(m), sel)

		var containsSelection, containsPrincipalActivity bool
		switch s := sel.(type) {
		case selection.Network:
			containsSelection = HasNetwork(m, s.CIDR)
		case selection.AWSRegion:
			containsSelection = HasAWSRegion(m, s.ID)
		case selection.Cluster:
			containsSelection = isCluster && cluster.Rect.Contains(s.Rect)
		case selection.Principal:
			if selectedPrincipal != nil {
				containsPrincipalActivity = hasPrincipalActivity(m, selectedPrincipal)
				containsSelection = containsPrincipalActivity
			}
		}

		fade := highlightPrincipalID != "" && (highlightPrincipal == nil || !hasPrincipalActivity(m, highlightPrincipal))

		status := StatusDefault
		switch {
		case selected:
			status = StatusSelected
		case containsPrincipalActivity:
			status = StatusContainsSelectionActivity
		case containsSelection:
			status = StatusContainsSelection
		}

		out = append(out, DecoratedMarker{
			Marker:    m,
			Selected:  selected,
			Emphasize: selected || containsSelection,
			Fade:      fade,
			Status:    status,
		})
	}
	return out
}

func hasPrincipalActivity(m Marker, p *report.CombinedReportPrincipal) bool {
	return HasAnyNetwork(m, p.NetworkCIDRs) || HasAnyAWSRegion(m, p.AWSRegionIDs)
}

// countWithin counts markers positioned inside rect, stopping once it passes one.
func countWithin(markers []Marker, rect geo.MapRect) int {
	count := 0
	for _, m := range markers {
		if rect.ContainsLocation(m.Location()) {
			count++
			if count > 1 {
				break
			}
		}
	}
	return count
}

// View converts the decorated marker into its rendered form.
func (d DecoratedMarker) View() entity.MapMarker {
	out := entity.MapMarker{
		Type:      string(d.Marker.Type()),
		Label:     Label(d.Marker),
		Location:  d.Marker.Location(),
		Count:     1,
		Selection: selection.Stringify(SelectionFor(d.Marker)),
		Selected:  d.Selected,
		Emphasize: d.Emphasize,
		Fade:      d.Fade,
		Layer:     d.Layer(),
		Status:    d.Status,
	}
	switch m := d.Marker.(type) {
	case RegionMarker:
		out.ID = m.ID
		out.Name = m.Name
	case NetworkMarker:
		out.CIDR = m.CIDR
	case ClusterMarker:
		rect, bounds := m.Rect, m.MarkerBounds
		out.Rect = &rect
		out.MarkerBounds = &bounds
		out.AWSRegionIDs = m.AWSRegionIDs.Sorted()
		out.NetworkCIDRs = m.NetworkCIDRs.Sorted()
		out.Count = m.Size()
	}
	return out
}
