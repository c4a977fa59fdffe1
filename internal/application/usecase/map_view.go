package usecase

import (
	"fmt"
	"math"
	"sort"

	"github.com/diillson/cloud-snitch-map/internal/domain/entity"
	"github.com/diillson/cloud-snitch-map/internal/domain/mapview"
	"github.com/diillson/cloud-snitch-map/internal/domain/report"
	"github.com/diillson/cloud-snitch-map/internal/domain/selection"
	"github.com/diillson/cloud-snitch-map/internal/shared/types"
)

// MaxZoom is the deepest zoom level a map view accepts.
const MaxZoom = mapview.MaxZoom

// MapViewRequest holds the user-controlled parameters of a map view.
type MapViewRequest struct {
	Zoom      float64
	Filter    string
	Selection string
	Highlight string
}

// ValidateZoom rejects zoom levels outside [0, MaxZoom].
func ValidateZoom(zoom float64) error {
	if math.IsNaN(zoom) || zoom < 0 || zoom > MaxZoom {
		return fmt.Errorf("invalid zoom %v: %w", zoom, types.ErrInvalidZoom)
	}
	return nil
}

// BuildMapView clusters and decorates the snapshot for req.
//
// A selection that cannot be parsed, or that refers to something absent from the (filtered) report,
// is dropped and the view's Selection is empty.
func (uc *MapUseCase) BuildMapView(snap Snapshot, req MapViewRequest) (entity.MapView, error) {
	if err := ValidateZoom(req.Zoom); err != nil {
		return entity.MapView{}, err
	}

	combined := snap.Report
	if combined == nil {
		combined = report.NewCombinedReport(uc.anonymizer)
	}
	filtered := combined
	if req.Filter != "" {
		filtered = combined.WithFilteredPrincipals(req.Filter)
	}

	sel := selection.Parse(req.Selection)
	focus, valid := mapview.FocusFor(sel, filtered, snap.Regions, req.Zoom, snap.Status.Done())
	if !valid {
		sel, focus = nil, nil
	}

	markers := mapview.Cluster(filtered, snap.Regions, req.Zoom)
	decorated := mapview.Decorate(markers, filtered, sel, req.Highlight)

	view := entity.MapView{
		GeneratedAt: uc.now(),
		Zoom:        req.Zoom,
		Centroids:   mapview.CentroidsForZoom(req.Zoom),
		Filter:      req.Filter,
		Selection:   selection.Stringify(sel),
		Highlight:   req.Highlight,
		Focus:       focus,
		Status:      snap.Status,
		EventCount:  filtered.EventCount(),
		Conflicts:   combined.Conflicts,
		Markers:     make([]entity.MapMarker, 0, len(decorated)),
		Principals:  SummarizePrincipals(filtered),
	}

	countsByType := map[string]int{}
	for _, d := range decorated {
		m := d.View()
		countsByType[m.Type]++
		view.Markers = append(view.Markers, m)
	}
	uc.metrics.ObserveMarkers(countsByType)

	return view, nil
}

// SummarizePrincipal builds the list view of p.
func SummarizePrincipal(p *report.CombinedReportPrincipal) entity.PrincipalSummary {
	return entity.PrincipalSummary{
		ID:           p.ID,
		Name:         p.Name,
		ShortName:    p.ShortName(),
		Type:         p.Type.String(),
		ARN:          p.ARN,
		EventCount:   p.EventCount,
		ErrorCount:   p.ErrorCount(),
		AccountIDs:   p.AccountIDs.Sorted(),
		AWSRegionIDs: p.AWSRegionIDs.Sorted(),
		NetworkCIDRs: p.NetworkCIDRs.Sorted(),
		IPAddresses:  len(p.IPAddresses),
		UserAgents:   len(p.UserAgents),
	}
}

// SummarizePrincipals returns every principal ordered by event count, most active first, then id.
func SummarizePrincipals(c *report.CombinedReport) []entity.PrincipalSummary {
	summaries := make([]entity.PrincipalSummary, 0, len(c.Principals))
	for _, id := range c.SortedPrincipalIDs() {
		summaries = append(summaries, SummarizePrincipal(c.Principals[id]))
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].EventCount > summaries[j].EventCount
	})
	return summaries
}

// PrincipalDetail returns the full view of principal id.
func PrincipalDetail(c *report.CombinedReport, id string) (entity.PrincipalDetail, error) {
	if c == nil || c.Principals[id] == nil {
		return entity.PrincipalDetail{}, fmt.Errorf("principal %q: %w", id, types.ErrNotFound)
	}
	p := c.Principals[id]

	detail := entity.PrincipalDetail{
		PrincipalSummary: SummarizePrincipal(p),
		IPAddressCounts:  p.IPAddresses,
		UserAgentCounts:  p.UserAgents,
		Events:           make([]entity.PrincipalEvent, 0, len(p.Events)),
	}
	for _, e := range p.TopEvents(0) {
		errorCount := 0
		for _, n := range e.Summary.ErrorCodes {
			errorCount += n
		}
		detail.Events = append(detail.Events, entity.PrincipalEvent{
			Key:        e.Key,
			Name:       e.Summary.Name,
			Source:     e.Summary.Source,
			Count:      e.Summary.Count,
			ErrorCount: errorCount,
			ErrorCodes: e.Summary.ErrorCodes,
		})
	}
	return detail, nil
}

// NetworkDetail returns the location of cidr and the principals seen from it.
func NetworkDetail(c *report.CombinedReport, cidr string) (entity.NetworkDetail, error) {
	if c == nil {
		return entity.NetworkDetail{}, fmt.Errorf("network %q: %w", cidr, types.ErrNotFound)
	}
	loc, located := c.NetworkLocations[cidr]
	principalIDs := c.PrincipalsUsingNetwork(cidr)
	if !located && len(principalIDs) == 0 {
		return entity.NetworkDetail{}, fmt.Errorf("network %q: %w", cidr, types.ErrNotFound)
	}

	detail := entity.NetworkDetail{
		CIDR:       cidr,
		Label:      loc.Label(),
		Location:   loc,
		Principals: make([]entity.PrincipalSummary, 0, len(principalIDs)),
	}
	for _, id := range principalIDs {
		detail.Principals = append(detail.Principals, SummarizePrincipal(c.Principals[id]))
	}
	return detail, nil
}

// EventBars converts a principal's most frequent events into console bars.
func EventBars(p *report.CombinedReportPrincipal, n int) []types.EventBar {
	top := p.TopEvents(n)
	bars := make([]types.EventBar, 0, len(top))
	for _, e := range top {
		errorCount := 0
		for _, c := range e.Summary.ErrorCodes {
			errorCount += c
		}
		label := e.Summary.Name
		if e.Summary.Source != "" {
			label = fmt.Sprintf("%s (%s)", e.Summary.Name, e.Summary.Source)
		}
		bars = append(bars, types.EventBar{Label: label, Count: e.Summary.Count, Errors: errorCount})
	}
	return bars
}
