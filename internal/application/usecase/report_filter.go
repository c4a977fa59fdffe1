package usecase

import (
	"time"

	"github.com/diillson/cloud-snitch-map/internal/domain/entity"
)

// FilterSet restricts a report attribute to an include list and/or away from an exclude list.
// The zero value allows everything.
type FilterSet struct {
	Include entity.StringSet
	Exclude entity.StringSet
}

// NewFilterSet builds a FilterSet; empty lists impose no restriction.
func NewFilterSet(include, exclude []string) FilterSet {
	var f FilterSet
	if len(include) > 0 {
		f.Include = entity.NewStringSet(include...)
	}
	if len(exclude) > 0 {
		f.Exclude = entity.NewStringSet(exclude...)
	}
	return f
}

// Allows reports whether v passes the filter.
func (f FilterSet) Allows(v string) bool {
	if f.Include.Len() > 0 && !f.Include.Has(v) {
		return false
	}
	return !f.Exclude.Has(v)
}

// ReportFilter selects which reports are loaded.
type ReportFilter struct {
	Accounts FilterSet
	Regions  FilterSet
	// Duration limits reports to the window of this length ending at the latest report end time.
	// Zero means no time limit.
	Duration time.Duration
}

// FilterReports applies f and then drops reports whose (account, region, start time) was already
// seen, keeping the first occurrence. The time window is anchored on the latest end time among all
// reports, before any filtering.
func FilterReports(metas []entity.ReportMetadata, f ReportFilter) []entity.ReportMetadata {
	var windowStart, windowEnd time.Time
	if f.Duration > 0 {
		for _, m := range metas {
			if end := m.Scope.EndTime(); end.After(windowEnd) {
				windowEnd = end
			}
		}
		windowStart = windowEnd.Add(-f.Duration)
	}

	ret := make([]entity.ReportMetadata, 0, len(metas))
	seen := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		if f.Duration > 0 {
			if m.Scope.StartTime.Before(windowStart) || m.Scope.EndTime().After(windowEnd) {
				continue
			}
		}
		if !f.Accounts.Allows(m.Scope.AWS.AccountID) || !f.Regions.Allows(m.Scope.AWS.Region) {
			continue
		}

		// Deduplica contra processamento duplicado no backend ou integrações repetidas.
		key := m.Scope.DedupKey()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		ret = append(ret, m)
	}
	return ret
}
