package report

import (
	"sort"
	"strings"

	"github.com/diillson/cloud-snitch-map/internal/domain/entity"
)

// CombinedReportPrincipal is a principal's activity summed over every folded report.
type CombinedReportPrincipal struct {
	ID   string               `json:"id"`
	Name string               `json:"name,omitempty"`
	Type entity.PrincipalType `json:"type,omitempty"`
	ARN  string               `json:"arn,omitempty"`

	IPAddresses  map[string]int   `json:"ip_addresses"`
	UserAgents   map[string]int   `json:"user_agents"`
	AccountIDs   entity.StringSet `json:"account_ids"`
	AWSRegionIDs entity.StringSet `json:"aws_region_ids"`
	NetworkCIDRs entity.StringSet `json:"network_cidrs"`

	// EventCount is always the sum of Events[*].Count.
	EventCount int                             `json:"event_count"`
	Events     map[string]*entity.EventSummary `json:"events"`
}

func newCombinedReportPrincipal(id, name string, principalType entity.PrincipalType, arn string) *CombinedReportPrincipal {
	return &CombinedReportPrincipal{
		ID:           id,
		Name:         name,
		Type:         principalType,
		ARN:          arn,
		IPAddresses:  make(map[string]int),
		UserAgents:   make(map[string]int),
		AccountIDs:   entity.NewStringSet(),
		AWSRegionIDs: entity.NewStringSet(),
		NetworkCIDRs: entity.NewStringSet(),
		Events:       make(map[string]*entity.EventSummary),
	}
}

// AddEventSummary sums summary into the event stored under key.
func (p *CombinedReportPrincipal) AddEventSummary(key string, summary *entity.EventSummary) {
	if summary == nil {
		return
	}
	e, ok := p.Events[key]
	if !ok {
		e = &entity.EventSummary{
			Name:   summary.Name,
			Source: summary.Source,
		}
		p.Events[key] = e
	}
	p.EventCount += summary.Count
	e.Count += summary.Count
	for code, count := range summary.ErrorCodes {
		if e.ErrorCodes == nil {
			e.ErrorCodes = make(map[string]int)
		}
		e.ErrorCodes[code] += count
	}
}

// ShortName returns the last path segment of the principal's name, or its id when unnamed.
func (p *CombinedReportPrincipal) ShortName() string {
	if p.Name == "" {
		return p.ID
	}
	parts := strings.Split(p.Name, "/")
	return parts[len(parts)-1]
}

// ErrorCount sums every error code count across the principal's events.
func (p *CombinedReportPrincipal) ErrorCount() int {
	total := 0
	for _, e := range p.Events {
		for _, n := range e.ErrorCodes {
			total += n
		}
	}
	return total
}

// matches reports whether the lowercased filter occurs in the name, id or ARN.
func (p *CombinedReportPrincipal) matches(normalizedFilter string) bool {
	return strings.Contains(strings.ToLower(p.Name), normalizedFilter) ||
		strings.Contains(strings.ToLower(p.ID), normalizedFilter) ||
		strings.Contains(strings.ToLower(p.ARN), normalizedFilter)
}

// EventCountEntry is one event key with its summary, used for ranked listings.
type EventCountEntry struct {
	Key     string
	Summary *entity.EventSummary
}

// TopEvents returns up to n events ordered by descending count, then key.
func (p *CombinedReportPrincipal) TopEvents(n int) []EventCountEntry {
	entries := make([]EventCountEntry, 0, len(p.Events))
	for k, e := range p.Events {
		entries = append(entries, EventCountEntry{Key: k, Summary: e})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Summary.Count != entries[j].Summary.Count {
			return entries[i].Summary.Count > entries[j].Summary.Count
		}
		return entries[i].Key < entries[j].Key
	})
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}
