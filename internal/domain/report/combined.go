// Package report merges independently fetched activity reports into a single queryable index.
//
// Merging only sums counters and unions sets, so the result does not depend on the order in which
// reports are folded. The aggregator never deduplicates: folding the same report twice counts its
// activity twice, so callers must deduplicate by scope first.
package report

import (
	"sort"
	"strings"

	"github.com/diillson/cloud-snitch-map/internal/domain/entity"
)

// CombinedReport is the merged index of any number of reports.
type CombinedReport struct {
	NetworkLocations  map[string]*entity.Location         `json:"network_locations"`
	IPAddressNetworks map[string]string                   `json:"ip_address_networks"`
	Principals        map[string]*CombinedReportPrincipal `json:"principals"`
	AWSRegionIDs      entity.StringSet                    `json:"aws_region_ids"`

	// Conflicts counts network locations or IP networks that were overwritten with a different value.
	Conflicts int `json:"conflicts"`

	anonymizer *Anonymizer
}

// NewCombinedReport folds reports in the given order.
func NewCombinedReport(anonymizer *Anonymizer, reports ...entity.ScopedReport) *CombinedReport {
	c := &CombinedReport{
		NetworkLocations:  make(map[string]*entity.Location),
		IPAddressNetworks: make(map[string]string),
		Principals:        make(map[string]*CombinedReportPrincipal),
		AWSRegionIDs:      entity.NewStringSet(),
		anonymizer:        anonymizer,
	}
	for _, r := range reports {
		c.AddReport(r)
	}
	c.ResolveNetworks()
	return c
}

// AddReport folds one report: its network locations, then its IP networks, then its principals.
// Missing maps are treated as empty.
func (c *CombinedReport) AddReport(r entity.ScopedReport) {
	if r.Report == nil {
		return
	}
	for _, cidr := range sortedKeys(r.Report.NetworkLocations) {
		if loc := r.Report.NetworkLocations[cidr]; loc != nil {
			c.AddNetworkLocation(cidr, loc)
		}
	}
	for _, ip := range sortedKeys(r.Report.IPAddressNetworks) {
		c.AddIPAddressNetwork(ip, r.Report.IPAddressNetworks[ip])
	}
	for _, id := range sortedKeys(r.Report.Principals) {
		if p := r.Report.Principals[id]; p != nil {
			c.AddPrincipalFromReport(id, p, r.Scope)
		}
	}
}

// AddNetworkLocation records the location of a CIDR. The last write wins.
func (c *CombinedReport) AddNetworkLocation(cidr string, location *entity.Location) {
	if existing, ok := c.NetworkLocations[cidr]; ok && !sameLocation(existing, location) {
		c.Conflicts++
	}
	c.NetworkLocations[cidr] = location
}

// AddIPAddressNetwork records the CIDR an IP belongs to. The last write wins.
func (c *CombinedReport) AddIPAddressNetwork(ip, cidr string) {
	if cidr == "" {
		return
	}
	if existing, ok := c.IPAddressNetworks[ip]; ok && existing != cidr {
		c.Conflicts++
	}
	c.IPAddressNetworks[ip] = cidr
}

func (c *CombinedReport) getOrAddPrincipal(id, name string, principalType entity.PrincipalType, arn string) *CombinedReportPrincipal {
	p, ok := c.Principals[id]
	if !ok {
		p = newCombinedReportPrincipal(id, name, principalType, arn)
		c.Principals[id] = p
	}
	return p
}

// AddPrincipalFromReport sums a principal from a raw report into the aggregate.
func (c *CombinedReport) AddPrincipalFromReport(id string, principal *entity.Principal, scope entity.ReportScope) {
	p := c.getOrAddPrincipal(id, c.anonymizer.Sanitize(principal.Name), principal.Type, c.anonymizer.Sanitize(principal.ARN))

	p.AccountIDs.Add(c.anonymizer.Sanitize(scope.AWS.AccountID))
	p.AWSRegionIDs.Add(scope.AWS.Region)
	c.AWSRegionIDs.Add(scope.AWS.Region)

	for ip, count := range principal.IPAddresses {
		p.IPAddresses[ip] += count
		if cidr, ok := c.IPAddressNetworks[ip]; ok {
			p.NetworkCIDRs.Add(cidr)
		}
	}

	for agent, count := range principal.UserAgents {
		p.UserAgents[agent] += count
	}

	for key, summary := range principal.Events {
		p.AddEventSummary(key, summary)
	}
}

// AddCombinedReportPrincipal copies the principal stored under id in other into c, together with
// every network and location its IP addresses refer to.
func (c *CombinedReport) AddCombinedReportPrincipal(other *CombinedReport, id string) {
	src, ok := other.Principals[id]
	if !ok {
		return
	}
	p := c.getOrAddPrincipal(id, src.Name, src.Type, src.ARN)

	p.AccountIDs.AddAll(src.AccountIDs)
	p.AWSRegionIDs.AddAll(src.AWSRegionIDs)
	c.AWSRegionIDs.AddAll(src.AWSRegionIDs)

	for ip, count := range src.IPAddresses {
		p.IPAddresses[ip] += count
		cidr, ok := other.IPAddressNetworks[ip]
		if !ok {
			continue
		}
		if loc, ok := other.NetworkLocations[cidr]; ok {
			c.AddNetworkLocation(cidr, loc)
		}
		c.AddIPAddressNetwork(ip, cidr)
		p.NetworkCIDRs.Add(cidr)
	}

	for agent, count := range src.UserAgents {
		p.UserAgents[agent] += count
	}

	for key, summary := range src.Events {
		p.AddEventSummary(key, summary)
	}
}

// ResolveNetworks recomputes every principal's network set from its IP addresses. Folding calls
// it once at the end so an IP mapped by a later report still resolves for earlier principals.
func (c *CombinedReport) ResolveNetworks() {
	for _, p := range c.Principals {
		for ip := range p.IPAddresses {
			if cidr, ok := c.IPAddressNetworks[ip]; ok {
				p.NetworkCIDRs.Add(cidr)
			}
		}
	}
}

// WithFilteredPrincipals returns a new aggregate holding only the principals whose name, id or ARN
// contains filter, ignoring case. The receiver is not modified.
func (c *CombinedReport) WithFilteredPrincipals(filter string) *CombinedReport {
	ret := NewCombinedReport(c.anonymizer)

	normalized := strings.ToLower(filter)
	for _, id := range c.SortedPrincipalIDs() {
		if c.Principals[id].matches(normalized) {
			ret.AddCombinedReportPrincipal(c, id)
		}
	}

	return ret
}

// PrincipalsUsingNetwork returns the ids of principals seen from cidr, sorted.
func (c *CombinedReport) PrincipalsUsingNetwork(cidr string) []string {
	var ids []string
	for id, p := range c.Principals {
		if p.NetworkCIDRs.Has(cidr) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// PrincipalsInRegion returns the ids of principals active in region, sorted.
func (c *CombinedReport) PrincipalsInRegion(region string) []string {
	var ids []string
	for id, p := range c.Principals {
		if p.AWSRegionIDs.Has(region) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

func (c *CombinedReport) SortedPrincipalIDs() []string {
	return sortedKeys(c.Principals)
}

func (c *CombinedReport) SortedNetworkCIDRs() []string {
	return sortedKeys(c.NetworkLocations)
}

func (c *CombinedReport) SortedAWSRegionIDs() []string {
	return c.AWSRegionIDs.Sorted()
}

// EventCount sums every principal's event count.
func (c *CombinedReport) EventCount() int {
	total := 0
	for _, p := range c.Principals {
		total += p.EventCount
	}
	return total
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sameLocation(a, b *entity.Location) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Latitude == b.Latitude &&
		a.Longitude == b.Longitude &&
		a.CountryCode == b.CountryCode &&
		a.CityName == b.CityName
}
