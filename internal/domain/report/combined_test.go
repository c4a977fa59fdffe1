package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diillson/cloud-snitch-map/internal/domain/entity"
)

func scope(account, region string) entity.ReportScope {
	return entity.ReportScope{
		AWS:             entity.ReportScopeAWS{AccountID: account, Region: region},
		StartTime:       time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		DurationSeconds: 86400,
	}
}

func reportA() entity.ScopedReport {
	return entity.ScopedReport{
		Scope: scope("111111111111", "us-east-1"),
		Report: &entity.Report{
			NetworkLocations: map[string]*entity.Location{
				"1.2.3.0/24": {Latitude: 10, Longitude: 20, CountryCode: "US", CountryName: "United States", CityName: "Ashburn"},
			},
			IPAddressNetworks: map[string]string{"1.2.3.4": "1.2.3.0/24"},
			Principals: map[string]*entity.Principal{
				"root": {
					Name:        "root",
					Type:        entity.PrincipalTypeAWSAccount,
					IPAddresses: map[string]int{"1.2.3.4": 2},
					UserAgents:  map[string]int{"aws-cli/2": 1},
					Events: map[string]*entity.EventSummary{
						"s3.amazonaws.com:ListBuckets": {Name: "ListBuckets", Source: "s3.amazonaws.com", Count: 4, ErrorCodes: map[string]int{"AccessDenied": 1}},
					},
				},
			},
		},
	}
}

func reportB() entity.ScopedReport {
	return entity.ScopedReport{
		Scope: scope("111111111111", "us-east-1"),
		Report: &entity.Report{
			Principals: map[string]*entity.Principal{
				"root": {
					Name:        "root",
					Type:        entity.PrincipalTypeAWSAccount,
					IPAddresses: map[string]int{"1.2.3.4": 3},
					UserAgents:  map[string]int{"aws-cli/2": 2, "console.amazonaws.com": 1},
					Events: map[string]*entity.EventSummary{
						"s3.amazonaws.com:ListBuckets": {Name: "ListBuckets", Source: "s3.amazonaws.com", Count: 1, ErrorCodes: map[string]int{"AccessDenied": 2, "Throttling": 1}},
						"sts.amazonaws.com:GetCallerIdentity": {Name: "GetCallerIdentity", Source: "sts.amazonaws.com", Count: 6},
					},
				},
			},
		},
	}
}

func reportC() entity.ScopedReport {
	return entity.ScopedReport{
		Scope: scope("222222222222", "eu-west-1"),
		Report: &entity.Report{
			NetworkLocations: map[string]*entity.Location{
				"5.6.7.0/24": {Latitude: 53, Longitude: -8, CountryCode: "IE", CountryName: "Ireland", CityName: "Dublin"},
			},
			IPAddressNetworks: map[string]string{"5.6.7.8": "5.6.7.0/24"},
			Principals: map[string]*entity.Principal{
				"arn:aws:iam::111122223333:role/Foo": {
					Name:        "Foo",
					Type:        entity.PrincipalTypeAWSRole,
					ARN:         "arn:aws:iam::111122223333:role/Foo",
					IPAddresses: map[string]int{"5.6.7.8": 7},
					Events: map[string]*entity.EventSummary{
						"ec2.amazonaws.com:DescribeInstances": {Name: "DescribeInstances", Source: "ec2.amazonaws.com", Count: 7},
					},
				},
				"AROAEXAMPLE:deploy-bot": {
					Name: "deploy-bot",
					Type: entity.PrincipalTypeAWSAssumedRole,
					Events: map[string]*entity.EventSummary{
						"lambda.amazonaws.com:Invoke": {Name: "Invoke", Source: "lambda.amazonaws.com", Count: 2},
					},
				},
			},
		},
	}
}

func TestNewCombinedReport_Scenario(t *testing.T) {
	c := NewCombinedReport(nil, reportA(), reportB())

	root := c.Principals["root"]
	require.NotNil(t, root)
	assert.Equal(t, 5, root.IPAddresses["1.2.3.4"])
	assert.True(t, root.NetworkCIDRs.Has("1.2.3.0/24"))
	assert.True(t, c.AWSRegionIDs.Has("us-east-1"))
	assert.True(t, root.AccountIDs.Has("111111111111"))
	assert.Equal(t, 3, root.UserAgents["aws-cli/2"])
	assert.Equal(t, 1, root.UserAgents["console.amazonaws.com"])
}

func TestNewCombinedReport_SumsEvents(t *testing.T) {
	c := NewCombinedReport(nil, reportA(), reportB())
	root := c.Principals["root"]

	list := root.Events["s3.amazonaws.com:ListBuckets"]
	require.NotNil(t, list)
	assert.Equal(t, 5, list.Count)
	assert.Equal(t, map[string]int{"AccessDenied": 3, "Throttling": 1}, list.ErrorCodes)
	assert.Equal(t, 11, root.EventCount)
	assert.Equal(t, 4, root.ErrorCount())

	sum := 0
	for _, e := range root.Events {
		sum += e.Count
	}
	assert.Equal(t, sum, root.EventCount)
}

func TestNewCombinedReport_DoesNotAliasInput(t *testing.T) {
	a := reportA()
	c := NewCombinedReport(nil, a, reportB())

	assert.Equal(t, 4, a.Report.Principals["root"].Events["s3.amazonaws.com:ListBuckets"].Count)
	assert.Equal(t, map[string]int{"AccessDenied": 1}, a.Report.Principals["root"].Events["s3.amazonaws.com:ListBuckets"].ErrorCodes)
	assert.Equal(t, 5, c.Principals["root"].Events["s3.amazonaws.com:ListBuckets"].Count)
}

func TestNewCombinedReport_OrderIndependent(t *testing.T) {
	forward := NewCombinedReport(nil, reportA(), reportB(), reportC())
	backward := NewCombinedReport(nil, reportC(), reportB(), reportA())

	require.Equal(t, forward.SortedPrincipalIDs(), backward.SortedPrincipalIDs())
	assert.Equal(t, forward.NetworkLocations, backward.NetworkLocations)
	assert.Equal(t, forward.IPAddressNetworks, backward.IPAddressNetworks)
	assert.True(t, forward.AWSRegionIDs.Equal(backward.AWSRegionIDs))
	for _, id := range forward.SortedPrincipalIDs() {
		assert.Equal(t, forward.Principals[id], backward.Principals[id], id)
	}
}

func TestNewCombinedReport_ResolvesNetworksFromLaterReports(t *testing.T) {
	late := entity.ScopedReport{
		Scope: scope("111111111111", "us-west-2"),
		Report: &entity.Report{
			IPAddressNetworks: map[string]string{"9.9.9.9": "9.9.9.0/24"},
		},
	}
	early := entity.ScopedReport{
		Scope: scope("111111111111", "us-west-2"),
		Report: &entity.Report{
			Principals: map[string]*entity.Principal{
				"bob": {IPAddresses: map[string]int{"9.9.9.9": 1}, Events: map[string]*entity.EventSummary{}},
			},
		},
	}

	c := NewCombinedReport(nil, early, late)
	assert.True(t, c.Principals["bob"].NetworkCIDRs.Has("9.9.9.0/24"))
}

func TestNewCombinedReport_EmptyAndMissingMaps(t *testing.T) {
	c := NewCombinedReport(nil,
		entity.ScopedReport{Scope: scope("1", "us-east-1")},
		entity.ScopedReport{Scope: scope("1", "us-east-1"), Report: &entity.Report{}},
	)
	assert.Empty(t, c.Principals)
	assert.Empty(t, c.NetworkLocations)
	assert.Equal(t, 0, c.AWSRegionIDs.Len())
}

func TestNewCombinedReport_DuplicateReportsDoubleCount(t *testing.T) {
	c := NewCombinedReport(nil, reportA(), reportA())
	assert.Equal(t, 4, c.Principals["root"].IPAddresses["1.2.3.4"])
}

func TestAddNetworkLocation_LastWriteWinsAndCountsConflicts(t *testing.T) {
	c := NewCombinedReport(nil)
	c.AddNetworkLocation("1.2.3.0/24", &entity.Location{Latitude: 1, Longitude: 1})
	c.AddNetworkLocation("1.2.3.0/24", &entity.Location{Latitude: 1, Longitude: 1})
	assert.Equal(t, 0, c.Conflicts)

	c.AddNetworkLocation("1.2.3.0/24", &entity.Location{Latitude: 2, Longitude: 2})
	assert.Equal(t, 1, c.Conflicts)
	assert.Equal(t, 2.0, c.NetworkLocations["1.2.3.0/24"].Latitude)

	c.AddIPAddressNetwork("1.2.3.4", "1.2.3.0/24")
	c.AddIPAddressNetwork("1.2.3.4", "1.2.0.0/16")
	assert.Equal(t, 2, c.Conflicts)
	assert.Equal(t, "1.2.0.0/16", c.IPAddressNetworks["1.2.3.4"])
}

func TestWithFilteredPrincipals_MatchesIDCaseInsensitive(t *testing.T) {
	c := NewCombinedReport(nil, reportA(), reportB(), reportC())

	filtered := c.WithFilteredPrincipals("FOO")

	assert.Equal(t, []string{"arn:aws:iam::111122223333:role/Foo"}, filtered.SortedPrincipalIDs())
	assert.Equal(t, []string{"5.6.7.0/24"}, filtered.SortedNetworkCIDRs())
	assert.Equal(t, "5.6.7.0/24", filtered.IPAddressNetworks["5.6.7.8"])
	assert.Equal(t, []string{"eu-west-1"}, filtered.SortedAWSRegionIDs())
	assert.Equal(t, 7, filtered.Principals["arn:aws:iam::111122223333:role/Foo"].EventCount)
}

func TestWithFilteredPrincipals_DoesNotMutateSource(t *testing.T) {
	c := NewCombinedReport(nil, reportA(), reportB(), reportC())
	before := c.SortedPrincipalIDs()

	_ = c.WithFilteredPrincipals("deploy")

	assert.Equal(t, before, c.SortedPrincipalIDs())
	assert.Equal(t, 5, c.Principals["root"].IPAddresses["1.2.3.4"])
	assert.Len(t, c.NetworkLocations, 2)
}

func TestWithFilteredPrincipals_Idempotent(t *testing.T) {
	c := NewCombinedReport(nil, reportA(), reportB(), reportC())

	for _, filter := range []string{"", "o", "deploy", "nothing-matches"} {
		once := c.WithFilteredPrincipals(filter)
		twice := once.WithFilteredPrincipals(filter)
		assert.Equal(t, once.SortedPrincipalIDs(), twice.SortedPrincipalIDs(), filter)
		for _, id := range once.SortedPrincipalIDs() {
			assert.Equal(t, once.Principals[id], twice.Principals[id], filter)
		}
	}

	all := c.WithFilteredPrincipals("")
	assert.Equal(t, c.SortedPrincipalIDs(), all.SortedPrincipalIDs())
}

func TestPrincipalLookups(t *testing.T) {
	c := NewCombinedReport(nil, reportA(), reportB(), reportC())

	assert.Equal(t, []string{"root"}, c.PrincipalsUsingNetwork("1.2.3.0/24"))
	assert.Equal(t, []string{"AROAEXAMPLE:deploy-bot", "arn:aws:iam::111122223333:role/Foo"}, c.PrincipalsInRegion("eu-west-1"))
	assert.Equal(t, 11+7+2, c.EventCount())
}

func TestCombinedReportPrincipal_ShortNameAndTopEvents(t *testing.T) {
	c := NewCombinedReport(nil, reportA(), reportB())
	root := c.Principals["root"]

	assert.Equal(t, "root", root.ShortName())
	top := root.TopEvents(1)
	require.Len(t, top, 1)
	assert.Equal(t, "sts.amazonaws.com:GetCallerIdentity", top[0].Key)

	p := newCombinedReportPrincipal("x", "path/to/name", entity.PrincipalTypeAWSRole, "")
	assert.Equal(t, "name", p.ShortName())
}
