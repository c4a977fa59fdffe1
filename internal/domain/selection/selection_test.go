package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diillson/cloud-snitch-map/pkg/geo"
)

func TestRoundTrip(t *testing.T) {
	cluster := Cluster{
		Rect:     geo.NewRect(0.125, 0.25, 0.15277777777777779, 0.2777777777777778),
		Location: geo.FromLatLon(51.5072, -0.1276),
	}

	tests := []struct {
		name string
		sel  Selection
		want string
	}{
		{name: "aws region", sel: AWSRegion{ID: "us-east-1"}, want: "aws-region:us-east-1"},
		{name: "network", sel: Network{CIDR: "1.2.3.0/24"}, want: "network:1.2.3.0/24"},
		{name: "ipv6 network", sel: Network{CIDR: "2001:db8::/32"}, want: "network:2001:db8::/32"},
		{name: "principal arn", sel: Principal{ID: "arn:aws:iam::111122223333:role/Foo"}, want: "principal:arn:aws:iam::111122223333:role/Foo"},
		{name: "cluster", sel: cluster},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Stringify(tt.sel)
			if tt.want != "" {
				assert.Equal(t, tt.want, s)
			}
			parsed := Parse(s)
			require.NotNil(t, parsed)
			assert.True(t, Equal(tt.sel, parsed), "%q did not round-trip", s)
			assert.Equal(t, tt.sel.Type(), parsed.Type())
		})
	}
}

func TestRoundTrip_ClusterKeepsLocation(t *testing.T) {
	in := Cluster{
		Rect:     geo.NewRect(0.1, 0.2, 0.3, 0.4),
		Location: geo.FromLatLon(-33.86, 151.2),
	}

	out, ok := Parse(Stringify(in)).(Cluster)
	require.True(t, ok)
	assert.Equal(t, in.Rect, out.Rect)
	assert.InDelta(t, in.Location.Latitude, out.Location.Latitude, 1e-12)
	assert.InDelta(t, in.Location.Longitude, out.Location.Longitude, 1e-12)
	assert.InDelta(t, in.Location.MercatorX, out.Location.MercatorX, 1e-12)
}

func TestParse_Malformed(t *testing.T) {
	inputs := []string{
		"",
		"aws-region",
		"unknown:thing",
		"cluster:1,2,3",
		"cluster:1,2,3,4,5,6,7",
		"cluster:a,b,c,d,e,f",
		"cluster:",
		"AWS-REGION:us-east-1",
		"cluster:NaN,NaN,NaN,NaN,0,0",
		"cluster:Inf,0,1,1,0,0",
		"cluster:0,0,1,1,-Inf,0",
		"cluster:0,0,1,1,0,+Inf",
	}
	for _, in := range inputs {
		assert.Nil(t, Parse(in), "input %q", in)
	}
}

func TestParse_EmptyPayloadIsAccepted(t *testing.T) {
	assert.Equal(t, Principal{ID: ""}, Parse("principal:"))
}

func TestStringify_Nil(t *testing.T) {
	assert.Equal(t, "", Stringify(nil))
}

func TestEqual(t *testing.T) {
	rect := geo.NewRect(0.1, 0.1, 0.2, 0.2)

	assert.True(t, Equal(nil, nil))
	assert.False(t, Equal(nil, AWSRegion{ID: "us-east-1"}))
	assert.False(t, Equal(AWSRegion{ID: "us-east-1"}, nil))
	assert.True(t, Equal(AWSRegion{ID: "us-east-1"}, AWSRegion{ID: "us-east-1"}))
	assert.False(t, Equal(AWSRegion{ID: "us-east-1"}, AWSRegion{ID: "us-east-2"}))
	assert.False(t, Equal(AWSRegion{ID: "x"}, Principal{ID: "x"}), "different variants never match")
	assert.True(t, Equal(Network{CIDR: "1.2.3.0/24"}, Network{CIDR: "1.2.3.0/24"}))
	assert.True(t, Equal(
		Cluster{Rect: rect, Location: geo.FromLatLon(1, 1)},
		Cluster{Rect: rect, Location: geo.FromLatLon(1.0000001, 1)},
	), "cluster equality ignores location")
	assert.False(t, Equal(
		Cluster{Rect: rect},
		Cluster{Rect: geo.NewRect(0.1, 0.1, 0.2, 0.25)},
	))
}
