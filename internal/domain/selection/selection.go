// Package selection models what the user has focused on the map and its URL string form.
//
// The string form is "<type>:<payload>". For clusters the payload is
// "minX,minY,maxX,maxY,lat,lon": the rect in Mercator space followed by the cluster location in
// degrees, kept separately so the location does not have to be re-derived from the rect.
package selection

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/diillson/cloud-snitch-map/pkg/geo"
)

// Type tags a selection variant.
type Type string

const (
	TypeAWSRegion Type = "aws-region"
	TypeNetwork   Type = "network"
	TypePrincipal Type = "principal"
	TypeCluster   Type = "cluster"
)

// Selection is one of AWSRegion, Network, Principal or Cluster. A nil Selection means nothing is
// selected.
type Selection interface {
	Type() Type
	sealed()
}

type AWSRegion struct {
	ID string
}

type Network struct {
	CIDR string
}

type Principal struct {
	ID string
}

type Cluster struct {
	Rect     geo.MapRect
	Location geo.MapLocation
}

func (AWSRegion) Type() Type { return TypeAWSRegion }
func (Network) Type() Type   { return TypeNetwork }
func (Principal) Type() Type { return TypePrincipal }
func (Cluster) Type() Type   { return TypeCluster }

func (AWSRegion) sealed() {}
func (Network) sealed()   {}
func (Principal) sealed() {}
func (Cluster) sealed()   {}

// Equal compares two selections. Clusters are equal when their rects are; the location is derived
// and may differ by rounding.
func Equal(a, b Selection) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch a := a.(type) {
	case AWSRegion:
		other, ok := b.(AWSRegion)
		return ok && a.ID == other.ID
	case Network:
		other, ok := b.(Network)
		return ok && a.CIDR == other.CIDR
	case Principal:
		other, ok := b.(Principal)
		return ok && a.ID == other.ID
	case Cluster:
		other, ok := b.(Cluster)
		return ok && a.Rect.Equal(other.Rect)
	default:
		return false
	}
}

// Parse decodes a selection string. Any malformed input yields nil.
func Parse(s string) Selection {
	typ, payload, found := strings.Cut(s, ":")
	if !found {
		return nil
	}

	switch Type(typ) {
	case TypeAWSRegion:
		return AWSRegion{ID: payload}
	case TypeNetwork:
		return Network{CIDR: payload}
	case TypePrincipal:
		return Principal{ID: payload}
	case TypeCluster:
		return parseCluster(payload)
	default:
		return nil
	}
}

func parseCluster(payload string) Selection {
	parts := strings.Split(payload, ",")
	if len(parts) != 6 {
		return nil
	}
	values := make([]float64, len(parts))
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
		values[i] = v
	}
	return Cluster{
		Rect:     geo.NewRect(values[0], values[1], values[2], values[3]),
		Location: geo.FromLatLon(values[4], values[5]),
	}
}

// Stringify encodes a selection. A nil selection encodes to "".
func Stringify(s Selection) string {
	switch s := s.(type) {
	case nil:
		return ""
	case AWSRegion:
		return fmt.Sprintf("%s:%s", TypeAWSRegion, s.ID)
	case Network:
		return fmt.Sprintf("%s:%s", TypeNetwork, s.CIDR)
	case Principal:
		return fmt.Sprintf("%s:%s", TypePrincipal, s.ID)
	case Cluster:
		return fmt.Sprintf("%s:%s,%s,%s,%s,%s,%s", TypeCluster,
			formatFloat(s.Rect.MinX), formatFloat(s.Rect.MinY),
			formatFloat(s.Rect.MaxX), formatFloat(s.Rect.MaxY),
			formatFloat(s.Location.Latitude), formatFloat(s.Location.Longitude))
	default:
		return ""
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
