// Package geo converts between geographic coordinates and normalized Web-Mercator space.
//
// Mercator coordinates are normalized to [0,1] on both axes, with (0,0) at the north-west corner
// of the map (180° W, ~85° N) and (1,1) at the south-east corner.
package geo

import (
	"fmt"
	"math"
)

// MaxLatitude is the latitude at which the Web-Mercator projection reaches the map edge.
// Latitudes beyond it are clamped before projecting.
const MaxLatitude = 85.05112878

// MapLocation holds the same point in both coordinate systems.
type MapLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	MercatorX float64 `json:"mercator_x"`
	MercatorY float64 `json:"mercator_y"`
}

func mercatorXFromLongitude(lon float64) float64 {
	return (180 + lon) / 360
}

func mercatorYFromLatitude(lat float64) float64 {
	return (180 - (180/math.Pi)*math.Log(math.Tan(math.Pi/4+lat*math.Pi/360))) / 360
}

func longitudeFromMercatorX(x float64) float64 {
	return x*360 - 180
}

func latitudeFromMercatorY(y float64) float64 {
	y2 := 180 - y*360
	return (360/math.Pi)*math.Atan(math.Exp(y2*math.Pi/180)) - 90
}

// FromLatLon projects a latitude/longitude pair.
func FromLatLon(lat, lon float64) MapLocation {
	lat = math.Max(-MaxLatitude, math.Min(MaxLatitude, lat))
	return MapLocation{
		Latitude:  lat,
		Longitude: lon,
		MercatorX: mercatorXFromLongitude(lon),
		MercatorY: mercatorYFromLatitude(lat),
	}
}

// FromMercator unprojects normalized Mercator coordinates.
func FromMercator(x, y float64) MapLocation {
	return MapLocation{
		Latitude:  latitudeFromMercatorY(y),
		Longitude: longitudeFromMercatorX(x),
		MercatorX: x,
		MercatorY: y,
	}
}

// String renders the location as e.g. "37.7749° N, 122.4194° W".
func (l MapLocation) String() string {
	latDirection := "N"
	if l.Latitude < 0 {
		latDirection = "S"
	}
	lonDirection := "E"
	if l.Longitude < 0 {
		lonDirection = "W"
	}
	return fmt.Sprintf("%.4f° %s, %.4f° %s", math.Abs(l.Latitude), latDirection, math.Abs(l.Longitude), lonDirection)
}

// MapRect is an axis-aligned rectangle in Mercator space. Min is always <= Max on both axes.
type MapRect struct {
	MinX float64 `json:"min_mercator_x"`
	MinY float64 `json:"min_mercator_y"`
	MaxX float64 `json:"max_mercator_x"`
	MaxY float64 `json:"max_mercator_y"`
}

// NewRect builds a rect from two corners in any order.
func NewRect(x1, y1, x2, y2 float64) MapRect {
	return MapRect{
		MinX: math.Min(x1, x2),
		MinY: math.Min(y1, y2),
		MaxX: math.Max(x1, x2),
		MaxY: math.Max(y1, y2),
	}
}

// PointRect returns the zero-area rect at loc.
func PointRect(loc MapLocation) MapRect {
	return MapRect{MinX: loc.MercatorX, MinY: loc.MercatorY, MaxX: loc.MercatorX, MaxY: loc.MercatorY}
}

// Contains reports whether other lies entirely within r, bounds inclusive.
func (r MapRect) Contains(other MapRect) bool {
	return r.MinX <= other.MinX &&
		r.MinY <= other.MinY &&
		r.MaxX >= other.MaxX &&
		r.MaxY >= other.MaxY
}

// ContainsLocation tests the location's Mercator coordinates, bounds inclusive.
func (r MapRect) ContainsLocation(loc MapLocation) bool {
	return r.MinX <= loc.MercatorX &&
		r.MinY <= loc.MercatorY &&
		r.MaxX >= loc.MercatorX &&
		r.MaxY >= loc.MercatorY
}

// Equal compares all four bounds exactly.
func (r MapRect) Equal(other MapRect) bool {
	return r.MinX == other.MinX &&
		r.MinY == other.MinY &&
		r.MaxX == other.MaxX &&
		r.MaxY == other.MaxY
}

// Extend returns the smallest rect containing both r and loc.
func (r MapRect) Extend(loc MapLocation) MapRect {
	return MapRect{
		MinX: math.Min(r.MinX, loc.MercatorX),
		MinY: math.Min(r.MinY, loc.MercatorY),
		MaxX: math.Max(r.MaxX, loc.MercatorX),
		MaxY: math.Max(r.MaxY, loc.MercatorY),
	}
}

// Width is the rect's extent along the x axis.
func (r MapRect) Width() float64 {
	return r.MaxX - r.MinX
}

// Center returns the rect's midpoint.
func (r MapRect) Center() MapLocation {
	return FromMercator((r.MinX+r.MaxX)/2, (r.MinY+r.MaxY)/2)
}
