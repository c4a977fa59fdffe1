package geoip

import (
	"fmt"
	"net"
	"net/netip"

	"github.com/oschwald/geoip2-golang"

	"github.com/diillson/cloud-snitch-map/internal/domain/entity"
	"github.com/diillson/cloud-snitch-map/internal/domain/repository"
	"github.com/diillson/cloud-snitch-map/internal/shared/types"
)

// cityLookup is the part of *geoip2.Reader the locator needs.
type cityLookup interface {
	City(ip net.IP) (*geoip2.City, error)
	Close() error
}

// NetworkLocatorImpl resolves CIDRs against a MaxMind City database.
type NetworkLocatorImpl struct {
	reader cityLookup
}

// Open opens the City database at path. An empty path yields types.ErrNoGeoIPDatabase.
func Open(path string) (repository.NetworkLocator, error) {
	if path == "" {
		return nil, types.ErrNoGeoIPDatabase
	}
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open City database: %w", err)
	}
	return &NetworkLocatorImpl{reader: reader}, nil
}

// LocateNetwork looks up the network address of cidr.
func (l *NetworkLocatorImpl) LocateNetwork(cidr string) (*entity.Location, error) {
	prefix, err := netip.ParsePrefix(cidr)
	if err != nil {
		return nil, fmt.Errorf("invalid network %q: %w", cidr, err)
	}

	addr := prefix.Masked().Addr()
	record, err := l.reader.City(net.IP(addr.AsSlice()))
	if err != nil {
		return nil, fmt.Errorf("geo lookup failed: %w", err)
	}

	// Registros sem país nem coordenadas não têm entrada no banco.
	if record.Country.IsoCode == "" && record.Location.Latitude == 0 && record.Location.Longitude == 0 {
		return nil, fmt.Errorf("no location for %s: %w", cidr, types.ErrNotFound)
	}

	loc := &entity.Location{
		Latitude:    record.Location.Latitude,
		Longitude:   record.Location.Longitude,
		CountryCode: record.Country.IsoCode,
		CountryName: record.Country.Names["en"],
		CityName:    record.City.Names["en"],
	}
	for _, sub := range record.Subdivisions {
		if name := sub.Names["en"]; name != "" {
			loc.SubdivisionNames = append(loc.SubdivisionNames, name)
		}
	}
	return loc, nil
}

// Close closes the database reader
func (l *NetworkLocatorImpl) Close() error {
	if l.reader == nil {
		return nil
	}
	return l.reader.Close()
}
