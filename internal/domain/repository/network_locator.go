package repository

import (
	"github.com/diillson/cloud-snitch-map/internal/domain/entity"
)

// NetworkLocator geolocates network CIDRs that reports left without a location.
type NetworkLocator interface {
	LocateNetwork(cidr string) (*entity.Location, error)
	Close() error
}
