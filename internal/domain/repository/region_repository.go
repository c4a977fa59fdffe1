package repository

import (
	"context"

	"github.com/diillson/cloud-snitch-map/internal/domain/entity"
)

// RegionRepository provides the AWS region directory.
type RegionRepository interface {
	ListRegions(ctx context.Context) ([]entity.AWSRegion, error)
}
