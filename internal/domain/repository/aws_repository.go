package repository

import (
	"context"

	"github.com/diillson/cloud-snitch-map/internal/domain/entity"
)

// AWSRepository defines the interface for AWS API interactions.
type AWSRepository interface {
	// Profile Operations
	GetAWSProfiles() []string
	GetCallerIdentity(ctx context.Context, profile string) (entity.CallerIdentity, error)

	// Region Operations
	GetEnabledRegions(ctx context.Context, profile string) ([]string, error)

	// Storage Operations
	GetObject(ctx context.Context, profile, bucket, key string) ([]byte, error)
}
