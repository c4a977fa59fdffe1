package usecase

import (
	"time"

	"github.com/diillson/cloud-snitch-map/internal/domain/report"
	"github.com/diillson/cloud-snitch-map/internal/domain/repository"
	"github.com/diillson/cloud-snitch-map/internal/metrics"
	"github.com/diillson/cloud-snitch-map/internal/shared/types"
	"github.com/diillson/cloud-snitch-map/pkg/workers"
)

// Dependencies groups the collaborators of a MapUseCase. Cache, Locator and Metrics are optional.
type Dependencies struct {
	AWSRepo    repository.AWSRepository
	ReportRepo repository.ReportRepository
	RegionRepo repository.RegionRepository
	ExportRepo repository.ExportRepository
	Cache      repository.ReportCache
	Locator    repository.NetworkLocator
	Console    types.ConsoleInterface
	Metrics    *metrics.Metrics
	Anonymizer *report.Anonymizer
	Pool       workers.Config
	Retry      workers.RetryConfig
}

// MapUseCase loads activity reports and turns them into map views.
type MapUseCase struct {
	awsRepo    repository.AWSRepository
	reportRepo repository.ReportRepository
	regionRepo repository.RegionRepository
	exportRepo repository.ExportRepository
	cache      repository.ReportCache
	locator    repository.NetworkLocator
	console    types.ConsoleInterface
	metrics    *metrics.Metrics
	anonymizer *report.Anonymizer
	pool       workers.Config
	retry      workers.RetryConfig
	now        func() time.Time
}

// NewMapUseCase creates a new map use case.
func NewMapUseCase(deps Dependencies) *MapUseCase {
	retry := deps.Retry
	if retry.MaxAttempts == 0 {
		retry = workers.DefaultRetryConfig()
	}
	return &MapUseCase{
		awsRepo:    deps.AWSRepo,
		reportRepo: deps.ReportRepo,
		regionRepo: deps.RegionRepo,
		exportRepo: deps.ExportRepo,
		cache:      deps.Cache,
		locator:    deps.Locator,
		console:    deps.Console,
		metrics:    deps.Metrics,
		anonymizer: deps.Anonymizer,
		pool:       deps.Pool,
		retry:      retry,
		now:        time.Now,
	}
}
