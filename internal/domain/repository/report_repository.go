package repository

import (
	"context"

	"github.com/diillson/cloud-snitch-map/internal/domain/entity"
)

// ReportRepository lists and downloads activity reports.
type ReportRepository interface {
	// ListReports reads the report metadata list found at source, a file path or URL.
	ListReports(ctx context.Context, source string) ([]entity.ReportMetadata, error)
	// FetchReport downloads the content of one report from its DownloadURL.
	FetchReport(ctx context.Context, meta entity.ReportMetadata) (*entity.Report, error)
}

// ReportCache keeps downloaded reports. Reports never change once generated, so entries never
// expire.
type ReportCache interface {
	Get(id string) (*entity.Report, bool, error)
	Put(id string, report *entity.Report) error
	Close() error
}
