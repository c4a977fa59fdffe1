package repository

import (
	"github.com/diillson/cloud-snitch-map/internal/domain/entity"
)

// ExportRepository writes a rendered map view to disk. Every method returns the written file path.
type ExportRepository interface {
	ExportMapToCSV(view entity.MapView, filename, outputDir string) (string, error)
	ExportMapToJSON(view entity.MapView, filename, outputDir string) (string, error)
	ExportMapToPDF(view entity.MapView, filename, outputDir string) (string, error)
}
