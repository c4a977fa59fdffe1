package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/diillson/cloud-snitch-map/internal/domain/entity"
	"github.com/diillson/cloud-snitch-map/internal/domain/repository"
)

// ExportRepositoryImpl implementa o ExportRepository.
type ExportRepositoryImpl struct {
	now func() time.Time
}

// NewExportRepository cria uma nova implementação do ExportRepository.
func NewExportRepository() repository.ExportRepository {
	return &ExportRepositoryImpl{now: time.Now}
}

var markerCSVHeaders = []string{
	"Type", "Label", "Latitude", "Longitude", "Mercator X", "Mercator Y",
	"Count", "AWS Regions", "Networks", "Selected", "Emphasize", "Fade", "Status", "Selection",
}

func (r *ExportRepositoryImpl) ExportMapToCSV(view entity.MapView, filename, outputDir string) (string, error) {
	outputFilename, err := r.generateFilename(filename, outputDir, "csv")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if err := writer.Write(markerCSVHeaders); err != nil {
		return "", fmt.Errorf("error writing CSV header: %w", err)
	}

	for _, m := range view.Markers {
		record := []string{
			m.Type,
			m.Label,
			formatFloat(m.Location.Latitude),
			formatFloat(m.Location.Longitude),
			formatFloat(m.Location.MercatorX),
			formatFloat(m.Location.MercatorY),
			strconv.Itoa(m.Count),
			strings.Join(markerRegions(m), " "),
			strings.Join(markerNetworks(m), " "),
			strconv.FormatBool(m.Selected),
			strconv.FormatBool(m.Emphasize),
			strconv.FormatBool(m.Fade),
			m.Status,
			m.Selection,
		}
		if err := writer.Write(record); err != nil {
			return "", fmt.Errorf("error writing CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("error flushing CSV file: %w", err)
	}

	return filepath.Abs(outputFilename)
}

func (r *ExportRepositoryImpl) ExportMapToJSON(view entity.MapView, filename, outputDir string) (string, error) {
	outputFilename, err := r.generateFilename(filename, outputDir, "json")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(view); err != nil {
		return "", fmt.Errorf("error encoding JSON data: %w", err)
	}

	return filepath.Abs(outputFilename)
}

func (r *ExportRepositoryImpl) ExportMapToPDF(view entity.MapView, filename, outputDir string) (string, error) {
	outputFilename, err := r.generateFilename(filename, outputDir, "pdf")
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	headerColor := [3]int{35, 47, 62}
	headerTextColor := [3]int{255, 255, 255}
	sectionTitleColor := [3]int{0, 0, 0}
	bodyTextColor := [3]int{50, 50, 50}
	lineColor := [3]int{200, 200, 200}

	generated := view.GeneratedAt
	if generated.IsZero() {
		generated = r.now()
	}

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		footerText := fmt.Sprintf("Generated by Cloud Snitch Map | %s", generated.Format("2006-01-02"))
		pdf.CellFormat(0, 10, tr(footerText), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 10, tr(fmt.Sprintf("Page %d", pdf.PageNo())), "", 0, "R", false, 0, "")
	})

	drawSection := func(title string, content string) {
		if strings.TrimSpace(content) == "" {
			return
		}
		pdf.SetFont("Arial", "B", 12)
		pdf.SetTextColor(sectionTitleColor[0], sectionTitleColor[1], sectionTitleColor[2])
		pdf.Cell(0, 8, tr(title))
		pdf.Ln(7)

		pdf.SetDrawColor(lineColor[0], lineColor[1], lineColor[2])
		pdf.Line(pdf.GetX(), pdf.GetY(), pdf.GetX()+190, pdf.GetY())
		pdf.Ln(4)

		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
		pdf.MultiCell(190, 5, tr(content), "", "L", false)
		pdf.Ln(8)
	}

	pdf.AddPage()

	// Cabeçalho
	pdf.SetFillColor(headerColor[0], headerColor[1], headerColor[2])
	pdf.SetTextColor(headerTextColor[0], headerTextColor[1], headerTextColor[2])
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 12, tr("  Cloud Activity Map"), "", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("  Zoom: %g (%d centroids)", view.Zoom, view.Centroids)), "", 1, "L", true, 0, "")
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("  Reports: %d of %d loaded, %d failed", view.Status.Loaded, view.Status.Total, view.Status.Failed)), "", 1, "L", true, 0, "")
	if view.Selection != "" {
		pdf.CellFormat(0, 8, tr(fmt.Sprintf("  Selection: %s", view.Selection)), "", 1, "L", true, 0, "")
	}
	if view.Filter != "" {
		pdf.CellFormat(0, 8, tr(fmt.Sprintf("  Filter: %s", view.Filter)), "", 1, "L", true, 0, "")
	}
	pdf.Ln(10)

	var summary strings.Builder
	summary.WriteString(fmt.Sprintf("Events: %d\n", view.EventCount))
	summary.WriteString(fmt.Sprintf("Principals: %d\n", len(view.Principals)))
	summary.WriteString(fmt.Sprintf("Markers: %d\n", len(view.Markers)))
	if view.Conflicts > 0 {
		summary.WriteString(fmt.Sprintf("Conflicting network records: %d\n", view.Conflicts))
	}
	drawSection("Summary", summary.String())

	var markers strings.Builder
	for _, m := range view.Markers {
		flag := ""
		switch {
		case m.Selected:
			flag = " [selected]"
		case m.Emphasize:
			flag = " [activity]"
		case m.Fade:
			flag = " [faded]"
		}
		markers.WriteString(fmt.Sprintf("%s (%s) at %s%s\n", m.Label, m.Type, m.Location.String(), flag))
		if m.Type == "cluster" {
			if regions := markerRegions(m); len(regions) > 0 {
				markers.WriteString(fmt.Sprintf("  └─ regions: %s\n", strings.Join(regions, ", ")))
			}
			if networks := markerNetworks(m); len(networks) > 0 {
				markers.WriteString(fmt.Sprintf("  └─ networks: %s\n", strings.Join(networks, ", ")))
			}
		}
	}
	drawSection("Markers", markers.String())

	var principals strings.Builder
	for _, p := range view.Principals {
		principals.WriteString(fmt.Sprintf("%s (%s): %d events, %d errors\n", p.Name, p.Type, p.EventCount, p.ErrorCount))
		if len(p.AccountIDs) > 0 {
			principals.WriteString(fmt.Sprintf("  └─ accounts: %s\n", strings.Join(p.AccountIDs, ", ")))
		}
		if len(p.AWSRegionIDs) > 0 {
			principals.WriteString(fmt.Sprintf("  └─ regions: %s\n", strings.Join(p.AWSRegionIDs, ", ")))
		}
	}
	drawSection("Principals", principals.String())

	if err := pdf.OutputFileAndClose(outputFilename); err != nil {
		return "", fmt.Errorf("error writing PDF file: %w", err)
	}

	return filepath.Abs(outputFilename)
}

// --- Funções Auxiliares ---

// generateFilename cria um nome de arquivo único com timestamp e garante que o diretório exista.
func (r *ExportRepositoryImpl) generateFilename(base, dir, ext string) (string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("could not get current working directory: %w", err)
		}
		dir = cwd
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("error creating output directory '%s': %w", dir, err)
	}
	timestamp := r.now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.%s", base, timestamp, ext)
	return filepath.Join(dir, filename), nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// markerRegions devolve as regiões de um marcador: a própria, ou as do cluster.
func markerRegions(m entity.MapMarker) []string {
	if m.Type == "aws-region" {
		return []string{m.ID}
	}
	return m.AWSRegionIDs
}

func markerNetworks(m entity.MapMarker) []string {
	if m.Type == "network" {
		return []string{m.CIDR}
	}
	return m.NetworkCIDRs
}
