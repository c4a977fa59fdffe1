package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/diillson/cloud-snitch-map/internal/domain/entity"
	"github.com/diillson/cloud-snitch-map/internal/domain/repository"
	"github.com/diillson/cloud-snitch-map/internal/shared/types"
)

// maxDocumentSize bounds a single metadata list or report download.
const maxDocumentSize = 256 << 20

// ReportRepositoryImpl implementa o ReportRepository lendo de arquivos, HTTP(S) ou S3.
type ReportRepositoryImpl struct {
	client  *http.Client
	aws     repository.AWSRepository
	profile string
	maxSize int64
}

// NewReportRepository cria um ReportRepository. awsRepo pode ser nil quando não há URLs s3://.
func NewReportRepository(awsRepo repository.AWSRepository, profile string, timeout time.Duration) repository.ReportRepository {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ReportRepositoryImpl{
		client:  &http.Client{Timeout: timeout},
		aws:     awsRepo,
		profile: profile,
		maxSize: maxDocumentSize,
	}
}

// ListReports lê a lista de metadados de relatórios.
func (r *ReportRepositoryImpl) ListReports(ctx context.Context, source string) ([]entity.ReportMetadata, error) {
	data, err := r.read(ctx, source)
	if err != nil {
		return nil, err
	}

	var metas []entity.ReportMetadata
	if err := json.Unmarshal(data, &metas); err != nil {
		return nil, fmt.Errorf("error parsing report list %s: %w", source, err)
	}
	return metas, nil
}

// FetchReport baixa e decodifica o conteúdo de um relatório.
func (r *ReportRepositoryImpl) FetchReport(ctx context.Context, meta entity.ReportMetadata) (*entity.Report, error) {
	data, err := r.read(ctx, meta.DownloadURL)
	if err != nil {
		return nil, fmt.Errorf("report %s: %w", meta.ID, err)
	}

	var report entity.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("report %s: %w: error parsing content: %w", meta.ID, types.ErrInvalidReport, err)
	}
	return &report, nil
}

func (r *ReportRepositoryImpl) read(ctx context.Context, location string) ([]byte, error) {
	if location == "" {
		return nil, fmt.Errorf("%w: empty location", types.ErrUnsupportedLocation)
	}

	u, err := url.Parse(location)
	if err != nil || u.Scheme == "" {
		return readFile(location)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return r.readHTTP(ctx, location)
	case "s3":
		if r.aws == nil {
			return nil, fmt.Errorf("%w: %s (no AWS access configured)", types.ErrUnsupportedLocation, location)
		}
		key := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || key == "" {
			return nil, fmt.Errorf("%w: %s", types.ErrUnsupportedLocation, location)
		}
		return r.aws.GetObject(ctx, r.profile, u.Host, key)
	case "file":
		return readFile(u.Path)
	default:
		return nil, fmt.Errorf("%w: %s", types.ErrUnsupportedLocation, location)
	}
}

func (r *ReportRepositoryImpl) readHTTP(ctx context.Context, location string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request for %s: %w", location, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrReportFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		switch resp.StatusCode {
		case http.StatusNotFound, http.StatusGone, http.StatusForbidden:
			return nil, fmt.Errorf("%w: %s returned %d: %w", types.ErrReportFetch, location, resp.StatusCode, types.ErrNotFound)
		default:
			return nil, fmt.Errorf("%w: %s returned %d", types.ErrReportFetch, location, resp.StatusCode)
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, r.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", types.ErrReportFetch, location, err)
	}
	if int64(len(data)) > r.maxSize {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", types.ErrDocumentTooLarge, location, r.maxSize)
	}
	return data, nil
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, types.ErrNotFound)
		}
		return nil, fmt.Errorf("error reading %s: %w", path, err)
	}
	return data, nil
}
