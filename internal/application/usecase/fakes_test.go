package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/diillson/cloud-snitch-map/internal/domain/entity"
	"github.com/diillson/cloud-snitch-map/internal/domain/report"
	"github.com/diillson/cloud-snitch-map/internal/shared/types"
	"github.com/diillson/cloud-snitch-map/pkg/workers"
)

var day0 = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

func meta(id, account, region string, start time.Time) entity.ReportMetadata {
	return entity.ReportMetadata{
		ID: id,
		Scope: entity.ReportScope{
			AWS:             entity.ReportScopeAWS{AccountID: account, Region: region},
			StartTime:       start,
			DurationSeconds: 86400,
		},
		DownloadURL: "https://reports.example.com/" + id + ".json",
	}
}

func rootReport() *entity.Report {
	return &entity.Report{
		NetworkLocations:  map[string]*entity.Location{"1.2.3.0/24": {Latitude: 10, Longitude: 20, CountryCode: "US", CityName: "Ashburn"}},
		IPAddressNetworks: map[string]string{"1.2.3.4": "1.2.3.0/24"},
		Principals: map[string]*entity.Principal{
			"root": {
				Name:        "root",
				Type:        entity.PrincipalTypeAWSAccount,
				IPAddresses: map[string]int{"1.2.3.4": 2},
				Events: map[string]*entity.EventSummary{
					"s3.amazonaws.com:ListBuckets": {Name: "ListBuckets", Source: "s3.amazonaws.com", Count: 4, ErrorCodes: map[string]int{"AccessDenied": 1}},
				},
			},
		},
	}
}

func fooReport() *entity.Report {
	return &entity.Report{
		NetworkLocations:  map[string]*entity.Location{"5.6.7.0/24": {Latitude: 53, Longitude: -8, CountryCode: "IE"}},
		IPAddressNetworks: map[string]string{"5.6.7.8": "5.6.7.0/24", "9.9.9.9": "9.9.9.0/24"},
		Principals: map[string]*entity.Principal{
			"AROAFOO:session": {
				Name:        "role/foo",
				Type:        entity.PrincipalTypeAWSAssumedRole,
				ARN:         "arn:aws:sts::111111111111:assumed-role/foo/session",
				IPAddresses: map[string]int{"5.6.7.8": 1, "9.9.9.9": 1},
				Events: map[string]*entity.EventSummary{
					"s3.amazonaws.com:GetObject": {Name: "GetObject", Source: "s3.amazonaws.com", Count: 3},
				},
			},
		},
	}
}

var testRegions = []entity.AWSRegion{
	{ID: "eu-west-1", Name: "Europe (Ireland)", Latitude: 53.35, Longitude: -6.26},
	{ID: "us-east-1", Name: "US East (N. Virginia)", Latitude: 38.9, Longitude: -77},
}

type fakeReportRepo struct {
	mu        sync.Mutex
	metas     []entity.ReportMetadata
	listErr   error
	reports   map[string]*entity.Report
	errs      map[string]error
	transient map[string]int
	calls     map[string]int
	// block holds a fetch until the channel is closed.
	block map[string]chan struct{}
}

func newFakeReportRepo() *fakeReportRepo {
	return &fakeReportRepo{
		reports:   map[string]*entity.Report{},
		errs:      map[string]error{},
		transient: map[string]int{},
		calls:     map[string]int{},
		block:     map[string]chan struct{}{},
	}
}

func (f *fakeReportRepo) ListReports(ctx context.Context, source string) ([]entity.ReportMetadata, error) {
	return f.metas, f.listErr
}

func (f *fakeReportRepo) FetchReport(ctx context.Context, m entity.ReportMetadata) (*entity.Report, error) {
	f.mu.Lock()
	wait := f.block[m.ID]
	f.mu.Unlock()
	if wait != nil {
		select {
		case <-wait:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[m.ID]++
	if err, ok := f.errs[m.ID]; ok {
		return nil, err
	}
	if f.transient[m.ID] > 0 {
		f.transient[m.ID]--
		return nil, fmt.Errorf("%w: status 503", types.ErrReportFetch)
	}
	r, ok := f.reports[m.ID]
	if !ok {
		return nil, fmt.Errorf("%w: %w", types.ErrReportFetch, types.ErrNotFound)
	}
	return r, nil
}

func (f *fakeReportRepo) callCount(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[id]
}

type fakeRegionRepo struct {
	regions []entity.AWSRegion
	err     error
}

func (f *fakeRegionRepo) ListRegions(ctx context.Context) ([]entity.AWSRegion, error) {
	return f.regions, f.err
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]*entity.Report
	getErr  error
}

func (f *fakeCache) Get(id string) (*entity.Report, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	r, ok := f.entries[id]
	return r, ok, nil
}

func (f *fakeCache) Put(id string, r *entity.Report) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[id] = r
	return nil
}

func (f *fakeCache) Close() error { return nil }

type fakeLocator struct {
	locations map[string]*entity.Location
}

func (f *fakeLocator) LocateNetwork(cidr string) (*entity.Location, error) {
	if loc, ok := f.locations[cidr]; ok {
		return loc, nil
	}
	return nil, types.ErrNotFound
}

func (f *fakeLocator) Close() error { return nil }

type fakeExportRepo struct {
	calls []string
	views []entity.MapView
}

func (f *fakeExportRepo) record(kind string, view entity.MapView, filename string) (string, error) {
	f.calls = append(f.calls, kind+":"+filename)
	f.views = append(f.views, view)
	return "/tmp/" + filename + "." + kind, nil
}

func (f *fakeExportRepo) ExportMapToCSV(view entity.MapView, filename, outputDir string) (string, error) {
	return f.record("csv", view, filename)
}

func (f *fakeExportRepo) ExportMapToJSON(view entity.MapView, filename, outputDir string) (string, error) {
	return f.record("json", view, filename)
}

func (f *fakeExportRepo) ExportMapToPDF(view entity.MapView, filename, outputDir string) (string, error) {
	return f.record("pdf", view, filename)
}

type fakeAWS struct {
	identities map[string]entity.CallerIdentity
}

func (f *fakeAWS) GetAWSProfiles() []string { return nil }

func (f *fakeAWS) GetCallerIdentity(ctx context.Context, profile string) (entity.CallerIdentity, error) {
	id, ok := f.identities[profile]
	if !ok {
		return entity.CallerIdentity{}, errors.New("no credentials")
	}
	return id, nil
}

func (f *fakeAWS) GetEnabledRegions(ctx context.Context, profile string) ([]string, error) {
	return nil, nil
}

func (f *fakeAWS) GetObject(ctx context.Context, profile, bucket, key string) ([]byte, error) {
	return nil, types.ErrNotFound
}

// recordingConsole keeps every message for assertions.
type recordingConsole struct {
	mu       sync.Mutex
	infos    []string
	warnings []string
	errors   []string
	printed  []string
	bars     map[string][]types.EventBar
	tables   []*recordingTable
	progress int
}

func newRecordingConsole() *recordingConsole {
	return &recordingConsole{bars: map[string][]types.EventBar{}}
}

func (c *recordingConsole) add(dst *[]string, format string, a ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	*dst = append(*dst, fmt.Sprintf(format, a...))
}

func (c *recordingConsole) Print(a ...interface{})                 { c.add(&c.printed, "%s", fmt.Sprint(a...)) }
func (c *recordingConsole) Printf(format string, a ...interface{}) { c.add(&c.printed, format, a...) }
func (c *recordingConsole) Println(a ...interface{})               { c.add(&c.printed, "%s", fmt.Sprint(a...)) }
func (c *recordingConsole) LogInfo(format string, a ...interface{}) {
	c.add(&c.infos, format, a...)
}
func (c *recordingConsole) LogWarning(format string, a ...interface{}) {
	c.add(&c.warnings, format, a...)
}
func (c *recordingConsole) LogError(format string, a ...interface{}) {
	c.add(&c.errors, format, a...)
}
func (c *recordingConsole) LogSuccess(format string, a ...interface{}) {
	c.add(&c.infos, format, a...)
}

type nopStatus struct{}

func (nopStatus) Update(string) {}
func (nopStatus) Stop()         {}

func (c *recordingConsole) Status(message string) types.StatusHandle { return nopStatus{} }

type countingProgress struct{ c *recordingConsole }

func (p countingProgress) Increment() {
	p.c.mu.Lock()
	p.c.progress++
	p.c.mu.Unlock()
}
func (p countingProgress) Stop() {}

func (c *recordingConsole) ProgressWithTotal(total int) types.ProgressHandle {
	return countingProgress{c: c}
}

type recordingTable struct {
	columns []string
	rows    [][]interface{}
}

func (t *recordingTable) AddColumn(name string, options ...interface{}) {
	t.columns = append(t.columns, name)
}
func (t *recordingTable) AddRow(cells ...interface{}) { t.rows = append(t.rows, cells) }
func (t *recordingTable) Render() string              { return "" }

func (c *recordingConsole) CreateTable() types.TableInterface {
	t := &recordingTable{}
	c.mu.Lock()
	c.tables = append(c.tables, t)
	c.mu.Unlock()
	return t
}

func (c *recordingConsole) DisplayEventBars(title string, bars []types.EventBar) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bars[title] = bars
}

type fixture struct {
	reports *fakeReportRepo
	cache   *fakeCache
	exports *fakeExportRepo
	console *recordingConsole
	uc      *MapUseCase
}

func newFixture() *fixture {
	f := &fixture{
		reports: newFakeReportRepo(),
		cache:   &fakeCache{entries: map[string]*entity.Report{}},
		exports: &fakeExportRepo{},
		console: newRecordingConsole(),
	}
	f.reports.metas = []entity.ReportMetadata{
		meta("r1", "111111111111", "us-east-1", day0),
		meta("r2", "111111111111", "eu-west-1", day0.Add(24*time.Hour)),
	}
	f.reports.reports["r1"] = rootReport()
	f.reports.reports["r2"] = fooReport()

	f.uc = NewMapUseCase(Dependencies{
		AWSRepo:    &fakeAWS{},
		ReportRepo: f.reports,
		RegionRepo: &fakeRegionRepo{regions: testRegions},
		ExportRepo: f.exports,
		Cache:      f.cache,
		Console:    f.console,
		Anonymizer: report.NewAnonymizer(false),
		Pool:       workers.Config{Workers: 2},
		Retry:      workers.RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1},
	})
	f.uc.now = func() time.Time { return day0.Add(72 * time.Hour) }
	return f
}
