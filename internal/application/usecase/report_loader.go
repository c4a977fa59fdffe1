package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/diillson/cloud-snitch-map/internal/domain/entity"
	"github.com/diillson/cloud-snitch-map/internal/domain/report"
	"github.com/diillson/cloud-snitch-map/internal/shared/types"
	"github.com/diillson/cloud-snitch-map/pkg/workers"
)

// Snapshot is a fully loaded combined report with everything needed to render it.
type Snapshot struct {
	Report  *report.CombinedReport
	Regions []entity.AWSRegion
	Status  entity.LoadStatus
}

// LoadProgress is reported after every completed report fetch.
type LoadProgress struct {
	Status  entity.LoadStatus
	Regions []entity.AWSRegion

	partial func() *report.CombinedReport
}

// Partial merges the reports fetched so far, in metadata order. It is only valid during the
// progress callback it was passed to.
func (p LoadProgress) Partial() *report.CombinedReport {
	if p.partial == nil {
		return nil
	}
	return p.partial()
}

// ReportFilterFromArgs builds the report filter selected on the command line.
func ReportFilterFromArgs(args *types.CLIArgs) ReportFilter {
	return ReportFilter{
		Accounts: NewFilterSet(args.Accounts, args.ExcludeAccounts),
		Regions:  NewFilterSet(args.Regions, args.ExcludeRegions),
		Duration: args.Duration,
	}
}

// LoadSnapshot lists reports from args.Reports, filters them and loads the survivors together with
// the region directory. onProgress may be nil.
func (uc *MapUseCase) LoadSnapshot(ctx context.Context, args *types.CLIArgs, onProgress func(LoadProgress)) (Snapshot, error) {
	if args.Reports == "" {
		return Snapshot{}, types.ErrNoReportSource
	}

	regions, err := uc.regionRepo.ListRegions(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("error loading region directory: %w", err)
	}

	metas, err := uc.reportRepo.ListReports(ctx, args.Reports)
	if err != nil {
		return Snapshot{}, fmt.Errorf("error listing reports: %w", err)
	}

	filtered := FilterReports(metas, ReportFilterFromArgs(args))
	if len(metas) > 0 && len(filtered) == 0 {
		return Snapshot{}, types.ErrNoReports
	}
	if dropped := len(metas) - len(filtered); dropped > 0 {
		uc.console.LogInfo("%d of %d reports skipped by filters or as duplicates", dropped, len(metas))
	}

	var progress func(LoadProgress)
	if onProgress != nil {
		progress = func(p LoadProgress) {
			p.Regions = regions
			onProgress(p)
		}
	}

	combined, status, err := uc.LoadCombinedReport(ctx, filtered, progress)
	if err != nil {
		return Snapshot{}, err
	}

	return Snapshot{Report: combined, Regions: regions, Status: status}, nil
}

// LoadCombinedReport fetches every report concurrently and merges them.
//
// Reports that cannot be fetched are logged and skipped, so the returned status may never reach a
// progress of 1. onProgress, when set, is called after every completed fetch on the caller's
// goroutine and can merge what has arrived so far. Merges run in metadata order so the result does
// not depend on fetch timing. The only error returned is a cancelled context.
func (uc *MapUseCase) LoadCombinedReport(ctx context.Context, metas []entity.ReportMetadata, onProgress func(LoadProgress)) (*report.CombinedReport, entity.LoadStatus, error) {
	start := uc.now()
	status := entity.LoadStatus{Total: len(metas)}
	status.Progress = progressOf(status)

	fetched := make([]*entity.Report, len(metas))
	// arrived only holds reports whose result was drained, so the progress callback can read it.
	arrived := make([]*entity.Report, len(metas))
	merge := func() *report.CombinedReport {
		scoped := make([]entity.ScopedReport, 0, len(metas))
		for i, meta := range metas {
			if arrived[i] != nil {
				scoped = append(scoped, entity.ScopedReport{Report: arrived[i], Scope: meta.Scope})
			}
		}
		return report.NewCombinedReport(uc.anonymizer, scoped...)
	}

	pool := workers.NewPool(ctx, uc.pool)
	defer pool.Stop()

	for i, meta := range metas {
		pool.Submit(i, func(ctx context.Context) error {
			r, err := uc.fetchReport(ctx, meta)
			if err != nil {
				return err
			}
			fetched[i] = r
			return nil
		})
	}

	pool.Drain(func(result workers.Result) {
		if result.Error != nil {
			status.Failed++
			uc.metrics.IncReportLoad("failed")
			uc.console.LogWarning("Skipping report %s: %s", metas[result.Index].ID, result.Error)
		} else {
			status.Loaded++
			arrived[result.Index] = fetched[result.Index]
		}
		status.Progress = progressOf(status)
		if onProgress != nil {
			onProgress(LoadProgress{
				Status:  status,
				partial: merge,
			})
		}
	})

	if err := ctx.Err(); err != nil {
		return nil, status, fmt.Errorf("report loading cancelled: %w", err)
	}

	combined := merge()
	uc.backfillLocations(combined)

	uc.metrics.ObserveReportLoad(status.Loaded, uc.now().Sub(start))
	return combined, status, nil
}

// progressOf is loaded/total, or 1 when there is nothing to load.
func progressOf(s entity.LoadStatus) float64 {
	if s.Total == 0 {
		return 1
	}
	return float64(s.Loaded) / float64(s.Total)
}

// fetchReport reads a report from the cache or downloads it, retrying transient failures.
func (uc *MapUseCase) fetchReport(ctx context.Context, meta entity.ReportMetadata) (*entity.Report, error) {
	if uc.cache != nil {
		cached, ok, err := uc.cache.Get(meta.ID)
		if err != nil {
			uc.console.LogWarning("Report cache read failed for %s: %s", meta.ID, err)
		} else if ok {
			uc.metrics.IncReportLoad("cached")
			return cached, nil
		}
	}

	var r *entity.Report
	err := workers.Retry(ctx, uc.retry, func() error {
		var err error
		r, err = uc.reportRepo.FetchReport(ctx, meta)
		if isPermanentFetchError(err) {
			return workers.Permanent(err)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.metrics.IncReportLoad("fetched")

	if uc.cache != nil {
		if err := uc.cache.Put(meta.ID, r); err != nil {
			uc.console.LogWarning("Report cache write failed for %s: %s", meta.ID, err)
		}
	}
	return r, nil
}

// isPermanentFetchError reports whether fetching again cannot change the outcome.
func isPermanentFetchError(err error) bool {
	for _, target := range []error{types.ErrNotFound, types.ErrUnsupportedLocation, types.ErrInvalidReport, types.ErrDocumentTooLarge} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// backfillLocations geolocates networks that IP addresses map to but no report located.
func (uc *MapUseCase) backfillLocations(c *report.CombinedReport) {
	if uc.locator == nil {
		return
	}

	missing := entity.NewStringSet()
	for _, cidr := range c.IPAddressNetworks {
		if _, ok := c.NetworkLocations[cidr]; !ok {
			missing.Add(cidr)
		}
	}

	failed := 0
	for _, cidr := range missing.Sorted() {
		loc, err := uc.locator.LocateNetwork(cidr)
		if err != nil {
			failed++
			continue
		}
		c.AddNetworkLocation(cidr, loc)
	}
	if failed > 0 {
		uc.console.LogWarning("Could not geolocate %d of %d networks", failed, missing.Len())
	}
}
