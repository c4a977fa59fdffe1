package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/diillson/cloud-snitch-map/internal/adapter/driven/aws"
	"github.com/diillson/cloud-snitch-map/internal/adapter/driven/cache"
	"github.com/diillson/cloud-snitch-map/internal/adapter/driven/config"
	"github.com/diillson/cloud-snitch-map/internal/adapter/driven/export"
	"github.com/diillson/cloud-snitch-map/internal/adapter/driven/geoip"
	"github.com/diillson/cloud-snitch-map/internal/adapter/driven/region"
	"github.com/diillson/cloud-snitch-map/internal/adapter/driven/report"
	"github.com/diillson/cloud-snitch-map/internal/adapter/driving/cli"
	"github.com/diillson/cloud-snitch-map/internal/application/usecase"
	domainreport "github.com/diillson/cloud-snitch-map/internal/domain/report"
	"github.com/diillson/cloud-snitch-map/internal/domain/repository"
	"github.com/diillson/cloud-snitch-map/internal/metrics"
	"github.com/diillson/cloud-snitch-map/internal/shared/types"
	"github.com/diillson/cloud-snitch-map/pkg/version"
	"github.com/diillson/cloud-snitch-map/pkg/workers"
)

func main() {
	// Inicializa o aplicativo CLI
	app := cli.NewCLIApp(version.Version, config.NewConfigRepository())
	app.SetRuntimeFactory(newRuntime)

	// Executa o aplicativo
	if err := app.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newRuntime inicializa os repositórios e o caso de uso a partir dos argumentos.
func newRuntime(args *types.CLIArgs, out types.ConsoleInterface) (*cli.Runtime, error) {
	awsRepo := aws.NewAWSRepository()
	reportRepo := report.NewReportRepository(awsRepo, args.Profile, 0)
	exportRepo := export.NewExportRepository()

	var discovery repository.AWSRepository
	if args.DiscoverRegions {
		discovery = awsRepo
	}
	regionRepo := region.NewRegionRepository(args.RegionsFile, discovery, args.Profile)

	var closers []func() error

	var reportCache repository.ReportCache
	if args.CacheDir != "" {
		c, err := cache.Open(filepath.Join(args.CacheDir, "reports"))
		if err != nil {
			return nil, fmt.Errorf("error opening report cache: %w", err)
		}
		reportCache = c
		closers = append(closers, c.Close)
	}

	var locator repository.NetworkLocator
	if args.GeoIPDatabase != "" {
		l, err := geoip.Open(args.GeoIPDatabase)
		if err != nil {
			for _, closeFn := range closers {
				_ = closeFn()
			}
			return nil, fmt.Errorf("error opening GeoIP database: %w", err)
		}
		locator = l
		closers = append(closers, l.Close)
	}

	m := metrics.New()
	uc := usecase.NewMapUseCase(usecase.Dependencies{
		AWSRepo:    awsRepo,
		ReportRepo: reportRepo,
		RegionRepo: regionRepo,
		ExportRepo: exportRepo,
		Cache:      reportCache,
		Locator:    locator,
		Console:    out,
		Metrics:    m,
		Anonymizer: domainreport.NewAnonymizer(args.Anonymize),
		Pool:       workers.Config{Workers: args.Workers, RateLimit: args.RateLimit},
	})

	return &cli.Runtime{
		UseCase: uc,
		Metrics: m,
		Close: func() {
			for _, closeFn := range closers {
				if err := closeFn(); err != nil {
					out.LogWarning("Error closing resource: %s", err)
				}
			}
		},
	}, nil
}
