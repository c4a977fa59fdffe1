package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/diillson/cloud-snitch-map/internal/adapter/driving/httpapi"
	"github.com/diillson/cloud-snitch-map/internal/application/usecase"
	"github.com/diillson/cloud-snitch-map/internal/domain/repository"
	"github.com/diillson/cloud-snitch-map/internal/metrics"
	"github.com/diillson/cloud-snitch-map/internal/shared/types"
	"github.com/diillson/cloud-snitch-map/pkg/console"
	"github.com/diillson/cloud-snitch-map/pkg/version"
)

// StreamerModeEnv enables anonymization when set to a true value.
const StreamerModeEnv = "CLOUD_SNITCH_STREAMER_MODE"

// Runtime is what a command needs once its flags are known.
type Runtime struct {
	UseCase *usecase.MapUseCase
	Metrics *metrics.Metrics
	Close   func()
}

// RuntimeFactory wires the adapters for args. User-facing output goes to out.
type RuntimeFactory func(args *types.CLIArgs, out types.ConsoleInterface) (*Runtime, error)

// CLIApp represents the command-line interface application.
type CLIApp struct {
	rootCmd    *cobra.Command
	configRepo repository.ConfigRepository
	newRuntime RuntimeFactory
	version    string
	stdout     io.Writer
	getenv     func(string) string
}

// NewCLIApp cria uma nova aplicação CLI.
func NewCLIApp(versionStr string, configRepo repository.ConfigRepository) *CLIApp {
	app := &CLIApp{
		version:    versionStr,
		configRepo: configRepo,
		stdout:     os.Stdout,
		getenv:     os.Getenv,
	}

	rootCmd := &cobra.Command{
		Use:           "cloud-snitch",
		Short:         "Cloud Snitch activity map CLI",
		Long:          "Loads Cloud Snitch activity reports and shows where your AWS principals act from.",
		Version:       version.FormatVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          app.runMap,
	}

	rootCmd.SetVersionTemplate(`{{printf "Cloud Snitch Map version: %s\n" .Version}}`)

	flags := rootCmd.PersistentFlags()
	flags.StringP("config-file", "C", "", "Path to a TOML, YAML, or JSON configuration file")
	flags.StringP("profile", "p", "", "AWS profile used for s3:// reports and region discovery")
	flags.StringP("reports", "R", "", "Report list to load: file path, http(s):// URL or s3://bucket/key")
	flags.String("regions-file", "", "JSON file overriding the built-in AWS region directory")
	flags.Bool("discover-regions", false, "Mark the regions enabled for the account via EC2")
	flags.StringSlice("accounts", nil, "Only load reports from these AWS account ids")
	flags.StringSlice("exclude-accounts", nil, "Skip reports from these AWS account ids")
	flags.StringSliceP("regions", "r", nil, "Only load reports from these AWS regions")
	flags.StringSlice("exclude-regions", nil, "Skip reports from these AWS regions")
	flags.Duration("duration", 0, "Only load reports within this window before the newest report, e.g. 168h")
	flags.StringP("filter", "f", "", "Only show principals whose name, id or ARN contains this text")
	flags.Float64P("zoom", "z", 1, "Map zoom level (0-24), controls how aggressively markers cluster")
	flags.StringP("selection", "s", "", "Selected item, e.g. principal:<id>, network:<cidr>, aws-region:<id>")
	flags.String("highlight", "", "Principal id whose activity is highlighted; other markers fade")
	flags.IntP("top", "t", usecase.DefaultTop, "Number of principals and events to list")
	flags.StringP("report-name", "n", "", "Specify the base name for the report file (without extension)")
	flags.StringSliceP("report-type", "y", []string{"csv"}, "Specify report types: csv, json, pdf")
	flags.StringP("dir", "d", "", "Directory to save the report files (default: current directory)")
	flags.Bool("anonymize", false, "Replace AWS account ids with random stand-ins (also "+StreamerModeEnv+")")
	flags.IntP("workers", "w", 8, "Number of reports fetched concurrently")
	flags.Float64("rate-limit", 0, "Maximum report fetches started per second (0 = unlimited)")
	flags.String("cache-dir", "", "Directory of the on-disk report cache (disabled when empty)")
	flags.String("geoip-db", "", "MaxMind GeoLite2/GeoIP2 City database used to locate unlocated networks")
	flags.String("log-format", "text", "Output format: text or json")
	flags.String("log-level", "info", "Log level for json output: debug, info, warn, error")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the activity map as JSON over HTTP",
		Args:  cobra.NoArgs,
		RunE:  app.runServe,
	}
	serveCmd.Flags().StringP("listen", "l", ":8080", "Address the HTTP server listens on")
	serveCmd.Flags().Duration("refresh", 15*time.Minute, "Reload reports this often (0 = load once)")

	whoamiCmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the AWS identity behind the configured credentials",
		Args:  cobra.NoArgs,
		RunE:  app.runWhoAmI,
	}
	whoamiCmd.Flags().BoolP("all", "a", false, "Check every profile in the AWS configuration")

	rootCmd.AddCommand(serveCmd, whoamiCmd)

	app.rootCmd = rootCmd
	return app
}

// SetRuntimeFactory sets how commands build their use case.
func (app *CLIApp) SetRuntimeFactory(factory RuntimeFactory) {
	app.newRuntime = factory
}

// Execute runs the CLI application.
func (app *CLIApp) Execute() error {
	return app.rootCmd.Execute()
}

// ExecuteContext runs the CLI application with ctx.
func (app *CLIApp) ExecuteContext(ctx context.Context) error {
	return app.rootCmd.ExecuteContext(ctx)
}

// parseArgs parses command-line arguments into a CLIArgs struct, filling unset flags from the
// config file.
func (app *CLIApp) parseArgs(cmd *cobra.Command) (*types.CLIArgs, error) {
	flags := cmd.Flags()

	configFile, _ := flags.GetString("config-file")
	profile, _ := flags.GetString("profile")
	reports, _ := flags.GetString("reports")
	regionsFile, _ := flags.GetString("regions-file")
	discoverRegions, _ := flags.GetBool("discover-regions")
	accounts, _ := flags.GetStringSlice("accounts")
	excludeAccounts, _ := flags.GetStringSlice("exclude-accounts")
	regions, _ := flags.GetStringSlice("regions")
	excludeRegions, _ := flags.GetStringSlice("exclude-regions")
	duration, _ := flags.GetDuration("duration")
	filter, _ := flags.GetString("filter")
	zoom, _ := flags.GetFloat64("zoom")
	selection, _ := flags.GetString("selection")
	highlight, _ := flags.GetString("highlight")
	top, _ := flags.GetInt("top")
	reportName, _ := flags.GetString("report-name")
	reportType, _ := flags.GetStringSlice("report-type")
	dir, _ := flags.GetString("dir")
	anonymize, _ := flags.GetBool("anonymize")
	workers, _ := flags.GetInt("workers")
	rateLimit, _ := flags.GetFloat64("rate-limit")
	cacheDir, _ := flags.GetString("cache-dir")
	geoIPDatabase, _ := flags.GetString("geoip-db")
	logFormat, _ := flags.GetString("log-format")
	logLevel, _ := flags.GetString("log-level")

	args := &types.CLIArgs{
		ConfigFile:      configFile,
		Profile:         profile,
		Reports:         reports,
		RegionsFile:     regionsFile,
		DiscoverRegions: discoverRegions,
		Accounts:        accounts,
		ExcludeAccounts: excludeAccounts,
		Regions:         regions,
		ExcludeRegions:  excludeRegions,
		Duration:        duration,
		Filter:          filter,
		Zoom:            zoom,
		Selection:       selection,
		Highlight:       highlight,
		Top:             top,
		ReportName:      reportName,
		ReportType:      reportType,
		Dir:             dir,
		Anonymize:       anonymize,
		Workers:         workers,
		RateLimit:       rateLimit,
		CacheDir:        cacheDir,
		GeoIPDatabase:   geoIPDatabase,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
	}

	// Flags locais de subcomandos
	if flags.Lookup("listen") != nil {
		args.Listen, _ = flags.GetString("listen")
		args.Refresh, _ = flags.GetDuration("refresh")
	}
	if flags.Lookup("all") != nil {
		args.AllProfiles, _ = flags.GetBool("all")
	}

	if configFile != "" {
		cfg, err := app.configRepo.LoadConfigFile(configFile)
		if err != nil {
			return nil, err
		}
		if err := mergeConfig(cmd, args, cfg); err != nil {
			return nil, err
		}
	}

	if !args.Anonymize {
		args.Anonymize = envEnabled(app.getenv(StreamerModeEnv))
	}

	switch args.LogFormat {
	case "text", "json":
	default:
		return nil, fmt.Errorf("invalid log format %q, expected text or json", args.LogFormat)
	}

	// Set default directory to current working directory if not specified
	if args.Dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		args.Dir = cwd
	} else {
		absDir, err := filepath.Abs(args.Dir)
		if err != nil {
			return nil, err
		}
		args.Dir = absDir
	}

	return args, nil
}

// mergeConfig copies config file values into args for every flag the user did not set.
func mergeConfig(cmd *cobra.Command, args *types.CLIArgs, cfg *types.Config) error {
	unset := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && !f.Changed
	}

	if unset("profile") && cfg.Profile != "" {
		args.Profile = cfg.Profile
	}
	if unset("reports") && cfg.Reports != "" {
		args.Reports = cfg.Reports
	}
	if unset("regions-file") && cfg.RegionsFile != "" {
		args.RegionsFile = cfg.RegionsFile
	}
	if unset("discover-regions") && cfg.DiscoverRegions {
		args.DiscoverRegions = true
	}
	if unset("accounts") && len(cfg.Accounts) > 0 {
		args.Accounts = cfg.Accounts
	}
	if unset("exclude-accounts") && len(cfg.ExcludeAccounts) > 0 {
		args.ExcludeAccounts = cfg.ExcludeAccounts
	}
	if unset("regions") && len(cfg.Regions) > 0 {
		args.Regions = cfg.Regions
	}
	if unset("exclude-regions") && len(cfg.ExcludeRegions) > 0 {
		args.ExcludeRegions = cfg.ExcludeRegions
	}
	if unset("duration") && cfg.Duration != "" {
		d, err := time.ParseDuration(cfg.Duration)
		if err != nil {
			return fmt.Errorf("invalid duration in config file: %w", err)
		}
		args.Duration = d
	}
	if unset("filter") && cfg.Filter != "" {
		args.Filter = cfg.Filter
	}
	if unset("zoom") && cfg.Zoom != 0 {
		args.Zoom = cfg.Zoom
	}
	if unset("report-name") && cfg.ReportName != "" {
		args.ReportName = cfg.ReportName
	}
	if unset("report-type") && len(cfg.ReportType) > 0 {
		args.ReportType = cfg.ReportType
	}
	if unset("dir") && cfg.Dir != "" {
		args.Dir = cfg.Dir
	}
	if unset("anonymize") && cfg.Anonymize {
		args.Anonymize = true
	}
	if unset("workers") && cfg.Workers > 0 {
		args.Workers = cfg.Workers
	}
	if unset("rate-limit") && cfg.RateLimit > 0 {
		args.RateLimit = cfg.RateLimit
	}
	if unset("cache-dir") && cfg.CacheDir != "" {
		args.CacheDir = cfg.CacheDir
	}
	if unset("geoip-db") && cfg.GeoIPDatabase != "" {
		args.GeoIPDatabase = cfg.GeoIPDatabase
	}
	if unset("listen") && cfg.Listen != "" {
		args.Listen = cfg.Listen
	}
	if unset("refresh") && cfg.Refresh != "" {
		d, err := time.ParseDuration(cfg.Refresh)
		if err != nil {
			return fmt.Errorf("invalid refresh in config file: %w", err)
		}
		args.Refresh = d
	}
	return nil
}

// envEnabled treats any non-empty value other than a false boolean as enabled.
func envEnabled(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	enabled, err := strconv.ParseBool(value)
	return err != nil || enabled
}

// newConsole escolhe a saída de acordo com --log-format.
func (app *CLIApp) newConsole(args *types.CLIArgs) types.ConsoleInterface {
	if args.LogFormat == "json" {
		return console.NewJSONConsole(app.stdout, args.LogLevel)
	}
	return console.NewConsole()
}

// prepare parses the flags and builds the runtime for cmd.
func (app *CLIApp) prepare(cmd *cobra.Command) (*types.CLIArgs, types.ConsoleInterface, *Runtime, error) {
	args, err := app.parseArgs(cmd)
	if err != nil {
		return nil, nil, nil, err
	}

	out := app.newConsole(args)
	if args.LogFormat == "text" {
		displayWelcomeBanner(app.version)
		// Verifica a versão mais recente disponível
		go version.CheckLatestVersion(app.version)
	}

	if app.newRuntime == nil {
		return nil, nil, nil, fmt.Errorf("cli: no runtime factory configured")
	}
	rt, err := app.newRuntime(args, out)
	if err != nil {
		return nil, nil, nil, err
	}
	if rt.Close == nil {
		rt.Close = func() {}
	}
	return args, out, rt, nil
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// runMap é o ponto de entrada principal para o comando CLI.
func (app *CLIApp) runMap(cmd *cobra.Command, _ []string) error {
	args, _, rt, err := app.prepare(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	return rt.UseCase.RunMap(contextOf(cmd), args)
}

func (app *CLIApp) runServe(cmd *cobra.Command, _ []string) error {
	args, out, rt, err := app.prepare(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	if args.Reports == "" {
		return types.ErrNoReportSource
	}

	ctx, stop := signal.NotifyContext(contextOf(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := usecase.NewMapStore()
	go rt.UseCase.Refresh(ctx, args, store, args.Refresh)
	out.LogInfo("Loading reports from %s in the background", args.Reports)

	logger := httpapi.NewLogger(app.stdout, args.LogLevel)
	h := httpapi.NewHandler(logger, store, rt.UseCase, rt.Metrics)
	return httpapi.Serve(ctx, logger, args.Listen, h.Router())
}

func (app *CLIApp) runWhoAmI(cmd *cobra.Command, _ []string) error {
	args, _, rt, err := app.prepare(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	var profiles []string
	switch {
	case args.AllProfiles:
		profiles = rt.UseCase.AWSProfiles()
	case args.Profile != "":
		profiles = []string{args.Profile}
	}

	_, err = rt.UseCase.WhoAmI(contextOf(cmd), profiles)
	return err
}
