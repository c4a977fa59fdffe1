package region

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"

	"github.com/diillson/cloud-snitch-map/internal/domain/entity"
	"github.com/diillson/cloud-snitch-map/internal/domain/repository"
)

// KnownRegion is the built-in metadata of one AWS region.
type KnownRegion struct {
	Name               string
	GeolocationCountry string
	GeolocationRegion  string
	Partition          string
	Latitude           float64
	Longitude          float64
}

// KnownAWSRegions holds metadata on known AWS regions. AWS adds regions regularly, so this is not
// exhaustive; use an override file for newer ones.
var KnownAWSRegions = map[string]KnownRegion{
	"af-south-1":     {"Africa (Cape Town)", "ZA", "ZA-WC", "aws", -33.93, 18.42},
	"ap-east-1":      {"Asia Pacific (Hong Kong)", "CN", "CN-HK", "aws", 22.27, 114.16},
	"ap-northeast-1": {"Asia Pacific (Tokyo)", "JP", "JP-13", "aws", 35.41, 139.42},
	"ap-northeast-2": {"Asia Pacific (Seoul)", "KR", "KR-28", "aws", 37.56, 126.98},
	"ap-northeast-3": {"Asia Pacific (Osaka)", "JP", "JP-27", "aws", 34.69, 135.49},
	"ap-south-1":     {"Asia Pacific (Mumbai)", "IN", "IN-MH", "aws", 19.08, 72.88},
	"ap-south-2":     {"Asia Pacific (Hyderabad)", "IN", "IN-TG", "aws", 17.4065, 78.4772},
	"ap-southeast-1": {"Asia Pacific (Singapore)", "SG", "SG-01", "aws", 1.37, 103.8},
	"ap-southeast-2": {"Asia Pacific (Sydney)", "AU", "AU-NSW", "aws", -33.86, 151.2},
	"ap-southeast-3": {"Asia Pacific (Jakarta)", "ID", "ID-JK", "aws", -6.125, 106.655},
	"ap-southeast-4": {"Asia Pacific (Melbourne)", "AU", "AU-VIC", "aws", -37.8136, 144.9631},
	"ap-southeast-5": {"Asia Pacific (Malaysia)", "MY", "MY-14", "aws", 4.2105, 101.9758},
	"ap-southeast-7": {"Asia Pacific (Thailand)", "TH", "TH-10", "aws", 15.87, 100.9925},
	"ca-central-1":   {"Canada (Central)", "CA", "CA-QC", "aws", 45.5, -73.6},
	"ca-west-1":      {"Canada West (Calgary)", "CA", "CA-AB", "aws", 51.0447, -114.0719},
	"cn-north-1":     {"China (Beijing)", "CN", "CN-BJ", "aws-cn", 40.08, 116.584},
	"cn-northwest-1": {"China (Ningxia)", "CN", "CN-NX", "aws-cn", 38.321667, 106.3925},
	"eu-central-1":   {"Europe (Frankfurt)", "DE", "DE-HE", "aws", 50, 8},
	"eu-central-2":   {"Europe (Zurich)", "CH", "CH-ZH", "aws", 47.3769, 8.5417},
	"eu-north-1":     {"Europe (Stockholm)", "SE", "SE-AB", "aws", 59.25, 17.81},
	"eu-south-1":     {"Europe (Milan)", "IT", "IT-MI", "aws", 45.43, 9.29},
	"eu-south-2":     {"Europe (Spain)", "ES", "ES-AR", "aws", 40.4637, -3.7492},
	"eu-west-1":      {"Europe (Ireland)", "IE", "IE-D", "aws", 53, -8},
	"eu-west-2":      {"Europe (London)", "GB", "GB-LND", "aws", 51, -0.1},
	"eu-west-3":      {"Europe (Paris)", "FR", "FR-75C", "aws", 48.86, 2.35},
	"il-central-1":   {"Israel (Tel Aviv)", "IL", "IL-TA", "aws", 32.0853, 34.7818},
	"me-central-1":   {"Middle East (UAE)", "AE", "AE-DU", "aws", 23.4241, 53.8478},
	"me-south-1":     {"Middle East (Bahrain)", "BH", "BH-14", "aws", 26.1, 50.46},
	"mx-central-1":   {"Mexico (Central)", "MX", "MX-QUE", "aws", 19.4326, -99.1332},
	"sa-east-1":      {"South America (Sao Paulo)", "BR", "BR-SP", "aws", -23.34, -46.38},
	"us-east-1":      {"US East (N. Virginia)", "US", "US-VA", "aws", 38.13, -78.45},
	"us-east-2":      {"US East (Ohio)", "US", "US-OH", "aws", 39.96, -83},
	"us-gov-east-1":  {"AWS GovCloud (US-East)", "US", "US-OH", "aws-us-gov", 38.944, -77.455},
	"us-gov-west-1":  {"AWS GovCloud (US-West)", "US", "US-OR", "aws-us-gov", 37.618, -122.375},
	"us-west-1":      {"US West (N. California)", "US", "US-CA", "aws", 37.35, -121.96},
	"us-west-2":      {"US West (Oregon)", "US", "US-OR", "aws", 46.15, -123.88},
}

// RegionRepositoryImpl implementa o RegionRepository a partir da tabela embutida, de um arquivo
// opcional de sobrescrita e, opcionalmente, da descoberta de regiões habilitadas via EC2.
type RegionRepositoryImpl struct {
	overridePath string
	aws          repository.AWSRepository
	profile      string
}

// NewRegionRepository cria um RegionRepository. Com awsRepo nil a descoberta fica desligada.
func NewRegionRepository(overridePath string, awsRepo repository.AWSRepository, profile string) repository.RegionRepository {
	return &RegionRepositoryImpl{
		overridePath: overridePath,
		aws:          awsRepo,
		profile:      profile,
	}
}

// ListRegions returns the directory sorted by region id.
func (r *RegionRepositoryImpl) ListRegions(ctx context.Context) ([]entity.AWSRegion, error) {
	byID := make(map[string]entity.AWSRegion, len(KnownAWSRegions))
	for id, known := range KnownAWSRegions {
		byID[id] = entity.AWSRegion{
			ID:                 id,
			Name:               known.Name,
			Latitude:           known.Latitude,
			Longitude:          known.Longitude,
			GeolocationCountry: known.GeolocationCountry,
			GeolocationRegion:  known.GeolocationRegion,
			Partition:          known.Partition,
		}
	}

	if r.overridePath != "" {
		overrides, err := loadOverrides(r.overridePath)
		if err != nil {
			return nil, err
		}
		for _, o := range overrides {
			if o.ID == "" {
				return nil, fmt.Errorf("region override in %s is missing an id", r.overridePath)
			}
			byID[o.ID] = o
		}
	}

	if r.aws != nil {
		enabled, err := r.aws.GetEnabledRegions(ctx, r.profile)
		if err != nil {
			return nil, fmt.Errorf("error discovering enabled regions: %w", err)
		}
		enabledSet := entity.NewStringSet(enabled...)
		for id, region := range byID {
			isEnabled := enabledSet.Has(id)
			region.Enabled = &isEnabled
			byID[id] = region
		}
	}

	regions := make([]entity.AWSRegion, 0, len(byID))
	for _, region := range byID {
		regions = append(regions, region)
	}
	sort.Slice(regions, func(i, j int) bool { return regions[i].ID < regions[j].ID })
	return regions, nil
}

func loadOverrides(path string) ([]entity.AWSRegion, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading regions file: %w", err)
	}

	var file struct {
		Regions []entity.AWSRegion `json:"regions" yaml:"regions" toml:"regions"`
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, &file)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &file)
	case ".json":
		err = json.Unmarshal(data, &file)
	default:
		return nil, fmt.Errorf("unsupported regions file format: %s", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("error parsing regions file %s: %w", path, err)
	}
	return file.Regions, nil
}
