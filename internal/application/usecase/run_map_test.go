package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diillson/cloud-snitch-map/internal/domain/entity"
	"github.com/diillson/cloud-snitch-map/internal/domain/report"
	"github.com/diillson/cloud-snitch-map/internal/shared/types"
)

func TestRunMap(t *testing.T) {
	f := newFixture()
	args := &types.CLIArgs{
		Reports:    "reports.json",
		Zoom:       20,
		Selection:  "principal:root",
		Top:        1,
		ReportName: "map",
		ReportType: []string{"csv", "json", "pdf", "xml"},
		Dir:        t.TempDir(),
	}

	require.NoError(t, f.uc.RunMap(context.Background(), args))

	assert.Equal(t, 2, f.console.progress)
	assert.Contains(t, f.console.infos, "Loaded 2 reports")
	assert.Contains(t, f.console.infos, "1 more principals not shown (use --top)")

	assert.Equal(t, []string{"csv:map", "json:map", "pdf:map"}, f.exports.calls)
	for _, view := range f.exports.views {
		assert.Equal(t, "principal:root", view.Selection)
	}
	assert.Contains(t, f.console.warnings, `Unknown report type "xml", expected csv, json or pdf`)

	require.Contains(t, f.console.bars, "root (AWS Account)")
	assert.Len(t, f.console.bars["root (AWS Account)"], 1)

	require.Len(t, f.console.tables, 2)
	assert.Len(t, f.console.tables[0].rows, 4)
	assert.Equal(t, []string{"Principal", "Type", "Events", "Errors", "Accounts", "Regions", "Selection"}, f.console.tables[1].columns)
	require.Len(t, f.console.tables[1].rows, 1)
	assert.Equal(t, "principal:root", f.console.tables[1].rows[0][6])
}

func TestRunMap_WarnsAboutClearedSelectionAndPartialLoad(t *testing.T) {
	f := newFixture()
	f.reports.errs["r2"] = types.ErrUnsupportedLocation

	err := f.uc.RunMap(context.Background(), &types.CLIArgs{Reports: "reports.json", Zoom: 1, Selection: "principal:nobody"})
	require.NoError(t, err)

	assert.Contains(t, f.console.warnings, "Only 1 of 2 reports loaded; the map is incomplete")
	// an incomplete load keeps unknown principals, they may still appear
	assert.NotContains(t, f.console.warnings, `Selection "principal:nobody" does not match anything and was cleared`)
	assert.Empty(t, f.exports.calls)
}

func TestRunMap_ClearedSelection(t *testing.T) {
	f := newFixture()

	err := f.uc.RunMap(context.Background(), &types.CLIArgs{Reports: "reports.json", Zoom: 1, Selection: "network:10.0.0.0/8"})
	require.NoError(t, err)
	assert.Contains(t, f.console.warnings, `Selection "network:10.0.0.0/8" does not match anything and was cleared`)
}

func TestRunMap_Errors(t *testing.T) {
	f := newFixture()

	err := f.uc.RunMap(context.Background(), &types.CLIArgs{})
	assert.ErrorIs(t, err, types.ErrNoReportSource)

	err = f.uc.RunMap(context.Background(), &types.CLIArgs{Reports: "reports.json", Zoom: -2})
	assert.ErrorIs(t, err, types.ErrInvalidZoom)
}

func TestWhoAmI(t *testing.T) {
	f := newFixture()
	f.uc.awsRepo = &fakeAWS{identities: map[string]entity.CallerIdentity{
		"dev": {Profile: "dev", AccountID: "123456789012", ARN: "arn:aws:iam::123456789012:user/dev"},
	}}

	ids, err := f.uc.WhoAmI(context.Background(), []string{"dev", "broken"})
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Equal(t, "dev", ids[0].Profile)
	require.Len(t, f.console.errors, 1)
	assert.Contains(t, f.console.errors[0], "Profile broken")

	require.Len(t, f.console.tables, 1)
	assert.Equal(t, []interface{}{"dev", "123456789012", "arn:aws:iam::123456789012:user/dev"}, f.console.tables[0].rows[0])
}

func TestWhoAmI_Anonymized(t *testing.T) {
	f := newFixture()
	f.uc.anonymizer = report.NewAnonymizer(true)
	f.uc.awsRepo = &fakeAWS{identities: map[string]entity.CallerIdentity{
		"": {AccountID: "123456789012", ARN: "arn:aws:iam::123456789012:root"},
	}}

	_, err := f.uc.WhoAmI(context.Background(), nil)
	require.NoError(t, err)

	row := f.console.tables[0].rows[0]
	assert.Equal(t, "(default)", row[0])
	assert.NotEqual(t, "123456789012", row[1])
	assert.Equal(t, "arn:aws:iam::"+row[1].(string)+":root", row[2])
}

func TestWhoAmI_NoCredentials(t *testing.T) {
	f := newFixture()

	_, err := f.uc.WhoAmI(context.Background(), []string{"a", "b"})
	assert.EqualError(t, err, "no usable AWS credentials among 2 profiles")
	assert.Len(t, f.console.errors, 2)
}
