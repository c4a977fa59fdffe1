package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/pterm/pterm"

	"github.com/diillson/cloud-snitch-map/internal/domain/entity"
	"github.com/diillson/cloud-snitch-map/internal/domain/selection"
	"github.com/diillson/cloud-snitch-map/internal/shared/types"
)

// DefaultTop is how many principals and events are listed when --top is not set.
const DefaultTop = 10

// RunMap loads the reports, renders the map view for args and exports it when requested.
func (uc *MapUseCase) RunMap(ctx context.Context, args *types.CLIArgs) error {
	status := uc.console.Status("Listing reports...")

	var progress types.ProgressHandle
	snap, err := uc.LoadSnapshot(ctx, args, func(p LoadProgress) {
		if progress == nil {
			status.Stop()
			progress = uc.console.ProgressWithTotal(p.Status.Total)
		}
		progress.Increment()
	})
	if progress != nil {
		progress.Stop()
	} else {
		status.Stop()
	}
	if err != nil {
		return err
	}

	if !snap.Status.Done() {
		uc.console.LogWarning("Only %d of %d reports loaded; the map is incomplete", snap.Status.Loaded, snap.Status.Total)
	} else {
		uc.console.LogSuccess("Loaded %d reports", snap.Status.Loaded)
	}

	view, err := uc.BuildMapView(snap, MapViewRequest{
		Zoom:      args.Zoom,
		Filter:    args.Filter,
		Selection: args.Selection,
		Highlight: args.Highlight,
	})
	if err != nil {
		return err
	}

	if args.Selection != "" && view.Selection == "" {
		uc.console.LogWarning("Selection %q does not match anything and was cleared", args.Selection)
	}

	uc.renderMapView(view)
	uc.renderSelection(snap, view, topOrDefault(args.Top))
	uc.renderPrincipals(view, topOrDefault(args.Top))

	if view.Conflicts > 0 {
		uc.console.LogWarning("%d network records disagreed between reports; the last one loaded was kept", view.Conflicts)
	}

	uc.exportMapView(view, args)
	return nil
}

func topOrDefault(top int) int {
	if top <= 0 {
		return DefaultTop
	}
	return top
}

func (uc *MapUseCase) renderMapView(view entity.MapView) {
	table := uc.console.CreateTable()
	table.AddColumn("Marker")
	table.AddColumn("Type")
	table.AddColumn("Location")
	table.AddColumn("Count")
	table.AddColumn("Status")

	for _, m := range view.Markers {
		label := m.Label
		switch {
		case m.Selected:
			label = pterm.FgLightCyan.Sprint(label)
		case m.Emphasize:
			label = pterm.FgLightYellow.Sprint(label)
		case m.Fade:
			label = pterm.FgGray.Sprint(label)
		}
		table.AddRow(label, m.Type, m.Location.String(), m.Count, m.Status)
	}

	uc.console.Println(fmt.Sprintf("\nZoom %g (%d centroids), %d markers, %d events", view.Zoom, view.Centroids, len(view.Markers), view.EventCount))
	uc.console.Print(table.Render())

	if view.Focus != nil {
		uc.console.LogInfo("Focus: %s at zoom %g", view.Focus.Center.String(), view.Focus.Zoom)
	}
}

// renderSelection prints what is known about the current selection.
func (uc *MapUseCase) renderSelection(snap Snapshot, view entity.MapView, top int) {
	sel := selection.Parse(view.Selection)
	if sel == nil || snap.Report == nil {
		return
	}

	switch s := sel.(type) {
	case selection.Principal:
		p := snap.Report.Principals[s.ID]
		if p == nil {
			return
		}
		title := fmt.Sprintf("%s (%s)", p.ShortName(), p.Type.String())
		uc.console.DisplayEventBars(title, EventBars(p, top))

	case selection.Network:
		detail, err := NetworkDetail(snap.Report, s.CIDR)
		if err != nil {
			return
		}
		names := make([]string, 0, len(detail.Principals))
		for _, p := range detail.Principals {
			names = append(names, p.ShortName)
		}
		uc.console.LogInfo("%s (%s): %s", detail.CIDR, detail.Label, strings.Join(names, ", "))

	case selection.AWSRegion:
		ids := snap.Report.PrincipalsInRegion(s.ID)
		uc.console.LogInfo("%s: %d principals active", s.ID, len(ids))

	case selection.Cluster:
		for _, m := range view.Markers {
			if !m.Selected {
				continue
			}
			members := make([]string, 0, len(m.AWSRegionIDs)+len(m.NetworkCIDRs))
			members = append(members, m.AWSRegionIDs...)
			members = append(members, m.NetworkCIDRs...)
			uc.console.LogInfo("%s: %s", m.Label, strings.Join(members, ", "))
		}
	}
}

func (uc *MapUseCase) renderPrincipals(view entity.MapView, top int) {
	if len(view.Principals) == 0 {
		return
	}

	table := uc.console.CreateTable()
	table.AddColumn("Principal")
	table.AddColumn("Type")
	table.AddColumn("Events")
	table.AddColumn("Errors")
	table.AddColumn("Accounts")
	table.AddColumn("Regions")
	table.AddColumn("Selection")

	for i, p := range view.Principals {
		if i == top {
			break
		}
		table.AddRow(
			p.ShortName,
			p.Type,
			p.EventCount,
			p.ErrorCount,
			strings.Join(p.AccountIDs, "\n"),
			strings.Join(p.AWSRegionIDs, "\n"),
			selection.Stringify(selection.Principal{ID: p.ID}),
		)
	}

	uc.console.Print(table.Render())
	if len(view.Principals) > top {
		uc.console.LogInfo("%d more principals not shown (use --top)", len(view.Principals)-top)
	}
}

func (uc *MapUseCase) exportMapView(view entity.MapView, args *types.CLIArgs) {
	if args.ReportName == "" || len(args.ReportType) == 0 {
		return
	}

	for _, reportType := range args.ReportType {
		switch reportType {
		case "csv":
			csvPath, err := uc.exportRepo.ExportMapToCSV(view, args.ReportName, args.Dir)
			if err != nil {
				uc.console.LogError("Failed to export to CSV: %s", err)
			} else {
				uc.console.LogSuccess("Successfully exported to CSV: %s", csvPath)
			}
		case "json":
			jsonPath, err := uc.exportRepo.ExportMapToJSON(view, args.ReportName, args.Dir)
			if err != nil {
				uc.console.LogError("Failed to export to JSON: %s", err)
			} else {
				uc.console.LogSuccess("Successfully exported to JSON: %s", jsonPath)
			}
		case "pdf":
			pdfPath, err := uc.exportRepo.ExportMapToPDF(view, args.ReportName, args.Dir)
			if err != nil {
				uc.console.LogError("Failed to export to PDF: %s", err)
			} else {
				uc.console.LogSuccess("Successfully exported to PDF: %s", pdfPath)
			}
		default:
			uc.console.LogWarning("Unknown report type %q, expected csv, json or pdf", reportType)
		}
	}
}

// WhoAmI prints the AWS identity behind each profile. An empty profile list checks the default
// credential chain.
func (uc *MapUseCase) WhoAmI(ctx context.Context, profiles []string) ([]entity.CallerIdentity, error) {
	if len(profiles) == 0 {
		profiles = []string{""}
	}

	table := uc.console.CreateTable()
	table.AddColumn("Profile")
	table.AddColumn("Account")
	table.AddColumn("ARN")

	var identities []entity.CallerIdentity
	var failed int
	for _, profile := range profiles {
		id, err := uc.awsRepo.GetCallerIdentity(ctx, profile)
		if err != nil {
			failed++
			uc.console.LogError("Profile %s: %s", displayProfile(profile), err)
			continue
		}
		identities = append(identities, id)
		table.AddRow(displayProfile(profile), uc.anonymizer.Sanitize(id.AccountID), uc.anonymizer.Sanitize(id.ARN))
	}

	if len(identities) > 0 {
		uc.console.Print(table.Render())
	}
	if failed == len(profiles) {
		return nil, fmt.Errorf("no usable AWS credentials among %d profiles", len(profiles))
	}
	return identities, nil
}

// AWSProfiles lists the profiles found in the local AWS configuration.
func (uc *MapUseCase) AWSProfiles() []string {
	return uc.awsRepo.GetAWSProfiles()
}

func displayProfile(profile string) string {
	if profile == "" {
		return "(default)"
	}
	return profile
}
