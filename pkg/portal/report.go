package portal

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// reportPageSize fetches everything in one page; reports are not paginated.
const reportPageSize = 1000

// ApplicationReportRow is one application with its exam sittings attached.
type ApplicationReportRow struct {
	Application
	OLevelResults []OLevelResult
}

// ApplicationsReport fetches all applications (optionally filtered by
// status) together with all O-level results, and joins results to their
// application. The backend returns the relation either as an embedded
// object or an IRI string, so the join matches both.
func (c *Client) ApplicationsReport(ctx context.Context, statusFilter string) ([]ApplicationReportRow, error) {
	opts := ListOptions{ItemsPerPage: reportPageSize}
	if statusFilter != "" {
		if !ValidApplicationStatus(statusFilter) {
			return nil, fmt.Errorf("unknown application status %q (valid: %s)",
				statusFilter, strings.Join(ApplicationStatuses, ", "))
		}
		opts.Filters = url.Values{"status": []string{statusFilter}}
	}

	applications, _, err := c.Applications.List(ctx, opts)
	if err != nil {
		return nil, err
	}

	results, _, err := c.OLevelResults.List(ctx, ListOptions{ItemsPerPage: reportPageSize})
	if err != nil {
		return nil, err
	}

	rows := make([]ApplicationReportRow, 0, len(applications))
	for _, app := range applications {
		row := ApplicationReportRow{Application: app}
		for _, result := range results {
			if result.Application.Matches("applications", app.ID) {
				row.OLevelResults = append(row.OLevelResults, result)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// StatusSummary counts report rows per application status.
func StatusSummary(rows []ApplicationReportRow) map[string]int {
	summary := make(map[string]int)
	for _, row := range rows {
		summary[row.Status]++
	}
	return summary
}
