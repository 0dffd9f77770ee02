package app

import (
	"fmt"
	"strings"

	"observatory/app/histogram"
	"observatory/app/interfaces"
	"observatory/app/summary"
)

// overviewPrimaryMetric is highlighted on the landing page
const overviewPrimaryMetric = "total_calls"

// GetOverview fetches every call and returns the landing page KPIs and call
// volume histogram. A summary sent by the backend takes precedence over the
// figures computed from the rows.
func (a *App) GetOverview() (*Overview, error) {
	client, err := a.backendClient()
	if err != nil {
		return nil, err
	}
	ctx, cancel := a.requestContext()
	defer cancel()

	resp, err := client.GetCalls(ctx)
	if err != nil {
		a.Log("error", fmt.Sprintf("Failed to fetch calls: %v", err))
		return nil, fmt.Errorf("failed to fetch calls: %w", err)
	}

	sum := summary.Merge(resp.Summary, resp.Rows)
	hist, err := histogram.Build(ctx, resp.Rows, histogram.Options{Location: a.ingestLocation()})
	if err != nil {
		return nil, err
	}
	return &Overview{
		Summary:   sum,
		Cards:     summary.Cards(sum, overviewPrimaryMetric),
		Histogram: hist,
		Stories:   a.ListStories(),
	}, nil
}

// GetCallDetail fetches the full record of one call
func (a *App) GetCallDetail(callID string) (interfaces.Row, error) {
	callID = strings.TrimSpace(callID)
	if callID == "" {
		return nil, fmt.Errorf("call id is required")
	}
	client, err := a.backendClient()
	if err != nil {
		return nil, err
	}
	ctx, cancel := a.requestContext()
	defer cancel()

	row, err := client.GetCall(ctx, callID)
	if err != nil {
		a.Log("error", fmt.Sprintf("Failed to fetch call %s: %v", callID, err))
		return nil, fmt.Errorf("failed to fetch call %s: %w", callID, err)
	}
	return row, nil
}
