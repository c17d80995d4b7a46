package itinerary

import (
	"context"
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"

	"github.com/tbxark/tripagent/types"
)

// Markdown renders day plans.
func Markdown(p Plans) string {
	var sb strings.Builder
	sb.WriteString("# Travel Itinerary\n\n")
	for _, plan := range p.Plans {
		fmt.Fprintf(&sb, "## Day %d: %s\n", plan.Day, plan.Location)
		fmt.Fprintf(&sb, "**Activities:** %s\n\n", strings.Join(plan.Activities, ", "))
		if plan.Notes != "" {
			fmt.Fprintf(&sb, "**Notes:** %s\n\n", plan.Notes)
		}
		details := []struct{ key, value string }{
			{"Morning", plan.Details.Morning},
			{"Afternoon", plan.Details.Afternoon},
			{"Evening", plan.Details.Evening},
			{"Transport", plan.Details.Transport},
			{"Dining", plan.Details.Dining},
			{"Cost", plan.Details.Cost},
			{"Weather", plan.Details.Weather},
		}
		var lines []string
		for _, d := range details {
			if d.value != "" {
				lines = append(lines, fmt.Sprintf("- **%s:** %s\n", d.key, d.value))
			}
		}
		if len(lines) > 0 {
			sb.WriteString("### Details:\n")
			for _, line := range lines {
				sb.WriteString(line)
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// SummaryPlanner renders the known request without calling a model.
type SummaryPlanner struct{}

func (SummaryPlanner) Plan(ctx context.Context, req *types.TravelRequest) (string, error) {
	return Summary(req), nil
}

func Summary(req *types.TravelRequest) string {
	var sb strings.Builder
	title := req.Destination
	if title == "" {
		title = "?"
	}
	fmt.Fprintf(&sb, "# Travel Plan: %s\n\n", title)

	table := tablewriter.NewTable(&sb, tablewriter.WithRenderer(renderer.NewMarkdown()))
	table.Header("Field", "Value")
	known := req.ToMap()
	for _, f := range types.Fields() {
		if f.Name == types.FieldConfirmed {
			continue
		}
		value := "-"
		if types.IsSet(req, f.Name) {
			value = formatValue(known[f.Name])
		}
		_ = table.Append(f.DisplayName, value)
	}
	_ = table.Render()

	if hours := types.EstimateHours(req.ActivityPreferences); hours > 0 {
		fmt.Fprintf(&sb, "\nEstimated activity time per day: %d hours\n", hours)
	}
	if !req.Confirmed {
		missing := types.MissingRequired(req)
		names := make([]string, 0, len(missing))
		for _, m := range missing {
			names = append(names, m.DisplayName)
		}
		if len(names) > 0 {
			fmt.Fprintf(&sb, "\n> Planned with partial information, unknown: %s\n", strings.Join(names, ", "))
		}
	}
	return sb.String()
}

func formatValue(v any) string {
	switch val := v.(type) {
	case []string:
		return strings.Join(val, ", ")
	case float64:
		return fmt.Sprintf("%.0f", val)
	default:
		return fmt.Sprint(val)
	}
}
