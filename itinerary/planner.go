package itinerary

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/schema"

	"github.com/tbxark/tripagent/structured"
	"github.com/tbxark/tripagent/types"
)

const (
	plansToolName = "plan_itinerary"
	plansToolDesc = "Produce a day by day travel itinerary."
)

// ToolBasedPlanner asks the model for day plans and renders them as markdown.
type ToolBasedPlanner struct {
	client *structured.Client
}

func NewToolBasedPlanner(client *structured.Client) *ToolBasedPlanner {
	return &ToolBasedPlanner{client: client}
}

func (p *ToolBasedPlanner) Plan(ctx context.Context, req *types.TravelRequest) (string, error) {
	if err := ValidateRequest(req); err != nil {
		return "", err
	}
	chain, err := structured.NewStructChain[*types.TravelRequest, Plans](
		p.client,
		buildPlanPrompt,
		plansToolName,
		plansToolDesc,
		func() Plans { return DefaultPlans(req.Destination) },
	)
	if err != nil {
		return "", err
	}
	chain.Agent = AgentName
	plans := chain.Invoke(ctx, req)
	if len(plans.Plans) == 0 {
		plans = DefaultPlans(req.Destination)
	}
	slog.Debug("itinerary planned", "destination", req.Destination, "days", len(plans.Plans))
	return Markdown(plans), nil
}

func buildPlanPrompt(ctx context.Context, req *types.TravelRequest) ([]*schema.Message, error) {
	requestJSON, err := sonic.MarshalString(req)
	if err != nil {
		return nil, fmt.Errorf("marshal travel request failed: %w", err)
	}
	systemPrompt := fmt.Sprintf(`You are a travel planner. Create a day by day itinerary for the travel request.

For each day give the location, the activities, short notes and details for morning, afternoon, evening, transport, dining, cost and weather.
Respect the pace, budget, companions and special requests when they are known. Fields that are empty are unknown: choose sensible defaults.
If the dates are unknown, plan a trip of three days.

Call the '%s' tool with the result.`, plansToolName)
	return []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(fmt.Sprintf("# Travel request JSON:\n```json\n%s\n```", requestJSON)),
	}, nil
}
