package intent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/tbxark/tripagent/patch"
	"github.com/tbxark/tripagent/progress"
	"github.com/tbxark/tripagent/structured"
	"github.com/tbxark/tripagent/types"
)

const AgentName = "intent_agent"

type extraction struct {
	Destination string      `json:"destination"`
	StartDate   string      `json:"start_date"`
	EndDate     string      `json:"end_date"`
	Preferences preferences `json:"preferences"`
}

type preferences struct {
	Activities      []string `json:"activities"`
	Budget          string   `json:"budget"`
	Pace            string   `json:"pace"`
	Scenery         string   `json:"scenery"`
	MaxBudget       float64  `json:"max_budget"`
	CompanionType   string   `json:"companion_type"`
	CompanionNotes  string   `json:"companion_notes"`
	SpecialRequests []string `json:"special_requests"`
}

var extractionSchema = structured.NewSchema(
	"extract_travel_request",
	"Record the travel request found in the user's messages. Leave every field empty when there is no travel intent.",
	&structured.Field{Name: "destination", Kind: structured.String, Required: true, Description: "Destination city or region, empty if unknown"},
	&structured.Field{Name: "start_date", Kind: structured.String, Required: true, Description: "Start date as the user said it, empty if unknown"},
	&structured.Field{Name: "end_date", Kind: structured.String, Required: true, Description: "End date as the user said it, empty if unknown"},
	&structured.Field{Name: "preferences", Kind: structured.Object, Description: "What the user likes", Fields: []*structured.Field{
		{Name: "activities", Kind: structured.List, Description: "Activities the user mentioned"},
		{Name: "budget", Kind: structured.String, Description: "Budget description in the user's words"},
		{Name: "pace", Kind: structured.String, Description: "Travel pace in the user's words"},
		{Name: "scenery", Kind: structured.String, Description: "Preferred scenery"},
		{Name: "max_budget", Kind: structured.Number, Description: "Maximum budget amount, 0 if unknown"},
		{Name: "companion_type", Kind: structured.String, Description: "Who the user travels with"},
		{Name: "companion_notes", Kind: structured.String, Description: "Notes about companions"},
		{Name: "special_requests", Kind: structured.List, Description: "Special requests"},
	}},
)

func emptyExtraction() extraction {
	return extraction{}
}

func (e extraction) toRequest() types.TravelRequest {
	req := types.TravelRequest{
		Destination:         strings.TrimSpace(e.Destination),
		StartDate:           strings.TrimSpace(e.StartDate),
		EndDate:             strings.TrimSpace(e.EndDate),
		ActivityPreferences: nonEmpty(e.Preferences.Activities),
		Pace:                MapPace(e.Preferences.Pace),
		SceneryPreference:   strings.TrimSpace(e.Preferences.Scenery),
		BudgetLevel:         MapBudget(e.Preferences.Budget),
		CompanionType:       MapCompanion(e.Preferences.CompanionType),
		CompanionNotes:      strings.TrimSpace(e.Preferences.CompanionNotes),
		SpecialRequests:     nonEmpty(e.Preferences.SpecialRequests),
	}
	if e.Preferences.MaxBudget > 0 {
		v := e.Preferences.MaxBudget
		req.MaxBudget = &v
	}
	return req
}

func nonEmpty(items []string) []string {
	var out []string
	for _, item := range items {
		if s := strings.TrimSpace(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ToolBasedResolver extracts the request with one structured generation call per turn.
type ToolBasedResolver struct {
	client   *structured.Client
	reporter progress.Reporter
	language types.Language
	now      func() time.Time
}

func NewToolBasedResolver(client *structured.Client, reporter progress.Reporter, language types.Language) *ToolBasedResolver {
	return &ToolBasedResolver{
		client:   client,
		reporter: progress.OrNop(reporter),
		language: language,
		now:      time.Now,
	}
}

func (r *ToolBasedResolver) Resolve(ctx context.Context, in *Input) *Result {
	messages := buildExtractionPrompt(in, r.now())
	extracted := structured.Invoke(ctx, r.client, structured.Request{
		Agent:    AgentName,
		Messages: messages,
		Schema:   extractionSchema,
	}, emptyExtraction).toRequest()

	merged, err := patch.MergeRequest(in.Current, extracted)
	if err != nil {
		slog.Error("merge extracted request failed", "error", err)
		merged = in.Current.Clone()
	}

	if merged.Destination == "" && !merged.HasPreferences() {
		slog.Info("no travel intent detected", "model", in.Model)
		r.reporter.Report(AgentName, "no travel intent")
		return &Result{
			NoTravelIntent: true,
			Request:        in.Current,
			Message:        DeclineMessage(r.language),
		}
	}

	result := &Result{
		Request: merged,
		Missing: types.MissingRequired(&merged),
	}
	if result.Request.Confirm() {
		result.Message = ConfirmMessage(r.language)
		r.reporter.Report(AgentName, "request complete")
	} else {
		r.reporter.Report(AgentName, fmt.Sprintf("missing %d required fields", len(result.Missing)))
	}
	slog.Debug("intent resolved",
		"destination", merged.Destination, "missing", len(result.Missing), "model", in.Model)
	return result
}

func buildExtractionPrompt(in *Input, now time.Time) []*schema.Message {
	systemPrompt := fmt.Sprintf(`You are the intent analyst of a travel planning assistant.

Read every user message below and decide whether the user wants help with a trip.

If there is travel intent, extract what the user said:
- destination: the place to visit
- start_date and end_date: keep the user's wording; when the user gives a duration such as "3 days" together with a start date, compute the end date; never invent dates that were not implied
- preferences: activities, budget, pace, scenery, max_budget, companion_type, companion_notes, special_requests

Later messages override earlier ones. Leave a field empty when the user has not mentioned it, or said they do not know.
If the conversation is unrelated to travel, return every field empty.

Call the '%s' tool with the result.`, extractionSchema.Name)

	stateSchema, err := types.TravelRequestSchema()
	if err != nil {
		slog.Warn("render travel request schema failed", "error", err)
	}
	userPrompt := types.FormatPromptContext(&types.PromptContext{
		Now:         now,
		Current:     &in.Current,
		UserTurns:   in.UserTurns,
		Missing:     types.MissingRequired(&in.Current),
		StateSchema: stateSchema,
	})
	return []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(userPrompt),
	}
}
