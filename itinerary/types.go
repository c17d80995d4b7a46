package itinerary

import (
	"context"
	"errors"

	"github.com/tbxark/tripagent/types"
)

const AgentName = "itinerary_agent"

var ErrNoDestination = errors.New("travel request has no destination")

// Planner turns a travel request into a display string.
type Planner interface {
	Plan(ctx context.Context, req *types.TravelRequest) (string, error)
}

type Details struct {
	Morning   string `json:"morning,omitempty"`
	Afternoon string `json:"afternoon,omitempty"`
	Evening   string `json:"evening,omitempty"`
	Transport string `json:"transport,omitempty"`
	Dining    string `json:"dining,omitempty"`
	Cost      string `json:"cost,omitempty"`
	Weather   string `json:"weather,omitempty"`
}

type DayPlan struct {
	Day        int      `json:"day" jsonschema_description:"Day number starting at 1"`
	Location   string   `json:"location" jsonschema_description:"City or area visited that day"`
	Activities []string `json:"activities"`
	Notes      string   `json:"notes,omitempty"`
	Details    Details  `json:"details,omitempty"`
}

type Plans struct {
	Plans []DayPlan `json:"plans"`
}

// DefaultPlans is the one-day plan used when generation fails.
func DefaultPlans(destination string) Plans {
	return Plans{Plans: []DayPlan{{
		Day:        1,
		Location:   destination,
		Activities: []string{"City exploration"},
		Notes:      "Basic sightseeing tour",
		Details: Details{
			Morning:   "Visit main attractions",
			Afternoon: "Local cuisine experience",
			Evening:   "Rest at accommodation",
			Transport: "Public transportation",
			Dining:    "Local restaurants",
			Cost:      "Medium",
			Weather:   "Check local forecast",
		},
	}}}
}

func ValidateRequest(req *types.TravelRequest) error {
	if req == nil || req.Destination == "" {
		return ErrNoDestination
	}
	return nil
}
