package types

import (
	"slices"
)

// TravelRequest is the accumulating record of a user's trip. The zero value of every
// field means unknown.
type TravelRequest struct {
	Destination         string        `json:"destination,omitempty" jsonschema:"description=Travel destination city or region"`
	StartDate           string        `json:"start_date,omitempty" jsonschema:"description=Departure date as the user said it"`
	EndDate             string        `json:"end_date,omitempty" jsonschema:"description=Return date as the user said it"`
	ActivityPreferences []string      `json:"activity_preferences,omitempty" jsonschema:"description=Preferred activities"`
	Pace                Pace          `json:"pace,omitempty" jsonschema:"enum=relaxed,enum=balanced,enum=intense"`
	SceneryPreference   string        `json:"scenery_preference,omitempty" jsonschema:"description=Preferred scenery"`
	BudgetLevel         BudgetLevel   `json:"budget_level,omitempty" jsonschema:"enum=low,enum=medium,enum=high"`
	MaxBudget           *float64      `json:"max_budget,omitempty" jsonschema:"description=Maximum total budget"`
	CompanionType       CompanionType `json:"companion_type,omitempty" jsonschema:"enum=solo,enum=couple,enum=family,enum=friends,enum=business"`
	CompanionNotes      string        `json:"companion_notes,omitempty" jsonschema:"description=Notes about travel companions"`
	SpecialRequests     []string      `json:"special_requests,omitempty" jsonschema:"description=Special requests"`
	Confirmed           bool          `json:"confirmed,omitempty"`
}

// Confirm marks the request confirmed when no required field is missing.
func (r *TravelRequest) Confirm() bool {
	if len(MissingRequired(r)) > 0 {
		r.Confirmed = false
		return false
	}
	r.Confirmed = true
	return true
}

// HasPreferences reports whether any preference field is known.
func (r *TravelRequest) HasPreferences() bool {
	for _, name := range FieldPriority {
		if name == FieldDestination || name == FieldStartDate || name == FieldEndDate {
			continue
		}
		if IsSet(r, name) {
			return true
		}
	}
	return false
}

// IsEmpty reports whether nothing about the trip is known yet.
func (r *TravelRequest) IsEmpty() bool {
	return r.Destination == "" && r.StartDate == "" && r.EndDate == "" && !r.HasPreferences()
}

func (r TravelRequest) Clone() TravelRequest {
	out := r
	out.ActivityPreferences = slices.Clone(r.ActivityPreferences)
	out.SpecialRequests = slices.Clone(r.SpecialRequests)
	if r.MaxBudget != nil {
		v := *r.MaxBudget
		out.MaxBudget = &v
	}
	return out
}

// EstimateHours gives a rough day length, two hours per activity.
func EstimateHours(activities []string) int {
	return len(activities) * 2
}
