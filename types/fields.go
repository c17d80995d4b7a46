package types

import (
	"errors"
	"fmt"
	"slices"
)

const (
	FieldDestination         = "destination"
	FieldStartDate           = "start_date"
	FieldEndDate             = "end_date"
	FieldActivityPreferences = "activity_preferences"
	FieldPace                = "pace"
	FieldSceneryPreference   = "scenery_preference"
	FieldBudgetLevel         = "budget_level"
	FieldMaxBudget           = "max_budget"
	FieldCompanionType       = "companion_type"
	FieldCompanionNotes      = "companion_notes"
	FieldSpecialRequests     = "special_requests"
	FieldConfirmed           = "confirmed"
)

var (
	ErrUnknownField = errors.New("unknown field")
	ErrInvalidValue = errors.New("invalid field value")
)

// FieldPriority is the order in which missing fields are asked about.
var FieldPriority = []string{
	FieldDestination,
	FieldStartDate,
	FieldEndDate,
	FieldActivityPreferences,
	FieldPace,
	FieldSceneryPreference,
	FieldBudgetLevel,
	FieldMaxBudget,
	FieldCompanionType,
	FieldCompanionNotes,
	FieldSpecialRequests,
}

// Field is one row of the request field table.
type Field struct {
	FieldInfo
	Kind    Kind
	Enum    []string
	Default any

	get   func(r *TravelRequest) any
	set   func(r *TravelRequest, v any) error
	isSet func(r *TravelRequest) bool
}

var (
	fieldTable []*Field
	fieldIndex map[string]*Field
)

func init() {
	fieldTable = []*Field{
		stringField(FieldDestination, "目的地", "Where the user wants to go", true,
			func(r *TravelRequest) *string { return &r.Destination }),
		stringField(FieldStartDate, "出发日期", "Trip start date", true,
			func(r *TravelRequest) *string { return &r.StartDate }),
		stringField(FieldEndDate, "结束日期", "Trip end date", true,
			func(r *TravelRequest) *string { return &r.EndDate }),
		listField(FieldActivityPreferences, "活动偏好", "Activities the user enjoys",
			func(r *TravelRequest) *[]string { return &r.ActivityPreferences }),
		enumField(FieldPace, "旅行节奏", "relaxed, balanced or intense", PaceValues,
			func(r *TravelRequest) string { return string(r.Pace) },
			func(r *TravelRequest, s string) { r.Pace = Pace(s) }),
		stringField(FieldSceneryPreference, "风景偏好", "Preferred scenery", false,
			func(r *TravelRequest) *string { return &r.SceneryPreference }),
		enumField(FieldBudgetLevel, "预算水平", "low, medium or high", BudgetValues,
			func(r *TravelRequest) string { return string(r.BudgetLevel) },
			func(r *TravelRequest, s string) { r.BudgetLevel = BudgetLevel(s) }),
		{
			FieldInfo: info(FieldMaxBudget, "最高预算", "Maximum total budget", false),
			Kind:      KindNumber,
			get:       func(r *TravelRequest) any { return *r.MaxBudget },
			isSet:     func(r *TravelRequest) bool { return r.MaxBudget != nil },
			set: func(r *TravelRequest, v any) error {
				f, err := asNumber(v)
				if err != nil {
					return err
				}
				r.MaxBudget = &f
				return nil
			},
		},
		enumField(FieldCompanionType, "同行类型", "solo, couple, family, friends or business", CompanionValues,
			func(r *TravelRequest) string { return string(r.CompanionType) },
			func(r *TravelRequest, s string) { r.CompanionType = CompanionType(s) }),
		stringField(FieldCompanionNotes, "同行备注", "Notes about companions", false,
			func(r *TravelRequest) *string { return &r.CompanionNotes }),
		listField(FieldSpecialRequests, "特殊要求", "Special requests",
			func(r *TravelRequest) *[]string { return &r.SpecialRequests }),
		{
			FieldInfo: info(FieldConfirmed, "已确认", "All required fields are known", false),
			Kind:      KindBool,
			Default:   false,
			get:       func(r *TravelRequest) any { return r.Confirmed },
			isSet:     func(r *TravelRequest) bool { return r.Confirmed },
			set: func(r *TravelRequest, v any) error {
				b, ok := v.(bool)
				if !ok {
					return fmt.Errorf("%w: want bool, got %T", ErrInvalidValue, v)
				}
				r.Confirmed = b
				return nil
			},
		},
	}
	fieldIndex = make(map[string]*Field, len(fieldTable))
	for _, f := range fieldTable {
		fieldIndex[f.Name] = f
	}
}

func info(name, display, desc string, required bool) FieldInfo {
	return FieldInfo{
		Name:        name,
		JSONPointer: "/" + name,
		DisplayName: display,
		Description: desc,
		Required:    required,
	}
}

func stringField(name, display, desc string, required bool, ref func(r *TravelRequest) *string) *Field {
	return &Field{
		FieldInfo: info(name, display, desc, required),
		Kind:      KindString,
		Default:   "",
		get:       func(r *TravelRequest) any { return *ref(r) },
		isSet:     func(r *TravelRequest) bool { return *ref(r) != "" },
		set: func(r *TravelRequest, v any) error {
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("%w: want string, got %T", ErrInvalidValue, v)
			}
			*ref(r) = s
			return nil
		},
	}
}

func listField(name, display, desc string, ref func(r *TravelRequest) *[]string) *Field {
	return &Field{
		FieldInfo: info(name, display, desc, false),
		Kind:      KindList,
		get:       func(r *TravelRequest) any { return slices.Clone(*ref(r)) },
		isSet:     func(r *TravelRequest) bool { return len(*ref(r)) > 0 },
		set: func(r *TravelRequest, v any) error {
			list, err := asStringList(v)
			if err != nil {
				return err
			}
			*ref(r) = list
			return nil
		},
	}
}

func enumField(name, display, desc string, values []string, get func(r *TravelRequest) string, set func(r *TravelRequest, s string)) *Field {
	return &Field{
		FieldInfo: info(name, display, desc, false),
		Kind:      KindEnum,
		Enum:      values,
		Default:   "",
		get:       func(r *TravelRequest) any { return get(r) },
		isSet:     func(r *TravelRequest) bool { return get(r) != "" },
		set: func(r *TravelRequest, v any) error {
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("%w: want string, got %T", ErrInvalidValue, v)
			}
			if s != "" && !slices.Contains(values, s) {
				return fmt.Errorf("%w: %q is not one of %v", ErrInvalidValue, s, values)
			}
			set(r, s)
			return nil
		},
	}
}

// Fields returns the field table in priority order, followed by confirmed.
func Fields() []*Field {
	return fieldTable
}

func LookupField(name string) (*Field, bool) {
	f, ok := fieldIndex[name]
	return f, ok
}

// DefaultValue is the unknown value of a field.
func DefaultValue(name string) (any, error) {
	f, ok := fieldIndex[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	return f.Default, nil
}

func IsSet(r *TravelRequest, name string) bool {
	f, ok := fieldIndex[name]
	if !ok {
		return false
	}
	return f.isSet(r)
}

// MissingRequired lists the required fields that are still unknown.
func MissingRequired(r *TravelRequest) []FieldInfo {
	var out []FieldInfo
	for _, name := range FieldPriority {
		f := fieldIndex[name]
		if f.Required && !f.isSet(r) {
			out = append(out, f.FieldInfo)
		}
	}
	return out
}

// Missing lists every unknown field in priority order.
func Missing(r *TravelRequest) []FieldInfo {
	var out []FieldInfo
	for _, name := range FieldPriority {
		f := fieldIndex[name]
		if !f.isSet(r) {
			out = append(out, f.FieldInfo)
		}
	}
	return out
}

func asNumber(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("%w: want number, got %T", ErrInvalidValue, v)
	}
}

func asStringList(v any) ([]string, error) {
	switch list := v.(type) {
	case []string:
		if len(list) == 0 {
			return nil, nil
		}
		return slices.Clone(list), nil
	case []any:
		if len(list) == 0 {
			return nil, nil
		}
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: want string item, got %T", ErrInvalidValue, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: want list, got %T", ErrInvalidValue, v)
	}
}
