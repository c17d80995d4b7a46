package types

// Kind is the type tag of a TravelRequest field.
type Kind string

const (
	KindString Kind = "string"
	KindNumber Kind = "number"
	KindEnum   Kind = "enum"
	KindList   Kind = "list"
	KindBool   Kind = "bool"
)

type FieldInfo struct {
	Name        string `json:"name"`
	JSONPointer string `json:"json_pointer"`
	DisplayName string `json:"display_name"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
}

type Pace string

const (
	PaceUnknown  Pace = ""
	PaceRelaxed  Pace = "relaxed"
	PaceBalanced Pace = "balanced"
	PaceIntense  Pace = "intense"
)

type BudgetLevel string

const (
	BudgetUnknown BudgetLevel = ""
	BudgetLow     BudgetLevel = "low"
	BudgetMedium  BudgetLevel = "medium"
	BudgetHigh    BudgetLevel = "high"
)

type CompanionType string

const (
	CompanionUnknown  CompanionType = ""
	CompanionSolo     CompanionType = "solo"
	CompanionCouple   CompanionType = "couple"
	CompanionFamily   CompanionType = "family"
	CompanionFriends  CompanionType = "friends"
	CompanionBusiness CompanionType = "business"
)

var (
	PaceValues      = []string{string(PaceRelaxed), string(PaceBalanced), string(PaceIntense)}
	BudgetValues    = []string{string(BudgetLow), string(BudgetMedium), string(BudgetHigh)}
	CompanionValues = []string{
		string(CompanionSolo), string(CompanionCouple), string(CompanionFamily),
		string(CompanionFriends), string(CompanionBusiness),
	}
)

type Language string

const (
	LanguageZH Language = "zh"
	LanguageEN Language = "en"
)

// ParseLanguage maps config text to a Language, defaulting to Chinese.
func ParseLanguage(s string) Language {
	switch s {
	case "en", "en-US", "en_US", "english":
		return LanguageEN
	default:
		return LanguageZH
	}
}
