package intent

import (
	"strings"

	"github.com/tbxark/tripagent/types"
)

type keywordSet[T ~string] struct {
	value    T
	keywords []string
}

// Order matters: earlier sets win when several match. Negated phrases come first so
// "预算不高" is low, and the bare word "budget" is only a last resort.
var budgetKeywords = []keywordSet[types.BudgetLevel]{
	{types.BudgetLow, []string{"不高", "不贵", "别太贵", "不要太贵", "not expensive", "not too expensive", "not high"}},
	{types.BudgetHigh, []string{"高", "豪华", "奢侈", "高端", "high", "luxury", "luxurious", "expensive", "premium"}},
	{types.BudgetMedium, []string{"中", "适中", "标准", "一般", "medium", "moderate", "standard", "mid"}},
	{types.BudgetLow, []string{"低", "便宜", "经济", "省", "穷游", "low", "cheap", "economical", "affordable", "budget"}},
}

var paceKeywords = []keywordSet[types.Pace]{
	{types.PaceRelaxed, []string{"轻松", "悠闲", "休闲", "慢", "relaxed", "relax", "slow", "easy", "leisurely"}},
	{types.PaceIntense, []string{"紧凑", "充实", "特种兵", "intense", "packed", "busy", "fast"}},
	{types.PaceBalanced, []string{"均衡", "适中", "balanced", "moderate", "normal"}},
}

var companionKeywords = []keywordSet[types.CompanionType]{
	{types.CompanionBusiness, []string{"商务", "出差", "business", "work"}},
	{types.CompanionFamily, []string{"家庭", "家人", "亲子", "孩子", "父母", "family", "kids", "parents"}},
	{types.CompanionCouple, []string{"情侣", "夫妻", "蜜月", "对象", "couple", "honeymoon", "partner", "wife", "husband"}},
	{types.CompanionFriends, []string{"朋友", "同学", "闺蜜", "friends", "friend", "buddies"}},
	{types.CompanionSolo, []string{"独自", "一个人", "自己", "单人", "solo", "alone", "myself"}},
}

func matchKeywords[T ~string](text string, sets []keywordSet[T]) T {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return ""
	}
	for _, set := range sets {
		if string(set.value) == normalized {
			return set.value
		}
	}
	for _, set := range sets {
		for _, keyword := range set.keywords {
			if strings.Contains(normalized, keyword) {
				return set.value
			}
		}
	}
	return ""
}

// MapBudget maps a free-text budget description to a budget level. Unmatched text is unknown.
func MapBudget(text string) types.BudgetLevel {
	return matchKeywords(text, budgetKeywords)
}

func MapPace(text string) types.Pace {
	return matchKeywords(text, paceKeywords)
}

func MapCompanion(text string) types.CompanionType {
	return matchKeywords(text, companionKeywords)
}
