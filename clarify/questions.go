package clarify

import (
	"fmt"
	"strings"

	"github.com/tbxark/tripagent/types"
)

var zhQuestions = map[string]string{
	types.FieldDestination:         "您想去哪个目的地旅行？",
	types.FieldStartDate:           "您计划什么时候出发？",
	types.FieldEndDate:             "您计划旅行到什么时候结束？",
	types.FieldActivityPreferences: "您在旅行中有什么特别喜欢的活动吗？例如徒步、温泉、博物馆参观等。",
	types.FieldPace:                "您希望旅行的节奏是怎样的？轻松悠闲(relaxed)、均衡(balanced)还是紧凑充实(intense)？",
	types.FieldSceneryPreference:   "您有什么特别喜欢的风景类型吗？比如海滩、山脉、城市景观等。",
	types.FieldBudgetLevel:         "您的预算水平是低(low)、中(medium)还是高(high)？",
	types.FieldMaxBudget:           "您的最大预算是多少？请提供一个具体的金额。",
	types.FieldCompanionType:       "您是独自旅行(solo)、情侣出游(couple)、家庭旅行(family)、朋友出行(friends)还是商务旅行(business)？",
	types.FieldCompanionNotes:      "关于您的同行人，有什么需要特别注意的吗？例如老人、儿童或有特殊需求的同伴。",
	types.FieldSpecialRequests:     "您有什么特别的要求或偏好吗？例如素食餐厅推荐、无障碍设施需求等。",
}

var enQuestions = map[string]string{
	types.FieldDestination:         "Where would you like to travel?",
	types.FieldStartDate:           "When do you plan to leave?",
	types.FieldEndDate:             "When does your trip end?",
	types.FieldActivityPreferences: "Are there activities you especially enjoy when traveling? For example hiking, hot springs or museums.",
	types.FieldPace:                "What pace do you prefer: relaxed, balanced or intense?",
	types.FieldSceneryPreference:   "Is there a kind of scenery you love, like beaches, mountains or city views?",
	types.FieldBudgetLevel:         "Is your budget low, medium or high?",
	types.FieldMaxBudget:           "What is your maximum budget? Please give a specific amount.",
	types.FieldCompanionType:       "Are you traveling solo, as a couple, with family, with friends or on business?",
	types.FieldCompanionNotes:      "Anything to keep in mind about your companions, such as elderly travelers, children or special needs?",
	types.FieldSpecialRequests:     "Do you have any special requests, like vegetarian restaurants or accessibility needs?",
}

// Question returns the canned question for a field.
func Question(lang types.Language, field string) string {
	table := zhQuestions
	if lang == types.LanguageEN {
		table = enQuestions
	}
	if q, ok := table[field]; ok {
		return q
	}
	if lang == types.LanguageEN {
		return fmt.Sprintf("Could you tell me more about %s?", field)
	}
	return fmt.Sprintf("能再告诉我一些关于%s的信息吗？", field)
}

// FollowUp is the generic request for more details, listing the missing required fields.
func FollowUp(lang types.Language, missing []types.FieldInfo) string {
	var sb strings.Builder
	if lang == types.LanguageEN {
		sb.WriteString("Please tell me more about your travel plans.")
	} else {
		sb.WriteString("请告诉我更多关于您旅行计划的信息。")
	}
	for _, f := range missing {
		sb.WriteString("\n- ")
		if lang == types.LanguageEN {
			sb.WriteString(strings.ReplaceAll(f.Name, "_", " "))
		} else {
			sb.WriteString(f.DisplayName)
		}
	}
	return sb.String()
}
