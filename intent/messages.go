package intent

import "github.com/tbxark/tripagent/types"

// DeclineMessage is the fixed reply to conversation without travel intent.
func DeclineMessage(lang types.Language) string {
	if lang == types.LanguageEN {
		return "I'm focused on travel tasks right now, like planning itineraries and recommending sights. If you need help, tell me about your travel plans!"
	}
	return "目前我专注于旅行相关的任务，例如安排行程、推荐景点等。如果您需要帮助，请告诉我有关您的旅行计划～"
}

func ConfirmMessage(lang types.Language) string {
	if lang == types.LanguageEN {
		return "Great, I have everything I need about your trip. Planning your itinerary now."
	}
	return "太好了，我已经获取了您的全部旅行需求，即将为您规划行程。"
}
