package reply

import (
	"github.com/paragraphhotels/messenger-bot-go/internal/classify"
	"github.com/paragraphhotels/messenger-bot-go/internal/messenger"
)

// LanguageOptions returns the two language-choice quick replies.
// Labels are fixed: each names its own language.
func LanguageOptions() []messenger.QuickReply {
	return []messenger.QuickReply{
		{Label: "English", Action: messenger.ActionLangEN},
		{Label: "ქართული", Action: messenger.ActionLangKA},
	}
}

// MenuOptions returns the three topic quick replies, localized.
func MenuOptions(lang classify.Language) []messenger.QuickReply {
	if lang == classify.LanguageGeorgian {
		return []messenger.QuickReply{
			{Label: "ოთახის რეზერვაცია", Action: messenger.ActionLodging},
			{Label: "სპას რეზერვაცია", Action: messenger.ActionWellness},
			{Label: "რესტორნის რეზერვაცია", Action: messenger.ActionDining},
		}
	}
	return []messenger.QuickReply{
		{Label: "Room reservation", Action: messenger.ActionLodging},
		{Label: "Spa reservation", Action: messenger.ActionWellness},
		{Label: "Restaurant reservation", Action: messenger.ActionDining},
	}
}

// FollowupOptions returns the post-answer quick replies, localized.
func FollowupOptions(lang classify.Language) []messenger.QuickReply {
	if lang == classify.LanguageGeorgian {
		return []messenger.QuickReply{
			{Label: "უკან", Action: messenger.ActionGoBack},
			{Label: "კიდევ მაქვს კითხვა", Action: messenger.ActionMoreQuestions},
		}
	}
	return []messenger.QuickReply{
		{Label: "Go back", Action: messenger.ActionGoBack},
		{Label: "I have more questions", Action: messenger.ActionMoreQuestions},
	}
}
