// Package reply renders the static, localized reply texts and quick-reply
// option sets. Every user-visible string lives here, keyed by template id
// and language, so no message text is duplicated at call sites.
package reply

import (
	"fmt"

	"github.com/paragraphhotels/messenger-bot-go/internal/classify"
)

// TemplateID identifies a reply template.
type TemplateID string

// Template identifiers.
const (
	TemplateLanguagePrompt      TemplateID = "language_prompt"
	TemplateMenu                TemplateID = "menu"
	TemplateLodging             TemplateID = "lodging"
	TemplateDining              TemplateID = "dining"
	TemplateWellness            TemplateID = "wellness"
	TemplateThanks              TemplateID = "thanks"
	TemplateFallback            TemplateID = "fallback"
	TemplateFollowup            TemplateID = "followup"
	TemplateChooseLanguageFirst TemplateID = "choose_language_first"
	TemplateSessionExpired      TemplateID = "session_expired"
)

const (
	contactBlockEN = "please contact us at:\n+995 322 448 888\n\nOr email us:\nAYS.Luxury@paragraphhotels.com"
	contactBlockKA = "დაგვიკავშირდით ნომერზე:\n+995 322 448 888\n\nან მოგვწერეთ:\nAYS.Luxury@paragraphhotels.com"

	websiteEN = "https://www.marriott.com/en-us/hotels/tbslc-paragraph-freedom-square-a-luxury-collection-hotel-tbilisi/"
	websiteKA = "https://www.marriott.com/en-us/hotels/tbslc-paragraph-freedom-square-a-luxury-collection-hotel-tbilisi/overview/"

	menuLink = "https://linktr.ee/paragraphfreedomsquaretbilisi"
)

// texts maps template id to per-language message text. The language prompt
// is bilingual by design and identical in both languages.
var texts = map[TemplateID]map[classify.Language]string{
	TemplateLanguagePrompt: {
		classify.LanguageEnglish:  "Please choose your language\nგთხოვთ აირჩიოთ ენა",
		classify.LanguageGeorgian: "Please choose your language\nგთხოვთ აირჩიოთ ენა",
	},
	TemplateMenu: {
		classify.LanguageEnglish:  "How can I help you?",
		classify.LanguageGeorgian: "რით შემიძლია დაგეხმაროთ?",
	},
	TemplateLodging: {
		classify.LanguageEnglish: "For room rates and reservations, " + contactBlockEN +
			"\n\nFor more information, visit our website:\n" + websiteEN,
		classify.LanguageGeorgian: "მოგესალმებით, ოთახების ფასებთან და ჯავშნებთან დაკავშირებული ნებისმიერი ინფორმაციის მისაღებად " + contactBlockKA +
			"\n\nდამატებითი ინფორმაციის მისაღებად, ეწვიეთ ჩვენს ვებგვერდს:\n" + websiteKA,
	},
	TemplateDining: {
		classify.LanguageEnglish:  "You can view our menu at the following link:\n" + menuLink,
		classify.LanguageGeorgian: "მოგესალმებით, ჩვენი მენიუ შეგიძლიათ იხილოთ შემდეგ ბმულზე:\n" + menuLink,
	},
	TemplateWellness: {
		classify.LanguageEnglish: "One-day spa access:\nWeekdays – 150 GEL\nWeekends – 220 GEL\n\n" +
			"Memberships:\n1 month – 950 GEL\n3 months – 2565 GEL\n6 months – 4560 GEL\n\n" +
			"Membership includes:\n• Unlimited access\n• 1 personal trainer session\n• 1 spa visit for a friend\n" +
			"• 1 spa treatment\n• 12 studio workouts\n• Yoga, cardio pilates, prama\n• 15% discount on spa treatments\n\n" +
			"Spa treatment list:\n" + menuLink,
		classify.LanguageGeorgian: "სპას ერთდღიანი ვიზიტი:\nკვირის დღეებში – 150 ₾\nუქმეებზე – 220 ₾\n\n" +
			"აბონემენტები:\n1 თვე – 950 ₾\n3 თვე – 2565 ₾\n6 თვე – 4560 ₾\n\n" +
			"აბონიმენტი მოიცავს:\n• ულიმიტო ვიზიტს\n• 1 პერსონალური მწვრთნელი\n• 1 სპაში ვიზიტი მეგობრისთვის\n" +
			"• 1 სპა პროცედურა\n• 12 სტუდიო ვარჯიში\n• იოგა, კარდიო პილატესი, პრამა\n• 15% ფასდაკლება სპა პროცედურებზე\n\n" +
			"სპა პროცედურების ჩამონათვალი:\n" + menuLink,
	},
	TemplateThanks: {
		classify.LanguageEnglish:  "Thank you for contacting us",
		classify.LanguageGeorgian: "მადლობა დაკავშირებისთვის",
	},
	TemplateFallback: {
		classify.LanguageEnglish:  "For additional information " + contactBlockEN + "\n\nOr wait for an operator",
		classify.LanguageGeorgian: "დამატებითი ინფორმაციის მისაღებად " + contactBlockKA + "\n\nან დაელოდეთ ოპერატორს",
	},
	TemplateFollowup: {
		classify.LanguageEnglish:  "Would you like anything else?",
		classify.LanguageGeorgian: "გსურთ კიდევ რამე?",
	},
	TemplateChooseLanguageFirst: {
		classify.LanguageEnglish:  "Please choose a language first\nგთხოვთ ჯერ აირჩიოთ ენა",
		classify.LanguageGeorgian: "Please choose a language first\nგთხოვთ ჯერ აირჩიოთ ენა",
	},
	TemplateSessionExpired: {
		classify.LanguageEnglish:  "This conversation has expired. Send us a message to start again.",
		classify.LanguageGeorgian: "საუბრის დრო ამოიწურა. თავიდან დასაწყებად მოგვწერეთ.",
	},
}

// Render returns the template text for the given language. An unset
// language falls back to English. Unknown template ids render empty.
func Render(id TemplateID, lang classify.Language) string {
	byLang, ok := texts[id]
	if !ok {
		return ""
	}
	if lang == classify.LanguageUnset {
		lang = classify.LanguageEnglish
	}
	return byLang[lang]
}

// Greeting renders the bilingual welcome line, personalized when a display
// name is available and falling back to the unnamed form otherwise.
func Greeting(name string) string {
	if name == "" {
		return "Hello! Please choose a language\nგამარჯობა, გთხოვთ აირჩიოთ ენა"
	}
	return fmt.Sprintf("Hello, %s! Please choose a language\nგამარჯობა, გთხოვთ აირჩიოთ ენა", name)
}
