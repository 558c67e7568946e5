// Package classify matches free-text guest messages against fixed keyword
// tables, with bigram similarity as a fuzzy fallback for typos and
// transliteration. Matching is first-match over a fixed category order,
// not best-match.
package classify

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Category identifies a topic the classifier can detect.
type Category string

// Detectable categories, in evaluation order.
const (
	CategoryGratitude Category = "gratitude"
	CategoryLodging   Category = "lodging"
	CategoryDining    Category = "dining"
	CategoryWellness  Category = "wellness"
)

// similarityThreshold is the whole-message Dice-coefficient cutoff.
// A keyword matches when similarity is strictly greater than this value.
const similarityThreshold = 0.6

// Keyword tables. Each list mixes English terms, Georgian terms, and
// Latin-alphabet transliterations of the Georgian terms. Lists can overlap
// (e.g. "ადამიანზე" appears under both lodging and dining); the category
// evaluated first wins.
var (
	lodgingKeywords = []string{
		"room", "rooms", "night", "nights", "per night", "number", "booking",
		"ოთახი", "ოთახის", "ღამე", "ნომერი", "ნომრის", "ადამიანზე", "ოთახზე",
		"otaxis", "otaxi", "gamis", "ghamis", "ghame", "nomeri", "nomris", "otaxze", "adamianze gamis",
	}

	diningKeywords = []string{
		"restaurant", "table", "reservation", "menu", "food", "drink",
		"კაცზე", "მაგიდის", "მაგიდაზე", "ადამიანზე", "ჯავშანი",
		"მენიუ", "სასმელი", "საჭმელი",
		"kacze", "magidis", "magida", "sasmeli", "sasmelis", "adamianze magidis",
	}

	wellnessKeywords = []string{
		"spa", "sauna", "pool", "swimming", "membership",
		"აბონიმენტი", "საუნა", "საუნის", "საუნის ფასი", "სპა", "აუზი", "სპის", "აუზის", "აუზის ფასი",
		"abonimenti", "sauna", "saunis", "saunis pasi", "spa", "spis", "auzi", "auzis", "auzis pasi",
	}

	gratitudeKeywords = []string{
		"მადლობა", "გმადლობთ", "thanks", "thank you",
	}
)

// categoryTable binds a category to its keyword list.
type categoryTable struct {
	category Category
	keywords []string
}

// tables is the fixed evaluation order: gratitude first, then the topic
// categories in declared order. The first matching category wins.
var tables = []categoryTable{
	{CategoryGratitude, gratitudeKeywords},
	{CategoryLodging, lodgingKeywords},
	{CategoryDining, diningKeywords},
	{CategoryWellness, wellnessKeywords},
}

// Classify returns the first category whose keyword table matches the
// message, and false when no category matches.
func Classify(text string) (Category, bool) {
	text = Normalize(text)

	for _, t := range tables {
		if containsKeyword(text, t.keywords) {
			return t.category, true
		}
	}
	return "", false
}

// containsKeyword reports whether any keyword appears as a case-insensitive
// substring of the message, or scores above the similarity threshold
// against the whole message.
func containsKeyword(text string, keywords []string) bool {
	for _, keyword := range keywords {
		keyword = strings.ToLower(keyword)
		if strings.Contains(text, keyword) {
			return true
		}
		if DiceSimilarity(text, keyword) > similarityThreshold {
			return true
		}
	}
	return false
}

// Normalize lowercases the text and applies Unicode NFC normalization so
// composed and decomposed forms of the same characters compare equal.
func Normalize(text string) string {
	return strings.ToLower(norm.NFC.String(strings.TrimSpace(text)))
}
