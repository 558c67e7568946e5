package classify

import "strings"

// Language is the conversation language of a session.
type Language string

// Supported languages. A session starts unset and keeps the language the
// guest picked until an explicit restart.
const (
	LanguageUnset    Language = ""
	LanguageEnglish  Language = "en"
	LanguageGeorgian Language = "ka"
)

// translitKeywords are Latin-alphabet phonetic spellings of Georgian terms.
// Their presence marks a message as Georgian even without Georgian script.
var translitKeywords = []string{
	"otaxi", "otaxis", "gamis", "ghamis", "ghame", "nomeri", "nomris", "otaxze", "adamianze gamis",
	"kacze", "magidis", "magida", "sasmeli", "sasmelis", "adamianze magidis",
	"abonimenti", "sauna", "saunis", "saunis pasi", "spa", "spis", "auzi", "auzis", "auzis pasi",
}

// DetectLanguage guesses the language of a message. Georgian is detected by
// any rune in the Georgian Mkhedruli range or any transliteration keyword;
// everything else reads as English. Best effort, may misclassify.
func DetectLanguage(text string) Language {
	for _, r := range text {
		if r >= 'ა' && r <= 'ჰ' {
			return LanguageGeorgian
		}
	}

	lower := strings.ToLower(text)
	for _, k := range translitKeywords {
		if strings.Contains(lower, k) {
			return LanguageGeorgian
		}
	}

	return LanguageEnglish
}
