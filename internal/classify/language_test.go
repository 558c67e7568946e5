package classify

import "testing"

func TestDetectLanguage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want Language
	}{
		{"georgian script", "გამარჯობა", LanguageGeorgian},
		{"mixed script", "hello ოთახი", LanguageGeorgian},
		{"transliteration", "saunis pasi", LanguageGeorgian},
		{"transliteration uppercase", "SAUNA", LanguageGeorgian},
		{"english", "do you have rooms", LanguageEnglish},
		{"empty", "", LanguageEnglish},
		{"numbers", "12345", LanguageEnglish},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := DetectLanguage(tt.text); got != tt.want {
				t.Errorf("DetectLanguage(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}
