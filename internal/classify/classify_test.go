package classify

import "testing"

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		text    string
		want    Category
		matched bool
	}{
		{"english lodging", "Do you have rooms available?", CategoryLodging, true},
		{"english lodging uppercase", "ROOM FOR TWO PLEASE", CategoryLodging, true},
		{"english dining", "I'd like to book a table", CategoryDining, true},
		{"english wellness", "how much is the sauna", CategoryWellness, true},
		{"english gratitude", "thanks a lot", CategoryGratitude, true},
		{"georgian gratitude", "მადლობა", CategoryGratitude, true},
		{"georgian wellness", "საუნის ფასი", CategoryWellness, true},
		{"georgian lodging", "რა ღირს ოთახი", CategoryLodging, true},
		{"transliterated lodging", "otaxis fasi ramdenia", CategoryLodging, true},
		{"transliterated wellness", "auzis pasi", CategoryWellness, true},
		{"fuzzy dining typo", "restorant", CategoryDining, true},
		{"no match", "what is the weather like", "", false},
		{"empty", "", "", false},
		{"whitespace only", "   ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, matched := Classify(tt.text)
			if matched != tt.matched {
				t.Fatalf("Classify(%q) matched = %v, want %v", tt.text, matched, tt.matched)
			}
			if got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestClassifyFirstMatchOrder(t *testing.T) {
	t.Parallel()

	// Gratitude is evaluated before the topic categories.
	if got, _ := Classify("thanks for the room"); got != CategoryGratitude {
		t.Errorf("Classify = %q, want %q", got, CategoryGratitude)
	}

	// "ადამიანზე" appears in both the lodging and dining tables; lodging
	// is evaluated first and wins.
	if got, _ := Classify("ადამიანზე"); got != CategoryLodging {
		t.Errorf("Classify = %q, want %q", got, CategoryLodging)
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "ROOM", "room"},
		{"trims", "  spa  ", "spa"},
		{"composes decomposed runes", "café", "café"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
