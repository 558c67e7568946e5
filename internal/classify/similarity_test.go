package classify

import (
	"math"
	"testing"
)

func TestDiceSimilarity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{"identical strings", "sauna", "sauna", 1},
		{"identical after whitespace strip", "per night", "pernight", 1},
		{"both empty", "", "", 1},
		{"one empty", "sauna", "", 0},
		{"single rune", "a", "ab", 0},
		{"no shared bigrams", "abc", "xyz", 0},
		{"partial overlap", "night", "nacht", 0.25},
		{"high overlap", "healed", "sealed", 0.8},
		{"georgian bigrams", "საუნა", "საუნის", 2.0 * 3 / (5 + 6 - 2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := DiceSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("DiceSimilarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestDiceSimilaritySymmetric(t *testing.T) {
	t.Parallel()

	pairs := [][2]string{
		{"restaurant", "restorant"},
		{"night", "nacht"},
		{"საუნის ფასი", "საუნა"},
	}

	for _, p := range pairs {
		if got, want := DiceSimilarity(p[0], p[1]), DiceSimilarity(p[1], p[0]); got != want {
			t.Errorf("DiceSimilarity(%q, %q) = %v, but reversed = %v", p[0], p[1], got, want)
		}
	}
}

func TestDiceSimilarityRange(t *testing.T) {
	t.Parallel()

	inputs := []string{"", "a", "room", "per night", "საუნის ფასი", "abonimenti"}
	for _, a := range inputs {
		for _, b := range inputs {
			got := DiceSimilarity(a, b)
			if got < 0 || got > 1 {
				t.Errorf("DiceSimilarity(%q, %q) = %v, out of [0, 1]", a, b, got)
			}
		}
	}
}
