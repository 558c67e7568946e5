package classify

import "strings"

// DiceSimilarity returns the Sørensen–Dice coefficient of the character
// bigram multisets of a and b: twice the number of matching bigrams divided
// by the total bigram count of both strings. Whitespace is stripped before
// comparison. The result is in [0, 1].
func DiceSimilarity(a, b string) float64 {
	a = stripWhitespace(a)
	b = stripWhitespace(b)

	if a == b {
		return 1
	}

	ra := []rune(a)
	rb := []rune(b)
	if len(ra) < 2 || len(rb) < 2 {
		return 0
	}

	bigrams := make(map[string]int, len(ra)-1)
	for i := 0; i < len(ra)-1; i++ {
		bigrams[string(ra[i:i+2])]++
	}

	var matches int
	for i := 0; i < len(rb)-1; i++ {
		bigram := string(rb[i : i+2])
		if bigrams[bigram] > 0 {
			bigrams[bigram]--
			matches++
		}
	}

	return 2 * float64(matches) / float64(len(ra)+len(rb)-2)
}

func stripWhitespace(s string) string {
	return strings.Join(strings.Fields(s), "")
}
