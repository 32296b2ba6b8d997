package ai

import "strings"

// Function-word markers used to score report language. Each marker is matched
// with surrounding spaces so substrings of longer words do not count.
var (
	germanMarkers = []string{
		" der ", " die ", " das ", " und ", " nicht ", " bitte ",
		" wegen ", " aber ", " auch ", " du ", " dein ", " eine ",
	}

	englishMarkers = []string{
		" the ", " and ", " not ", " please ", " because ", " but ",
		" also ", " you ", " your ", " a ", " an ",
	}
)

// DetectLanguage guesses whether report text is German or English by counting
// function-word markers in the lower-cased text. Each umlaut or ß present adds
// +2 to the German score. Ties favor German; empty text is English.
func DetectLanguage(text string) string {
	if text == "" {
		return "en"
	}

	sample := strings.ToLower(text)

	var germanScore, englishScore int

	for _, marker := range germanMarkers {
		if strings.Contains(sample, marker) {
			germanScore++
		}
	}

	for _, marker := range englishMarkers {
		if strings.Contains(sample, marker) {
			englishScore++
		}
	}

	for _, ch := range "äöüß" {
		if strings.ContainsRune(sample, ch) {
			germanScore += 2
		}
	}

	if germanScore >= englishScore {
		return "de"
	}

	return "en"
}
