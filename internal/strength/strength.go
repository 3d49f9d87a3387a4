// Package strength scores passphrase quality on a 0-100 scale.
// The score is a heuristic over length and character variety; it feeds the
// per-credential history and the day-bucketed strength graph.
package strength

import "unicode"

// Score limits and weights.
const (
	MaxScore = 100

	lengthWeight  = 4
	maxLengthPart = 40
	classWeight   = 15
)

// Evaluate rates a passphrase from 0 (empty) to 100.
// Length contributes up to 40 points (4 per character), each character class
// present (lower, upper, digit, symbol) contributes 15, and a passphrase of
// a single repeated character is halved.
func Evaluate(passphrase string) int {
	if passphrase == "" {
		return 0
	}

	score := len(passphrase) * lengthWeight
	if score > maxLengthPart {
		score = maxLengthPart
	}

	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range passphrase {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSymbol = true
		}
	}

	for _, present := range []bool{hasLower, hasUpper, hasDigit, hasSymbol} {
		if present {
			score += classWeight
		}
	}

	if monotone(passphrase) {
		score /= 2
	}

	if score > MaxScore {
		score = MaxScore
	}
	return score
}

// monotone reports whether the passphrase is one repeated character.
func monotone(s string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return true
}
