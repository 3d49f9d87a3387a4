// Package generator produces random passphrases and look-alike variants of
// existing ones.
package generator

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"unicode"
)

const (
	// MinLength is the floor below which requested lengths are raised.
	MinLength = 8
	// DefaultLength assumes generated passphrases are stored, not
	// remembered, so it errs on the long side.
	DefaultLength = 32
	// MaxLength bounds what a single request may ask for.
	MaxLength = 512
)

var (
	lowerRunes   = []rune("abcdefghijklmnopqrstuvwxyz")
	upperRunes   = []rune("ABCDEFGHIJKLMNOPQRSTUVWXYZ")
	numberRunes  = []rune("0123456789")
	specialRunes = []rune("@_.-€£$~!#%^&*()+=[]{}|;:,<>?/")

	allRunes = joinRunes(lowerRunes, upperRunes, numberRunes, specialRunes)
)

// lookAlikes maps each rune to the glyphs it can be swapped with while the
// result still reads like the original.
var lookAlikes = map[rune][]rune{
	'q': {'Q', 'q'},
	'w': {'W', 'm', 'M', 'w'},
	'e': {'E', '€', '£', 'e'},
	'r': {'R', 'r'},
	't': {'T', '7', 't'},
	'y': {'Y', 'h', 'y'},
	'u': {'U', 'u', 'n'},
	'i': {'I', '1', 'i'},
	'o': {'O', '0', 'o'},
	'p': {'P', 'p'},
	'a': {'A', '4', '@', 'a'},
	's': {'S', '$', '5', 's'},
	'd': {'D', 'd'},
	'f': {'F'},
	'g': {'G', '6', '9', 'g'},
	'h': {'H', 'y', 'h'},
	'j': {'J', 'j'},
	'k': {'K', 'k'},
	'l': {'L', 'l'},
	'z': {'Z', '2', 'z'},
	'x': {'X', 'x'},
	'c': {'C', 'c'},
	'v': {'V', 'v'},
	'b': {'B', '3', '8', 'b'},
	'n': {'N', 'n', 'u'},
	'm': {'M', 'W', 'w', 'm'},
	'$': {'S', 's', '5'},
	'@': {'A', 'a'},
	'€': {'E', 'e'},
	'£': {'E', 'e'},
	'?': {'7'},
	'0': {'O', 'o', '0'},
	'1': {'i', '1'},
	'2': {'Z', 'z', '2'},
	'3': {'B', '3'},
	'4': {'A', '4'},
	'5': {'S', 's', '$'},
	'6': {'G', '6'},
	'7': {'7', '?', 'T'},
	'8': {'B', '8'},
	'9': {'g', '9'},
}

// Passphrase returns a random passphrase of the requested length, raised to
// MinLength when shorter. Eight shuffled positions are overwritten with two
// runes from each character class so the result always mixes lowercase,
// uppercase, digits and specials.
func Passphrase(length int) (string, error) {
	if length < MinLength {
		length = MinLength
	}

	out := make([]rune, length)
	for i := range out {
		idx, err := randIndex(len(allRunes))
		if err != nil {
			return "", err
		}
		out[i] = allRunes[idx]
	}

	positions := make([]int, length)
	for i := range positions {
		positions[i] = i
	}
	for i := length - 1; i > 0; i-- {
		j, err := randIndex(i + 1)
		if err != nil {
			return "", err
		}
		positions[i], positions[j] = positions[j], positions[i]
	}

	classes := [4][]rune{lowerRunes, upperRunes, numberRunes, specialRunes}
	for i := 0; i < 8; i++ {
		set := classes[i%4]
		idx, err := randIndex(len(set))
		if err != nil {
			return "", err
		}
		out[positions[i]] = set[idx]
	}

	return string(out), nil
}

// Alternative rewrites the input rune by rune, replacing each with a random
// look-alike glyph. Runes without a look-alike entry are lowercased and kept.
func Alternative(input string) (string, error) {
	out := make([]rune, 0, len(input))
	for _, r := range input {
		lower := unicode.ToLower(r)
		choices, ok := lookAlikes[lower]
		if !ok {
			out = append(out, lower)
			continue
		}
		idx, err := randIndex(len(choices))
		if err != nil {
			return "", err
		}
		out = append(out, choices[idx])
	}
	return string(out), nil
}

func randIndex(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("failed to read randomness: %w", err)
	}
	return int(v.Int64()), nil
}

func joinRunes(sets ...[]rune) []rune {
	var out []rune
	for _, set := range sets {
		out = append(out, set...)
	}
	return out
}
