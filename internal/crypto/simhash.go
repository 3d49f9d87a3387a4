package crypto

import (
	"crypto/md5"
	"encoding/binary"
	"fmt"
	"math/bits"
	"strconv"
	"strings"
	"unicode"
)

// SimHashSize is the fingerprint width in bits.
const SimHashSize = 64

// Fingerprint computes a 64-bit SimHash digest of text. Identical inputs
// always produce identical digests, and inputs differing by small edits
// produce digests at a small Hamming distance, so near-duplicate secrets can
// be found without decrypting them. The digest is not invertible.
func Fingerprint(text string) uint64 {
	features := extractFeatures(text)

	var vector [SimHashSize]int
	for _, feature := range features {
		// MD5 is weak as a cryptographic hash but wide (128 bits) and
		// fast, which is all a SimHash feature hash needs.
		digest := md5.Sum([]byte(feature))
		for i := 0; i < SimHashSize; i++ {
			if digest[i/8]&(1<<(i%8)) != 0 {
				vector[i]++
			} else {
				vector[i]--
			}
		}
	}

	var sim [SimHashSize / 8]byte
	for i := 0; i < SimHashSize; i++ {
		if vector[i] > 0 {
			sim[i/8] |= 1 << (i % 8)
		}
	}

	return binary.LittleEndian.Uint64(sim[:])
}

// FingerprintHex returns the digest as a 16-character hex string, the form
// stored alongside each credential.
func FingerprintHex(text string) string {
	return fmt.Sprintf("%016x", Fingerprint(text))
}

// ParseFingerprintHex parses a digest produced by FingerprintHex.
func ParseFingerprintHex(s string) (uint64, error) {
	digest, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid fingerprint: %w", err)
	}
	return digest, nil
}

// Distance returns the Hamming distance between two digests: the number of
// differing bits. Callers threshold it to decide "similar enough to flag".
func Distance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}

// extractFeatures builds the feature multiset: lower-cased tokens split on
// non-alphanumeric runs, plus all character 3-grams of the lower-cased text.
func extractFeatures(text string) []string {
	lower := strings.ToLower(text)

	tokens := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	features := make([]string, 0, len(tokens)+len(lower))
	features = append(features, tokens...)

	for i := 0; i+3 <= len(lower); i++ {
		features = append(features, lower[i:i+3])
	}

	return features
}
