package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprint_Deterministic(t *testing.T) {
	for _, text := range []string{
		"password1",
		"correct horse battery staple",
		"P@ssw0rd!",
		"",
	} {
		assert.Equal(t, Fingerprint(text), Fingerprint(text), "text %q", text)
	}
}

func TestDistance_Identity(t *testing.T) {
	digest := Fingerprint("some secret value")
	assert.Equal(t, 0, Distance(digest, digest))
}

func TestFingerprint_SmallEditStaysClose(t *testing.T) {
	base := "correct horse battery staple"
	edited := "correct horse battery staples"

	editDistance := Distance(Fingerprint(base), Fingerprint(edited))

	// A one-character edit keeps most features shared; unrelated random
	// strings average around 32 differing bits. Statistical, so compare
	// against the average over a batch of random strings.
	var totalRandom int
	const samples = 20
	for i := 0; i < samples; i++ {
		buf := make([]byte, 16)
		_, err := rand.Read(buf)
		require.NoError(t, err)
		totalRandom += Distance(Fingerprint(base), Fingerprint(hex.EncodeToString(buf)))
	}
	averageRandom := totalRandom / samples

	assert.Less(t, editDistance, averageRandom)
}

func TestFingerprintHex_RoundTrip(t *testing.T) {
	text := "platform.example.com admin"

	encoded := FingerprintHex(text)
	require.Len(t, encoded, 16)

	parsed, err := ParseFingerprintHex(encoded)
	require.NoError(t, err)
	assert.Equal(t, Fingerprint(text), parsed)
}

func TestParseFingerprintHex_Invalid(t *testing.T) {
	_, err := ParseFingerprintHex("not hex at all")
	assert.Error(t, err)
}

func TestExtractFeatures(t *testing.T) {
	features := extractFeatures("Ab cd")

	// Tokens lower-cased plus 3-grams of the lower-cased text
	assert.Contains(t, features, "ab")
	assert.Contains(t, features, "cd")
	assert.Contains(t, features, "ab ")
	assert.Contains(t, features, "b c")
	assert.Contains(t, features, " cd")
}
