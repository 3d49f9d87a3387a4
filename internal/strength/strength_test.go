package strength

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name       string
		passphrase string
		want       int
	}{
		{"empty", "", 0},
		{"single repeated char", "aaaaaaaa", (32 + 15) / 2},
		{"lowercase only", "password", 32 + 15},
		{"all four classes long", "Tr0ub4dor&3springtime", 100},
		{"short but varied", "aB3!", 4*4 + 4*15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.passphrase))
		})
	}
}

func TestEvaluate_Bounds(t *testing.T) {
	for _, passphrase := range []string{"", "a", "abcdefghij", "A1b2!c3D4@e5F6#", "aaaaaaaaaaaaaaaaaaaaaaaaaaaaa"} {
		score := Evaluate(passphrase)
		assert.GreaterOrEqual(t, score, 0)
		assert.LessOrEqual(t, score, MaxScore)
	}
}

func TestEvaluate_LongerIsStronger(t *testing.T) {
	assert.Greater(t, Evaluate("abcdefgh"), Evaluate("abc"))
}
