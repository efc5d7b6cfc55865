package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeTitle(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Trip planning help", "Trip planning help"},
		{"surrounding whitespace", "  Grocery list ideas \n", "Grocery list ideas"},
		{"quoted by the model", `"Weekend in Lisbon"`, "Weekend in Lisbon"},
		{"single quotes", "'Tax questions'", "Tax questions"},
		{"keeps first line only", "Budget review\nand some rambling", "Budget review"},
		{"empty", "   ", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, sanitizeTitle(tc.in))
		})
	}
}

func TestSanitizeTitleCapsLength(t *testing.T) {
	long := strings.Repeat("word ", 50)
	got := sanitizeTitle(long)
	assert.LessOrEqual(t, len(got), 120)
	assert.NotEmpty(t, got)
}
