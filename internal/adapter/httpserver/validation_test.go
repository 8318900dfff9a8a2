package httpserver

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateQuery(t *testing.T) {
	t.Parallel()
	assert.True(t, ValidateQuery("query", "golang tips").Valid)
	assert.False(t, ValidateQuery("query", "").Valid)
	assert.False(t, ValidateQuery("query", "   ").Valid)

	long := strings.Repeat("a", 201)
	res := ValidateQuery("query", long)
	assert.False(t, res.Valid)
	assert.Equal(t, "TOO_LONG", res.Errors[0].Code)
}

func TestParseSuggest(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in   string
		want int
	}{
		{"", 9},
		{"abc", 9},
		{"5", 5},
		{"0", 1},
		{"-3", 1},
		{"10", 10},
		{"99", 10},
		{" 7 ", 7},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ParseSuggest(tc.in), tc.in)
	}
}

func TestSanitizeQuery(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "hello", SanitizeQuery("  hello\x00 "))
	assert.Equal(t, "a b", SanitizeQuery("a b"))
	assert.Len(t, SanitizeQuery(strings.Repeat("x", 2000)), 1000)
}
