package httpserver

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/fairyhunter13/thumbnail-analyzer/pkg/textx"
)

// ValidationError represents a single invalid field.
type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationResult represents the result of validation.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

func invalid(field, code, message string) ValidationResult {
	return ValidationResult{Valid: false, Errors: []ValidationError{{Field: field, Code: code, Message: message}}}
}

// ValidateQuery validates a keyword query or topic parameter.
func ValidateQuery(field, query string) ValidationResult {
	if strings.TrimSpace(query) == "" {
		return invalid(field, "REQUIRED", field+" is required")
	}
	if utf8.RuneCountInString(query) > 200 {
		return invalid(field, "TOO_LONG", field+" is too long (max 200 characters)")
	}
	return ValidationResult{Valid: true}
}

// ParseSuggest parses the suggestion count parameter, clamped to [1, 10].
// Empty or unparseable input falls back to the default of 9.
func ParseSuggest(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 9
	}
	if n < 1 {
		return 1
	}
	if n > 10 {
		return 10
	}
	return n
}

// SanitizeQuery strips control noise from user text and caps its length.
func SanitizeQuery(input string) string {
	input = textx.Truncate(textx.SanitizeText(input), 1000)
	if !utf8.ValidString(input) {
		input = strings.ToValidUTF8(input, "")
	}
	return input
}
