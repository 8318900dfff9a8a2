// Package textx contains tests for the text utilities.
package textx

import "testing"

func TestSanitizeText(t *testing.T) {
	in := "he\x00llo\nwo\x7frld\t!"
	got := SanitizeText(in)
	if got != "hello\nworld\t!" {
		t.Fatalf("unexpected: %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("hello", 10); got != "hello" {
		t.Fatalf("unexpected: %q", got)
	}
	if got := Truncate("hello", 3); got != "hel" {
		t.Fatalf("unexpected: %q", got)
	}
	if got := Truncate("héllo", 2); got != "h" {
		t.Fatalf("must not split the rune: %q", got)
	}
	if got := Truncate("hello", 0); got != "" {
		t.Fatalf("unexpected: %q", got)
	}
}
