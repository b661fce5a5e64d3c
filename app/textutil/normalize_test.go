package textutil

import (
	"testing"
)

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "strips full audiobook term",
			input:    "Dune by Frank Herbert - Full Audiobook",
			expected: "Dune by Frank Herbert",
		},
		{
			name:     "strips parenthesized term without leftovers",
			input:    "The Hobbit (Complete Audiobook)",
			expected: "The Hobbit",
		},
		{
			name:     "decodes html entities",
			input:    "War &amp; Peace audiobook",
			expected: "War & Peace",
		},
		{
			name:     "folds diacritics to ascii",
			input:    "Les Misérables AUDIOBOOK",
			expected: "Les Miserables",
		},
		{
			name:     "drops non-ascii runes entirely",
			input:    "世界 Moby Dick",
			expected: "Moby Dick",
		},
		{
			name:     "removes hashtags and trailing separator",
			input:    "1984 #audiobook #orwell |",
			expected: "1984",
		},
		{
			name:     "collapses internal whitespace",
			input:    "A  Tale of\t\tTwo   Cities",
			expected: "A Tale of Two Cities",
		},
		{
			name:     "empty input stays empty",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeTitle(tt.input)
			if got != tt.expected {
				t.Errorf("NormalizeTitle(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestToASCII(t *testing.T) {
	if got := ToASCII("café"); got != "cafe" {
		t.Errorf("ToASCII(café) = %q, expected %q", got, "cafe")
	}
	if got := ToASCII("plain"); got != "plain" {
		t.Errorf("ToASCII(plain) = %q, expected %q", got, "plain")
	}
}

func TestStripBoilerplateCaseInsensitive(t *testing.T) {
	got := CollapseWhitespace(StripBoilerplate("Emma FREE AUDIOBOOK"))
	if got != "Emma" {
		t.Errorf("Expected %q, got %q", "Emma", got)
	}
}
