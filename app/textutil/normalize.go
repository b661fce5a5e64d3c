// Package textutil holds the pure text transforms applied to raw candidate
// titles and descriptions before any enrichment happens.
package textutil

import (
	"html"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// boilerplateTerms are stripped from titles case-insensitively. Parenthesized
// variants must come first so the bare word does not leave "()" behind.
var boilerplateTerms = compileTerms(
	"(full audiobook)",
	"(free audiobook)",
	"(complete audiobook)",
	"full audiobook",
	"free audiobook",
	"complete audiobook",
	"(audiobook)",
	"audiobook",
)

func compileTerms(terms ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(terms))
	for _, term := range terms {
		compiled = append(compiled, regexp.MustCompile(`(?i)`+regexp.QuoteMeta(term)))
	}
	return compiled
}

var (
	hashtagRe         = regexp.MustCompile(`#\w+,?`)
	trailingSepRe     = regexp.MustCompile(`\s?[-\|,]\s?$`)
	whitespaceRe      = regexp.MustCompile(`\s+`)
	asciiFoldTransform = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
)

// DecodeEntities converts HTML entities to their corresponding characters.
func DecodeEntities(s string) string {
	return html.UnescapeString(s)
}

// ToASCII folds the input to its ASCII representation: combining marks are
// stripped after NFKD decomposition and any remaining non-ASCII runes are
// dropped.
func ToASCII(s string) string {
	folded, _, err := transform.String(asciiFoldTransform, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if r < 128 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// StripBoilerplate removes hashtag tokens, audiobook marketing terms and
// trailing separator punctuation from a title. Hashtags go first so that
// "#audiobook" disappears whole instead of leaving a bare "#" behind.
func StripBoilerplate(s string) string {
	s = hashtagRe.ReplaceAllString(s, "")

	for _, re := range boilerplateTerms {
		s = re.ReplaceAllString(s, "")
	}

	s = trailingSepRe.ReplaceAllString(s, "")

	return s
}

// CollapseWhitespace trims the string and replaces runs of whitespace with a
// single space.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// NormalizeTitle applies the full title cleanup chain in its fixed order:
// entity decoding, ASCII folding, boilerplate stripping, whitespace collapse.
func NormalizeTitle(s string) string {
	s = DecodeEntities(s)
	s = ToASCII(s)
	s = StripBoilerplate(s)
	s = CollapseWhitespace(s)
	return s
}
