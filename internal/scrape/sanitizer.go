package scrape

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/unicode/norm"

	"github.com/nao1215/prodscout/internal/model"
)

var (
	// plainTextDisallowed matches everything but word characters,
	// whitespace and basic punctuation.
	plainTextDisallowed = regexp.MustCompile(`[^\w\s\-.,?!]`)

	// markdownDisallowed additionally keeps markdown syntax.
	markdownDisallowed = regexp.MustCompile("[^\\w\\s\\-.,?!#*`]")

	whitespaceRun = regexp.MustCompile(`\s+`)
)

// ErrEmptyAfterSanitization is the error text of results that end up empty.
const ErrEmptyAfterSanitization = "empty after sanitization"

// SanitizeResult is the outcome of sanitizing one piece of content.
type SanitizeResult struct {
	Content     string
	ContentType model.ContentType
	Success     bool
	Error       string
}

// Sanitizer removes unsafe or irrelevant content.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer creates a Sanitizer using the bluemonday UGC policy for markup.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{policy: bluemonday.UGCPolicy()}
}

// SanitizerType maps a classified content type to the sanitizer that
// handles it. Structured data is treated as plain text.
func SanitizerType(t model.ContentType) model.ContentType {
	switch t {
	case model.ContentTypeMarkup, model.ContentTypeMarkdown:
		return t
	default:
		return model.ContentTypePlainText
	}
}

// Sanitize cleans content according to its type:
//   - markup: elements and attributes outside the UGC policy are removed,
//     including script and style with their contents
//   - plain text: NFKC normalisation, then everything but word characters,
//     whitespace and - . , ? ! is stripped and whitespace is collapsed
//   - markdown: as plain text, also keeping # * and `
//
// Plain-text sanitization is idempotent.
func (s *Sanitizer) Sanitize(content string, t model.ContentType) SanitizeResult {
	t = SanitizerType(t)

	var out string
	switch t {
	case model.ContentTypeMarkup:
		out = strings.TrimSpace(s.policy.Sanitize(content))
	case model.ContentTypeMarkdown:
		out = cleanText(content, markdownDisallowed)
	default:
		out = cleanText(content, plainTextDisallowed)
	}

	if out == "" {
		return SanitizeResult{ContentType: t, Error: ErrEmptyAfterSanitization}
	}
	return SanitizeResult{Content: out, ContentType: t, Success: true}
}

func cleanText(content string, disallowed *regexp.Regexp) string {
	out := norm.NFKC.String(content)
	out = disallowed.ReplaceAllString(out, "")
	out = whitespaceRun.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}
