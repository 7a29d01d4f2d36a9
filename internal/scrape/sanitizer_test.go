package scrape

import (
	"strings"
	"testing"

	"github.com/nao1215/prodscout/internal/model"
)

func TestSanitizerPlainText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "keeps words and punctuation", input: "Widget Pro - fast, small. Really? Yes!", want: "Widget Pro - fast, small. Really? Yes!"},
		{name: "strips symbols", input: "Price: $19.99 <b>now</b>", want: "Price 19.99 bnowb"},
		{name: "collapses whitespace", input: "  a \t\n  b  ", want: "a b"},
		{name: "NFKC folds compatibility characters", input: "ﬁne Ｗidget", want: "fine Widget"},
		{name: "non-breaking spaces become spaces", input: "a  b", want: "a b"},
	}

	s := NewSanitizer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := s.Sanitize(tt.input, model.ContentTypePlainText)
			if !got.Success {
				t.Fatalf("expected success, got %q", got.Error)
			}
			if got.Content != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got.Content)
			}
		})
	}
}

func TestSanitizerPlainTextIsIdempotent(t *testing.T) {
	t.Parallel()

	s := NewSanitizer()
	inputs := []string{
		"Widget Pro — the “best” widget… ©2026 <script>x</script>",
		"  spaced\tout\n\ntext  ",
		"ﬁ ① ｶ Ⅻ ½ ünïcödé",
		"already clean text.",
		"a\vb\fc",
	}
	for _, in := range inputs {
		once := s.Sanitize(in, model.ContentTypePlainText)
		if !once.Success {
			continue
		}
		twice := s.Sanitize(once.Content, model.ContentTypePlainText)
		if twice.Content != once.Content {
			t.Errorf("sanitize(%q): not idempotent: %q then %q", in, once.Content, twice.Content)
		}
	}
}

func TestSanitizerMarkup(t *testing.T) {
	t.Parallel()

	s := NewSanitizer()

	t.Run("removes script and style", func(t *testing.T) {
		t.Parallel()

		inputs := []string{
			`<p>Widget</p><script>alert(1)</script>`,
			`<style>p{}</style><p onclick="x()">Widget</p>`,
			`<SCRIPT src="evil.js"></SCRIPT>Widget`,
			`Widget <scr<script>ipt>alert(1)</script>`,
			NewClassifier(0).Classify(htmlResponse(widgetPage)).Content,
		}
		for _, in := range inputs {
			got := s.Sanitize(in, model.ContentTypeMarkup)
			lower := strings.ToLower(got.Content)
			if strings.Contains(lower, "<script") || strings.Contains(lower, "<style") {
				t.Errorf("sanitize(%q) kept script or style: %q", in, got.Content)
			}
			if strings.Contains(lower, "onclick") {
				t.Errorf("sanitize(%q) kept an event handler: %q", in, got.Content)
			}
		}
	})

	t.Run("keeps benign structure", func(t *testing.T) {
		t.Parallel()

		got := s.Sanitize(`<p>Widget <b>Pro</b></p>`, model.ContentTypeMarkup)
		if got.Content != `<p>Widget <b>Pro</b></p>` {
			t.Errorf("unexpected content %q", got.Content)
		}
	})

	t.Run("only unsafe markup is empty", func(t *testing.T) {
		t.Parallel()

		got := s.Sanitize(`<script>alert(1)</script>`, model.ContentTypeMarkup)
		if got.Success || got.Error != ErrEmptyAfterSanitization {
			t.Errorf("expected empty failure, got %+v", got)
		}
	})
}

func TestSanitizerMarkdown(t *testing.T) {
	t.Parallel()

	got := NewSanitizer().Sanitize("# Widget *Pro* `v2` @home", model.ContentTypeMarkdown)
	if got.Content != "# Widget *Pro* `v2` home" {
		t.Errorf("unexpected content %q", got.Content)
	}
	if got.ContentType != model.ContentTypeMarkdown {
		t.Errorf("expected markdown type, got %q", got.ContentType)
	}
}

func TestSanitizerStructuredDataIsPlainText(t *testing.T) {
	t.Parallel()

	got := NewSanitizer().Sanitize(`{"name":"Widget Pro","price":19.99}`, model.ContentTypeStructured)
	if got.ContentType != model.ContentTypePlainText {
		t.Errorf("expected plain-text type, got %q", got.ContentType)
	}
	if got.Content != "nameWidget Pro,price19.99" {
		t.Errorf("unexpected content %q", got.Content)
	}
}

func TestSanitizerEmpty(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "   ", "$$$ @@@"} {
		got := NewSanitizer().Sanitize(in, model.ContentTypePlainText)
		if got.Success {
			t.Errorf("%q: expected failure", in)
		}
		if got.Error != ErrEmptyAfterSanitization {
			t.Errorf("%q: expected %q, got %q", in, ErrEmptyAfterSanitization, got.Error)
		}
	}
}
