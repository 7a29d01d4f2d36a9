package scrape

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/abadojack/whatlanggo"

	"github.com/nao1215/prodscout/internal/config"
	"github.com/nao1215/prodscout/internal/model"
)

// languageSampleWords is how many words of body text feed language detection.
const languageSampleWords = 100

// Classifier converts fetched responses into typed content.
type Classifier struct {
	maxContentLength int
}

// NewClassifier creates a Classifier. Content must be shorter than
// maxContentLength bytes; a non-positive value selects the default.
func NewClassifier(maxContentLength int) *Classifier {
	if maxContentLength <= 0 {
		maxContentLength = config.DefaultMaxContentLength
	}
	return &Classifier{maxContentLength: maxContentLength}
}

// Classify selects a handler by media type:
//   - JSON becomes compact JSON text (structured-data)
//   - HTML becomes its visible body text plus metadata (markup)
//   - anything else is kept as text (plain-text)
//
// Problems with the content are reported through Success and Error, never
// as a Go error.
func (c *Classifier) Classify(resp *Response) model.ScrapedContent {
	meta := model.Metadata{
		StatusCode:    resp.StatusCode,
		ContentLength: resp.ContentLength,
		LastModified:  resp.LastModified,
		MediaType:     resp.MediaType,
	}

	if len(resp.Body) == 0 {
		return failed(model.ContentTypePlainText, meta, "empty response data")
	}

	switch {
	case isJSON(resp.MediaType):
		return c.classifyJSON(resp.Body, meta)
	case isMarkup(resp.MediaType):
		return c.classifyHTML(resp.Body, meta)
	default:
		return c.finish(string(resp.Body), model.ContentTypePlainText, meta)
	}
}

func (c *Classifier) classifyJSON(body []byte, meta model.Metadata) model.ScrapedContent {
	var buf bytes.Buffer
	if err := json.Compact(&buf, bytes.TrimSpace(body)); err != nil {
		return failed(model.ContentTypeStructured, meta, "invalid JSON payload: "+err.Error())
	}
	return c.finish(buf.String(), model.ContentTypeStructured, meta)
}

func (c *Classifier) classifyHTML(body []byte, meta model.Metadata) model.ScrapedContent {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return failed(model.ContentTypeMarkup, meta, "failed to parse HTML: "+err.Error())
	}

	meta.Title = collapseWhitespace(doc.Find("title").First().Text())
	doc.Find("meta[name]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		name, _ := s.Attr("name")
		if !strings.EqualFold(name, "description") {
			return true
		}
		content, _ := s.Attr("content")
		meta.Description = collapseWhitespace(content)
		return false
	})
	meta.Links = absoluteLinks(doc)

	doc.Find("script, style, iframe, noscript, meta").Remove()
	text := collapseWhitespace(doc.Find("body").Text())

	meta.Language = detectLanguage(meta.Title, meta.Description, text)
	return c.finish(text, model.ContentTypeMarkup, meta)
}

func (c *Classifier) finish(content string, contentType model.ContentType, meta model.Metadata) model.ScrapedContent {
	switch {
	case len(content) == 0:
		return failed(contentType, meta, "empty content")
	case len(content) >= c.maxContentLength:
		return failed(contentType, meta, "content exceeds maximum length")
	}
	return model.ScrapedContent{
		Content:     content,
		ContentType: contentType,
		Metadata:    meta,
		Success:     true,
	}
}

func failed(contentType model.ContentType, meta model.Metadata, msg string) model.ScrapedContent {
	return model.ScrapedContent{
		ContentType: contentType,
		Metadata:    meta,
		Error:       msg,
	}
}

// absoluteLinks returns the distinct http(s) links of the document in
// document order.
func absoluteLinks(doc *goquery.Document) []string {
	seen := make(map[string]bool)
	var links []string
	doc.Find(`a[href^="http"]`).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || seen[href] {
			return
		}
		seen[href] = true
		links = append(links, href)
	})
	return links
}

// detectLanguage returns the ISO 639-3 code of the page language, or ""
// when there is nothing to detect.
func detectLanguage(title, description, text string) string {
	words := strings.Fields(text)
	if len(words) > languageSampleWords {
		words = words[:languageSampleWords]
	}
	sample := strings.TrimSpace(title + " " + description + " " + strings.Join(words, " "))
	if sample == "" {
		return ""
	}
	return whatlanggo.Detect(sample).Lang.Iso6393()
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func isJSON(mediaType string) bool {
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

func isMarkup(mediaType string) bool {
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}
