package model

// ContentType identifies how fetched content was classified.
type ContentType string

const (
	// ContentTypeStructured is JSON data re-serialized as compact text.
	ContentTypeStructured ContentType = "structured-data"

	// ContentTypeMarkup is text extracted from an HTML document.
	ContentTypeMarkup ContentType = "markup"

	// ContentTypePlainText is any other textual payload.
	ContentTypePlainText ContentType = "plain-text"

	// ContentTypeMarkdown is markdown text. The classifier never produces it,
	// but the sanitizer accepts it.
	ContentTypeMarkdown ContentType = "markdown"
)

// String returns the wire name of the content type.
func (c ContentType) String() string {
	return string(c)
}

// Metadata is the page information collected next to the scraped text.
type Metadata struct {
	// Title is the document title, when the page is HTML.
	Title string `json:"title,omitempty"`

	// Description is the content of <meta name="description">.
	Description string `json:"description,omitempty"`

	// Links are the absolute http(s) links found on the page.
	Links []string `json:"links,omitempty"`

	// Language is the ISO 639-3 code detected from the page text.
	Language string `json:"language,omitempty"`

	// StatusCode is the HTTP status of the fetch.
	StatusCode int `json:"statusCode"`

	// ContentLength is the size of the response body in bytes.
	ContentLength int64 `json:"contentLength"`

	// LastModified is the raw Last-Modified response header.
	LastModified string `json:"lastModified,omitempty"`

	// MediaType is the parsed Content-Type media type, e.g. "text/html".
	MediaType string `json:"mediaType,omitempty"`
}

// ScrapedContent is the result of classifying one fetched response.
type ScrapedContent struct {
	Content     string      `json:"content"`
	ContentType ContentType `json:"contentType"`
	Metadata    Metadata    `json:"metadata"`
	Success     bool        `json:"success"`
	Error       string      `json:"error,omitempty"`
}
