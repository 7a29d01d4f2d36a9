// Package scrape fetches product pages and turns them into clean text.
//
// # Components
//
//   - Validator: checks that a URL is well formed and answers a HEAD request
//   - Fetcher: GETs a page with a rotating user agent and proxy, bounded in
//     time and size, after admitting the request through the domain throttle
//   - Classifier: turns a response into structured-data, markup or
//     plain-text content and collects page metadata
//   - Sanitizer: removes unsafe markup or characters according to the
//     content type
//
// A typical flow:
//
//	resp, err := fetcher.Fetch(ctx, target)
//	content := classifier.Classify(resp)
//	clean := sanitizer.Sanitize(content.Content, content.ContentType)
package scrape
