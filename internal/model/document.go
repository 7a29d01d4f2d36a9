package model

// Document is one chunk of the sanitized page text.
//
// Start and End are rune offsets into the text the chunk was cut from, so
// Content equals the runes in [Start, End). Consecutive documents may
// overlap: the next Start is never after the previous End.
type Document struct {
	Index   int    `json:"index"`
	Content string `json:"content"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
}

// Len returns the number of runes in the document.
func (d Document) Len() int {
	return d.End - d.Start
}

// JoinDocuments reconstructs the original text from an ordered set of
// documents by dropping the overlapping prefix of each chunk.
func JoinDocuments(docs []Document) string {
	if len(docs) == 0 {
		return ""
	}

	out := []rune(docs[0].Content)
	for _, doc := range docs[1:] {
		runes := []rune(doc.Content)
		skip := len(out) - doc.Start
		if skip < 0 {
			skip = 0
		}
		if skip >= len(runes) {
			continue
		}
		out = append(out, runes[skip:]...)
	}
	return string(out)
}
