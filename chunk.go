package biorag

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultChunkSize is the default chunk budget in characters.
const DefaultChunkSize = 1000

// Chunk represents a bounded slice of a document's text prepared for embedding.
type Chunk struct {
	DocumentID string `json:"documentId"`
	Index      int    `json:"index"`
	Offset     int    `json:"offset"` // byte offset into Document.Content
	Content    string `json:"content"`
}

// SplitText splits text into chunks of at most size characters.
// Sentences are kept whole and packed into a chunk until the next one would
// overflow it; a sentence longer than size is cut at word boundaries where
// possible. Every chunk's Content is found verbatim at its Offset in text.
func SplitText(text string, size int) []Chunk {
	if size <= 0 {
		size = DefaultChunkSize
	}

	var chunks []Chunk
	emit := func(s span) {
		content := strings.TrimRightFunc(text[s.start:s.end], unicode.IsSpace)
		if content == "" {
			return
		}
		chunks = append(chunks, Chunk{
			Index:   len(chunks),
			Offset:  s.start,
			Content: content,
		})
	}

	cur := span{start: -1}
	for _, s := range sentenceSpans(text) {
		if utf8.RuneCountInString(text[s.start:s.end]) > size {
			if cur.start >= 0 {
				emit(cur)
				cur = span{start: -1}
			}
			for _, piece := range hardSplit(text, s, size) {
				emit(piece)
			}
			continue
		}
		if cur.start >= 0 && utf8.RuneCountInString(text[cur.start:s.end]) > size {
			emit(cur)
			cur = span{start: -1}
		}
		if cur.start < 0 {
			cur.start = s.start
		}
		cur.end = s.end
	}
	if cur.start >= 0 {
		emit(cur)
	}

	return chunks
}

// span is a half-open byte range [start, end) of a text.
type span struct {
	start, end int
}

// sentenceSpans returns the sentences of text. A sentence starts at a
// non-space rune and ends after a terminator followed by whitespace, after a
// line break, or at the end of the text.
func sentenceSpans(text string) []span {
	var spans []span
	start := -1
	for i, r := range text {
		if start < 0 {
			if unicode.IsSpace(r) {
				continue
			}
			start = i
		}
		next := i + utf8.RuneLen(r)
		switch r {
		case '\n':
			spans = append(spans, span{start, next})
			start = -1
		case '.', '!', '?':
			if next >= len(text) || isSpaceAt(text, next) {
				spans = append(spans, span{start, next})
				start = -1
			}
		}
	}
	if start >= 0 {
		spans = append(spans, span{start, len(text)})
	}
	return spans
}

func isSpaceAt(text string, i int) bool {
	r, _ := utf8.DecodeRuneInString(text[i:])
	return unicode.IsSpace(r)
}

// hardSplit cuts s into pieces of at most size runes, preferring to cut
// after whitespace in the second half of each window.
func hardSplit(text string, s span, size int) []span {
	var pieces []span
	start := s.start
	for start < s.end {
		// Skip whitespace so every piece starts on content.
		for start < s.end && isSpaceAt(text, start) {
			_, w := utf8.DecodeRuneInString(text[start:])
			start += w
		}
		if start >= s.end {
			break
		}

		end, count, lastSpace := start, 0, -1
		for end < s.end && count < size {
			r, w := utf8.DecodeRuneInString(text[end:])
			end += w
			count++
			if unicode.IsSpace(r) && count > size/2 {
				lastSpace = end
			}
		}
		if end < s.end && lastSpace > 0 {
			end = lastSpace
		}

		pieces = append(pieces, span{start, end})
		start = end
	}
	return pieces
}
