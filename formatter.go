package biorag

import (
	"strconv"
	"strings"
)

// FormatPassages formats retrieved passages for an LLM prompt.
// Each passage is numbered and headed by its title (falling back to the
// source URL) and its source URL. Passages are separated by blank lines.
func FormatPassages(results []SearchResult) string {
	if len(results) == 0 {
		return ""
	}

	parts := make([]string, 0, len(results))
	for i, res := range results {
		rec := res.Record
		header := rec.Title
		if header == "" {
			header = rec.SourceURL
		}
		parts = append(parts, "## Excerpt "+strconv.Itoa(i+1)+": "+header+
			"\nSource: "+rec.SourceURL+"\n"+rec.Content)
	}

	return strings.Join(parts, "\n\n")
}

// Citations maps retrieved passages to the list of sources they came from.
// Each source URL appears once, in retrieval order.
func Citations(results []SearchResult) []Citation {
	seen := make(map[string]bool, len(results))
	citations := make([]Citation, 0, len(results))
	for _, res := range results {
		rec := res.Record
		if seen[rec.SourceURL] {
			continue
		}
		seen[rec.SourceURL] = true
		citations = append(citations, Citation{
			URL:        rec.SourceURL,
			Title:      rec.Title,
			SourceType: rec.SourceType,
		})
	}
	return citations
}

// BuildPrompt builds the user prompt asking the model to answer question
// in the voice of person, grounded in the retrieved passages.
func BuildPrompt(person, question string, results []SearchResult) string {
	var b strings.Builder
	b.WriteString("Based on the following excerpts about " + person +
		", answer the question as if you are " + person + ".\n")
	b.WriteString("Speak in the first person, as in a conversation with the user, " +
		"and base your answer on the excerpts as much as possible. " +
		"If the excerpts do not cover the question, say so.\n\n")
	b.WriteString("Excerpts:\n\n")
	b.WriteString(FormatPassages(results))
	b.WriteString("\n\nQuestion: " + question + "\n\nAnswer:")
	return b.String()
}
