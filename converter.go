package biorag

// Converter converts extracted HTML into the text stored for a document.
type Converter interface {
	// Convert transforms HTML content into text.
	// The input should be clean HTML (e.g., from an Extractor).
	Convert(html string) (string, error)
}
