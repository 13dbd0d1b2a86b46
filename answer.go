package biorag

import "context"

// Answer is the synthesized reply to a question together with the sources
// the reply was conditioned on.
type Answer struct {
	Text    string     `json:"text"`
	Sources []Citation `json:"sources"`
}

// Citation identifies a source page used for an answer.
type Citation struct {
	URL        string     `json:"url"`
	Title      string     `json:"title"`
	SourceType SourceType `json:"sourceType"`
}

// SourceURLs returns the URLs of the answer's citations.
func (a *Answer) SourceURLs() []string {
	urls := make([]string, 0, len(a.Sources))
	for _, c := range a.Sources {
		urls = append(urls, c.URL)
	}
	return urls
}

// Answerer answers natural language questions about a person.
type Answerer interface {
	// Answer answers a question using the person's indexed sources.
	// Returns EINVALID if the person or question is empty.
	Answer(ctx context.Context, person, question string) (*Answer, error)
}
