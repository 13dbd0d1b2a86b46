// Package biorag answers questions about historical figures using their own
// recorded words. It collects speeches, letters, essays and other primary
// sources from the web, indexes them as embeddings in a local vector store,
// and answers questions by retrieving relevant passages and handing them to
// a language model.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, gemini/, goquery/).
package biorag
