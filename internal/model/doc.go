// Package model defines the corpus data types shared across the
// retrieval, planning, and agent packages.
package model

// Doc is an immutable record in the Annals corpus, identified by its
// position in the shared doc-id space (a zero-based dense ordinal that
// every index — dense or BM25 — addresses by).
type Doc struct {
	Title string `json:"title"`
	Link  string `json:"link"`
	Text  string `json:"text"`

	// Structured metadata. Any of these may be absent (zero value).
	RowID   string `json:"row_id,omitempty"`
	ChunkID string `json:"chunk_id,omitempty"`
	King    string `json:"king,omitempty"`
	Year    string `json:"year,omitempty"`
	Month   string `json:"month,omitempty"`
	Day     string `json:"day,omitempty"`
	Book    string `json:"book,omitempty"`
	Article string `json:"article,omitempty"`
}
