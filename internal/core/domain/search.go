package domain

// SearchQuery describes one similarity query against the index.
type SearchQuery struct {
	// Text is the query text, embedded with the same model as the
	// ingested documents.
	Text string

	// Source, when non-empty, restricts results to documents whose
	// source matches exactly (after key normalisation).
	Source string

	// Author, when non-empty, restricts results to documents whose
	// author matches exactly (after key normalisation).
	Author string

	// TopK is the maximum number of results to return. Zero means the
	// configured default; values outside the configured bounds are
	// rejected with ErrTopKRange.
	TopK int
}

// SearchResult is a single search hit.
type SearchResult struct {
	ID        string  `json:"id"`
	Source    string  `json:"source"`
	Author    string  `json:"author"`
	Text      string  `json:"text"`
	CreatedAt string  `json:"created_at"`
	Score     float64 `json:"score"`
}

// SearchResponse is the ordered result set for one query.
// Count may be less than the requested TopK when filtering, the
// relevance threshold, or the overfetch budget exhaust candidates; an
// empty set is a valid response, not an error.
type SearchResponse struct {
	Query      string         `json:"query"`
	Count      int            `json:"count"`
	SearchTime string         `json:"search_time"`
	Results    []SearchResult `json:"results"`
}

// IndexStatus summarises the state of the index for status reporting.
type IndexStatus struct {
	// IndexedCount is the number of registered documents.
	IndexedCount int `json:"indexed_count"`

	// Model is the embedding model serving the index. Queries must use
	// the same model as ingestion.
	Model string `json:"model"`

	// Dimensions is the embedding vector size.
	Dimensions int `json:"dimensions"`
}
