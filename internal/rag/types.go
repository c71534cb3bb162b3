package rag

// IndexEntry is a single record in the persisted vector store.
type IndexEntry struct {
	ID        int       `json:"id"`
	Source    string    `json:"source"`
	Text      string    `json:"text"`
	Embedding []float64 `json:"embedding"`
}

// QueryResult is an IndexEntry projected with its similarity score.
type QueryResult struct {
	ID     int     `json:"id"`
	Source string  `json:"source"`
	Text   string  `json:"text"`
	Score  float64 `json:"score"`
}

// Answer is a grounded response plus the citation tags found in it.
// Citations come from model output and are not checked against the store.
type Answer struct {
	Answer    string   `json:"answer"`
	Citations []string `json:"citations"`
}
