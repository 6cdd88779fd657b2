package model

// RetrievedDocument is one search hit with its similarity score.
type RetrievedDocument struct {
	Document   *Document `json:"document"`
	Similarity float64   `json:"similarity"`
}

// QueryResult is the ephemeral answer to one question. Sources lists all
// retrieved documents in rank order; NumSources counts only the documents that
// actually fit into the generation context, which can be fewer when the
// context budget truncates the tail.
type QueryResult struct {
	Question         string              `json:"question"`
	Answer           string              `json:"answer"`
	Sources          []RetrievedDocument `json:"sources"`
	NumSources       int                 `json:"num_sources"`
	Backend          string              `json:"backend"`
	GenerationFailed bool                `json:"generation_failed"`
}

// Status is the read-only health view: store size plus the last run summary.
type Status struct {
	DocumentCount int            `json:"document_count"`
	LastRun       *CollectionRun `json:"last_run,omitempty"`
}
