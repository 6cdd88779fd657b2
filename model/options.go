package model

// CollectOptions selects which sources take part in a collection run.
type CollectOptions struct {
	Domestic    bool `json:"domestic"`
	Foreign     bool `json:"foreign"`
	Filing      bool `json:"filing"`
	DomesticMax int  `json:"domestic_max,omitempty"` // 0 means no cap
	FilingDays  int  `json:"filing_days,omitempty"`  // lookback window, 0 uses the source default
}

// Enabled reports whether the given source is requested.
func (o CollectOptions) Enabled(source SourceID) bool {
	switch source {
	case SourceDomesticListing:
		return o.Domestic
	case SourceForeignListing:
		return o.Foreign
	case SourceFiling:
		return o.Filing
	default:
		return false
	}
}

// QueryOptions represents configuration for one retrieval query.
type QueryOptions struct {
	TopK            int      `json:"top_k"`
	Category        Category `json:"category,omitempty"` // empty searches all categories
	Backend         string   `json:"backend,omitempty"`  // empty uses the engine default
	ContextBudget   int      `json:"context_budget"`     // max context size in runes
	SimilarityFloor float64  `json:"similarity_floor"`   // drop hits below this similarity
}

// DefaultQueryOptions returns a sensible default configuration
func DefaultQueryOptions() QueryOptions {
	return QueryOptions{
		TopK:            5,
		ContextBudget:   6000,
		SimilarityFloor: 0,
	}
}
