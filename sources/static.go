package sources

import "context"

// Static clients serve fixed data from memory. They are used in tests and
// examples, and as a stand-in while a real feed client is not configured.

// StaticDomesticClient serves a fixed set of domestic listings.
type StaticDomesticClient struct {
	Items []DomesticListing
	Err   error
}

// Listings returns the fixed items, capped at max when max is positive.
func (c *StaticDomesticClient) Listings(ctx context.Context, max int) ([]DomesticListing, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	if max > 0 && max < len(c.Items) {
		return c.Items[:max], nil
	}
	return c.Items, nil
}

// StaticForeignClient serves a fixed set of foreign quotes.
type StaticForeignClient struct {
	Items []ForeignQuote
	Err   error
}

// Quotes returns the fixed items.
func (c *StaticForeignClient) Quotes(ctx context.Context) ([]ForeignQuote, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	return c.Items, nil
}

// StaticFilingClient serves a fixed set of filings.
type StaticFilingClient struct {
	Items []Filing
	Err   error

	// LastDaysBack records the lookback the collector asked for.
	LastDaysBack int
}

// Filings returns the fixed items.
func (c *StaticFilingClient) Filings(ctx context.Context, daysBack int) ([]Filing, error) {
	c.LastDaysBack = daysBack
	if c.Err != nil {
		return nil, c.Err
	}
	return c.Items, nil
}
