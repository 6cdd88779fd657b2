// Package sources adapts the upstream market data feeds to the ingestion
// contract. Each collector wraps a narrow client interface so the network
// layer can be swapped for a static client in tests and examples.
package sources

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/siherrmann/etfrag/core/ingest"
	"github.com/siherrmann/etfrag/helper"
	"github.com/siherrmann/etfrag/model"
)

// DomesticListing is one ETF observed on the domestic market feed.
type DomesticListing struct {
	Code        string
	Name        string
	Price       string
	NAV         string
	Description string
	Details     map[string]string
}

// DomesticClient fetches domestic ETF listings. A max of 0 means no cap.
type DomesticClient interface {
	Listings(ctx context.Context, max int) ([]DomesticListing, error)
}

// DomesticCollector turns domestic listings into ingestion candidates keyed
// by ETF code.
type DomesticCollector struct {
	client DomesticClient
}

// NewDomesticCollector creates the domestic listing collector.
func NewDomesticCollector(client DomesticClient) (*DomesticCollector, error) {
	if client == nil {
		return nil, helper.NewError("create domestic collector", fmt.Errorf("%w: client required", model.ErrInvalidArgument))
	}
	return &DomesticCollector{client: client}, nil
}

// ID identifies the source.
func (c *DomesticCollector) ID() model.SourceID {
	return model.SourceDomesticListing
}

// Collect fetches the current listings and formats them for the store.
func (c *DomesticCollector) Collect(ctx context.Context, options model.CollectOptions) ([]ingest.Candidate, error) {
	listings, err := c.client.Listings(ctx, options.DomesticMax)
	if err != nil {
		return nil, helper.NewError("collect domestic listings", err)
	}

	now := time.Now()
	candidates := make([]ingest.Candidate, 0, len(listings))
	for _, listing := range listings {
		if listing.Code == "" {
			continue
		}
		candidates = append(candidates, ingest.Candidate{
			Source:     model.SourceDomesticListing,
			NaturalKey: listing.Code,
			Name:       listing.Name,
			Category:   model.CategoryDomestic,
			Content:    formatDomesticListing(listing),
			Metadata: model.Metadata{
				"code":  listing.Code,
				"price": listing.Price,
				"nav":   listing.NAV,
			},
			CollectedAt: now,
		})
	}
	return candidates, nil
}

// formatDomesticListing renders the listing as the text that gets embedded.
// Detail rows are sorted so the same listing always renders identically.
func formatDomesticListing(listing DomesticListing) string {
	parts := []string{
		fmt.Sprintf("ETF 이름: %s", valueOrNA(listing.Name)),
		fmt.Sprintf("ETF 코드: %s", valueOrNA(listing.Code)),
		fmt.Sprintf("현재가: %s원", valueOrNA(listing.Price)),
		fmt.Sprintf("NAV: %s원", valueOrNA(listing.NAV)),
		fmt.Sprintf("\n설명: %s", valueOrNA(listing.Description)),
	}

	if len(listing.Details) > 0 {
		parts = append(parts, "\n상세 정보:")
		keys := make([]string, 0, len(listing.Details))
		for key := range listing.Details {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			parts = append(parts, fmt.Sprintf("- %s: %s", key, listing.Details[key]))
		}
	}

	return strings.Join(parts, "\n")
}

func valueOrNA(value string) string {
	if value == "" {
		return "N/A"
	}
	return value
}
