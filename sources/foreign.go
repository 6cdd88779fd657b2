package sources

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/siherrmann/etfrag/core/ingest"
	"github.com/siherrmann/etfrag/helper"
	"github.com/siherrmann/etfrag/model"
)

// ForeignQuote is one ETF observed on the foreign market feed.
type ForeignQuote struct {
	Ticker       string
	Name         string
	Category     string
	FundFamily   string
	Price        float64
	NAV          float64
	TotalAssets  float64
	ExpenseRatio float64
	Yield        float64
	Beta         float64
	YearHigh     float64
	YearLow      float64
	Description  string
}

// ForeignClient fetches foreign ETF quotes.
type ForeignClient interface {
	Quotes(ctx context.Context) ([]ForeignQuote, error)
}

// ForeignCollector turns foreign quotes into ingestion candidates keyed by
// ticker.
type ForeignCollector struct {
	client ForeignClient
}

// NewForeignCollector creates the foreign listing collector.
func NewForeignCollector(client ForeignClient) (*ForeignCollector, error) {
	if client == nil {
		return nil, helper.NewError("create foreign collector", fmt.Errorf("%w: client required", model.ErrInvalidArgument))
	}
	return &ForeignCollector{client: client}, nil
}

// ID identifies the source.
func (c *ForeignCollector) ID() model.SourceID {
	return model.SourceForeignListing
}

// Collect fetches the current quotes and formats them for the store.
func (c *ForeignCollector) Collect(ctx context.Context, options model.CollectOptions) ([]ingest.Candidate, error) {
	quotes, err := c.client.Quotes(ctx)
	if err != nil {
		return nil, helper.NewError("collect foreign quotes", err)
	}

	now := time.Now()
	candidates := make([]ingest.Candidate, 0, len(quotes))
	for _, quote := range quotes {
		if quote.Ticker == "" {
			continue
		}
		candidates = append(candidates, ingest.Candidate{
			Source:     model.SourceForeignListing,
			NaturalKey: quote.Ticker,
			Name:       quote.Name,
			Category:   model.CategoryForeign,
			Content:    formatForeignQuote(quote),
			Metadata: model.Metadata{
				"ticker":        quote.Ticker,
				"fund_family":   quote.FundFamily,
				"price":         quote.Price,
				"nav":           quote.NAV,
				"expense_ratio": quote.ExpenseRatio,
			},
			CollectedAt: now,
		})
	}
	return candidates, nil
}

// formatForeignQuote renders the quote as the text that gets embedded.
func formatForeignQuote(quote ForeignQuote) string {
	parts := []string{
		fmt.Sprintf("ETF 이름: %s", valueOrNA(quote.Name)),
		fmt.Sprintf("티커: %s", valueOrNA(quote.Ticker)),
		fmt.Sprintf("카테고리: %s", valueOrNA(quote.Category)),
		fmt.Sprintf("펀드 제공사: %s", valueOrNA(quote.FundFamily)),
		fmt.Sprintf("\n현재가: $%.2f", quote.Price),
		fmt.Sprintf("NAV: $%.2f", quote.NAV),
		fmt.Sprintf("총 자산: $%.0f", quote.TotalAssets),
		fmt.Sprintf("보수율: %.2f%%", quote.ExpenseRatio*100),
		fmt.Sprintf("배당수익률: %.2f%%", quote.Yield*100),
		fmt.Sprintf("베타: %.2f", quote.Beta),
		fmt.Sprintf("52주 최고가: $%.2f", quote.YearHigh),
		fmt.Sprintf("52주 최저가: $%.2f", quote.YearLow),
	}

	if quote.Description != "" {
		parts = append(parts, fmt.Sprintf("\n설명: %s", quote.Description))
	}

	return strings.Join(parts, "\n")
}
