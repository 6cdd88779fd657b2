package sources

import (
	"context"
	"fmt"
	"time"

	"github.com/siherrmann/etfrag/core/ingest"
	"github.com/siherrmann/etfrag/helper"
	"github.com/siherrmann/etfrag/model"
)

const defaultFilingDays = 30

// Filing is one regulatory disclosure observed on the filing feed.
type Filing struct {
	ReceiptNo   string
	CorpName    string
	ReportName  string
	Filer       string
	ReceiptDate string
	Content     string
}

// FilingClient fetches disclosures filed within the lookback window.
type FilingClient interface {
	Filings(ctx context.Context, daysBack int) ([]Filing, error)
}

// FilingCollector turns disclosures into ingestion candidates keyed by
// receipt number.
type FilingCollector struct {
	client FilingClient
}

// NewFilingCollector creates the filing collector.
func NewFilingCollector(client FilingClient) (*FilingCollector, error) {
	if client == nil {
		return nil, helper.NewError("create filing collector", fmt.Errorf("%w: client required", model.ErrInvalidArgument))
	}
	return &FilingCollector{client: client}, nil
}

// ID identifies the source.
func (c *FilingCollector) ID() model.SourceID {
	return model.SourceFiling
}

// Collect fetches recent disclosures and formats them for the store.
func (c *FilingCollector) Collect(ctx context.Context, options model.CollectOptions) ([]ingest.Candidate, error) {
	daysBack := options.FilingDays
	if daysBack <= 0 {
		daysBack = defaultFilingDays
	}

	filings, err := c.client.Filings(ctx, daysBack)
	if err != nil {
		return nil, helper.NewError("collect filings", err)
	}

	now := time.Now()
	candidates := make([]ingest.Candidate, 0, len(filings))
	for _, filing := range filings {
		if filing.ReceiptNo == "" {
			continue
		}
		candidates = append(candidates, ingest.Candidate{
			Source:     model.SourceFiling,
			NaturalKey: filing.ReceiptNo,
			Name:       filing.CorpName,
			Category:   model.CategoryFiling,
			Content:    formatFiling(filing),
			Metadata: model.Metadata{
				"corp_name":   filing.CorpName,
				"report_name": filing.ReportName,
				"rcept_no":    filing.ReceiptNo,
				"rcept_dt":    filing.ReceiptDate,
				"flr_nm":      filing.Filer,
			},
			CollectedAt: now,
		})
	}
	return candidates, nil
}

// formatFiling renders the disclosure as the text that gets embedded. The
// full document text is used when available, otherwise a metadata summary
// with the document link.
func formatFiling(filing Filing) string {
	if filing.Content != "" {
		return filing.Content
	}
	return fmt.Sprintf(`공시 정보

회사명: %s
보고서명: %s
공시제출인: %s
접수일자: %s
접수번호: %s

문서 링크: http://dart.fss.or.kr/dsaf001/main.do?rcpNo=%s`,
		filing.CorpName, filing.ReportName, filing.Filer, filing.ReceiptDate, filing.ReceiptNo, filing.ReceiptNo)
}
