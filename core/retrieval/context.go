package retrieval

import (
	"fmt"
	"strings"

	"github.com/siherrmann/etfrag/model"
)

// NoGroundingMarker is placed into the generation context when retrieval
// found nothing. Generation still runs so the backend can say so explicitly.
const NoGroundingMarker = "No relevant documents were found in the knowledge base."

// BuildContext renders the retrieved documents into the generation context
// and returns it together with the number of documents included. Documents
// are taken in rank order; when the rune budget is reached the tail is
// dropped, never a middle document. Document numbering matches the position
// in the rendered context so citations stay stable.
func BuildContext(sources []model.RetrievedDocument, budget int) (string, int) {
	if len(sources) == 0 {
		return NoGroundingMarker, 0
	}

	var builder strings.Builder
	included := 0
	used := 0
	for _, source := range sources {
		block := formatDocument(included+1, source.Document)
		cost := len([]rune(block))
		if included > 0 {
			cost += 2 // separator
		}
		if used+cost > budget {
			break
		}
		if included > 0 {
			builder.WriteString("\n\n")
		}
		builder.WriteString(block)
		used += cost
		included++
	}

	if included == 0 {
		// Budget too small for even the best hit, fall back to the marker so
		// generation is still grounded in an explicit statement.
		return NoGroundingMarker, 0
	}

	return builder.String(), included
}

func formatDocument(number int, doc *model.Document) string {
	date := doc.CollectedAt.Format("2006-01-02")
	return fmt.Sprintf("[Document %d] %s (%s, %s)\n%s", number, doc.Name, doc.Source, date, doc.Content)
}
