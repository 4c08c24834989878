package render

import (
	"encoding/json"
	"time"

	"mddelta/internal/delta"
	"mddelta/internal/toc"
)

// DeltaReport is the machine-readable envelope for one comparison. Field
// names and nesting are a de facto API contract for downstream tooling; they
// must stay stable.
type DeltaReport struct {
	OriginalSource string               `json:"original_source"`
	UpdatedSource  string               `json:"updated_source"`
	GeneratedAt    string               `json:"generated_at"`
	Delta          *delta.MarkdownDelta `json:"delta"`
}

// DeltaJSON encodes one comparison for --json consumers.
func DeltaJSON(originalSource, updatedSource string, d *delta.MarkdownDelta) ([]byte, error) {
	rep := DeltaReport{
		OriginalSource: originalSource,
		UpdatedSource:  updatedSource,
		GeneratedAt:    time.Now().UTC().Format(time.RFC3339),
		Delta:          d,
	}
	b, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// TocJSON encodes a table of contents for --json consumers.
func TocJSON(t *toc.MarkdownToc) ([]byte, error) {
	b, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}
