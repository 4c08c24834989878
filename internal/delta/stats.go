package delta

// DeltaStatistics aggregates the raw counters of one comparison. Computed
// once per comparison and immutable once produced; the classifier is a pure
// function over these values.
type DeltaStatistics struct {
	OriginalBytes int `json:"original_bytes"`
	NewBytes      int `json:"new_bytes"`
	// BytesChanged sums the affected span length of every modified, added and
	// removed record. Moves contribute nothing: relocated content is a
	// structural change, not a content change.
	BytesChanged int `json:"bytes_changed"`

	SectionsAdded          int `json:"sections_added"`
	SectionsRemoved        int `json:"sections_removed"`
	SectionsModified       int `json:"sections_modified"`
	SectionsMoved          int `json:"sections_moved"`
	SectionsWhitespaceOnly int `json:"sections_whitespace_only"`

	// ContentChangeRatio is BytesChanged over the larger document size, in
	// [0,1] for any sane input.
	ContentChangeRatio float64 `json:"content_change_ratio"`

	FrontmatterChanged        bool `json:"frontmatter_changed"`
	FrontmatterFormattingOnly bool `json:"frontmatter_formatting_only"`
	PreambleChanged           bool `json:"preamble_changed"`
	PreambleWhitespaceOnly    bool `json:"preamble_whitespace_only"`

	CodeBlocksAdded          int `json:"code_blocks_added"`
	CodeBlocksRemoved        int `json:"code_blocks_removed"`
	CodeBlocksModified       int `json:"code_blocks_modified"`
	CodeBlockLanguageChanges int `json:"code_block_language_changes"`

	BrokenLinkCount int `json:"broken_link_count"`
}

func (s *DeltaStatistics) finalizeRatio() {
	denom := s.OriginalBytes
	if s.NewBytes > denom {
		denom = s.NewBytes
	}
	if denom < 1 {
		denom = 1
	}
	s.ContentChangeRatio = float64(s.BytesChanged) / float64(denom)
}
