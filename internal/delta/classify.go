package delta

import "encoding/json"

// DocumentChange is the overall verdict for one comparison.
type DocumentChange int

const (
	// NoChange: byte-identical body and frontmatter.
	NoChange DocumentChange = iota
	// FrontmatterOnly: the body is untouched, only frontmatter changed.
	FrontmatterOnly
	// FrontmatterAndWhitespace: frontmatter changed and the body only in
	// whitespace.
	FrontmatterAndWhitespace
	// WhitespaceOnly: every body change disappears under normalization.
	WhitespaceOnly
	// StructuralOnly: sections were added, removed or moved, but no surviving
	// section's content changed.
	StructuralOnly
	// ContentMinor through Rewritten bucket the content-change ratio.
	ContentMinor
	ContentModerate
	ContentMajor
	Rewritten
)

var documentChangeNames = map[DocumentChange]string{
	NoChange:                 "no_change",
	FrontmatterOnly:          "frontmatter_only",
	FrontmatterAndWhitespace: "frontmatter_and_whitespace",
	WhitespaceOnly:           "whitespace_only",
	StructuralOnly:           "structural_only",
	ContentMinor:             "content_minor",
	ContentModerate:          "content_moderate",
	ContentMajor:             "content_major",
	Rewritten:                "rewritten",
}

func (c DocumentChange) String() string {
	if name, ok := documentChangeNames[c]; ok {
		return name
	}
	return "unknown"
}

// MarshalJSON keeps the classification stable as a string in the JSON output.
func (c DocumentChange) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON accepts the string form written by MarshalJSON.
func (c *DocumentChange) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	for v, name := range documentChangeNames {
		if name == s {
			*c = v
			return nil
		}
	}
	*c = NoChange
	return nil
}

// ClassifyStatistics maps the body statistics to a verdict. The
// frontmatter-derived classes are applied afterwards by the engine, since
// frontmatter changes do not feed the counters. Bucket boundaries are
// inclusive of the lower bound: a ratio of exactly 0.10 is ContentModerate.
func ClassifyStatistics(s *DeltaStatistics) DocumentChange {
	structural := s.SectionsAdded + s.SectionsRemoved + s.SectionsMoved
	if s.ContentChangeRatio == 0 && structural == 0 &&
		s.SectionsModified == 0 && s.SectionsWhitespaceOnly == 0 {
		return NoChange
	}
	if s.SectionsModified == 0 && structural == 0 && s.SectionsWhitespaceOnly > 0 {
		return WhitespaceOnly
	}
	if s.SectionsModified == 0 && structural > 0 {
		return StructuralOnly
	}

	switch r := s.ContentChangeRatio; {
	case r < 0.10:
		return ContentMinor
	case r < 0.40:
		return ContentModerate
	case r < 0.80:
		return ContentMajor
	default:
		return Rewritten
	}
}
