// Package delta correlates two MarkdownToc trees and reports the structured
// difference between them: added, removed, modified and moved sections,
// frontmatter and code-block changes, broken internal links, and a single
// change-magnitude classification.
package delta

import (
	"fmt"
	"strings"
)

// ChangeKind labels one section-level content change.
type ChangeKind string

const (
	ChangeModified       ChangeKind = "modified"
	ChangeWhitespaceOnly ChangeKind = "whitespace_only"
	ChangeAdded          ChangeKind = "added"
	ChangeRemoved        ChangeKind = "removed"
)

// ContentChange is one per-section change record. An empty path refers to the
// document preamble.
type ContentChange struct {
	Kind         ChangeKind `json:"kind"`
	Path         []string   `json:"path"`
	OriginalLine int        `json:"original_line,omitempty"`
	NewLine      int        `json:"new_line,omitempty"`
	Bytes        int        `json:"bytes"`
}

// MoveKind labels how a section moved between the two trees.
type MoveKind string

const (
	// MoveReordered: same parent, same level; the section only changed
	// position among its siblings (or was renamed in place).
	MoveReordered MoveKind = "reordered"
	// MoveSameLevel: different parent, unchanged heading level.
	MoveSameLevel MoveKind = "same_level"
	// MoveDifferentLevel: the heading level changed (promotion or demotion).
	MoveDifferentLevel MoveKind = "different_level"
)

// MovedSection records a section whose content survived unchanged at a new
// structural position. Each record carries enough of both positions to be
// rendered on its own.
type MovedSection struct {
	OriginalPath []string `json:"original_path"`
	NewPath      []string `json:"new_path"`
	OriginalLine int      `json:"original_line"`
	NewLine      int      `json:"new_line"`
	// LevelDelta is new level minus original level: negative means the
	// section was promoted to a shallower level, positive demoted.
	LevelDelta int      `json:"level_delta"`
	Kind       MoveKind `json:"kind"`
}

func (m MovedSection) WasPromoted() bool  { return m.LevelDelta < 0 }
func (m MovedSection) WasDemoted() bool   { return m.LevelDelta > 0 }
func (m MovedSection) WasReordered() bool { return m.Kind == MoveReordered }

// WasRenamed reports a section that stayed under the same parent but changed
// its heading text.
func (m MovedSection) WasRenamed() bool {
	if len(m.OriginalPath) == 0 || len(m.OriginalPath) != len(m.NewPath) {
		return false
	}
	for i := 0; i < len(m.OriginalPath)-1; i++ {
		if m.OriginalPath[i] != m.NewPath[i] {
			return false
		}
	}
	return m.OriginalPath[len(m.OriginalPath)-1] != m.NewPath[len(m.NewPath)-1]
}

// BrokenLink is an internal link in the updated document whose target slug no
// longer resolves. A replacement is suggested only when the linked heading
// was structurally matched to a surviving section; no fuzzy string matching
// is attempted, because a false suggestion is worse than none.
type BrokenLink struct {
	Target               string  `json:"target"`
	Text                 string  `json:"text"`
	Line                 int     `json:"line"`
	SuggestedReplacement string  `json:"suggested_replacement,omitempty"`
	Confidence           float64 `json:"confidence,omitempty"`
}

// CodeBlockChangeKind labels one code-block change.
type CodeBlockChangeKind string

const (
	CodeBlockAdded           CodeBlockChangeKind = "added"
	CodeBlockRemoved         CodeBlockChangeKind = "removed"
	CodeBlockModified        CodeBlockChangeKind = "modified"
	CodeBlockLanguageChanged CodeBlockChangeKind = "language_changed"
)

// CodeBlockChange records one fenced-code-block difference within a section.
type CodeBlockChange struct {
	Kind         CodeBlockChangeKind `json:"kind"`
	SectionPath  []string            `json:"section_path"`
	Language     string              `json:"language,omitempty"`
	OldLanguage  string              `json:"old_language,omitempty"`
	OriginalLine int                 `json:"original_line,omitempty"`
	NewLine      int                 `json:"new_line,omitempty"`
}

// FrontmatterChangeKind labels one frontmatter property change.
type FrontmatterChangeKind string

const (
	PropertyAdded   FrontmatterChangeKind = "property_added"
	PropertyRemoved FrontmatterChangeKind = "property_removed"
	PropertyUpdated FrontmatterChangeKind = "property_updated"
)

// FrontmatterChange records one frontmatter property difference.
type FrontmatterChange struct {
	Kind     FrontmatterChangeKind `json:"kind"`
	Key      string                `json:"key"`
	OldValue string                `json:"old_value,omitempty"`
	NewValue string                `json:"new_value,omitempty"`
}

// MarkdownDelta is the full comparison report. Created fresh per comparison,
// immutable afterwards.
type MarkdownDelta struct {
	Classification     DocumentChange      `json:"classification"`
	Stats              DeltaStatistics     `json:"statistics"`
	SectionChanges     []ContentChange     `json:"section_changes"`
	MovedSections      []MovedSection      `json:"moved_sections"`
	FrontmatterChanges []FrontmatterChange `json:"frontmatter_changes,omitempty"`
	CodeBlockChanges   []CodeBlockChange   `json:"code_block_changes,omitempty"`
	BrokenLinks        []BrokenLink        `json:"broken_links,omitempty"`
}

// IsUnchanged reports a byte-for-byte identical document body and frontmatter.
func (d *MarkdownDelta) IsUnchanged() bool {
	return d.Classification == NoChange
}

// IsCosmeticOnly reports a change limited to whitespace and frontmatter.
func (d *MarkdownDelta) IsCosmeticOnly() bool {
	switch d.Classification {
	case WhitespaceOnly, FrontmatterOnly, FrontmatterAndWhitespace:
		return true
	}
	return false
}

// HasBrokenLinks reports whether the updated document contains internal links
// that no longer resolve.
func (d *MarkdownDelta) HasBrokenLinks() bool { return len(d.BrokenLinks) > 0 }

// ChangeCount is the total number of change records in the report.
func (d *MarkdownDelta) ChangeCount() int {
	return len(d.SectionChanges) + len(d.MovedSections) +
		len(d.FrontmatterChanges) + len(d.CodeBlockChanges) + len(d.BrokenLinks)
}

// Summary renders a one-line human-readable digest of the report.
func (d *MarkdownDelta) Summary() string {
	if d.Classification == NoChange {
		return "no changes"
	}
	parts := []string{d.Classification.String()}
	s := d.Stats
	if s.SectionsModified > 0 {
		parts = append(parts, fmt.Sprintf("%d modified", s.SectionsModified))
	}
	if s.SectionsAdded > 0 {
		parts = append(parts, fmt.Sprintf("%d added", s.SectionsAdded))
	}
	if s.SectionsRemoved > 0 {
		parts = append(parts, fmt.Sprintf("%d removed", s.SectionsRemoved))
	}
	if s.SectionsMoved > 0 {
		parts = append(parts, fmt.Sprintf("%d moved", s.SectionsMoved))
	}
	if s.FrontmatterChanged {
		parts = append(parts, "frontmatter changed")
	}
	if n := len(d.BrokenLinks); n > 0 {
		parts = append(parts, fmt.Sprintf("%d broken links", n))
	}
	return strings.Join(parts, ", ")
}
