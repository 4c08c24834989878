package toc

import (
	"errors"
	"fmt"
)

// ErrInvalidHeadingLevel reports a heading event outside levels 1-6.
var ErrInvalidHeadingLevel = errors.New("invalid heading level")

// TocError is a fatal builder error caused by malformed parser input.
// The builder never repairs input; that is the parser's responsibility.
type TocError struct {
	Title string
	Level int
	Line  int
}

func (e *TocError) Error() string {
	return fmt.Sprintf("heading %q at line %d: invalid level %d", e.Title, e.Line, e.Level)
}

func (e *TocError) Unwrap() error { return ErrInvalidHeadingLevel }

// Span is a half-open byte range into the document body (frontmatter excluded).
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// LineRange is an inclusive 1-based line range in the source file.
type LineRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// HeadingEvent is one parsed heading, produced by the external parser in
// document order.
type HeadingEvent struct {
	Level int
	Title string
	Slug  string
	Span  Span
	Lines LineRange
}

// CodeBlockInfo is one fenced code block from the parser inventory. The
// builder fills in ContentHash and the resolved SectionPath.
type CodeBlockInfo struct {
	Language    string    `json:"language"`
	Info        string    `json:"info,omitempty"`
	Content     string    `json:"-"`
	ContentHash uint64    `json:"content_hash"`
	Lines       LineRange `json:"lines"`
	SectionPath []string  `json:"section_path"`
}

// InternalLinkInfo is one in-document anchor link from the parser inventory.
type InternalLinkInfo struct {
	Target string `json:"target"`
	Text   string `json:"text"`
	Line   int    `json:"line"`
	Offset int    `json:"offset"`
}

// SlugRef records one heading occurrence behind a slug.
type SlugRef struct {
	Path []string `json:"path"`
	Line int      `json:"line"`
}

// PreludeNode is the anonymous text strictly between a heading and its first
// child heading (or the next sibling/ancestor heading). A prelude whose
// content is only whitespace is represented as absent, never as an empty node.
type PreludeNode struct {
	Content               string    `json:"content"`
	ContentHash           uint64    `json:"content_hash"`
	ContentHashTrimmed    uint64    `json:"content_hash_trimmed"`
	ContentHashNormalized uint64    `json:"content_hash_normalized"`
	Span                  Span      `json:"source_span"`
	Lines                 LineRange `json:"line_range"`
}

func newPrelude(content string, span Span, lines LineRange) *PreludeNode {
	if Normalize(content, BlockTrimming) == "" {
		return nil
	}
	return &PreludeNode{
		Content:               content,
		ContentHash:           Hash(content, 0),
		ContentHashTrimmed:    Hash(content, BlockTrimming),
		ContentHashNormalized: Hash(content, LeadingWhitespace|TrailingWhitespace|BlankLine),
		Span:                  span,
		Lines:                 lines,
	}
}

// TocNode is one heading and its subtree.
type TocNode struct {
	Level            int          `json:"level"`
	Title            string       `json:"title"`
	TitleHash        uint64       `json:"title_hash"`
	TitleHashTrimmed uint64       `json:"title_hash_trimmed"`
	Slug             string       `json:"slug"`
	Span             Span         `json:"source_span"`
	Lines            LineRange    `json:"line_range"`
	Prelude          *PreludeNode `json:"prelude,omitempty"`

	// SubtreeHash digests this node's prelude content concatenated with every
	// descendant's prelude content in document order. Descendant titles are
	// not included. Recomputed once, post-order, after the tree is assembled.
	SubtreeHash        uint64 `json:"subtree_hash"`
	SubtreeHashTrimmed uint64 `json:"subtree_hash_trimmed"`

	Children []*TocNode `json:"children,omitempty"`
}

// PreludeContent returns the node's own prelude text, empty when absent.
func (n *TocNode) PreludeContent() string {
	if n.Prelude == nil {
		return ""
	}
	return n.Prelude.Content
}

// SubtreeContent concatenates the node's prelude with every descendant
// prelude in document order.
func (n *TocNode) SubtreeContent() string {
	var out string
	n.walk(func(d *TocNode) {
		out += d.PreludeContent()
	})
	return out
}

func (n *TocNode) walk(fn func(*TocNode)) {
	fn(n)
	for _, c := range n.Children {
		c.walk(fn)
	}
}

// MarkdownToc is the document-level structure: hashed heading hierarchy plus
// the inventories the delta engine consumes. Immutable after Build.
type MarkdownToc struct {
	Title                     string               `json:"title,omitempty"`
	PageHash                  uint64               `json:"page_hash"`
	PageHashTrimmed           uint64               `json:"page_hash_trimmed"`
	FrontmatterHash           uint64               `json:"frontmatter_hash"`
	FrontmatterHashNormalized uint64               `json:"frontmatter_hash_normalized"`
	HasFrontmatter            bool                 `json:"has_frontmatter"`
	Preamble                  *PreludeNode         `json:"preamble,omitempty"`
	Structure                 []*TocNode           `json:"structure"`
	CodeBlocks                []CodeBlockInfo      `json:"code_blocks,omitempty"`
	InternalLinks             []InternalLinkInfo   `json:"internal_links,omitempty"`
	SlugIndex                 map[string][]SlugRef `json:"slug_index,omitempty"`

	// BodyBytes is the byte length of the document body, frontmatter excluded.
	BodyBytes int `json:"body_bytes"`
}

// HeadingCount returns the total number of headings in the document.
func (t *MarkdownToc) HeadingCount() int {
	n := 0
	for _, f := range t.Structure {
		f.walk(func(*TocNode) { n++ })
	}
	return n
}

// RootLevel returns the shallowest heading level among top-level fragments,
// or 0 for a document without headings.
func (t *MarkdownToc) RootLevel() int {
	level := 0
	for _, f := range t.Structure {
		if level == 0 || f.Level < level {
			level = f.Level
		}
	}
	return level
}

// MaxLevel returns the deepest heading level in the document.
func (t *MarkdownToc) MaxLevel() int {
	level := 0
	for _, f := range t.Structure {
		f.walk(func(n *TocNode) {
			if n.Level > level {
				level = n.Level
			}
		})
	}
	return level
}

// FindBySlug returns the first heading with the given anchor slug.
func (t *MarkdownToc) FindBySlug(slug string) *TocNode {
	var found *TocNode
	for _, f := range t.Structure {
		f.walk(func(n *TocNode) {
			if found == nil && n.Slug == slug {
				found = n
			}
		})
		if found != nil {
			return found
		}
	}
	return nil
}

// AllHeadings returns every heading in document order.
func (t *MarkdownToc) AllHeadings() []*TocNode {
	out := make([]*TocNode, 0, t.HeadingCount())
	for _, f := range t.Structure {
		f.walk(func(n *TocNode) { out = append(out, n) })
	}
	return out
}

// BrokenLinks returns the internal links whose target slug does not resolve
// within this document.
func (t *MarkdownToc) BrokenLinks() []InternalLinkInfo {
	var out []InternalLinkInfo
	for _, l := range t.InternalLinks {
		if _, ok := t.SlugIndex[l.Target]; !ok {
			out = append(out, l)
		}
	}
	return out
}

// HasBrokenLinks reports whether any internal link fails to resolve.
func (t *MarkdownToc) HasBrokenLinks() bool { return len(t.BrokenLinks()) > 0 }
