// Package render formats TOC trees and delta reports for the terminal and
// for machine consumption.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"mddelta/internal/delta"
	"mddelta/internal/toc"
)

// Renderer holds the output styles. With color disabled every style is a
// no-op, so the same code path produces plain text.
type Renderer struct {
	heading  lipgloss.Style
	slug     lipgloss.Style
	added    lipgloss.Style
	removed  lipgloss.Style
	modified lipgloss.Style
	moved    lipgloss.Style
	dim      lipgloss.Style
	banner   lipgloss.Style
	color    bool
}

// NewRenderer builds a Renderer; pass color=false for plain output.
func NewRenderer(color bool) *Renderer {
	r := &Renderer{color: color}
	if !color {
		return r
	}
	r.heading = lipgloss.NewStyle().Bold(true)
	r.slug = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	r.added = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	r.removed = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	r.modified = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	r.moved = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	r.dim = lipgloss.NewStyle().Faint(true)
	r.banner = lipgloss.NewStyle().Bold(true).Padding(0, 1).Border(lipgloss.RoundedBorder())
	return r
}

// Toc renders the heading hierarchy as a tree with slugs and line numbers.
func (r *Renderer) Toc(t *toc.MarkdownToc) string {
	var sb strings.Builder
	if t.Title != "" {
		sb.WriteString(r.heading.Render(t.Title) + "\n")
	}
	for i, f := range t.Structure {
		r.renderNode(&sb, f, "", i == len(t.Structure)-1)
	}
	sb.WriteString(r.dim.Render(fmt.Sprintf("%d headings, levels %d-%d",
		t.HeadingCount(), t.RootLevel(), t.MaxLevel())) + "\n")
	if broken := t.BrokenLinks(); len(broken) > 0 {
		sb.WriteString(r.removed.Render(fmt.Sprintf("%d broken internal links", len(broken))) + "\n")
		for _, l := range broken {
			sb.WriteString("  " + r.removed.Render("#"+l.Target) +
				r.dim.Render(fmt.Sprintf(" (line %d)", l.Line)) + "\n")
		}
	}
	return sb.String()
}

func (r *Renderer) renderNode(sb *strings.Builder, n *toc.TocNode, prefix string, last bool) {
	connector := "├── "
	childPrefix := prefix + "│   "
	if last {
		connector = "└── "
		childPrefix = prefix + "    "
	}
	sb.WriteString(prefix + connector + r.heading.Render(n.Title) +
		r.slug.Render(" #"+n.Slug) +
		r.dim.Render(fmt.Sprintf(" (H%d, line %d)", n.Level, n.Lines.Start)) + "\n")
	for i, c := range n.Children {
		r.renderNode(sb, c, childPrefix, i == len(n.Children)-1)
	}
}

// Delta renders the full change report. The updated TOC supplies code-block
// content so changed blocks can be shown highlighted.
func (r *Renderer) Delta(d *delta.MarkdownDelta, updated *toc.MarkdownToc) string {
	var sb strings.Builder
	sb.WriteString(r.classBanner(d.Classification) + "\n")
	sb.WriteString(r.dim.Render(d.Summary()) + "\n")
	s := d.Stats
	sb.WriteString(r.dim.Render(fmt.Sprintf("bytes changed: %d of %d (ratio %.2f)",
		s.BytesChanged, maxInt(s.OriginalBytes, s.NewBytes), s.ContentChangeRatio)) + "\n")

	for _, c := range d.SectionChanges {
		switch c.Kind {
		case delta.ChangeAdded:
			sb.WriteString(r.added.Render("+ "+pathLabel(c.Path)) + r.lineRef(0, c.NewLine) + "\n")
		case delta.ChangeRemoved:
			sb.WriteString(r.removed.Render("- "+pathLabel(c.Path)) + r.lineRef(c.OriginalLine, 0) + "\n")
		case delta.ChangeWhitespaceOnly:
			sb.WriteString(r.dim.Render("~ "+pathLabel(c.Path)+" (whitespace only)") + "\n")
		default:
			sb.WriteString(r.modified.Render("~ "+pathLabel(c.Path)) +
				r.lineRef(c.OriginalLine, c.NewLine) +
				r.dim.Render(fmt.Sprintf(" %d bytes", c.Bytes)) + "\n")
		}
	}

	for _, m := range d.MovedSections {
		label := fmt.Sprintf("> %s -> %s", pathLabel(m.OriginalPath), pathLabel(m.NewPath))
		sb.WriteString(r.moved.Render(label))
		switch {
		case m.WasPromoted():
			sb.WriteString(r.dim.Render(fmt.Sprintf(" (promoted %d)", -m.LevelDelta)))
		case m.WasDemoted():
			sb.WriteString(r.dim.Render(fmt.Sprintf(" (demoted %d)", m.LevelDelta)))
		case m.WasRenamed():
			sb.WriteString(r.dim.Render(" (renamed)"))
		case m.WasReordered():
			sb.WriteString(r.dim.Render(" (reordered)"))
		}
		sb.WriteString("\n")
	}

	for _, fc := range d.FrontmatterChanges {
		switch fc.Kind {
		case delta.PropertyAdded:
			sb.WriteString(r.added.Render(fmt.Sprintf("+ frontmatter %s: %s", fc.Key, fc.NewValue)) + "\n")
		case delta.PropertyRemoved:
			sb.WriteString(r.removed.Render(fmt.Sprintf("- frontmatter %s", fc.Key)) + "\n")
		default:
			sb.WriteString(r.modified.Render(fmt.Sprintf("~ frontmatter %s: %s -> %s",
				fc.Key, fc.OldValue, fc.NewValue)) + "\n")
		}
	}
	if d.Stats.FrontmatterFormattingOnly {
		sb.WriteString(r.dim.Render("~ frontmatter (formatting only)") + "\n")
	}

	for _, cb := range d.CodeBlockChanges {
		r.renderCodeBlockChange(&sb, cb, updated)
	}

	for _, bl := range d.BrokenLinks {
		line := r.removed.Render(fmt.Sprintf("! broken link #%s", bl.Target)) +
			r.dim.Render(fmt.Sprintf(" (line %d)", bl.Line))
		if bl.SuggestedReplacement != "" {
			line += r.added.Render(" suggest #" + bl.SuggestedReplacement)
		}
		sb.WriteString(line + "\n")
	}

	return sb.String()
}

const snippetLines = 6

func (r *Renderer) renderCodeBlockChange(sb *strings.Builder, cb delta.CodeBlockChange, updated *toc.MarkdownToc) {
	label := pathLabel(cb.SectionPath)
	switch cb.Kind {
	case delta.CodeBlockAdded:
		sb.WriteString(r.added.Render(fmt.Sprintf("+ code block (%s) in %s", cb.Language, label)) + "\n")
	case delta.CodeBlockRemoved:
		sb.WriteString(r.removed.Render(fmt.Sprintf("- code block (%s) in %s", cb.Language, label)) + "\n")
	case delta.CodeBlockLanguageChanged:
		sb.WriteString(r.modified.Render(fmt.Sprintf("~ code block language %s -> %s in %s",
			cb.OldLanguage, cb.Language, label)) + "\n")
		return
	default:
		sb.WriteString(r.modified.Render(fmt.Sprintf("~ code block (%s) in %s", cb.Language, label)) + "\n")
	}
	if updated == nil || cb.NewLine == 0 {
		return
	}
	if content := blockContentAt(updated, cb.NewLine); content != "" {
		snippet := headLines(content, snippetLines)
		if r.color {
			snippet = Highlight(cb.Language, snippet)
		}
		for _, l := range strings.Split(strings.TrimRight(snippet, "\n"), "\n") {
			sb.WriteString("    " + l + "\n")
		}
	}
}

func blockContentAt(t *toc.MarkdownToc, line int) string {
	for _, b := range t.CodeBlocks {
		if b.Lines.Start == line {
			return b.Content
		}
	}
	return ""
}

func headLines(s string, n int) string {
	lines := strings.SplitAfter(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[:n], "")
}

func (r *Renderer) classBanner(c delta.DocumentChange) string {
	label := strings.ReplaceAll(c.String(), "_", " ")
	if !r.color {
		return label
	}
	style := r.banner
	switch c {
	case delta.NoChange, delta.WhitespaceOnly, delta.FrontmatterOnly, delta.FrontmatterAndWhitespace:
		style = style.BorderForeground(lipgloss.Color("8"))
	case delta.StructuralOnly, delta.ContentMinor:
		style = style.BorderForeground(lipgloss.Color("10"))
	case delta.ContentModerate:
		style = style.BorderForeground(lipgloss.Color("11"))
	default:
		style = style.BorderForeground(lipgloss.Color("9"))
	}
	return style.Render(label)
}

func (r *Renderer) lineRef(origLine, newLine int) string {
	switch {
	case origLine > 0 && newLine > 0:
		return r.dim.Render(fmt.Sprintf(" (line %d -> %d)", origLine, newLine))
	case newLine > 0:
		return r.dim.Render(fmt.Sprintf(" (line %d)", newLine))
	case origLine > 0:
		return r.dim.Render(fmt.Sprintf(" (line %d)", origLine))
	}
	return ""
}

func pathLabel(path []string) string {
	if len(path) == 0 {
		return "(preamble)"
	}
	return strings.Join(path, " > ")
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
