package toc

// BuildInput is the parser-facing contract of the builder: an ordered heading
// event stream with spans, the raw body text, and the inventories the delta
// engine consumes later. The builder never re-parses Markdown.
type BuildInput struct {
	// Body is the document text with frontmatter removed. All byte spans in
	// the heading events index into Body.
	Body string

	// FrontmatterRaw is the raw frontmatter text, empty when absent.
	FrontmatterRaw string
	// FrontmatterCanonical is the key-order-independent re-encoding of the
	// frontmatter, empty when absent.
	FrontmatterCanonical string
	// Title is the frontmatter title property, empty when absent.
	Title string

	// BodyStartLine is the 1-based line of the first body line, after any
	// frontmatter block.
	BodyStartLine int

	Headings   []HeadingEvent
	CodeBlocks []CodeBlockInfo
	Links      []InternalLinkInfo
}

// Build assembles the hashed heading hierarchy from parsed heading events.
//
// A new top-level fragment begins at the document's first heading, whenever a
// heading's level is less than or equal to the level that began the current
// fragment, and at every H1. Within a fragment a heading at level L attaches
// to the nearest open ancestor with a shallower level; any open node at level
// L or deeper is closed first. Subtree hashes are computed in one post-order
// pass after the whole tree is assembled.
func Build(in BuildInput) (*MarkdownToc, error) {
	for _, h := range in.Headings {
		if h.Level < 1 || h.Level > 6 {
			return nil, &TocError{Title: h.Title, Level: h.Level, Line: h.Lines.Start}
		}
	}

	if in.BodyStartLine < 1 {
		in.BodyStartLine = 1
	}

	t := &MarkdownToc{
		Title:           in.Title,
		PageHash:        Hash(in.Body, 0),
		PageHashTrimmed: Hash(in.Body, BlockTrimming),
		HasFrontmatter:  in.FrontmatterRaw != "",
		CodeBlocks:      in.CodeBlocks,
		InternalLinks:   in.Links,
		BodyBytes:       len(in.Body),
	}
	if t.HasFrontmatter {
		t.FrontmatterHash = Hash(in.FrontmatterRaw, 0)
		t.FrontmatterHashNormalized = Hash(in.FrontmatterCanonical, 0)
	}

	t.Preamble, t.Structure = buildStructure(in)

	if t.Title == "" {
		t.Title = singleH1Title(t.Structure)
	}

	for _, f := range t.Structure {
		computeSubtreeHashes(f)
	}

	t.SlugIndex = buildSlugIndex(t.Structure)
	resolveCodeBlockSections(t)
	return t, nil
}

func buildStructure(in BuildInput) (*PreludeNode, []*TocNode) {
	var preamble *PreludeNode
	if len(in.Headings) == 0 {
		preamble = newPrelude(in.Body, Span{Start: 0, End: len(in.Body)}, LineRange{
			Start: in.BodyStartLine,
			End:   in.BodyStartLine + lineCount(in.Body) - 1,
		})
		return preamble, nil
	}

	first := in.Headings[0]
	if first.Span.Start > 0 {
		preamble = newPrelude(in.Body[:first.Span.Start], Span{Start: 0, End: first.Span.Start}, LineRange{
			Start: in.BodyStartLine,
			End:   first.Lines.Start - 1,
		})
	}

	var fragments []*TocNode
	var stack []*TocNode

	for i, h := range in.Headings {
		node := &TocNode{
			Level:            h.Level,
			Title:            h.Title,
			TitleHash:        Hash(h.Title, 0),
			TitleHashTrimmed: Hash(h.Title, BlockTrimming),
			Slug:             h.Slug,
			Span:             h.Span,
			Lines:            h.Lines,
			Prelude:          preludeFor(in, i),
		}

		// Close every open node at this level or deeper. Emptying the stack
		// starts a new fragment; an H1 always empties it because the fragment
		// root carries the shallowest open level.
		for len(stack) > 0 && stack[len(stack)-1].Level >= h.Level {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			fragments = append(fragments, node)
		} else {
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, node)
		}
		stack = append(stack, node)
	}
	return preamble, fragments
}

// preludeFor extracts the text between heading i and the next heading (or
// end of document). Whitespace-only preludes come back nil.
func preludeFor(in BuildInput, i int) *PreludeNode {
	h := in.Headings[i]
	start := h.Span.End
	end := len(in.Body)
	endLine := in.BodyStartLine + lineCount(in.Body) - 1
	if i+1 < len(in.Headings) {
		next := in.Headings[i+1]
		end = next.Span.Start
		endLine = next.Lines.Start - 1
	}
	if start >= end {
		return nil
	}
	return newPrelude(in.Body[start:end], Span{Start: start, End: end}, LineRange{
		Start: h.Lines.End + 1,
		End:   endLine,
	})
}

func computeSubtreeHashes(n *TocNode) string {
	content := n.PreludeContent()
	for _, c := range n.Children {
		content += computeSubtreeHashes(c)
	}
	n.SubtreeHash = Hash(content, 0)
	n.SubtreeHashTrimmed = Hash(content, BlockTrimming)
	return content
}

func buildSlugIndex(fragments []*TocNode) map[string][]SlugRef {
	index := make(map[string][]SlugRef)
	var visit func(n *TocNode, path []string)
	visit = func(n *TocNode, path []string) {
		path = append(path, n.Title)
		ref := SlugRef{Path: append([]string(nil), path...), Line: n.Lines.Start}
		index[n.Slug] = append(index[n.Slug], ref)
		for _, c := range n.Children {
			visit(c, path)
		}
	}
	for _, f := range fragments {
		visit(f, nil)
	}
	return index
}

// resolveCodeBlockSections attaches each code block to the deepest section
// whose heading precedes it, and hashes its content. Blocks before the first
// heading keep an empty path (they belong to the preamble).
func resolveCodeBlockSections(t *MarkdownToc) {
	type located struct {
		line int
		path []string
	}
	var headings []located
	var visit func(n *TocNode, path []string)
	visit = func(n *TocNode, path []string) {
		path = append(path, n.Title)
		headings = append(headings, located{line: n.Lines.Start, path: append([]string(nil), path...)})
		for _, c := range n.Children {
			visit(c, path)
		}
	}
	for _, f := range t.Structure {
		visit(f, nil)
	}

	for i := range t.CodeBlocks {
		b := &t.CodeBlocks[i]
		b.ContentHash = Hash(b.Content, 0)
		b.SectionPath = []string{}
		for _, h := range headings {
			if h.line <= b.Lines.Start {
				b.SectionPath = h.path
			} else {
				break
			}
		}
	}
}

func singleH1Title(fragments []*TocNode) string {
	title := ""
	count := 0
	for _, f := range fragments {
		f.walk(func(n *TocNode) {
			if n.Level == 1 {
				count++
				title = n.Title
			}
		})
	}
	if count == 1 {
		return title
	}
	return ""
}

func lineCount(s string) int {
	if s == "" {
		return 1
	}
	n := 1
	for _, r := range s {
		if r == '\n' {
			n++
		}
	}
	return n
}
