package delta

import (
	"strings"

	"mddelta/internal/toc"
)

// linkSuggestionConfidence is attached to replacements backed by an exact
// structural match: the linked heading still exists, under a new slug.
const linkSuggestionConfidence = 0.9

// findBrokenLinks checks every internal link in the updated document against
// its own slug index. For a broken link we attempt exactly one rescue: if the
// slug resolved in the original document and that section was structurally
// matched to a surviving section, its new slug is proposed. No fuzzy matching
// across unrelated headings is attempted.
func findBrokenLinks(d *MarkdownDelta, original, updated *toc.MarkdownToc, matched map[*toc.TocNode]*toc.TocNode) {
	origByPath := make(map[string]*toc.TocNode)
	var visit func(n *toc.TocNode, path []string)
	visit = func(n *toc.TocNode, path []string) {
		path = append(path, n.Title)
		key := strings.Join(path, pathSep)
		if _, ok := origByPath[key]; !ok {
			origByPath[key] = n
		}
		for _, c := range n.Children {
			visit(c, path)
		}
	}
	for _, f := range original.Structure {
		visit(f, nil)
	}

	for _, link := range updated.InternalLinks {
		if _, ok := updated.SlugIndex[link.Target]; ok {
			continue
		}
		broken := BrokenLink{Target: link.Target, Text: link.Text, Line: link.Line}
		for _, ref := range original.SlugIndex[link.Target] {
			node := origByPath[strings.Join(ref.Path, pathSep)]
			if node == nil {
				continue
			}
			if u, ok := matched[node]; ok && u.Slug != link.Target {
				broken.SuggestedReplacement = u.Slug
				broken.Confidence = linkSuggestionConfidence
				break
			}
		}
		d.BrokenLinks = append(d.BrokenLinks, broken)
	}
}
