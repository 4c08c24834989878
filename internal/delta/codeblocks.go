package delta

import (
	"strings"

	"mddelta/internal/toc"
)

// compareCodeBlocks matches fenced code blocks positionally within the same
// resolved section path. A block in a moved section is compared under the
// section's new path, so relocation alone produces no code-block records.
func compareCodeBlocks(d *MarkdownDelta, original, updated *toc.MarkdownToc, matched map[*toc.TocNode]*toc.TocNode) {
	origPathOf := nodePaths(original)
	updPathOf := nodePaths(updated)

	resolved := make(map[string]string, len(matched))
	for o, u := range matched {
		resolved[strings.Join(origPathOf[o], pathSep)] = strings.Join(updPathOf[u], pathSep)
	}

	origGroups := make(map[string][]toc.CodeBlockInfo)
	var origOrder []string
	for _, b := range original.CodeBlocks {
		key := strings.Join(b.SectionPath, pathSep)
		if mapping, ok := resolved[key]; ok {
			key = mapping
		}
		if _, seen := origGroups[key]; !seen {
			origOrder = append(origOrder, key)
		}
		origGroups[key] = append(origGroups[key], b)
	}

	updGroups := make(map[string][]toc.CodeBlockInfo)
	var updOrder []string
	for _, b := range updated.CodeBlocks {
		key := strings.Join(b.SectionPath, pathSep)
		if _, seen := updGroups[key]; !seen {
			updOrder = append(updOrder, key)
		}
		updGroups[key] = append(updGroups[key], b)
	}

	seen := make(map[string]bool)
	for _, key := range updOrder {
		seen[key] = true
		diffBlockGroup(d, origGroups[key], updGroups[key])
	}
	for _, key := range origOrder {
		if !seen[key] {
			diffBlockGroup(d, origGroups[key], nil)
		}
	}
}

func diffBlockGroup(d *MarkdownDelta, orig, upd []toc.CodeBlockInfo) {
	n := len(orig)
	if len(upd) > n {
		n = len(upd)
	}
	for i := 0; i < n; i++ {
		switch {
		case i >= len(orig):
			b := upd[i]
			d.Stats.CodeBlocksAdded++
			d.CodeBlockChanges = append(d.CodeBlockChanges, CodeBlockChange{
				Kind: CodeBlockAdded, SectionPath: b.SectionPath,
				Language: b.Language, NewLine: b.Lines.Start,
			})
		case i >= len(upd):
			b := orig[i]
			d.Stats.CodeBlocksRemoved++
			d.CodeBlockChanges = append(d.CodeBlockChanges, CodeBlockChange{
				Kind: CodeBlockRemoved, SectionPath: b.SectionPath,
				Language: b.Language, OriginalLine: b.Lines.Start,
			})
		default:
			o, u := orig[i], upd[i]
			if o.ContentHash == u.ContentHash && o.Language == u.Language {
				continue
			}
			if o.ContentHash == u.ContentHash {
				d.Stats.CodeBlockLanguageChanges++
				d.CodeBlockChanges = append(d.CodeBlockChanges, CodeBlockChange{
					Kind: CodeBlockLanguageChanged, SectionPath: u.SectionPath,
					Language: u.Language, OldLanguage: o.Language,
					OriginalLine: o.Lines.Start, NewLine: u.Lines.Start,
				})
				continue
			}
			d.Stats.CodeBlocksModified++
			d.CodeBlockChanges = append(d.CodeBlockChanges, CodeBlockChange{
				Kind: CodeBlockModified, SectionPath: u.SectionPath,
				Language: u.Language, OldLanguage: o.Language,
				OriginalLine: o.Lines.Start, NewLine: u.Lines.Start,
			})
		}
	}
}

func nodePaths(t *toc.MarkdownToc) map[*toc.TocNode][]string {
	out := make(map[*toc.TocNode][]string)
	var visit func(n *toc.TocNode, path []string)
	visit = func(n *toc.TocNode, path []string) {
		path = append(path, n.Title)
		out[n] = append([]string(nil), path...)
		for _, c := range n.Children {
			visit(c, path)
		}
	}
	for _, f := range t.Structure {
		visit(f, nil)
	}
	return out
}
