package delta

import (
	"fmt"
	"strings"

	"mddelta/internal/toc"
)

// pathSep joins section-path elements into map keys; a NUL byte cannot occur
// in a heading title.
const pathSep = "\x00"

// flatSection is one node with its resolved structural position. Occurrence
// disambiguates repeated identical paths (two "Examples" sections under
// duplicated parents).
type flatSection struct {
	path []string
	key  string
	occ  int
	node *toc.TocNode
}

// Compare correlates the two trees and produces the full change report. The
// correlation is a greedy single pass per phase: exact-path lookup first,
// then subtree-hash lookup ignoring path, with ties broken in document order.
// It never errors; every ambiguity resolves to a deterministic answer.
func Compare(original, updated *toc.MarkdownToc, originalFM, updatedFM map[string]any) *MarkdownDelta {
	d := &MarkdownDelta{
		SectionChanges: []ContentChange{},
		MovedSections:  []MovedSection{},
	}
	d.Stats.OriginalBytes = original.BodyBytes
	d.Stats.NewBytes = updated.BodyBytes

	compareFrontmatter(d, original, updated, originalFM, updatedFM)
	comparePreamble(d, original, updated)

	matched := compareSections(d, original, updated)
	compareCodeBlocks(d, original, updated, matched)
	findBrokenLinks(d, original, updated, matched)

	d.Stats.BrokenLinkCount = len(d.BrokenLinks)
	d.Stats.finalizeRatio()
	d.Classification = finalClassification(&d.Stats)
	return d
}

func finalClassification(s *DeltaStatistics) DocumentChange {
	c := ClassifyStatistics(s)
	switch c {
	case NoChange:
		if s.FrontmatterChanged {
			return FrontmatterOnly
		}
	case WhitespaceOnly:
		if s.FrontmatterChanged {
			return FrontmatterAndWhitespace
		}
	}
	return c
}

func compareFrontmatter(d *MarkdownDelta, original, updated *toc.MarkdownToc, originalFM, updatedFM map[string]any) {
	if !original.HasFrontmatter && !updated.HasFrontmatter {
		return
	}
	if original.HasFrontmatter == updated.HasFrontmatter &&
		original.FrontmatterHash == updated.FrontmatterHash {
		return
	}
	d.Stats.FrontmatterChanged = true
	if original.HasFrontmatter && updated.HasFrontmatter &&
		original.FrontmatterHashNormalized == updated.FrontmatterHashNormalized {
		d.Stats.FrontmatterFormattingOnly = true
		return
	}

	for key, newVal := range updatedFM {
		oldVal, ok := originalFM[key]
		if !ok {
			d.FrontmatterChanges = append(d.FrontmatterChanges, FrontmatterChange{
				Kind: PropertyAdded, Key: key, NewValue: renderValue(newVal),
			})
			continue
		}
		if renderValue(oldVal) != renderValue(newVal) {
			d.FrontmatterChanges = append(d.FrontmatterChanges, FrontmatterChange{
				Kind: PropertyUpdated, Key: key,
				OldValue: renderValue(oldVal), NewValue: renderValue(newVal),
			})
		}
	}
	for key, oldVal := range originalFM {
		if _, ok := updatedFM[key]; !ok {
			d.FrontmatterChanges = append(d.FrontmatterChanges, FrontmatterChange{
				Kind: PropertyRemoved, Key: key, OldValue: renderValue(oldVal),
			})
		}
	}
}

func renderValue(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

// comparePreamble treats the text before the first heading as a section with
// an empty path, so a preamble edit feeds the statistics like any other
// content change.
func comparePreamble(d *MarkdownDelta, original, updated *toc.MarkdownToc) {
	origContent := preludeText(original.Preamble)
	newContent := preludeText(updated.Preamble)
	if origContent == newContent {
		return
	}
	d.Stats.PreambleChanged = true

	if toc.Normalize(origContent, toc.BlockTrimming) == toc.Normalize(newContent, toc.BlockTrimming) {
		d.Stats.PreambleWhitespaceOnly = true
		d.Stats.SectionsWhitespaceOnly++
		d.SectionChanges = append(d.SectionChanges, ContentChange{
			Kind: ChangeWhitespaceOnly, Path: []string{},
			OriginalLine: preludeLine(original.Preamble),
			NewLine:      preludeLine(updated.Preamble),
		})
		return
	}
	bytes := changedSpan(origContent, newContent)
	d.Stats.SectionsModified++
	d.Stats.BytesChanged += bytes
	d.SectionChanges = append(d.SectionChanges, ContentChange{
		Kind: ChangeModified, Path: []string{},
		OriginalLine: preludeLine(original.Preamble),
		NewLine:      preludeLine(updated.Preamble),
		Bytes:        bytes,
	})
}

func preludeText(p *toc.PreludeNode) string {
	if p == nil {
		return ""
	}
	return p.Content
}

func preludeLine(p *toc.PreludeNode) int {
	if p == nil {
		return 0
	}
	return p.Lines.Start
}

// compareSections runs the two-phase correlation and returns the mapping
// from matched original nodes to their updated counterparts.
func compareSections(d *MarkdownDelta, original, updated *toc.MarkdownToc) map[*toc.TocNode]*toc.TocNode {
	origFlat := flatten(original)
	updFlat := flatten(updated)

	origByPath := make(map[string][]*flatSection)
	origByHash := make(map[uint64][]*flatSection)
	for i := range origFlat {
		s := &origFlat[i]
		origByPath[s.key] = append(origByPath[s.key], s)
		origByHash[s.node.SubtreeHash] = append(origByHash[s.node.SubtreeHash], s)
	}

	consumed := make(map[*toc.TocNode]bool)
	matched := make(map[*toc.TocNode]*toc.TocNode)
	skip := make(map[*toc.TocNode]bool)

	for i := range updFlat {
		u := &updFlat[i]
		if skip[u.node] {
			continue
		}

		// Phase 1: exact path. With duplicated titles the correlate is the
		// first unconsumed original carrying the same subtree content, raw
		// hash first and trimmed hash second, so two same-titled siblings
		// swapping positions do not read as two modifications. Only when no
		// content correlate exists does the occurrence-paired candidate stand
		// in, which is the genuinely-modified case.
		if cands := origByPath[u.key]; len(cands) > 0 {
			if o := firstUnconsumed(cands, consumed, func(c *flatSection) bool {
				return c.node.SubtreeHash == u.node.SubtreeHash
			}); o != nil {
				consumed[o.node] = true
				matched[o.node] = u.node
				continue
			}
			o := firstUnconsumed(cands, consumed, func(c *flatSection) bool {
				return c.node.SubtreeHashTrimmed == u.node.SubtreeHashTrimmed
			})
			if o == nil && u.occ < len(cands) && !consumed[cands[u.occ].node] {
				o = cands[u.occ]
			}
			if o != nil {
				consumed[o.node] = true
				matched[o.node] = u.node
				emitModification(d, o.node, u.node, u.path)
				continue
			}
		}

		// Phase 2: same subtree content somewhere else in the original tree.
		// The first unconsumed candidate in document order wins; with several
		// identical boilerplate sections this is the stated tie-break policy.
		if o := firstUnconsumed(origByHash[u.node.SubtreeHash], consumed, nil); o != nil {
			consumeSubtrees(o.node, u.node, consumed, matched, skip)
			d.Stats.SectionsMoved++
			d.MovedSections = append(d.MovedSections, MovedSection{
				OriginalPath: o.path,
				NewPath:      u.path,
				OriginalLine: o.node.Lines.Start,
				NewLine:      u.node.Lines.Start,
				LevelDelta:   u.node.Level - o.node.Level,
				Kind:         moveKind(o, u),
			})
			continue
		}

		// No correlate by path or by hash.
		bytes := len(u.node.PreludeContent())
		d.Stats.SectionsAdded++
		d.Stats.BytesChanged += bytes
		d.SectionChanges = append(d.SectionChanges, ContentChange{
			Kind: ChangeAdded, Path: u.path, NewLine: u.node.Lines.Start, Bytes: bytes,
		})
	}

	for i := range origFlat {
		o := &origFlat[i]
		if consumed[o.node] {
			continue
		}
		bytes := len(o.node.PreludeContent())
		d.Stats.SectionsRemoved++
		d.Stats.BytesChanged += bytes
		d.SectionChanges = append(d.SectionChanges, ContentChange{
			Kind: ChangeRemoved, Path: o.path, OriginalLine: o.node.Lines.Start, Bytes: bytes,
		})
	}

	return matched
}

// emitModification records a path-matched section whose subtree changed. The
// record lands on the node whose own prelude differs; when the change lives
// in a descendant, the descendant carries it (each node is path-matched
// independently).
func emitModification(d *MarkdownDelta, o, u *toc.TocNode, path []string) {
	origContent := preludeText(o.Prelude)
	newContent := preludeText(u.Prelude)
	if origContent == newContent {
		return
	}
	if toc.Normalize(origContent, toc.BlockTrimming) == toc.Normalize(newContent, toc.BlockTrimming) {
		d.Stats.SectionsWhitespaceOnly++
		d.SectionChanges = append(d.SectionChanges, ContentChange{
			Kind: ChangeWhitespaceOnly, Path: path,
			OriginalLine: o.Lines.Start, NewLine: u.Lines.Start,
		})
		return
	}
	bytes := changedSpan(origContent, newContent)
	d.Stats.SectionsModified++
	d.Stats.BytesChanged += bytes
	d.SectionChanges = append(d.SectionChanges, ContentChange{
		Kind: ChangeModified, Path: path,
		OriginalLine: o.Lines.Start, NewLine: u.Lines.Start, Bytes: bytes,
	})
}

// consumeSubtrees marks a moved original subtree consumed so its nodes are
// neither reported removed nor matched twice, and pairs the two subtrees
// node-by-node when their shapes line up (for link re-targeting). A move is
// one record; the updated descendants are skipped by the main loop.
func consumeSubtrees(o, u *toc.TocNode, consumed map[*toc.TocNode]bool, matched map[*toc.TocNode]*toc.TocNode, skip map[*toc.TocNode]bool) {
	origNodes := collectNodes(o)
	updNodes := collectNodes(u)
	for _, n := range origNodes {
		consumed[n] = true
	}
	for i, n := range updNodes {
		if i > 0 {
			skip[n] = true
		}
		if len(origNodes) == len(updNodes) {
			matched[origNodes[i]] = n
		}
	}
	if len(origNodes) != len(updNodes) {
		matched[o] = u
	}
}

func collectNodes(n *toc.TocNode) []*toc.TocNode {
	out := []*toc.TocNode{n}
	for _, c := range n.Children {
		out = append(out, collectNodes(c)...)
	}
	return out
}

func moveKind(o, u *flatSection) MoveKind {
	if u.node.Level != o.node.Level {
		return MoveDifferentLevel
	}
	if sameParent(o.path, u.path) {
		return MoveReordered
	}
	return MoveSameLevel
}

func sameParent(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a)-1; i++ {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func firstUnconsumed(cands []*flatSection, consumed map[*toc.TocNode]bool, pred func(*flatSection) bool) *flatSection {
	for _, c := range cands {
		if consumed[c.node] {
			continue
		}
		if pred == nil || pred(c) {
			return c
		}
	}
	return nil
}

func flatten(t *toc.MarkdownToc) []flatSection {
	var out []flatSection
	occ := make(map[string]int)
	var visit func(n *toc.TocNode, path []string)
	visit = func(n *toc.TocNode, path []string) {
		path = append(path, n.Title)
		p := append([]string(nil), path...)
		key := strings.Join(p, pathSep)
		out = append(out, flatSection{path: p, key: key, occ: occ[key], node: n})
		occ[key]++
		for _, c := range n.Children {
			visit(c, path)
		}
	}
	for _, f := range t.Structure {
		visit(f, nil)
	}
	return out
}

// changedSpan estimates the affected byte span between two revisions of a
// text block: the longer length minus the common prefix and suffix.
func changedSpan(old, new string) int {
	prefix := 0
	for prefix < len(old) && prefix < len(new) && old[prefix] == new[prefix] {
		prefix++
	}
	suffix := 0
	for suffix < len(old)-prefix && suffix < len(new)-prefix &&
		old[len(old)-1-suffix] == new[len(new)-1-suffix] {
		suffix++
	}
	longer := len(old)
	if len(new) > longer {
		longer = len(new)
	}
	span := longer - prefix - suffix
	if span < 0 {
		span = 0
	}
	return span
}
