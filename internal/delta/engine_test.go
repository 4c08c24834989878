package delta

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mddelta/internal/mdparse"
)

func compareSrc(t *testing.T, orig, upd string) *MarkdownDelta {
	t.Helper()
	o, odoc, err := mdparse.BuildToc(orig)
	require.NoError(t, err)
	u, udoc, err := mdparse.BuildToc(upd)
	require.NoError(t, err)
	return Compare(o, u, odoc.Frontmatter, udoc.Frontmatter)
}

func TestDeltaIdentical(t *testing.T) {
	src := "---\ntitle: T\n---\n# Doc\n\nintro [link](#usage)\n\n## Usage\n\n```go\nx := 1\n```\n"
	d := compareSrc(t, src, src)

	assert.Equal(t, NoChange, d.Classification)
	assert.True(t, d.IsUnchanged())
	assert.Zero(t, d.ChangeCount())
	assert.Equal(t, "no changes", d.Summary())
}

func TestDeltaModifiedSection(t *testing.T) {
	d := compareSrc(t,
		"# A\n\ntext1\n\n# B\n\ntext2\n",
		"# A\n\ntext1 changed\n\n# B\n\ntext2\n")

	require.Len(t, d.SectionChanges, 1)
	c := d.SectionChanges[0]
	assert.Equal(t, ChangeModified, c.Kind)
	assert.Equal(t, []string{"A"}, c.Path)
	assert.Equal(t, 1, c.OriginalLine)
	assert.Equal(t, 9, c.Bytes)

	assert.Equal(t, 1, d.Stats.SectionsModified)
	assert.Equal(t, 9, d.Stats.BytesChanged)
	assert.Equal(t, ContentModerate, d.Classification)
}

func TestDeltaWhitespaceOnly(t *testing.T) {
	d := compareSrc(t,
		"# A\n\ntext\n",
		"# A\n\ntext   \n")

	require.Len(t, d.SectionChanges, 1)
	assert.Equal(t, ChangeWhitespaceOnly, d.SectionChanges[0].Kind)
	assert.Zero(t, d.SectionChanges[0].Bytes)

	assert.Equal(t, WhitespaceOnly, d.Classification)
	assert.True(t, d.IsCosmeticOnly())
	assert.Zero(t, d.Stats.BytesChanged)
}

func TestDeltaAddedSection(t *testing.T) {
	d := compareSrc(t,
		"# A\n\ntext a\n",
		"# A\n\ntext a\n## New\n\nfresh\n")

	require.Len(t, d.SectionChanges, 1)
	c := d.SectionChanges[0]
	assert.Equal(t, ChangeAdded, c.Kind)
	assert.Equal(t, []string{"A", "New"}, c.Path)
	assert.Equal(t, len("\nfresh\n"), c.Bytes)

	assert.Equal(t, 1, d.Stats.SectionsAdded)
	assert.Equal(t, StructuralOnly, d.Classification)
}

func TestDeltaRemovedSection(t *testing.T) {
	d := compareSrc(t,
		"# A\n\ntext a\n## Old\n\nstale\n",
		"# A\n\ntext a\n")

	require.Len(t, d.SectionChanges, 1)
	c := d.SectionChanges[0]
	assert.Equal(t, ChangeRemoved, c.Kind)
	assert.Equal(t, []string{"A", "Old"}, c.Path)

	assert.Equal(t, 1, d.Stats.SectionsRemoved)
	assert.Equal(t, StructuralOnly, d.Classification)
}

func TestDeltaMovedSection(t *testing.T) {
	d := compareSrc(t,
		"# A\n\n## Sub\n\nsss\n\n## Keep\n\nk\n\n# B\n\nbbb\n\n",
		"# A\n\n## Keep\n\nk\n\n# B\n\nbbb\n\n## Sub\n\nsss\n\n")

	// A whole subtree relocating is exactly one move record, no content
	// records at all.
	assert.Empty(t, d.SectionChanges)
	require.Len(t, d.MovedSections, 1)
	m := d.MovedSections[0]
	assert.Equal(t, []string{"A", "Sub"}, m.OriginalPath)
	assert.Equal(t, []string{"B", "Sub"}, m.NewPath)
	assert.Equal(t, 0, m.LevelDelta)
	assert.Equal(t, MoveSameLevel, m.Kind)
	assert.False(t, m.WasPromoted())
	assert.False(t, m.WasRenamed())

	assert.Equal(t, 1, d.Stats.SectionsMoved)
	// Relocated content contributes no changed bytes.
	assert.Zero(t, d.Stats.BytesChanged)
	assert.Equal(t, StructuralOnly, d.Classification)
}

func TestDeltaPromotedSection(t *testing.T) {
	d := compareSrc(t,
		"# Doc\n\n## Topic\n\nttt\n\n",
		"# Doc\n\n# Topic\n\nttt\n\n")

	require.Len(t, d.MovedSections, 1)
	m := d.MovedSections[0]
	assert.Equal(t, []string{"Doc", "Topic"}, m.OriginalPath)
	assert.Equal(t, []string{"Topic"}, m.NewPath)
	assert.Equal(t, -1, m.LevelDelta)
	assert.Equal(t, MoveDifferentLevel, m.Kind)
	assert.True(t, m.WasPromoted())
	assert.False(t, m.WasDemoted())
}

func TestDeltaRenamedSectionAndLinkSuggestion(t *testing.T) {
	d := compareSrc(t,
		"# Doc\n\nsee [setup](#setup)\n\n## Setup\n\nsss\n\n",
		"# Doc\n\nsee [setup](#setup)\n\n## Installation\n\nsss\n\n")

	require.Len(t, d.MovedSections, 1)
	m := d.MovedSections[0]
	assert.Equal(t, MoveReordered, m.Kind)
	assert.True(t, m.WasRenamed())

	// The rename broke the anchor, but the section survived under a new
	// slug, so the replacement is suggested with high confidence.
	require.Len(t, d.BrokenLinks, 1)
	l := d.BrokenLinks[0]
	assert.Equal(t, "setup", l.Target)
	assert.Equal(t, "installation", l.SuggestedReplacement)
	assert.InDelta(t, 0.9, l.Confidence, 1e-9)
	assert.True(t, d.HasBrokenLinks())
	assert.Equal(t, 1, d.Stats.BrokenLinkCount)
}

func TestDeltaBrokenLinkWithoutSuggestion(t *testing.T) {
	d := compareSrc(t,
		"# Doc\n\nsee [gone](#gone)\n\n## Gone\n\nggg\n\n",
		"# Doc\n\nsee [gone](#gone)\n\n")

	require.Len(t, d.BrokenLinks, 1)
	l := d.BrokenLinks[0]
	assert.Equal(t, "gone", l.Target)
	// The linked section was removed, not renamed: no guess is offered.
	assert.Empty(t, l.SuggestedReplacement)
	assert.Zero(t, l.Confidence)
}

func TestDeltaDuplicateSectionsMoveTies(t *testing.T) {
	// Two byte-identical boilerplate subtrees; the survivor correlates to
	// the first unconsumed candidate in document order.
	d := compareSrc(t,
		"# A\n\n## Note\n\nsame\n\n# B\n\n## Note\n\nsame\n\n",
		"# C\n\n## Note\n\nsame\n\n")

	require.Len(t, d.MovedSections, 1)
	assert.Equal(t, []string{"A"}, d.MovedSections[0].OriginalPath)
	assert.Equal(t, []string{"C"}, d.MovedSections[0].NewPath)

	// The second duplicate and its parent are genuinely gone.
	assert.Equal(t, 2, d.Stats.SectionsRemoved)
	removed := map[string]bool{}
	for _, c := range d.SectionChanges {
		assert.Equal(t, ChangeRemoved, c.Kind)
		removed[c.Path[0]] = true
	}
	assert.True(t, removed["B"])
}

func TestDeltaSwappedDuplicateTitles(t *testing.T) {
	t.Run("byte-identical swap correlates by content", func(t *testing.T) {
		d := compareSrc(t,
			"# X\n\naaa\n\n# X\n\nbbb\n\n",
			"# X\n\nbbb\n\n# X\n\naaa\n\n")

		// Each updated node has an original with the same path and the same
		// subtree content; neither may be reported modified.
		assert.Zero(t, d.Stats.SectionsModified)
		assert.Empty(t, d.SectionChanges)
		assert.Equal(t, NoChange, d.Classification)
	})

	t.Run("swap differing only in trailing whitespace", func(t *testing.T) {
		d := compareSrc(t,
			"# X\n\naaa\n\n# X\n\nbbb\n",
			"# X\n\nbbb\n\n# X\n\naaa\n")

		assert.Zero(t, d.Stats.SectionsModified)
		for _, c := range d.SectionChanges {
			assert.Equal(t, ChangeWhitespaceOnly, c.Kind)
		}
		assert.Equal(t, WhitespaceOnly, d.Classification)
	})
}

func TestDeltaIndentationChangeIsModified(t *testing.T) {
	// Re-indenting interior lines survives block trimming, so it is a real
	// content change, not a whitespace-only one.
	d := compareSrc(t,
		"# A\n\n  item\n  item two\n",
		"# A\n\n    item\n    item two\n")

	require.Len(t, d.SectionChanges, 1)
	assert.Equal(t, ChangeModified, d.SectionChanges[0].Kind)
	assert.Equal(t, 1, d.Stats.SectionsModified)
	assert.Zero(t, d.Stats.SectionsWhitespaceOnly)
}

func TestDeltaFrontmatter(t *testing.T) {
	t.Run("value change only", func(t *testing.T) {
		d := compareSrc(t,
			"---\ntitle: Old\n---\nbody\n",
			"---\ntitle: New\n---\nbody\n")

		assert.Equal(t, FrontmatterOnly, d.Classification)
		assert.True(t, d.IsCosmeticOnly())
		assert.True(t, d.Stats.FrontmatterChanged)
		require.Len(t, d.FrontmatterChanges, 1)
		c := d.FrontmatterChanges[0]
		assert.Equal(t, PropertyUpdated, c.Kind)
		assert.Equal(t, "title", c.Key)
		assert.Equal(t, "Old", c.OldValue)
		assert.Equal(t, "New", c.NewValue)
	})

	t.Run("key reordering is formatting only", func(t *testing.T) {
		d := compareSrc(t,
			"---\na: 1\nb: 2\n---\nbody\n",
			"---\nb: 2\na: 1\n---\nbody\n")

		assert.Equal(t, FrontmatterOnly, d.Classification)
		assert.True(t, d.Stats.FrontmatterFormattingOnly)
		assert.Empty(t, d.FrontmatterChanges)
	})

	t.Run("property added and removed", func(t *testing.T) {
		d := compareSrc(t,
			"---\nkeep: 1\nold: x\n---\nbody\n",
			"---\nkeep: 1\nfresh: y\n---\nbody\n")

		require.Len(t, d.FrontmatterChanges, 2)
		kinds := map[FrontmatterChangeKind]string{}
		for _, c := range d.FrontmatterChanges {
			kinds[c.Kind] = c.Key
		}
		assert.Equal(t, "fresh", kinds[PropertyAdded])
		assert.Equal(t, "old", kinds[PropertyRemoved])
	})

	t.Run("combined with body whitespace", func(t *testing.T) {
		d := compareSrc(t,
			"---\nv: 1\n---\n# A\n\nx\n",
			"---\nv: 2\n---\n# A\n\nx  \n")

		assert.Equal(t, FrontmatterAndWhitespace, d.Classification)
		assert.True(t, d.IsCosmeticOnly())
	})
}

func TestDeltaPreamble(t *testing.T) {
	d := compareSrc(t,
		"intro\n\n# A\n\nx\n",
		"different intro\n\n# A\n\nx\n")

	require.Len(t, d.SectionChanges, 1)
	c := d.SectionChanges[0]
	assert.Equal(t, ChangeModified, c.Kind)
	assert.Empty(t, c.Path)
	assert.Equal(t, len("different "), c.Bytes)
	assert.True(t, d.Stats.PreambleChanged)
	assert.NotEqual(t, NoChange, d.Classification)
}

func TestDeltaCodeBlocks(t *testing.T) {
	t.Run("modified", func(t *testing.T) {
		d := compareSrc(t,
			"# A\n\n```go\nx := 1\n```\n",
			"# A\n\n```go\nx := 2\n```\n")

		require.Len(t, d.CodeBlockChanges, 1)
		c := d.CodeBlockChanges[0]
		assert.Equal(t, CodeBlockModified, c.Kind)
		assert.Equal(t, []string{"A"}, c.SectionPath)
		assert.Equal(t, "go", c.Language)
		assert.Equal(t, 1, d.Stats.CodeBlocksModified)
	})

	t.Run("language changed", func(t *testing.T) {
		d := compareSrc(t,
			"# A\n\n```js\nconsole.log(1)\n```\n",
			"# A\n\n```javascript\nconsole.log(1)\n```\n")

		require.Len(t, d.CodeBlockChanges, 1)
		c := d.CodeBlockChanges[0]
		assert.Equal(t, CodeBlockLanguageChanged, c.Kind)
		assert.Equal(t, "js", c.OldLanguage)
		assert.Equal(t, "javascript", c.Language)
		assert.Equal(t, 1, d.Stats.CodeBlockLanguageChanges)
	})

	t.Run("added", func(t *testing.T) {
		d := compareSrc(t,
			"# A\n\ntext\n",
			"# A\n\ntext\n```sh\nmake\n```\n")

		require.Len(t, d.CodeBlockChanges, 1)
		assert.Equal(t, CodeBlockAdded, d.CodeBlockChanges[0].Kind)
		assert.Equal(t, 1, d.Stats.CodeBlocksAdded)
	})

	t.Run("block inside a moved section is not a code change", func(t *testing.T) {
		d := compareSrc(t,
			"# A\n\n## Sub\n\n```go\ncode\n```\n\n# B\n\nbbb\n\n",
			"# A\n\n# B\n\nbbb\n\n## Sub\n\n```go\ncode\n```\n\n")

		require.Len(t, d.MovedSections, 1)
		assert.Empty(t, d.CodeBlockChanges)
	})
}

func TestDeltaSummary(t *testing.T) {
	d := compareSrc(t,
		"# A\n\ntext1\n\n# B\n\ntext2\n",
		"# A\n\ntext1 changed\n\n# B\n\ntext2\n")

	assert.Contains(t, d.Summary(), "content_moderate")
	assert.Contains(t, d.Summary(), "1 modified")
}

func TestChangedSpan(t *testing.T) {
	assert.Zero(t, changedSpan("same", "same"))
	assert.Equal(t, 3, changedSpan("abcdef", "abXYZdef"))
	assert.Equal(t, 5, changedSpan("hello", ""))
	assert.Equal(t, 5, changedSpan("", "hello"))
	assert.Equal(t, 1, changedSpan("aaa", "aaaa"))
}
