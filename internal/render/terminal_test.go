package render

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mddelta/internal/delta"
	"mddelta/internal/mdparse"
)

func TestRendererToc(t *testing.T) {
	toc, _, err := mdparse.BuildToc("# Guide\n\nintro\n\n## Install\n\na\n\n## Usage\n\nb\n\n### Flags\n\nc\n")
	require.NoError(t, err)

	out := NewRenderer(false).Toc(toc)

	assert.Contains(t, out, "Guide")
	assert.Contains(t, out, "├── Install #install")
	assert.Contains(t, out, "└── Usage #usage")
	assert.Contains(t, out, "    └── Flags #flags")
	assert.Contains(t, out, "4 headings, levels 1-3")
	assert.NotContains(t, out, "\x1b[", "plain output must carry no escape codes")
}

func TestRendererTocBrokenLinks(t *testing.T) {
	toc, _, err := mdparse.BuildToc("# Doc\n\nsee [x](#missing)\n")
	require.NoError(t, err)

	out := NewRenderer(false).Toc(toc)
	assert.Contains(t, out, "1 broken internal links")
	assert.Contains(t, out, "#missing")
}

func TestRendererDelta(t *testing.T) {
	orig := "# A\n\ntext one\n\n## Old\n\ngone\n\n# B\n\nsame\n"
	upd := "# A\n\ntext two\n\n## New\n\nadded\n\n# B\n\nsame\n"
	o, _, err := mdparse.BuildToc(orig)
	require.NoError(t, err)
	u, _, err := mdparse.BuildToc(upd)
	require.NoError(t, err)
	d := delta.Compare(o, u, nil, nil)

	out := NewRenderer(false).Delta(d, u)

	assert.Contains(t, out, "~ A")
	assert.Contains(t, out, "+ A > New")
	assert.Contains(t, out, "- A > Old")
	assert.Contains(t, out, "bytes changed:")
}

func TestRendererDeltaCodeSnippet(t *testing.T) {
	orig := "# A\n\ntext\n"
	upd := "# A\n\ntext\n```go\nx := 1\ny := 2\n```\n"
	o, _, err := mdparse.BuildToc(orig)
	require.NoError(t, err)
	u, _, err := mdparse.BuildToc(upd)
	require.NoError(t, err)
	d := delta.Compare(o, u, nil, nil)

	out := NewRenderer(false).Delta(d, u)
	assert.Contains(t, out, "+ code block (go) in A")
	assert.Contains(t, out, "    x := 1")
	assert.Contains(t, out, "    y := 2")
}

func TestDeltaJSON(t *testing.T) {
	o, _, err := mdparse.BuildToc("# A\n\nx\n")
	require.NoError(t, err)
	u, _, err := mdparse.BuildToc("# A\n\ny z\n")
	require.NoError(t, err)
	d := delta.Compare(o, u, nil, nil)

	b, err := DeltaJSON("a.md", "b.md", d)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(b), "\n"))

	var rep map[string]any
	require.NoError(t, json.Unmarshal(b, &rep))
	assert.Equal(t, "a.md", rep["original_source"])
	assert.Equal(t, "b.md", rep["updated_source"])
	assert.NotEmpty(t, rep["generated_at"])

	inner, ok := rep["delta"].(map[string]any)
	require.True(t, ok)
	assert.NotEmpty(t, inner["classification"])
}

func TestTocJSON(t *testing.T) {
	toc, _, err := mdparse.BuildToc("# Doc\n\nbody\n")
	require.NoError(t, err)

	b, err := TocJSON(toc)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, "Doc", decoded["title"])
	assert.NotNil(t, decoded["structure"])
	assert.NotZero(t, decoded["page_hash"])
}

func TestHighlight(t *testing.T) {
	t.Run("known language emits escape codes", func(t *testing.T) {
		out := Highlight("go", "func main() {}\n")
		assert.Contains(t, out, "func")
	})

	t.Run("unknown language falls back to plain text", func(t *testing.T) {
		out := Highlight("definitely-not-a-language", "plain text\n")
		assert.Contains(t, out, "plain text")
	})
}
