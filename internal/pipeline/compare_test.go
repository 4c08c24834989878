package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mddelta/internal/delta"
)

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestPipelineToc(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "doc.md", "# Guide\n\nintro\n\n## Usage\n\nrun it\n")

	p := New(filepath.Join(dir, "mddelta.db"))
	toc, err := p.Toc(path)
	require.NoError(t, err)

	assert.Equal(t, "Guide", toc.Title)
	assert.Equal(t, 2, toc.HeadingCount())
}

func TestPipelineToc_MissingFile(t *testing.T) {
	p := New("mddelta.db")
	_, err := p.Toc(filepath.Join(t.TempDir(), "absent.md"))
	assert.Error(t, err)
}

func TestPipelineCompareFiles(t *testing.T) {
	dir := t.TempDir()
	orig := writeDoc(t, dir, "v1.md", "# A\n\nfirst draft\n")
	upd := writeDoc(t, dir, "v2.md", "# A\n\nsecond draft\n")

	p := New(filepath.Join(dir, "mddelta.db"))
	cmp, err := p.CompareFiles(orig, upd)
	require.NoError(t, err)

	assert.Equal(t, orig, cmp.OriginalSource)
	assert.Equal(t, upd, cmp.UpdatedSource)
	require.NotNil(t, cmp.Delta)
	assert.Equal(t, 1, cmp.Delta.Stats.SectionsModified)
	assert.NotEqual(t, delta.NoChange, cmp.Delta.Classification)
}

func TestPipelineSnapshotFlow(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "doc.md", "# A\n\noriginal text\n")
	p := New(filepath.Join(dir, "mddelta.db"))
	ctx := context.Background()

	require.NoError(t, p.SaveSnapshot(ctx, "v1", path))

	infos, err := p.ListSnapshots(ctx, path)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "v1", infos[0].Label)

	// Unchanged working copy compares clean against its snapshot.
	cmp, err := p.CompareWithSnapshot(ctx, "v1", path)
	require.NoError(t, err)
	assert.True(t, cmp.Delta.IsUnchanged())
	assert.Equal(t, "snapshot:v1", cmp.OriginalSource)

	// Edit the file and compare again.
	require.NoError(t, os.WriteFile(path, []byte("# A\n\nrewritten entirely different\n"), 0o644))
	cmp, err = p.CompareWithSnapshot(ctx, "v1", path)
	require.NoError(t, err)
	assert.False(t, cmp.Delta.IsUnchanged())
	assert.Equal(t, 1, cmp.Delta.Stats.SectionsModified)
}

func TestPipelineSnapshotMissingLabel(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "doc.md", "# A\n\nx\n")
	p := New(filepath.Join(dir, "mddelta.db"))

	_, err := p.CompareWithSnapshot(context.Background(), "never-saved", path)
	assert.Error(t, err)
}
