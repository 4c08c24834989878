// Package pipeline wires the parser, TOC builder, delta engine and snapshot
// store into the comparison flows the CLI exposes.
package pipeline

import (
	"context"
	"fmt"
	"os"

	"mddelta/internal/delta"
	"mddelta/internal/git"
	"mddelta/internal/mdparse"
	"mddelta/internal/storage"
	"mddelta/internal/toc"
)

// Comparison is the result of one original-vs-updated run.
type Comparison struct {
	OriginalSource string
	UpdatedSource  string
	Original       *toc.MarkdownToc
	Updated        *toc.MarkdownToc
	Delta          *delta.MarkdownDelta
}

type Pipeline struct {
	DBPath string
}

func New(dbPath string) *Pipeline {
	return &Pipeline{DBPath: dbPath}
}

// Toc parses a file and builds its table of contents.
func (p *Pipeline) Toc(path string) (*toc.MarkdownToc, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	t, _, err := mdparse.BuildToc(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to build toc for %s: %w", path, err)
	}
	return t, nil
}

// CompareFiles compares two Markdown files on disk.
func (p *Pipeline) CompareFiles(originalPath, updatedPath string) (*Comparison, error) {
	origContent, err := os.ReadFile(originalPath)
	if err != nil {
		return nil, err
	}
	updContent, err := os.ReadFile(updatedPath)
	if err != nil {
		return nil, err
	}
	return p.compare(originalPath, updatedPath, string(origContent), string(updContent))
}

// CompareWithRevision compares the working copy of path against its content
// at a git revision.
func (p *Pipeline) CompareWithRevision(revision, path string) (*Comparison, error) {
	origContent, err := git.FileAtRevision(revision, path)
	if err != nil {
		return nil, err
	}
	updContent, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return p.compare(revision+":"+path, path, origContent, string(updContent))
}

// CompareWithSnapshot compares the working copy of path against a stored
// snapshot. Snapshot comparisons have no decoded frontmatter on the original
// side, so frontmatter differences surface as flags without per-key records.
func (p *Pipeline) CompareWithSnapshot(ctx context.Context, label, path string) (*Comparison, error) {
	store, err := storage.NewSnapshotStore(p.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot db: %w", err)
	}
	defer store.Close()

	original, err := store.Load(ctx, path, label)
	if err != nil {
		return nil, err
	}

	updContent, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	updated, updDoc, err := mdparse.BuildToc(string(updContent))
	if err != nil {
		return nil, err
	}

	return &Comparison{
		OriginalSource: "snapshot:" + label,
		UpdatedSource:  path,
		Original:       original,
		Updated:        updated,
		Delta:          delta.Compare(original, updated, nil, updDoc.Frontmatter),
	}, nil
}

// SaveSnapshot stores the current TOC of path under a label.
func (p *Pipeline) SaveSnapshot(ctx context.Context, label, path string) error {
	t, err := p.Toc(path)
	if err != nil {
		return err
	}
	store, err := storage.NewSnapshotStore(p.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open snapshot db: %w", err)
	}
	defer store.Close()
	return store.Save(ctx, path, label, t)
}

// ListSnapshots returns the snapshots stored for path.
func (p *Pipeline) ListSnapshots(ctx context.Context, path string) ([]storage.SnapshotInfo, error) {
	store, err := storage.NewSnapshotStore(p.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot db: %w", err)
	}
	defer store.Close()
	return store.List(ctx, path)
}

func (p *Pipeline) compare(origSource, updSource, origContent, updContent string) (*Comparison, error) {
	original, origDoc, err := mdparse.BuildToc(origContent)
	if err != nil {
		return nil, fmt.Errorf("failed to build toc for %s: %w", origSource, err)
	}
	updated, updDoc, err := mdparse.BuildToc(updContent)
	if err != nil {
		return nil, fmt.Errorf("failed to build toc for %s: %w", updSource, err)
	}

	return &Comparison{
		OriginalSource: origSource,
		UpdatedSource:  updSource,
		Original:       original,
		Updated:        updated,
		Delta:          delta.Compare(original, updated, origDoc.Frontmatter, updDoc.Frontmatter),
	}, nil
}
