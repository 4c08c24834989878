// Package git reads document content out of the repository history so a
// working file can be compared against an earlier revision.
package git

import (
	"bytes"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// FileAtRevision returns the content of path as of the given revision
// (anything git rev-parse accepts: a SHA, branch, tag, HEAD~2, ...).
func FileAtRevision(revision, path string) (string, error) {
	rel, err := repoRelativePath(path)
	if err != nil {
		return "", err
	}

	cmd := exec.Command("git", "show", revision+":"+rel)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("git show %s:%s: %s", revision, rel, msg)
	}
	return out.String(), nil
}

// repoRelativePath converts path into the repo-relative, slash-separated form
// git show expects.
func repoRelativePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	cmd.Dir = filepath.Dir(abs)
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("not inside a git repository: %s", path)
	}
	root := strings.TrimSpace(string(out))

	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}
