package mdparse

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// splitFrontmatter detaches a leading YAML frontmatter block. The block must
// open with "---" on the first line and close with "---" or "...". Returns
// the inner raw text, the remaining body, and the 1-based file line the body
// starts on.
func splitFrontmatter(src string) (raw, body string, bodyLine int, ok bool) {
	if !strings.HasPrefix(src, "---\n") && src != "---" && !strings.HasPrefix(src, "---\r\n") {
		return "", src, 1, false
	}
	lines := strings.Split(src, "\n")
	for i := 1; i < len(lines); i++ {
		t := strings.TrimRight(lines[i], "\r")
		if t == "---" || t == "..." {
			raw = strings.Join(lines[1:i], "\n")
			body = strings.Join(lines[i+1:], "\n")
			return raw, body, i + 2, true
		}
	}
	// No closing delimiter: the document has no frontmatter, just a ruler.
	return "", src, 1, false
}

// decodeFrontmatter fills the decoded mapping, the canonical re-encoding and
// the title property. A block that does not decode as a YAML mapping keeps
// its raw text as the canonical form, so formatting-only detection degrades
// to byte comparison instead of failing.
func decodeFrontmatter(doc *Document) {
	doc.FrontmatterCanonical = doc.FrontmatterRaw

	var m map[string]any
	if err := yaml.Unmarshal([]byte(doc.FrontmatterRaw), &m); err != nil || m == nil {
		return
	}
	doc.Frontmatter = m

	// yaml.v3 marshals map keys in sorted order, which is exactly the
	// key-order-independent canonical form the normalized hash needs.
	if canon, err := yaml.Marshal(m); err == nil {
		doc.FrontmatterCanonical = string(canon)
	}

	if title, ok := m["title"].(string); ok {
		doc.Title = strings.TrimSpace(title)
	}
}
