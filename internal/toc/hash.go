package toc

import (
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Normalization selects the whitespace rules applied to text before hashing.
// Rules compose; the result does not depend on the order they were combined.
type Normalization uint8

const (
	// BlockTrimming trims leading and trailing whitespace from the block as a whole.
	BlockTrimming Normalization = 1 << iota
	// LeadingWhitespace strips leading whitespace from every line.
	LeadingWhitespace
	// TrailingWhitespace strips trailing whitespace from every line.
	TrailingWhitespace
	// BlankLine drops lines that are empty after the per-line rules.
	BlankLine
)

const perLineRules = LeadingWhitespace | TrailingWhitespace | BlankLine

// Hash returns a 64-bit digest of text under the given normalization rules.
// The zero rule set hashes the raw text. Equal digests are treated as equal
// content by the delta engine; a 64-bit digest makes collisions an accepted
// approximation, not a guarantee.
func Hash(text string, rules Normalization) uint64 {
	return xxhash.Sum64String(Normalize(text, rules))
}

// Normalize applies the selected whitespace rules to text.
func Normalize(text string, rules Normalization) string {
	if rules&perLineRules != 0 {
		lines := strings.Split(text, "\n")
		out := make([]string, 0, len(lines))
		for _, line := range lines {
			if rules&LeadingWhitespace != 0 {
				line = strings.TrimLeft(line, " \t")
			}
			if rules&TrailingWhitespace != 0 {
				line = strings.TrimRight(line, " \t\r")
			}
			if rules&BlankLine != 0 && strings.TrimSpace(line) == "" {
				continue
			}
			out = append(out, line)
		}
		text = strings.Join(out, "\n")
	}
	if rules&BlockTrimming != 0 {
		text = strings.TrimSpace(text)
	}
	return text
}
