// Package mdparse turns raw Markdown into the heading-event stream and
// inventories the TOC builder consumes. It is a line-oriented scanner, not a
// full Markdown parser: ATX headings, YAML frontmatter, fenced code blocks
// and inline anchor links are the only constructs it recognizes.
package mdparse

import (
	"regexp"
	"strings"
	"unicode"

	"mddelta/internal/toc"
)

// Document is one parsed Markdown file, split into frontmatter and body with
// every inventory the TOC builder and delta engine need.
type Document struct {
	Body                 string
	FrontmatterRaw       string
	FrontmatterCanonical string
	Frontmatter          map[string]any
	Title                string
	BodyStartLine        int

	Headings   []toc.HeadingEvent
	CodeBlocks []toc.CodeBlockInfo
	Links      []toc.InternalLinkInfo
}

// TocInput adapts the document to the builder contract.
func (d *Document) TocInput() toc.BuildInput {
	return toc.BuildInput{
		Body:                 d.Body,
		FrontmatterRaw:       d.FrontmatterRaw,
		FrontmatterCanonical: d.FrontmatterCanonical,
		Title:                d.Title,
		BodyStartLine:        d.BodyStartLine,
		Headings:             d.Headings,
		CodeBlocks:           d.CodeBlocks,
		Links:                d.Links,
	}
}

var anchorLink = regexp.MustCompile(`\[([^\]]*)\]\(#([^)\s]+)\)`)

// Parse scans src into a Document. It never fails on malformed Markdown;
// unrecognized lines are plain prelude text.
func Parse(src string) (*Document, error) {
	doc := &Document{BodyStartLine: 1}
	body := src

	if fm, rest, bodyLine, ok := splitFrontmatter(src); ok {
		doc.FrontmatterRaw = fm
		doc.BodyStartLine = bodyLine
		body = rest
		decodeFrontmatter(doc)
	}
	doc.Body = body

	lines := strings.Split(body, "\n")
	offset := 0

	inFence := false
	var fenceMarker string
	var fenceInfo string
	var fenceStartLine int
	var fenceBuf strings.Builder

	for i, line := range lines {
		fileLine := doc.BodyStartLine + i
		lineLen := len(line)
		// Every line but the last is followed by its newline.
		spanEnd := offset + lineLen
		if i < len(lines)-1 {
			spanEnd++
		}

		trimmed := strings.TrimSpace(line)

		if inFence {
			if isFenceClose(trimmed, fenceMarker) {
				lang, info := splitFenceInfo(fenceInfo)
				doc.CodeBlocks = append(doc.CodeBlocks, toc.CodeBlockInfo{
					Language: lang,
					Info:     info,
					Content:  fenceBuf.String(),
					Lines:    toc.LineRange{Start: fenceStartLine, End: fileLine},
				})
				inFence = false
				fenceBuf.Reset()
			} else {
				fenceBuf.WriteString(line)
				fenceBuf.WriteString("\n")
			}
			offset = spanEnd
			continue
		}

		if marker, info, ok := fenceOpen(trimmed); ok {
			inFence = true
			fenceMarker = marker
			fenceInfo = info
			fenceStartLine = fileLine
			offset = spanEnd
			continue
		}

		if level, title, ok := atxHeading(trimmed); ok {
			doc.Headings = append(doc.Headings, toc.HeadingEvent{
				Level: level,
				Title: title,
				Slug:  Slugify(title),
				Span:  toc.Span{Start: offset, End: spanEnd},
				Lines: toc.LineRange{Start: fileLine, End: fileLine},
			})
		} else {
			for _, m := range anchorLink.FindAllStringSubmatchIndex(line, -1) {
				doc.Links = append(doc.Links, toc.InternalLinkInfo{
					Text:   line[m[2]:m[3]],
					Target: line[m[4]:m[5]],
					Line:   fileLine,
					Offset: offset + m[0],
				})
			}
		}
		offset = spanEnd
	}

	// An unterminated fence is still a code block, running to end of file.
	if inFence {
		lang, info := splitFenceInfo(fenceInfo)
		doc.CodeBlocks = append(doc.CodeBlocks, toc.CodeBlockInfo{
			Language: lang,
			Info:     info,
			Content:  fenceBuf.String(),
			Lines:    toc.LineRange{Start: fenceStartLine, End: doc.BodyStartLine + len(lines) - 1},
		})
	}

	return doc, nil
}

// BuildToc parses src and assembles its table of contents in one call.
func BuildToc(src string) (*toc.MarkdownToc, *Document, error) {
	doc, err := Parse(src)
	if err != nil {
		return nil, nil, err
	}
	t, err := toc.Build(doc.TocInput())
	if err != nil {
		return nil, nil, err
	}
	return t, doc, nil
}

func atxHeading(trimmed string) (level int, title string, ok bool) {
	for _, r := range trimmed {
		if r == '#' {
			level++
		} else {
			break
		}
	}
	if level == 0 || level > 6 {
		return 0, "", false
	}
	if len(trimmed) == level {
		return level, "", true
	}
	if trimmed[level] != ' ' && trimmed[level] != '\t' {
		return 0, "", false
	}
	title = strings.TrimSpace(trimmed[level:])
	// A closing hash run is decoration only when whitespace separates it from
	// the title ("## Title ##"); a bare trailing hash is title text ("# C#").
	if stripped := strings.TrimRight(title, "#"); stripped != title {
		if stripped == "" || strings.HasSuffix(stripped, " ") || strings.HasSuffix(stripped, "\t") {
			title = strings.TrimRight(stripped, " \t")
		}
	}
	return level, title, true
}

func fenceOpen(trimmed string) (marker, info string, ok bool) {
	for _, m := range []string{"```", "~~~"} {
		if strings.HasPrefix(trimmed, m) {
			rest := strings.TrimLeft(trimmed, string(m[0]))
			// An opening backtick fence cannot carry backticks in its info string.
			if m == "```" && strings.Contains(rest, "`") {
				return "", "", false
			}
			return m, strings.TrimSpace(rest), true
		}
	}
	return "", "", false
}

func isFenceClose(trimmed, marker string) bool {
	if !strings.HasPrefix(trimmed, marker) {
		return false
	}
	return strings.TrimLeft(trimmed, string(marker[0])) == ""
}

func splitFenceInfo(info string) (language, rest string) {
	fields := strings.Fields(info)
	if len(fields) == 0 {
		return "", ""
	}
	return fields[0], info
}

// Slugify derives the anchor identifier for a heading title: lowercase, with
// every run of non-alphanumeric characters collapsed to a single hyphen.
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	var b strings.Builder
	prevDash := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			prevDash = false
			continue
		}
		if !prevDash {
			b.WriteByte('-')
			prevDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}
