package render

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/charmbracelet/lipgloss"
)

// Highlight returns source with ANSI syntax coloring for the given language.
// Unknown languages and tokenizer failures fall back to the plain source.
// Colors are loosely based on the One Dark theme.
func Highlight(language, source string) string {
	if source == "" || language == "" {
		return source
	}
	lexer := lexers.Get(language)
	if lexer == nil {
		return source
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return source
	}

	var sb strings.Builder
	for token := iterator(); token != chroma.EOF; token = iterator() {
		style := tokenStyle(token.Type)
		if style == "" {
			sb.WriteString(token.Value)
			continue
		}
		sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(style)).Render(token.Value))
	}
	return sb.String()
}

func tokenStyle(tt chroma.TokenType) string {
	switch {
	case tt.InCategory(chroma.Keyword):
		return "#c678dd"
	case tt.InCategory(chroma.Comment):
		return "#5c6370"
	case tt.InSubCategory(chroma.LiteralString):
		return "#98c379"
	case tt.InSubCategory(chroma.LiteralNumber):
		return "#d19a66"
	case tt.InCategory(chroma.Operator):
		return "#56b6c2"
	case tt == chroma.NameFunction || tt == chroma.NameFunctionMagic:
		return "#61afef"
	case tt.InCategory(chroma.Name):
		return "#e06c75"
	default:
		return ""
	}
}
