// Package colorize highlights pdis listings for the terminal with chroma.
package colorize

import (
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// EnvNoColor disables colouring when set to any value.
const EnvNoColor = "PDIS_NO_COLOR"

// Disabled reports whether colouring is turned off in the environment.
func Disabled() bool {
	return os.Getenv(EnvNoColor) != ""
}

// getListingLexer returns the p-code lexer, falling back to plain text.
func getListingLexer() chroma.Lexer {
	for _, name := range []string{"pcode", "plaintext"} {
		if lexer := lexers.Get(name); lexer != nil {
			return lexer
		}
	}
	return lexers.Fallback
}

// getListingStyle returns the listing style with fallbacks
func getListingStyle() *chroma.Style {
	for _, name := range []string{"pdis-dark", "dracula", "monokai"} {
		if style := styles.Get(name); style != nil {
			return style
		}
	}
	return styles.Fallback
}

// getTerminalFormatter returns an appropriate terminal formatter
func getTerminalFormatter() chroma.Formatter {
	for _, name := range []string{"terminal16m", "terminal256"} {
		if formatter := formatters.Get(name); formatter != nil {
			return formatter
		}
	}
	return formatters.Fallback
}

// Listing colours a block of listing text. On any error the text is
// returned unchanged along with the error.
func Listing(text string) (string, error) {
	if Disabled() {
		return text, nil
	}

	iterator, err := getListingLexer().Tokenise(nil, text)
	if err != nil {
		return text, err
	}

	var buf strings.Builder
	if err := getTerminalFormatter().Format(&buf, getListingStyle(), iterator); err != nil {
		return text, err
	}
	return buf.String(), nil
}

// Line colours one listing line.
func Line(line string) string {
	out, err := Listing(line)
	if err != nil {
		return line
	}
	return strings.TrimSuffix(out, "\n")
}

// Tokens returns the chroma tokens of text, without colouring. Whitespace
// tokens are dropped.
func Tokens(text string) ([]chroma.Token, error) {
	iterator, err := Pcode.Tokenise(nil, text)
	if err != nil {
		return nil, err
	}
	var out []chroma.Token
	for _, tok := range iterator.Tokens() {
		if strings.TrimSpace(tok.Value) == "" {
			continue
		}
		out = append(out, tok)
	}
	return out, nil
}

// StripANSI removes ANSI colour sequences from s.
func StripANSI(s string) string {
	var result strings.Builder
	inEscape := false

	for _, r := range s {
		if r == '\x1b' {
			inEscape = true
		} else if inEscape {
			if r == 'm' {
				inEscape = false
			}
		} else {
			result.WriteRune(r)
		}
	}

	return result.String()
}
