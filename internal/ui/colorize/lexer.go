package colorize

import (
	"regexp"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"

	"pdis/internal/pcode"
)

// Pcode lexes pdis listings: instruction lines, structure fields and
// diagnostics.
var Pcode = lexers.Register(chroma.MustNewLexer(
	&chroma.Config{
		Name:      "pcode",
		Aliases:   []string{"p-code", "pdis"},
		Filenames: []string{"*.pdis", "*.lst"},
		MimeTypes: []string{"text/x-pcode-listing"},
	},
	pcodeRules,
))

func mnemonicPattern() string {
	names := pcode.Mnemonics()
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = regexp.QuoteMeta(n)
	}
	return `\b(?:` + strings.Join(quoted, "|") + `)\b`
}

func pcodeRules() chroma.Rules {
	return chroma.Rules{
		"root": {
			{Pattern: `^; .*$`, Type: chroma.Comment},
			{Pattern: `^[0-9a-f]{4}[LH]?:?`, Type: chroma.CommentPreproc},
			{Pattern: `\S+\+[0-9a-f]{4} proc\d+:`, Type: chroma.NameNamespace},
			{Pattern: `[\w]+(?:\.[\w\[\]-]+)+:`, Type: chroma.NameLabel},
			{Pattern: `->`, Type: chroma.Operator, Mutator: chroma.Push("ref")},
			{Pattern: `\b` + regexp.QuoteMeta(pcode.Undefined) + `\b`, Type: chroma.KeywordType},
			{Pattern: mnemonicPattern(), Type: chroma.Keyword},
			{Pattern: `\b[LGC]\d+\b`, Type: chroma.NameVariable},
			{Pattern: `\b\w+\.proc\d+\.\d{2,}\b`, Type: chroma.NameLabel},
			{Pattern: `\b\w+\+[0-9a-f]{4}\b`, Type: chroma.NameLabel},
			{Pattern: `\b\w+(?:\.[\w\[\]-]+)+`, Type: chroma.NameProperty},
			{Pattern: `\b(?:lev|seg|gproc|lproc|proc)\d+\b`, Type: chroma.NameBuiltin},
			{Pattern: `\b[0-9a-f]{2,4}\b`, Type: chroma.LiteralNumberHex},
			{Pattern: `-?\d+`, Type: chroma.LiteralNumber},
			{Pattern: `\s+`, Type: chroma.Text},
			{Pattern: `.`, Type: chroma.Text},
		},
		"ref": {
			{Pattern: `[ \t]+`, Type: chroma.Text},
			{Pattern: `\S+`, Type: chroma.NameLabel, Mutator: chroma.Pop(1)},
		},
	}
}
