package colorize

import (
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
)

// PdisDark is the style for p-code listings.
var PdisDark = styles.Register(chroma.MustNewStyle("pdis-dark", chroma.StyleEntries{
	chroma.Text:       "#FFFFFF",
	chroma.Background: "bg:#1e1e1e",
	chroma.Comment:    "#EBC2ED", // diagnostics

	chroma.CommentPreproc: "#4F4F4F", // word address and half
	chroma.NameNamespace:  "#7C7C7C", // segment+offset and owning procedure

	chroma.Keyword:      "#FFFFFF", // mnemonics
	chroma.KeywordType:  "#FF8700", // undefined opcodes
	chroma.NameVariable: "#7C9C9D", // L, G and C slots
	chroma.NameBuiltin:  "#7C9C9D", // lev, seg and procedure references
	chroma.NameProperty: "#9CDCFE", // structure field paths

	chroma.LiteralNumber:    "#FF5F87",
	chroma.LiteralNumberHex: "#B5CEA8", // raw bytes and word values

	chroma.NameLabel: "#FFD700",
	chroma.Operator:  "#FFFFFF",
}))
