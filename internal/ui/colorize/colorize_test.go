package colorize

import (
	"testing"

	"github.com/alecthomas/chroma/v2"
)

func TestTokens(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		value string
		want  chroma.TokenType
	}{
		{"address", "0005H seg1+000b proc1: 9c          seg1.proc1.00:   nop", "0005H", chroma.CommentPreproc},
		{"position", "0005H seg1+000b proc1: 9c          seg1.proc1.00:   nop", "seg1+000b proc1:", chroma.NameNamespace},
		{"label", "0005H seg1+000b proc1: 9c          seg1.proc1.00:   nop", "seg1.proc1.00:", chroma.NameLabel},
		{"mnemonic", "0005H seg1+000b proc1: 9c          seg1.proc1.00:   nop", "nop", chroma.Keyword},
		{"raw byte", "0005H seg1+000b proc1: 9c          seg1.proc1.00:   nop", "9c", chroma.LiteralNumberHex},
		{"local", "0003L seg1+0006 proc1: 20                           sldl     L1", "L1", chroma.NameVariable},
		{"branch", "0003H seg1+0007 proc1: 8a 02                        ujp      seg1.proc1.00", "seg1.proc1.00", chroma.NameLabel},
		{"external", "0003H seg1+0007 proc1: 94 02 05                     cxg      seg2 5", "seg2", chroma.NameBuiltin},
		{"field", "0003:  0101  seg1.proc1_offset", "seg1.proc1_offset", chroma.NameProperty},
		{"case ref", "0009:  0000  seg1.proc1.case0009[5] -> seg1.proc1.00", "seg1.proc1.00", chroma.NameLabel},
		{"diagnostic", "; segment length 000a, proc dir offset 0007", "; segment length 000a, proc dir offset 0007", chroma.Comment},
		{"undefined", "0004L seg1+0008 proc1: 45                           undefined", "undefined", chroma.KeywordType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, err := Tokens(tt.line)
			if err != nil {
				t.Fatal(err)
			}
			for _, tok := range toks {
				if tok.Value == tt.value {
					if tok.Type != tt.want {
						t.Errorf("%q is %s, want %s", tt.value, tok.Type, tt.want)
					}
					return
				}
			}
			t.Errorf("no token %q in %v", tt.value, toks)
		})
	}
}

func TestLineDisabled(t *testing.T) {
	t.Setenv(EnvNoColor, "1")
	line := "0003:  0101  seg1.segnum"
	if got := Line(line); got != line {
		t.Errorf("Line() = %q with colour disabled", got)
	}
}

func TestLineKeepsText(t *testing.T) {
	t.Setenv(EnvNoColor, "")
	line := "0005H seg1+000b proc1: 9c          seg1.proc1.00:   nop"
	got := Line(line)
	if got == line {
		t.Error("Line() added no colour")
	}
	if StripANSI(got) != line {
		t.Errorf("StripANSI(Line()) = %q, want %q", StripANSI(got), line)
	}
}
