package cmd

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"pdis/internal/config"
	"pdis/internal/image"
)

func wordsToBytes(words ...uint16) []byte {
	out := make([]byte, 2*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint16(out[2*i:], w)
	}
	return out
}

// segment is a one-procedure segment: sldl 1; nop; directory.
var segment = []uint16{5, 7, 0, 0x9c20, 2, 0x0101}

func writeImage(t *testing.T, name string, words ...uint16) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, wordsToBytes(words...), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// flagCmd returns a command carrying the configuration flags, parsed
// from args.
func flagCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	c := &cobra.Command{Use: "test"}
	c.Flags().String("config", "", "")
	c.Flags().StringP("format", "t", "", "")
	c.Flags().String("base", "", "")
	c.Flags().Int("sib-count", 0, "")
	c.Flags().String("name", "", "")
	c.Flags().Bool("no-color", false, "")
	c.Flags().BoolP("debug", "d", false, "")
	c.Flags().StringP("output", "o", "", "")
	if err := c.Flags().Parse(args); err != nil {
		t.Fatal(err)
	}
	return c
}

func TestLoadConfigPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pdis.json")
	if err := os.WriteFile(path, []byte(`{"format":"segment","sibCount":4,"segmentName":"file"}`), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(config.EnvSibCount, "3")
	t.Setenv(config.EnvFormat, "")

	cfg, err := loadConfig(flagCmd(t, "--config", path, "--name", "flag", "-o", "out.txt"))
	if err != nil {
		t.Fatal(err)
	}
	want := config.Config{Format: "segment", SibCount: 3, SegmentName: "flag", Output: "out.txt"}
	if cfg != want {
		t.Errorf("config = %+v\nwant %+v", cfg, want)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"format", []string{"--format", "tape"}},
		{"base", []string{"--base", "0x10000"}},
		{"sib count", []string{"--sib-count", "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := loadConfig(flagCmd(t, tt.args...)); err == nil {
				t.Errorf("loadConfig(%v) accepted invalid settings", tt.args)
			}
		})
	}
}

func TestDecodeFile(t *testing.T) {
	path := writeImage(t, "prog.seg", segment...)
	cfg := config.Default()
	cfg.SegmentName = "seg1"

	doc, err := decodeFile(path, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if doc.File != "prog.seg" || doc.Format != image.FormatSegment.String() {
		t.Errorf("document = %s/%s", doc.File, doc.Format)
	}
	if n := doc.Units[0].Summary.Procedures(); n != 1 {
		t.Errorf("procedures = %d, want 1", n)
	}

	if _, err := decodeFile(filepath.Join(t.TempDir(), "missing"), cfg); err == nil || !strings.Contains(err.Error(), "file not found") {
		t.Errorf("decodeFile(missing) error = %v", err)
	}
}

func TestWriteRegions(t *testing.T) {
	path := writeImage(t, "prog.seg", segment...)
	cfg := config.Default()
	file, err := readImage(path, cfg)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := writeRegions(&buf, file, true); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "; unit seg: 1 regions, 0 labels") {
		t.Errorf("missing unit header:\n%s", out)
	}
	if !strings.Contains(out, "0000  segment") {
		t.Errorf("missing segment region:\n%s", out)
	}
}

func TestRootJSON(t *testing.T) {
	path := writeImage(t, "prog.seg", segment...)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"--json", "--name", "seg1", path})
	defer rootCmd.SetArgs(nil)
	if err := rootCmd.Execute(); err != nil {
		t.Fatal(err)
	}

	var doc struct {
		Format string `json:"format"`
		Units  []struct {
			Name string `json:"name"`
		} `json:"units"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if doc.Format != "segment" || len(doc.Units) != 1 || doc.Units[0].Name != "seg1" {
		t.Errorf("document = %+v", doc)
	}
}

func TestSchemaCommand(t *testing.T) {
	var buf bytes.Buffer
	schemaCmd.SetOut(&buf)
	if err := schemaCmd.RunE(schemaCmd, nil); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"sibCount"`) {
		t.Errorf("schema missing sibCount:\n%s", buf.String())
	}
}
