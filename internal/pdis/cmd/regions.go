package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"pdis/internal/disasm"
	"pdis/internal/image"
)

var regionsCmd = &cobra.Command{
	Use:   "regions [image]",
	Short: "List the classified regions of an image",
	Long: `Regions runs the decoder and prints every address it classified, with
the structure kind and its length in words, instead of the listing.`,
	Example: `
# Show the structures reached from a boot ROM
pdis regions boot.rom

# Include the generated labels
pdis regions -l system.code
  `,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		labels, _ := cmd.Flags().GetBool("labels")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		file, err := readImage(args[0], cfg)
		if err != nil {
			return err
		}
		slog.Info("Listing regions", "file", args[0], "format", file.Format, "units", len(file.Units))
		return writeRegions(cmd.OutOrStdout(), file, labels)
	},
}

func init() {
	regionsCmd.Flags().BoolP("labels", "l", false, "Also list generated labels")
	rootCmd.AddCommand(regionsCmd)
}

func writeRegions(w io.Writer, file *image.File, labels bool) error {
	for _, n := range file.Notes {
		fmt.Fprintf(w, "; %s\n", n)
	}
	for _, u := range file.Units {
		res, err := disasm.Disassemble(u.Mem, u.Entries)
		if err != nil {
			return fmt.Errorf("decode %s: %w", u.Name, err)
		}
		fmt.Fprintf(w, "; unit %s: %d regions, %d labels\n", u.Name, res.Regions.Len(), res.Labels.Len())
		for _, addr := range res.Regions.Addrs() {
			r, _ := res.Regions.Lookup(addr)
			fmt.Fprintf(w, "%04x  %-20s %5d\n", addr, r.Kind(), r.Len())
		}
		if labels {
			for _, name := range res.Labels.Names() {
				fmt.Fprintf(w, "  %s\n", name)
			}
		}
	}
	return nil
}
