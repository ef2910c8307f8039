package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	pathpkg "path/filepath"
	"runtime/pprof"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"pdis/internal/config"
	"pdis/internal/disasm"
	"pdis/internal/image"
	"pdis/internal/listing"
	"pdis/internal/logging"
	"pdis/internal/pdis/log"
	"pdis/internal/ui/colorize"
)

func init() {
	rootCmd.PersistentFlags().StringP("cwd", "c", "", "Current working directory")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Debug")
	rootCmd.PersistentFlags().String("config", "", "JSON configuration file")
	rootCmd.PersistentFlags().StringP("format", "t", "", "Image format: auto, rom, boot, segment or codefile")
	rootCmd.PersistentFlags().String("base", "", "Load address override (e.g. 0xf400)")
	rootCmd.PersistentFlags().Int("sib-count", 0, "Number of SIB vector entries in boot images")
	rootCmd.PersistentFlags().String("name", "", "Segment name for single-segment images")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colour")

	rootCmd.Flags().BoolP("help", "h", false, "Help")
	rootCmd.Flags().BoolP("json", "j", false, "Output listing records as JSON")
	rootCmd.Flags().BoolP("summary", "s", false, "Show a segment and procedure summary instead of the listing")
	rootCmd.Flags().StringP("output", "o", "", "Write output to file")
	rootCmd.Flags().String("cpuprofile", "", "Write CPU profile to file")
	rootCmd.Flags().String("memprofile", "", "Write memory profile to file")
}

var rootCmd = &cobra.Command{
	Use:   "pdis [image]",
	Short: "UCSD p-code disassembler",
	Long: `Pdis disassembles UCSD p-System images: boot ROM dumps, boot tracks,
single code segments and code files. It follows the boot structures to
every segment, decodes each procedure and labels branch and case targets.`,
	Example: `
# List a boot ROM
pdis boot.rom

# Decode a code file and write JSON records
pdis -j -o system.json SYSTEM.PASCAL.code

# Summarise the segments of a compressed image
pdis -s image.seg.gz

# Browse a listing interactively
pdis view boot.rom
  `,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if _, err := ResolveCwd(cmd); err != nil {
			return err
		}
		debug, _ := cmd.Flags().GetBool("debug")
		logFile := ""
		if debug {
			logFile = "pdis-debug.log"
		}
		log.Setup(logFile, debug)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Setup CPU profiling if requested
		cpuprofile, _ := cmd.Flags().GetString("cpuprofile")
		if cpuprofile != "" {
			f, err := os.Create(cpuprofile)
			if err != nil {
				return fmt.Errorf("could not create CPU profile: %w", err)
			}
			defer f.Close()
			if err := pprof.StartCPUProfile(f); err != nil {
				return fmt.Errorf("could not start CPU profile: %w", err)
			}
			defer pprof.StopCPUProfile()
		}

		memprofile, _ := cmd.Flags().GetString("memprofile")
		if memprofile != "" {
			defer func() {
				f, err := os.Create(memprofile)
				if err != nil {
					fmt.Fprintf(os.Stderr, "could not create memory profile: %v\n", err)
					return
				}
				defer f.Close()
				if err := pprof.WriteHeapProfile(f); err != nil {
					fmt.Fprintf(os.Stderr, "could not write memory profile: %v\n", err)
				}
			}()
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		doc, err := decodeFile(args[0], cfg)
		if err != nil {
			return err
		}

		var w io.Writer = cmd.OutOrStdout()
		if cfg.Output != "" {
			f, err := os.Create(cfg.Output)
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			defer f.Close()
			w = f
		}

		jsonOutput, _ := cmd.Flags().GetBool("json")
		summary, _ := cmd.Flags().GetBool("summary")
		color := useColor(cfg, w)
		switch {
		case jsonOutput:
			return listing.WriteJSON(w, doc)
		case summary:
			return listing.WriteSummary(w, doc, terminalWidth(), color)
		}
		return listing.WriteText(w, doc, listing.Options{Color: color})
	},
}

// loadConfig layers the configuration file, the environment and the
// command-line flags over the defaults, in that order.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Format, _ = flags.GetString("format")
	}
	if flags.Changed("base") {
		cfg.Base, _ = flags.GetString("base")
	}
	if flags.Changed("sib-count") {
		cfg.SibCount, _ = flags.GetInt("sib-count")
	}
	if flags.Changed("name") {
		cfg.SegmentName, _ = flags.GetString("name")
	}
	if flags.Changed("no-color") {
		cfg.NoColor, _ = flags.GetBool("no-color")
	}
	if flags.Changed("debug") {
		cfg.Debug, _ = flags.GetBool("debug")
	}
	if flags.Lookup("output") != nil && flags.Changed("output") {
		cfg.Output, _ = flags.GetString("output")
	}
	return cfg, cfg.Validate()
}

// decodeFile reads the image at path and disassembles every unit in it.
func decodeFile(path string, cfg config.Config) (*listing.Document, error) {
	file, err := readImage(path, cfg)
	if err != nil {
		return nil, err
	}

	lg := logging.NewLogger()
	defer lg.Close()
	if cfg.Debug {
		lg.SetLevel(logging.ParseLevel("debug"))
	}

	doc, err := listing.Decode(file, disasm.WithLogger(lg.Logger))
	if err != nil {
		return nil, err
	}
	slog.Debug("Decoded image", "file", path, "format", doc.Format, "units", len(doc.Units))
	return doc, nil
}

func readImage(path string, cfg config.Config) (*image.File, error) {
	opts, err := cfg.ImageOptions()
	if err != nil {
		return nil, err
	}

	absPath, err := pathpkg.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}
	f, err := os.Open(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", path)
		}
		return nil, fmt.Errorf("cannot access file: %w", err)
	}
	defer f.Close()

	return image.Read(pathpkg.Base(path), f, opts)
}

// useColor reports whether output to w should be highlighted.
func useColor(cfg config.Config, w io.Writer) bool {
	if cfg.NoColor || colorize.Disabled() {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(f.Fd())
}

func terminalWidth() int {
	if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 {
		return w
	}
	return 80
}

func Execute() {
	// Piped output and machine-readable modes bypass fang's styled help
	// and error rendering.
	plain := !term.IsTerminal(os.Stdout.Fd())
	for _, arg := range os.Args[1:] {
		if arg == "--json" || arg == "-j" {
			plain = true
			break
		}
	}

	if plain {
		if err := rootCmd.Execute(); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}
		return
	}
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}

func ResolveCwd(cmd *cobra.Command) (string, error) {
	cwd, _ := cmd.Flags().GetString("cwd")
	if cwd != "" {
		err := os.Chdir(cwd)
		if err != nil {
			return "", fmt.Errorf("failed to change directory: %v", err)
		}
		return cwd, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current working directory: %v", err)
	}
	return cwd, nil
}
