package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// rootOptions holds the global flags.
type rootOptions struct {
	verbose bool
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "pinmux",
		Short: "Pin multiplexing table analyzer",
		Long: `Parse SoC pin-mux tables and group alternate signals into networks of
signals that are configured through shared register bits.

Examples:
  pinmux networks < ast2400.txt                  # Report all networks
  pinmux networks groups.txt < ast2400.txt       # Only pins in the listed groups
  pinmux networks --format json -i ast2400.txt   # Machine-readable report
  pinmux pins -i ast2400.txt                     # Show parsed pin records
  pinmux reflow < datasheet.txt                  # Reassemble a wrapped table`,
		Version:       "0.3.0",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(newNetworksCmd(opts))
	rootCmd.AddCommand(newPinsCmd(opts))
	rootCmd.AddCommand(newDescriptorsCmd(opts))
	rootCmd.AddCommand(newReflowCmd(opts))

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// logger writes debug records to stderr when --verbose is set.
func (o *rootOptions) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// openInput returns the named file, or stdin when path is empty or "-".
func openInput(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	return file, nil
}
