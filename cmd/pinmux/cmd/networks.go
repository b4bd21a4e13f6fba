package cmd

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceMux/internal/config"
	"github.com/OpenTraceLab/OpenTraceMux/pkg/network"
	"github.com/OpenTraceLab/OpenTraceMux/pkg/pinmux"
)

type networksOptions struct {
	*rootOptions
	input      string
	configPath string
	filterBy   string
	format     string
	all        bool
}

func newNetworksCmd(root *rootOptions) *cobra.Command {
	opts := &networksOptions{rootOptions: root}

	networksCmd := &cobra.Command{
		Use:   "networks [filter-file]",
		Short: "Report networks of signals that share register bits",
		Long: `Read a pin table (stdin by default) and report every network of two or
more signals tied together by a shared register bit. For each network the
common bits are listed with the number of pins testing them, followed by
each pin's signals and the bits only that pin tests.

The optional filter file lists one group label (or default function, with
--filter-by default) per line; only matching pins are analyzed.

Examples:
  pinmux networks < ast2400.txt
  pinmux networks groups.txt < ast2400.txt
  pinmux networks --filter-by default functions.txt -i ast2400.txt
  pinmux networks --format sexp --all -i ast2400.txt`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNetworks(cmd, args, opts)
		},
	}

	networksCmd.Flags().StringVarP(&opts.input, "input", "i", "",
		"pin table file (default: stdin)")
	networksCmd.Flags().StringVarP(&opts.configPath, "config", "c", "",
		"YAML run configuration")
	networksCmd.Flags().StringVar(&opts.filterBy, "filter-by", "group",
		"pin field the filter matches and members sort by: group or default")
	networksCmd.Flags().StringVarP(&opts.format, "format", "f", "text",
		"output format: text, json, cbor or sexp")
	networksCmd.Flags().BoolVarP(&opts.all, "all", "a", false,
		"include networks with a single signal")

	return networksCmd
}

// loadRun merges the config file, flags and filter-file argument.
func loadRun(cmd *cobra.Command, args []string, configPath, filterBy string) (*config.Run, error) {
	run := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		run = loaded
	}

	if configPath == "" || cmd.Flags().Changed("filter-by") {
		field, err := pinmux.ParseField(filterBy)
		if err != nil {
			return nil, err
		}
		run.Field = field
		run.Network.SortBy = field
	}

	if len(args) > 0 {
		keys, err := config.ReadFilterFile(args[0])
		if err != nil {
			return nil, err
		}
		run.Filter = append(run.Filter, keys...)
	}

	return run, nil
}

func runNetworks(cmd *cobra.Command, args []string, opts *networksOptions) error {
	run, err := loadRun(cmd, args, opts.configPath, opts.filterBy)
	if err != nil {
		return err
	}
	if opts.configPath == "" || cmd.Flags().Changed("format") {
		run.Network.Format = network.Format(opts.format)
	}
	if opts.configPath == "" || cmd.Flags().Changed("all") {
		run.Network.IncludeSingletons = opts.all
	}
	if err := run.Network.Validate(); err != nil {
		return err
	}

	logger := opts.logger(cmd.ErrOrStderr())

	in, err := openInput(cmd, opts.input)
	if err != nil {
		return err
	}
	defer in.Close()

	pins, err := pinmux.ReadPins(in,
		pinmux.WithLogger(logger),
		pinmux.WithFilter(run.Field, run.Filter))
	if err != nil {
		return fmt.Errorf("failed to parse pin table: %w", err)
	}

	res := network.Build(pins, network.WithLogger(logger))
	rep := res.Report(run.Network)

	if opts.verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "Parsed %d pin(s), %d network(s), %d reported\n",
			len(pins), len(res.Networks), rep.NetworkCount)
	}

	// Encode fully before writing so a failure leaves stdout empty
	var buf bytes.Buffer
	if err := network.Write(&buf, rep, run.Network.Format); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	_, err = buf.WriteTo(cmd.OutOrStdout())
	return err
}
