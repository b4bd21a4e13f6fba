package cmd

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceMux/pkg/network"
	"github.com/OpenTraceLab/OpenTraceMux/pkg/pinmux"
)

type descriptorsOptions struct {
	*rootOptions
	input    string
	filterBy string
}

func newDescriptorsCmd(root *rootOptions) *cobra.Command {
	opts := &descriptorsOptions{rootOptions: root}

	descriptorsCmd := &cobra.Command{
		Use:   "descriptors [filter-file]",
		Short: "List register descriptors and the signals that test them",
		Long: `Parse a pin table and print every distinct register descriptor, in
order of first appearance, with the signals whose conditions test it.

Examples:
  pinmux descriptors -i ast2400.txt
  pinmux descriptors --filter-by default -i ast2400.txt`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDescriptors(cmd, args, opts)
		},
	}

	descriptorsCmd.Flags().StringVarP(&opts.input, "input", "i", "",
		"pin table file (default: stdin)")
	descriptorsCmd.Flags().StringVar(&opts.filterBy, "filter-by", "group",
		"pin field the filter and keys use: group or default")

	return descriptorsCmd
}

func runDescriptors(cmd *cobra.Command, args []string, opts *descriptorsOptions) error {
	run, err := loadRun(cmd, args, "", opts.filterBy)
	if err != nil {
		return err
	}

	in, err := openInput(cmd, opts.input)
	if err != nil {
		return err
	}
	defer in.Close()

	pins, err := pinmux.ReadPins(in,
		pinmux.WithLogger(opts.logger(cmd.ErrOrStderr())),
		pinmux.WithFilter(run.Field, run.Filter))
	if err != nil {
		return fmt.Errorf("failed to parse pin table: %w", err)
	}

	var buf bytes.Buffer
	if err := network.WriteUsage(&buf, network.Usage(pins, run.Field)); err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(buf.Bytes())
	return err
}
