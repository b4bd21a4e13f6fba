package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceMux/pkg/pinmux"
)

type pinsOptions struct {
	*rootOptions
	input    string
	filterBy string
}

func newPinsCmd(root *rootOptions) *cobra.Command {
	opts := &pinsOptions{rootOptions: root}

	pinsCmd := &cobra.Command{
		Use:   "pins [filter-file]",
		Short: "Show parsed pin records",
		Long: `Parse a pin table and print each pin with its signals and the
conditions that select them, fully parenthesised.

Examples:
  pinmux pins -i ast2400.txt
  pinmux pins groups.txt < ast2400.txt`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPins(cmd, args, opts)
		},
	}

	pinsCmd.Flags().StringVarP(&opts.input, "input", "i", "",
		"pin table file (default: stdin)")
	pinsCmd.Flags().StringVar(&opts.filterBy, "filter-by", "group",
		"pin field the filter matches: group or default")

	return pinsCmd
}

func runPins(cmd *cobra.Command, args []string, opts *pinsOptions) error {
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

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Pins: %d total\n", len(pins))
	for _, pin := range pins {
		fmt.Fprintf(out, "  %-8s %-12s %-10s", pin.Name, pin.Default, pin.Group)
		fmt.Fprintf(out, " high %s: %s", pin.High.Name, pin.High.Expr)
		if pin.Low != nil {
			fmt.Fprintf(out, "  low %s: %s", pin.Low.Name, pin.Low.Expr)
		}
		fmt.Fprintln(out)
	}
	return nil
}
