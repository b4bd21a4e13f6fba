package cmd

import (
	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceMux/pkg/reflow"
)

func newReflowCmd(root *rootOptions) *cobra.Command {
	var input string

	reflowCmd := &cobra.Command{
		Use:   "reflow",
		Short: "Reassemble a wrapped datasheet pin table into CSV rows",
		Long: `Read a pin table whose description column wraps across tokens and
print one comma-separated row per pin: ball, name, type, description and
direction. A row ends at the first direction word (input, output, in/out,
unused) once it has at least five tokens.

Examples:
  pinmux reflow < datasheet.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := openInput(cmd, input)
			if err != nil {
				return err
			}
			defer in.Close()

			return reflow.Write(cmd.OutOrStdout(), in,
				reflow.WithLogger(root.logger(cmd.ErrOrStderr())))
		},
	}

	reflowCmd.Flags().StringVarP(&input, "input", "i", "",
		"table file (default: stdin)")

	return reflowCmd
}
