package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rook-computer/rendersettings/internal/fonts"
)

func newFontsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fonts",
		Short: "List the font families labels can use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range fonts.Default().Families() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
