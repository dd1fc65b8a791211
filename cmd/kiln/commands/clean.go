package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/kiln/internal/app"
)

func (c *CLI) newCleanCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove the output tree",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return c.app.Clean(app.CleanOptions{
				ConfigPath: c.configPath,
				Output:     output,
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output root (overrides the config)")
	return cmd
}
