package commands

import "github.com/spf13/cobra"

func (c *CLI) newPlanCmd() *cobra.Command {
	var project projectFlags
	cmd := &cobra.Command{
		Use:   "plan [targets...]",
		Short: "Print the build plan without running anything",
		Args:  cobra.ArbitraryArgs,
		RunE: func(_ *cobra.Command, args []string) error {
			_, err := c.app.Plan(c.projectOptions(&project, args))
			return err
		},
	}
	project.register(cmd.Flags())
	return cmd
}
