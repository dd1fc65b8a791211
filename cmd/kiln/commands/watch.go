package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/kiln/internal/app"
)

func (c *CLI) newWatchCmd() *cobra.Command {
	var (
		project        projectFlags
		exec           execFlags
		opts           app.WatchOptions
		noInitialBuild bool
	)
	cmd := &cobra.Command{
		Use:   "watch [target] [-- runArgs...]",
		Short: "Rebuild on every change and restart the run step",
		Long: "Watch the project for changes, rebuild the target after a quiet period, " +
			"and with --run restart the run step after every successful build. " +
			"Arguments after -- are passed to the run step.",
		Args: func(cmd *cobra.Command, args []string) error {
			n := len(args)
			if dash := cmd.ArgsLenAtDash(); dash >= 0 {
				n = dash
			}
			return cobra.MaximumNArgs(1)(cmd, args[:n])
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			targets := args
			if dash := cmd.ArgsLenAtDash(); dash >= 0 {
				targets = args[:dash]
				opts.RunArgs = args[dash:]
			}
			opts.ProjectOptions = c.projectOptions(&project, targets)
			opts.Clean = exec.clean
			opts.Force = exec.force
			opts.Parallelism = exec.jobs
			opts.SkipInitialBuild = noInitialBuild
			return c.app.Watch(cmd.Context(), opts)
		},
	}

	flags := cmd.Flags()
	project.register(flags)
	exec.register(flags)
	flags.BoolVarP(&opts.Run, "run", "r", false, "Start the run step after every successful build")
	flags.IntVarP(&opts.Port, "port", "p", 0, "Port handed to the run step (default: from the config)")
	flags.DurationVar(&opts.Debounce, "debounce", 0, "Quiet period before a rebuild (default: from the config, 300ms)")
	flags.StringArrayVar(&opts.Ignore, "ignore", nil, "Glob of paths that never trigger a rebuild (repeatable)")
	flags.StringVar(&opts.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")
	flags.BoolVar(&noInitialBuild, "no-initial-build", false, "Wait for the first change before building")
	return cmd
}
