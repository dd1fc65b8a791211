package commands

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.trai.ch/kiln/internal/app"
	"go.trai.ch/kiln/internal/core/domain"
)

// projectFlags are shared by build, watch and plan.
type projectFlags struct {
	mode   string
	output string
}

func (p *projectFlags) register(flags *pflag.FlagSet) {
	flags.StringVarP(&p.mode, "mode", "m", os.Getenv(domain.EnvMode), "Build mode: debug or release (env "+domain.EnvMode+")")
	flags.StringVarP(&p.output, "output", "o", "", "Output root (overrides the config and "+domain.EnvOutput+")")
}

func (c *CLI) projectOptions(p *projectFlags, targets []string) app.ProjectOptions {
	return app.ProjectOptions{
		ConfigPath: c.configPath,
		Mode:       p.mode,
		Output:     p.output,
		Targets:    targets,
	}
}

// execFlags control how targets are executed.
type execFlags struct {
	clean bool
	force bool
	jobs  int
}

func (e *execFlags) register(flags *pflag.FlagSet) {
	flags.BoolVar(&e.clean, "clean", false, "Remove the output tree before building")
	flags.BoolVarP(&e.force, "force", "f", false, "Rebuild every target regardless of staleness")
	flags.IntVarP(&e.jobs, "jobs", "j", 0, "Maximum targets built at once (default: number of CPUs)")
}

func (c *CLI) newBuildCmd() *cobra.Command {
	var (
		project projectFlags
		exec    execFlags
	)
	cmd := &cobra.Command{
		Use:   "build [targets...]",
		Short: "Build targets and their prerequisites",
		Long: "Build the given targets, or the configured default target, " +
			"running every prerequisite that is out of date first.",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := c.app.Build(cmd.Context(), app.BuildOptions{
				ProjectOptions: c.projectOptions(&project, args),
				Clean:          exec.clean,
				Force:          exec.force,
				Parallelism:    exec.jobs,
				UI:             c.ui,
			})
			return err
		},
	}
	project.register(cmd.Flags())
	exec.register(cmd.Flags())
	return cmd
}
