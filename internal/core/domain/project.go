package domain

import (
	"maps"
	"path/filepath"
	"slices"
	"strconv"
	"time"
)

// WatchConfig configures the watch loop.
type WatchConfig struct {
	// Root is the absolute directory watched recursively.
	Root string
	// Ignore lists glob patterns matched against base names and root-relative paths.
	Ignore []string
	// Debounce is the quiet period before a rebuild starts.
	Debounce time.Duration
}

// RunStep describes the executable started after a successful build in watch mode.
type RunStep struct {
	Command    []string
	Args       []string
	WorkingDir string
	Env        map[string]string
	// EnvFile is a dotenv file loaded into the child's environment.
	EnvFile string
	Port    int
	// HealthPath, when set, is polled over HTTP on Port until the child answers.
	HealthPath string
}

// Argv returns the full command line of the run step.
func (r *RunStep) Argv() []string {
	argv := make([]string, 0, len(r.Command)+len(r.Args))
	argv = append(argv, r.Command...)
	return append(argv, r.Args...)
}

// Expand returns a copy of the run step with variables substituted.
func (r *RunStep) Expand(vars Vars) RunStep {
	out := RunStep{
		Command:    vars.ExpandAll(r.Command),
		Args:       vars.ExpandAll(r.Args),
		WorkingDir: vars.Expand(r.WorkingDir),
		EnvFile:    vars.Expand(r.EnvFile),
		Port:       r.Port,
		HealthPath: r.HealthPath,
	}
	if len(r.Env) > 0 {
		out.Env = make(map[string]string, len(r.Env))
		for k, v := range r.Env {
			out.Env[k] = vars.Expand(v)
		}
	}
	return out
}

// Project is a loaded kiln.yaml.
type Project struct {
	// Root is the absolute directory containing the configuration file.
	Root string
	// ConfigPath is the absolute path of the configuration file.
	ConfigPath string
	Graph      *Graph
	Modes      ModeConfig
	Output     OutputTree
	// Default is the target built when none is requested.
	Default string
	Watch   WatchConfig
	// Run is nil when the project has no run step.
	Run *RunStep
}

// Vars returns the substitution variables for a mode and port.
func (p *Project) Vars(mode BuildMode, port int) Vars {
	return Vars{
		VarOut:     p.Output.Root,
		VarRoot:    p.Root,
		VarMode:    string(mode.Name),
		VarSubpath: mode.Subpath,
		VarPort:    strconv.Itoa(port),
	}
}

// Materialize returns a graph of the same shape whose targets have the
// mode's variables substituted, paths made absolute against the project
// root, and the mode environment merged under each target's own environment.
func (p *Project) Materialize(mode BuildMode, port int) (*Graph, error) {
	vars := p.Vars(mode, port)
	g := NewGraph()
	for t := range p.Graph.Targets() {
		mt := t.Expand(vars)
		mt.Inputs = p.absAll(mt.Inputs)
		mt.Outputs = p.absAll(mt.Outputs)
		mt.Action.WorkingDir = p.abs(mt.Action.WorkingDir)

		env := maps.Clone(mode.Env)
		if env == nil {
			env = make(map[string]string, len(mt.Action.Environment)+3)
		}
		maps.Copy(env, mt.Action.Environment)
		env[EnvActionMode] = string(mode.Name)
		env[EnvActionOut] = p.Output.Root
		env[EnvActionRoot] = p.Root
		mt.Action.Environment = env

		if err := g.AddTarget(&mt); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// MaterializeRun returns the run step with variables substituted, or nil.
func (p *Project) MaterializeRun(mode BuildMode, port int) *RunStep {
	if p.Run == nil {
		return nil
	}
	rs := p.Run.Expand(p.Vars(mode, port))
	rs.Port = port
	rs.WorkingDir = p.abs(rs.WorkingDir)
	if rs.EnvFile != "" {
		rs.EnvFile = p.abs(rs.EnvFile)
	}
	if len(rs.Command) > 0 {
		rs.Command = slices.Clone(rs.Command)
		if !filepath.IsAbs(rs.Command[0]) && containsSeparator(rs.Command[0]) {
			rs.Command[0] = p.abs(rs.Command[0])
		}
	}
	return &rs
}

func (p *Project) abs(path string) string {
	if path == "" {
		return p.Root
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(p.Root, path)
}

func (p *Project) absAll(paths []string) []string {
	out := make([]string, len(paths))
	for i, path := range paths {
		out[i] = p.abs(path)
	}
	return out
}

func containsSeparator(s string) bool {
	return filepath.Base(s) != s
}
