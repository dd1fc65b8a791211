// Package config provides the kiln.yaml configuration loader.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*Loader)(nil)

// SupportedVersion is the configuration schema version understood by this loader.
const SupportedVersion = "1"

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load reads a configuration file and returns the project it describes.
// When path is a directory the file is discovered by walking up from it.
func (l *Loader) Load(path string) (*domain.Project, error) {
	configPath, err := l.resolveConfigPath(path)
	if err != nil {
		return nil, err
	}

	var kilnfile Kilnfile
	if err := readAndUnmarshalYAML(configPath, &kilnfile); err != nil {
		return nil, err
	}

	return l.buildProject(configPath, &kilnfile)
}

// DiscoverRoot walks up from cwd to the first directory containing kiln.yaml.
func (l *Loader) DiscoverRoot(cwd string) (string, error) {
	abs, err := filepath.Abs(cwd)
	if err != nil {
		return "", zerr.With(zerr.Wrap(domain.ErrConfigNotFound, err.Error()), "cwd", cwd)
	}

	currentDir := abs
	for {
		if info, err := os.Stat(filepath.Join(currentDir, domain.ConfigFileName)); err == nil && !info.IsDir() {
			return currentDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root
			break
		}
		currentDir = parentDir
	}

	return "", zerr.With(zerr.Wrap(domain.ErrConfigNotFound, "no "+domain.ConfigFileName+" in any parent directory"), "cwd", abs)
}

func (l *Loader) resolveConfigPath(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", zerr.With(zerr.Wrap(domain.ErrConfigNotFound, "config path does not exist"), "path", path)
		}
		return "", zerr.With(zerr.Wrap(domain.ErrConfigReadFailed, err.Error()), "path", path)
	}

	if !info.IsDir() {
		return filepath.Abs(path)
	}

	root, err := l.DiscoverRoot(path)
	if err != nil {
		return "", err
	}
	return filepath.Join(root, domain.ConfigFileName), nil
}

func (l *Loader) buildProject(configPath string, kilnfile *Kilnfile) (*domain.Project, error) {
	if kilnfile.Version != "" && kilnfile.Version != SupportedVersion {
		l.Logger.Warn(fmt.Sprintf("%s declares version %q, this kiln understands version %q",
			domain.ConfigFileName, kilnfile.Version, SupportedVersion))
	}

	root := filepath.Dir(configPath)

	g, err := buildGraph(&kilnfile.Targets)
	if err != nil {
		return nil, zerr.With(err, "config", configPath)
	}

	if kilnfile.Default != "" {
		if _, ok := g.Target(kilnfile.Default); !ok {
			err := zerr.With(zerr.Wrap(domain.ErrUnknownTarget, "default target is not defined"), "target", kilnfile.Default)
			return nil, zerr.With(err, "config", configPath)
		}
	}

	modes, err := buildModes(kilnfile.Modes)
	if err != nil {
		return nil, zerr.With(err, "config", configPath)
	}

	watch, err := buildWatch(root, kilnfile.Watch)
	if err != nil {
		return nil, zerr.With(err, "config", configPath)
	}

	run, err := buildRun(kilnfile.Run)
	if err != nil {
		return nil, zerr.With(err, "config", configPath)
	}

	return &domain.Project{
		Root:       root,
		ConfigPath: configPath,
		Graph:      g,
		Modes:      modes,
		Output:     buildOutputTree(root, kilnfile),
		Default:    kilnfile.Default,
		Watch:      watch,
		Run:        run,
	}, nil
}

// buildGraph registers targets in declaration order.
func buildGraph(node *yaml.Node) (*domain.Graph, error) {
	if node.Kind == 0 {
		return nil, zerr.Wrap(domain.ErrConfigInvalid, "no targets defined")
	}
	if node.Kind != yaml.MappingNode {
		return nil, zerr.With(zerr.Wrap(domain.ErrConfigInvalid, "targets must be a mapping"), "line", node.Line)
	}

	g := domain.NewGraph()
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]

		var dto TargetDTO
		if err := decodeStrict(value, &dto); err != nil {
			err := zerr.With(zerr.Wrap(domain.ErrConfigParseFailed, err.Error()), "target", key.Value)
			return nil, zerr.With(err, "line", value.Line)
		}

		if err := g.AddTarget(buildTarget(key.Value, &dto)); err != nil {
			return nil, zerr.With(err, "line", key.Line)
		}
	}

	if g.Len() == 0 {
		return nil, zerr.Wrap(domain.ErrConfigInvalid, "no targets defined")
	}

	if err := g.CheckDependencies(); err != nil {
		return nil, err
	}
	return g, nil
}

func buildTarget(name string, dto *TargetDTO) *domain.Target {
	return &domain.Target{
		Name:         name,
		Dependencies: dto.DependsOn,
		Inputs:       canonicalizeStrings(dto.Input),
		Outputs:      canonicalizeStrings(dto.Output),
		Action: domain.Action{
			Command:     dto.Cmd,
			WorkingDir:  dto.WorkingDir,
			Environment: dto.Environment,
			FlagSet:     dto.Flags,
		},
	}
}

func buildModes(dtos map[string]*ModeDTO) (domain.ModeConfig, error) {
	modes := domain.DefaultModeConfig()

	names := make([]string, 0, len(dtos))
	for name := range dtos {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		mode, err := domain.ParseMode(name)
		if err != nil || name == "" {
			return domain.ModeConfig{}, zerr.With(zerr.Wrap(domain.ErrConfigInvalid, "unknown mode"), "mode", name)
		}
		dto := dtos[name]
		if dto == nil {
			continue
		}
		modes.Override(domain.BuildMode{
			Name:    mode,
			Flags:   dto.Flags,
			Subpath: dto.Subpath,
			Env:     dto.Environment,
		})
	}
	return modes, nil
}

func buildOutputTree(root string, kilnfile *Kilnfile) domain.OutputTree {
	output := kilnfile.Output
	if env := os.Getenv(domain.EnvOutput); env != "" {
		output = env
	}
	if output == "" {
		output = domain.DefaultOutputRoot
	}

	categories := kilnfile.Categories
	if len(categories) == 0 {
		categories = domain.DefaultCategories()
	}

	return domain.OutputTree{
		Root:       resolvePath(root, output),
		Categories: categories,
	}
}

func buildWatch(root string, dto *WatchDTO) (domain.WatchConfig, error) {
	watch := domain.WatchConfig{
		Root:     root,
		Debounce: domain.DefaultDebounce,
	}
	if dto == nil {
		return watch, nil
	}

	if dto.Root != "" {
		watch.Root = resolvePath(root, dto.Root)
	}
	watch.Ignore = dto.Ignore

	if dto.Debounce != "" {
		d, err := time.ParseDuration(dto.Debounce)
		if err != nil || d < 0 {
			return watch, zerr.With(zerr.Wrap(domain.ErrConfigInvalid, "invalid watch debounce"), "debounce", dto.Debounce)
		}
		watch.Debounce = d
	}
	return watch, nil
}

func buildRun(dto *RunDTO) (*domain.RunStep, error) {
	if dto == nil {
		return nil, nil
	}
	if len(dto.Cmd) == 0 {
		return nil, zerr.Wrap(domain.ErrConfigInvalid, "run step has no cmd")
	}
	if dto.Port < 0 || dto.Port > 65535 {
		return nil, zerr.With(zerr.Wrap(domain.ErrConfigInvalid, "run port out of range"), "port", dto.Port)
	}

	port := dto.Port
	if port == 0 {
		port = domain.DefaultPort
	}

	health := dto.Health
	if health != "" && !strings.HasPrefix(health, "/") {
		health = "/" + health
	}

	return &domain.RunStep{
		Command:    dto.Cmd,
		Args:       dto.Args,
		WorkingDir: dto.WorkingDir,
		Env:        dto.Environment,
		EnvFile:    dto.EnvFile,
		Port:       port,
		HealthPath: health,
	}, nil
}

// canonicalizeStrings drops duplicates while keeping the declared order.
func canonicalizeStrings(strs []string) []string {
	if len(strs) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(strs))
	out := make([]string, 0, len(strs))
	for _, s := range strs {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func resolvePath(root, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(root, path)
}

// readAndUnmarshalYAML reads a YAML file and unmarshals it into the target struct.
// Unknown keys are rejected.
// decodeStrict decodes node into out, rejecting keys out does not declare.
// yaml.Node.Decode ignores the decoder's KnownFields setting.
func decodeStrict(node *yaml.Node, out any) error {
	raw, err := yaml.Marshal(node)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is validated by caller
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrConfigReadFailed, err.Error()), "path", configPath)
	}

	dec := yaml.NewDecoder(bytes.NewReader(configFile))
	dec.KnownFields(true)
	if err := dec.Decode(target); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrConfigParseFailed, err.Error()), "path", configPath)
	}

	return nil
}
