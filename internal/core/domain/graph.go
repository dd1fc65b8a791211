// Package domain contains the core domain models of the build orchestrator.
package domain

import (
	"iter"
	"strings"

	"go.trai.ch/zerr"
)

// Graph is a directed acyclic graph of targets keyed by name.
// Declaration order is retained so resolution is deterministic.
type Graph struct {
	targets map[string]*Target
	order   []string
}

// NewGraph creates a new empty Graph.
func NewGraph() *Graph {
	return &Graph{
		targets: make(map[string]*Target),
	}
}

// AddTarget registers a target.
// It returns an error if a target with the same name already exists.
func (g *Graph) AddTarget(t *Target) error {
	if err := ValidateTargetName(t.Name); err != nil {
		return err
	}
	if _, exists := g.targets[t.Name]; exists {
		return zerr.With(zerr.Wrap(ErrTargetAlreadyExists, "duplicate target"), "target", t.Name)
	}
	tc := *t
	g.targets[t.Name] = &tc
	g.order = append(g.order, t.Name)
	return nil
}

// Target returns the target registered under name.
func (g *Graph) Target(name string) (*Target, bool) {
	t, ok := g.targets[name]
	return t, ok
}

// Len returns the number of registered targets.
func (g *Graph) Len() int {
	return len(g.order)
}

// Targets yields the registered targets in declaration order.
func (g *Graph) Targets() iter.Seq[*Target] {
	return func(yield func(*Target) bool) {
		for _, name := range g.order {
			if !yield(g.targets[name]) {
				return
			}
		}
	}
}

// Dependents returns the names of targets that list name as a direct prerequisite.
func (g *Graph) Dependents(name string) []string {
	var out []string
	for _, n := range g.order {
		for _, dep := range g.targets[n].Dependencies {
			if dep == name {
				out = append(out, n)
				break
			}
		}
	}
	return out
}

// CheckDependencies verifies that every prerequisite refers to a registered target.
func (g *Graph) CheckDependencies() error {
	for _, name := range g.order {
		for _, dep := range g.targets[name].Dependencies {
			if _, ok := g.targets[dep]; !ok {
				err := zerr.With(zerr.Wrap(ErrUnknownTarget, "missing prerequisite"), "dependency", dep)
				return zerr.With(err, "target", name)
			}
		}
	}
	return nil
}

// Resolve computes the execution plan for one requested target.
func (g *Graph) Resolve(name string) (*ExecutionPlan, error) {
	return g.ResolveAll([]string{name})
}

// ResolveAll computes a single execution plan covering every requested target.
// Prerequisites are visited depth-first in declaration order and emitted in
// post-order, so each target appears exactly once and after all of its
// prerequisites. A prerequisite found while still being visited is a cycle.
func (g *Graph) ResolveAll(names []string) (*ExecutionPlan, error) {
	const (
		unvisited = iota
		visiting
		visited
	)
	marks := make(map[string]int, len(g.targets))
	order := make([]*Target, 0, len(g.targets))
	var path []string

	var visit func(name, from string) error
	visit = func(name, from string) error {
		t, ok := g.targets[name]
		if !ok {
			err := zerr.With(zerr.Wrap(ErrUnknownTarget, "cannot resolve target"), "target", name)
			if from != "" {
				err = zerr.With(err, "required_by", from)
			}
			return err
		}
		marks[name] = visiting
		path = append(path, name)

		for _, dep := range t.Dependencies {
			switch marks[dep] {
			case visiting:
				return cycleError(path, dep)
			case unvisited:
				if err := visit(dep, name); err != nil {
					return err
				}
			}
		}

		marks[name] = visited
		path = path[:len(path)-1]
		order = append(order, t)
		return nil
	}

	for _, name := range names {
		if marks[name] == visited {
			continue
		}
		if err := visit(name, ""); err != nil {
			return nil, err
		}
	}

	return newExecutionPlan(names, order), nil
}

// cycleError builds an error naming the cycle that closes at dep.
func cycleError(path []string, dep string) error {
	start := 0
	for i, node := range path {
		if node == dep {
			start = i
			break
		}
	}
	cycle := append(append([]string{}, path[start:]...), dep)
	return zerr.With(zerr.Wrap(ErrCyclicDependency, "cycle detected"), "cycle", strings.Join(cycle, " -> "))
}
