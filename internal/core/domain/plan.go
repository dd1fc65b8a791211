package domain

// ExecutionPlan is the ordered list of targets one executor run walks.
// Every target appears after all of its prerequisites.
type ExecutionPlan struct {
	requested []string
	targets   []*Target
	index     map[string]int
}

func newExecutionPlan(requested []string, targets []*Target) *ExecutionPlan {
	index := make(map[string]int, len(targets))
	for i, t := range targets {
		index[t.Name] = i
	}
	return &ExecutionPlan{
		requested: append([]string(nil), requested...),
		targets:   targets,
		index:     index,
	}
}

// NewExecutionPlan builds a plan from targets already in dependency order.
// It is used by tests and by callers that materialize targets themselves.
func NewExecutionPlan(requested []string, targets []*Target) *ExecutionPlan {
	return newExecutionPlan(requested, targets)
}

// Requested returns the target names the plan was resolved for.
func (p *ExecutionPlan) Requested() []string {
	return p.requested
}

// Targets returns the planned targets in execution order.
func (p *ExecutionPlan) Targets() []*Target {
	return p.targets
}

// Names returns the planned target names in execution order.
func (p *ExecutionPlan) Names() []string {
	names := make([]string, len(p.targets))
	for i, t := range p.targets {
		names[i] = t.Name
	}
	return names
}

// Len returns the number of planned targets.
func (p *ExecutionPlan) Len() int {
	return len(p.targets)
}

// Contains reports whether name is part of the plan.
func (p *ExecutionPlan) Contains(name string) bool {
	_, ok := p.index[name]
	return ok
}

// Dependencies maps each planned target to its in-plan prerequisites.
func (p *ExecutionPlan) Dependencies() map[string][]string {
	deps := make(map[string][]string, len(p.targets))
	for _, t := range p.targets {
		in := make([]string, 0, len(t.Dependencies))
		for _, d := range t.Dependencies {
			if p.Contains(d) {
				in = append(in, d)
			}
		}
		deps[t.Name] = in
	}
	return deps
}

// Waves partitions the plan into dependency levels.
// A target's level is one more than the highest level among its
// prerequisites, so targets in the same wave never depend on each other.
// Within a wave, targets keep plan order.
func (p *ExecutionPlan) Waves() [][]*Target {
	level := make(map[string]int, len(p.targets))
	maxLevel := -1
	for _, t := range p.targets {
		l := 0
		for _, d := range t.Dependencies {
			if dl, ok := level[d]; ok && dl+1 > l {
				l = dl + 1
			}
		}
		level[t.Name] = l
		if l > maxLevel {
			maxLevel = l
		}
	}

	waves := make([][]*Target, maxLevel+1)
	for _, t := range p.targets {
		l := level[t.Name]
		waves[l] = append(waves[l], t)
	}
	return waves
}
