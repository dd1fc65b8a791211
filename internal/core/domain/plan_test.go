package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/core/domain"
)

func waveNames(waves [][]*domain.Target) [][]string {
	out := make([][]string, len(waves))
	for i, wave := range waves {
		for _, t := range wave {
			out[i] = append(out[i], t.Name)
		}
	}
	return out
}

func TestExecutionPlan_Waves(t *testing.T) {
	tests := []struct {
		name    string
		targets []*domain.Target
		resolve []string
		want    [][]string
	}{
		{
			name:    "single target",
			targets: []*domain.Target{target("a")},
			resolve: []string{"a"},
			want:    [][]string{{"a"}},
		},
		{
			name:    "fan out from one prerequisite",
			targets: []*domain.Target{target("A"), target("B", "A"), target("C", "A")},
			resolve: []string{"B", "C"},
			want:    [][]string{{"A"}, {"B", "C"}},
		},
		{
			name: "level is one more than the deepest prerequisite",
			targets: []*domain.Target{
				target("css"),
				target("js"),
				target("bundle", "css", "js"),
				target("server"),
				target("package", "bundle", "server", "css"),
			},
			resolve: []string{"package"},
			want:    [][]string{{"css", "js", "server"}, {"bundle"}, {"package"}},
		},
		{
			name:    "chain",
			targets: []*domain.Target{target("a"), target("b", "a"), target("c", "b")},
			resolve: []string{"c"},
			want:    [][]string{{"a"}, {"b"}, {"c"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGraph(t, tt.targets...)
			plan, err := g.ResolveAll(tt.resolve)
			require.NoError(t, err)
			assert.Equal(t, tt.want, waveNames(plan.Waves()))
		})
	}
}

func TestExecutionPlan_Waves_Empty(t *testing.T) {
	plan := domain.NewExecutionPlan(nil, nil)
	assert.Empty(t, plan.Waves())
	assert.Equal(t, 0, plan.Len())
}

func TestExecutionPlan_Dependencies_InPlanOnly(t *testing.T) {
	a := target("a")
	b := target("b", "a", "outside")
	plan := domain.NewExecutionPlan([]string{"b"}, []*domain.Target{a, b})

	deps := plan.Dependencies()
	assert.Empty(t, deps["a"])
	assert.Equal(t, []string{"a"}, deps["b"])
}
