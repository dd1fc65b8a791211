package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/zerr"
)

func TestBuildReport(t *testing.T) {
	r := domain.NewBuildReport(domain.ModeDebug)
	r.Record(domain.TargetResult{Name: "a", Status: domain.StatusSkipped})
	r.Record(domain.TargetResult{Name: "b", Status: domain.StatusSucceeded})

	assert.True(t, r.Success())
	require.NoError(t, r.Err())
	assert.Equal(t, domain.StatusSucceeded, r.Status("b"))
	assert.Equal(t, domain.TargetStatus(""), r.Status("missing"))
	assert.Equal(t, 1, r.Count(domain.StatusSkipped))
}

func TestBuildReport_Err(t *testing.T) {
	r := domain.NewBuildReport(domain.ModeRelease)
	ioErr := zerr.With(zerr.Wrap(domain.ErrOutputTreePrepareFailed, "mkdir"), "path", "/o/bin")
	r.Record(domain.TargetResult{Name: "z", Status: domain.StatusFailed, Err: ioErr})
	r.Record(domain.TargetResult{Name: "y", Status: domain.StatusAborted, Err: domain.ErrAbortedDueToDependency})

	assert.False(t, r.Success())
	err := r.Err()
	require.ErrorIs(t, err, domain.ErrBuildFailed)
	require.ErrorIs(t, err, domain.ErrIO)
	assert.NotErrorIs(t, err, domain.ErrAbortedDueToDependency)

	var names []string
	for _, res := range r.Results() {
		names = append(names, res.Name)
	}
	assert.Equal(t, []string{"z", "y"}, names)
}

func TestBuildReport_RecordReplaces(t *testing.T) {
	r := domain.NewBuildReport(domain.ModeDebug)
	r.Record(domain.TargetResult{Name: "a", Status: domain.StatusFailed})
	r.Record(domain.TargetResult{Name: "a", Status: domain.StatusSucceeded})

	assert.Len(t, r.Results(), 1)
	assert.True(t, r.Success())
}
