package ports

import "go.trai.ch/kiln/internal/core/domain"

// StalenessChecker decides whether a target's action must run.
//
//go:generate mockgen -source=staleness.go -destination=mocks/mock_staleness.go -package=mocks
type StalenessChecker interface {
	// IsDue reports whether the target has no outputs, is missing an output,
	// has an input newer than its oldest output, or force is set.
	IsDue(target *domain.Target, force bool) (bool, error)
}
