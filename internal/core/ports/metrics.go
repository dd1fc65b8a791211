package ports

import (
	"time"

	"go.trai.ch/kiln/internal/core/domain"
)

// MetricsRecorder records build and watch loop metrics.
// Implementations must be safe to call on a nil receiver.
//
//go:generate mockgen -source=metrics.go -destination=mocks/mock_metrics.go -package=mocks
type MetricsRecorder interface {
	ObserveBuild(mode domain.Mode, success bool, duration time.Duration)
	ObserveTarget(name string, status domain.TargetStatus, duration time.Duration)
	IncWatchEvents(count int)
	SetRunStepUp(up bool)
}
