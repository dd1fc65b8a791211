package watchloop_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.trai.ch/kiln/internal/engine/watchloop"
	"go.uber.org/mock/gomock"
)

const root = "/p"

type harness struct {
	ctrl       *gomock.Controller
	events     chan ports.WatchEvent
	watchers   *mocks.MockWatcherFactory
	supervisor *mocks.MockProcessSupervisor
	logger     *mocks.MockLogger
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)
	h := &harness{
		ctrl:       ctrl,
		events:     make(chan ports.WatchEvent, 16),
		watchers:   mocks.NewMockWatcherFactory(ctrl),
		supervisor: mocks.NewMockProcessSupervisor(ctrl),
		logger:     mocks.NewMockLogger(ctrl),
	}

	var recv <-chan ports.WatchEvent = h.events
	w := mocks.NewMockWatcher(ctrl)
	w.EXPECT().Start(gomock.Any(), root, gomock.Any()).Return(nil)
	w.EXPECT().Events().Return(recv)
	w.EXPECT().Stop().Return(nil)
	h.watchers.EXPECT().NewWatcher().Return(w, nil)

	h.logger.EXPECT().Info(gomock.Any()).AnyTimes()
	h.logger.EXPECT().Debug(gomock.Any()).AnyTimes()
	return h
}

func (h *harness) touch(rel string) {
	h.events <- ports.WatchEvent{Path: root + "/" + rel, Operation: ports.OpWrite}
}

// start runs the loop in the background and returns a function that
// cancels it and waits for Run to return.
func start(t *testing.T, loop *watchloop.Loop) func() {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()
	synctest.Wait()
	return func() {
		cancel()
		require.NoError(t, <-done)
	}
}

func counting(n *atomic.Int32) watchloop.BuildFunc {
	return func(context.Context) (*domain.RunStep, error) {
		n.Add(1)
		return nil, nil
	}
}

func TestLoop_BurstBuildsOnce(t *testing.T) {
	// Five edits within 100ms and a 300ms debounce window.
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t)
		var builds atomic.Int32
		loop := watchloop.New(counting(&builds), h.watchers, h.supervisor, nil, h.logger, watchloop.Options{
			Root:     root,
			Debounce: 300 * time.Millisecond,
		})
		stop := start(t, loop)

		for range 5 {
			h.touch("src/main.rs")
			time.Sleep(20 * time.Millisecond)
		}
		synctest.Wait()
		assert.Equal(t, watchloop.StateDebouncing, loop.State())
		assert.Equal(t, int32(0), builds.Load())

		time.Sleep(time.Second)
		synctest.Wait()
		assert.Equal(t, int32(1), builds.Load())
		assert.Equal(t, watchloop.StateIdle, loop.State())

		stop()
	})
}

func TestLoop_InitialBuild(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t)
		var builds atomic.Int32
		loop := watchloop.New(counting(&builds), h.watchers, h.supervisor, nil, h.logger, watchloop.Options{
			Root:         root,
			InitialBuild: true,
		})
		stop := start(t, loop)

		assert.Equal(t, int32(1), builds.Load())
		stop()
	})
}

func TestLoop_IgnoredPathsDoNotBuild(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t)
		metrics := mocks.NewMockMetricsRecorder(h.ctrl)
		metrics.EXPECT().IncWatchEvents(1).Times(1)

		var builds atomic.Int32
		loop := watchloop.New(counting(&builds), h.watchers, h.supervisor, metrics, h.logger, watchloop.Options{
			Root:     root,
			Debounce: 100 * time.Millisecond,
			Ignore:   watchloop.NewIgnore(root, []string{root + "/dist", root + "/.kiln"}, []string{"*.log"}),
		})
		stop := start(t, loop)

		h.touch("dist/bin/server")
		h.touch(".kiln/state")
		h.touch(".git/index")
		h.touch("build.log")
		h.touch("src/.main.rs.swp")
		time.Sleep(time.Second)
		synctest.Wait()
		assert.Equal(t, int32(0), builds.Load())

		h.touch("src/main.rs")
		time.Sleep(time.Second)
		synctest.Wait()
		assert.Equal(t, int32(1), builds.Load())

		stop()
	})
}

func TestLoop_EventsDuringBuildAreQueued(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t)
		release := make(chan struct{})
		var builds atomic.Int32
		build := func(context.Context) (*domain.RunStep, error) {
			if builds.Add(1) == 1 {
				<-release
			}
			return nil, nil
		}
		loop := watchloop.New(build, h.watchers, h.supervisor, nil, h.logger, watchloop.Options{
			Root:     root,
			Debounce: 100 * time.Millisecond,
		})
		stop := start(t, loop)

		h.touch("a.rs")
		time.Sleep(200 * time.Millisecond)
		synctest.Wait()
		require.Equal(t, watchloop.StateBuilding, loop.State())

		h.touch("b.rs")
		time.Sleep(time.Second)
		synctest.Wait()
		assert.Equal(t, int32(1), builds.Load(), "no second build while the first is running")

		close(release)
		synctest.Wait()
		assert.Equal(t, watchloop.StateDebouncing, loop.State())

		time.Sleep(200 * time.Millisecond)
		synctest.Wait()
		assert.Equal(t, int32(2), builds.Load())

		stop()
	})
}

func TestLoop_FailedBuildKeepsWatching(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t)
		buildErr := errors.New("target css failed")
		h.logger.EXPECT().Error(buildErr)

		var builds atomic.Int32
		build := func(context.Context) (*domain.RunStep, error) {
			if builds.Add(1) == 1 {
				return nil, buildErr
			}
			return nil, nil
		}
		loop := watchloop.New(build, h.watchers, h.supervisor, nil, h.logger, watchloop.Options{
			Root:         root,
			Debounce:     100 * time.Millisecond,
			InitialBuild: true,
		})
		stop := start(t, loop)
		assert.Equal(t, watchloop.StateIdle, loop.State())

		h.touch("index.html")
		time.Sleep(200 * time.Millisecond)
		synctest.Wait()
		assert.Equal(t, int32(2), builds.Load())

		stop()
	})
}

func newProcess(ctrl *gomock.Controller, done chan struct{}) *mocks.MockProcess {
	var recv <-chan struct{} = done
	p := mocks.NewMockProcess(ctrl)
	p.EXPECT().Pid().Return(42).AnyTimes()
	p.EXPECT().Done().Return(recv).AnyTimes()
	return p
}

func TestLoop_RestartsRunStep(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t)
		metrics := mocks.NewMockMetricsRecorder(h.ctrl)
		step := &domain.RunStep{Command: []string{"/p/dist/bin/server"}, Port: 8080}

		first := newProcess(h.ctrl, make(chan struct{}))
		second := newProcess(h.ctrl, make(chan struct{}))

		gomock.InOrder(
			h.supervisor.EXPECT().Start(gomock.Any(), *step, gomock.Any()).Return(first, nil),
			metrics.EXPECT().SetRunStepUp(true),
			metrics.EXPECT().IncWatchEvents(1),
			first.EXPECT().Stop(gomock.Any()).Return(nil),
			metrics.EXPECT().SetRunStepUp(false),
			h.supervisor.EXPECT().Start(gomock.Any(), *step, gomock.Any()).Return(second, nil),
			metrics.EXPECT().SetRunStepUp(true),
			second.EXPECT().Stop(gomock.Any()).Return(nil),
			metrics.EXPECT().SetRunStepUp(false),
		)

		build := func(context.Context) (*domain.RunStep, error) { return step, nil }
		loop := watchloop.New(build, h.watchers, h.supervisor, metrics, h.logger, watchloop.Options{
			Root:         root,
			Debounce:     100 * time.Millisecond,
			InitialBuild: true,
		})
		stop := start(t, loop)
		assert.Equal(t, watchloop.StateRunning, loop.State())

		h.touch("src/main.rs")
		time.Sleep(200 * time.Millisecond)
		synctest.Wait()
		assert.Equal(t, watchloop.StateRunning, loop.State())

		stop()
	})
}

func TestLoop_RunStepExits(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t)
		metrics := mocks.NewMockMetricsRecorder(h.ctrl)
		step := &domain.RunStep{Command: []string{"server"}}

		done := make(chan struct{})
		proc := newProcess(h.ctrl, done)
		proc.EXPECT().Err().Return(errors.New("exit status 1"))
		h.supervisor.EXPECT().Start(gomock.Any(), *step, gomock.Any()).Return(proc, nil)
		h.logger.EXPECT().Warn("run step exited: exit status 1")
		metrics.EXPECT().SetRunStepUp(true)
		metrics.EXPECT().SetRunStepUp(false)

		build := func(context.Context) (*domain.RunStep, error) { return step, nil }
		loop := watchloop.New(build, h.watchers, h.supervisor, metrics, h.logger, watchloop.Options{
			Root:         root,
			InitialBuild: true,
		})
		stop := start(t, loop)
		require.Equal(t, watchloop.StateRunning, loop.State())

		close(done)
		synctest.Wait()
		assert.Equal(t, watchloop.StateIdle, loop.State())

		stop()
	})
}

func TestLoop_RunStepStartFailure(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t)
		startErr := domain.ErrRunStepFailed
		h.supervisor.EXPECT().Start(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, startErr)
		h.logger.EXPECT().Error(startErr)

		build := func(context.Context) (*domain.RunStep, error) {
			return &domain.RunStep{Command: []string{"server"}}, nil
		}
		loop := watchloop.New(build, h.watchers, h.supervisor, nil, h.logger, watchloop.Options{
			Root:         root,
			InitialBuild: true,
		})
		stop := start(t, loop)
		assert.Equal(t, watchloop.StateIdle, loop.State())
		stop()
	})
}

func TestLoop_WatcherStartFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	w := mocks.NewMockWatcher(ctrl)
	w.EXPECT().Start(gomock.Any(), root, gomock.Any()).Return(errors.New("too many open files"))
	w.EXPECT().Stop().Return(nil)
	watchers := mocks.NewMockWatcherFactory(ctrl)
	watchers.EXPECT().NewWatcher().Return(w, nil)

	loop := watchloop.New(nil, watchers, nil, nil, mocks.NewMockLogger(ctrl), watchloop.Options{Root: root})
	err := loop.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to start watcher")
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", watchloop.StateIdle.String())
	assert.Equal(t, "debouncing", watchloop.StateDebouncing.String())
	assert.Equal(t, "building", watchloop.StateBuilding.String())
	assert.Equal(t, "running", watchloop.StateRunning.String())
}
