// Package telemetry bridges OpenTelemetry spans to the active renderer.
package telemetry

import (
	"bytes"
	"sync"
	"time"

	"go.trai.ch/zerr"
)

const (
	// DefaultSizeLimit is the buffer size (4KB) used when none is given.
	DefaultSizeLimit = 4096
	// DefaultTimeLimit is how long output may sit in the buffer (50ms) when
	// none is given.
	DefaultTimeLimit = 50 * time.Millisecond
)

// errBatcherClosed is returned by Write after Close.
var errBatcherClosed = zerr.New("log batcher is closed")

// LogBatcher collects the output of one target and hands it to the renderer
// in chunks. A chunk cut by the size limit ends on a line boundary so the
// renderer never has to stitch a line back together; the unterminated tail
// waits for the next write, the deadline, or Close. A single line longer
// than the limit is emitted whole.
//
// The deadline timer is armed by the first write into an empty buffer, so an
// idle target costs no goroutine. LogBatcher is safe for concurrent use.
type LogBatcher struct {
	sizeLimit int
	timeLimit time.Duration
	onFlush   func([]byte)

	mu      sync.Mutex
	buffer  bytes.Buffer
	timer   *time.Timer
	pending bool
	closed  bool
}

// NewLogBatcher returns a LogBatcher that hands chunks to onFlush.
func NewLogBatcher(sizeLimit int, timeLimit time.Duration, onFlush func([]byte)) *LogBatcher {
	if sizeLimit <= 0 {
		sizeLimit = DefaultSizeLimit
	}
	if timeLimit <= 0 {
		timeLimit = DefaultTimeLimit
	}
	return &LogBatcher{
		sizeLimit: sizeLimit,
		timeLimit: timeLimit,
		onFlush:   onFlush,
	}
}

// Write appends p to the buffer and emits the complete lines once the size
// limit is reached.
func (lb *LogBatcher) Write(p []byte) (int, error) {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	if lb.closed {
		return 0, errBatcherClosed
	}

	n, _ := lb.buffer.Write(p)
	if lb.buffer.Len() >= lb.sizeLimit {
		lb.emitLocked(lineEnd(lb.buffer.Bytes()))
	}
	lb.armLocked()
	return n, nil
}

// Flush hands everything buffered to the callback, partial line included.
func (lb *LogBatcher) Flush() {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	if lb.closed {
		return
	}
	lb.emitLocked(lb.buffer.Len())
}

// Close performs a final flush. Writes after Close fail.
func (lb *LogBatcher) Close() error {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	if lb.closed {
		return nil
	}
	lb.closed = true
	lb.disarmLocked()
	lb.emitLocked(lb.buffer.Len())
	return nil
}

// armLocked starts the deadline for buffered output if none is pending.
// Later writes do not push it back, so steady output still drains on time.
func (lb *LogBatcher) armLocked() {
	if lb.pending || lb.buffer.Len() == 0 {
		return
	}
	lb.pending = true
	if lb.timer == nil {
		lb.timer = time.AfterFunc(lb.timeLimit, lb.Flush)
		return
	}
	lb.timer.Reset(lb.timeLimit)
}

func (lb *LogBatcher) disarmLocked() {
	if lb.timer != nil {
		lb.timer.Stop()
	}
	lb.pending = false
}

// emitLocked hands the first n buffered bytes to the callback. The callback
// runs under the lock so chunks of one target arrive in order.
func (lb *LogBatcher) emitLocked(n int) {
	if n == lb.buffer.Len() {
		lb.disarmLocked()
	}
	if n == 0 {
		return
	}

	data := make([]byte, n)
	copy(data, lb.buffer.Next(n))
	if lb.buffer.Len() == 0 {
		lb.buffer.Reset()
	}

	if lb.onFlush != nil {
		lb.onFlush(data)
	}
}

// lineEnd returns the length of buf up to and including its last newline,
// or len(buf) when buf holds no newline.
func lineEnd(buf []byte) int {
	if i := bytes.LastIndexByte(buf, '\n'); i >= 0 {
		return i + 1
	}
	return len(buf)
}
