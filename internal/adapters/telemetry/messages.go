package telemetry

import "time"

// MsgPlan announces the targets of a build in plan order.
type MsgPlan struct {
	Names        []string
	Dependencies map[string][]string
	Requested    []string
}

// MsgTargetStart is sent when a target's span starts.
type MsgTargetStart struct {
	SpanID    string
	ParentID  string
	Name      string
	StartTime time.Time
}

// MsgTargetLog carries a chunk of action output.
type MsgTargetLog struct {
	SpanID string
	Data   []byte
}

// MsgTargetDone is sent when a target's span ends. Skipped marks an up-to-date
// target whose action did not run.
type MsgTargetDone struct {
	SpanID  string
	EndTime time.Time
	Err     error
	Skipped bool
}
