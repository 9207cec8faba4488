package ui

import "github.com/sandbars-surf/wavegrid/internal/pipeline"

// Message types for async operations. The batch runs in its own goroutine
// and delivers these through tea.Program.Send.

// HourCompletedMsg is sent after each forecast hour finishes, pass or fail.
type HourCompletedMsg struct {
	Input string
	Done  int
	Total int
	Err   error
}

// BatchFinishedMsg is sent once when the whole batch is done. Err is the
// overall verdict: non-nil when the failed fraction exceeded the threshold.
type BatchFinishedMsg struct {
	Result *pipeline.Result
	Err    error
}
