package threadpool

import "errors"

// ErrResizeDuringRun is returned by SetNumWorkers when called while a Run
// is in progress. Resize mutations are forbidden during a run per the
// concurrency model: worker count must be stable for the duration of a
// single search or compaction pass.
var ErrResizeDuringRun = errors.New("threadpool: cannot resize while run is executing")
