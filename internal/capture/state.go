package capture

// State is the lifecycle position of a capture job.
type State string

// Job states. A job only moves forward: running, optionally stopping, then
// exactly one of completed or failed.
const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateStopping  State = "stopping"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// Active reports whether a process may still be alive in this state.
func (s State) Active() bool {
	return s == StateRunning || s == StateStopping
}

// Terminal reports whether the job has been reaped.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// IsCleanExit reports whether an encoder exit code means the recording was
// finalized: 0 after the -t limit, 255 when ffmpeg handled SIGINT, 130 when
// SIGINT terminated it, 124 for a timeout(1) style limit. A forced kill (137)
// leaves an unfinished container and is not clean.
func IsCleanExit(code int) bool {
	switch code {
	case 0, 124, 130, 255:
		return true
	default:
		return false
	}
}
