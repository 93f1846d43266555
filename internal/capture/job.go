package capture

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/smazurov/vhsnode/internal/events"
	"github.com/smazurov/vhsnode/internal/metrics"
	"github.com/smazurov/vhsnode/internal/preset"
	"github.com/smazurov/vhsnode/internal/process"
)

// Job is one supervised encoder run.
type Job struct {
	mu        sync.Mutex
	id        string
	plan      *preset.Plan
	command   string
	startedAt time.Time
	endedAt   time.Time
	state     State
	exitCode  *int
	errMsg    string
	handle    *process.Handle
	tail      *Tail
	progress  *metrics.ProgressRecorder
	watchdog  *time.Timer

	// done is closed once the job reached a terminal state.
	done chan struct{}
}

func newJob(plan *preset.Plan, now time.Time) *Job {
	return &Job{
		id:        uuid.NewString(),
		plan:      plan,
		command:   plan.CommandLine(),
		startedAt: now,
		state:     StateRunning,
		progress:  metrics.NewProgressRecorder(),
		done:      make(chan struct{}),
	}
}

func (j *Job) currentState() State {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}

// stateEvent must be called with mu held.
func (j *Job) stateEvent(now time.Time) events.CaptureStateChangedEvent {
	ev := events.CaptureStateChangedEvent{
		JobID:      j.id,
		State:      string(j.state),
		Preset:     string(j.plan.Preset),
		OutputFile: j.plan.OutputPath,
		Error:      j.errMsg,
		Timestamp:  now.UTC().Format(time.RFC3339),
	}
	if j.exitCode != nil {
		code := *j.exitCode
		ev.ExitCode = &code
	}
	return ev
}

// jobLines forwards diagnostic lines to the progress recorder, the output
// logger and the bus.
type jobLines struct {
	jobID    string
	progress *metrics.ProgressRecorder
	logger   *slog.Logger
	bus      *events.Bus
	now      func() time.Time
}

func (l *jobLines) HandleLine(line string) {
	l.progress.HandleLine(line)
	logOutputLine(l.logger, l.jobID, line)
	l.bus.Publish(events.CaptureLineEvent{
		JobID:     l.jobID,
		Line:      line,
		Timestamp: l.now().UTC().Format(time.RFC3339),
	})
}
