// Package capture supervises the single encoder process that records a tape.
package capture

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/smazurov/vhsnode/internal/events"
	"github.com/smazurov/vhsnode/internal/metrics"
	"github.com/smazurov/vhsnode/internal/preset"
	"github.com/smazurov/vhsnode/internal/process"
)

// Default termination timings.
const (
	DefaultStopGrace = 5 * time.Second
	DefaultKillWait  = 5 * time.Second
)

// PlanResolver turns a request into an encoder plan.
type PlanResolver interface {
	Resolve(req preset.Request, now time.Time) (*preset.Plan, error)
}

// InputSelector switches the analog input of a capture device.
type InputSelector interface {
	SetInput(device string, index int) error
}

// Options configures a Supervisor. Zero values pick defaults, except
// OverrunGrace where zero disables the overrun watchdog.
type Options struct {
	StopGrace    time.Duration
	KillWait     time.Duration
	OverrunGrace time.Duration
	Selector     InputSelector
	Bus          *events.Bus
	Logger       *slog.Logger
	Now          func() time.Time

	// OutputLogger receives the encoder's diagnostic lines. Nil disables it.
	OutputLogger *slog.Logger
}

// Supervisor owns the capture slot. At most one job is running or stopping
// at any time.
type Supervisor struct {
	mu       sync.Mutex
	resolver PlanResolver
	current  *Job

	stopGrace    time.Duration
	killWait     time.Duration
	overrunGrace time.Duration
	selector     InputSelector
	bus          *events.Bus
	logger       *slog.Logger
	outputLogger *slog.Logger
	now          func() time.Time
}

// NewSupervisor creates a supervisor in the idle state.
func NewSupervisor(resolver PlanResolver, opts Options) *Supervisor {
	s := &Supervisor{
		resolver:     resolver,
		stopGrace:    opts.StopGrace,
		killWait:     opts.KillWait,
		overrunGrace: opts.OverrunGrace,
		selector:     opts.Selector,
		bus:          opts.Bus,
		logger:       opts.Logger,
		outputLogger: opts.OutputLogger,
		now:          opts.Now,
	}
	if s.stopGrace <= 0 {
		s.stopGrace = DefaultStopGrace
	}
	if s.killWait <= 0 {
		s.killWait = DefaultKillWait
	}
	if s.logger == nil {
		s.logger = slog.Default().With("component", "capture")
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Start validates req and spawns the encoder. The check for an active job,
// resolution and spawn happen under one lock, so of two racing calls exactly
// one succeeds. The process outlives ctx.
func (s *Supervisor) Start(ctx context.Context, req preset.Request) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil && s.current.currentState().Active() {
		err := &Error{Code: ErrCodeAlreadyRunning, Message: "a capture is already in progress (job " + s.current.id + ")"}
		s.reject(err)
		return Snapshot{}, err
	}

	now := s.now()
	plan, err := s.resolver.Resolve(req, now)
	if err != nil {
		s.reject(err)
		return Snapshot{}, err
	}

	if plan.InputIndex >= 0 && s.selector != nil {
		if err := s.selector.SetInput(plan.VideoDevice, plan.InputIndex); err != nil {
			s.logger.Warn("Failed to select input, continuing with current input",
				"device", plan.VideoDevice, "input", plan.InputIndex, "error", err)
		}
	}

	job := newJob(plan, now)

	sink, err := openJobLog(plan, job.command, now)
	if err != nil {
		return s.spawnFailed(job, err)
	}
	job.tail = NewTail(sink, &jobLines{
		jobID:    job.id,
		progress: job.progress,
		logger:   s.outputLogger,
		bus:      s.bus,
		now:      s.now,
	})

	handle, err := process.Start(plan.Argv(), job.tail.RawWriter(), job.tail)
	if err != nil {
		return s.spawnFailed(job, err)
	}
	job.handle = handle
	s.current = job

	s.logger.Info("Capture started",
		"job_id", job.id,
		"pid", handle.Pid(),
		"preset", plan.Preset,
		"output", plan.OutputPath,
		"duration", preset.FormatDuration(plan.Duration))
	metrics.SetCaptureRunning(true)
	s.publish(job)

	if s.overrunGrace > 0 {
		job.watchdog = time.AfterFunc(plan.Duration+s.overrunGrace, func() {
			if s.beginStop(job) {
				s.logger.Warn("Capture overran its planned duration, terminating",
					"job_id", job.id, "planned", plan.Duration, "grace", s.overrunGrace)
			}
		})
	}

	go s.reap(job)

	return job.snapshot(now), nil
}

// DryRun resolves req without touching any state.
func (s *Supervisor) DryRun(req preset.Request) (*preset.Plan, error) {
	return s.resolver.Resolve(req, s.now())
}

// Stop requests termination of the active job and returns immediately.
// Calling Stop while the job is already stopping is accepted.
func (s *Supervisor) Stop() error {
	s.mu.Lock()
	job := s.current
	s.mu.Unlock()

	if job == nil || !job.currentState().Active() {
		return &Error{Code: ErrCodeNoActiveJob, Message: "no capture in progress"}
	}
	if s.beginStop(job) {
		s.logger.Info("Capture stop requested", "job_id", job.id)
	}
	return nil
}

// Status returns a snapshot of the current or last job.
func (s *Supervisor) Status() Snapshot {
	s.mu.Lock()
	job := s.current
	s.mu.Unlock()

	if job == nil {
		return idleSnapshot()
	}
	return job.snapshot(s.now())
}

// Wait blocks until the current job, if any, has been reaped.
func (s *Supervisor) Wait(ctx context.Context) error {
	s.mu.Lock()
	job := s.current
	s.mu.Unlock()

	if job == nil {
		return nil
	}
	select {
	case <-job.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown terminates the active job and waits for it to be reaped.
func (s *Supervisor) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	job := s.current
	s.mu.Unlock()

	if job == nil {
		return nil
	}
	if s.beginStop(job) {
		s.logger.Info("Stopping capture for shutdown", "job_id", job.id)
	}
	return s.Wait(ctx)
}

// spawnFailed records job as failed without a process. Must be called with
// s.mu held.
func (s *Supervisor) spawnFailed(job *Job, cause error) (Snapshot, error) {
	if job.tail != nil {
		job.tail.Close(fmt.Sprintf("== Spawn failed: %v ==\n", cause))
	}

	job.mu.Lock()
	job.state = StateFailed
	job.endedAt = job.startedAt
	job.errMsg = cause.Error()
	job.mu.Unlock()
	close(job.done)
	s.current = job

	err := &Error{Code: ErrCodeSpawnFailed, Message: "failed to start encoder", Cause: cause}
	s.logger.Error("Capture spawn failed", "job_id", job.id, "error", cause)
	metrics.ObserveJob(string(job.plan.Preset), string(StateFailed), 0)
	s.reject(err)
	s.publish(job)
	return job.snapshot(job.startedAt), err
}

func (s *Supervisor) reap(job *Job) {
	code := job.handle.Wait()
	ended := s.now()

	job.mu.Lock()
	if job.watchdog != nil {
		job.watchdog.Stop()
	}
	stopping := job.state == StateStopping
	job.mu.Unlock()

	state := StateCompleted
	if !IsCleanExit(code) {
		state = StateFailed
	}
	job.tail.Close(fmt.Sprintf("== Capture end %s exit=%d state=%s ==\n", ended.Format(time.RFC3339), code, state))
	metrics.SetCaptureRunning(false)

	job.mu.Lock()
	job.endedAt = ended
	job.exitCode = &code
	job.state = state
	if state == StateFailed {
		job.errMsg = fmt.Sprintf("encoder exited with code %d", code)
	}
	elapsed := ended.Sub(job.startedAt)
	job.mu.Unlock()
	close(job.done)

	metrics.ObserveJob(string(job.plan.Preset), string(state), elapsed)

	logger := s.logger.With("job_id", job.id, "exit_code", code, "elapsed", elapsed.Round(time.Second), "stopped", stopping)
	if state == StateCompleted {
		logger.Info("Capture completed", "output", job.plan.OutputPath)
	} else {
		logger.Error("Capture failed", "log", job.plan.LogPath)
	}
	s.publish(job)
}

func (s *Supervisor) publish(job *Job) {
	job.mu.Lock()
	ev := job.stateEvent(s.now())
	job.mu.Unlock()
	s.bus.Publish(ev)
}

func (s *Supervisor) reject(err error) {
	code := CodeOf(err)
	if code == "" {
		code = "INTERNAL"
	}
	metrics.IncRejection(code)
	s.bus.Publish(events.CaptureRejectedEvent{
		Code:      code,
		Message:   err.Error(),
		Timestamp: s.now().UTC().Format(time.RFC3339),
	})
}

// openJobLog creates the per-job log and writes its header. The output
// directory is created as well since the encoder writes next to it.
func openJobLog(plan *preset.Plan, command string, now time.Time) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(plan.OutputPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(plan.LogPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(plan.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open job log: %w", err)
	}
	if _, err := fmt.Fprintf(f, "== Capture start %s ==\n$ %s\n", now.Format(time.RFC3339), command); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write job log: %w", err)
	}
	return f, nil
}
