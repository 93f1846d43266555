package capture

import (
	"time"
)

// beginStop moves a running job to stopping and starts the termination
// protocol. It reports false when the job was not running, including when a
// stop is already in progress.
func (s *Supervisor) beginStop(job *Job) bool {
	job.mu.Lock()
	if job.state != StateRunning {
		job.mu.Unlock()
		return false
	}
	job.state = StateStopping
	job.mu.Unlock()

	s.publish(job)
	go s.terminate(job)
	return true
}

// terminate asks the encoder to finalize with SIGINT, escalates to SIGKILL of
// the process group after stopGrace, and then waits killWait for the reaper.
// The reaper alone records the outcome.
func (s *Supervisor) terminate(job *Job) {
	logger := s.logger.With("job_id", job.id, "pid", job.handle.Pid())

	if err := job.handle.Interrupt(); err != nil {
		logger.Warn("Failed to interrupt encoder", "error", err)
	}

	grace := time.NewTimer(s.stopGrace)
	defer grace.Stop()
	select {
	case <-job.done:
		return
	case <-grace.C:
	}

	logger.Warn("Encoder ignored interrupt, killing process group", "grace", s.stopGrace)
	if err := job.handle.Kill(); err != nil {
		logger.Error("Failed to kill encoder", "error", err)
	}

	wait := time.NewTimer(s.killWait)
	defer wait.Stop()
	select {
	case <-job.done:
	case <-wait.C:
		logger.Error("Encoder not reaped after kill", "wait", s.killWait)
	}
}
