package capture

import (
	"time"

	"github.com/smazurov/vhsnode/internal/metrics"
	"github.com/smazurov/vhsnode/internal/preset"
)

// Snapshot is a read-only view of the current or last job.
type Snapshot struct {
	ID              string
	State           State
	Running         bool
	Preset          preset.Preset
	OutputPath      string
	LogPath         string
	Command         string
	StartedAt       time.Time
	EndedAt         time.Time
	PlannedDuration time.Duration
	Elapsed         time.Duration
	Remaining       time.Duration
	TailLines       []string
	ExitCode        *int
	Error           string
	Progress        *metrics.Progress
}

func idleSnapshot() Snapshot {
	return Snapshot{State: StateIdle, TailLines: []string{}}
}

func (j *Job) snapshot(now time.Time) Snapshot {
	j.mu.Lock()
	defer j.mu.Unlock()

	snap := Snapshot{
		ID:              j.id,
		State:           j.state,
		Running:         j.state.Active(),
		Preset:          j.plan.Preset,
		OutputPath:      j.plan.OutputPath,
		LogPath:         j.plan.LogPath,
		Command:         j.command,
		StartedAt:       j.startedAt,
		EndedAt:         j.endedAt,
		PlannedDuration: j.plan.Duration,
		Error:           j.errMsg,
	}

	end := now
	if j.state.Terminal() {
		end = j.endedAt
	}
	snap.Elapsed = max(end.Sub(j.startedAt), 0)
	if j.state.Active() {
		snap.Remaining = max(j.plan.Duration-snap.Elapsed, 0)
	}

	if j.exitCode != nil {
		code := *j.exitCode
		snap.ExitCode = &code
	}
	if j.tail != nil {
		snap.TailLines = j.tail.Lines()
	} else {
		snap.TailLines = []string{}
	}
	if p, ok := j.progress.Last(); ok {
		snap.Progress = &p
	}
	return snap
}
