package process

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"
)

// ExitCodeKilled is reported when a process was terminated by SIGKILL.
const ExitCodeKilled = 128 + int(syscall.SIGKILL)

// DefaultWaitDelay bounds how long Wait keeps draining output pipes after the
// process itself has exited.
const DefaultWaitDelay = 2 * time.Second

// Handle is a spawned subprocess.
type Handle struct {
	cmd  *exec.Cmd
	pid  int
	mu   sync.Mutex
	done bool
}

// Start spawns argv in its own process group. Output is copied to stdout and
// stderr by exec's internal goroutines, which block only on pipe reads; a nil
// writer discards that stream.
func Start(argv []string, stdout, stderr io.Writer) (*Handle, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("empty command")
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = DefaultWaitDelay

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", argv[0], err)
	}

	return &Handle{cmd: cmd, pid: cmd.Process.Pid}, nil
}

// Pid returns the process id.
func (h *Handle) Pid() int {
	return h.pid
}

// Interrupt sends SIGINT to the process without waiting. ffmpeg treats it as
// a request to finalize the output and exit.
func (h *Handle) Interrupt() error {
	return h.signal(syscall.SIGINT)
}

// Kill sends SIGKILL to the whole process group.
func (h *Handle) Kill() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.done {
		return nil
	}
	if err := syscall.Kill(-h.pid, syscall.SIGKILL); err != nil && !errors.Is(err, syscall.ESRCH) {
		return fmt.Errorf("failed to kill process group %d: %w", h.pid, err)
	}
	return nil
}

func (h *Handle) signal(sig os.Signal) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.done {
		return nil
	}
	if err := h.cmd.Process.Signal(sig); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("failed to send %s: %w", sig, err)
	}
	return nil
}

// Wait blocks until the process exits and its output has been copied, then
// returns the normalized exit code.
func (h *Handle) Wait() int {
	err := h.cmd.Wait()

	h.mu.Lock()
	h.done = true
	h.mu.Unlock()

	// exec.ErrWaitDelay means the process exited but a descendant kept the
	// pipes open; the exit status is still valid.
	if errors.Is(err, exec.ErrWaitDelay) {
		err = nil
		if ps := h.cmd.ProcessState; ps != nil && !ps.Success() {
			err = &exec.ExitError{ProcessState: ps}
		}
	}
	return ExitCode(err)
}

// ExitCode extracts an exit code from a Wait error. Processes terminated by
// a signal report 128+signal, following the shell convention. Errors that
// are not exit errors map to 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return 1
	}
	if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return 128 + int(status.Signal())
	}
	return exitErr.ExitCode()
}
