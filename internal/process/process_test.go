package process

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer is a bytes.Buffer safe for exec's copy goroutine and the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// waitAsync reaps h in a goroutine and returns the exit code channel.
func waitAsync(h *Handle) <-chan int {
	done := make(chan int, 1)
	go func() {
		done <- h.Wait()
	}()
	return done
}

// waitForExit waits for exit code with timeout, fails test on timeout.
func waitForExit(t *testing.T, done <-chan int, timeout time.Duration) int {
	t.Helper()
	select {
	case exitCode := <-done:
		return exitCode
	case <-time.After(timeout):
		t.Fatal("timeout waiting for process to exit")
		return -1
	}
}

func TestStartEmptyCommand(t *testing.T) {
	if _, err := Start(nil, nil, nil); err == nil {
		t.Fatal("expected error for empty command")
	}
}

func TestStartMissingExecutable(t *testing.T) {
	_, err := Start([]string{"/nonexistent/encoder-binary"}, nil, nil)
	if err == nil {
		t.Fatal("expected spawn error")
	}
}

func TestOutputIsCopied(t *testing.T) {
	var stdout, stderr syncBuffer
	h, err := Start([]string{"sh", "-c", "echo out; echo err >&2"}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if code := waitForExit(t, waitAsync(h), 2*time.Second); code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}
	if strings.TrimSpace(stdout.String()) != "out" {
		t.Errorf("stdout = %q", stdout.String())
	}
	if strings.TrimSpace(stderr.String()) != "err" {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestNonZeroExit(t *testing.T) {
	h, err := Start([]string{"sh", "-c", "exit 3"}, nil, nil)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if code := waitForExit(t, waitAsync(h), 2*time.Second); code != 3 {
		t.Errorf("exit code = %d, want 3", code)
	}
}

func TestInterruptHandled(t *testing.T) {
	// Process that handles SIGINT the way ffmpeg does
	h, err := Start([]string{"sh", "-c", "trap 'exit 255' INT; while :; do sleep 0.1; done"}, nil, nil)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	done := waitAsync(h)
	time.Sleep(100 * time.Millisecond)

	if err := h.Interrupt(); err != nil {
		t.Fatalf("Interrupt failed: %v", err)
	}
	if code := waitForExit(t, done, 2*time.Second); code != 255 {
		t.Errorf("exit code = %d, want 255", code)
	}
}

func TestInterruptDefaultDisposition(t *testing.T) {
	h, err := Start([]string{"sleep", "10"}, nil, nil)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	done := waitAsync(h)
	time.Sleep(50 * time.Millisecond)

	if err := h.Interrupt(); err != nil {
		t.Fatalf("Interrupt failed: %v", err)
	}
	// 128 + SIGINT
	if code := waitForExit(t, done, 2*time.Second); code != 130 {
		t.Errorf("exit code = %d, want 130", code)
	}
}

func TestKillIgnoringInterrupt(t *testing.T) {
	// Process that ignores SIGINT
	h, err := Start([]string{"sh", "-c", "trap '' INT; sleep 10"}, nil, nil)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	done := waitAsync(h)
	time.Sleep(50 * time.Millisecond)

	_ = h.Interrupt()
	select {
	case <-done:
		t.Fatal("process exited despite ignoring SIGINT")
	case <-time.After(200 * time.Millisecond):
	}

	if err := h.Kill(); err != nil {
		t.Fatalf("Kill failed: %v", err)
	}
	if code := waitForExit(t, done, 3*time.Second); code != ExitCodeKilled {
		t.Errorf("exit code = %d, want %d", code, ExitCodeKilled)
	}
}

func TestSignalsAfterWaitAreNoops(t *testing.T) {
	h, err := Start([]string{"true"}, nil, nil)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitForExit(t, waitAsync(h), 2*time.Second)

	if err := h.Interrupt(); err != nil {
		t.Errorf("Interrupt after exit = %v, want nil", err)
	}
	if err := h.Kill(); err != nil {
		t.Errorf("Kill after exit = %v, want nil", err)
	}
}

func TestExitCodeNonExitError(t *testing.T) {
	if code := ExitCode(errors.New("boom")); code != 1 {
		t.Errorf("ExitCode(generic) = %d, want 1", code)
	}
	if code := ExitCode(nil); code != 0 {
		t.Errorf("ExitCode(nil) = %d, want 0", code)
	}
}
