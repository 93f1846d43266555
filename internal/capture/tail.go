package capture

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/smazurov/vhsnode/internal/metrics"
)

const (
	// TailSize is the number of diagnostic lines kept for status.
	TailSize = 50

	maxPartialLine = 16 << 10
	sinkQueueSize  = 256
)

// LineHandler receives every complete diagnostic line.
type LineHandler interface {
	HandleLine(line string)
}

// Tail is the output tailer of one job. It is written to by exec's copy
// goroutine and never blocks on the disk sink: chunks go through a bounded
// queue and the oldest chunk is dropped when the sink falls behind.
type Tail struct {
	mu      sync.Mutex
	ring    [TailSize]string
	start   int
	count   int
	partial []byte
	closed  bool
	handler LineHandler

	queue    chan []byte
	sink     io.WriteCloser
	sinkDone chan struct{}
	dropped  atomic.Int64
}

// NewTail creates a tail writing raw output to sink. A nil sink keeps lines
// in memory only; a nil handler skips line forwarding.
func NewTail(sink io.WriteCloser, handler LineHandler) *Tail {
	t := &Tail{
		handler:  handler,
		queue:    make(chan []byte, sinkQueueSize),
		sink:     sink,
		sinkDone: make(chan struct{}),
	}
	go t.drain()
	return t
}

// Write splits p into lines on \n and \r and queues the raw bytes for the
// sink. It always reports len(p) so the copying goroutine keeps reading.
func (t *Tail) Write(p []byte) (int, error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return len(p), nil
	}
	lines := t.split(p)
	t.enqueue(p)
	t.mu.Unlock()

	t.forward(lines)
	return len(p), nil
}

// RawWriter returns a writer that only feeds the sink, for streams that are
// not diagnostic text.
func (t *Tail) RawWriter() io.Writer {
	return rawWriter{t}
}

type rawWriter struct{ t *Tail }

func (w rawWriter) Write(p []byte) (int, error) {
	w.t.mu.Lock()
	defer w.t.mu.Unlock()
	if !w.t.closed {
		w.t.enqueue(p)
	}
	return len(p), nil
}

// Lines returns the retained lines, oldest first.
func (t *Tail) Lines() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	lines := make([]string, t.count)
	for i := range t.count {
		lines[i] = t.ring[(t.start+i)%TailSize]
	}
	return lines
}

// Close flushes a trailing partial line, appends trailer to the sink, drains
// the queue and closes the sink. Later writes are discarded.
func (t *Tail) Close(trailer string) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		<-t.sinkDone
		return
	}
	var lines []string
	if line := string(bytes.TrimSpace(t.partial)); line != "" {
		t.push(line)
		lines = append(lines, line)
	}
	t.partial = nil
	t.closed = true
	if trailer != "" {
		// The sink only receives, so this send waits for at most one write.
		t.queue <- []byte(trailer)
	}
	close(t.queue)
	t.mu.Unlock()

	t.forward(lines)
	<-t.sinkDone
}

func (t *Tail) split(p []byte) []string {
	var lines []string
	for len(p) > 0 {
		i := bytes.IndexAny(p, "\r\n")
		if i < 0 {
			t.partial = append(t.partial, p...)
			if len(t.partial) >= maxPartialLine {
				lines = t.emit(lines)
			}
			return lines
		}
		t.partial = append(t.partial, p[:i]...)
		lines = t.emit(lines)
		p = p[i+1:]
	}
	return lines
}

func (t *Tail) emit(lines []string) []string {
	line := string(bytes.TrimSpace(t.partial))
	t.partial = t.partial[:0]
	if line == "" {
		return lines
	}
	t.push(line)
	return append(lines, line)
}

func (t *Tail) push(line string) {
	if t.count < TailSize {
		t.ring[(t.start+t.count)%TailSize] = line
		t.count++
		return
	}
	t.ring[t.start] = line
	t.start = (t.start + 1) % TailSize
}

// enqueue must be called with mu held, which makes this the only sender.
func (t *Tail) enqueue(p []byte) {
	chunk := bytes.Clone(p)
	select {
	case t.queue <- chunk:
		return
	default:
	}
	select {
	case old := <-t.queue:
		t.dropped.Add(int64(len(old)))
		metrics.AddTailDroppedBytes(len(old))
	default:
	}
	select {
	case t.queue <- chunk:
	default:
		t.dropped.Add(int64(len(chunk)))
		metrics.AddTailDroppedBytes(len(chunk))
	}
}

func (t *Tail) forward(lines []string) {
	if t.handler == nil {
		return
	}
	for _, line := range lines {
		t.handler.HandleLine(line)
	}
}

func (t *Tail) drain() {
	defer close(t.sinkDone)
	if t.sink == nil {
		for range t.queue {
		}
		return
	}
	defer t.sink.Close()

	failed := false
	for chunk := range t.queue {
		if failed {
			continue
		}
		if n := t.dropped.Swap(0); n > 0 {
			fmt.Fprintf(t.sink, "\n[... %d bytes of output dropped ...]\n", n)
		}
		if _, err := t.sink.Write(chunk); err != nil {
			failed = true
		}
	}
}
