package recordings

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/smazurov/vhsnode/internal/events"
)

func writeRecording(t *testing.T, dir, name, content string, mtime time.Time) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatal(err)
	}
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	writeRecording(t, dir, "capture_ffv1_20260314_090000.mkv", "old", base)
	writeRecording(t, dir, "capture_h264_20260314_100000.mp4", "newer", base.Add(time.Hour))
	writeRecording(t, dir, "capture_h264_20260314_100000.log", "log", base.Add(2*time.Hour))
	writeRecording(t, dir, ".partial", "hidden", base.Add(3*time.Hour))
	if err := os.Mkdir(filepath.Join(dir, "subdir"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := List(dir)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d recordings, want 2: %+v", len(got), got)
	}
	if got[0].Name != "capture_h264_20260314_100000.mp4" || got[0].Size != 5 {
		t.Errorf("first = %+v, want newest mp4", got[0])
	}
	if got[1].Name != "capture_ffv1_20260314_090000.mkv" {
		t.Errorf("second = %+v", got[1])
	}
}

func TestList_MissingDir(t *testing.T) {
	got, err := List(filepath.Join(t.TempDir(), "missing"))
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("List() = %#v, want empty slice", got)
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	writeRecording(t, dir, "tape.mkv", "matroska", time.Now())
	writeRecording(t, dir, "tape.log", "log", time.Now())

	f, info, err := Open(dir, "tape.mkv")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer f.Close()
	data, _ := io.ReadAll(f)
	if string(data) != "matroska" || info.Size() != 8 {
		t.Errorf("content = %q, size = %d", data, info.Size())
	}

	tests := []struct {
		name string
		want error
	}{
		{"../etc/passwd", ErrInvalidName},
		{"sub/tape.mkv", ErrInvalidName},
		{"..", ErrInvalidName},
		{"", ErrInvalidName},
		{"tape.log", ErrInvalidName},
		{"missing.mkv", ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, _, err := Open(dir, tt.name)
			if f != nil {
				f.Close()
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Open(%q) error = %v, want %v", tt.name, err, tt.want)
			}
		})
	}
}

func TestWatcher_PublishesChanges(t *testing.T) {
	dir := t.TempDir()
	bus := events.New()
	received := make(chan events.RecordingChangedEvent, 16)
	unsub := bus.Subscribe(func(e events.RecordingChangedEvent) {
		received <- e
	})
	defer unsub()

	w := NewWatcher(dir, bus, nil)
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer w.Stop()

	path := filepath.Join(dir, "tape.mkv")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	// Job logs are not recordings.
	if err := os.WriteFile(filepath.Join(dir, "tape.log"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	expectEvent(t, received, "created", "tape.mkv")

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	expectEvent(t, received, "removed", "tape.mkv")
}

func expectEvent(t *testing.T, ch <-chan events.RecordingChangedEvent, action, name string) {
	t.Helper()
	select {
	case e := <-ch:
		if e.Action != action || e.Name != name {
			t.Errorf("event = %+v, want %s %s", e, action, name)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("no %s event for %s", action, name)
	}
}
