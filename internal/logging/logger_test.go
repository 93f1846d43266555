package logging

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func resetState(t *testing.T) {
	t.Helper()
	mutex.Lock()
	moduleLoggers = make(map[string]*slog.Logger)
	moduleLevelVars = make(map[string]*slog.LevelVar)
	isInitialized = false
	globalConfig = Config{}
	logBuffer = NewRingBuffer(defaultBufferSize)
	mutex.Unlock()
	t.Cleanup(func() { Close() })
}

func TestModuleLevelOverride(t *testing.T) {
	resetState(t)

	if err := Initialize(Config{
		Level:  "info",
		Format: "text",
		Modules: map[string]string{
			"capture": "debug",
			"api":     "warn",
		},
	}); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	tests := []struct {
		module    string
		wantDebug bool
		wantInfo  bool
		wantWarn  bool
	}{
		{"capture", true, true, true},
		{"api", false, false, true},
		{"recordings", false, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.module, func(t *testing.T) {
			handler := GetLogger(tt.module).Handler()
			ctx := context.Background()

			if got := handler.Enabled(ctx, slog.LevelDebug); got != tt.wantDebug {
				t.Errorf("Debug enabled = %v, want %v", got, tt.wantDebug)
			}
			if got := handler.Enabled(ctx, slog.LevelInfo); got != tt.wantInfo {
				t.Errorf("Info enabled = %v, want %v", got, tt.wantInfo)
			}
			if got := handler.Enabled(ctx, slog.LevelWarn); got != tt.wantWarn {
				t.Errorf("Warn enabled = %v, want %v", got, tt.wantWarn)
			}
		})
	}
}

func TestGetLoggerBeforeInitialize(t *testing.T) {
	resetState(t)

	before := GetLogger("ffmpeg").Handler()
	if before.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("Logger created before Initialize should default to info")
	}

	Initialize(Config{Level: "info", Modules: map[string]string{"ffmpeg": "debug"}})

	// The LevelVar is shared, so handlers handed out earlier follow the new level.
	if !before.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("earlier handler should follow the module level after Initialize")
	}
	if !GetLogger("ffmpeg").Handler().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("logger after Initialize should have debug enabled")
	}
}

func TestSetLevel(t *testing.T) {
	resetState(t)
	Initialize(Config{Level: "info"})

	logger := GetLogger("devices")
	if logger.Handler().Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("debug should start disabled")
	}
	if err := SetLevel("devices", "debug"); err != nil {
		t.Fatalf("SetLevel() error = %v", err)
	}
	if !logger.Handler().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug should be enabled after SetLevel")
	}
	if err := SetLevel("devices", "loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestInitializeWritesLogFile(t *testing.T) {
	resetState(t)
	path := filepath.Join(t.TempDir(), "logs", "vhs-ui.log")

	if err := Initialize(Config{Level: "info", File: path}); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	GetLogger("capture").Info("Capture started", "job_id", "abc")
	Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "Capture started") || !strings.Contains(out, "job_id=abc") || !strings.Contains(out, "module=capture") {
		t.Errorf("log file content = %q", out)
	}
}

func TestInitializeReportsUnwritableFile(t *testing.T) {
	resetState(t)
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := Initialize(Config{File: filepath.Join(blocker, "vhs-ui.log")}); err == nil {
		t.Error("expected error when the log directory cannot be created")
	}
	// Logging keeps working without the file.
	GetLogger("api").Info("still logging")
}

func TestBufferKeepsRecentEntries(t *testing.T) {
	resetState(t)
	Initialize(Config{Level: "debug"})

	logger := GetLogger("recordings").With("dir", "/output")
	logger.Debug("Recording changed", "action", "created", "name", "tape.mkv")
	logger.WithGroup("stat").Warn("Slow disk", "latency", "2s")

	entries := GetBuffer().Recent(2)
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	first := entries[0]
	if first.Module != "recordings" || first.Level != "debug" || first.Message != "Recording changed" {
		t.Errorf("first entry = %+v", first)
	}
	if first.Attributes["dir"] != "/output" || first.Attributes["name"] != "tape.mkv" {
		t.Errorf("first entry attributes = %v", first.Attributes)
	}
	if entries[1].Attributes["stat.latency"] != "2s" {
		t.Errorf("grouped attribute missing: %v", entries[1].Attributes)
	}
}

func TestRingBufferWraps(t *testing.T) {
	rb := NewRingBuffer(3)
	for _, msg := range []string{"a", "b", "c", "d", "e"} {
		rb.Write(LogEntry{Message: msg})
	}

	if rb.Count() != 3 {
		t.Fatalf("Count() = %d, want 3", rb.Count())
	}
	got := rb.Recent(0)
	if len(got) != 3 || got[0].Message != "c" || got[2].Message != "e" {
		t.Errorf("Recent(0) = %+v", got)
	}
	if last := rb.Recent(1); len(last) != 1 || last[0].Message != "e" {
		t.Errorf("Recent(1) = %+v", last)
	}
}

func TestFanoutDebugOutput(t *testing.T) {
	var buf bytes.Buffer

	debugHandler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	infoHandler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})

	logger := slog.New(newFanout(debugHandler, infoHandler)).With("module", "test")
	logger.Debug("debug only message")

	// Only debugHandler accepts debug records
	if count := strings.Count(buf.String(), "debug only message"); count != 1 {
		t.Errorf("Expected 1 debug message, got %d. Output: %s", count, buf.String())
	}
	if count := strings.Count(buf.String(), "module=test"); count != 1 {
		t.Errorf("Expected attrs on the debug sink only, got %d. Output: %s", count, buf.String())
	}
}

type failingHandler struct{ slog.Handler }

func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("disk full") }

func TestFanoutKeepsWritingAfterSinkError(t *testing.T) {
	var buf bytes.Buffer
	ok := slog.NewTextHandler(&buf, nil)
	broken := failingHandler{slog.NewTextHandler(io.Discard, nil)}

	h := newFanout(broken, ok)
	r := slog.NewRecord(time.Now(), slog.LevelInfo, "capture started", 0)
	if err := h.Handle(context.Background(), r); err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("Handle error = %v, want sink error", err)
	}
	if !strings.Contains(buf.String(), "capture started") {
		t.Errorf("healthy sink skipped: %q", buf.String())
	}

	if single := newFanout(ok); single != slog.Handler(ok) {
		t.Error("single sink should not be wrapped")
	}
}

func TestJournalPriorityMapping(t *testing.T) {
	tests := []struct {
		level slog.Level
		want  int
	}{
		{slog.LevelDebug, 7},
		{slog.LevelInfo, 6},
		{slog.LevelWarn, 4},
		{slog.LevelError, 3},
	}
	for _, tt := range tests {
		if got := mapLevelToPriority(tt.level); int(got) != tt.want {
			t.Errorf("mapLevelToPriority(%v) = %d, want %d", tt.level, got, tt.want)
		}
	}
}

func TestJournalFields(t *testing.T) {
	fields := make(map[string]string)
	putField(fields, "", slog.String("job_id", "abc"))
	putField(fields, "capture_", slog.Int("exit_code", 255))
	putField(fields, "", slog.Group("progress", slog.Float64("speed", 1.5), slog.Bool("dropped", false)))
	putField(fields, "", slog.String("output-dir", "/output"))
	putField(fields, "", slog.String("_hidden", "x"))

	want := map[string]string{
		"JOB_ID":            "abc",
		"CAPTURE_EXIT_CODE": "255",
		"PROGRESS_SPEED":    "1.5",
		"PROGRESS_DROPPED":  "false",
		"OUTPUT_DIR":        "/output",
		"HIDDEN":            "x",
	}
	for k, v := range want {
		if fields[k] != v {
			t.Errorf("%s = %q, want %q", k, fields[k], v)
		}
	}
}

func TestJournalHandlerGroupsAndAttrs(t *testing.T) {
	h := newJournalHandler(slog.LevelInfo).WithAttrs([]slog.Attr{slog.String("module", "ffmpeg")}).WithGroup("job")
	jh := h.(*journalHandler)
	if jh.fields["MODULE"] != "ffmpeg" || jh.prefix != "job_" {
		t.Errorf("fields = %v, prefix = %q", jh.fields, jh.prefix)
	}
	if jh.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug should be disabled at info level")
	}
}

func TestParseLevelValues(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
		isNil bool
	}{
		{"debug", slog.LevelDebug, false},
		{"DEBUG", slog.LevelDebug, false},
		{"info", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"invalid", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := parseLevel(tt.input)
			if tt.isNil {
				if got != nil {
					t.Errorf("parseLevel(%q) = %v, want nil", tt.input, *got)
				}
				return
			}
			if got == nil || *got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
