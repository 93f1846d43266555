// Package logging provides structured logging with per-module log levels.
//
// Records fan out to every available destination:
//   - stdout when a terminal, pipe, or file is connected
//   - the systemd journal when journald is running
//   - the application log file when [Config.File] is set
//   - an in-memory ring buffer served by the HTTP API
//
// Initialize once at startup, then ask for module loggers:
//
//	logging.Initialize(logging.Config{
//		Level:  "info",
//		Format: "text",
//		File:   "/output/vhs-ui.log",
//		Modules: map[string]string{
//			"capture": "debug",
//		},
//	})
//
//	logger := logging.GetLogger("capture").With("job_id", id)
//	logger.Info("Capture started")
//
// Each module owns a [slog.LevelVar], so [SetLevel] takes effect on loggers
// that were handed out earlier.
//
// When running under systemd:
//
//	journalctl -t vhsnode -f
//	journalctl -t vhsnode MODULE=capture JOB_ID=...
package logging
