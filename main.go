package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/smazurov/vhsnode/cmd"
	"github.com/smazurov/vhsnode/internal/api"
	"github.com/smazurov/vhsnode/internal/capture"
	"github.com/smazurov/vhsnode/internal/config"
	"github.com/smazurov/vhsnode/internal/devices"
	"github.com/smazurov/vhsnode/internal/events"
	"github.com/smazurov/vhsnode/internal/logging"
	"github.com/smazurov/vhsnode/internal/metrics"
	"github.com/smazurov/vhsnode/internal/preset"
	"github.com/smazurov/vhsnode/internal/recordings"
	"github.com/smazurov/vhsnode/internal/version"
)

// Options for the CLI - flat structure with toml mapping. Env names are
// read with the VHS_ prefix, e.g. VHS_OUTPUT_DIR.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"vhsnode.toml"`

	// Server settings
	Host string `help:"Address to listen on" default:"0.0.0.0" toml:"server.host" env:"UI_HOST"`
	Port int    `help:"Port to listen on" short:"p" default:"8099" toml:"server.port" env:"UI_PORT"`

	// Auth settings, basic auth is enabled only when both are set
	AuthUsername string `help:"Basic auth username" default:"" toml:"auth.username" env:"UI_USER"`
	AuthPassword string `help:"Basic auth password" default:"" toml:"auth.password" env:"UI_PASS"`

	// Capture settings
	OutputDir    string `help:"Directory recordings are written to" default:"/output" toml:"capture.output_dir" env:"OUTPUT_DIR"`
	LogDir       string `help:"Directory for per-job ffmpeg logs (defaults to the output directory)" default:"" toml:"capture.log_dir" env:"LOG_DIR"`
	FFmpegPath   string `help:"ffmpeg executable" default:"ffmpeg" toml:"capture.ffmpeg_path" env:"FFMPEG_PATH"`
	StopGrace    string `help:"Time ffmpeg gets to finish after an interrupt before it is killed" default:"5s" toml:"capture.stop_grace" env:"STOP_GRACE"`
	KillWait     string `help:"Time to wait for a killed ffmpeg to be reaped" default:"5s" toml:"capture.kill_wait" env:"KILL_WAIT"`
	OverrunGrace string `help:"Time past the planned duration before a capture is terminated (0 disables)" default:"30s" toml:"capture.overrun_grace" env:"OVERRUN_GRACE"`

	// Features settings
	WatchRecordings bool `help:"Publish recording changes from the output directory" default:"true" toml:"features.watch_recordings" env:"WATCH_RECORDINGS"`
	MetricsEnabled  bool `help:"Expose Prometheus metrics at /metrics" default:"true" toml:"features.metrics" env:"METRICS_ENABLED"`

	// Logging settings
	LogFile           string `help:"Application log file (defaults to <output-dir>/vhs-ui.log)" default:"" toml:"logging.file" env:"LOG_FILE"`
	LoggingLevel      string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat     string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingCapture    string `help:"Capture supervisor logging level" default:"info" toml:"logging.capture" env:"LOGGING_CAPTURE"`
	LoggingFFmpeg     string `help:"ffmpeg output logging level" default:"warn" toml:"logging.ffmpeg" env:"LOGGING_FFMPEG"`
	LoggingAPI        string `help:"API logging level" default:"info" toml:"logging.api" env:"LOGGING_API"`
	LoggingHTTP       string `help:"HTTP request logging level" default:"info" toml:"logging.http" env:"LOGGING_HTTP"`
	LoggingDevices    string `help:"Devices logging level" default:"info" toml:"logging.devices" env:"LOGGING_DEVICES"`
	LoggingRecordings string `help:"Recordings logging level" default:"info" toml:"logging.recordings" env:"LOGGING_RECORDINGS"`
}

// app holds the components of a running server.
type app struct {
	server     *api.Server
	supervisor *capture.Supervisor
	watcher    *recordings.Watcher
	shutdown   time.Duration
	logger     *slog.Logger
}

func main() {
	var cli humacli.CLI

	cli = humacli.New(func(hooks humacli.Hooks, opts *Options) {
		if loadErr := config.LoadConfig(opts, cli.Root()); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}

		loggingConfig := logging.Config{
			Level:  opts.LoggingLevel,
			Format: opts.LoggingFormat,
			Modules: map[string]string{
				"capture":    opts.LoggingCapture,
				"ffmpeg":     opts.LoggingFFmpeg,
				"api":        opts.LoggingAPI,
				"http":       opts.LoggingHTTP,
				"devices":    opts.LoggingDevices,
				"recordings": opts.LoggingRecordings,
			},
		}
		logging.Initialize(loggingConfig)

		var a *app

		hooks.OnStart(func() {
			// The application log file lives in the output directory, so it
			// is only opened when serving.
			loggingConfig.File = opts.LogFile
			if loggingConfig.File == "" {
				loggingConfig.File = filepath.Join(opts.OutputDir, "vhs-ui.log")
			}
			if logErr := logging.Initialize(loggingConfig); logErr != nil {
				slog.Warn("Application log file unavailable", "path", loggingConfig.File, "error", logErr)
			}

			a = newApp(opts)

			if opts.WatchRecordings {
				if startErr := a.watcher.Start(); startErr != nil {
					a.logger.Warn("Failed to watch output directory", "dir", opts.OutputDir, "error", startErr)
				}
			}

			addr := net.JoinHostPort(opts.Host, strconv.Itoa(opts.Port))
			if startErr := a.server.Start(addr); startErr != nil && !errors.Is(startErr, http.ErrServerClosed) {
				a.logger.Error("Failed to start HTTP server", "error", startErr)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			if a == nil {
				return
			}
			a.stop()
		})
	})

	cli.Root().Use = "vhsnode"
	cli.Root().Short = "Supervised VHS capture server"
	cli.Root().Version = version.String()

	cli.Root().AddCommand(cmd.CreatePresetsCmd())
	cli.Root().AddCommand(cmd.CreateDevicesCmd())
	cli.Root().AddCommand(cmd.CreatePlanCmd())

	cli.Run()
}

func newApp(opts *Options) *app {
	logger := logging.GetLogger("main")

	stopGrace := durationOption(logger, "stop-grace", opts.StopGrace, capture.DefaultStopGrace)
	killWait := durationOption(logger, "kill-wait", opts.KillWait, capture.DefaultKillWait)
	overrunGrace := durationOption(logger, "overrun-grace", opts.OverrunGrace, 30*time.Second)

	eventBus := events.New()
	host := devices.NewHost()

	resolver := preset.NewResolver(opts.FFmpegPath, opts.OutputDir, opts.LogDir, host.Exists)
	supervisor := capture.NewSupervisor(resolver, capture.Options{
		StopGrace:    stopGrace,
		KillWait:     killWait,
		OverrunGrace: overrunGrace,
		Selector:     host,
		Bus:          eventBus,
		Logger:       logging.GetLogger("capture"),
		OutputLogger: logging.GetLogger("ffmpeg"),
	})

	apiOpts := &api.Options{
		AuthUsername: opts.AuthUsername,
		AuthPassword: opts.AuthPassword,
		Capture:      supervisor,
		Devices:      host,
		OutputDir:    opts.OutputDir,
		EventBus:     eventBus,
	}
	if opts.MetricsEnabled {
		apiOpts.MetricsHandler = metrics.Handler()
	}

	logger.Info("vhsnode starting",
		"version", version.String(),
		"output_dir", opts.OutputDir,
		"ffmpeg", opts.FFmpegPath,
		"stop_grace", stopGrace,
		"kill_wait", killWait,
		"overrun_grace", overrunGrace)

	return &app{
		server:     api.NewServer(apiOpts),
		supervisor: supervisor,
		watcher:    recordings.NewWatcher(opts.OutputDir, eventBus, logging.GetLogger("recordings")),
		shutdown:   stopGrace + killWait + time.Second,
		logger:     logger,
	}
}

// stop closes the HTTP server first so no new capture can start, then
// terminates the running capture.
func (a *app) stop() {
	a.logger.Info("Shutting down server")
	if stopErr := a.server.Stop(); stopErr != nil {
		a.logger.Error("Error stopping HTTP server", "error", stopErr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.shutdown)
	defer cancel()
	if stopErr := a.supervisor.Shutdown(ctx); stopErr != nil {
		a.logger.Error("Capture did not exit before shutdown", "error", stopErr)
	}

	if stopErr := a.watcher.Stop(); stopErr != nil {
		a.logger.Warn("Error stopping recordings watcher", "error", stopErr)
	}
	logging.Close()
}

func durationOption(logger *slog.Logger, name, value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		logger.Warn("Invalid duration option, using default", "option", name, "value", value, "default", fallback)
		return fallback
	}
	return d
}
