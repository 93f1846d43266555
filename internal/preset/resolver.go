package preset

import (
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

// TestPreviewDuration replaces the requested duration for preview captures.
const TestPreviewDuration = 10 * time.Second

// Input line selectors understood by capture cards with several inputs.
const (
	InputComposite = "composite"
	InputSVideo    = "s-video"
)

// Request is the user-facing description of a capture.
type Request struct {
	VideoDevice    string
	AudioDevice    string
	InputType      string
	Duration       string
	Preset         Preset
	OutputFormat   string
	FilenamePrefix string
	TapeLabel      string
	TestPreview    bool
}

// Plan is a fully resolved capture invocation.
type Plan struct {
	Program     string
	Args        []string
	OutputPath  string
	LogPath     string
	Duration    time.Duration
	Preset      Preset
	VideoDevice string

	// InputIndex is the V4L2 input to select before spawning, -1 for none.
	InputIndex int
}

// Argv returns the program followed by its arguments.
func (p *Plan) Argv() []string {
	return append([]string{p.Program}, p.Args...)
}

// CommandLine renders the plan as a shell-like string for display.
func (p *Plan) CommandLine() string {
	argv := p.Argv()
	quoted := make([]string, len(argv))
	for i, arg := range argv {
		quoted[i] = shellQuote(arg)
	}
	return strings.Join(quoted, " ")
}

// DeviceChecker reports whether a device node exists on the host.
type DeviceChecker func(path string) bool

// Resolver turns requests into plans.
type Resolver struct {
	Program   string
	OutputDir string
	LogDir    string
	Exists    DeviceChecker
}

// NewResolver creates a resolver. An empty logDir keeps logs next to the
// recordings.
func NewResolver(program, outputDir, logDir string, exists DeviceChecker) *Resolver {
	if logDir == "" {
		logDir = outputDir
	}
	return &Resolver{
		Program:   program,
		OutputDir: outputDir,
		LogDir:    logDir,
		Exists:    exists,
	}
}

// Resolve validates req and builds the ffmpeg plan. The only I/O performed
// is the device existence check.
func (r *Resolver) Resolve(req Request, now time.Time) (*Plan, error) {
	duration, err := ParseDuration(req.Duration)
	if err != nil {
		return nil, err
	}
	if req.TestPreview {
		duration = TestPreviewDuration
	}

	tmpl, ok := Lookup(req.Preset)
	if !ok {
		return nil, newError(ErrCodeUnknownPreset, "unknown preset "+strconv.Quote(string(req.Preset)), nil)
	}

	container := strings.ToLower(strings.TrimSpace(req.OutputFormat))
	if container == "" {
		container = tmpl.DefaultContainer
	}
	if !tmpl.Allows(container) {
		return nil, newError(ErrCodeInvalidParams,
			"preset "+string(tmpl.ID)+" cannot be written as "+container, nil)
	}

	if req.VideoDevice == "" {
		return nil, newError(ErrCodeDeviceNotFound, "video device is required", nil)
	}
	if r.Exists != nil && !r.Exists(req.VideoDevice) {
		return nil, newError(ErrCodeDeviceNotFound, "video device "+req.VideoDevice+" does not exist", nil)
	}
	if strings.TrimSpace(req.AudioDevice) == "" {
		return nil, newError(ErrCodeInvalidParams, "audio device is required", nil)
	}

	inputIndex, err := inputIndexFor(req.InputType)
	if err != nil {
		return nil, err
	}

	outputPath := filepath.Join(r.OutputDir, outputName(req.FilenamePrefix, tmpl.Tag, req.TapeLabel, container, now))

	return &Plan{
		Program:     r.Program,
		Args:        buildArgs(req.VideoDevice, req.AudioDevice, duration, tmpl, outputPath),
		OutputPath:  outputPath,
		LogPath:     filepath.Join(r.LogDir, logNameFor(outputPath)),
		Duration:    duration,
		Preset:      tmpl.ID,
		InputIndex:  inputIndex,
		VideoDevice: req.VideoDevice,
	}, nil
}

func inputIndexFor(inputType string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(inputType)) {
	case "":
		return -1, nil
	case InputComposite:
		return 0, nil
	case InputSVideo, "svideo":
		return 1, nil
	default:
		return -1, newError(ErrCodeInvalidParams, "unknown input type "+strconv.Quote(inputType), nil)
	}
}

// buildArgs assembles the encoder arguments. -t makes ffmpeg enforce the
// duration itself; -n refuses to overwrite an existing file.
func buildArgs(video, audio string, duration time.Duration, tmpl Template, outputPath string) []string {
	args := []string{
		"-hide_banner",
		"-nostdin",
		"-n",
		"-loglevel", "info",
		"-f", "v4l2",
		"-thread_queue_size", "4096",
		"-i", video,
		"-f", "alsa",
		"-thread_queue_size", "4096",
		"-i", audio,
		"-t", strconv.FormatInt(int64(duration/time.Second), 10),
	}
	args = append(args, tmpl.EncodeArgs...)
	return append(args, outputPath)
}

func shellQuote(s string) string {
	if s != "" && !strings.ContainsFunc(s, func(r rune) bool {
		return !(r == '-' || r == '_' || r == '.' || r == '/' || r == ':' || r == ',' || r == '+' || r == '=' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'))
	}) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// Names returns the identifiers of every preset.
func Names() []string {
	names := make([]string, 0, len(templates))
	for _, t := range templates {
		names = append(names, string(t.ID))
	}
	slices.Sort(names)
	return names
}
