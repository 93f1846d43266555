package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/smazurov/vhsnode/internal/devices"
	"github.com/smazurov/vhsnode/internal/preset"
	"github.com/spf13/cobra"
)

// CreatePlanCmd creates the plan command, which prints the ffmpeg command a
// capture request resolves to without starting it.
func CreatePlanCmd() *cobra.Command {
	var (
		req        preset.Request
		presetID   string
		outputDir  string
		logDir     string
		ffmpegPath string
		skipCheck  bool
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the ffmpeg command for a capture request",
		Long: `Resolves a capture request the same way the server does and prints the output path, ` +
			`job log path and ffmpeg command line. Nothing is started.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req.Preset = preset.Preset(presetID)
			exists := devices.Exists
			if skipCheck {
				exists = nil
			}
			resolver := preset.NewResolver(ffmpegPath, outputDir, logDir, exists)
			return writePlan(cmd.OutOrStdout(), resolver, req, time.Now())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&req.VideoDevice, "video", "/dev/video0", "V4L2 video device")
	flags.StringVar(&req.AudioDevice, "audio", "hw:1,0", "ALSA audio device")
	flags.StringVar(&req.InputType, "input", "", "Analog input: composite or s-video")
	flags.StringVar(&req.Duration, "duration", "02:00:00", "Capture length as HH:MM:SS")
	flags.StringVar(&presetID, "preset", string(preset.ArchivalLossless), "Capture preset ("+strings.Join(preset.Names(), ", ")+")")
	flags.StringVar(&req.OutputFormat, "format", "", "Output container (mkv, mp4)")
	flags.StringVar(&req.FilenamePrefix, "prefix", "", "Output filename prefix")
	flags.StringVar(&req.TapeLabel, "label", "", "Tape label embedded in the filename")
	flags.BoolVar(&req.TestPreview, "preview", false, "Resolve a 10 second preview capture")
	flags.StringVar(&outputDir, "output-dir", "/output", "Recording directory")
	flags.StringVar(&logDir, "log-dir", "", "Job log directory (defaults to the output directory)")
	flags.StringVar(&ffmpegPath, "ffmpeg", "ffmpeg", "ffmpeg executable")
	flags.BoolVar(&skipCheck, "skip-device-check", false, "Do not require the video device to exist")

	return cmd
}

// PlanResolver resolves capture requests.
type PlanResolver interface {
	Resolve(req preset.Request, now time.Time) (*preset.Plan, error)
}

func writePlan(w io.Writer, resolver PlanResolver, req preset.Request, now time.Time) error {
	plan, err := resolver.Resolve(req, now)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "preset:   %s\n", plan.Preset)
	fmt.Fprintf(w, "duration: %s\n", preset.FormatDuration(plan.Duration))
	fmt.Fprintf(w, "output:   %s\n", plan.OutputPath)
	fmt.Fprintf(w, "log:      %s\n", plan.LogPath)
	if plan.InputIndex >= 0 {
		fmt.Fprintf(w, "input:    %d\n", plan.InputIndex)
	}
	fmt.Fprintf(w, "command:  %s\n", plan.CommandLine())
	return nil
}
