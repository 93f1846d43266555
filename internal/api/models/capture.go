package models

import "github.com/smazurov/vhsnode/internal/metrics"

// Capture request models. Every field is optional on the wire so that
// validation failures surface with their capture error codes.
type StartCaptureData struct {
	VideoDevice    string `json:"videoDevice,omitempty" example:"/dev/video0" doc:"V4L2 video device path"`
	AudioDevice    string `json:"audioDevice,omitempty" example:"hw:1,0" doc:"ALSA audio device"`
	InputType      string `json:"inputType,omitempty" example:"composite" doc:"Analog input line: composite or s-video"`
	Duration       string `json:"duration,omitempty" example:"02:00:00" doc:"Capture length as HH:MM:SS"`
	Preset         string `json:"preset,omitempty" example:"archival_lossless" doc:"Capture preset"`
	OutputFormat   string `json:"outputFormat,omitempty" example:"mkv" doc:"Container: mkv or mp4, limited by the preset"`
	FilenamePrefix string `json:"filenamePrefix,omitempty" example:"capture" doc:"Output filename prefix"`
	TapeLabel      string `json:"tapeLabel,omitempty" example:"Wedding 1994" doc:"Free text label embedded in the filename"`
	DryRun         bool   `json:"dryRun,omitempty" doc:"Resolve the command without starting a capture"`
	TestPreview    bool   `json:"testPreview,omitempty" doc:"Capture a short 10 second preview instead of the full duration"`
}

type StartCaptureRequest struct {
	Body StartCaptureData
}

type StartCaptureResult struct {
	Success    bool   `json:"success" example:"true" doc:"Whether the request was accepted"`
	JobID      string `json:"jobId,omitempty" example:"6f1c2d7e-5d0b-4a53-9f0e-2b1f9d1c7a11" doc:"Capture job identifier, empty for dry runs"`
	Message    string `json:"message" example:"Capture started" doc:"Status message"`
	OutputFile string `json:"outputFile" example:"/output/capture_ffv1_20250127_103000.mkv" doc:"Recording path"`
	Command    string `json:"command" example:"ffmpeg -hide_banner -nostdin -n ..." doc:"Resolved ffmpeg command line"`
}

type StartCaptureResponse struct {
	Body StartCaptureResult
}

type StopCaptureData struct {
	Result string `json:"result" example:"accepted" doc:"Stop request outcome"`
}

type StopCaptureResponse struct {
	Body StopCaptureData
}

// Capture status models
type CaptureStatusData struct {
	Running          bool              `json:"running" example:"true" doc:"Whether a capture is running or stopping"`
	State            string            `json:"state" example:"running" doc:"Job state: idle, running, stopping, completed, failed"`
	JobID            string            `json:"jobId,omitempty" doc:"Current or last job identifier"`
	Preset           string            `json:"preset,omitempty" example:"archival_lossless" doc:"Capture preset"`
	OutputFile       string            `json:"outputFile,omitempty" doc:"Recording path"`
	LogFile          string            `json:"logFile,omitempty" doc:"Per-job ffmpeg log path"`
	Command          string            `json:"command,omitempty" doc:"ffmpeg command line"`
	StartedAt        string            `json:"startedAt,omitempty" example:"2025-01-27T10:30:00Z" doc:"Job start time"`
	EndedAt          string            `json:"endedAt,omitempty" example:"2025-01-27T12:30:00Z" doc:"Job end time"`
	PlannedSeconds   int64             `json:"plannedSeconds" example:"7200" doc:"Requested capture length"`
	ElapsedSeconds   int64             `json:"elapsedSeconds" example:"42" doc:"Seconds since start, frozen once the job ended"`
	RemainingSeconds int64             `json:"remainingSeconds" example:"7158" doc:"Seconds left of the planned duration"`
	TailLines        []string          `json:"tailLines" doc:"Most recent ffmpeg output lines"`
	LastExitCode     *int              `json:"lastExitCode,omitempty" example:"0" doc:"Exit code of the last reaped process"`
	Error            string            `json:"error,omitempty" doc:"Failure description"`
	Progress         *metrics.Progress `json:"progress,omitempty" doc:"Last parsed ffmpeg progress line"`
}

type CaptureStatusResponse struct {
	Body CaptureStatusData
}
