package events

// Event type constants for kelindar/event.
const (
	TypeCaptureStateChanged uint32 = iota + 1
	TypeCaptureLine
	TypeCaptureRejected
	TypeRecordingChanged
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// CaptureStateChangedEvent is published on every capture job transition.
type CaptureStateChangedEvent struct {
	JobID      string `json:"jobId" example:"6f1c2d7e-5d0b-4a53-9f0e-2b1f9d1c7a11" doc:"Capture job identifier"`
	State      string `json:"state" example:"running" doc:"New job state: running, stopping, completed, failed"`
	Preset     string `json:"preset" example:"archival_lossless" doc:"Capture preset"`
	OutputFile string `json:"outputFile" example:"/output/capture_ffv1_20250127_103000.mkv" doc:"Recording path"`
	ExitCode   *int   `json:"exitCode,omitempty" example:"0" doc:"Exit code once the process was reaped"`
	Error      string `json:"error,omitempty" doc:"Failure description"`
	Timestamp  string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for CaptureStateChangedEvent.
func (e CaptureStateChangedEvent) Type() uint32 { return TypeCaptureStateChanged }

// CaptureLineEvent carries one diagnostic line from the capture process.
type CaptureLineEvent struct {
	JobID     string `json:"jobId" doc:"Capture job identifier"`
	Line      string `json:"line" example:"frame=  120 fps= 30 q=-0.0 size=   20480kB time=00:00:04.00 speed=1.00x" doc:"Diagnostic line"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:04Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for CaptureLineEvent.
func (e CaptureLineEvent) Type() uint32 { return TypeCaptureLine }

// CaptureRejectedEvent is published when a start request is refused.
type CaptureRejectedEvent struct {
	Code      string `json:"code" example:"ALREADY_RUNNING" doc:"Rejection reason"`
	Message   string `json:"message" doc:"Human readable reason"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for CaptureRejectedEvent.
func (e CaptureRejectedEvent) Type() uint32 { return TypeCaptureRejected }

// RecordingChangedEvent reports files appearing in or leaving the output directory.
type RecordingChangedEvent struct {
	Action    string `json:"action" example:"created" doc:"Action type: created, removed"`
	Name      string `json:"name" example:"capture_ffv1_20250127_103000.mkv" doc:"Recording file name"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for RecordingChangedEvent.
func (e RecordingChangedEvent) Type() uint32 { return TypeRecordingChanged }
