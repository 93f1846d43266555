package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/vhsnode/internal/api/models"
	"github.com/smazurov/vhsnode/internal/capture"
	"github.com/smazurov/vhsnode/internal/preset"
)

// registerCaptureRoutes registers the capture control endpoints
func (s *Server) registerCaptureRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "start-capture",
		Method:      http.MethodPost,
		Path:        "/api/capture/start",
		Summary:     "Start Capture",
		Description: "Start a supervised ffmpeg capture, or resolve the command only when dryRun is set",
		Tags:        []string{"capture"},
		Errors:      []int{400, 401, 404, 409, 500},
		Security:    withAuth(),
	}, func(ctx context.Context, input *models.StartCaptureRequest) (*models.StartCaptureResponse, error) {
		req := requestFromBody(input.Body)

		if input.Body.DryRun {
			plan, err := s.capture.DryRun(req)
			if err != nil {
				return nil, mapCaptureError(err)
			}
			return &models.StartCaptureResponse{
				Body: models.StartCaptureResult{
					Success:    true,
					Message:    "Dry run, nothing started",
					OutputFile: plan.OutputPath,
					Command:    plan.CommandLine(),
				},
			}, nil
		}

		snap, err := s.capture.Start(ctx, req)
		if err != nil {
			return nil, mapCaptureError(err)
		}
		return &models.StartCaptureResponse{
			Body: models.StartCaptureResult{
				Success:    true,
				JobID:      snap.ID,
				Message:    "Capture started",
				OutputFile: snap.OutputPath,
				Command:    snap.Command,
			},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "stop-capture",
		Method:      http.MethodPost,
		Path:        "/api/capture/stop",
		Summary:     "Stop Capture",
		Description: "Interrupt the running capture. The process is killed if it does not exit within the grace period.",
		Tags:        []string{"capture"},
		Errors:      []int{401, 409},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct{}) (*models.StopCaptureResponse, error) {
		if err := s.capture.Stop(); err != nil {
			return nil, mapCaptureError(err)
		}
		return &models.StopCaptureResponse{
			Body: models.StopCaptureData{Result: "accepted"},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-capture-status",
		Method:      http.MethodGet,
		Path:        "/api/capture/status",
		Summary:     "Capture Status",
		Description: "Get the state, timing and recent output of the current or last capture",
		Tags:        []string{"capture"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct{}) (*models.CaptureStatusResponse, error) {
		return &models.CaptureStatusResponse{
			Body: statusFromSnapshot(s.capture.Status()),
		}, nil
	})
}

func requestFromBody(body models.StartCaptureData) preset.Request {
	return preset.Request{
		VideoDevice:    body.VideoDevice,
		AudioDevice:    body.AudioDevice,
		InputType:      body.InputType,
		Duration:       body.Duration,
		Preset:         preset.Preset(body.Preset),
		OutputFormat:   body.OutputFormat,
		FilenamePrefix: body.FilenamePrefix,
		TapeLabel:      body.TapeLabel,
		TestPreview:    body.TestPreview,
	}
}

func statusFromSnapshot(snap capture.Snapshot) models.CaptureStatusData {
	data := models.CaptureStatusData{
		Running:          snap.Running,
		State:            string(snap.State),
		JobID:            snap.ID,
		Preset:           string(snap.Preset),
		OutputFile:       snap.OutputPath,
		LogFile:          snap.LogPath,
		Command:          snap.Command,
		PlannedSeconds:   int64(snap.PlannedDuration / time.Second),
		ElapsedSeconds:   int64(snap.Elapsed / time.Second),
		RemainingSeconds: int64(snap.Remaining / time.Second),
		TailLines:        snap.TailLines,
		LastExitCode:     snap.ExitCode,
		Error:            snap.Error,
		Progress:         snap.Progress,
	}
	if data.TailLines == nil {
		data.TailLines = []string{}
	}
	if !snap.StartedAt.IsZero() {
		data.StartedAt = snap.StartedAt.UTC().Format(time.RFC3339)
	}
	if !snap.EndedAt.IsZero() {
		data.EndedAt = snap.EndedAt.UTC().Format(time.RFC3339)
	}
	return data
}

// mapCaptureError maps capture and request validation errors to HTTP errors.
// The wrapped error keeps the machine readable code in the response details.
func mapCaptureError(err error) error {
	msg := errorMessage(err)
	switch capture.CodeOf(err) {
	case capture.ErrCodeAlreadyRunning, capture.ErrCodeNoActiveJob:
		return huma.Error409Conflict(msg, err)
	case preset.ErrCodeInvalidDuration, preset.ErrCodeUnknownPreset, preset.ErrCodeInvalidParams:
		return huma.Error400BadRequest(msg, err)
	case preset.ErrCodeDeviceNotFound:
		return huma.Error404NotFound(msg, err)
	case capture.ErrCodeSpawnFailed:
		return huma.Error500InternalServerError(msg, err)
	default:
		return huma.Error500InternalServerError("internal server error", err)
	}
}

func errorMessage(err error) string {
	var captureErr *capture.Error
	if errors.As(err, &captureErr) {
		return captureErr.Message
	}
	var presetErr *preset.Error
	if errors.As(err, &presetErr) {
		return presetErr.Message
	}
	return err.Error()
}
