package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"
	"github.com/smazurov/vhsnode/internal/events"
)

// registerSSERoutes registers the Server-Sent Events endpoint
func (s *Server) registerSSERoutes() {
	sse.Register(s.api, huma.Operation{
		OperationID: "events-stream",
		Method:      http.MethodGet,
		Path:        "/api/events",
		Summary:     "Server-Sent Events Stream",
		Description: "Real-time capture state changes, ffmpeg output lines, rejected starts and recording changes. The first message is the current capture state.",
		Tags:        []string{"events"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, map[string]any{
		"capture-state":     events.CaptureStateChangedEvent{},
		"capture-line":      events.CaptureLineEvent{},
		"capture-rejected":  events.CaptureRejectedEvent{},
		"recording-changed": events.RecordingChangedEvent{},
	}, func(ctx context.Context, _ *struct{}, send sse.Sender) {
		// ffmpeg emits progress several times a second, so leave headroom
		eventCh := make(chan any, 64)

		unsubscribers := []func(){
			events.SubscribeToChannel[events.CaptureStateChangedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.CaptureLineEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.CaptureRejectedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.RecordingChangedEvent](s.eventBus, eventCh),
		}
		defer func() {
			for _, unsub := range unsubscribers {
				unsub()
			}
		}()

		if err := send.Data(s.currentStateEvent()); err != nil {
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case event := <-eventCh:
				if err := send.Data(event); err != nil {
					return
				}
			}
		}
	})
}

// currentStateEvent describes the current capture as a state event so a
// fresh client does not have to poll status first.
func (s *Server) currentStateEvent() events.CaptureStateChangedEvent {
	snap := s.capture.Status()
	return events.CaptureStateChangedEvent{
		JobID:      snap.ID,
		State:      string(snap.State),
		Preset:     string(snap.Preset),
		OutputFile: snap.OutputPath,
		ExitCode:   snap.ExitCode,
		Error:      snap.Error,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
}
