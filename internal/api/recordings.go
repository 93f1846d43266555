package api

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/vhsnode/internal/api/models"
	"github.com/smazurov/vhsnode/internal/recordings"
)

var recordingTypes = map[string]string{
	".mkv": "video/x-matroska",
	".mp4": "video/mp4",
}

func (s *Server) registerRecordingRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-recordings",
		Method:      http.MethodGet,
		Path:        "/api/recordings",
		Summary:     "List Recordings",
		Description: "List files in the output directory, newest first. Job logs are excluded.",
		Tags:        []string{"recordings"},
		Errors:      []int{401, 500},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct{}) (*models.RecordingsResponse, error) {
		list, err := recordings.List(s.outputDir)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list recordings", err)
		}
		data := make([]models.RecordingData, len(list))
		for i, r := range list {
			data[i] = models.RecordingData{Name: r.Name, Size: r.Size, ModTime: r.ModTime}
		}
		return &models.RecordingsResponse{
			Body: models.RecordingsData{Recordings: data, Count: len(data)},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "download-recording",
		Method:      http.MethodGet,
		Path:        "/api/recordings/{name}",
		Summary:     "Download Recording",
		Description: "Stream a recording from the output directory",
		Tags:        []string{"recordings"},
		Errors:      []int{400, 401, 404, 500},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct {
		Name string `path:"name" example:"capture_ffv1_20250127_103000.mkv" doc:"Recording file name"`
	}) (*huma.StreamResponse, error) {
		f, info, err := recordings.Open(s.outputDir, input.Name)
		switch {
		case errors.Is(err, recordings.ErrInvalidName):
			return nil, huma.Error400BadRequest("invalid recording name", err)
		case errors.Is(err, recordings.ErrNotFound):
			return nil, huma.Error404NotFound("recording not found", err)
		case err != nil:
			return nil, huma.Error500InternalServerError("failed to open recording", err)
		}

		return &huma.StreamResponse{
			Body: func(hctx huma.Context) {
				defer f.Close()

				contentType := recordingTypes[filepath.Ext(info.Name())]
				if contentType == "" {
					contentType = "application/octet-stream"
				}
				hctx.SetHeader("Content-Type", contentType)
				hctx.SetHeader("Content-Length", strconv.FormatInt(info.Size(), 10))
				hctx.SetHeader("Content-Disposition",
					mime.FormatMediaType("attachment", map[string]string{"filename": info.Name()}))
				hctx.SetStatus(http.StatusOK)

				if _, err := io.Copy(hctx.BodyWriter(), f); err != nil {
					s.logger.Warn("Recording download interrupted", "name", info.Name(), "error", err)
				}
			},
		}, nil
	})
}
