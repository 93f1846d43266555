package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/vhsnode/internal/api/models"
	"github.com/smazurov/vhsnode/internal/logging"
)

// registerLogRoutes registers the application log endpoint.
func (s *Server) registerLogRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-logs",
		Method:      http.MethodGet,
		Path:        "/api/logs",
		Summary:     "Application Logs",
		Description: "Recent application log entries kept in memory, oldest first",
		Tags:        []string{"logs"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct {
		Limit int `query:"limit" default:"200" minimum:"0" maximum:"1000" doc:"Maximum number of entries, 0 for all"`
	}) (*models.LogsResponse, error) {
		entries := []models.LogEntryData{}
		if buffer := logging.GetBuffer(); buffer != nil {
			for _, e := range buffer.Recent(input.Limit) {
				entries = append(entries, models.LogEntryData{
					Timestamp:  e.Timestamp,
					Level:      e.Level,
					Module:     e.Module,
					Message:    e.Message,
					Attributes: e.Attributes,
				})
			}
		}
		return &models.LogsResponse{
			Body: models.LogsData{Entries: entries, Count: len(entries)},
		}, nil
	})
}
