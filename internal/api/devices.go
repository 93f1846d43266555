package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/vhsnode/internal/api/models"
	"github.com/smazurov/vhsnode/internal/devices"
	"github.com/smazurov/vhsnode/internal/preset"
)

func (s *Server) registerDeviceRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-devices",
		Method:      http.MethodGet,
		Path:        "/api/devices",
		Summary:     "List Devices",
		Description: "List V4L2 video devices and ALSA capture devices",
		Tags:        []string{"devices"},
		Errors:      []int{401, 500},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct{}) (*models.DevicesResponse, error) {
		video, err := s.devices.ListVideo()
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list video devices", err)
		}
		audio, err := s.devices.ListAudio()
		if err != nil {
			// A host without ALSA still has usable video devices.
			s.logger.Warn("Failed to list audio devices", "error", err)
			audio = nil
		}
		return &models.DevicesResponse{
			Body: models.DevicesData{
				Video: videoDevicesToAPI(video),
				Audio: audioDevicesToAPI(audio),
			},
		}, nil
	})
}

func (s *Server) registerPresetRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-presets",
		Method:      http.MethodGet,
		Path:        "/api/presets",
		Summary:     "List Presets",
		Description: "List capture presets with their containers and encoder arguments",
		Tags:        []string{"capture"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct{}) (*models.PresetsResponse, error) {
		templates := preset.All()
		data := make([]models.PresetData, len(templates))
		for i, t := range templates {
			data[i] = models.PresetData{
				ID:               string(t.ID),
				Label:            t.Label,
				Containers:       t.Containers,
				DefaultContainer: t.DefaultContainer,
				EncodeArgs:       t.EncodeArgs,
			}
		}
		return &models.PresetsResponse{Body: models.PresetsData{Presets: data}}, nil
	})
}

func videoDevicesToAPI(list []devices.VideoDevice) []models.VideoDeviceData {
	out := make([]models.VideoDeviceData, len(list))
	for i, d := range list {
		inputs := make([]models.InputData, len(d.Inputs))
		for j, in := range d.Inputs {
			inputs[j] = models.InputData{Index: in.Index, Name: in.Name}
		}
		out[i] = models.VideoDeviceData{
			Path:    d.Path,
			Name:    d.Name,
			Driver:  d.Driver,
			BusInfo: d.BusInfo,
			Inputs:  inputs,
		}
	}
	return out
}

func audioDevicesToAPI(list []devices.AudioDevice) []models.AudioDeviceData {
	out := make([]models.AudioDeviceData, len(list))
	for i, d := range list {
		out[i] = models.AudioDeviceData{
			ID:       d.ID,
			Card:     d.Card,
			Device:   d.Device,
			CardID:   d.CardID,
			CardName: d.CardName,
			Name:     d.Name,
		}
	}
	return out
}
