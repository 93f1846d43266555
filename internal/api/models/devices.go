package models

import "time"

// Device models
type InputData struct {
	Index int    `json:"index" example:"0" doc:"Input index passed to VIDIOC_S_INPUT"`
	Name  string `json:"name" example:"Composite0" doc:"Driver supplied input name"`
}

type VideoDeviceData struct {
	Path    string      `json:"path" example:"/dev/video0" doc:"Device node"`
	Name    string      `json:"name" example:"USB2.0 PC CAMERA" doc:"Card name"`
	Driver  string      `json:"driver,omitempty" example:"em28xx" doc:"Kernel driver"`
	BusInfo string      `json:"busInfo,omitempty" example:"usb-0000:00:14.0-1" doc:"Bus location"`
	Inputs  []InputData `json:"inputs" doc:"Selectable analog inputs"`
}

type AudioDeviceData struct {
	ID       string `json:"id" example:"hw:1,0" doc:"ALSA device string"`
	Card     int    `json:"card" example:"1" doc:"ALSA card number"`
	Device   int    `json:"device" example:"0" doc:"ALSA device number"`
	CardID   string `json:"cardId,omitempty" example:"Device" doc:"ALSA card identifier"`
	CardName string `json:"cardName,omitempty" example:"USB Audio Device" doc:"ALSA card name"`
	Name     string `json:"name" example:"USB Audio" doc:"PCM name"`
}

type DevicesData struct {
	Video []VideoDeviceData `json:"video" doc:"Video capture devices"`
	Audio []AudioDeviceData `json:"audio" doc:"Audio capture devices"`
}

type DevicesResponse struct {
	Body DevicesData
}

// Preset models
type PresetData struct {
	ID               string   `json:"id" example:"archival_lossless" doc:"Preset identifier"`
	Label            string   `json:"label" example:"Archival (FFV1 + FLAC)" doc:"Display name"`
	Containers       []string `json:"containers" example:"[\"mkv\"]" doc:"Allowed output containers"`
	DefaultContainer string   `json:"defaultContainer" example:"mkv" doc:"Container used when none is requested"`
	EncodeArgs       []string `json:"encodeArgs" doc:"ffmpeg encoder arguments"`
}

type PresetsData struct {
	Presets []PresetData `json:"presets" doc:"Available presets"`
}

type PresetsResponse struct {
	Body PresetsData
}

// Recording models
type RecordingData struct {
	Name    string    `json:"name" example:"capture_ffv1_20250127_103000.mkv" doc:"File name"`
	Size    int64     `json:"size" example:"73400320" doc:"Size in bytes"`
	ModTime time.Time `json:"modTime" doc:"Last modification time"`
}

type RecordingsData struct {
	Recordings []RecordingData `json:"recordings" doc:"Recordings, newest first"`
	Count      int             `json:"count" example:"3" doc:"Number of recordings"`
}

type RecordingsResponse struct {
	Body RecordingsData
}

// Log models
type LogEntryData struct {
	Timestamp  time.Time      `json:"timestamp" doc:"Record time"`
	Level      string         `json:"level" example:"info" doc:"Log level"`
	Module     string         `json:"module" example:"capture" doc:"Emitting module"`
	Message    string         `json:"message" doc:"Log message"`
	Attributes map[string]any `json:"attributes,omitempty" doc:"Structured attributes"`
}

type LogsData struct {
	Entries []LogEntryData `json:"entries" doc:"Log entries, oldest first"`
	Count   int            `json:"count" example:"100" doc:"Number of entries"`
}

type LogsResponse struct {
	Body LogsData
}
