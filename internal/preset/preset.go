// Package preset maps capture presets and user-chosen devices to a concrete
// ffmpeg invocation and output location.
package preset

import "slices"

// Preset identifies a fixed combination of codec and container choices.
type Preset string

// Known presets.
const (
	ArchivalLossless      Preset = "archival_lossless"
	HighQualityH264       Preset = "high_quality_h264"
	PassthroughIfPossible Preset = "passthrough_if_possible"
)

// Template describes how a preset is encoded.
type Template struct {
	ID    Preset `json:"id"`
	Label string `json:"label"`

	// Tag is embedded in output filenames.
	Tag              string   `json:"tag"`
	Containers       []string `json:"containers"`
	DefaultContainer string   `json:"defaultContainer"`
	EncodeArgs       []string `json:"encodeArgs"`
}

var templates = []Template{
	{
		ID:               ArchivalLossless,
		Label:            "Archival (FFV1 + FLAC)",
		Tag:              "ffv1",
		Containers:       []string{"mkv"},
		DefaultContainer: "mkv",
		EncodeArgs: []string{
			"-c:v", "ffv1", "-level", "3", "-g", "1", "-slicecrc", "1",
			"-c:a", "flac",
		},
	},
	{
		ID:               HighQualityH264,
		Label:            "High quality H.264 + AAC",
		Tag:              "h264",
		Containers:       []string{"mkv", "mp4"},
		DefaultContainer: "mkv",
		EncodeArgs: []string{
			"-c:v", "libx264", "-preset", "veryfast", "-crf", "18", "-pix_fmt", "yuv420p",
			"-c:a", "aac", "-b:a", "192k",
		},
	},
	{
		// Stream copy is best effort: incompatible sources fail inside ffmpeg
		// and surface as a failed job.
		ID:               PassthroughIfPossible,
		Label:            "Passthrough if possible",
		Tag:              "copy",
		Containers:       []string{"mkv", "mp4"},
		DefaultContainer: "mkv",
		EncodeArgs:       []string{"-c:v", "copy", "-c:a", "copy"},
	},
}

// Lookup returns the template for a preset identifier.
func Lookup(id Preset) (Template, bool) {
	for _, t := range templates {
		if t.ID == id {
			return cloneTemplate(t), true
		}
	}
	return Template{}, false
}

// All returns every known template in display order.
func All() []Template {
	out := make([]Template, len(templates))
	for i, t := range templates {
		out[i] = cloneTemplate(t)
	}
	return out
}

// Allows reports whether the preset can be written into the container.
func (t Template) Allows(container string) bool {
	return slices.Contains(t.Containers, container)
}

func cloneTemplate(t Template) Template {
	t.Containers = slices.Clone(t.Containers)
	t.EncodeArgs = slices.Clone(t.EncodeArgs)
	return t
}
