package metrics

import (
	"regexp"
	"strconv"
	"strings"
	"sync"
)

// Progress is one parsed ffmpeg status line.
type Progress struct {
	Frame           int64   `json:"frame" example:"1200" doc:"Frames encoded so far"`
	FPS             float64 `json:"fps" example:"29.97" doc:"Current encoding frame rate"`
	Speed           float64 `json:"speed" example:"1.0" doc:"Encoding speed multiplier"`
	DroppedFrames   int64   `json:"droppedFrames" example:"0" doc:"Frames dropped"`
	DuplicateFrames int64   `json:"duplicateFrames" example:"0" doc:"Frames duplicated"`
	Time            string  `json:"time" example:"00:00:40.04" doc:"Media time written"`
	Size            string  `json:"size" example:"20480kB" doc:"Output size written"`
}

// ffmpeg pads values after '=' with spaces, e.g. "fps= 30".
var progressPair = regexp.MustCompile(`([a-z_]+)=\s*(\S+)`)

// ParseProgress parses a status line such as
// "frame=  120 fps= 30 q=-0.0 size=   20480kB time=00:00:04.00 bitrate=N/A dup=0 drop=2 speed=1.00x".
// Lines without both frame and fps fields are not progress lines.
func ParseProgress(line string) (Progress, bool) {
	if !strings.Contains(line, "frame=") || !strings.Contains(line, "fps=") {
		return Progress{}, false
	}

	var p Progress
	for _, m := range progressPair.FindAllStringSubmatch(line, -1) {
		key, val := m[1], m[2]
		switch key {
		case "frame":
			p.Frame, _ = strconv.ParseInt(val, 10, 64)
		case "fps":
			p.FPS, _ = strconv.ParseFloat(val, 64)
		case "speed":
			p.Speed, _ = strconv.ParseFloat(strings.TrimSuffix(val, "x"), 64)
		case "drop":
			p.DroppedFrames, _ = strconv.ParseInt(val, 10, 64)
		case "dup":
			p.DuplicateFrames, _ = strconv.ParseInt(val, 10, 64)
		case "time":
			p.Time = val
		case "size", "Lsize":
			p.Size = val
		}
	}
	return p, true
}

// ProgressRecorder keeps the latest progress of one capture job and mirrors
// it into the Prometheus gauges.
type ProgressRecorder struct {
	mu   sync.Mutex
	last Progress
	seen bool
}

// NewProgressRecorder creates a recorder and zeroes the progress gauges.
func NewProgressRecorder() *ProgressRecorder {
	ResetProgress()
	return &ProgressRecorder{}
}

// HandleLine consumes one diagnostic line.
func (r *ProgressRecorder) HandleLine(line string) {
	p, ok := ParseProgress(line)
	if !ok {
		return
	}
	r.mu.Lock()
	r.last = p
	r.seen = true
	r.mu.Unlock()
	setProgress(p)
}

// Last returns the most recent progress, if any line was parsed yet.
func (r *ProgressRecorder) Last() (Progress, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last, r.seen
}
