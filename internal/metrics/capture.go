// Package metrics provides Prometheus metrics for capture jobs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "vhsnode"

var (
	captureRunning = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "capture",
		Name:      "running",
		Help:      "1 while a capture process is alive",
	})

	captureJobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "capture",
		Name:      "jobs_total",
		Help:      "Finished capture jobs by preset and outcome",
	}, []string{"preset", "outcome"})

	captureDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "capture",
		Name:      "duration_seconds",
		Help:      "Wall clock duration of finished capture jobs",
		Buckets:   []float64{10, 60, 300, 900, 1800, 3600, 7200, 14400},
	}, []string{"preset"})

	captureRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "capture",
		Name:      "rejections_total",
		Help:      "Refused start requests by error code",
	}, []string{"reason"})

	captureFPS = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "capture",
		Name:      "fps",
		Help:      "Encoder frames per second of the active capture",
	})

	captureSpeed = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "capture",
		Name:      "speed",
		Help:      "Encoder speed multiplier of the active capture",
	})

	captureDroppedFrames = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "capture",
		Name:      "dropped_frames",
		Help:      "Frames dropped by the active capture",
	})

	tailDroppedBytes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "capture",
		Name:      "tail_dropped_bytes_total",
		Help:      "Diagnostic output bytes discarded because the log sink fell behind",
	})
)

// SetCaptureRunning flips the running gauge.
func SetCaptureRunning(running bool) {
	if running {
		captureRunning.Set(1)
		return
	}
	captureRunning.Set(0)
}

// ObserveJob records a finished job.
func ObserveJob(preset, outcome string, elapsed time.Duration) {
	captureJobs.WithLabelValues(preset, outcome).Inc()
	captureDuration.WithLabelValues(preset).Observe(elapsed.Seconds())
}

// IncRejection counts a refused start request.
func IncRejection(reason string) {
	captureRejections.WithLabelValues(reason).Inc()
}

// AddTailDroppedBytes counts bytes the log sink discarded.
func AddTailDroppedBytes(n int) {
	tailDroppedBytes.Add(float64(n))
}

// ResetProgress zeroes the per-job progress gauges.
func ResetProgress() {
	captureFPS.Set(0)
	captureSpeed.Set(0)
	captureDroppedFrames.Set(0)
}

func setProgress(p Progress) {
	captureFPS.Set(p.FPS)
	captureSpeed.Set(p.Speed)
	captureDroppedFrames.Set(float64(p.DroppedFrames))
}

// Handler returns the Prometheus metrics HTTP handler.
// This collects all promauto-registered metrics automatically.
func Handler() http.Handler {
	return promhttp.Handler()
}
