package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	framesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sendit",
			Subsystem: "frame",
			Name:      "frames_total",
			Help:      "Frames moved through the codec.",
		},
		[]string{"node", "direction"},
	)
	segmentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sendit",
			Subsystem: "frame",
			Name:      "segments_total",
			Help:      "Segments carried by frames.",
		},
		[]string{"node", "direction"},
	)
	frameBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sendit",
			Subsystem: "frame",
			Name:      "total_size_bytes",
			Help:      "Frame total_size in bytes.",
			Buckets:   prometheus.ExponentialBuckets(16, 4, 10),
		},
		[]string{"node", "direction"},
	)
	frameErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sendit",
			Subsystem: "frame",
			Name:      "errors_total",
			Help:      "Frames that failed to decode (in) or send (out).",
		},
		[]string{"node", "direction"},
	)
	activeConns = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "sendit",
			Subsystem: "server",
			Name:      "active_connections",
			Help:      "Connections currently running a decode loop.",
		},
		[]string{"node"},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sendit",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total ops HTTP requests.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sendit",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Ops HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
)

const (
	DirectionIn  = "in"
	DirectionOut = "out"
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(framesTotal, segmentsTotal, frameBytes, frameErrors, activeConns, httpRequests, httpDuration)
	})
}

// RecordFrame counts one frame that crossed the wire in direction.
func RecordFrame(node, direction string, segments int, totalSize uint64) {
	RegisterMetrics()
	framesTotal.WithLabelValues(node, direction).Inc()
	segmentsTotal.WithLabelValues(node, direction).Add(float64(segments))
	frameBytes.WithLabelValues(node, direction).Observe(float64(totalSize))
}

func RecordFrameError(node, direction string) {
	RegisterMetrics()
	frameErrors.WithLabelValues(node, direction).Inc()
}

func ConnOpened(node string) {
	RegisterMetrics()
	activeConns.WithLabelValues(node).Inc()
}

func ConnClosed(node string) {
	RegisterMetrics()
	activeConns.WithLabelValues(node).Dec()
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}
