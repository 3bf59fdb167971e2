package http

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	modeNewResource      = "new"
	modeExistingResource = "existing"
)

// UploadMetrics 업로드 요청 지표
// 경로 파라미터는 클라이언트가 임의로 정하므로 라벨로 쓰지 않습니다.
type UploadMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewUploadMetrics 지표를 생성하고 registerer에 등록합니다
func NewUploadMetrics(registerer prometheus.Registerer) *UploadMetrics {
	m := &UploadMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "upload",
			Name:      "requests_total",
			Help:      "File upload requests by mode and response status.",
		}, []string{"mode", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "upload",
			Name:      "request_duration_seconds",
			Help:      "File upload request latency including streaming and persistence.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"mode"}),
	}
	if registerer != nil {
		registerer.MustRegister(m.requests, m.duration)
	}
	return m
}

func (m *UploadMetrics) observe(mode string, status int, started time.Time) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(mode, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(mode).Observe(time.Since(started).Seconds())
}
