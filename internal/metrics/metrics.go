// Package metrics records backend call counts and latency for the client.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder is what the API client reports to. A nil Recorder is valid.
type Recorder interface {
	RecordRequest(op string, status int, d time.Duration)
	RecordValidationFailure(entity string)
}

// Collector is the prometheus-backed Recorder.
type Collector struct {
	requests   *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	validation *prometheus.CounterVec
}

// NewCollector registers the client metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coachline_api_requests_total",
			Help: "Backend API calls by operation and HTTP status (0 for transport failures).",
		}, []string{"op", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "coachline_api_request_duration_seconds",
			Help:    "Backend API call latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
		validation: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coachline_payload_validation_failures_total",
			Help: "Payloads rejected by the entity codec.",
		}, []string{"entity"}),
	}
	reg.MustRegister(c.requests, c.latency, c.validation)
	return c
}

func (c *Collector) RecordRequest(op string, status int, d time.Duration) {
	c.requests.WithLabelValues(op, strconv.Itoa(status)).Inc()
	c.latency.WithLabelValues(op).Observe(d.Seconds())
}

func (c *Collector) RecordValidationFailure(entity string) {
	c.validation.WithLabelValues(entity).Inc()
}

// WriteTextfile dumps the registry in the node-exporter textfile format.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
