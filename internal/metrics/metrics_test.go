package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorRecordsRequests(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRequest("fetch_agreements", 200, 10*time.Millisecond)
	c.RecordRequest("fetch_agreements", 200, 20*time.Millisecond)
	c.RecordRequest("fetch_agreements", 401, 5*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.requests.WithLabelValues("fetch_agreements", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.requests.WithLabelValues("fetch_agreements", "401")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.latency))
}

func TestCollectorRecordsValidationFailures(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordValidationFailure("Agreement")
	assert.Equal(t, 1.0, testutil.ToFloat64(c.validation.WithLabelValues("Agreement")))
}

func TestWriteTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordRequest("login", 200, time.Millisecond)

	path := filepath.Join(t.TempDir(), "coachline.prom")
	require.NoError(t, WriteTextfile(path, reg))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `coachline_api_requests_total{op="login",status="200"} 1`)
}
