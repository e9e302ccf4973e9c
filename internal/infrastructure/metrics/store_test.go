package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Empty(t *testing.T) {
	s := NewStore(10)
	assert.Equal(t, 0.0, s.LatencyP50())
	assert.Equal(t, 0.0, s.LatencyP95())
}

func TestStore_Percentiles(t *testing.T) {
	s := NewStore(DefaultWindow)
	for _, v := range []float64{50, 10, 40, 20, 30} {
		s.RecordLatency(v)
	}
	assert.Equal(t, 30.0, s.LatencyP50())
	// round(0.95*4) = 4
	assert.Equal(t, 50.0, s.LatencyP95())

	s.RecordLatency(60)
	assert.Equal(t, 35.0, s.LatencyP50())
}

func TestStore_WindowEvictsOldest(t *testing.T) {
	s := NewStore(3)
	for _, v := range []float64{1000, 1, 2, 3} {
		s.RecordLatency(v)
	}
	assert.Equal(t, 2.0, s.LatencyP50())
	assert.Equal(t, 3.0, s.LatencyP95())
}

func TestStore_SamplesCapsAtWindow(t *testing.T) {
	s := NewStore(3)
	assert.Equal(t, 0, s.Samples())
	s.RecordLatency(1)
	s.RecordLatency(2)
	assert.Equal(t, 2, s.Samples())
	s.RecordLatency(3)
	s.RecordLatency(4)
	assert.Equal(t, 3, s.Samples())
}

func TestPercentile_RoundsHalfToEven(t *testing.T) {
	values := make([]float64, 11)
	for i := range values {
		values[i] = float64(i)
	}
	// 0.95*10 = 9.5 rounds to 10
	assert.Equal(t, 10.0, Percentile(values, 95))

	values = make([]float64, 31)
	for i := range values {
		values[i] = float64(i)
	}
	// 0.95*30 = 28.5 rounds to 28
	assert.Equal(t, 28.0, Percentile(values, 95))
}

func TestStore_PrometheusHandler(t *testing.T) {
	s := NewStore(10)
	s.RecordLatency(120)
	s.RecordTokens(42)
	s.RecordCost(0.000021)
	s.RecordPath(PathGrounded)
	s.RecordPath(PathTool)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics/prometheus", nil))
	require.Equal(t, 200, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	text := string(body)
	assert.Contains(t, text, "tourassist_chat_latency_seconds_count 1")
	assert.Contains(t, text, "tourassist_chat_tokens_total 42")
	assert.Contains(t, text, `tourassist_chat_path_total{path="grounded"} 1`)
	assert.Contains(t, text, "go_goroutines")
}
