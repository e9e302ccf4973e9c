// Package metrics keeps rolling chat statistics and exports them to Prometheus
package metrics

import (
	"math"
	"net/http"
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultWindow is the number of samples kept per series
const DefaultWindow = 1000

// Chat paths recorded by RecordPath
const (
	PathTool          = "tool"
	PathLowConfidence = "low_confidence"
	PathGrounded      = "grounded"
	// PathError is a chat that failed before answering
	PathError = "error"
)

// window is a fixed-size ring of samples
type window struct {
	samples []float64
	next    int
	full    bool
}

func newWindow(size int) *window {
	return &window{samples: make([]float64, size)}
}

func (w *window) add(v float64) {
	w.samples[w.next] = v
	w.next = (w.next + 1) % len(w.samples)
	if w.next == 0 {
		w.full = true
	}
}

func (w *window) sorted() []float64 {
	n := w.next
	if w.full {
		n = len(w.samples)
	}
	out := make([]float64, n)
	copy(out, w.samples[:n])
	sort.Float64s(out)
	return out
}

// Store holds rolling windows of latency, tokens and cost. Every sample also
// feeds the Prometheus collectors on the store's private registry.
type Store struct {
	mu        sync.Mutex
	latencies *window
	tokens    *window
	costs     *window

	registry       *prometheus.Registry
	latencySeconds prometheus.Histogram
	tokensTotal    prometheus.Counter
	costTotal      prometheus.Counter
	pathTotal      *prometheus.CounterVec
}

// NewStore creates a store keeping size samples per series
func NewStore(size int) *Store {
	if size <= 0 {
		size = DefaultWindow
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Store{
		latencies: newWindow(size),
		tokens:    newWindow(size),
		costs:     newWindow(size),
		registry:  reg,
		latencySeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "tourassist_chat_latency_seconds",
			Help:    "Chat request latency in seconds",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		tokensTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "tourassist_chat_tokens_total",
			Help: "Total LLM tokens used by chat requests",
		}),
		costTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "tourassist_chat_cost_total",
			Help: "Total estimated LLM cost of chat requests",
		}),
		pathTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tourassist_chat_path_total",
			Help: "Chat requests by answer path",
		}, []string{"path"}),
	}
}

// ProvideStore creates the process-wide store
func ProvideStore() *Store {
	return NewStore(DefaultWindow)
}

// RecordLatency adds a latency sample in milliseconds
func (s *Store) RecordLatency(ms float64) {
	s.mu.Lock()
	s.latencies.add(ms)
	s.mu.Unlock()
	s.latencySeconds.Observe(ms / 1000)
}

// RecordTokens adds a token count sample
func (s *Store) RecordTokens(tokens int) {
	s.mu.Lock()
	s.tokens.add(float64(tokens))
	s.mu.Unlock()
	s.tokensTotal.Add(float64(tokens))
}

// RecordCost adds a cost sample
func (s *Store) RecordCost(cost float64) {
	s.mu.Lock()
	s.costs.add(cost)
	s.mu.Unlock()
	s.costTotal.Add(cost)
}

// RecordPath counts a chat answered by path
func (s *Store) RecordPath(path string) {
	s.pathTotal.WithLabelValues(path).Inc()
}

// Samples returns the number of latency samples in the window
func (s *Store) Samples() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latencies.full {
		return len(s.latencies.samples)
	}
	return s.latencies.next
}

// LatencyP50 is the median latency, 0 without samples
func (s *Store) LatencyP50() float64 {
	s.mu.Lock()
	values := s.latencies.sorted()
	s.mu.Unlock()
	return Median(values)
}

// LatencyP95 is sorted[round(0.95*(n-1))], 0 without samples
func (s *Store) LatencyP95() float64 {
	s.mu.Lock()
	values := s.latencies.sorted()
	s.mu.Unlock()
	return Percentile(values, 95)
}

// Handler serves the private registry in Prometheus exposition format
func (s *Store) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry})
}

// Median of ascending values; the mean of the middle pair for even counts
func Median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// Percentile picks the nearest-rank sample at round-half-even(pct/100*(n-1))
func Percentile(sorted []float64, pct float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.RoundToEven(pct / 100 * float64(len(sorted)-1)))
	return sorted[idx]
}
