package eval

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	domainChat "github.com/tourassist/backend/internal/domain/chat"
	domainRAG "github.com/tourassist/backend/internal/domain/rag"
	"github.com/tourassist/backend/internal/infrastructure/config"
	"github.com/tourassist/backend/internal/infrastructure/log"
)

// Artifact file names written to the output directory
const (
	SummaryFile     = "summary.json"
	MetricsFile     = "metrics.json"
	CaseResultsFile = "case_results.json"
	DiffFile        = "diff.md"

	noPreviousRun = "No previous run to diff."
)

// Chatter answers a message in a session
type Chatter interface {
	Chat(ctx context.Context, tenantID, sessionID, message string) (*domainChat.Reply, error)
}

// Retriever returns the chunks a question would be grounded on
type Retriever interface {
	Retrieve(ctx context.Context, tenantID, query string) ([]domainRAG.ScoredChunk, error)
}

// CaseResult is the scored outcome of one case
type CaseResult struct {
	ID            string  `json:"id"`
	Response      string  `json:"response"`
	Correctness   float64 `json:"correctness"`
	Grounding     float64 `json:"grounding"`
	RetrievalOK   bool    `json:"retrieval_ok"`
	LatencyMs     float64 `json:"latency_ms"`
	TokensUsed    int     `json:"tokens_used"`
	EstimatedCost float64 `json:"estimated_cost"`
	SafetyOK      bool    `json:"safety_ok"`
	Error         string  `json:"error,omitempty"`
}

// Metrics aggregates a run
type Metrics struct {
	AvgCorrectness   float64 `json:"avg_correctness"`
	Grounding        float64 `json:"grounding"`
	RetrievalPass    float64 `json:"retrieval_pass"`
	SafetyViolations int     `json:"safety_violations"`
	P95LatencyMs     float64 `json:"p95_latency_ms"`
	MeanCost         float64 `json:"mean_cost"`
}

// Summary is written to summary.json and returned by Run
type Summary struct {
	TenantID  string  `json:"tenant_id"`
	CaseCount int     `json:"case_count"`
	Metrics   Metrics `json:"metrics"`
}

// Harness replays cases through the chat orchestrator
type Harness struct {
	chat      Chatter
	retriever Retriever
	timeout   time.Duration
	logger    *slog.Logger
}

// NewHarness creates an eval harness; each case is bounded by cfg.Timeout
func NewHarness(chat Chatter, retriever Retriever, cfg *config.EvalConfig) *Harness {
	return &Harness{
		chat:      chat,
		retriever: retriever,
		timeout:   cfg.Timeout,
		logger:    log.NewModuleLogger("eval", "harness"),
	}
}

// Run scores every case for tenantID and writes the artifacts to outputDir
func (h *Harness) Run(ctx context.Context, tenantID string, cases []Case, outputDir string) (*Summary, error) {
	results := make([]CaseResult, 0, len(cases))
	for _, c := range cases {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		results = append(results, h.runCase(ctx, tenantID, c))
	}

	summary := &Summary{
		TenantID:  tenantID,
		CaseCount: len(cases),
		Metrics:   Aggregate(results),
	}

	if err := writeArtifacts(outputDir, summary, results); err != nil {
		return nil, err
	}

	h.logger.Info("Eval run finished",
		"tenant_id", tenantID,
		"cases", summary.CaseCount,
		"avg_correctness", summary.Metrics.AvgCorrectness,
		"safety_violations", summary.Metrics.SafetyViolations,
		"output", outputDir,
	)
	return summary, nil
}

func (h *Harness) runCase(ctx context.Context, tenantID string, c Case) CaseResult {
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	result := CaseResult{ID: c.ID}

	start := time.Now()
	reply, err := h.chat.Chat(ctx, tenantID, "eval-"+c.ID, c.Question)
	result.LatencyMs = float64(time.Since(start).Microseconds()) / 1000
	if err != nil {
		h.logger.Warn("Eval case failed", "case_id", c.ID, "error", err)
		result.Error = err.Error()
	} else {
		result.Response = reply.Response
		result.TokensUsed = reply.TokensUsed
		result.EstimatedCost = reply.EstimatedCost
	}

	var sources []string
	retrieved, err := h.retriever.Retrieve(ctx, tenantID, c.Question)
	if err != nil {
		h.logger.Warn("Eval retrieval failed", "case_id", c.ID, "error", err)
	}
	for _, item := range retrieved {
		sources = append(sources, item.Source)
	}

	result.Correctness = ScoreCorrectness(result.Response, c.ExpectedFacts)
	result.Grounding = ScoreGrounding(result.Response, sources, c.AllowedSources)
	result.RetrievalOK = RetrievalOK(sources, c.AllowedSources)
	result.SafetyOK = CheckSafety(result.Response, c.Safety)
	return result
}

// Aggregate computes run metrics from case results
func Aggregate(results []CaseResult) Metrics {
	var (
		correctness = make([]float64, 0, len(results))
		grounding   = make([]float64, 0, len(results))
		retrieval   = make([]float64, 0, len(results))
		costs       = make([]float64, 0, len(results))
		latencies   = make([]float64, 0, len(results))
		violations  int
	)
	for _, r := range results {
		correctness = append(correctness, r.Correctness)
		grounding = append(grounding, r.Grounding)
		if r.RetrievalOK {
			retrieval = append(retrieval, 1)
		} else {
			retrieval = append(retrieval, 0)
		}
		costs = append(costs, r.EstimatedCost)
		latencies = append(latencies, r.LatencyMs)
		if !r.SafetyOK {
			violations++
		}
	}

	return Metrics{
		AvgCorrectness:   mean(correctness),
		Grounding:        mean(grounding),
		RetrievalPass:    mean(retrieval),
		SafetyViolations: violations,
		P95LatencyMs:     P95(latencies),
		MeanCost:         mean(costs),
	}
}

func writeArtifacts(outputDir string, summary *Summary, results []CaseResult) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	// read before metrics.json is overwritten
	previous, err := readPreviousMetrics(filepath.Join(outputDir, MetricsFile))
	if err != nil {
		return err
	}

	if err := writeJSON(filepath.Join(outputDir, SummaryFile), summary); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(outputDir, MetricsFile), summary.Metrics); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(outputDir, CaseResultsFile), results); err != nil {
		return err
	}

	diff := noPreviousRun
	if previous != nil {
		diff = RenderDiff(*previous, summary.Metrics)
	}
	if err := os.WriteFile(filepath.Join(outputDir, DiffFile), []byte(diff), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", DiffFile, err)
	}
	return nil
}

// readPreviousMetrics returns nil, nil when no earlier run exists
func readPreviousMetrics(path string) (*Metrics, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read previous metrics: %w", err)
	}

	var m Metrics
	if err := json.Unmarshal(data, &m); err != nil {
		// an unreadable snapshot is replaced by this run
		return nil, nil
	}
	return &m, nil
}

// RenderDiff formats previous and current metrics as a markdown table
func RenderDiff(previous, current Metrics) string {
	rows := []struct {
		name      string
		prev, cur float64
	}{
		{"avg_correctness", previous.AvgCorrectness, current.AvgCorrectness},
		{"grounding", previous.Grounding, current.Grounding},
		{"retrieval_pass", previous.RetrievalPass, current.RetrievalPass},
		{"safety_violations", float64(previous.SafetyViolations), float64(current.SafetyViolations)},
		{"p95_latency_ms", previous.P95LatencyMs, current.P95LatencyMs},
		{"mean_cost", previous.MeanCost, current.MeanCost},
	}

	var b strings.Builder
	b.WriteString("| Metric | Previous | Current | Delta |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "| %s | %.6g | %.6g | %+.6g |\n", r.name, r.prev, r.cur, r.cur-r.prev)
	}
	return b.String()
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}
