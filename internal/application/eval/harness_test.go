package eval

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainChat "github.com/tourassist/backend/internal/domain/chat"
	domainRAG "github.com/tourassist/backend/internal/domain/rag"
	"github.com/tourassist/backend/internal/infrastructure/config"
)

// stubChatter answers from a fixed table keyed by question
type stubChatter struct {
	replies  map[string]string
	sessions []string
}

func (s *stubChatter) Chat(_ context.Context, _, sessionID, message string) (*domainChat.Reply, error) {
	s.sessions = append(s.sessions, sessionID)
	reply, ok := s.replies[message]
	if !ok {
		return nil, errors.New("provider exploded")
	}
	return &domainChat.Reply{Response: reply, TokensUsed: 10, EstimatedCost: 0.000005}, nil
}

type stubRetriever struct {
	sources []string
}

func (s *stubRetriever) Retrieve(context.Context, string, string) ([]domainRAG.ScoredChunk, error) {
	out := make([]domainRAG.ScoredChunk, len(s.sources))
	for i, src := range s.sources {
		out[i] = domainRAG.ScoredChunk{Source: src, Score: 0.9}
	}
	return out, nil
}

func TestHarness_Run(t *testing.T) {
	chat := &stubChatter{replies: map[string]string{
		"When does the spa open?": "Spa opens at 9am on Sundays",
		"Can you book me a room?": "Sure, I will book it",
	}}
	h := NewHarness(chat, &stubRetriever{sources: []string{"guide.txt"}}, &config.EvalConfig{Timeout: time.Second})

	cases := []Case{
		{ID: "spa", Question: "When does the spa open?", ExpectedFacts: []string{"9am"}, AllowedSources: []string{"guide.txt"}},
		{ID: "booking", Question: "Can you book me a room?", ExpectedFacts: []string{"cannot"}, AllowedSources: []string{"other.txt"}, Safety: []string{RuleNoBooking}},
		{ID: "broken", Question: "unanswerable", ExpectedFacts: []string{"x"}, AllowedSources: []string{"guide.txt"}},
	}

	out := t.TempDir()
	summary, err := h.Run(context.Background(), "t1", cases, out)
	require.NoError(t, err)

	assert.Equal(t, "t1", summary.TenantID)
	assert.Equal(t, 3, summary.CaseCount)
	assert.Equal(t, []string{"eval-spa", "eval-booking", "eval-broken"}, chat.sessions)

	m := summary.Metrics
	assert.InDelta(t, (5.0+1.0+1.0)/3, m.AvgCorrectness, 1e-9)
	assert.InDelta(t, 1.0/3, m.Grounding, 1e-9, "the failed case has an empty response")
	assert.InDelta(t, 2.0/3, m.RetrievalPass, 1e-9)
	assert.Equal(t, 1, m.SafetyViolations)
	assert.InDelta(t, 0.000005*2/3, m.MeanCost, 1e-12)

	var results []CaseResult
	data, err := os.ReadFile(filepath.Join(out, CaseResultsFile))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &results))
	require.Len(t, results, 3)
	assert.Equal(t, 5.0, results[0].Correctness)
	assert.False(t, results[1].SafetyOK)
	assert.Equal(t, "provider exploded", results[2].Error)

	var onDisk Summary
	data, err = os.ReadFile(filepath.Join(out, SummaryFile))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &onDisk))
	assert.Equal(t, *summary, onDisk)

	diff, err := os.ReadFile(filepath.Join(out, DiffFile))
	require.NoError(t, err)
	assert.Equal(t, noPreviousRun, string(diff))
}

func TestHarness_DiffAgainstPreviousRun(t *testing.T) {
	chat := &stubChatter{replies: map[string]string{"q": "9am"}}
	h := NewHarness(chat, &stubRetriever{}, &config.EvalConfig{})
	out := t.TempDir()

	_, err := h.Run(context.Background(), "t1", []Case{{ID: "a", Question: "q", ExpectedFacts: []string{"10am"}}}, out)
	require.NoError(t, err)
	_, err = h.Run(context.Background(), "t1", []Case{{ID: "a", Question: "q", ExpectedFacts: []string{"9am"}}}, out)
	require.NoError(t, err)

	diff, err := os.ReadFile(filepath.Join(out, DiffFile))
	require.NoError(t, err)
	assert.Contains(t, string(diff), "| Metric | Previous | Current | Delta |")
	assert.Contains(t, string(diff), "| avg_correctness | 1 | 5 | +4 |")
}

func TestHarness_NoCases(t *testing.T) {
	h := NewHarness(&stubChatter{}, &stubRetriever{}, &config.EvalConfig{})
	summary, err := h.Run(context.Background(), "t1", nil, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Metrics{}, summary.Metrics)
}
