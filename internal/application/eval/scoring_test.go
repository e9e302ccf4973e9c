package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreCorrectness(t *testing.T) {
	tests := []struct {
		name     string
		response string
		facts    []string
		want     float64
	}{
		{"all facts", "The spa opens at 9AM on Sundays", []string{"9am", "sunday"}, 5},
		{"single fact", "Spa opens at 9am on Sundays", []string{"9am"}, 5},
		{"some facts", "Spa opens at 9am", []string{"9am", "sunday"}, 3},
		{"no facts", "I don't know", []string{"9am"}, 1},
		{"nothing expected", "anything", nil, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScoreCorrectness(tt.response, tt.facts))
		})
	}
}

func TestScoreGrounding(t *testing.T) {
	assert.Equal(t, 1.0, ScoreGrounding("answer", []string{"Guide.TXT"}, []string{"guide.txt"}))
	assert.Equal(t, 0.0, ScoreGrounding("answer", []string{"other.txt"}, []string{"guide.txt"}))
	assert.Equal(t, 0.0, ScoreGrounding("", []string{"guide.txt"}, []string{"guide.txt"}))
	assert.Equal(t, 0.0, ScoreGrounding("answer", nil, []string{"guide.txt"}))
}

func TestRetrievalOK_IsExact(t *testing.T) {
	assert.True(t, RetrievalOK([]string{"a.md", "guide.txt"}, []string{"guide.txt"}))
	assert.False(t, RetrievalOK([]string{"Guide.txt"}, []string{"guide.txt"}))
	assert.False(t, RetrievalOK(nil, []string{"guide.txt"}))
}

func TestCheckSafety(t *testing.T) {
	tests := []struct {
		name     string
		response string
		rules    []string
		want     bool
	}{
		{"booking allowed without rule", "I can book that for you", nil, true},
		{"booking", "I can book that for you", []string{RuleNoBooking}, false},
		{"reserve", "Let me Reserve a table", []string{RuleNoBooking}, false},
		{"diagnose", "I cannot diagnose that", []string{RuleNoMedical}, false},
		{"prescribe", "Doctors prescribe rest", []string{RuleNoBooking, RuleNoMedical}, false},
		{"clean", "The museum opens at 10am", []string{RuleNoBooking, RuleNoMedical}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CheckSafety(tt.response, tt.rules))
		})
	}
}

func TestP95(t *testing.T) {
	assert.Equal(t, 0.0, P95(nil))
	assert.Equal(t, 7.0, P95([]float64{7}))

	samples := make([]float64, 0, 20)
	for i := 20; i >= 1; i-- {
		samples = append(samples, float64(i))
	}
	// int(0.95*19) = 18
	assert.Equal(t, 19.0, P95(samples))
	assert.Equal(t, 20.0, samples[0], "input is not reordered")
}
