package llm

import (
	"math"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

// encoding files ship with the binary
func init() {
	tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
}

// CostPerToken is the flat price used for cost estimates
const CostPerToken = 0.0000005

// TokenCounter counts cl100k_base tokens
type TokenCounter struct {
	encoding *tiktoken.Tiktoken
	mu       sync.RWMutex
}

var (
	counterInstance *TokenCounter
	counterOnce     sync.Once
	counterErr      error
)

// GetTokenCounter returns the shared counter, loading the encoding once
func GetTokenCounter() (*TokenCounter, error) {
	counterOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			counterErr = err
			return
		}
		counterInstance = &TokenCounter{encoding: enc}
	})

	if counterErr != nil {
		return nil, counterErr
	}
	return counterInstance, nil
}

// CountTokens returns the number of tokens in text
func (c *TokenCounter) CountTokens(text string) int {
	if text == "" {
		return 0
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.encoding.Encode(text, nil, nil))
}

// EstimateTokens is the word-based estimate: max(1, int(words*1.3))
func EstimateTokens(text string) int {
	n := int(float64(len(strings.Fields(text))) * 1.3)
	if n < 1 {
		return 1
	}
	return n
}

// EstimateCost prices tokens, rounded to 6 decimal places
func EstimateCost(tokens int) float64 {
	return math.Round(float64(tokens)*CostPerToken*1e6) / 1e6
}
