package mocks

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gripp-game/gripp-api/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing
type MockRandom struct {
	mu sync.Mutex

	// IntnResults is a queue of results to return from Intn
	IntnResults []int
	intnIndex   int

	// ShuffleSwaps is the list of (i, j) pairs applied on every Shuffle call
	ShuffleSwaps [][2]int
	shuffled     int

	// TokenResults is a queue of results to return from Token
	TokenResults []string
	tokenIndex   int
	tokenCounter int
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Intn returns the next queued result, or 0 if none remaining
func (r *MockRandom) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.intnIndex >= len(r.IntnResults) {
		return 0
	}
	result := r.IntnResults[r.intnIndex]
	r.intnIndex++
	return result
}

// Shuffle applies the queued swaps, leaving the order untouched if none are queued
func (r *MockRandom) Shuffle(n int, swap func(i, j int)) {
	r.mu.Lock()
	swaps := r.ShuffleSwaps
	r.shuffled++
	r.mu.Unlock()

	for _, s := range swaps {
		if s[0] < n && s[1] < n {
			swap(s[0], s[1])
		}
	}
}

// ShuffleCalls returns how many times Shuffle was called
func (r *MockRandom) ShuffleCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.shuffled
}

// Token returns the next queued token, or a unique counter-based token of the right length
func (r *MockRandom) Token(nBytes int) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tokenIndex < len(r.TokenResults) {
		result := r.TokenResults[r.tokenIndex]
		r.tokenIndex++
		return result, nil
	}
	r.tokenCounter++
	suffix := fmt.Sprintf("%x", r.tokenCounter)
	return strings.Repeat("0", nBytes*2-len(suffix)) + suffix, nil
}

// QueueIntn adds values to the Intn result queue
func (r *MockRandom) QueueIntn(values ...int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.IntnResults = append(r.IntnResults, values...)
}

// QueueSwaps adds (i, j) pairs to the Shuffle swap list
func (r *MockRandom) QueueSwaps(pairs ...[2]int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ShuffleSwaps = append(r.ShuffleSwaps, pairs...)
}

// QueueToken adds values to the Token result queue
func (r *MockRandom) QueueToken(values ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.TokenResults = append(r.TokenResults, values...)
}

// Reset clears all queued results
func (r *MockRandom) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.IntnResults = nil
	r.intnIndex = 0
	r.ShuffleSwaps = nil
	r.shuffled = 0
	r.TokenResults = nil
	r.tokenIndex = 0
}
