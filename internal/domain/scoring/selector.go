package scoring

import (
	"time"

	"github.com/aromabalance/balance/internal/domain/model"
)

// Option applies a configuration option to the Selector.
type Option func(*Selector)

// WithClock overrides the time source used for the freshness bonus.
func WithClock(now func() time.Time) Option {
	return func(s *Selector) {
		if now != nil {
			s.now = now
		}
	}
}

// Selector picks the best video for a recipe. It holds no mutable state and
// is safe for concurrent use.
type Selector struct {
	now func() time.Time
}

// NewSelector creates a selector with configuration options.
func NewSelector(opts ...Option) *Selector {
	s := &Selector{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Select scores all candidates and returns the first maximal one.
func (s *Selector) Select(candidates []model.VideoCandidate, r model.RecipeQuery) (model.ScoredCandidate, error) {
	if len(candidates) == 0 {
		return model.ScoredCandidate{}, ErrNoCandidates
	}
	return Rank(candidates, r, s.now())[0], nil
}

// Rank is like the package-level Rank but uses the selector's clock.
func (s *Selector) Rank(candidates []model.VideoCandidate, r model.RecipeQuery) []model.ScoredCandidate {
	return Rank(candidates, r, s.now())
}
