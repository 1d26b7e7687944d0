package service

import (
	"math/rand"
	"sync"

	"autopost/internal/models"
)

// TypeSelector draws a content type according to the configured A/B/C
// weights. Safe for concurrent use.
type TypeSelector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewTypeSelector(seed int64) *TypeSelector {
	return &TypeSelector{rng: rand.New(rand.NewSource(seed))}
}

// Select draws one content type. Negative weights count as zero; when all
// weights are zero the draw is uniform across the three types.
func (s *TypeSelector) Select(r models.TypeRatios) models.ContentType {
	a, b, c := clampWeight(r.A), clampWeight(r.B), clampWeight(r.C)
	total := a + b + c
	if total == 0 {
		a, b, c = 1, 1, 1
		total = 3
	}

	s.mu.Lock()
	n := s.rng.Intn(total)
	s.mu.Unlock()

	switch {
	case n < a:
		return models.ContentTypeA
	case n < a+b:
		return models.ContentTypeB
	default:
		return models.ContentTypeC
	}
}

func clampWeight(w int) int {
	if w < 0 {
		return 0
	}
	return w
}
