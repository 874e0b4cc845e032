package sources

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// StaticSource serves questions from a fixed in-memory pool, drawn at
// random. Useful for demos and tests when no upstream is configured.
type StaticSource struct {
	name string
	pool []RawQuestion

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewStaticSource(name string, pool []RawQuestion) *StaticSource {
	return &StaticSource{
		name: name,
		pool: pool,
		rnd:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *StaticSource) Name() string { return s.name }

func (s *StaticSource) FetchOne(_ context.Context, _ FetchOptions) (RawQuestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pool) == 0 {
		return RawQuestion{}, ErrNoData
	}
	return s.pool[s.rnd.Intn(len(s.pool))], nil
}
