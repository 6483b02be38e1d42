package memory

import (
	"context"
	"math/rand"
	"sync"

	"vocab-quiz-service/internal/domain"
)

// WordRepository is an in-memory implementation of app.WordRepository,
// useful for tests and for running without a database.
type WordRepository struct {
	mu    sync.RWMutex
	words []domain.Word
}

func NewWordRepository(words []domain.Word) *WordRepository {
	copied := make([]domain.Word, len(words))
	copy(copied, words)
	return &WordRepository{words: copied}
}

func (r *WordRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.words), nil
}

func (r *WordRepository) Get(_ context.Context, id int64) (domain.Word, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, w := range r.words {
		if w.ID == id {
			return w, nil
		}
	}
	return domain.Word{}, domain.ErrWordNotFound
}

func (r *WordRepository) Random(_ context.Context, n int, exclude []int64) ([]domain.Word, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	excluded := make(map[int64]struct{}, len(exclude))
	for _, id := range exclude {
		excluded[id] = struct{}{}
	}

	pool := make([]domain.Word, 0, len(r.words))
	for _, w := range r.words {
		if _, skip := excluded[w.ID]; !skip {
			pool = append(pool, w)
		}
	}

	rand.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	if n > len(pool) {
		n = len(pool)
	}
	return pool[:n], nil
}

// Add appends a word, assigning the next id. Used by the seed path.
func (r *WordRepository) Add(_ context.Context, tr, en string) (domain.Word, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w := domain.Word{ID: int64(len(r.words) + 1), TR: tr, EN: en}
	r.words = append(r.words, w)
	return w, nil
}
