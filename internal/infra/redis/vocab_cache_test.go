package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"vocab-quiz-service/internal/app"
	"vocab-quiz-service/internal/domain"
	"vocab-quiz-service/internal/infra/memory"
)

type countingWords struct {
	app.WordRepository
	randomCalls int
}

func (c *countingWords) Random(ctx context.Context, n int, exclude []int64) ([]domain.Word, error) {
	c.randomCalls++
	return c.WordRepository.Random(ctx, n, exclude)
}

func newCacheFixture(t *testing.T) (*VocabCache, *countingWords, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	source := &countingWords{WordRepository: memory.NewWordRepository([]domain.Word{
		{ID: 1, TR: "kedi", EN: "cat"},
		{ID: 2, TR: "köpek", EN: "dog"},
		{ID: 3, TR: "kuş", EN: "bird"},
		{ID: 4, TR: "balık", EN: "fish"},
	})}
	return NewVocabCache(client, source, time.Minute), source, mr
}

func TestVocabCacheLoadsSourceOnce(t *testing.T) {
	cache, source, _ := newCacheFixture(t)
	ctx := context.Background()

	if n, err := cache.Count(ctx); err != nil || n != 4 {
		t.Fatalf("count = (%d, %v), want (4, nil)", n, err)
	}
	if _, err := cache.Get(ctx, 1); err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, err := cache.Random(ctx, 3, []int64{1}); err != nil {
		t.Fatalf("random: %v", err)
	}

	if source.randomCalls != 1 {
		t.Fatalf("expected one source load, got %d", source.randomCalls)
	}
}

func TestVocabCacheServesFromCachedList(t *testing.T) {
	cache, _, _ := newCacheFixture(t)
	ctx := context.Background()

	word, err := cache.Get(ctx, 2)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if word.EN != "dog" {
		t.Fatalf("expected dog, got %q", word.EN)
	}

	if _, err := cache.Get(ctx, 99); err != domain.ErrWordNotFound {
		t.Fatalf("expected ErrWordNotFound, got %v", err)
	}

	words, err := cache.Random(ctx, 3, []int64{2})
	if err != nil {
		t.Fatalf("random: %v", err)
	}
	if len(words) != 3 {
		t.Fatalf("expected 3 words, got %d", len(words))
	}
	for _, w := range words {
		if w.ID == 2 {
			t.Fatalf("excluded word was sampled")
		}
	}
}

func TestVocabCacheInvalidate(t *testing.T) {
	cache, source, mr := newCacheFixture(t)
	ctx := context.Background()

	if _, err := cache.Count(ctx); err != nil {
		t.Fatalf("count: %v", err)
	}
	if !mr.Exists(vocabKey) {
		t.Fatalf("expected cached vocabulary key")
	}

	if err := cache.Invalidate(ctx); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if mr.Exists(vocabKey) {
		t.Fatalf("expected key removed after invalidate")
	}

	if _, err := cache.Count(ctx); err != nil {
		t.Fatalf("count after invalidate: %v", err)
	}
	if source.randomCalls != 2 {
		t.Fatalf("expected a reload after invalidate, got %d loads", source.randomCalls)
	}
}
