package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"vocab-quiz-service/internal/app"
	"vocab-quiz-service/internal/domain"
)

const vocabKey = "vocab:words"

// VocabCache decorates a WordRepository with a Redis cache of the full
// vocabulary. The word table is small, immutable reference data, so the
// whole list is cached as one JSON value with a TTL and sampling is served
// from the cached copy. Misses are filled through singleflight to avoid a
// thundering herd on expiry.
type VocabCache struct {
	client *redis.Client
	source app.WordRepository
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewVocabCache(client *redis.Client, source app.WordRepository, ttl time.Duration) *VocabCache {
	return &VocabCache{
		client: client,
		source: source,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *VocabCache) Count(ctx context.Context) (int, error) {
	words, err := c.load(ctx)
	if err != nil {
		return 0, err
	}
	return len(words), nil
}

func (c *VocabCache) Get(ctx context.Context, id int64) (domain.Word, error) {
	words, err := c.load(ctx)
	if err != nil {
		return domain.Word{}, err
	}
	for _, w := range words {
		if w.ID == id {
			return w, nil
		}
	}
	return domain.Word{}, domain.ErrWordNotFound
}

func (c *VocabCache) Random(ctx context.Context, n int, exclude []int64) ([]domain.Word, error) {
	words, err := c.load(ctx)
	if err != nil {
		return nil, err
	}

	excluded := make(map[int64]struct{}, len(exclude))
	for _, id := range exclude {
		excluded[id] = struct{}{}
	}
	pool := make([]domain.Word, 0, len(words))
	for _, w := range words {
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

// Invalidate drops the cached vocabulary; the seed path calls it after
// inserting new words.
func (c *VocabCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, vocabKey).Err()
}

func (c *VocabCache) load(ctx context.Context) ([]domain.Word, error) {
	raw, err := c.client.Get(ctx, vocabKey).Bytes()
	if err == nil {
		var words []domain.Word
		if jsonErr := json.Unmarshal(raw, &words); jsonErr == nil {
			return words, nil
		}
		// Unreadable cache entry: fall through and refill.
	}

	result, err, _ := c.sf.Do(vocabKey, func() (interface{}, error) {
		raw, err := c.client.Get(ctx, vocabKey).Bytes()
		if err == nil {
			var words []domain.Word
			if jsonErr := json.Unmarshal(raw, &words); jsonErr == nil {
				return words, nil
			}
		}

		total, err := c.source.Count(ctx)
		if err != nil {
			return nil, err
		}
		words, err := c.source.Random(ctx, total, nil)
		if err != nil {
			return nil, err
		}

		if encoded, err := json.Marshal(words); err == nil {
			_ = c.client.Set(ctx, vocabKey, encoded, c.ttlWithJitter()).Err()
		}
		return words, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Word), nil
}

func (c *VocabCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
