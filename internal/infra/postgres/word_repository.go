package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"vocab-quiz-service/internal/domain"
)

// WordRepository reads the vocabulary table through bun. It works against
// both the Postgres and the SQLite dialect; random sampling uses the
// database's random() ordering like the original schema intended.
type WordRepository struct {
	db *bun.DB
}

func NewWordRepository(db *bun.DB) *WordRepository {
	return &WordRepository{db: db}
}

func (r *WordRepository) Count(ctx context.Context) (int, error) {
	n, err := r.db.NewSelect().Model((*domain.Word)(nil)).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count words: %w", err)
	}
	return n, nil
}

func (r *WordRepository) Get(ctx context.Context, id int64) (domain.Word, error) {
	var word domain.Word
	err := r.db.NewSelect().Model(&word).Where("w.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Word{}, domain.ErrWordNotFound
	}
	if err != nil {
		return domain.Word{}, fmt.Errorf("get word: %w", err)
	}
	return word, nil
}

func (r *WordRepository) Random(ctx context.Context, n int, exclude []int64) ([]domain.Word, error) {
	var words []domain.Word
	q := r.db.NewSelect().Model(&words).OrderExpr("random()").Limit(n)
	if len(exclude) > 0 {
		q = q.Where("w.id NOT IN (?)", bun.In(exclude))
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("random words: %w", err)
	}
	return words, nil
}

// Add inserts a vocabulary pair. Used by the seed command.
func (r *WordRepository) Add(ctx context.Context, tr, en string) (domain.Word, error) {
	word := domain.Word{TR: tr, EN: en}
	if _, err := r.db.NewInsert().Model(&word).Exec(ctx); err != nil {
		return domain.Word{}, fmt.Errorf("insert word: %w", err)
	}
	return word, nil
}
