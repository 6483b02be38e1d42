package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"vocab-quiz-service/internal/domain"
)

// DailyStatsRepository persists per-day counters through bun. Increments are
// a conflict-ignoring insert (the unique (user_id, date) key keeps the
// one-row-per-day invariant) followed by an atomic in-place UPDATE, so two
// concurrent finish events can neither duplicate the row nor lose a count.
type DailyStatsRepository struct {
	db *bun.DB
}

func NewDailyStatsRepository(db *bun.DB) *DailyStatsRepository {
	return &DailyStatsRepository{db: db}
}

func (r *DailyStatsRepository) IncrementCompleted(ctx context.Context, userID int64, day time.Time) (int, error) {
	if err := r.increment(ctx, userID, day, "quizzes_completed = quizzes_completed + 1"); err != nil {
		return 0, fmt.Errorf("increment completed: %w", err)
	}
	return r.Completed(ctx, userID, day)
}

func (r *DailyStatsRepository) AddScore(ctx context.Context, userID int64, day time.Time, points int) error {
	if err := r.increment(ctx, userID, day, "daily_score = daily_score + ?", points); err != nil {
		return fmt.Errorf("add daily score: %w", err)
	}
	return nil
}

func (r *DailyStatsRepository) Completed(ctx context.Context, userID int64, day time.Time) (int, error) {
	var stat domain.DailyStat
	err := r.db.NewSelect().Model(&stat).
		Where("ds.user_id = ?", userID).
		Where("ds.date = ?", dateOnly(day)).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("daily progress: %w", err)
	}
	return stat.QuizzesCompleted, nil
}

func (r *DailyStatsRepository) increment(ctx context.Context, userID int64, day time.Time, set string, args ...interface{}) error {
	stat := domain.DailyStat{UserID: userID, Date: dateOnly(day)}
	_, err := r.db.NewInsert().Model(&stat).
		On("CONFLICT (user_id, date) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return err
	}

	_, err = r.db.NewUpdate().Model((*domain.DailyStat)(nil)).
		Set(set, args...).
		Where("user_id = ?", userID).
		Where("date = ?", dateOnly(day)).
		Exec(ctx)
	return err
}

// dateOnly normalizes to midnight UTC so the (user_id, date) key compares
// equal across a calendar day regardless of dialect.
func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
