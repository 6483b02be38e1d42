package memory

import (
	"context"
	"sync"
	"time"

	"vocab-quiz-service/internal/domain"
)

type dailyKey struct {
	userID int64
	day    string
}

// DailyStatsRepository is an in-memory implementation of
// app.DailyStatsRepository keyed by (user, calendar date).
type DailyStatsRepository struct {
	mu    sync.Mutex
	stats map[dailyKey]*domain.DailyStat
}

func NewDailyStatsRepository() *DailyStatsRepository {
	return &DailyStatsRepository{stats: make(map[dailyKey]*domain.DailyStat)}
}

func (r *DailyStatsRepository) IncrementCompleted(_ context.Context, userID int64, day time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stat := r.getOrCreateLocked(userID, day)
	stat.QuizzesCompleted++
	return stat.QuizzesCompleted, nil
}

func (r *DailyStatsRepository) AddScore(_ context.Context, userID int64, day time.Time, points int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stat := r.getOrCreateLocked(userID, day)
	stat.DailyScore += points
	return nil
}

func (r *DailyStatsRepository) Completed(_ context.Context, userID int64, day time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if stat, ok := r.stats[keyFor(userID, day)]; ok {
		return stat.QuizzesCompleted, nil
	}
	return 0, nil
}

func (r *DailyStatsRepository) getOrCreateLocked(userID int64, day time.Time) *domain.DailyStat {
	key := keyFor(userID, day)
	if stat, ok := r.stats[key]; ok {
		return stat
	}
	stat := &domain.DailyStat{
		ID:     int64(len(r.stats) + 1),
		UserID: userID,
		Date:   day.Truncate(24 * time.Hour),
	}
	r.stats[key] = stat
	return stat
}

func keyFor(userID int64, day time.Time) dailyKey {
	return dailyKey{userID: userID, day: day.Format("2006-01-02")}
}
