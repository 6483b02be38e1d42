package memory

import (
	"context"
	"sort"
	"sync"

	"vocab-quiz-service/internal/domain"
)

// UserRepository is an in-memory implementation of app.UserRepository and
// app.LeaderboardSource.
type UserRepository struct {
	mu      sync.RWMutex
	byClerk map[string]*domain.User
	byID    map[int64]*domain.User
	nextID  int64
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byClerk: make(map[string]*domain.User),
		byID:    make(map[int64]*domain.User),
		nextID:  1,
	}
}

func (r *UserRepository) GetOrCreate(_ context.Context, clerkID, email, username string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u, ok := r.byClerk[clerkID]; ok {
		return *u, nil
	}
	u := &domain.User{
		ID:       r.nextID,
		ClerkID:  clerkID,
		Email:    email,
		Username: username,
		Level:    domain.DefaultLevel,
	}
	r.nextID++
	r.byClerk[clerkID] = u
	r.byID[u.ID] = u
	return *u, nil
}

func (r *UserRepository) AddScore(_ context.Context, userID int64, points int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[userID]
	if !ok {
		return 0, domain.ErrUserNotFound
	}
	u.TotalScore += points
	return u.TotalScore, nil
}

func (r *UserRepository) Top(_ context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]domain.LeaderboardEntry, 0, len(r.byID))
	for _, u := range r.byID {
		entries = append(entries, domain.LeaderboardEntry{
			ID:         u.ID,
			Username:   u.Username,
			TotalScore: u.TotalScore,
			Level:      u.Level,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalScore != entries[j].TotalScore {
			return entries[i].TotalScore > entries[j].TotalScore
		}
		return entries[i].ID < entries[j].ID
	})
	if limit < len(entries) {
		entries = entries[:limit]
	}
	return entries, nil
}

func (r *UserRepository) Rank(_ context.Context, score int) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	above := 0
	for _, u := range r.byID {
		if u.TotalScore > score {
			above++
		}
	}
	return above + 1, nil
}

func (r *UserRepository) TotalPlayers(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID), nil
}
