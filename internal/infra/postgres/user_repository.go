package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"vocab-quiz-service/internal/domain"
)

// UserRepository persists users through bun. It also implements
// app.LeaderboardSource as the fallback when no pgx pool is wired (the
// SQLite dev store takes this path).
type UserRepository struct {
	db *bun.DB
}

func NewUserRepository(db *bun.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetOrCreate looks up a user by subject id, inserting a fresh row on first
// sight. The insert ignores conflicts so concurrent first-time requests for
// the same subject converge on a single row.
func (r *UserRepository) GetOrCreate(ctx context.Context, clerkID, email, username string) (domain.User, error) {
	var user domain.User
	err := r.db.NewSelect().Model(&user).Where("u.clerk_id = ?", clerkID).Scan(ctx)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	}

	fresh := domain.User{
		ClerkID:  clerkID,
		Email:    email,
		Username: username,
		Level:    domain.DefaultLevel,
	}
	if _, err := r.db.NewInsert().Model(&fresh).On("CONFLICT (clerk_id) DO NOTHING").Exec(ctx); err != nil {
		return domain.User{}, fmt.Errorf("provision user: %w", err)
	}

	// Re-read: on conflict the insert reported nothing, and a winning
	// concurrent insert may carry different claims.
	user = domain.User{}
	if err := r.db.NewSelect().Model(&user).Where("u.clerk_id = ?", clerkID).Scan(ctx); err != nil {
		return domain.User{}, fmt.Errorf("reload user: %w", err)
	}
	return user, nil
}

// AddScore increments total_score in a single UPDATE so concurrent correct
// answers are never lost, then reads the new total back.
func (r *UserRepository) AddScore(ctx context.Context, userID int64, points int) (int, error) {
	res, err := r.db.NewUpdate().Model((*domain.User)(nil)).
		Set("total_score = total_score + ?", points).
		Where("id = ?", userID).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("add score: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return 0, domain.ErrUserNotFound
	}

	var total int
	err = r.db.NewSelect().Model((*domain.User)(nil)).
		Column("total_score").
		Where("u.id = ?", userID).
		Scan(ctx, &total)
	if err != nil {
		return 0, fmt.Errorf("read score: %w", err)
	}
	return total, nil
}

func (r *UserRepository) Top(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	var users []domain.User
	err := r.db.NewSelect().Model(&users).
		OrderExpr("total_score DESC, id ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	entries := make([]domain.LeaderboardEntry, 0, len(users))
	for _, u := range users {
		entries = append(entries, domain.LeaderboardEntry{
			ID:         u.ID,
			Username:   u.Username,
			TotalScore: u.TotalScore,
			Level:      u.Level,
		})
	}
	return entries, nil
}

func (r *UserRepository) Rank(ctx context.Context, score int) (int, error) {
	above, err := r.db.NewSelect().Model((*domain.User)(nil)).
		Where("total_score > ?", score).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("rank: %w", err)
	}
	return above + 1, nil
}

func (r *UserRepository) TotalPlayers(ctx context.Context) (int, error) {
	n, err := r.db.NewSelect().Model((*domain.User)(nil)).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count players: %w", err)
	}
	return n, nil
}
