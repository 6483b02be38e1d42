package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"vocab-quiz-service/internal/domain"
)

// StatsReader serves the leaderboard and rank aggregates with raw SQL over a
// pgx pool, keeping the hot read path off the ORM.
type StatsReader struct {
	pool *pgxpool.Pool
}

func NewStatsReader(pool *pgxpool.Pool) *StatsReader {
	return &StatsReader{pool: pool}
}

func (r *StatsReader) Top(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, username, total_score, level FROM users ORDER BY total_score DESC, id ASC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []domain.LeaderboardEntry
	for rows.Next() {
		var entry domain.LeaderboardEntry
		var username *string
		if err := rows.Scan(&entry.ID, &username, &entry.TotalScore, &entry.Level); err != nil {
			return nil, fmt.Errorf("scan leaderboard row: %w", err)
		}
		if username != nil {
			entry.Username = *username
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *StatsReader) Rank(ctx context.Context, score int) (int, error) {
	var above int
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM users WHERE total_score > $1`, score).Scan(&above)
	if err != nil {
		return 0, fmt.Errorf("rank: %w", err)
	}
	return above + 1, nil
}

func (r *StatsReader) TotalPlayers(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count players: %w", err)
	}
	return n, nil
}
