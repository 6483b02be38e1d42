package sqlite

import (
	"context"
	"database/sql"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"vocab-quiz-service/internal/domain"
)

// Open returns a bun DB over a local SQLite file. The bun repositories in
// infra/postgres run unchanged against this dialect; this is the
// zero-dependency dev store.
func Open(path string) (*bun.DB, error) {
	sqldb, err := sql.Open("sqlite3", path+"?_fk=1&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	// SQLite allows one writer; a larger pool just queues on the file lock.
	sqldb.SetMaxOpenConns(1)
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// EnsureSchema creates missing tables and indexes. Failures are logged and
// swallowed so a pre-existing schema never blocks startup; the first real
// query surfaces anything genuinely broken.
func EnsureSchema(ctx context.Context, db *bun.DB, logger *slog.Logger) {
	models := []interface{}{
		(*domain.User)(nil),
		(*domain.Word)(nil),
		(*domain.DailyStat)(nil),
	}
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			logger.Warn("create table failed", "err", err)
		}
	}
	if _, err := db.ExecContext(ctx,
		`CREATE UNIQUE INDEX IF NOT EXISTS daily_stats_user_date_key ON daily_stats (user_id, date)`); err != nil {
		logger.Warn("create index failed", "err", err)
	}
	if _, err := db.ExecContext(ctx,
		`CREATE INDEX IF NOT EXISTS users_total_score_idx ON users (total_score DESC)`); err != nil {
		logger.Warn("create index failed", "err", err)
	}
}
