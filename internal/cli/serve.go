package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/lmittmann/tint"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"vocab-quiz-service/internal/app"
	"vocab-quiz-service/internal/auth"
	"vocab-quiz-service/internal/config"
	"vocab-quiz-service/internal/domain"
	"vocab-quiz-service/internal/infra/memory"
	"vocab-quiz-service/internal/infra/postgres"
	vredis "vocab-quiz-service/internal/infra/redis"
	"vocab-quiz-service/internal/infra/sqlite"
	transport "vocab-quiz-service/internal/transport/http"
)

// NewServeCmd builds the CLI subcommand to start the server.
func NewServeCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelDebug}))
	slog.SetDefault(logger)

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var (
		words app.WordRepository
		users app.UserRepository
		daily app.DailyStatsRepository
		board app.LeaderboardSource
		pool  *pgxpool.Pool
	)

	switch {
	case cfg.Postgres.URL != "":
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
		db := postgres.Open(cfg.Postgres.URL)
		defer db.Close()

		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()

		userRepo := postgres.NewUserRepository(db)
		words = postgres.NewWordRepository(db)
		users = userRepo
		daily = postgres.NewDailyStatsRepository(db)
		board = postgres.NewStatsReader(pool)
		logger.Info("storage: postgres", "migrations", "applied")

	case cfg.SQLite.Path != "":
		db, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			return err
		}
		defer db.Close()
		sqlite.EnsureSchema(ctx, db, logger)

		userRepo := postgres.NewUserRepository(db)
		words = postgres.NewWordRepository(db)
		users = userRepo
		daily = postgres.NewDailyStatsRepository(db)
		board = userRepo
		logger.Info("storage: sqlite", "path", cfg.SQLite.Path)

	default:
		userRepo := memory.NewUserRepository()
		words = memory.NewWordRepository(sampleWords())
		users = userRepo
		daily = memory.NewDailyStatsRepository()
		board = userRepo
		logger.Warn("storage: in-memory (no postgres url or sqlite path configured)")
	}

	if cfg.Redis.Addr != "" {
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ttl := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)
		words = vredis.NewVocabCache(client, words, ttl)
		logger.Info("vocabulary cache: redis", "addr", cfg.Redis.Addr, "ttl", ttl)
	}

	var verifier auth.Verifier
	if cfg.Auth.IssuerURL != "" {
		verifier, err = auth.NewClerkVerifier(ctx, cfg.Auth.IssuerURL, cfg.Auth.JWKSURL)
		if err != nil {
			return err
		}
	} else {
		logger.Warn("auth issuer not configured; accepting the dev token only")
		verifier = auth.NewStaticVerifier(map[string]auth.Claims{
			"dev-token": {Subject: "dev-user", Username: "dev"},
		})
	}

	service := app.NewQuizService(words, users, daily, board, quizOptions(cfg), logger)
	handler := transport.NewHandler(service, users, verifier, logger)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      handler.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("starting vocab quiz service", "port", finalPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutting down server...")
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func loadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config.FromEnv(), nil
		}
		return config.Config{}, err
	}
	return cfg, nil
}

func quizOptions(cfg config.Config) app.Options {
	opts := app.DefaultOptions()
	if cfg.Quiz.Questions > 0 {
		opts.QuestionsPerQuiz = cfg.Quiz.Questions
	}
	if cfg.Quiz.Options > 1 {
		opts.OptionsPerQuestion = cfg.Quiz.Options
	}
	if cfg.Quiz.Points > 0 {
		opts.PointsPerCorrect = cfg.Quiz.Points
	}
	if cfg.Quiz.DailyTarget > 0 {
		opts.DailyTarget = cfg.Quiz.DailyTarget
	}
	return opts
}

// sampleWords seeds the in-memory store so the service is usable without a
// database.
func sampleWords() []domain.Word {
	pairs := seedPairs()
	words := make([]domain.Word, 0, len(pairs))
	for i, p := range pairs {
		words = append(words, domain.Word{ID: int64(i + 1), TR: p[0], EN: p[1]})
	}
	return words
}
