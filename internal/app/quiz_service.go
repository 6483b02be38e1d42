package app

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"vocab-quiz-service/internal/domain"
)

// WordRepository reads the vocabulary (in-memory, Postgres, or Redis-cached).
type WordRepository interface {
	Count(ctx context.Context) (int, error)
	Get(ctx context.Context, id int64) (domain.Word, error)
	// Random samples up to n distinct words uniformly at random, skipping
	// the excluded ids. It may return fewer than n when the vocabulary is
	// smaller than requested.
	Random(ctx context.Context, n int, exclude []int64) ([]domain.Word, error)
}

// UserRepository persists users and their cumulative scores.
type UserRepository interface {
	// GetOrCreate returns the user with the given subject id, provisioning
	// a fresh row (score 0, default level) on first sight.
	GetOrCreate(ctx context.Context, clerkID, email, username string) (domain.User, error)
	// AddScore atomically increments the user's total score and returns the
	// new total.
	AddScore(ctx context.Context, userID int64, points int) (int, error)
}

// DailyStatsRepository persists per-user, per-date quiz counters.
type DailyStatsRepository interface {
	// IncrementCompleted upserts the (user, day) row and returns the updated
	// completion count. Concurrent calls must not produce duplicate rows.
	IncrementCompleted(ctx context.Context, userID int64, day time.Time) (int, error)
	// AddScore adds points to the (user, day) daily score, creating the row
	// if needed.
	AddScore(ctx context.Context, userID int64, day time.Time, points int) error
	// Completed returns the completion count for (user, day), 0 when no row
	// exists.
	Completed(ctx context.Context, userID int64, day time.Time) (int, error)
}

// LeaderboardSource serves the aggregate scoreboard reads.
type LeaderboardSource interface {
	Top(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
	// Rank returns the competition rank for a score: players strictly above
	// it, plus one.
	Rank(ctx context.Context, score int) (int, error)
	TotalPlayers(ctx context.Context) (int, error)
}

// Options tune quiz shape and scoring.
type Options struct {
	QuestionsPerQuiz   int
	OptionsPerQuestion int
	PointsPerCorrect   int
	DailyTarget        int
}

// DefaultOptions mirrors the production quiz shape.
func DefaultOptions() Options {
	return Options{
		QuestionsPerQuiz:   5,
		OptionsPerQuestion: 4,
		PointsPerCorrect:   10,
		DailyTarget:        5,
	}
}

const leaderboardLimit = 10

// QuizService contains the quiz use cases: generating questions, grading
// answers, and score/daily bookkeeping. It is stateless across requests;
// every mutation is delegated to the repositories as an atomic update.
type QuizService struct {
	words  WordRepository
	users  UserRepository
	daily  DailyStatsRepository
	board  LeaderboardSource
	opts   Options
	logger *slog.Logger
	now    func() time.Time
}

func NewQuizService(words WordRepository, users UserRepository, daily DailyStatsRepository, board LeaderboardSource, opts Options, logger *slog.Logger) *QuizService {
	if opts.QuestionsPerQuiz <= 0 {
		opts = DefaultOptions()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &QuizService{
		words:  words,
		users:  users,
		daily:  daily,
		board:  board,
		opts:   opts,
		logger: logger,
		now:    time.Now,
	}
}

// NewQuizServiceWithClock is test-only for deterministic dates.
func NewQuizServiceWithClock(words WordRepository, users UserRepository, daily DailyStatsRepository, board LeaderboardSource, opts Options, logger *slog.Logger, now func() time.Time) *QuizService {
	s := NewQuizService(words, users, daily, board, opts, logger)
	s.now = now
	return s
}

// StartQuiz builds a randomized quiz for the user: up to QuestionsPerQuiz
// distinct words, each paired with OptionsPerQuestion-1 distinct distractors
// drawn from the rest of the vocabulary. Distractor pools are independent
// across questions, so a word may distract in several of them. Pure read.
func (s *QuizService) StartQuiz(ctx context.Context, user domain.User) (domain.QuizStart, error) {
	total, err := s.words.Count(ctx)
	if err != nil {
		return domain.QuizStart{}, fmt.Errorf("count words: %w", err)
	}
	if total < s.opts.OptionsPerQuestion {
		return domain.QuizStart{}, domain.ErrInsufficientWords
	}

	words, err := s.words.Random(ctx, s.opts.QuestionsPerQuiz, nil)
	if err != nil {
		return domain.QuizStart{}, fmt.Errorf("sample words: %w", err)
	}

	questions := make([]domain.Question, 0, len(words))
	for _, w := range words {
		distractors, err := s.words.Random(ctx, s.opts.OptionsPerQuestion-1, []int64{w.ID})
		if err != nil {
			return domain.QuizStart{}, fmt.Errorf("sample distractors: %w", err)
		}
		if len(distractors) < s.opts.OptionsPerQuestion-1 {
			return domain.QuizStart{}, domain.ErrInsufficientWords
		}

		options := make([]string, 0, s.opts.OptionsPerQuestion)
		for _, d := range distractors {
			options = append(options, d.EN)
		}
		options = append(options, w.EN)
		rand.Shuffle(len(options), func(i, j int) {
			options[i], options[j] = options[j], options[i]
		})

		questions = append(questions, domain.Question{
			ID:      w.ID,
			Prompt:  w.TR,
			Options: options,
		})
	}

	return domain.QuizStart{
		UserID:    user.ID,
		ClerkID:   user.ClerkID,
		Questions: questions,
	}, nil
}

// SubmitAnswer grades a submission for the given word. Comparison trims
// surrounding whitespace and lower-cases both sides; only an exact match of
// the normalized English text counts. A correct answer atomically adds
// PointsPerCorrect to the user's total and to today's daily score.
func (s *QuizService) SubmitAnswer(ctx context.Context, user domain.User, wordID int64, answer string) (domain.AnswerResult, error) {
	word, err := s.words.Get(ctx, wordID)
	if err != nil {
		return domain.AnswerResult{}, err
	}

	if normalize(answer) != normalize(word.EN) {
		return domain.AnswerResult{
			Correct:       false,
			CorrectAnswer: word.EN,
			UserScore:     user.TotalScore,
			Message:       fmt.Sprintf("Wrong answer. Correct answer: %s", word.EN),
		}, nil
	}

	newTotal, err := s.users.AddScore(ctx, user.ID, s.opts.PointsPerCorrect)
	if err != nil {
		return domain.AnswerResult{}, fmt.Errorf("add score: %w", err)
	}
	if err := s.daily.AddScore(ctx, user.ID, s.now(), s.opts.PointsPerCorrect); err != nil {
		// The cumulative total is the source of truth; a failed daily-score
		// write must not fail the submission.
		s.logger.Warn("daily score update failed", "user_id", user.ID, "err", err)
	}

	return domain.AnswerResult{
		Correct:       true,
		CorrectAnswer: word.EN,
		UserScore:     newTotal,
		Message:       "Correct! Well done.",
	}, nil
}

// Stats returns the user's score, level, competition rank, and player count.
func (s *QuizService) Stats(ctx context.Context, user domain.User) (domain.UserStats, error) {
	rank, err := s.board.Rank(ctx, user.TotalScore)
	if err != nil {
		return domain.UserStats{}, fmt.Errorf("rank: %w", err)
	}
	players, err := s.board.TotalPlayers(ctx)
	if err != nil {
		return domain.UserStats{}, fmt.Errorf("count players: %w", err)
	}
	return domain.UserStats{
		TotalScore:   user.TotalScore,
		Level:        user.Level,
		Rank:         rank,
		TotalPlayers: players,
	}, nil
}

// FinishQuiz records a completed quiz for today via an atomic upsert on the
// (user, date) row.
func (s *QuizService) FinishQuiz(ctx context.Context, user domain.User) (domain.FinishResult, error) {
	completed, err := s.daily.IncrementCompleted(ctx, user.ID, s.now())
	if err != nil {
		return domain.FinishResult{}, fmt.Errorf("record finish: %w", err)
	}
	return domain.FinishResult{
		Message:        "Quiz finished. Great job!",
		TodayCompleted: completed,
	}, nil
}

// DailyProgress returns today's completion count against the fixed target.
func (s *QuizService) DailyProgress(ctx context.Context, user domain.User) (domain.DailyProgress, error) {
	completed, err := s.daily.Completed(ctx, user.ID, s.now())
	if err != nil {
		return domain.DailyProgress{}, fmt.Errorf("daily progress: %w", err)
	}
	return domain.DailyProgress{Completed: completed, Target: s.opts.DailyTarget}, nil
}

// Leaderboard returns the top players by total score, at most ten.
func (s *QuizService) Leaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	return s.board.Top(ctx, leaderboardLimit)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
