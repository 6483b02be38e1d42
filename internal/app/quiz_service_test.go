package app_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"vocab-quiz-service/internal/app"
	"vocab-quiz-service/internal/domain"
	"vocab-quiz-service/internal/infra/memory"
)

type testEnv struct {
	service *app.QuizService
	words   *memory.WordRepository
	users   *memory.UserRepository
	daily   *memory.DailyStatsRepository
}

func newTestEnv(t *testing.T, words []domain.Word) *testEnv {
	t.Helper()
	wordRepo := memory.NewWordRepository(words)
	userRepo := memory.NewUserRepository()
	dailyRepo := memory.NewDailyStatsRepository()
	service := app.NewQuizServiceWithClock(
		wordRepo, userRepo, dailyRepo, userRepo,
		app.DefaultOptions(), slog.Default(),
		func() time.Time { return time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC) },
	)
	return &testEnv{service: service, words: wordRepo, users: userRepo, daily: dailyRepo}
}

func (e *testEnv) user(t *testing.T, clerkID string) domain.User {
	t.Helper()
	u, err := e.users.GetOrCreate(context.Background(), clerkID, "", clerkID)
	if err != nil {
		t.Fatalf("get or create user: %v", err)
	}
	return u
}

func vocabulary(n int) []domain.Word {
	words := make([]domain.Word, 0, n)
	for i := 1; i <= n; i++ {
		words = append(words, domain.Word{
			ID: int64(i),
			TR: fmt.Sprintf("kelime%d", i),
			EN: fmt.Sprintf("word%d", i),
		})
	}
	return words
}

func TestStartQuizShape(t *testing.T) {
	env := newTestEnv(t, vocabulary(10))
	user := env.user(t, "clerk-1")

	quiz, err := env.service.StartQuiz(context.Background(), user)
	if err != nil {
		t.Fatalf("start quiz: %v", err)
	}
	if quiz.UserID != user.ID || quiz.ClerkID != "clerk-1" {
		t.Fatalf("unexpected quiz identity: %+v", quiz)
	}
	if len(quiz.Questions) != 5 {
		t.Fatalf("expected 5 questions, got %d", len(quiz.Questions))
	}

	byID := make(map[int64]domain.Word)
	for _, w := range vocabulary(10) {
		byID[w.ID] = w
	}

	seen := make(map[int64]bool)
	for _, q := range quiz.Questions {
		if seen[q.ID] {
			t.Fatalf("word %d appeared in two questions", q.ID)
		}
		seen[q.ID] = true

		if len(q.Options) != 4 {
			t.Fatalf("question %d: expected 4 options, got %d", q.ID, len(q.Options))
		}
		distinct := make(map[string]bool)
		correct := 0
		for _, opt := range q.Options {
			if distinct[opt] {
				t.Fatalf("question %d: duplicate option %q", q.ID, opt)
			}
			distinct[opt] = true
			if opt == byID[q.ID].EN {
				correct++
			}
		}
		if correct != 1 {
			t.Fatalf("question %d: expected exactly one correct option, got %d", q.ID, correct)
		}
		if q.Prompt != byID[q.ID].TR {
			t.Fatalf("question %d: prompt %q does not match word", q.ID, q.Prompt)
		}
	}
}

func TestStartQuizMinimumVocabulary(t *testing.T) {
	words := []domain.Word{
		{ID: 1, TR: "kedi", EN: "cat"},
		{ID: 2, TR: "köpek", EN: "dog"},
		{ID: 3, TR: "kuş", EN: "bird"},
		{ID: 4, TR: "balık", EN: "fish"},
	}
	env := newTestEnv(t, words)
	user := env.user(t, "clerk-1")

	quiz, err := env.service.StartQuiz(context.Background(), user)
	if err != nil {
		t.Fatalf("start quiz with 4 words: %v", err)
	}
	if len(quiz.Questions) != 4 {
		t.Fatalf("expected 4 questions from a 4-word store, got %d", len(quiz.Questions))
	}
	for _, q := range quiz.Questions {
		if len(q.Options) != 4 {
			t.Fatalf("question %d: expected full option set, got %d", q.ID, len(q.Options))
		}
	}
}

func TestStartQuizInsufficientWords(t *testing.T) {
	env := newTestEnv(t, vocabulary(3))
	user := env.user(t, "clerk-1")

	_, err := env.service.StartQuiz(context.Background(), user)
	if !errors.Is(err, domain.ErrInsufficientWords) {
		t.Fatalf("expected ErrInsufficientWords, got %v", err)
	}
}

func TestSubmitAnswerNormalizesInput(t *testing.T) {
	env := newTestEnv(t, []domain.Word{{ID: 1, TR: "kedi", EN: "cat"}, {ID: 2, TR: "köpek", EN: "dog"}, {ID: 3, TR: "kuş", EN: "bird"}, {ID: 4, TR: "balık", EN: "fish"}})
	user := env.user(t, "clerk-1")

	result, err := env.service.SubmitAnswer(context.Background(), user, 1, "  Cat ")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !result.Correct {
		t.Fatalf("expected ' Cat ' to be graded correct for 'cat'")
	}
	if result.UserScore != 10 {
		t.Fatalf("expected score 10, got %d", result.UserScore)
	}
	if result.CorrectAnswer != "cat" {
		t.Fatalf("expected canonical answer 'cat', got %q", result.CorrectAnswer)
	}
}

func TestSubmitAnswerAccumulatesScore(t *testing.T) {
	env := newTestEnv(t, vocabulary(10))
	user := env.user(t, "clerk-1")

	for i := 1; i <= 3; i++ {
		result, err := env.service.SubmitAnswer(context.Background(), user, int64(i), fmt.Sprintf("word%d", i))
		if err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
		if !result.Correct {
			t.Fatalf("submit %d: expected correct", i)
		}
		if result.UserScore != i*10 {
			t.Fatalf("submit %d: expected score %d, got %d", i, i*10, result.UserScore)
		}
	}
}

func TestSubmitAnswerWrong(t *testing.T) {
	env := newTestEnv(t, vocabulary(10))
	user := env.user(t, "clerk-1")

	result, err := env.service.SubmitAnswer(context.Background(), user, 7, "sacmasapanbirsey")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Correct {
		t.Fatalf("expected wrong answer")
	}
	if result.CorrectAnswer != "word7" {
		t.Fatalf("expected correct answer word7, got %q", result.CorrectAnswer)
	}
	if result.UserScore != 0 {
		t.Fatalf("wrong answer must not change the score, got %d", result.UserScore)
	}
	if !strings.Contains(result.Message, "word7") {
		t.Fatalf("message should reveal the correct answer, got %q", result.Message)
	}
}

func TestSubmitAnswerUnknownWord(t *testing.T) {
	env := newTestEnv(t, vocabulary(5))
	user := env.user(t, "clerk-1")

	_, err := env.service.SubmitAnswer(context.Background(), user, 999, "anything")
	if !errors.Is(err, domain.ErrWordNotFound) {
		t.Fatalf("expected ErrWordNotFound, got %v", err)
	}
}

func TestFinishQuizSameDayTwice(t *testing.T) {
	env := newTestEnv(t, vocabulary(5))
	user := env.user(t, "clerk-1")

	first, err := env.service.FinishQuiz(context.Background(), user)
	if err != nil {
		t.Fatalf("finish 1: %v", err)
	}
	if first.TodayCompleted != 1 {
		t.Fatalf("expected 1 after first finish, got %d", first.TodayCompleted)
	}

	second, err := env.service.FinishQuiz(context.Background(), user)
	if err != nil {
		t.Fatalf("finish 2: %v", err)
	}
	if second.TodayCompleted != 2 {
		t.Fatalf("expected 2 after second finish, got %d", second.TodayCompleted)
	}

	progress, err := env.service.DailyProgress(context.Background(), user)
	if err != nil {
		t.Fatalf("daily progress: %v", err)
	}
	if progress.Completed != 2 || progress.Target != 5 {
		t.Fatalf("expected 2/5, got %d/%d", progress.Completed, progress.Target)
	}
}

func TestDailyProgressWithoutActivity(t *testing.T) {
	env := newTestEnv(t, vocabulary(5))
	user := env.user(t, "clerk-1")

	progress, err := env.service.DailyProgress(context.Background(), user)
	if err != nil {
		t.Fatalf("daily progress: %v", err)
	}
	if progress.Completed != 0 || progress.Target != 5 {
		t.Fatalf("expected 0/5 for a fresh day, got %d/%d", progress.Completed, progress.Target)
	}
}

func TestLeaderboardCapAndOrder(t *testing.T) {
	env := newTestEnv(t, vocabulary(5))
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		u := env.user(t, fmt.Sprintf("clerk-%d", i))
		if _, err := env.users.AddScore(ctx, u.ID, i*10); err != nil {
			t.Fatalf("add score: %v", err)
		}
	}

	entries, err := env.service.Leaderboard(ctx)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(entries) != 10 {
		t.Fatalf("expected 10 entries, got %d", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].TotalScore > entries[i-1].TotalScore {
			t.Fatalf("leaderboard not sorted at %d: %d > %d", i, entries[i].TotalScore, entries[i-1].TotalScore)
		}
	}
	if entries[0].TotalScore != 110 {
		t.Fatalf("expected top score 110, got %d", entries[0].TotalScore)
	}
}

func TestStatsCompetitionRank(t *testing.T) {
	env := newTestEnv(t, vocabulary(5))
	ctx := context.Background()

	first := env.user(t, "clerk-a")
	second := env.user(t, "clerk-b")
	third := env.user(t, "clerk-c")
	if _, err := env.users.AddScore(ctx, first.ID, 50); err != nil {
		t.Fatal(err)
	}
	if _, err := env.users.AddScore(ctx, second.ID, 50); err != nil {
		t.Fatal(err)
	}
	if _, err := env.users.AddScore(ctx, third.ID, 20); err != nil {
		t.Fatal(err)
	}

	// Re-read users so TotalScore reflects the updates.
	first = env.user(t, "clerk-a")
	second = env.user(t, "clerk-b")
	third = env.user(t, "clerk-c")

	statsA, err := env.service.Stats(ctx, first)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	statsB, _ := env.service.Stats(ctx, second)
	statsC, _ := env.service.Stats(ctx, third)

	if statsA.Rank != 1 || statsB.Rank != 1 {
		t.Fatalf("tied top scores must both rank 1, got %d and %d", statsA.Rank, statsB.Rank)
	}
	if statsC.Rank != 3 {
		t.Fatalf("expected rank 3 below two tied leaders, got %d", statsC.Rank)
	}
	if statsA.TotalPlayers != 3 {
		t.Fatalf("expected 3 players, got %d", statsA.TotalPlayers)
	}
	if statsA.Level != domain.DefaultLevel {
		t.Fatalf("expected default level, got %q", statsA.Level)
	}
}

func TestUserProvisioningIsIdempotent(t *testing.T) {
	env := newTestEnv(t, vocabulary(5))
	ctx := context.Background()

	first, err := env.users.GetOrCreate(ctx, "clerk-new", "a@example.com", "alice")
	if err != nil {
		t.Fatalf("first auth: %v", err)
	}
	if first.TotalScore != 0 || first.Level != "A1" {
		t.Fatalf("fresh user must start at 0/A1, got %d/%q", first.TotalScore, first.Level)
	}

	again, err := env.users.GetOrCreate(ctx, "clerk-new", "a@example.com", "alice")
	if err != nil {
		t.Fatalf("second auth: %v", err)
	}
	if again.ID != first.ID {
		t.Fatalf("second authentication created a duplicate row: %d vs %d", again.ID, first.ID)
	}
	players, _ := env.users.TotalPlayers(ctx)
	if players != 1 {
		t.Fatalf("expected one user row, got %d", players)
	}
}
