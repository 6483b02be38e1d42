package domain

import (
	"time"

	"github.com/uptrace/bun"
)

// User is an application user, provisioned lazily on first authenticated request.
// ClerkID is the stable subject identifier issued by the identity provider.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID         int64  `bun:"id,pk,autoincrement" json:"id"`
	ClerkID    string `bun:"clerk_id,notnull,unique" json:"clerk_id"`
	Email      string `bun:"email,nullzero" json:"email,omitempty"`
	Username   string `bun:"username,nullzero" json:"username,omitempty"`
	TotalScore int    `bun:"total_score,notnull,default:0" json:"total_score"`
	Level      string `bun:"level,notnull,default:'A1'" json:"level"`
}

// DefaultLevel is assigned to newly provisioned users. Level is never
// recomputed from score.
const DefaultLevel = "A1"

// Word is an immutable bilingual vocabulary pair (Turkish prompt, English answer).
type Word struct {
	bun.BaseModel `bun:"table:words,alias:w"`

	ID int64  `bun:"id,pk,autoincrement" json:"id"`
	TR string `bun:"tr,notnull" json:"tr"`
	EN string `bun:"en,notnull" json:"en"`
}

// DailyStat tracks per-user quiz activity for a single calendar date.
// One row per (user_id, date).
type DailyStat struct {
	bun.BaseModel `bun:"table:daily_stats,alias:ds"`

	ID               int64     `bun:"id,pk,autoincrement" json:"id"`
	UserID           int64     `bun:"user_id,notnull" json:"user_id"`
	Date             time.Time `bun:"date,notnull,type:date" json:"date"`
	QuizzesCompleted int       `bun:"quizzes_completed,notnull,default:0" json:"quizzes_completed"`
	DailyScore       int       `bun:"daily_score,notnull,default:0" json:"daily_score"`
}

// Question is a multiple-choice question built per request, never persisted.
// Exactly one option equals the word's English text.
type Question struct {
	ID      int64    `json:"id"`
	Prompt  string   `json:"question"`
	Options []string `json:"options"`
}

// QuizStart is the payload returned when a quiz begins.
type QuizStart struct {
	UserID    int64      `json:"user_id"`
	ClerkID   string     `json:"clerk_id"`
	Questions []Question `json:"questions"`
}

// AnswerResult summarizes one graded submission.
type AnswerResult struct {
	Correct       bool   `json:"correct"`
	CorrectAnswer string `json:"correct_answer"`
	UserScore     int    `json:"user_score"`
	Message       string `json:"message"`
}

// UserStats is the per-user scoreboard view.
type UserStats struct {
	TotalScore   int    `json:"total_score"`
	Level        string `json:"level"`
	Rank         int    `json:"rank"`
	TotalPlayers int    `json:"total_players"`
}

// FinishResult reports the day's completion count after a quiz finishes.
type FinishResult struct {
	Message        string `json:"message"`
	TodayCompleted int    `json:"today_completed"`
}

// DailyProgress reports progress toward the fixed daily quiz target.
type DailyProgress struct {
	Completed int `json:"completed"`
	Target    int `json:"target"`
}

// LeaderboardEntry is one row of the public top-10 leaderboard.
type LeaderboardEntry struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	TotalScore int    `json:"total_score"`
	Level      string `json:"level"`
}
