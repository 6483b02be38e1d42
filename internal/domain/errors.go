package domain

import "errors"

var (
	// ErrWordNotFound is returned when a graded word id does not exist.
	ErrWordNotFound = errors.New("word not found")
	// ErrUserNotFound is returned when a user lookup misses.
	ErrUserNotFound = errors.New("user not found")
	// ErrInsufficientWords indicates the vocabulary is too small to build a
	// full option set for a question.
	ErrInsufficientWords = errors.New("not enough words to build a quiz")
)
