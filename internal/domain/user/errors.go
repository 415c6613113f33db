package user

import "errors"

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrUserBanned          = errors.New("user is banned")
	ErrSelfReference       = errors.New("user cannot reference itself")
	ErrAlreadyLinked       = errors.New("user already linked to another parent")
	ErrTrialAlreadyUsed    = errors.New("trial already used")
	ErrInvalidAmount       = errors.New("amount must be positive")
)
