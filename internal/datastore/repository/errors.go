package repository

import "errors"

// Sentinel errors returned when a referenced row does not exist.
var (
	ErrRuleNotFound  = errors.New("rule not found")
	ErrAlertNotFound = errors.New("alert not found")
	ErrUserNotFound  = errors.New("user not found")
)
