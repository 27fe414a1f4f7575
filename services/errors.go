package services

import "errors"

// Sentinel errors handlers translate to 404s.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDreamNotFound  = errors.New("dream not found")
	ErrRitualNotFound = errors.New("ritual not found")
	ErrCircleNotFound = errors.New("circle not found")
	ErrPostNotFound   = errors.New("post not found")
	ErrInviteNotFound = errors.New("invite not found or already used")

	// ErrNotCircleMember guards member-only circle operations.
	ErrNotCircleMember = errors.New("user is not a member of this circle")
)
