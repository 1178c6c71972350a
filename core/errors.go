package core

import "errors"

// Error taxonomy shared by the service and API layers. All of these are
// recoverable conditions surfaced to the caller as structured responses;
// none should ever take the process down.
var (
	ErrInvalidScore        = errors.New("invalid score")
	ErrInvalidRange        = errors.New("invalid range")
	ErrInvalidName         = errors.New("invalid leaderboard name")
	ErrLeaderboardNotFound = errors.New("leaderboard not found")
	ErrMemberNotFound      = errors.New("member not found")
	ErrLeaderboardExists   = errors.New("leaderboard already exists")
	ErrUserExists          = errors.New("username already exists")
	ErrInvalidCredentials  = errors.New("invalid username or password")
)
