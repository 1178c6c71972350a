package sdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// RankedEntry is one row of a leaderboard listing.
type RankedEntry struct {
	Rank     int     `json:"rank"`
	Username string  `json:"username"`
	Score    float64 `json:"score"`
}

// SubmitResult reports the caller's standing right after a submission.
type SubmitResult struct {
	Username string  `json:"username"`
	Score    float64 `json:"score"`
	Rank     int     `json:"rank"`
}

// Page is one pagination window of a leaderboard.
type Page struct {
	LeaderboardName string        `json:"leaderboardName"`
	Scores          []RankedEntry `json:"scores"`
	Start           int           `json:"start"`
	Limit           int           `json:"limit"`
	TotalPlayers    int           `json:"totalPlayers"`
}

// PlayerStanding is the caller's own view of a leaderboard.
type PlayerStanding struct {
	Username     string  `json:"username"`
	Score        float64 `json:"score"`
	Rank         int     `json:"rank"`
	TotalPlayers int     `json:"totalPlayers"`
}

// LeaderboardInfo is one catalog record.
type LeaderboardInfo struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Event mirrors the server's event stream payload.
type Event struct {
	Type        string  `json:"type"`
	Leaderboard string  `json:"leaderboard"`
	Username    string  `json:"username"`
	Score       float64 `json:"score"`
	Rank        int     `json:"rank"`
}

// HealthStatus describes the /healthz response.
type HealthStatus struct {
	Status string                 `json:"status"`
	Checks map[string]interface{} `json:"checks"`
}

// APIError carries the server's error envelope plus the HTTP status.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Code, e.Message)
}

func decodeJSON(resp *http.Response, target any) error {
	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		body, _ := io.ReadAll(resp.Body)
		if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Code == "" {
			apiErr.Code = "unknown"
			apiErr.Message = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return apiErr
	}
	if target == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(target)
}

// ErrEmptyLeaderboard is returned when a leaderboard name is empty.
var ErrEmptyLeaderboard = errors.New("leaderboard name is required")

// ErrNotAuthenticated is returned by calls that need a token before Login.
var ErrNotAuthenticated = errors.New("not authenticated: call Login first or use WithAuthToken")
