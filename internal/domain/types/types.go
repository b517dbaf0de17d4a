// Package types contains common types used across the application
package types

// User is the read-only identity shape resolved from the user directory.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SubjectStanding is one row of a per-subject completion ranking.
// User is nil when identity resolution failed for the row; the ranking
// keeps the row rather than dropping it.
type SubjectStanding struct {
	Rank            int     `json:"rank"`
	UserID          string  `json:"user_id"`
	User            *User   `json:"user"`
	CompletedTopics int     `json:"completed_topics"`
	CompletionRate  float64 `json:"completion_rate"`
}

// LeaderboardEntry is one row of the global watch-time leaderboard.
// Name and Email stay empty when identity resolution failed.
type LeaderboardEntry struct {
	Rank           int     `json:"rank"`
	UserID         string  `json:"user_id"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	TotalWatchTime float64 `json:"total_watch_time"`
}

// ServiceStats is the monitoring snapshot returned by the service and
// served on GET /stats. Records is meaningful only while Started is true.
type ServiceStats struct {
	Started bool   `json:"started"`
	Storage string `json:"storage"`
	Records int    `json:"records"`
}

// LeaderboardPage is the paginated envelope for the global leaderboard.
type LeaderboardPage struct {
	Entries  []LeaderboardEntry `json:"entries"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
	Total    int                `json:"total"`
}
