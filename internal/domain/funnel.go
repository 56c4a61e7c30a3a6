package domain

import "time"

// FunnelDefinition is an ordered list of named steps users are
// expected to progress through
type FunnelDefinition struct {
	ID        int64     `json:"id"`
	ForumID   int64     `json:"forum_id"`
	Name      string    `json:"name"`
	Steps     []string  `json:"steps"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FunnelAnalytic records a single user's progress through a funnel
type FunnelAnalytic struct {
	ID        int64     `json:"id"`
	FunnelID  int64     `json:"funnel_id"`
	UserID    int64     `json:"user_id"`
	LastStep  string    `json:"last_step"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FunnelStats is derived from FunnelAnalytic rows, never stored
type FunnelStats struct {
	FunnelID       int64          `json:"funnel_id"`
	TotalEntries   int            `json:"total_entries"`
	Completions    int            `json:"completions"`
	ConversionRate float64        `json:"conversion_rate"`
	DropOffPoints  map[string]int `json:"drop_off_points"`
}
