package domain

import (
	"encoding/json"
	"time"
)

// SeoKeyword is a tracked search keyword for a forum.
// LastCheckedAt moves only when a new SeoPosition row is recorded.
type SeoKeyword struct {
	ID            int64      `json:"id"`
	ForumID       int64      `json:"forum_id"`
	Keyword       string     `json:"keyword"`
	TargetURL     string     `json:"target_url,omitempty"`
	Difficulty    int        `json:"difficulty"`
	SearchVolume  int        `json:"search_volume"`
	IsTracking    bool       `json:"is_tracking"`
	LastCheckedAt *time.Time `json:"last_checked_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// SeoPosition is one ranking observation for a keyword. Rows are
// append-only; a correction is a new row, not an edit.
// Change = PreviousPosition - Position, so positive means the keyword
// moved up (position 1 is best).
type SeoPosition struct {
	ID               int64     `json:"id"`
	KeywordID        int64     `json:"keyword_id"`
	Date             time.Time `json:"date"`
	Position         int       `json:"position"`
	PreviousPosition *int      `json:"previous_position,omitempty"`
	Change           int       `json:"change"`
	Clicks           int       `json:"clicks"`
	Impressions      int       `json:"impressions"`
	CTR              float64   `json:"ctr"`
	CreatedAt        time.Time `json:"created_at"`
}

// SeoContentGap is a topic with search demand and no covering content
type SeoContentGap struct {
	ID               int64     `json:"id"`
	ForumID          int64     `json:"forum_id"`
	Topic            string    `json:"topic"`
	OpportunityScore float64   `json:"opportunity_score"`
	Addressed        bool      `json:"addressed"`
	TargetURL        *string   `json:"target_url,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// SeoWeeklyReport is an immutable weekly rollup. ReportData is an
// opaque payload stored and returned verbatim.
type SeoWeeklyReport struct {
	ID             int64           `json:"id"`
	ForumID        int64           `json:"forum_id"`
	ReportDate     time.Time       `json:"report_date"`
	OrganicTraffic int             `json:"organic_traffic"`
	AvgPosition    float64         `json:"avg_position"`
	TotalKeywords  int             `json:"total_keywords"`
	ReportData     json.RawMessage `json:"report_data,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}
