package domain

import "time"

// Analytics event types
const (
	EventPageView       = "page_view"
	EventSearch         = "search"
	EventLeadFormView   = "lead_form_view"
	EventLeadFormSubmit = "lead_form_submit"
)

// AnalyticsEvent is one raw tracked event
type AnalyticsEvent struct {
	ID        int64     `json:"id"`
	ForumID   int64     `json:"forum_id"`
	SessionID string    `json:"session_id"`
	UserID    *int64    `json:"user_id,omitempty"`
	EventType string    `json:"event_type"`
	Path      string    `json:"path,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// UserEngagementMetric is a per-forum, per-day engagement rollup
type UserEngagementMetric struct {
	ID                 int64     `json:"id"`
	ForumID            int64     `json:"forum_id"`
	Date               time.Time `json:"date"`
	ActiveUsers        int       `json:"active_users"`
	PageViews          int       `json:"page_views"`
	AvgSessionDuration float64   `json:"avg_session_duration"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// ContentPerformanceMetric tracks how one piece of content performs
type ContentPerformanceMetric struct {
	ID              int64     `json:"id"`
	ForumID         int64     `json:"forum_id"`
	ContentType     string    `json:"content_type"`
	ContentID       int64     `json:"content_id"`
	Views           int       `json:"views"`
	Clicks          int       `json:"clicks"`
	EngagementScore float64   `json:"engagement_score"`
	Date            time.Time `json:"date"`
	CreatedAt       time.Time `json:"created_at"`
}

// TrendMetric pairs a windowed count with its previous-window count.
// Trend is the formatted percent ("+100%", "-12.5%") shown on the
// dashboard.
type TrendMetric struct {
	Current      int     `json:"current"`
	Previous     int     `json:"previous"`
	TrendPercent float64 `json:"trend_percent"`
	Trend        string  `json:"trend"`
}

// DashboardStats is the period-over-period dashboard summary
type DashboardStats struct {
	ForumID            int64       `json:"forum_id"`
	Period             string      `json:"period"`
	Questions          TrendMetric `json:"questions"`
	Answers            TrendMetric `json:"answers"`
	PageViews          TrendMetric `json:"page_views"`
	LeadSubmissions    TrendMetric `json:"lead_submissions"`
	AvgSessionDuration float64     `json:"avg_session_duration"`
}

// DailyTraffic is one calendar day of traffic; series are always
// fixed-length with zero-filled gaps
type DailyTraffic struct {
	Date      string `json:"date"`
	PageViews int    `json:"page_views"`
	Visitors  int    `json:"visitors"`
}

// PositionBucket is one bar of the ranking distribution histogram
type PositionBucket struct {
	Label string `json:"label"`
	Min   int    `json:"min"`
	Max   int    `json:"max"` // 0 means open-ended
	Count int    `json:"count"`
}

// SeoRankingSummary aggregates a forum's keyword rankings for a period
type SeoRankingSummary struct {
	ForumID       int64            `json:"forum_id"`
	Period        string           `json:"period"`
	TotalKeywords int              `json:"total_keywords"`
	Tracked       int              `json:"tracked"`
	AvgPosition   float64          `json:"avg_position"`
	Improved      int              `json:"improved"`
	Declined      int              `json:"declined"`
	Unchanged     int              `json:"unchanged"`
	Distribution  []PositionBucket `json:"distribution"`
	TopGaps       []*SeoContentGap `json:"top_gaps,omitempty"`
}
