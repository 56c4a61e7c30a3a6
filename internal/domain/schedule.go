package domain

import "time"

// Content schedule statuses
const (
	ScheduleStatusDraft     = "draft"
	ScheduleStatusScheduled = "scheduled"
	ScheduleStatusPublished = "published"
	ScheduleStatusCancelled = "cancelled"
)

// ContentSchedule plans a batch of generated Q&A content around a
// keyword. QuestionIDs stays nil until the schedule is published.
type ContentSchedule struct {
	ID           int64     `json:"id"`
	ForumID      int64     `json:"forum_id"`
	UserID       int64     `json:"user_id"`
	Keyword      string    `json:"keyword"`
	ContentType  string    `json:"content_type"`
	ScheduledFor time.Time `json:"scheduled_for"`
	Status       string    `json:"status"`
	QuestionIDs  []int64   `json:"question_ids,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
