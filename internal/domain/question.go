package domain

import "time"

// Question is a user-authored or generated Q&A thread starter.
// Views is monotonic; it only moves through QuestionRepository.View.
type Question struct {
	ID         int64     `json:"id"`
	ForumID    int64     `json:"forum_id"`
	CategoryID int64     `json:"category_id"`
	UserID     int64     `json:"user_id"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	Views      int64     `json:"views"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Answer replies to a question. Its vote tally is derived from Vote
// rows at read time, never stored.
type Answer struct {
	ID         int64     `json:"id"`
	QuestionID int64     `json:"question_id"`
	UserID     int64     `json:"user_id"`
	Body       string    `json:"body"`
	IsAccepted bool      `json:"is_accepted"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Vote is one user's current vote on one answer (upsert semantics)
type Vote struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	AnswerID  int64     `json:"answer_id"`
	IsUpvote  bool      `json:"is_upvote"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
