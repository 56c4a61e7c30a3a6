package domain

import "time"

// ContentType tags the table a polymorphic content reference points at
type ContentType string

const (
	ContentTypeQuestion ContentType = "question"
	ContentTypeAnswer   ContentType = "answer"
	ContentTypeMainPage ContentType = "main_page"
)

// ContentRef is a weak (type, id) pointer into a content table.
// It is resolved through a dispatch table, never owned.
type ContentRef struct {
	Type ContentType `json:"type"`
	ID   int64       `json:"id"`
}

// ContentInterlink is a directed, scored link suggestion between two
// content items. A bidirectional relationship is two rows.
type ContentInterlink struct {
	ID             int64       `json:"id"`
	SourceType     ContentType `json:"source_type"`
	SourceID       int64       `json:"source_id"`
	TargetType     ContentType `json:"target_type"`
	TargetID       int64       `json:"target_id"`
	AnchorText     string      `json:"anchor_text"`
	RelevanceScore int         `json:"relevance_score"`
	IsAutomatic    bool        `json:"is_automatic"`
	CreatedAt      time.Time   `json:"created_at"`
}

// ContentItem is the resolved text of a content reference, the unit
// the relevance engine scores
type ContentItem struct {
	Ref   ContentRef `json:"ref"`
	Title string     `json:"title"`
	Body  string     `json:"body"`
}

// InterlinkSuggestion is one ranked interlink candidate
type InterlinkSuggestion struct {
	Target         ContentRef `json:"target"`
	TargetTitle    string     `json:"target_title"`
	AnchorText     string     `json:"anchor_text"`
	RelevanceScore int        `json:"relevance_score"`
	TitleBonus     int        `json:"title_bonus"`
	CombinedScore  float64    `json:"combined_score"`
}
