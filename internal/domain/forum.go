package domain

import "time"

// Forum represents a tenant community site
type Forum struct {
	ID           int64     `json:"id"`
	OwnerID      int64     `json:"owner_id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Description  string    `json:"description,omitempty"`
	Subdomain    *string   `json:"subdomain,omitempty"`
	CustomDomain *string   `json:"custom_domain,omitempty"`
	IsPublic     bool      `json:"is_public"`
	IsListed     bool      `json:"is_listed"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Category groups questions within a forum
type Category struct {
	ID          int64     `json:"id"`
	ForumID     int64     `json:"forum_id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
