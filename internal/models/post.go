package models

import "time"

type ScheduledPost struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Images    []string  `json:"images"`
	Date      string    `json:"date"` // 2006-01-02
	Time      string    `json:"time"` // 15:04
	Platforms []string  `json:"platform"`
	Status    string    `json:"status"` // scheduled, published, failed
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

const (
	PostStatusScheduled = "scheduled"
	PostStatusPublished = "published"
	PostStatusFailed    = "failed"
)

// FirstImage returns the image reference the platform adapters consume.
// Only a single image is attached per publish attempt.
func (p *ScheduledPost) FirstImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}
