package models

import "time"

// TagPreference is a user's learned affinity for one tag.
type TagPreference struct {
	UserID    int64     `json:"user_id"`
	TagID     int64     `json:"tag_id"`
	TagName   string    `json:"tag"`
	Weight    float64   `json:"weight"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
