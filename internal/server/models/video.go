package models

import "time"

// Video is a published video record owned by an account. Media files live in
// object storage; the record keeps their keys and public URLs.
type Video struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	VideoKey     string    `json:"-"`
	VideoURL     string    `json:"videoFile"`
	ThumbnailKey string    `json:"-"`
	ThumbnailURL string    `json:"thumbnail"`
	Duration     float64   `json:"duration"`
	Views        int64     `json:"views"`
	IsPublished  bool      `json:"isPublished"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
