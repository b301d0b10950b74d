package api

import "time"

// Recipe is the API representation of a stored recipe. ImagePath carries a
// time-limited download URL when an image is attached; the Likes counter is
// maintained exclusively by the like ledger.
type Recipe struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Ingredients string    `json:"ingredients"`
	Description string    `json:"description"`
	ImagePath   string    `json:"image_path,omitempty"`
	Likes       int       `json:"likes"`
	CreatedAt   time.Time `json:"created_at"`
	OwnerID     uint      `json:"owner_id"`
}
