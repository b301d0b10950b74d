package api

import "time"

// User is the API representation of a registered user. The password hash is
// deliberately absent; it never leaves the storage layer.
type User struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
