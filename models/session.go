package models

import "time"

// Session is the locally persisted authentication state of the client.
// It survives restarts so the user does not have to log in again while
// the token is still valid.
type Session struct {
	UserID  int64     `json:"user_id"`
	Login   string    `json:"login"`
	Token   string    `json:"token"`
	SavedAt time.Time `json:"saved_at"`
}
