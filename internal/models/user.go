package models

import "time"

// User is the identity decoded from the bearer token or returned by the
// staff roster endpoint. Role drives UI capability only; enforcement is the
// backend's job.
type User struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Document string `json:"document"`
	Role     string `json:"role"`
}

// Session is the persisted authentication snapshot: the raw token plus the
// identity decoded from it. Stored through the state repository so every
// consumer re-reads it instead of caching tokens locally.
type Session struct {
	Token     string    `json:"token"`
	User      User      `json:"user"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChatState tracks a chat's position inside a wizard flow.
type ChatState struct {
	ChatID    int64             `json:"chat_id"`
	Step      string            `json:"step"`
	Data      map[string]string `json:"data"`
	UpdatedAt time.Time         `json:"updated_at"`
}
