package model

import (
	"time"
)

type UserType string

const (
	UserTypeEmployee UserType = "Employee"
	UserTypeAdmin    UserType = "Admin"
)

func (t UserType) Valid() bool {
	return t == UserTypeEmployee || t == UserTypeAdmin
}

type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"` // Not exposed
	Type           UserType  `json:"type"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Session is the connected user as persisted under the "user" key of the
// session storage.
type Session struct {
	Type   UserType `json:"type"`
	Email  string   `json:"email"`
	Status string   `json:"status,omitempty"`
}

const SessionStatusConnected = "connected"

func (s Session) IsAdmin() bool {
	return s.Type == UserTypeAdmin
}
