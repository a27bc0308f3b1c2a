// Package storage holds the per-visitor key-value session storage, the
// server-side counterpart of the browser's localStorage.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"billed/internal/domain/model"
)

// UserKey is the key under which the connected user is stored.
const UserKey = "user"

// ErrNoSession is returned by LoadUser when nobody is connected.
var ErrNoSession = errors.New("no user session")

// Storage is a string key-value store scoped to one visitor.
type Storage interface {
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}

// Provider opens the storage of a session id.
type Provider interface {
	Session(id string) Storage
}

// SaveUser persists the connected user under UserKey.
func SaveUser(ctx context.Context, st Storage, user model.Session) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encoding session user: %w", err)
	}
	return st.SetItem(ctx, UserKey, string(raw))
}

// LoadUser reads the connected user. It returns ErrNoSession when the key is
// absent.
func LoadUser(ctx context.Context, st Storage) (*model.Session, error) {
	raw, ok, err := st.GetItem(ctx, UserKey)
	if err != nil {
		return nil, fmt.Errorf("reading session user: %w", err)
	}
	if !ok {
		return nil, ErrNoSession
	}
	var user model.Session
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, fmt.Errorf("decoding session user: %w", err)
	}
	if !user.Type.Valid() {
		return nil, fmt.Errorf("session user has unknown type %q: %w", user.Type, ErrNoSession)
	}
	return &user, nil
}

// ClearUser disconnects the user.
func ClearUser(ctx context.Context, st Storage) error {
	return st.RemoveItem(ctx, UserKey)
}
