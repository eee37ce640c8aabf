package repository

import (
	"context"
	"fmt"
	"spotnsort/models"
)

const currentUserKeyPrefix = "spotnsort_current_user"

// SessionRepository holds the currently authenticated user per browser session
type SessionRepository struct {
	store KVStore
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(store KVStore) *SessionRepository {
	return &SessionRepository{store: store}
}

func currentUserKey(sessionID string) string {
	return fmt.Sprintf("%s:%s", currentUserKeyPrefix, sessionID)
}

// SetCurrentUser persists user for the session, overwriting any prior value
func (r *SessionRepository) SetCurrentUser(ctx context.Context, sessionID string, user *models.User) error {
	return setJSON(ctx, r.store, currentUserKey(sessionID), user)
}

// GetCurrentUser returns the stored user, or nil when the session has none
func (r *SessionRepository) GetCurrentUser(ctx context.Context, sessionID string) (*models.User, error) {
	user := &models.User{}
	found, err := getJSON(ctx, r.store, currentUserKey(sessionID), user)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return user, nil
}

// Logout removes the session's user
func (r *SessionRepository) Logout(ctx context.Context, sessionID string) error {
	return r.store.Delete(ctx, currentUserKey(sessionID))
}
