package service

import (
	"context"
	"fmt"
	"spotnsort/models"
	"spotnsort/repository"
	"spotnsort/utils"

	"github.com/apex/log"
	"github.com/google/uuid"
)

// SessionService binds a signed session token to the user mirrored in the session store
type SessionService struct {
	repo   *repository.SessionRepository
	secret []byte
}

// NewSessionService creates a new session service
func NewSessionService(repo *repository.SessionRepository, secret string) *SessionService {
	return &SessionService{repo: repo, secret: []byte(secret)}
}

// Session is a resolved login
type Session struct {
	ID   string
	User *models.User
}

// Start stores user under a fresh session id and returns the signed token
func (s *SessionService) Start(ctx context.Context, user *models.User) (string, error) {
	sid := uuid.New().String()
	stored := user.Public()
	if err := s.repo.SetCurrentUser(ctx, sid, &stored); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	token, err := utils.GenerateSessionToken(sid, string(user.Role), s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	log.WithFields(log.Fields{"session": sid, "role": user.Role}).Info("[session] started")
	return token, nil
}

// Resolve returns the session for token, or ErrUnauthenticated
func (s *SessionService) Resolve(ctx context.Context, token string) (*Session, error) {
	claims, err := utils.ParseSessionToken(token, s.secret)
	if err != nil {
		return nil, models.ErrUnauthenticated
	}
	user, err := s.repo.GetCurrentUser(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.ErrUnauthenticated
	}
	return &Session{ID: claims.SessionID, User: user}, nil
}

// End removes the stored user. Ending an unknown session is not an error.
func (s *SessionService) End(ctx context.Context, sessionID string) error {
	if err := s.repo.Logout(ctx, sessionID); err != nil {
		return err
	}
	log.WithField("session", sessionID).Info("[session] ended")
	return nil
}
