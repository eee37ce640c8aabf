package repository

import (
	"context"
	"spotnsort/models"
	"strings"
)

const usersKey = "spotnsort_users"

// AccountRepository is the local user registry used when AUTH_MODE=local.
// Passwords are stored as bcrypt hashes.
type AccountRepository struct {
	store KVStore
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(store KVStore) *AccountRepository {
	return &AccountRepository{store: store}
}

// ListUsers returns all registered users
func (r *AccountRepository) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if _, err := getJSON(ctx, r.store, usersKey, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// FindUser returns the user registered with email (case-insensitive) and role, or nil
func (r *AccountRepository) FindUser(ctx context.Context, email string, role models.Role) (*models.User, error) {
	users, err := r.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if strings.EqualFold(users[i].Email, email) && users[i].Role == role {
			return &users[i], nil
		}
	}
	return nil, nil
}

// AddUser appends user to the registry
func (r *AccountRepository) AddUser(ctx context.Context, user models.User) error {
	users, err := r.ListUsers(ctx)
	if err != nil {
		return err
	}
	users = append(users, user)
	return setJSON(ctx, r.store, usersKey, users)
}
