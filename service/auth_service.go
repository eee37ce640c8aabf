package service

import (
	"context"
	"fmt"
	"regexp"
	"spotnsort/config"
	"spotnsort/models"
	"spotnsort/repository"
	"spotnsort/utils"
	"strings"
	"sync"

	"github.com/apex/log"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\d{10}$`)
)

// AuthService handles registration and login, either against the remote auth
// collaborator or against the local user registry.
type AuthService struct {
	mode     string
	backend  AuthBackend
	accounts *repository.AccountRepository
	sessions *SessionService

	// serializes local registrations so the duplicate check and append stay atomic
	mu sync.Mutex
}

// NewAuthService creates a new auth service. backend may be nil in local mode.
func NewAuthService(
	mode string,
	backend AuthBackend,
	accounts *repository.AccountRepository,
	sessions *SessionService,
) *AuthService {
	return &AuthService{
		mode:     mode,
		backend:  backend,
		accounts: accounts,
		sessions: sessions,
	}
}

// ValidateRegistration applies the register form rules in order and returns
// the first failure.
func ValidateRegistration(req *models.RegisterRequest) error {
	if req.Role == "" {
		req.Role = models.RoleUser
	}
	if req.Role != models.RoleUser && req.Role != models.RoleAuthority {
		return models.NewValidationError("role", "role must be user or authority")
	}
	if req.Password == "" {
		return models.NewValidationError("password", "Password is required")
	}
	if req.Password != req.ConfirmPassword {
		return models.NewValidationError("confirmPassword", "Passwords do not match")
	}
	if !emailPattern.MatchString(req.Email) {
		return models.NewValidationError("email", "Please enter a valid email address.")
	}
	if !phonePattern.MatchString(req.Phone) {
		return models.NewValidationError("phone", "Phone number must be exactly 10 digits.")
	}
	if req.Role == models.RoleAuthority {
		if req.IDNumber == "" && req.IDFile == "" {
			return models.NewValidationError("idNumber", "Please provide either ID Number or upload your ID card.")
		}
		if req.AuthorityRole == "" {
			return models.NewValidationError("authorityRole", "Please select your authority role.")
		}
	}
	return nil
}

// Register validates req, creates the account and starts a session
func (s *AuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
	if err := ValidateRegistration(req); err != nil {
		return nil, err
	}

	var user *models.User
	var err error
	if s.mode == config.AuthModeLocal {
		user, err = s.registerLocal(ctx, req.User)
	} else {
		user, err = s.backend.Register(ctx, &req.User)
		if err == nil && user.Email == "" {
			// Collaborator acknowledged without echoing the profile
			fallback := req.User.Public()
			user = &fallback
		}
	}
	if err != nil {
		log.WithFields(log.Fields{"email": req.Email, "role": req.Role}).Warnf("[auth] registration failed: %v", err)
		return nil, err
	}

	return s.startSession(ctx, user)
}

// Login checks credentials and starts a session
func (s *AuthService) Login(ctx context.Context, creds *models.Credentials) (*models.AuthResponse, error) {
	if creds.Email == "" || creds.Password == "" || creds.Role == "" {
		return nil, models.NewValidationError("", "email, password and role are required")
	}

	var user *models.User
	var err error
	if s.mode == config.AuthModeLocal {
		user, err = s.loginLocal(ctx, creds)
	} else {
		user, err = s.backend.Login(ctx, creds)
	}
	if err != nil {
		log.WithFields(log.Fields{"email": creds.Email, "role": creds.Role}).Warnf("[auth] login failed: %v", err)
		return nil, err
	}
	if user.Role == "" {
		user.Role = creds.Role
	}

	return s.startSession(ctx, user)
}

// Logout ends the session
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.End(ctx, sessionID)
}

func (s *AuthService) startSession(ctx context.Context, user *models.User) (*models.AuthResponse, error) {
	token, err := s.sessions.Start(ctx, user)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{User: user.Public(), Token: token}, nil
}

func (s *AuthService) registerLocal(ctx context.Context, user models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.accounts.FindUser(ctx, user.Email, user.Role)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.ErrUserExists
	}

	hashed, err := utils.HashPassword(user.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	stored := user
	stored.Email = strings.TrimSpace(user.Email)
	stored.Password = hashed
	if err := s.accounts.AddUser(ctx, stored); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	public := stored.Public()
	return &public, nil
}

func (s *AuthService) loginLocal(ctx context.Context, creds *models.Credentials) (*models.User, error) {
	user, err := s.accounts.FindUser(ctx, creds.Email, creds.Role)
	if err != nil {
		return nil, err
	}
	if user == nil || utils.CheckPassword(creds.Password, user.Password) != nil {
		return nil, models.ErrInvalidCredentials
	}
	public := user.Public()
	return &public, nil
}
