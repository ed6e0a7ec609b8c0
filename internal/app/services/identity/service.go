// Package identity verifies login credentials and registers administrative
// principals.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	domain "github.com/urbanthread/storefront/internal/app/domain/identity"
	"github.com/urbanthread/storefront/internal/app/storage"
	"github.com/urbanthread/storefront/pkg/logger"
)

var (
	// ErrInvalidCredential covers both unknown email and wrong password so
	// login failures do not reveal which accounts exist.
	ErrInvalidCredential = errors.New("invalid email or password")

	// ErrAlreadyExists is returned when registering an email already in use.
	ErrAlreadyExists = errors.New("user already registered")
)

// Service implements credential verification and registration.
type Service struct {
	users storage.UserStore
	log   *logger.Logger
}

// New creates a configured identity service.
func New(users storage.UserStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("identity")
	}
	return &Service{users: users, log: log}
}

// Login verifies the credential pair and returns the matching principal.
func (s *Service) Login(ctx context.Context, email, password string) (domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return domain.User{}, ErrInvalidCredential
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.log.WithField("email", email).Debug("login attempt for unknown user")
			return domain.User{}, ErrInvalidCredential
		}
		return domain.User{}, fmt.Errorf("load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.log.WithField("user_id", user.ID).Debug("login attempt with wrong password")
		return domain.User{}, ErrInvalidCredential
	}

	s.log.WithField("user_id", user.ID).Info("user logged in")
	return user, nil
}

// Register creates a new principal. The caller must log in separately; no
// session is created here.
func (s *Service) Register(ctx context.Context, name, email, password string) (domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if name == "" {
		return domain.User{}, fmt.Errorf("name is required")
	}
	if email == "" {
		return domain.User{}, fmt.Errorf("email is required")
	}
	if password == "" {
		return domain.User{}, fmt.Errorf("password is required")
	}

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return domain.User{}, ErrAlreadyExists
	} else if !errors.Is(err, storage.ErrNotFound) {
		return domain.User{}, fmt.Errorf("check existing user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}

	s.log.WithField("user_id", user.ID).Info("user registered")
	return user, nil
}
