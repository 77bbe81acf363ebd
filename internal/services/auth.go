package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/farellandr/museum-tickets/internal/helpers"
	"github.com/farellandr/museum-tickets/internal/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserRepository interface {
	FindActiveByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user *models.User, roleName string) error
}

type AuthSettings struct {
	Secret     string
	TokenTTL   time.Duration
	BcryptCost int
}

type Profile struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
	Role  string    `json:"role"`
}

type LoginResult struct {
	AccessToken string  `json:"access_token"`
	User        Profile `json:"user"`
}

type AdminInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

type AuthService struct {
	users    UserRepository
	settings AuthSettings
	now      func() time.Time
}

func NewAuthService(users UserRepository, settings AuthSettings) *AuthService {
	if settings.BcryptCost == 0 {
		settings.BcryptCost = bcrypt.DefaultCost
	}
	if settings.TokenTTL == 0 {
		settings.TokenTTL = 24 * time.Hour
	}
	return &AuthService{
		users:    users,
		settings: settings,
		now:      time.Now,
	}
}

// Login checks the credentials of an active user and issues an access token.
// Unknown users and wrong passwords fail the same way.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.FindActiveByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, Unauthorized("Invalid credentials")
	}
	if err != nil {
		return nil, fmt.Errorf("finding user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, Unauthorized("Invalid credentials")
	}

	profile := profileOf(user)
	token, err := helpers.NewAccessToken(s.settings.Secret, user.ID.String(), user.Email, profile.Role, profile.Name, s.now(), s.settings.TokenTTL)
	if err != nil {
		return nil, err
	}

	return &LoginResult{AccessToken: token, User: profile}, nil
}

func (s *AuthService) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, Unauthorized("User not found")
	}

	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, Unauthorized("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("finding user: %w", err)
	}

	profile := profileOf(user)
	return &profile, nil
}

func (s *AuthService) CreateAdmin(ctx context.Context, input AdminInput) (*models.User, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" || input.Password == "" {
		return nil, BadRequest("Email and password are required")
	}

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, BadRequest("User already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.settings.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		IsActive:     true,
		IsVerified:   true,
	}
	if err := s.users.Create(ctx, user, models.RoleAdmin); err != nil {
		return nil, err
	}
	return user, nil
}

// EnsureAdmin creates the admin account unless the email is already taken.
func (s *AuthService) EnsureAdmin(ctx context.Context, input AdminInput) (bool, error) {
	exists, err := s.users.ExistsByEmail(ctx, strings.TrimSpace(input.Email))
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	if _, err := s.CreateAdmin(ctx, input); err != nil {
		return false, err
	}
	return true, nil
}

func profileOf(user *models.User) Profile {
	return Profile{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.FullName(),
		Role:  user.Role.Name,
	}
}
