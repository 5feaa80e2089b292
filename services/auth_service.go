package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"rageroom-backend/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 6

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

type SignupInput struct {
	Email    string
	Password string
	FullName string
}

// AuthService owns user accounts and session tokens.
type AuthService struct {
	DB     *gorm.DB
	Tokens *TokenIssuer
	Admins AdminPolicy
	Logger *slog.Logger
}

func NewAuthService(db *gorm.DB, tokens *TokenIssuer, admins AdminPolicy, logger *slog.Logger) *AuthService {
	return &AuthService{DB: db, Tokens: tokens, Admins: admins, Logger: logger}
}

// Signup creates a customer account and returns it with a session token.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*models.User, string, error) {
	email := normalizeEmail(in.Email)
	if !emailRegex.MatchString(email) || len(in.Password) < minPasswordLength {
		return nil, "", ErrInvalidSignup
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Email:    email,
		FullName: strings.TrimSpace(in.FullName),
		Password: string(hash),
		Role:     models.RoleCustomer,
	}
	if err := s.DB.WithContext(ctx).Create(&user).Error; err != nil {
		if isDuplicateKeyError(err) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.Tokens.Issue(user)
	if err != nil {
		return nil, "", err
	}
	s.Logger.Info("user signed up", "user_id", user.ID)
	return &user, token, nil
}

// Login verifies the credentials and returns a fresh session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, "", ErrInvalidCredentials
	}

	var user models.User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to load user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.Tokens.Issue(user)
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}

func (s *AuthService) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

// EnsureAdmins creates an admin account for every configured admin e-mail that has none.
// Existing accounts are promoted to the admin role but keep their password.
func (s *AuthService) EnsureAdmins(ctx context.Context, password string) error {
	if password == "" {
		return nil
	}
	for _, email := range s.Admins.Emails() {
		var user models.User
		err := s.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error
		switch {
		case err == nil:
			if user.Role != models.RoleAdmin {
				if err := s.DB.WithContext(ctx).Model(&user).Update("role", models.RoleAdmin).Error; err != nil {
					return fmt.Errorf("failed to promote %s: %w", email, err)
				}
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("failed to hash admin password: %w", err)
			}
			admin := models.User{Email: email, FullName: "Administrador", Password: string(hash), Role: models.RoleAdmin}
			if err := s.DB.WithContext(ctx).Create(&admin).Error; err != nil {
				return fmt.Errorf("failed to seed admin %s: %w", email, err)
			}
			s.Logger.Info("admin seeded", "email", email)
		default:
			return fmt.Errorf("failed to look up admin %s: %w", email, err)
		}
	}
	return nil
}

// Authenticate resolves a raw bearer token into its caller. Role and e-mail come from the
// user row, so a demotion or deleted account applies to tokens already issued.
func (s *AuthService) Authenticate(ctx context.Context, raw string) (Actor, error) {
	claims, err := s.Tokens.Parse(raw)
	if err != nil {
		return Actor{}, ErrUnauthenticated
	}
	user, err := s.GetUser(ctx, claims.Subject)
	if err != nil {
		return Actor{}, err
	}
	return Actor{
		UserID:  user.ID,
		Email:   user.Email,
		IsAdmin: s.Admins.IsAdmin(user.Email, user.Role),
	}, nil
}
