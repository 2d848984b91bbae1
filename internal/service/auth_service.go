package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/noah-isme/samms-api/internal/datastore"
	"github.com/noah-isme/samms-api/internal/dto"
	"github.com/noah-isme/samms-api/internal/models"
)

// AuthService matches login attempts against stored accounts. Passwords are
// kept and compared in plain text; the token only routes roles in the UI.
type AuthService interface {
	Login(ctx context.Context, payload dto.LoginRequest) (dto.LoginResponse, error)
}

type authService struct {
	store     *datastore.DataStore
	validator *validator.Validate
	secret    []byte
	ttl       time.Duration
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAuthService constructs the login service.
func NewAuthService(store *datastore.DataStore, validate *validator.Validate, secret string, ttl time.Duration, logger zerolog.Logger) AuthService {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &authService{
		store:     store,
		validator: validate,
		secret:    []byte(secret),
		ttl:       ttl,
		logger:    logger.With().Str("component", "auth_service").Logger(),
		now:       time.Now,
	}
}

func (s *authService) Login(_ context.Context, payload dto.LoginRequest) (dto.LoginResponse, error) {
	payload.Normalize()
	if err := s.validator.Struct(payload); err != nil {
		return dto.LoginResponse{}, validationFailure(err)
	}

	var (
		user  models.User
		found bool
	)
	s.store.View(func(db *models.Store) {
		for _, candidate := range db.Users {
			if candidate.Username == payload.Username && candidate.Password == payload.Password && candidate.Role == payload.Role {
				user, found = candidate, true
				return
			}
		}
	})
	if !found {
		s.logger.Info().Str("username", payload.Username).Str("role", payload.Role).Msg("login rejected")
		return dto.LoginResponse{}, ErrInvalidCredentials
	}

	expiresAt := s.now().UTC().Add(s.ttl)
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": user.Role,
		"exp":  expiresAt.Unix(),
		"iat":  s.now().UTC().Unix(),
	}
	studentID := ""
	if user.IsStudent() {
		studentID = user.StudentID
	}
	if studentID != "" {
		claims["student_id"] = studentID
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return dto.LoginResponse{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return dto.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User: dto.UserProfile{
			ID:        user.ID,
			Username:  user.Username,
			Role:      user.Role,
			StudentID: studentID,
		},
	}, nil
}
