package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"bakery-backend/internal/apperr"
	"bakery-backend/internal/model"
	"bakery-backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	accessTokenTTL  = 24 * time.Hour
	refreshTokenTTL = 7 * 24 * time.Hour
)

// DTOs for Request validation
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// DTO for returning User without exposing sensitive data (e.g. password)
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt string    `json:"created_at"`
}

// UserService defines the interface for business logic related to User
type UserService interface {
	Register(ctx context.Context, req RegisterRequest) (*UserResponse, error)
	Login(ctx context.Context, req LoginRequest) (*TokenPairResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPairResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	GetUserByID(ctx context.Context, id string) (*UserResponse, error)
	SeedAdmin(ctx context.Context, name, email, password string) error
}

type userService struct {
	repo repository.UserRepository
}

// NewUserService returns a new instance of UserService
func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

// Helper: parse model to standard json API response
func mapToResponse(user *model.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func jwtSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default_super_secret_key"
	}
	return []byte(secret)
}

func signAccessToken(user *model.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": user.Role,
		"exp":  time.Now().Add(accessTokenTTL).Unix(),
	})
	return token.SignedString(jwtSecret())
}

func newRefreshToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func (s *userService) issueTokens(ctx context.Context, user *model.User) (*TokenPairResponse, error) {
	access, err := signAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to sign token", apperr.ErrStorage)
	}
	refresh, err := newRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to generate refresh token", apperr.ErrStorage)
	}
	rt := &model.RefreshToken{
		UserID:    user.ID,
		Token:     refresh,
		ExpiresAt: time.Now().Add(refreshTokenTTL),
	}
	if err := s.repo.CreateRefreshToken(ctx, rt); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}
	return &TokenPairResponse{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *userService) Register(ctx context.Context, req RegisterRequest) (*UserResponse, error) {
	// Basic Email format validation fallback
	emailRegex := regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,4}$`)
	if !emailRegex.MatchString(req.Email) {
		return nil, fmt.Errorf("%w: invalid email format", apperr.ErrValidation)
	}
	if len(req.Password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", apperr.ErrValidation)
	}

	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("%w: email already exists", apperr.ErrValidation)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.New("failed to hash password")
	}

	user := &model.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashedPassword),
		Role:     model.RoleStaff,
		CartData: map[string]int{},
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}

	return mapToResponse(user), nil
}

func (s *userService) Login(ctx context.Context, req LoginRequest) (*TokenPairResponse, error) {
	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid email or password", apperr.ErrValidation)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("%w: invalid email or password", apperr.ErrValidation)
	}
	return s.issueTokens(ctx, user)
}

// Refresh rotates the refresh token: the presented token is deleted and a
// fresh pair is issued.
func (s *userService) Refresh(ctx context.Context, refreshToken string) (*TokenPairResponse, error) {
	rt, err := s.repo.GetRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: refresh token", apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}
	if time.Now().After(rt.ExpiresAt) {
		_ = s.repo.DeleteRefreshToken(ctx, refreshToken)
		return nil, fmt.Errorf("%w: refresh token expired", apperr.ErrValidation)
	}
	if err := s.repo.DeleteRefreshToken(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}
	return s.issueTokens(ctx, &rt.User)
}

func (s *userService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := s.repo.DeleteRefreshToken(ctx, refreshToken); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}
	return nil
}

func (s *userService) GetUserByID(ctx context.Context, id string) (*UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", apperr.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}
	return mapToResponse(user), nil
}

// SeedAdmin creates the admin account on first boot. A no-op when the
// email is already registered.
func (s *userService) SeedAdmin(ctx context.Context, name, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errors.New("failed to hash password")
	}
	admin := &model.User{
		Name:     name,
		Email:    email,
		Password: string(hashedPassword),
		Role:     model.RoleAdmin,
		CartData: map[string]int{},
	}
	return s.repo.Create(ctx, admin)
}
