package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/tgo/chariott/internal/model"
	"github.com/tgo/chariott/internal/pkg/jwt"
	"github.com/tgo/chariott/internal/repository"
)

const minPasswordLength = 8

type UserService struct {
	users      *repository.UserRepository
	counter    InteractionCounter
	jwtManager *jwt.Manager
	expiresIn  int
	logger     *slog.Logger
}

func NewUserService(users *repository.UserRepository, counter InteractionCounter, jwtManager *jwt.Manager, expireMin int) *UserService {
	return &UserService{
		users:      users,
		counter:    counter,
		jwtManager: jwtManager,
		expiresIn:  expireMin * 60,
		logger:     slog.Default().With("service", "user"),
	}
}

type RegisterRequest struct {
	Email     string          `json:"email" binding:"required"`
	Password  string          `json:"password" binding:"required"`
	FirstName string          `json:"first_name"`
	LastName  string          `json:"last_name"`
	UserType  model.UserType  `json:"user_type" binding:"required"`
	StaffType model.StaffType `json:"staff_type"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresIn   int         `json:"expires_in"`
	User        *model.User `json:"user"`
}

func (s *UserService) Register(ctx context.Context, req *RegisterRequest) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, validationf("invalid email %q", req.Email)
	}
	if len(req.Password) < minPasswordLength {
		return nil, validationf("password must be at least %d characters", minPasswordLength)
	}
	switch req.UserType {
	case model.UserTypeStaff:
		if !req.StaffType.Valid() {
			return nil, validationf("staff users need a valid staff_type")
		}
	case model.UserTypeNormal:
		if req.StaffType != "" {
			return nil, validationf("staff_type is only allowed for staff users")
		}
	default:
		return nil, validationf("user_type must be %q or %q", model.UserTypeNormal, model.UserTypeStaff)
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: email %s already registered", ErrConflict, email)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, upstream("load user", err)
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Email:        email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: hash,
		UserType:     req.UserType,
		StaffType:    req.StaffType,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, upstream("create user", err)
	}
	s.logger.Info("user registered", "user_id", user.ID, "user_type", user.UserType)
	return user, nil
}

// Login checks credentials, issues an access token and counts the login as
// an interaction.
func (s *UserService) Login(ctx context.Context, req *LoginRequest) (*TokenResponse, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, upstream("load user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrUnauthorized
	}

	token, err := s.jwtManager.GenerateAccessToken(user.ID, string(user.UserType))
	if err != nil {
		return nil, err
	}
	if n, err := s.counter.Increment(ctx, user.ID); err != nil {
		s.logger.Warn("failed to count login", "user_id", user.ID, "error", err)
	} else {
		user.InteractionCounter = n
	}

	return &TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   s.expiresIn,
		User:        user,
	}, nil
}

func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, upstream("list users", err)
	}
	return users, nil
}

func (s *UserService) ListByType(ctx context.Context, userType model.UserType) ([]model.User, error) {
	users, err := s.users.ListByType(ctx, userType)
	if err != nil {
		return nil, upstream("list users", err)
	}
	return users, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*model.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, lookup("user", id, err)
	}
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	deleted, err := s.users.Delete(ctx, id)
	if err != nil {
		return upstream("delete user", err)
	}
	if !deleted {
		return notFound("user", id)
	}
	return nil
}

func (s *UserService) GetPreferences(ctx context.Context, id string) (model.JSONMap, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.touch(ctx, id)
	if user.Preferences == nil {
		return model.JSONMap{}, nil
	}
	return user.Preferences, nil
}

func (s *UserService) UpdatePreferences(ctx context.Context, id string, prefs model.JSONMap) (model.JSONMap, error) {
	if prefs == nil {
		prefs = model.JSONMap{}
	}
	updated, err := s.users.UpdatePreferences(ctx, id, prefs)
	if err != nil {
		return nil, upstream("update preferences", err)
	}
	if !updated {
		return nil, notFound("user", id)
	}
	s.touch(ctx, id)
	return prefs, nil
}

func (s *UserService) Interactions(ctx context.Context, id string) (int64, error) {
	return s.counter.Get(ctx, id)
}

// touch counts one interaction for id, logging instead of failing.
func (s *UserService) touch(ctx context.Context, id string) {
	if _, err := s.counter.Increment(ctx, id); err != nil {
		s.logger.Warn("failed to count interaction", "user_id", id, "error", err)
	}
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}
