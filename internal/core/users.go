package core

import (
	"context"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"smartscribe/internal/apperr"
	"smartscribe/internal/auth"
	"smartscribe/internal/store"
)

// UserStore is the profile-store contract the user service depends on.
type UserStore interface {
	CreateUser(ctx context.Context, user *store.UserProfile) error
	GetUserByEmail(ctx context.Context, email string) (*store.UserProfile, error)
	GetUserByUID(ctx context.Context, uid string) (*store.UserProfile, error)
	UpdateUserProfile(ctx context.Context, uid string, patch store.UserPatch) error
}

// ProfilePatch covers the only mutable profile fields.
type ProfilePatch struct {
	Name      *string
	AvatarURL *string
}

// UserService handles signup, login and profile maintenance. A profile is
// created exactly once, at signup; uid and email never change afterwards.
type UserService struct {
	users  UserStore
	tokens *auth.Manager
}

func NewUserService(users UserStore, tokens *auth.Manager) *UserService {
	return &UserService{users: users, tokens: tokens}
}

type signupInput struct {
	Email    string
	Password string
}

func (in signupInput) Validate() error {
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Email, validation.Required.Error("is required"), is.Email),
		validation.Field(&in.Password, validation.Required.Error("is required"), validation.Length(8, 72)),
	)
	if err != nil {
		return asValidation(err)
	}
	return nil
}

// Signup creates the user profile. When name is empty it defaults to the
// email's local part.
func (s *UserService) Signup(ctx context.Context, email, password, name string) (*store.UserProfile, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if err := (signupInput{Email: email, Password: password}).Validate(); err != nil {
		return nil, err
	}

	if strings.TrimSpace(name) == "" {
		name, _, _ = strings.Cut(email, "@")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &store.UserProfile{
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Login verifies credentials and issues a session token.
func (s *UserService) Login(ctx context.Context, email, password string) (string, *store.UserProfile, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return "", nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil || !auth.CheckPasswordHash(password, user.PasswordHash) {
		return "", nil, apperr.ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(user.UID)
	if err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}
	return token, user, nil
}

func (s *UserService) GetProfile(ctx context.Context, uid string) (*store.UserProfile, error) {
	user, err := s.users.GetUserByUID(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, apperr.ErrNotFound
	}
	return user, nil
}

// UpdateProfile mutates name and/or avatar URL and returns the re-fetched
// profile.
func (s *UserService) UpdateProfile(ctx context.Context, uid string, patch ProfilePatch) (*store.UserProfile, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, apperr.Validation("name", "must not be empty")
	}
	if patch.Name == nil && patch.AvatarURL == nil {
		return s.GetProfile(ctx, uid)
	}

	err := s.users.UpdateUserProfile(ctx, uid, store.UserPatch{
		Name:      patch.Name,
		AvatarURL: patch.AvatarURL,
	})
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return s.GetProfile(ctx, uid)
}
