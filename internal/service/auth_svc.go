package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/ollema/skiftesgatan-sub000/internal/domain"
	"github.com/ollema/skiftesgatan-sub000/pkg/auth"
)

type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	ByEmail(ctx context.Context, email string) (*domain.User, error)
	ByID(ctx context.Context, id string) (*domain.User, error)
	Update(ctx context.Context, u *domain.User) error
}

type AuthSvc struct {
	users      UserStore
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewAuthSvc(users UserStore, accessTTL, refreshTTL time.Duration) *AuthSvc {
	return &AuthSvc{users: users, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

func (s *AuthSvc) Register(ctx context.Context, email, password, name, apartmentID string) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         domain.RoleResident,
		ApartmentID:  apartmentID,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (s *AuthSvc) Login(ctx context.Context, email, password string) (*domain.User, string, string, error) {
	u, err := s.users.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", "", ErrInvalidCredentials
		}
		return nil, "", "", fmt.Errorf("load user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, "", "", ErrInvalidCredentials
	}
	access, err := auth.CreateAccessToken(u.ID, string(u.Role), u.Email, u.ApartmentID, s.accessTTL)
	if err != nil {
		return nil, "", "", fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := auth.CreateAccessToken(u.ID, string(u.Role), u.Email, u.ApartmentID, s.refreshTTL)
	if err != nil {
		return nil, "", "", fmt.Errorf("sign refresh token: %w", err)
	}
	return u, access, refresh, nil
}
