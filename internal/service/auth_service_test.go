package service

import (
	"context"
	"errors"
	"testing"

	"github.com/dujiao-next/delivery/internal/config"
	"github.com/dujiao-next/delivery/internal/constants"
	"github.com/dujiao-next/delivery/internal/models"
	"github.com/dujiao-next/delivery/internal/repository"
)

func setupAuthServiceTest(t *testing.T) (*AuthService, *models.User) {
	t.Helper()
	db := openServiceTestDB(t)
	hash, err := HashPassword("secret-pass")
	if err != nil {
		t.Fatalf("hash password failed: %v", err)
	}
	user := &models.User{
		Name:         "Dana",
		Phone:        "5550001",
		Email:        "dana@example.com",
		PasswordHash: hash,
		UserType:     constants.UserTypeDriver,
		IsActive:     true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	svc := NewAuthService(config.JWTConfig{SecretKey: "test-secret", ExpireHours: 2}, repository.NewUserRepository(db))
	return svc, user
}

func TestLoginIssuesTokenWithRole(t *testing.T) {
	svc, user := setupAuthServiceTest(t)

	for _, identifier := range []string{"5550001", "Dana@Example.com"} {
		got, token, expiresAt, err := svc.Login(context.Background(), identifier, "secret-pass")
		if err != nil {
			t.Fatalf("login with %s failed: %v", identifier, err)
		}
		if got.ID != user.ID || token == "" || expiresAt.IsZero() {
			t.Fatalf("unexpected login result: %+v %q %v", got, token, expiresAt)
		}
		if got.LastLoginAt == nil {
			t.Fatalf("last login should be recorded")
		}

		claims, err := svc.ParseJWT(token)
		if err != nil {
			t.Fatalf("parse token failed: %v", err)
		}
		if claims.UserID != user.ID || claims.Role != constants.UserTypeDriver {
			t.Fatalf("unexpected claims: %+v", claims)
		}
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, user := setupAuthServiceTest(t)
	ctx := context.Background()

	if _, _, _, err := svc.Login(ctx, "5550001", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, _, _, err := svc.Login(ctx, "nobody", "secret-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for unknown user, got %v", err)
	}

	if err := models.DB.Model(user).Update("is_active", false).Error; err != nil {
		t.Fatalf("disable user failed: %v", err)
	}
	if _, _, _, err := svc.Login(ctx, "5550001", "secret-pass"); !errors.Is(err, ErrUserDisabled) {
		t.Fatalf("expected disabled, got %v", err)
	}
}

func TestParseJWTRejectsForeignSecret(t *testing.T) {
	svc, user := setupAuthServiceTest(t)
	token, _, err := svc.GenerateJWT(user)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	other := NewAuthService(config.JWTConfig{SecretKey: "other"}, nil)
	if _, err := other.ParseJWT(token); err == nil {
		t.Fatalf("token signed with another secret must be rejected")
	}
}
