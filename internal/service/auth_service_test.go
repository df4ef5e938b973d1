package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"bcs_edu_backend/internal/config"
	"bcs_edu_backend/internal/repository"
	"bcs_edu_backend/internal/util"
)

func newAuthService(db *gorm.DB) *AuthService {
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.ExpireTime = time.Hour
	return NewAuthService(repository.NewUserRepository(db), cfg)
}

func TestRegisterAndLogin(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(db)

	registered, err := svc.Register(RegisterRequest{
		Name:     "Test Student",
		Email:    "student@test.local",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, registered.Token)
	assert.NotEqual(t, "correct-horse", registered.User.Password, "password must be stored hashed")

	claims, err := util.ParseJWT(registered.Token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, claims.UserID)

	logged, err := svc.Login(LoginRequest{Email: "student@test.local", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, logged.User.ID)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(db)

	_, err := svc.Register(RegisterRequest{Name: "a", Email: "dup@test.local", Password: "password-1"})
	require.NoError(t, err)

	_, err = svc.Register(RegisterRequest{Name: "b", Email: "dup@test.local", Password: "password-2"})
	assert.True(t, errors.Is(err, util.ErrEmailRegistered))
}

func TestLogin_Failures(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(db)

	_, err := svc.Login(LoginRequest{Email: "nobody@test.local", Password: "whatever"})
	assert.True(t, errors.Is(err, util.ErrUserNotFound))

	_, err = svc.Register(RegisterRequest{Name: "a", Email: "a@test.local", Password: "password-1"})
	require.NoError(t, err)

	_, err = svc.Login(LoginRequest{Email: "a@test.local", Password: "wrong"})
	assert.True(t, errors.Is(err, util.ErrPermissionDenied))
}
