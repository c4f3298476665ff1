package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/univ-fst/exam-planner-api/internal/models"
	appErrors "github.com/univ-fst/exam-planner-api/pkg/errors"
)

type stubUsers struct {
	byEmail map[string]*models.User
}

func (s *stubUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := s.byEmail[email]; ok {
		return u, nil
	}
	return nil, appErrors.ErrNotFound
}

func (s *stubUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	for _, u := range s.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, appErrors.ErrNotFound
}

func newAuthFixture(t *testing.T) *AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse-42"), bcrypt.MinCost)
	require.NoError(t, err)

	deptID := "d1"
	users := &stubUsers{byEmail: map[string]*models.User{
		"head@fst.example": {
			ID:           "u1",
			Email:        "head@fst.example",
			PasswordHash: string(hash),
			FullName:     "Head of Mathematics",
			Role:         models.RoleHead,
			DepartmentID: &deptID,
			Active:       true,
		},
		"ghost@fst.example": {
			ID:           "u2",
			Email:        "ghost@fst.example",
			PasswordHash: string(hash),
			Role:         models.RoleProfessor,
			Active:       false,
		},
	}}
	return NewAuthService(users, nil, nil, AuthConfig{
		Secret:     "test-secret",
		Expiration: time.Hour,
		Issuer:     "exam-planner-test",
	})
}

func TestLoginSuccess(t *testing.T) {
	svc := newAuthFixture(t)

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "head@fst.example",
		Password: "correct-horse-42",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "u1", resp.User.ID)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleHead, claims.Role)
	assert.Equal(t, "d1", claims.DepartmentID)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "head@fst.example",
		Password: "wrong-password-42",
	})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidCredentials))
}

func TestLoginUnknownEmailIsIndistinguishable(t *testing.T) {
	svc := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "nobody@fst.example",
		Password: "whatever-password",
	})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidCredentials),
		"unknown accounts must not be distinguishable from bad passwords")
}

func TestLoginInactiveAccount(t *testing.T) {
	svc := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "ghost@fst.example",
		Password: "correct-horse-42",
	})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInactiveAccount))
}

func TestValidateTokenRejectsForeignSignature(t *testing.T) {
	svc := newAuthFixture(t)
	other := NewAuthService(&stubUsers{}, nil, nil, AuthConfig{Secret: "another-secret", Expiration: time.Hour})

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "head@fst.example",
		Password: "correct-horse-42",
	})
	require.NoError(t, err)

	_, err = other.ValidateToken(resp.AccessToken)
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrUnauthorized))
}

func TestLoginValidatesPayload(t *testing.T) {
	svc := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "not-an-email", Password: "short"})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}
