package auth

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/churchcomm/admin-api/internal/model"
	pkgauth "github.com/churchcomm/admin-api/pkg/auth"
	apperrors "github.com/churchcomm/admin-api/pkg/errors"
	"github.com/churchcomm/admin-api/pkg/logger"
	"github.com/churchcomm/admin-api/pkg/security"
)

type fakeChurches struct {
	byEmail map[string]*model.Church
	byID    map[uuid.UUID]*model.Church
}

func newFakeChurches() *fakeChurches {
	return &fakeChurches{byEmail: map[string]*model.Church{}, byID: map[uuid.UUID]*model.Church{}}
}

func (f *fakeChurches) Create(_ context.Context, c *model.Church) error {
	if _, exists := f.byEmail[c.Email]; exists {
		return apperrors.Conflict("church with this email already exists", nil)
	}
	c.ID = uuid.New()
	f.byEmail[c.Email] = c
	f.byID[c.ID] = c
	return nil
}

func (f *fakeChurches) Get(_ context.Context, id uuid.UUID) (*model.Church, error) {
	if c, ok := f.byID[id]; ok {
		return c, nil
	}
	return nil, apperrors.NotFound("church", nil)
}

func (f *fakeChurches) GetByEmail(_ context.Context, email string) (*model.Church, error) {
	if c, ok := f.byEmail[email]; ok {
		return c, nil
	}
	return nil, apperrors.NotFound("church", nil)
}

func (f *fakeChurches) Update(_ context.Context, c *model.Church) error {
	f.byID[c.ID] = c
	return nil
}

func newTestService() (Service, *fakeChurches, pkgauth.JWTService) {
	churches := newFakeChurches()
	jwtSvc := pkgauth.NewJWTService("test-secret", time.Hour)
	svc := NewService(churches, security.NewBcryptHasher(4), jwtSvc,
		logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: os.Stderr}))
	return svc, churches, jwtSvc
}

func registerReq() *model.RegisterRequest {
	return &model.RegisterRequest{
		Name:       "Grace Chapel",
		PastorName: "Jane Doe",
		Email:      "Admin@GraceChapel.org",
		Password:   "sup3rsecret",
	}
}

func TestRegister(t *testing.T) {
	svc, _, jwtSvc := newTestService()

	res, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)

	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, "admin@gracechapel.org", res.Church.Email, "email is normalized")
	assert.NotEqual(t, "sup3rsecret", res.Church.PasswordHash)

	claims, err := jwtSvc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, res.Church.ID.String(), claims.ChurchID)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), registerReq())
	assert.True(t, apperrors.IsCode(err, apperrors.ErrConflict))
}

func TestLogin(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)

	res, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "admin@gracechapel.org",
		Password: "sup3rsecret",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), &model.LoginRequest{
		Email:    "admin@gracechapel.org",
		Password: "wrong-password",
	})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrUnauthorized))
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever123",
	})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrUnauthorized),
		"unknown account must look like a bad password")
}
