package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/churchcomm/admin-api/internal/model"
	"github.com/churchcomm/admin-api/internal/repository"
	"github.com/churchcomm/admin-api/pkg/auth"
	apperrors "github.com/churchcomm/admin-api/pkg/errors"
	"github.com/churchcomm/admin-api/pkg/logger"
	"github.com/churchcomm/admin-api/pkg/security"
)

// Service handles church registration and login.
type Service interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.TokenResponse, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error)
	Me(ctx context.Context, churchID uuid.UUID) (*model.Church, error)
}

type service struct {
	churches repository.ChurchRepository
	hasher   security.PasswordHasher
	jwt      auth.JWTService
	logger   *logger.Logger
}

func NewService(churches repository.ChurchRepository, hasher security.PasswordHasher, jwt auth.JWTService, logger *logger.Logger) Service {
	return &service{churches: churches, hasher: hasher, jwt: jwt, logger: logger}
}

func (s *service) Register(ctx context.Context, req *model.RegisterRequest) (*model.TokenResponse, error) {
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.BadRequest("invalid password", err)
	}

	church := &model.Church{
		Name:         req.Name,
		PastorName:   req.PastorName,
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Phone:        req.Phone,
	}
	if err := s.churches.Create(ctx, church); err != nil {
		return nil, err
	}

	s.logger.Info("church registered", "church_id", church.ID, "email", church.Email)
	return s.tokenResponse(church)
}

func (s *service) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	church, err := s.churches.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		// do not reveal whether the account exists
		return nil, apperrors.Unauthorized(err)
	}
	if err := s.hasher.Compare(church.PasswordHash, req.Password); err != nil {
		return nil, apperrors.Unauthorized(err)
	}
	return s.tokenResponse(church)
}

func (s *service) Me(ctx context.Context, churchID uuid.UUID) (*model.Church, error) {
	return s.churches.Get(ctx, churchID)
}

func (s *service) tokenResponse(church *model.Church) (*model.TokenResponse, error) {
	token, err := s.jwt.GenerateAccessToken(church.ID, church.Email)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &model.TokenResponse{AccessToken: token, Church: church}, nil
}
