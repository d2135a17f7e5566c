package group

import (
	"context"

	"github.com/google/uuid"

	"github.com/churchcomm/admin-api/internal/model"
	"github.com/churchcomm/admin-api/internal/repository"
)

// Service manages named recipient groups.
type Service interface {
	Create(ctx context.Context, churchID uuid.UUID, req *model.CreateGroupRequest) (*model.Group, error)
	Get(ctx context.Context, churchID, id uuid.UUID) (*model.Group, error)
	List(ctx context.Context, churchID uuid.UUID) ([]*model.Group, error)
	Update(ctx context.Context, churchID, id uuid.UUID, req *model.UpdateGroupRequest) (*model.Group, error)
	Delete(ctx context.Context, churchID, id uuid.UUID) error
}

type service struct {
	groups repository.GroupRepository
}

func NewService(groups repository.GroupRepository) Service {
	return &service{groups: groups}
}

func (s *service) Create(ctx context.Context, churchID uuid.UUID, req *model.CreateGroupRequest) (*model.Group, error) {
	group := &model.Group{
		ChurchID:    churchID,
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.groups.Create(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

func (s *service) Get(ctx context.Context, churchID, id uuid.UUID) (*model.Group, error) {
	return s.groups.Get(ctx, churchID, id)
}

func (s *service) List(ctx context.Context, churchID uuid.UUID) ([]*model.Group, error) {
	return s.groups.List(ctx, churchID)
}

func (s *service) Update(ctx context.Context, churchID, id uuid.UUID, req *model.UpdateGroupRequest) (*model.Group, error) {
	group, err := s.groups.Get(ctx, churchID, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		group.Name = *req.Name
	}
	if req.Description != nil {
		group.Description = *req.Description
	}
	if err := s.groups.Update(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

func (s *service) Delete(ctx context.Context, churchID, id uuid.UUID) error {
	return s.groups.Delete(ctx, churchID, id)
}
