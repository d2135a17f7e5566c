package template

import (
	"context"

	"github.com/google/uuid"

	"github.com/churchcomm/admin-api/internal/model"
	"github.com/churchcomm/admin-api/internal/repository"
)

// Service manages reusable message templates.
type Service interface {
	Create(ctx context.Context, churchID uuid.UUID, req *model.CreateTemplateRequest) (*model.Template, error)
	Get(ctx context.Context, churchID, id uuid.UUID) (*model.Template, error)
	List(ctx context.Context, churchID uuid.UUID) ([]*model.Template, error)
	Update(ctx context.Context, churchID, id uuid.UUID, req *model.UpdateTemplateRequest) (*model.Template, error)
	Delete(ctx context.Context, churchID, id uuid.UUID) error
}

type service struct {
	templates repository.TemplateRepository
}

func NewService(templates repository.TemplateRepository) Service {
	return &service{templates: templates}
}

func (s *service) Create(ctx context.Context, churchID uuid.UUID, req *model.CreateTemplateRequest) (*model.Template, error) {
	template := &model.Template{
		ChurchID:  churchID,
		Name:      req.Name,
		Category:  req.Category,
		Content:   req.Content,
		Channels:  req.Channels,
		Variables: req.Variables,
	}
	if err := s.templates.Create(ctx, template); err != nil {
		return nil, err
	}
	return template, nil
}

func (s *service) Get(ctx context.Context, churchID, id uuid.UUID) (*model.Template, error) {
	return s.templates.Get(ctx, churchID, id)
}

func (s *service) List(ctx context.Context, churchID uuid.UUID) ([]*model.Template, error) {
	return s.templates.List(ctx, churchID)
}

func (s *service) Update(ctx context.Context, churchID, id uuid.UUID, req *model.UpdateTemplateRequest) (*model.Template, error) {
	template, err := s.templates.Get(ctx, churchID, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		template.Name = *req.Name
	}
	if req.Category != nil {
		template.Category = *req.Category
	}
	if req.Content != nil {
		template.Content = *req.Content
	}
	if req.Channels != nil {
		template.Channels = req.Channels
	}
	if req.Variables != nil {
		template.Variables = req.Variables
	}
	if err := s.templates.Update(ctx, template); err != nil {
		return nil, err
	}
	return template, nil
}

func (s *service) Delete(ctx context.Context, churchID, id uuid.UUID) error {
	return s.templates.Delete(ctx, churchID, id)
}
