package service

import (
	"context"
	"time"

	"carhub/internal/model"
	"carhub/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type complaintService struct {
	complaintRepo repository.ComplaintRepository
	logger        zerolog.Logger
}

// NewComplaintService creates a new complaint service.
func NewComplaintService(complaintRepo repository.ComplaintRepository, logger zerolog.Logger) ComplaintService {
	return &complaintService{
		complaintRepo: complaintRepo,
		logger:        logger.With().Str("service", "complaint").Logger(),
	}
}

func (s *complaintService) Create(ctx context.Context, req model.ComplaintRequest) (*model.Complaint, error) {
	if req.Subject == "" || req.Message == "" {
		return nil, model.ValidationError("subject and message are required")
	}

	now := time.Now()
	c := &model.Complaint{
		ID:        uuid.New(),
		Subject:   req.Subject,
		Message:   req.Message,
		Status:    model.ComplaintPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.complaintRepo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info().Str("complaint_id", c.ID.String()).Msg("complaint created")

	return c, nil
}

func (s *complaintService) GetByID(ctx context.Context, id uuid.UUID) (*model.Complaint, error) {
	c, err := s.complaintRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, model.NotFoundError("complaint")
	}
	return c, nil
}

func (s *complaintService) List(ctx context.Context, page model.Page) ([]model.Complaint, *model.Pagination, error) {
	page = page.Normalize()

	complaints, total, err := s.complaintRepo.List(ctx, page)
	if err != nil {
		return nil, nil, err
	}

	pagination := model.NewPagination(page, total)
	return complaints, &pagination, nil
}

func (s *complaintService) Update(ctx context.Context, id uuid.UUID, req model.ComplaintRequest) (*model.Complaint, error) {
	c, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Subject != "" {
		c.Subject = req.Subject
	}
	if req.Message != "" {
		c.Message = req.Message
	}
	if req.Status != "" {
		if !model.ValidComplaintStatus(req.Status) {
			return nil, model.InvalidStatusError(string(req.Status))
		}
		c.Status = req.Status
	}
	c.UpdatedAt = time.Now()

	if _, err := s.complaintRepo.Update(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *complaintService) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.complaintRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return model.NotFoundError("complaint")
	}
	return nil
}
