package cycle

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Autonom664/hr-performance-dstchemicals/internal"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*Cycle, error)
	GetActive(ctx context.Context) (*Cycle, error)
	List(ctx context.Context) ([]*Cycle, error)
	Create(ctx context.Context, c *Cycle) error
	UpdateStatus(ctx context.Context, id, status string) error
	// Activate archives any currently active cycle and activates the
	// given one in a single transaction.
	Activate(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// ConversationPurger removes every conversation belonging to a cycle.
type ConversationPurger interface {
	DeleteByCycle(ctx context.Context, cycleID string) (int64, error)
}

type Service struct {
	repo          Repository
	conversations ConversationPurger
	logger        *slog.Logger
}

func NewService(repo Repository, conversations ConversationPurger, logger *slog.Logger) *Service {
	return &Service{repo: repo, conversations: conversations, logger: logger}
}

func (s *Service) Create(ctx context.Context, dto CreateCycleDTO) (*Cycle, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	now := time.Now().UTC()
	c := &Cycle{
		ID:        uuid.New().String(),
		Name:      dto.Name,
		StartDate: dto.StartDate,
		EndDate:   dto.EndDate,
		Status:    StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("cycle created", "cycle_id", c.ID, "name", c.Name)
	return c, nil
}

func (s *Service) List(ctx context.Context) ([]*Cycle, error) {
	return s.repo.List(ctx)
}

func (s *Service) GetByID(ctx context.Context, id string) (*Cycle, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, internal.ErrCycleNotFound
	}
	return c, nil
}

// GetActive returns the single active cycle, or a no-active-cycle error.
func (s *Service) GetActive(ctx context.Context) (*Cycle, error) {
	c, err := s.repo.GetActive(ctx)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, internal.ErrNoActiveCycle
	}
	return c, nil
}

// SetStatus moves a cycle to the requested status. Activating a cycle
// archives whichever cycle was active before, atomically.
func (s *Service) SetStatus(ctx context.Context, id, status string) (*Cycle, error) {
	if !ValidStatus(status) {
		return nil, internal.NewValidationError("status must be one of draft, active, archived", internal.ErrCodeValidationFailed)
	}

	c, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(c.Status, status) {
		return nil, internal.NewConflictError(
			"cycle cannot move from "+c.Status+" to "+status,
			internal.ErrCodeInvalidTransition)
	}

	if status == StatusActive {
		if err := s.repo.Activate(ctx, id); err != nil {
			return nil, err
		}
	} else {
		if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
			return nil, err
		}
	}

	s.logger.Info("cycle status changed", "cycle_id", id, "from", c.Status, "to", status)
	return s.GetByID(ctx, id)
}

// Delete removes a cycle and every conversation recorded in it.
func (s *Service) Delete(ctx context.Context, id string) (*DeleteCycleResponse, error) {
	c, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	conversationsDeleted, err := s.conversations.DeleteByCycle(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, c.ID); err != nil {
		return nil, err
	}

	s.logger.Info("cycle deleted", "cycle_id", c.ID, "conversations_deleted", conversationsDeleted)
	return &DeleteCycleResponse{ID: c.ID, ConversationsDeleted: conversationsDeleted}, nil
}
