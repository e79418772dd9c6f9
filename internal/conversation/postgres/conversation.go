package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Autonom664/hr-performance-dstchemicals/internal/conversation"
	conversationDatamodel "github.com/Autonom664/hr-performance-dstchemicals/internal/core/datamodel/conversation"
)

type ConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

func (r *ConversationRepository) GetByID(ctx context.Context, id string) (*conversation.Conversation, error) {
	var model conversationDatamodel.Conversation
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get conversation by id: %w", err)
	}
	return conversation.FromDataModel(&model), nil
}

func (r *ConversationRepository) GetByCycleAndEmployee(ctx context.Context, cycleID, employeeEmail string) (*conversation.Conversation, error) {
	var model conversationDatamodel.Conversation
	err := r.db.WithContext(ctx).
		Where("cycle_id = ? AND employee_email = ?", cycleID, employeeEmail).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	return conversation.FromDataModel(&model), nil
}

func (r *ConversationRepository) ListByEmployee(ctx context.Context, employeeEmail string) ([]*conversation.Conversation, error) {
	var models []*conversationDatamodel.Conversation
	if err := r.db.WithContext(ctx).
		Where("employee_email = ?", employeeEmail).
		Order("created_at desc").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list conversations by employee: %w", err)
	}
	return conversation.FromDataModelSlice(models), nil
}

// Create inserts the row; losing a lazy-creation race against the
// (cycle_id, employee_email) unique index returns the winner's row.
func (r *ConversationRepository) Create(ctx context.Context, c *conversation.Conversation) (*conversation.Conversation, error) {
	err := r.db.WithContext(ctx).Create(conversation.ToDataModel(c)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return r.GetByCycleAndEmployee(ctx, c.CycleID, c.EmployeeEmail)
		}
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	return c, nil
}

func (r *ConversationRepository) Update(ctx context.Context, c *conversation.Conversation) error {
	// Select("*") so cleared text fields and nil ratings are written.
	result := r.db.WithContext(ctx).
		Model(&conversationDatamodel.Conversation{}).
		Where("id = ?", c.ID).
		Select("*").
		Omit("id", "cycle_id", "employee_email", "created_at").
		Updates(conversation.ToDataModel(c))
	if result.Error != nil {
		return fmt.Errorf("update conversation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *ConversationRepository) DeleteForUser(ctx context.Context, email string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("employee_email = ? OR manager_email = ?", email, email).
		Delete(&conversationDatamodel.Conversation{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete conversations for user: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *ConversationRepository) DeleteByCycle(ctx context.Context, cycleID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("cycle_id = ?", cycleID).
		Delete(&conversationDatamodel.Conversation{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete conversations by cycle: %w", result.Error)
	}
	return result.RowsAffected, nil
}
