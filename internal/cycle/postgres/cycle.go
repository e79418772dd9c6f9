package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Autonom664/hr-performance-dstchemicals/internal/cycle"
	cycleDatamodel "github.com/Autonom664/hr-performance-dstchemicals/internal/core/datamodel/cycle"
)

type CycleRepository struct {
	db *gorm.DB
}

func NewCycleRepository(db *gorm.DB) *CycleRepository {
	return &CycleRepository{db: db}
}

func (r *CycleRepository) GetByID(ctx context.Context, id string) (*cycle.Cycle, error) {
	var model cycleDatamodel.Cycle
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cycle by id: %w", err)
	}
	return cycle.FromDataModel(&model), nil
}

func (r *CycleRepository) GetActive(ctx context.Context) (*cycle.Cycle, error) {
	var model cycleDatamodel.Cycle
	err := r.db.WithContext(ctx).Where("status = ?", cycle.StatusActive).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get active cycle: %w", err)
	}
	return cycle.FromDataModel(&model), nil
}

func (r *CycleRepository) List(ctx context.Context) ([]*cycle.Cycle, error) {
	var models []*cycleDatamodel.Cycle
	if err := r.db.WithContext(ctx).Order("start_date desc").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list cycles: %w", err)
	}
	return cycle.FromDataModelSlice(models), nil
}

func (r *CycleRepository) Create(ctx context.Context, c *cycle.Cycle) error {
	if err := r.db.WithContext(ctx).Create(cycle.ToDataModel(c)).Error; err != nil {
		return fmt.Errorf("create cycle: %w", err)
	}
	return nil
}

func (r *CycleRepository) UpdateStatus(ctx context.Context, id, status string) error {
	result := r.db.WithContext(ctx).
		Model(&cycleDatamodel.Cycle{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now().UTC()})
	if result.Error != nil {
		return fmt.Errorf("update cycle status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Activate archives every active cycle and activates the given one in
// one transaction, so at most one cycle is ever active.
func (r *CycleRepository) Activate(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		if err := tx.Model(&cycleDatamodel.Cycle{}).
			Where("status = ? AND id <> ?", cycle.StatusActive, id).
			Updates(map[string]interface{}{"status": cycle.StatusArchived, "updated_at": now}).Error; err != nil {
			return fmt.Errorf("archive active cycles: %w", err)
		}

		result := tx.Model(&cycleDatamodel.Cycle{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{"status": cycle.StatusActive, "updated_at": now})
		if result.Error != nil {
			return fmt.Errorf("activate cycle: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *CycleRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&cycleDatamodel.Cycle{})
	if result.Error != nil {
		return fmt.Errorf("delete cycle: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
