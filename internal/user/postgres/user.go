package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	userDatamodel "github.com/Autonom664/hr-performance-dstchemicals/internal/core/datamodel/user"
	"github.com/Autonom664/hr-performance-dstchemicals/internal/user"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var model userDatamodel.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return user.FromDataModel(&model), nil
}

func (r *UserRepository) List(ctx context.Context) ([]*user.User, error) {
	var models []*userDatamodel.User
	if err := r.db.WithContext(ctx).Order("email asc").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return user.FromDataModelSlice(models), nil
}

func (r *UserRepository) ListByManager(ctx context.Context, managerEmail string) ([]*user.User, error) {
	var models []*userDatamodel.User
	if err := r.db.WithContext(ctx).
		Where("manager_email = ?", managerEmail).
		Order("email asc").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list users by manager: %w", err)
	}
	return user.FromDataModelSlice(models), nil
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	if err := r.db.WithContext(ctx).Create(user.ToDataModel(u)).Error; err != nil {
		// Concurrent creates can slip past the service's existence
		// check; the unique email index is the backstop.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return user.ErrDuplicate
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	// Select("*") forces zero-valued columns (is_active=false,
	// must_change_password=false) to be written too.
	result := r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("email = ?", u.Email).
		Select("*").
		Omit("id", "email", "created_at").
		Updates(user.ToDataModel(u))
	if result.Error != nil {
		return fmt.Errorf("update user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, email string) error {
	result := r.db.WithContext(ctx).Where("email = ?", email).Delete(&userDatamodel.User{})
	if result.Error != nil {
		return fmt.Errorf("delete user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return user.ErrNotFound
	}
	return nil
}
