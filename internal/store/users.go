package store

import (
	"context"
	"fmt"

	"github.com/farellandr/museum-tickets/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) FindActiveByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Preload("Role").
		Where("email = ? AND is_active = ?", email, true).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Preload("Role").Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, fmt.Errorf("checking user email: %w", err)
	}
	return count > 0, nil
}

// Create stores user with the named role.
func (s *UserStore) Create(ctx context.Context, user *models.User, roleName string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var role models.Role
		if err := tx.Where("name = ?", roleName).First(&role).Error; err != nil {
			return fmt.Errorf("finding role %q: %w", roleName, err)
		}

		user.RoleID = role.ID
		user.Role = role
		if err := tx.Omit("Role").Create(user).Error; err != nil {
			return fmt.Errorf("creating user: %w", err)
		}
		return nil
	})
}
