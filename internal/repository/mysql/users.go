package mysql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"aichat-backend/internal/model"
	"aichat-backend/internal/repository"
)

type userRow struct {
	ID           uint   `gorm:"primaryKey"`
	FirstName    string `gorm:"size:64;not null"`
	LastName     string `gorm:"size:64"`
	EmailID      string `gorm:"column:email_id;size:128;not null;uniqueIndex"`
	Age          *int
	PasswordHash string `gorm:"size:255;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (userRow) TableName() string { return "users" }

func (r *userRow) toModel() *model.User {
	return &model.User{
		ID:           strconv.FormatUint(uint64(r.ID), 10),
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		EmailID:      r.EmailID,
		Age:          r.Age,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	row := userRow{
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		EmailID:      user.EmailID,
		Age:          user.Age,
		PasswordHash: user.PasswordHash,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("create user failed: %w", err)
	}
	*user = *row.toModel()
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, emailID string) (*model.User, error) {
	var row userRow
	if err := r.db.WithContext(ctx).Where("email_id = ?", emailID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("query user by email failed: %w", err)
	}
	return row.toModel(), nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	pk, ok := parseID(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	var row userRow
	if err := r.db.WithContext(ctx).First(&row, pk).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("query user by id failed: %w", err)
	}
	return row.toModel(), nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, emailID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&userRow{}).Where("email_id = ?", emailID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("count users by email failed: %w", err)
	}
	return count > 0, nil
}

func parseID(id string) (uint, bool) {
	parsed, err := strconv.ParseUint(id, 10, 64)
	if err != nil || parsed == 0 {
		return 0, false
	}
	return uint(parsed), true
}
