package spaces

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Space, error)
	GetByIDWithHost(ctx context.Context, id uuid.UUID) (*Space, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Space, error) {
	var space Space
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&space).Error
	if err != nil {
		return nil, err
	}
	return &space, nil
}

func (r *repository) GetByIDWithHost(ctx context.Context, id uuid.UUID) (*Space, error) {
	var space Space
	err := r.db.WithContext(ctx).
		Preload("Host").
		Where("id = ?", id).
		First(&space).Error
	if err != nil {
		return nil, err
	}
	return &space, nil
}
