package users

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	UpdatePaymentAccount(ctx context.Context, accountID string, chargesEnabled, payoutsEnabled bool) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var user User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdatePaymentAccount mirrors the processor's connected-account state onto
// the payee's profile.
func (r *repository) UpdatePaymentAccount(ctx context.Context, accountID string, chargesEnabled, payoutsEnabled bool) error {
	return r.db.WithContext(ctx).
		Model(&User{}).
		Where("stripe_account_id = ?", accountID).
		Updates(map[string]interface{}{
			"charges_enabled": chargesEnabled,
			"payouts_enabled": payoutsEnabled,
			"updated_at":      time.Now(),
		}).Error
}
