package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"beacon-chat/internal/domain/account"
	beacon_errors "beacon-chat/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresAccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &PostgresAccountRepository{db: db}
}

func (r *PostgresAccountRepository) Create(ctx context.Context, a *account.Account) error {
	res := r.db.WithContext(ctx).Create(a)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return beacon_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresAccountRepository) GetByID(ctx context.Context, id uuid.UUID) (account.Account, error) {
	var a account.Account
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return account.Account{}, beacon_errors.ErrNotFound
		}
		return account.Account{}, err
	}
	return a, nil
}

func (r *PostgresAccountRepository) GetByEmail(ctx context.Context, email string) (account.Account, error) {
	var a account.Account
	err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return account.Account{}, beacon_errors.ErrNotFound
		}
		return account.Account{}, err
	}
	return a, nil
}

func (r *PostgresAccountRepository) GetByUsername(ctx context.Context, username string) (account.Account, error) {
	var a account.Account
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return account.Account{}, beacon_errors.ErrNotFound
		}
		return account.Account{}, err
	}
	return a, nil
}

func (r *PostgresAccountRepository) Update(ctx context.Context, a account.Account) error {
	res := r.db.WithContext(ctx).Save(&a)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return beacon_errors.ErrNotFound
	}
	return nil
}

// SetPresence writes the online flag together with the connection id.
// Going offline always clears the connection id and stamps last_seen_at.
func (r *PostgresAccountRepository) SetPresence(ctx context.Context, id uuid.UUID, online bool, connectionID string) error {
	updates := map[string]interface{}{
		"is_online":  online,
		"updated_at": time.Now(),
	}
	if online {
		updates["connection_id"] = connectionID
	} else {
		updates["connection_id"] = nil
		updates["last_seen_at"] = time.Now()
	}
	res := r.db.WithContext(ctx).
		Model(&account.Account{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return beacon_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresAccountRepository) RecordFailedLogin(ctx context.Context, id uuid.UUID, attempts int, lockedUntil *time.Time) error {
	updates := map[string]interface{}{
		"failed_login_attempts": attempts,
		"updated_at":            time.Now(),
	}
	if lockedUntil != nil {
		updates["locked_until"] = *lockedUntil
	}
	return r.db.WithContext(ctx).
		Model(&account.Account{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *PostgresAccountRepository) ResetLockout(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&account.Account{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"failed_login_attempts": 0,
			"locked_until":          nil,
			"updated_at":            time.Now(),
		}).Error
}

func (r *PostgresAccountRepository) Search(ctx context.Context, query string, limit int) ([]account.Account, error) {
	var accounts []account.Account
	err := r.db.WithContext(ctx).
		Where("kind = ? AND is_active = true AND (username ILIKE ? OR display_name ILIKE ?)",
			account.KindUser, "%"+query+"%", "%"+query+"%").
		Limit(limit).
		Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *PostgresAccountRepository) List(ctx context.Context, kind string, page, limit int) ([]account.Account, int64, error) {
	var accounts []account.Account
	var total int64

	q := r.db.WithContext(ctx).Model(&account.Account{})
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&accounts).Error; err != nil {
		return nil, 0, err
	}

	return accounts, total, nil
}

func (r *PostgresAccountRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&account.Account{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_active":  false,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return beacon_errors.ErrNotFound
	}
	return nil
}
