package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"roteiro/internal/infra"
	dbm "roteiro/internal/models/db_models"
	"roteiro/pkg/utils"
)

type AccountRepository interface {
	Insert(ctx context.Context, account *dbm.Account) error
	FindById(ctx context.Context, id uuid.UUID) (*dbm.Account, error)
	FindByUsername(ctx context.Context, username string) (*dbm.Account, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type accountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{
		db: db,
	}
}

func (a *accountRepository) Insert(ctx context.Context, account *dbm.Account) error {
	err := a.db.WithContext(ctx).Omit("Trips").Create(account).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return utils.ErrDuplicateAccount
	}
	return err
}

func (a *accountRepository) FindById(ctx context.Context, id uuid.UUID) (*dbm.Account, error) {
	var account dbm.Account
	err := a.db.WithContext(ctx).First(&account, "id = ?", id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &account, nil
}

func (a *accountRepository) FindByUsername(ctx context.Context, username string) (*dbm.Account, error) {
	var account dbm.Account
	err := a.db.WithContext(ctx).First(&account, "username = ?", username).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &account, nil
}

// Delete removes the account together with its trips and their items.
func (a *accountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return infra.WithTransaction(ctx, a.db, func(tx *gorm.DB) error {
		tripIDs := tx.Model(&dbm.Trip{}).Select("id").Where("account_id = ?", id)

		if err := tx.Where("trip_id IN (?)", tripIDs).Delete(&dbm.TripItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("account_id = ?", id).Delete(&dbm.Trip{}).Error; err != nil {
			return err
		}

		res := tx.Where("id = ?", id).Delete(&dbm.Account{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return utils.ErrNotFound
		}
		return nil
	})
}
