package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"roteiro/internal/infra"
	dbm "roteiro/internal/models/db_models"
	"roteiro/pkg/utils"
)

// TripRepository stores trips and their items. Every lookup that takes an
// accountID only sees that account's records; anything else reads as missing.
type TripRepository interface {
	// WithinTransaction runs fn against a repository bound to one
	// transaction, committing only if fn returns nil.
	WithinTransaction(ctx context.Context, fn func(repo TripRepository) error) error

	CreateTrip(ctx context.Context, trip *dbm.Trip) error
	CreateItem(ctx context.Context, item *dbm.TripItem) error

	ListTripsByAccount(ctx context.Context, accountID uuid.UUID) ([]dbm.Trip, error)
	FindTripByAccount(ctx context.Context, accountID, tripID uuid.UUID) (*dbm.Trip, error)
	ListItemsByTrip(ctx context.Context, tripID uuid.UUID) ([]dbm.TripItem, error)
	FindItemByAccount(ctx context.Context, accountID, tripID, itemID uuid.UUID) (*dbm.TripItem, error)

	UpdateTrip(ctx context.Context, accountID, tripID uuid.UUID, updates map[string]interface{}) error
	UpdateItem(ctx context.Context, accountID, tripID, itemID uuid.UUID, updates map[string]interface{}) error
	DeleteTrip(ctx context.Context, accountID, tripID uuid.UUID) error
	DeleteItem(ctx context.Context, accountID, tripID, itemID uuid.UUID) error
}

type tripRepository struct {
	db *gorm.DB
}

func NewTripRepository(db *gorm.DB) TripRepository {
	return &tripRepository{db: db}
}

// OwnedBy limits a trips query to one account.
func OwnedBy(accountID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("trips.account_id = ?", accountID)
	}
}

// itemsOwnedBy limits a trip_items query to one trip of one account.
func itemsOwnedBy(accountID, tripID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		owned := db.Session(&gorm.Session{NewDB: true}).
			Model(&dbm.Trip{}).
			Select("trips.id").
			Scopes(OwnedBy(accountID))
		return db.Where("trip_items.trip_id = ? AND trip_items.trip_id IN (?)", tripID, owned)
	}
}

func orderItems(db *gorm.DB) *gorm.DB {
	return db.Order("trip_items.created_at ASC")
}

func (r *tripRepository) WithinTransaction(ctx context.Context, fn func(repo TripRepository) error) error {
	return infra.WithTransaction(ctx, r.db, func(tx *gorm.DB) error {
		return fn(&tripRepository{db: tx})
	})
}

func (r *tripRepository) CreateTrip(ctx context.Context, trip *dbm.Trip) error {
	if trip.AccountID == uuid.Nil {
		return utils.ErrReferentialIntegrity
	}
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(trip).Error
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return utils.ErrReferentialIntegrity
	}
	return err
}

func (r *tripRepository) CreateItem(ctx context.Context, item *dbm.TripItem) error {
	if item.TripID == uuid.Nil {
		return utils.ErrReferentialIntegrity
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&dbm.Trip{}).Where("id = ?", item.TripID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return utils.ErrReferentialIntegrity
	}

	err := r.db.WithContext(ctx).Create(item).Error
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return utils.ErrReferentialIntegrity
	}
	return err
}

func (r *tripRepository) ListTripsByAccount(ctx context.Context, accountID uuid.UUID) ([]dbm.Trip, error) {
	var trips []dbm.Trip
	err := r.db.WithContext(ctx).
		Scopes(OwnedBy(accountID)).
		Preload("Items", orderItems).
		Order("trips.created_at ASC").
		Find(&trips).Error
	if err != nil {
		return nil, err
	}

	for i := range trips {
		dbm.SortTripItems(trips[i].Items)
	}
	return trips, nil
}

func (r *tripRepository) FindTripByAccount(ctx context.Context, accountID, tripID uuid.UUID) (*dbm.Trip, error) {
	var trip dbm.Trip
	err := r.db.WithContext(ctx).
		Scopes(OwnedBy(accountID)).
		Preload("Items", orderItems).
		First(&trip, "trips.id = ?", tripID).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	dbm.SortTripItems(trip.Items)
	return &trip, nil
}

func (r *tripRepository) ListItemsByTrip(ctx context.Context, tripID uuid.UUID) ([]dbm.TripItem, error) {
	var items []dbm.TripItem
	err := r.db.WithContext(ctx).
		Scopes(orderItems).
		Where("trip_items.trip_id = ?", tripID).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	dbm.SortTripItems(items)
	return items, nil
}

func (r *tripRepository) FindItemByAccount(ctx context.Context, accountID, tripID, itemID uuid.UUID) (*dbm.TripItem, error) {
	var item dbm.TripItem
	err := r.db.WithContext(ctx).
		Scopes(itemsOwnedBy(accountID, tripID)).
		First(&item, "trip_items.id = ?", itemID).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *tripRepository) UpdateTrip(ctx context.Context, accountID, tripID uuid.UUID, updates map[string]interface{}) error {
	trip, err := r.FindTripByAccount(ctx, accountID, tripID)
	if err != nil {
		return err
	}
	if trip == nil {
		return utils.ErrNotFound
	}
	if len(updates) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).
		Model(&dbm.Trip{}).
		Scopes(OwnedBy(accountID)).
		Where("trips.id = ?", tripID).
		Updates(updates).Error
}

func (r *tripRepository) UpdateItem(ctx context.Context, accountID, tripID, itemID uuid.UUID, updates map[string]interface{}) error {
	item, err := r.FindItemByAccount(ctx, accountID, tripID, itemID)
	if err != nil {
		return err
	}
	if item == nil {
		return utils.ErrNotFound
	}
	if len(updates) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).
		Model(&dbm.TripItem{}).
		Where("trip_items.id = ?", item.ID).
		Updates(updates).Error
}

// DeleteTrip removes the trip and all of its items in one transaction.
func (r *tripRepository) DeleteTrip(ctx context.Context, accountID, tripID uuid.UUID) error {
	return infra.WithTransaction(ctx, r.db, func(tx *gorm.DB) error {
		var trip dbm.Trip
		err := tx.Scopes(OwnedBy(accountID)).Select("trips.id").First(&trip, "trips.id = ?", tripID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrNotFound
		}
		if err != nil {
			return err
		}

		if err := tx.Where("trip_id = ?", trip.ID).Delete(&dbm.TripItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&dbm.Trip{}, "id = ?", trip.ID).Error
	})
}

func (r *tripRepository) DeleteItem(ctx context.Context, accountID, tripID, itemID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Scopes(itemsOwnedBy(accountID, tripID)).
		Where("trip_items.id = ?", itemID).
		Delete(&dbm.TripItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrNotFound
	}
	return nil
}
