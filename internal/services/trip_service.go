package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"roteiro/internal/models/request_models"
	"roteiro/internal/models/response_models"
	"roteiro/internal/repositories"
	"roteiro/internal/serializers"
	"roteiro/pkg/utils"
)

// TripServiceInterface exposes trips of one caller. accountID always comes
// from the authenticated session, never from a payload.
type TripServiceInterface interface {
	ListTrips(ctx context.Context, accountID uuid.UUID) ([]response_models.TripResponse, error)
	CreateTrip(ctx context.Context, accountID uuid.UUID, payload *request_models.TripPayload) (*response_models.TripResponse, error)
	GetTrip(ctx context.Context, accountID, tripID uuid.UUID) (*response_models.TripResponse, error)
	UpdateTrip(ctx context.Context, accountID, tripID uuid.UUID, payload *request_models.TripUpdatePayload, partial bool) (*response_models.TripResponse, error)
	DeleteTrip(ctx context.Context, accountID, tripID uuid.UUID) error

	CreateItem(ctx context.Context, accountID, tripID uuid.UUID, payload *request_models.TripItemPayload) (*response_models.TripItemResponse, error)
	UpdateItem(ctx context.Context, accountID, tripID, itemID uuid.UUID, payload *request_models.TripItemUpdatePayload, partial bool) (*response_models.TripItemResponse, error)
	DeleteItem(ctx context.Context, accountID, tripID, itemID uuid.UUID) error
}

type TripService struct {
	tripRepo   repositories.TripRepository
	serializer *serializers.TripSerializer
	log        *zap.Logger
}

func NewTripService(tripRepo repositories.TripRepository, serializer *serializers.TripSerializer, log *zap.Logger) TripServiceInterface {
	return &TripService{
		tripRepo:   tripRepo,
		serializer: serializer,
		log:        log.Named("trips"),
	}
}

func (s *TripService) ListTrips(ctx context.Context, accountID uuid.UUID) ([]response_models.TripResponse, error) {
	trips, err := s.tripRepo.ListTripsByAccount(ctx, accountID)
	if err != nil {
		return nil, storeError(err)
	}
	return s.serializer.RenderList(trips), nil
}

func (s *TripService) CreateTrip(ctx context.Context, accountID uuid.UUID, payload *request_models.TripPayload) (*response_models.TripResponse, error) {
	trip, err := s.serializer.CreateTripWithItems(ctx, s.tripRepo, accountID, payload)
	if err != nil {
		return nil, storeError(err)
	}

	s.log.Info("trip created",
		zap.String("account_id", accountID.String()),
		zap.String("trip_id", trip.ID.String()),
		zap.Int("items", len(trip.Items)))

	out := s.serializer.Render(trip)
	return &out, nil
}

func (s *TripService) GetTrip(ctx context.Context, accountID, tripID uuid.UUID) (*response_models.TripResponse, error) {
	trip, err := s.tripRepo.FindTripByAccount(ctx, accountID, tripID)
	if err != nil {
		return nil, storeError(err)
	}
	if trip == nil {
		return nil, utils.ErrNotFound
	}
	out := s.serializer.Render(trip)
	return &out, nil
}

func (s *TripService) UpdateTrip(ctx context.Context, accountID, tripID uuid.UUID, payload *request_models.TripUpdatePayload, partial bool) (*response_models.TripResponse, error) {
	updates, err := s.serializer.ValidateTripUpdate(payload, partial)
	if err != nil {
		return nil, err
	}
	if err := s.tripRepo.UpdateTrip(ctx, accountID, tripID, updates); err != nil {
		return nil, storeError(err)
	}
	return s.GetTrip(ctx, accountID, tripID)
}

func (s *TripService) DeleteTrip(ctx context.Context, accountID, tripID uuid.UUID) error {
	if err := s.tripRepo.DeleteTrip(ctx, accountID, tripID); err != nil {
		return storeError(err)
	}
	s.log.Info("trip deleted", zap.String("account_id", accountID.String()), zap.String("trip_id", tripID.String()))
	return nil
}

func (s *TripService) CreateItem(ctx context.Context, accountID, tripID uuid.UUID, payload *request_models.TripItemPayload) (*response_models.TripItemResponse, error) {
	trip, err := s.tripRepo.FindTripByAccount(ctx, accountID, tripID)
	if err != nil {
		return nil, storeError(err)
	}
	if trip == nil {
		return nil, utils.ErrNotFound
	}

	item, err := s.serializer.ValidateItem(payload)
	if err != nil {
		return nil, err
	}
	item.TripID = trip.ID
	if err := s.tripRepo.CreateItem(ctx, item); err != nil {
		return nil, storeError(err)
	}

	out := s.serializer.RenderItem(item)
	return &out, nil
}

func (s *TripService) UpdateItem(ctx context.Context, accountID, tripID, itemID uuid.UUID, payload *request_models.TripItemUpdatePayload, partial bool) (*response_models.TripItemResponse, error) {
	updates, err := s.serializer.ValidateItemUpdate(payload, partial)
	if err != nil {
		return nil, err
	}
	if err := s.tripRepo.UpdateItem(ctx, accountID, tripID, itemID, updates); err != nil {
		return nil, storeError(err)
	}

	item, err := s.tripRepo.FindItemByAccount(ctx, accountID, tripID, itemID)
	if err != nil {
		return nil, storeError(err)
	}
	if item == nil {
		return nil, utils.ErrNotFound
	}
	out := s.serializer.RenderItem(item)
	return &out, nil
}

func (s *TripService) DeleteItem(ctx context.Context, accountID, tripID, itemID uuid.UUID) error {
	if err := s.tripRepo.DeleteItem(ctx, accountID, tripID, itemID); err != nil {
		return storeError(err)
	}
	return nil
}

// storeError keeps errors that belong to the API contract and tags anything
// else as a database failure.
func storeError(err error) error {
	var fieldErr *utils.FieldValidationError
	switch {
	case errors.As(err, &fieldErr),
		errors.Is(err, utils.ErrNotFound),
		errors.Is(err, utils.ErrReferentialIntegrity):
		return err
	}
	return errors.Join(utils.ErrDatabaseError, err)
}
