package trip_fx

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"roteiro/internal/repositories"
	"roteiro/internal/serializers"
	"roteiro/internal/services"
)

var Module = fx.Provide(
	provideTripRepo,
	serializers.NewTripSerializer,
	services.NewTripService)

func provideTripRepo(db *gorm.DB) repositories.TripRepository {
	return repositories.NewTripRepository(db)
}
