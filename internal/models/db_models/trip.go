package db_models

import (
	"cmp"
	"slices"

	"github.com/google/uuid"
)

const DefaultTripTitle = "Minha Viagem"

type Trip struct {
	BaseModel
	AccountID uuid.UUID `gorm:"type:uuid;not null;index"`
	Title     string    `gorm:"size:200;not null;default:'Minha Viagem'"`

	Items []TripItem `gorm:"constraint:OnDelete:CASCADE"`
}

// TripItem is one stop of a trip. Lat and Lng are independently nullable;
// manual entries carry neither.
type TripItem struct {
	BaseModel
	TripID      uuid.UUID `gorm:"type:uuid;not null;index"`
	DayKey      string    `gorm:"size:50;not null"`
	Name        string    `gorm:"size:200;not null"`
	Time        string    `gorm:"size:20;not null"`
	Lat         *float64
	Lng         *float64
	WeatherText *string `gorm:"size:100"`
	WeatherIcon *string `gorm:"size:50"`
}

// SortTripItems orders items by (DayKey, Time) with plain byte-wise
// comparison, so "Dia 10" sorts before "Dia 2". Equal keys keep their order.
func SortTripItems(items []TripItem) {
	slices.SortStableFunc(items, func(a, b TripItem) int {
		if c := cmp.Compare(a.DayKey, b.DayKey); c != 0 {
			return c
		}
		return cmp.Compare(a.Time, b.Time)
	})
}
