package response_models

import (
	"time"

	"github.com/google/uuid"
)

type TripResponse struct {
	ID        uuid.UUID          `json:"id"`
	Title     string             `json:"title"`
	CreatedAt time.Time          `json:"created_at"`
	Items     []TripItemResponse `json:"items"`
}

type TripItemResponse struct {
	ID          uuid.UUID `json:"id"`
	DayKey      string    `json:"day_key"`
	Name        string    `json:"name"`
	Time        string    `json:"time"`
	Lat         *float64  `json:"lat"`
	Lng         *float64  `json:"lng"`
	WeatherText *string   `json:"weather_text"`
	WeatherIcon *string   `json:"weather_icon"`
}
