package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"roteiro/internal/models/request_models"
	"roteiro/internal/serializers"
	"roteiro/internal/services"
	"roteiro/pkg/middleware"
	"roteiro/pkg/utils"
)

type TripController struct {
	tripService services.TripServiceInterface
}

func NewTripController(tripService services.TripServiceInterface) *TripController {
	return &TripController{
		tripService: tripService,
	}
}

// ListTrips godoc
// @Summary List trips
// @Description Trips of the authenticated account, each with its ordered items
// @Tags Trips
// @Produce json
// @Success 200 {array} response_models.TripResponse
// @Failure 401 {object} utils.ErrorResponse
// @Router /trips/ [get]
func (t *TripController) ListTrips(c *gin.Context) {
	accountID, ok := caller(c)
	if !ok {
		return
	}

	trips, err := t.tripService.ListTrips(c.Request.Context(), accountID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, http.StatusOK, trips)
}

// CreateTrip godoc
// @Summary Create a trip
// @Description Creates the trip and every item in the payload in one transaction
// @Tags Trips
// @Accept json
// @Produce json
// @Param request body request_models.TripPayload true "Trip with items"
// @Success 201 {object} response_models.TripResponse
// @Failure 400 {object} utils.ErrorResponse
// @Example {json} Request Body Example:
//
//	{
//	  "title": "Rio",
//	  "items": [
//	    {"day_key": "Dia 1", "name": "Cristo Redentor", "time": "09:00", "lat": -22.95, "lng": -43.21}
//	  ]
//	}
//
// @Router /trips/ [post]
func (t *TripController) CreateTrip(c *gin.Context) {
	accountID, ok := caller(c)
	if !ok {
		return
	}

	var req request_models.TripPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.HandleServiceError(c, serializers.DecodeError(err))
		return
	}

	trip, err := t.tripService.CreateTrip(c.Request.Context(), accountID, &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, http.StatusCreated, trip)
}

// GetTrip godoc
// @Summary Retrieve a trip
// @Tags Trips
// @Produce json
// @Param id path string true "Trip ID"
// @Success 200 {object} response_models.TripResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /trips/{id}/ [get]
func (t *TripController) GetTrip(c *gin.Context) {
	accountID, ok := caller(c)
	if !ok {
		return
	}
	tripID, ok := pathID(c, "id")
	if !ok {
		return
	}

	trip, err := t.tripService.GetTrip(c.Request.Context(), accountID, tripID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, http.StatusOK, trip)
}

// ReplaceTrip godoc
// @Summary Replace trip fields
// @Description Title is required. Items are edited through the item endpoints.
// @Tags Trips
// @Accept json
// @Produce json
// @Param id path string true "Trip ID"
// @Param request body request_models.TripUpdatePayload true "Trip fields"
// @Success 200 {object} response_models.TripResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /trips/{id}/ [put]
func (t *TripController) ReplaceTrip(c *gin.Context) {
	t.updateTrip(c, false)
}

// PatchTrip godoc
// @Summary Update trip fields
// @Tags Trips
// @Accept json
// @Produce json
// @Param id path string true "Trip ID"
// @Param request body request_models.TripUpdatePayload true "Trip fields"
// @Success 200 {object} response_models.TripResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /trips/{id}/ [patch]
func (t *TripController) PatchTrip(c *gin.Context) {
	t.updateTrip(c, true)
}

func (t *TripController) updateTrip(c *gin.Context, partial bool) {
	accountID, ok := caller(c)
	if !ok {
		return
	}
	tripID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req request_models.TripUpdatePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.HandleServiceError(c, serializers.DecodeError(err))
		return
	}

	trip, err := t.tripService.UpdateTrip(c.Request.Context(), accountID, tripID, &req, partial)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, http.StatusOK, trip)
}

// DeleteTrip godoc
// @Summary Delete a trip
// @Description Deletes the trip and all of its items
// @Tags Trips
// @Param id path string true "Trip ID"
// @Success 204
// @Failure 404 {object} utils.ErrorResponse
// @Router /trips/{id}/ [delete]
func (t *TripController) DeleteTrip(c *gin.Context) {
	accountID, ok := caller(c)
	if !ok {
		return
	}
	tripID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := t.tripService.DeleteTrip(c.Request.Context(), accountID, tripID); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// CreateItem godoc
// @Summary Add an item to a trip
// @Tags Trip items
// @Accept json
// @Produce json
// @Param id path string true "Trip ID"
// @Param request body request_models.TripItemPayload true "Item"
// @Success 201 {object} response_models.TripItemResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /trips/{id}/items/ [post]
func (t *TripController) CreateItem(c *gin.Context) {
	accountID, ok := caller(c)
	if !ok {
		return
	}
	tripID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req request_models.TripItemPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.HandleServiceError(c, serializers.DecodeError(err))
		return
	}

	item, err := t.tripService.CreateItem(c.Request.Context(), accountID, tripID, &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, http.StatusCreated, item)
}

// ReplaceItem godoc
// @Summary Replace an item
// @Tags Trip items
// @Accept json
// @Produce json
// @Param id path string true "Trip ID"
// @Param itemId path string true "Item ID"
// @Param request body request_models.TripItemUpdatePayload true "Item fields"
// @Success 200 {object} response_models.TripItemResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /trips/{id}/items/{itemId}/ [put]
func (t *TripController) ReplaceItem(c *gin.Context) {
	t.updateItem(c, false)
}

// PatchItem godoc
// @Summary Update item fields
// @Description An explicit null clears lat, lng, weather_text or weather_icon
// @Tags Trip items
// @Accept json
// @Produce json
// @Param id path string true "Trip ID"
// @Param itemId path string true "Item ID"
// @Param request body request_models.TripItemUpdatePayload true "Item fields"
// @Success 200 {object} response_models.TripItemResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /trips/{id}/items/{itemId}/ [patch]
func (t *TripController) PatchItem(c *gin.Context) {
	t.updateItem(c, true)
}

func (t *TripController) updateItem(c *gin.Context, partial bool) {
	accountID, ok := caller(c)
	if !ok {
		return
	}
	tripID, ok := pathID(c, "id")
	if !ok {
		return
	}
	itemID, ok := pathID(c, "itemId")
	if !ok {
		return
	}

	var req request_models.TripItemUpdatePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.HandleServiceError(c, serializers.DecodeError(err))
		return
	}

	item, err := t.tripService.UpdateItem(c.Request.Context(), accountID, tripID, itemID, &req, partial)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, http.StatusOK, item)
}

// DeleteItem godoc
// @Summary Delete an item
// @Tags Trip items
// @Param id path string true "Trip ID"
// @Param itemId path string true "Item ID"
// @Success 204
// @Failure 404 {object} utils.ErrorResponse
// @Router /trips/{id}/items/{itemId}/ [delete]
func (t *TripController) DeleteItem(c *gin.Context) {
	accountID, ok := caller(c)
	if !ok {
		return
	}
	tripID, ok := pathID(c, "id")
	if !ok {
		return
	}
	itemID, ok := pathID(c, "itemId")
	if !ok {
		return
	}

	if err := t.tripService.DeleteItem(c.Request.Context(), accountID, tripID, itemID); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func caller(c *gin.Context) (uuid.UUID, bool) {
	accountID, ok := middleware.CallerID(c)
	if !ok {
		utils.HandleServiceError(c, utils.ErrUnauthenticated)
	}
	return accountID, ok
}

// pathID parses a uuid path parameter. A malformed id cannot name a stored
// record, so it is reported as not found.
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.HandleServiceError(c, utils.ErrNotFound)
		return uuid.Nil, false
	}
	return id, true
}
