// Package serializers maps trips between their wire form and the stored
// models, and owns the nested trip-plus-items write.
package serializers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/golang/geo/s2"
	"github.com/google/uuid"

	dbm "roteiro/internal/models/db_models"
	req "roteiro/internal/models/request_models"
	resp "roteiro/internal/models/response_models"
	"roteiro/internal/repositories"
	"roteiro/pkg/utils"
)

const (
	msgRequired   = "Este campo é obrigatório."
	msgBlank      = "Este campo não pode estar em branco."
	msgReadOnly   = "Este campo é somente leitura."
	msgNull       = "Este campo não pode ser nulo."
	msgInvalid    = "Valor inválido."
	msgWrongType  = "Tipo de valor incorreto."
	msgLatitude   = "Latitude deve estar entre -90 e 90."
	msgLongitude  = "Longitude deve estar entre -180 e 180."
	msgNestedItem = "Itens não podem ser alterados por este endpoint; use /trips/{id}/items/."
)

type TripSerializer struct {
	validate *validator.Validate
}

func NewTripSerializer() *TripSerializer {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &TripSerializer{validate: v}
}

// Render converts a stored trip into its response form, items ordered by
// (day_key, time).
func (s *TripSerializer) Render(trip *dbm.Trip) resp.TripResponse {
	items := make([]dbm.TripItem, len(trip.Items))
	copy(items, trip.Items)
	dbm.SortTripItems(items)

	out := resp.TripResponse{
		ID:        trip.ID,
		Title:     trip.Title,
		CreatedAt: trip.CreatedAt,
		Items:     make([]resp.TripItemResponse, 0, len(items)),
	}
	for i := range items {
		out.Items = append(out.Items, s.RenderItem(&items[i]))
	}
	return out
}

func (s *TripSerializer) RenderList(trips []dbm.Trip) []resp.TripResponse {
	out := make([]resp.TripResponse, 0, len(trips))
	for i := range trips {
		out = append(out, s.Render(&trips[i]))
	}
	return out
}

func (s *TripSerializer) RenderItem(item *dbm.TripItem) resp.TripItemResponse {
	return resp.TripItemResponse{
		ID:          item.ID,
		DayKey:      item.DayKey,
		Name:        item.Name,
		Time:        item.Time,
		Lat:         item.Lat,
		Lng:         item.Lng,
		WeatherText: item.WeatherText,
		WeatherIcon: item.WeatherIcon,
	}
}

// ValidateCreate checks a create payload and builds the unsaved trip with its
// items in input order. Every invalid field of every record is reported in a
// single *utils.FieldValidationError.
func (s *TripSerializer) ValidateCreate(p *req.TripPayload) (*dbm.Trip, error) {
	verr := &utils.FieldValidationError{}

	rejectReadOnly(verr, "id", p.ID)
	rejectReadOnly(verr, "created_at", p.CreatedAt)
	trimPtr(p.Title)
	for i := range p.Items {
		it := &p.Items[i]
		rejectReadOnly(verr, fmt.Sprintf("items[%d].id", i), it.ID)
		trimItem(it)
	}

	s.collect(verr, p, p.TypeErrors)

	for i, it := range p.Items {
		checkCoordinates(verr, fmt.Sprintf("items[%d].", i), it.Lat, it.Lng)
	}

	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	trip := &dbm.Trip{Title: dbm.DefaultTripTitle}
	if p.Title != nil {
		trip.Title = *p.Title
	}
	trip.Items = make([]dbm.TripItem, 0, len(p.Items))
	for _, it := range p.Items {
		trip.Items = append(trip.Items, itemFromPayload(it))
	}
	return trip, nil
}

// CreateTripWithItems validates p and stores the trip owned by ownerID,
// followed by its items in input order, in one transaction. Nothing is
// stored when validation or any insert fails.
func (s *TripSerializer) CreateTripWithItems(ctx context.Context, repo repositories.TripRepository, ownerID uuid.UUID, p *req.TripPayload) (*dbm.Trip, error) {
	trip, err := s.ValidateCreate(p)
	if err != nil {
		return nil, err
	}

	trip.AccountID = ownerID
	items := trip.Items
	trip.Items = nil

	err = repo.WithinTransaction(ctx, func(tx repositories.TripRepository) error {
		if err := tx.CreateTrip(ctx, trip); err != nil {
			return fmt.Errorf("create trip: %w", err)
		}
		for i := range items {
			items[i].TripID = trip.ID
			if err := tx.CreateItem(ctx, &items[i]); err != nil {
				return fmt.Errorf("create item %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	trip.Items = items
	dbm.SortTripItems(trip.Items)
	return trip, nil
}

// ValidateItem checks a single item payload for the item-level create.
func (s *TripSerializer) ValidateItem(p *req.TripItemPayload) (*dbm.TripItem, error) {
	verr := &utils.FieldValidationError{}

	rejectReadOnly(verr, "id", p.ID)
	trimItem(p)
	s.collect(verr, p, p.TypeErrors)
	checkCoordinates(verr, "", p.Lat, p.Lng)

	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	item := itemFromPayload(*p)
	return &item, nil
}

// ValidateTripUpdate returns the column updates for PUT (partial false) or
// PATCH (partial true). Items are never written through a trip update.
func (s *TripSerializer) ValidateTripUpdate(p *req.TripUpdatePayload, partial bool) (map[string]interface{}, error) {
	verr := &utils.FieldValidationError{}

	rejectReadOnly(verr, "id", p.ID)
	rejectReadOnly(verr, "created_at", p.CreatedAt)
	if p.Items != nil {
		verr.Add("items", msgNestedItem)
	}
	checkText(verr, "title", p.Title, 200, !partial)

	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if p.Title.Set {
		updates["title"] = *p.Title.Value
	}
	return updates, nil
}

// ValidateItemUpdate returns the column updates for an item PUT or PATCH.
// An explicit null clears an optional field; an absent key leaves it as is.
func (s *TripSerializer) ValidateItemUpdate(p *req.TripItemUpdatePayload, partial bool) (map[string]interface{}, error) {
	verr := &utils.FieldValidationError{}

	rejectReadOnly(verr, "id", p.ID)
	checkText(verr, "day_key", p.DayKey, 50, !partial)
	checkText(verr, "name", p.Name, 200, !partial)
	checkText(verr, "time", p.Time, 20, !partial)
	checkCoordinates(verr, "", p.Lat.Value, p.Lng.Value)
	checkOptionalText(verr, "weather_text", p.WeatherText, 100)
	checkOptionalText(verr, "weather_icon", p.WeatherIcon, 50)

	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if p.DayKey.Set {
		updates["day_key"] = *p.DayKey.Value
	}
	if p.Name.Set {
		updates["name"] = *p.Name.Value
	}
	if p.Time.Set {
		updates["time"] = *p.Time.Value
	}
	if p.Lat.Set {
		updates["lat"] = p.Lat.Value
	}
	if p.Lng.Set {
		updates["lng"] = p.Lng.Value
	}
	if p.WeatherText.Set {
		updates["weather_text"] = p.WeatherText.Value
	}
	if p.WeatherIcon.Set {
		updates["weather_icon"] = p.WeatherIcon.Value
	}
	return updates, nil
}

// DecodeError converts a JSON binding failure into the API error taxonomy:
// a wrongly typed value is a field error, anything else a malformed body.
func DecodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "non_field_errors"
		}
		return &utils.FieldValidationError{Fields: []utils.FieldError{{Field: field, Message: msgWrongType}}}
	}
	return fmt.Errorf("%w: %v", utils.ErrInvalidRequest, err)
}

// collect adds the wrong-type fields, then every validator failure that is
// not on (or below) one of those fields.
func (s *TripSerializer) collect(verr *utils.FieldValidationError, payload interface{}, typeErrs []string) {
	for _, field := range typeErrs {
		verr.Add(field, msgWrongType)
	}

	err := s.validate.Struct(payload)
	if err == nil {
		return
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		verr.Add("non_field_errors", msgInvalid)
		return
	}
	for _, fe := range fieldErrs {
		path := fieldPath(fe.Namespace())
		if coveredBy(path, typeErrs) {
			continue
		}
		verr.Add(path, fieldMessage(fe))
	}
}

func coveredBy(path string, typeErrs []string) bool {
	for _, field := range typeErrs {
		if path == field || strings.HasPrefix(path, field+".") {
			return true
		}
	}
	return false
}

// fieldPath drops the struct name from a validator namespace, turning
// "TripPayload.items[0].day_key" into "items[0].day_key".
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return msgRequired
	case "min":
		return msgBlank
	case "max":
		return maxLengthMessage(fe.Param())
	}
	return msgInvalid
}

func maxLengthMessage(max string) string {
	return fmt.Sprintf("Certifique-se de que este campo não tenha mais de %s caracteres.", max)
}

// checkText validates a non-nullable text field of an update payload,
// trimming it in place.
func checkText(verr *utils.FieldValidationError, field string, v req.Nullable[string], max int, required bool) {
	if !v.Set {
		if required {
			verr.Add(field, msgRequired)
		}
		return
	}
	if v.Value == nil {
		verr.Add(field, msgNull)
		return
	}
	*v.Value = strings.TrimSpace(*v.Value)
	switch {
	case *v.Value == "":
		verr.Add(field, msgBlank)
	case utf8.RuneCountInString(*v.Value) > max:
		verr.Add(field, maxLengthMessage(strconv.Itoa(max)))
	}
}

func checkOptionalText(verr *utils.FieldValidationError, field string, v req.Nullable[string], max int) {
	if v.Value == nil {
		return
	}
	*v.Value = strings.TrimSpace(*v.Value)
	if utf8.RuneCountInString(*v.Value) > max {
		verr.Add(field, maxLengthMessage(strconv.Itoa(max)))
	}
}

func rejectReadOnly(verr *utils.FieldValidationError, field string, raw *json.RawMessage) {
	if raw != nil {
		verr.Add(field, msgReadOnly)
	}
}

// checkCoordinates validates lat and lng independently; either may be absent.
func checkCoordinates(verr *utils.FieldValidationError, prefix string, lat, lng *float64) {
	if lat != nil && !s2.LatLngFromDegrees(*lat, 0).IsValid() {
		verr.Add(prefix+"lat", msgLatitude)
	}
	if lng != nil && !s2.LatLngFromDegrees(0, *lng).IsValid() {
		verr.Add(prefix+"lng", msgLongitude)
	}
}

func trimItem(it *req.TripItemPayload) {
	it.DayKey = strings.TrimSpace(it.DayKey)
	it.Name = strings.TrimSpace(it.Name)
	it.Time = strings.TrimSpace(it.Time)
	trimPtr(it.WeatherText)
	trimPtr(it.WeatherIcon)
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}

func itemFromPayload(p req.TripItemPayload) dbm.TripItem {
	return dbm.TripItem{
		DayKey:      p.DayKey,
		Name:        p.Name,
		Time:        p.Time,
		Lat:         p.Lat,
		Lng:         p.Lng,
		WeatherText: p.WeatherText,
		WeatherIcon: p.WeatherIcon,
	}
}
