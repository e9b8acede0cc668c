package request_models

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// TripPayload is the body of POST /trips/. The read-only keys are decoded
// only so that their presence can be rejected.
type TripPayload struct {
	ID        *json.RawMessage  `json:"id"`
	CreatedAt *json.RawMessage  `json:"created_at"`
	Title     *string           `json:"title" validate:"omitnil,min=1,max=200"`
	Items     []TripItemPayload `json:"items" validate:"dive"`

	// TypeErrors lists the field paths whose JSON value had the wrong type,
	// e.g. "items[1].day_key". Those fields are left at their zero value.
	TypeErrors []string `json:"-" validate:"-"`
}

// UnmarshalJSON decodes the payload field by field so that a wrongly typed
// value is recorded with its record index instead of aborting the decode.
func (p *TripPayload) UnmarshalJSON(data []byte) error {
	raw, err := decodeObject(data)
	if err != nil {
		return err
	}

	*p = TripPayload{}
	for _, key := range sortedKeys(raw) {
		value := raw[key]
		switch key {
		case "id":
			p.ID = readOnly(value)
		case "created_at":
			p.CreatedAt = readOnly(value)
		case "title":
			err = decodeField(&p.Title, value, "title", &p.TypeErrors)
		case "items":
			err = p.decodeItems(value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *TripPayload) decodeItems(value json.RawMessage) error {
	var elems []json.RawMessage
	if err := decodeField(&elems, value, "items", &p.TypeErrors); err != nil {
		return err
	}
	for i, elem := range elems {
		prefix := fmt.Sprintf("items[%d]", i)
		var item TripItemPayload
		if err := decodeField(&item, elem, prefix, &p.TypeErrors); err != nil {
			return err
		}
		for _, field := range item.TypeErrors {
			p.TypeErrors = append(p.TypeErrors, prefix+"."+field)
		}
		item.TypeErrors = nil
		p.Items = append(p.Items, item)
	}
	return nil
}

type TripItemPayload struct {
	ID          *json.RawMessage `json:"id"`
	DayKey      string           `json:"day_key" validate:"required,max=50"`
	Name        string           `json:"name" validate:"required,max=200"`
	Time        string           `json:"time" validate:"required,max=20"`
	Lat         *float64         `json:"lat"`
	Lng         *float64         `json:"lng"`
	WeatherText *string          `json:"weather_text" validate:"omitnil,max=100"`
	WeatherIcon *string          `json:"weather_icon" validate:"omitnil,max=50"`

	TypeErrors []string `json:"-" validate:"-"`
}

func (p *TripItemPayload) UnmarshalJSON(data []byte) error {
	raw, err := decodeObject(data)
	if err != nil {
		return err
	}

	*p = TripItemPayload{}
	for _, key := range sortedKeys(raw) {
		value := raw[key]
		switch key {
		case "id":
			p.ID = readOnly(value)
		case "day_key":
			err = decodeField(&p.DayKey, value, key, &p.TypeErrors)
		case "name":
			err = decodeField(&p.Name, value, key, &p.TypeErrors)
		case "time":
			err = decodeField(&p.Time, value, key, &p.TypeErrors)
		case "lat":
			err = decodeField(&p.Lat, value, key, &p.TypeErrors)
		case "lng":
			err = decodeField(&p.Lng, value, key, &p.TypeErrors)
		case "weather_text":
			err = decodeField(&p.WeatherText, value, key, &p.TypeErrors)
		case "weather_icon":
			err = decodeField(&p.WeatherIcon, value, key, &p.TypeErrors)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// TripUpdatePayload is the body of PUT/PATCH /trips/{id}/. Title may be
// absent on PATCH but never null.
type TripUpdatePayload struct {
	ID        *json.RawMessage `json:"id"`
	CreatedAt *json.RawMessage `json:"created_at"`
	Title     Nullable[string] `json:"title"`
	Items     *json.RawMessage `json:"items"`
}

// TripItemUpdatePayload is the body of PUT/PATCH /trips/{id}/items/{itemId}/.
// day_key, name and time reject an explicit null; the optional fields are
// cleared by it.
type TripItemUpdatePayload struct {
	ID          *json.RawMessage  `json:"id"`
	DayKey      Nullable[string]  `json:"day_key"`
	Name        Nullable[string]  `json:"name"`
	Time        Nullable[string]  `json:"time"`
	Lat         Nullable[float64] `json:"lat"`
	Lng         Nullable[float64] `json:"lng"`
	WeatherText Nullable[string]  `json:"weather_text"`
	WeatherIcon Nullable[string]  `json:"weather_icon"`
}

func decodeObject(data []byte) (map[string]json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// decodeField unmarshals value into dst. A type mismatch is appended to
// typeErrs under field; any other error is returned.
func decodeField(dst any, value json.RawMessage, field string, typeErrs *[]string) error {
	err := json.Unmarshal(value, dst)
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		*typeErrs = append(*typeErrs, field)
		return nil
	}
	return err
}

// readOnly keeps a read-only key only when it carries a value; null counts
// as absent.
func readOnly(value json.RawMessage) *json.RawMessage {
	if string(value) == "null" {
		return nil
	}
	v := value
	return &v
}

func sortedKeys(raw map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
