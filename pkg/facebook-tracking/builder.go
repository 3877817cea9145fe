package facebook_tracking

import (
	"fb-s2s/dto"
)

var (
	// HashFields are the user_data fields, hashed before sending.
	HashFields = []string{
		"fn", "ln", "em", "ct", "st",
		"country", "zp", "ph",
		"external_id",
	}

	// OriginFields are the custom_data fields, sent as supplied.
	OriginFields = []string{
		"value", "currency",
		"content_ids", "content_type",
	}
)

// BuildPayload assembles the single event payload for raw.
// eventName and eventTime are required; every other field is omitted when absent or empty.
func BuildPayload(raw dto.RawInput) (*dto.EventPayload, error) {
	eventName, ok := raw.Lookup(dto.FieldEventName)
	if !ok {
		return nil, &MissingRequiredFieldError{Field: dto.FieldEventName}
	}
	eventTime, ok := raw.Lookup(dto.FieldEventTime)
	if !ok {
		return nil, &MissingRequiredFieldError{Field: dto.FieldEventTime}
	}

	item := &dto.EventData{
		EventName:  eventName,
		EventTime:  eventTime,
		UserData:   make(map[string]string),
		CustomData: make(map[string]string),
	}
	if eventId, ok := raw.Lookup(dto.FieldEventId); ok {
		item.EventId = eventId
	}

	for _, field := range HashFields {
		SetHashedField(item.UserData, raw, field)
	}
	for _, field := range OriginFields {
		SetField(item.CustomData, raw, field)
	}

	payload := &dto.EventPayload{Data: []*dto.EventData{item}}
	if code, ok := raw.Lookup(dto.FieldTestEventCode); ok {
		payload.TestEventCode = code
	}
	return payload, nil
}
