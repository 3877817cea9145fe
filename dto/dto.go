package dto

// Input field names accepted in a RawInput.
const (
	FieldPixelId     = "pixelId"
	FieldAccessToken = "accessToken"
	FieldEventName   = "eventName"
	FieldEventTime   = "eventTime"
	FieldEventId     = "eventId"
	FieldApiVersion  = "userSpecifiedApiVersion"

	// FieldTestEventCode routes the event to the Events Manager test tool.
	FieldTestEventCode = "testEventCode"
)

// RawInput is the flat form bundle. A missing key means the field was not supplied.
type RawInput map[string]string

// Lookup returns the value of field and whether it is defined and non-empty.
func (r RawInput) Lookup(field string) (string, bool) {
	v, ok := r[field]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Credentials is the credential bundle kept apart from the form inputs.
type Credentials struct {
	AccessToken string `json:"accessToken"`
}

// SendEventRequest is the body accepted by the events endpoint.
type SendEventRequest struct {
	Input map[string]interface{} `json:"input"`
	Auth  Credentials            `json:"auth"`
}
