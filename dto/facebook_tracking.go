package dto

// Pixel is a configured pixel with its access token and optional test event code.
type Pixel struct {
	Id       string `json:"id"`
	Token    string `json:"token"`
	TestCode string `json:"test_code"`
}

// EventPayload is the body posted to the conversions endpoint.
type EventPayload struct {
	Data          []*EventData `json:"data"`
	TestEventCode string       `json:"test_event_code,omitempty"`
}

type EventData struct {
	EventName  string            `json:"event_name"`
	EventTime  string            `json:"event_time"`
	EventId    string            `json:"event_id,omitempty"`
	UserData   map[string]string `json:"user_data"`
	CustomData map[string]string `json:"custom_data"`
}

// Result carries the parsed conversions response together with the payload that produced it.
type Result struct {
	StatusCode int           `json:"-"`
	Response   interface{}   `json:"response"`
	Request    *EventPayload `json:"request"`
}
