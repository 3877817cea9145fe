package event

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/spf13/cast"

	"fb-s2s/dto"
	facebook_tracking "fb-s2s/pkg/facebook-tracking"
	"fb-s2s/pkg/logger"
	"fb-s2s/pkg/metrics"
	"fb-s2s/pkg/transhttp"
)

const maxBodyBytes = 1 << 20

// EventHandler accepts one form bundle, sends it as a conversions event and relays the response.
type EventHandler struct {
	Sender *facebook_tracking.Sender
	// DefaultPixel supplies the pixel id and token when the request leaves them out.
	DefaultPixel *dto.Pixel
}

type EventResponse struct {
	Success        bool              `json:"success"`
	ErrorMessage   string            `json:"error_message,omitempty"`
	UpstreamStatus int               `json:"upstream_status,omitempty"`
	UpstreamBody   json.RawMessage   `json:"upstream_body,omitempty"`
	Response       interface{}       `json:"response,omitempty"`
	Request        *dto.EventPayload `json:"request,omitempty"`
}

func (h *EventHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logContext := logger.LoggerCtx(r.Context())

	body := &dto.SendEventRequest{}
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.UseNumber()
	if err := decoder.Decode(body); err != nil {
		logContext.Infof("Error during parse SendEventRequest %v", err)
		transhttp.RespondJSON(w, http.StatusBadRequest, EventResponse{
			ErrorMessage: "invalid request body: " + err.Error(),
		})
		return
	}

	raw := ConvertInput(body.Input)
	creds := h.applyDefaults(raw, body.Auth)

	eventName, _ := raw.Lookup(dto.FieldEventName)
	if eventName != "" {
		eventName = facebook_tracking.NormalizeEventName(eventName)
		raw[dto.FieldEventName] = eventName
		if !facebook_tracking.IsStandardEvent(eventName) {
			logContext.Debugf("Sending non standard event %v", eventName)
		}
	}

	start := time.Now()
	result, err := h.Sender.Perform(r.Context(), raw, creds)
	if err != nil {
		h.respondError(w, r, metricsLabel(eventName), start, err)
		return
	}

	metrics.ObserveSend(metricsLabel(eventName), metrics.OutcomeSuccess, start)
	metrics.UpstreamStatus.WithLabelValues(strconv.Itoa(result.StatusCode)).Inc()
	transhttp.RespondJSON(w, http.StatusOK, EventResponse{
		Success:  true,
		Response: result.Response,
		Request:  result.Request,
	})
}

// applyDefaults fills the pixel id and access token from the configured pixel when absent.
// The pixel's test code is only applied to events sent to that pixel.
func (h *EventHandler) applyDefaults(raw dto.RawInput, creds dto.Credentials) dto.Credentials {
	if h.DefaultPixel == nil {
		return creds
	}
	if _, ok := raw.Lookup(dto.FieldPixelId); !ok {
		raw[dto.FieldPixelId] = h.DefaultPixel.Id
		if _, ok := raw.Lookup(dto.FieldTestEventCode); !ok && h.DefaultPixel.TestCode != "" {
			raw[dto.FieldTestEventCode] = h.DefaultPixel.TestCode
		}
	}
	if h.DefaultPixel.Token == "" {
		return creds
	}
	switch h.Sender.CredentialSource() {
	case facebook_tracking.CredentialSourceInputField:
		if _, ok := raw.Lookup(dto.FieldAccessToken); !ok {
			raw[dto.FieldAccessToken] = h.DefaultPixel.Token
		}
	default:
		if creds.AccessToken == "" {
			creds.AccessToken = h.DefaultPixel.Token
		}
	}
	return creds
}

func (h *EventHandler) respondError(w http.ResponseWriter, r *http.Request, eventName string, start time.Time, err error) {
	logContext := logger.LoggerCtx(r.Context())

	var (
		missing   *facebook_tracking.MissingRequiredFieldError
		transport *facebook_tracking.TransportError
		parse     *facebook_tracking.ResponseParseError
	)
	switch {
	case errors.As(err, &missing):
		metrics.ObserveSend(eventName, metrics.OutcomeMissingField, start)
		transhttp.RespondJSON(w, http.StatusBadRequest, EventResponse{ErrorMessage: err.Error()})

	case errors.As(err, &transport):
		metrics.ObserveSend(eventName, metrics.OutcomeTransport, start)
		resp := EventResponse{ErrorMessage: err.Error(), UpstreamStatus: transport.StatusCode}
		if transport.StatusCode != 0 {
			metrics.UpstreamStatus.WithLabelValues(strconv.Itoa(transport.StatusCode)).Inc()
			if json.Valid(transport.Body) {
				resp.UpstreamBody = transport.Body
			}
		}
		transhttp.RespondJSON(w, http.StatusBadGateway, resp)

	case errors.As(err, &parse):
		metrics.ObserveSend(eventName, metrics.OutcomeResponseParse, start)
		metrics.UpstreamStatus.WithLabelValues(strconv.Itoa(parse.StatusCode)).Inc()
		transhttp.RespondJSON(w, http.StatusBadGateway, EventResponse{ErrorMessage: err.Error(), UpstreamStatus: parse.StatusCode})

	default:
		metrics.ObserveSend(eventName, metrics.OutcomeInternal, start)
		logContext.Errorw("Could not send event", "error", err.Error())
		transhttp.RespondJSON(w, http.StatusInternalServerError, EventResponse{ErrorMessage: err.Error()})
	}
}

// metricsLabel keeps the event_name label bounded to known names.
func metricsLabel(eventName string) string {
	if facebook_tracking.IsStandardEvent(eventName) {
		return eventName
	}
	for _, fb := range facebook_tracking.EventToFacebookEvent {
		if fb == eventName {
			return eventName
		}
	}
	return "other"
}

// ConvertInput flattens a decoded JSON object into a RawInput.
// null values are dropped, arrays and objects keep their JSON text.
// Numbers should be decoded as json.Number to keep their literal form.
func ConvertInput(input map[string]interface{}) dto.RawInput {
	raw := make(dto.RawInput, len(input))
	for k, v := range input {
		switch val := v.(type) {
		case nil:
			continue
		case string:
			raw[k] = val
		case json.Number:
			raw[k] = val.String()
		case []interface{}, map[string]interface{}:
			b, err := json.Marshal(val)
			if err != nil {
				continue
			}
			raw[k] = string(b)
		default:
			s, err := cast.ToStringE(val)
			if err != nil {
				continue
			}
			raw[k] = s
		}
	}
	return raw
}
