package event

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fb-s2s/dto"
	facebook_tracking "fb-s2s/pkg/facebook-tracking"
	"fb-s2s/pkg/metrics"
)

type upstream struct {
	srv   *httptest.Server
	path  string
	token string
	body  []byte
}

func newUpstream(t *testing.T, status int, response string) *upstream {
	t.Helper()
	u := &upstream{}
	u.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.path = r.URL.Path
		u.token = r.URL.Query().Get("access_token")
		u.body, _ = io.ReadAll(r.Body)
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(u.srv.Close)
	return u
}

func serve(h http.Handler, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/s2s/events", strings.NewReader(body))
	h.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestEventHandler_Success(t *testing.T) {
	up := newUpstream(t, http.StatusOK, `{"events_received":1}`)
	h := &EventHandler{Sender: facebook_tracking.NewSender(facebook_tracking.Options{BaseURL: up.srv.URL})}

	rec := serve(h, `{
		"input": {
			"pixelId": "123",
			"eventName": "add_to_cart",
			"eventTime": 1600000000,
			"em": "Test@Example.com",
			"fn": "",
			"value": 9.99,
			"currency": "usd",
			"content_ids": ["ABC123", "XYZ789"],
			"eventId": null
		},
		"auth": {"accessToken": "tok"}
	}`)

	require.Equal(t, http.StatusOK, rec.Code)
	out := decodeResponse(t, rec)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, map[string]interface{}{"events_received": float64(1)}, out["response"])

	assert.Equal(t, "/v4.0/123/events", up.path)
	assert.Equal(t, "tok", up.token)

	var sent dto.EventPayload
	require.NoError(t, json.Unmarshal(up.body, &sent))
	item := sent.Data[0]
	assert.Equal(t, facebook_tracking.FbEventAddToCart, item.EventName)
	assert.Equal(t, "1600000000", item.EventTime)
	assert.Empty(t, item.EventId)
	assert.Equal(t, map[string]string{"em": facebook_tracking.Hash("test@example.com")}, item.UserData)
	assert.Equal(t, map[string]string{
		"value":       "9.99",
		"currency":    "usd",
		"content_ids": `["ABC123","XYZ789"]`,
	}, item.CustomData)
}

func TestEventHandler_DefaultPixel(t *testing.T) {
	up := newUpstream(t, http.StatusOK, `{}`)

	h := &EventHandler{
		Sender:       facebook_tracking.NewSender(facebook_tracking.Options{BaseURL: up.srv.URL}),
		DefaultPixel: &dto.Pixel{Id: "999", Token: "configured"},
	}
	rec := serve(h, `{"input":{"eventName":"Lead","eventTime":"1"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/v4.0/999/events", up.path)
	assert.Equal(t, "configured", up.token)

	// request values win
	rec = serve(h, `{"input":{"pixelId":"1","eventName":"Lead","eventTime":"1"},"auth":{"accessToken":"mine"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/v4.0/1/events", up.path)
	assert.Equal(t, "mine", up.token)

	h.Sender = facebook_tracking.NewSender(facebook_tracking.Options{
		BaseURL:          up.srv.URL,
		CredentialSource: facebook_tracking.CredentialSourceInputField,
	})
	rec = serve(h, `{"input":{"eventName":"Lead","eventTime":"1"},"auth":{"accessToken":"ignored"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "configured", up.token)
}

func TestEventHandler_DefaultPixelTestCode(t *testing.T) {
	up := newUpstream(t, http.StatusOK, `{}`)

	h := &EventHandler{
		Sender:       facebook_tracking.NewSender(facebook_tracking.Options{BaseURL: up.srv.URL}),
		DefaultPixel: &dto.Pixel{Id: "555", Token: "tok", TestCode: "TEST123"},
	}
	rec := serve(h, `{"input":{"eventName":"Lead","eventTime":"1"}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var sent dto.EventPayload
	require.NoError(t, json.Unmarshal(up.body, &sent))
	assert.Equal(t, "TEST123", sent.TestEventCode)

	// not applied to other pixels
	rec = serve(h, `{"input":{"pixelId":"1","eventName":"Lead","eventTime":"1"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, string(up.body), "test_event_code")

	// an explicit code wins
	rec = serve(h, `{"input":{"eventName":"Lead","eventTime":"1","testEventCode":"MINE"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	sent = dto.EventPayload{}
	require.NoError(t, json.Unmarshal(up.body, &sent))
	assert.Equal(t, "MINE", sent.TestEventCode)
}

func TestEventHandler_UpstreamStatusLabel(t *testing.T) {
	up := newUpstream(t, http.StatusAccepted, `{"events_received":1}`)
	h := &EventHandler{Sender: facebook_tracking.NewSender(facebook_tracking.Options{BaseURL: up.srv.URL})}

	before := testutil.ToFloat64(metrics.UpstreamStatus.WithLabelValues("202"))
	rec := serve(h, `{"input":{"pixelId":"1","eventName":"Lead","eventTime":"1"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.UpstreamStatus.WithLabelValues("202")))
}

func TestEventHandler_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		response string
		body     string
		wantCode int
		check    func(t *testing.T, out map[string]interface{})
	}{
		{
			name:     "malformed body",
			status:   http.StatusOK,
			response: `{}`,
			body:     `{"input":`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "missing pixel",
			status:   http.StatusOK,
			response: `{}`,
			body:     `{"input":{"eventName":"Lead","eventTime":"1"}}`,
			wantCode: http.StatusBadRequest,
			check: func(t *testing.T, out map[string]interface{}) {
				assert.Contains(t, out["error_message"], dto.FieldPixelId)
			},
		},
		{
			name:     "upstream rejects",
			status:   http.StatusBadRequest,
			response: `{"error":{"code":100}}`,
			body:     `{"input":{"pixelId":"1","eventName":"Lead","eventTime":"1"}}`,
			wantCode: http.StatusBadGateway,
			check: func(t *testing.T, out map[string]interface{}) {
				assert.Equal(t, float64(http.StatusBadRequest), out["upstream_status"])
				assert.Equal(t, map[string]interface{}{"error": map[string]interface{}{"code": float64(100)}}, out["upstream_body"])
			},
		},
		{
			name:     "upstream returns garbage",
			status:   http.StatusOK,
			response: `not json`,
			body:     `{"input":{"pixelId":"1","eventName":"Lead","eventTime":"1"}}`,
			wantCode: http.StatusBadGateway,
			check: func(t *testing.T, out map[string]interface{}) {
				assert.Contains(t, out["error_message"], "parse")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up := newUpstream(t, tt.status, tt.response)
			h := &EventHandler{Sender: facebook_tracking.NewSender(facebook_tracking.Options{BaseURL: up.srv.URL})}

			rec := serve(h, tt.body)
			assert.Equal(t, tt.wantCode, rec.Code)

			out := decodeResponse(t, rec)
			assert.Equal(t, false, out["success"])
			assert.NotEmpty(t, out["error_message"])
			if tt.check != nil {
				tt.check(t, out)
			}
		})
	}
}

func TestConvertInput(t *testing.T) {
	input := map[string]interface{}{
		"s":     "text",
		"n":     json.Number("1600000000"),
		"f":     9.5,
		"b":     true,
		"nil":   nil,
		"arr":   []interface{}{"a", "b"},
		"obj":   map[string]interface{}{"k": "v"},
		"blank": "",
	}

	raw := ConvertInput(input)
	assert.Equal(t, dto.RawInput{
		"s":     "text",
		"n":     "1600000000",
		"f":     "9.5",
		"b":     "true",
		"arr":   `["a","b"]`,
		"obj":   `{"k":"v"}`,
		"blank": "",
	}, raw)
}
