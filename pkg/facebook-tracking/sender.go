package facebook_tracking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"fb-s2s/dto"
	"fb-s2s/pkg/logger"
)

const (
	DefaultApiVersion = "v4.0"
	DefaultBaseURL    = "https://graph.facebook.com"
	DefaultUserAgent  = "zapier-s2s-integration"
	DefaultTimeout    = 30 * time.Second
)

// Options configures a Sender. Zero values fall back to the defaults above.
type Options struct {
	BaseURL    string
	ApiVersion string
	// DisableVersionOverride ignores the userSpecifiedApiVersion input.
	DisableVersionOverride bool
	CredentialSource       CredentialSource
	// UserAgent overrides the header. When empty, authField sends DefaultUserAgent
	// and inputField sends none.
	UserAgent string
	Timeout   time.Duration
	Client    *http.Client
}

// Sender builds one event per call and posts it to the conversions endpoint.
// It holds no per-call state and is safe for concurrent use.
type Sender struct {
	baseURL       string
	apiVersion    string
	allowOverride bool
	source        CredentialSource
	userAgent     string
	client        *http.Client
}

func NewSender(opts Options) *Sender {
	s := &Sender{
		baseURL:       strings.TrimRight(opts.BaseURL, "/"),
		apiVersion:    opts.ApiVersion,
		allowOverride: !opts.DisableVersionOverride,
		source:        opts.CredentialSource,
		userAgent:     opts.UserAgent,
		client:        opts.Client,
	}
	if s.baseURL == "" {
		s.baseURL = DefaultBaseURL
	}
	if s.apiVersion == "" {
		s.apiVersion = DefaultApiVersion
	}
	if s.source == "" {
		s.source = CredentialSourceAuthField
	}
	if s.userAgent == "" && s.source == CredentialSourceAuthField {
		s.userAgent = DefaultUserAgent
	}
	if s.client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		s.client = NewHTTPClient(timeout)
	}
	return s
}

// NewHTTPClient returns a pooled, instrumented client.
func NewHTTPClient(timeout time.Duration) *http.Client {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 100
	t.MaxConnsPerHost = 100
	t.MaxIdleConnsPerHost = 100

	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(t),
	}
}

func (s *Sender) CredentialSource() CredentialSource {
	return s.source
}

// ApiVersion returns the version used for raw: the input override if allowed and present.
func (s *Sender) ApiVersion(raw dto.RawInput) string {
	if s.allowOverride {
		if v, ok := raw.Lookup(dto.FieldApiVersion); ok {
			return v
		}
	}
	return s.apiVersion
}

// EventsURL returns {base}/{version}/{pixel}/events?access_token={token}.
func (s *Sender) EventsURL(apiVersion, pixelId, accessToken string) string {
	return fmt.Sprintf("%v/%v/%v/events?access_token=%v",
		s.baseURL, url.PathEscape(apiVersion), url.PathEscape(pixelId), url.QueryEscape(accessToken))
}

// Perform builds the event payload from raw, posts it once and returns the parsed response
// together with the payload. It never retries.
func (s *Sender) Perform(ctx context.Context, raw dto.RawInput, creds dto.Credentials) (*dto.Result, error) {
	logContext := logger.LoggerCtx(ctx)

	pixelId, ok := raw.Lookup(dto.FieldPixelId)
	if !ok {
		return nil, &MissingRequiredFieldError{Field: dto.FieldPixelId}
	}
	accessToken := ResolveAccessToken(s.source, raw, creds)
	apiVersion := s.ApiVersion(raw)

	payload, err := BuildPayload(raw)
	if err != nil {
		return nil, err
	}

	rawBody, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "marshal event payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.EventsURL(apiVersion, pixelId, accessToken), bytes.NewReader(rawBody))
	if err != nil {
		return nil, &TransportError{Err: errors.Wrap(stripURL(err), "create request")}
	}
	req.Header.Set("Content-Type", "application/json")
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	start := time.Now()
	res, err := s.client.Do(req)
	timeLog(logContext, start, "do http request")
	if err != nil {
		err = stripURL(err)
		logContext.Errorw("Error send request", "err", err.Error(), "pid", pixelId)
		return nil, &TransportError{Err: errors.Wrap(err, "send request")}
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		logContext.Errorw("Error read body", "err", err.Error(), "pid", pixelId)
		return nil, &TransportError{StatusCode: res.StatusCode, Err: errors.Wrap(err, "read response body")}
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		logContext.Warnw("Conversions endpoint rejected event",
			"pid", pixelId,
			"event_name", payload.Data[0].EventName,
			"status", res.StatusCode)
		return nil, &TransportError{StatusCode: res.StatusCode, Body: body}
	}

	var parsed interface{}
	if err := json.Unmarshal(body, &parsed); err != nil {
		logContext.Errorw("Error parse response", "err", err.Error(), "pid", pixelId)
		return nil, &ResponseParseError{StatusCode: res.StatusCode, Body: body, Err: err}
	}

	logContext.Infow("Sent event",
		"pid", pixelId,
		"event_name", payload.Data[0].EventName,
		"api_version", apiVersion,
		"took", time.Since(start).String())

	return &dto.Result{StatusCode: res.StatusCode, Response: parsed, Request: payload}, nil
}

// stripURL drops the request URL from url.Error, since it carries the access token.
func stripURL(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return ue.Err
	}
	return err
}

func timeLog(l *logger.BkLogger, ts time.Time, task string) {
	elapsed := time.Since(ts)
	if elapsed < 200*time.Millisecond {
		return
	}
	l.Infof("%v took %v", task, elapsed)
}
