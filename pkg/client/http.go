package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-regform/pkg/model"
)

// Default API routes, relative to the base URL.
const (
	OfferPath                = "/api/v1/offer"
	RegistrationFormPath     = "/api/v1/registration-form"
	RegistrationResponsePath = "/api/v1/registration-response"
)

// RequestIDHeader carries a per-call id so client and server logs correlate.
const RequestIDHeader = "X-Request-ID"

const defaultTimeout = 30 * time.Second

// HTTPOption configures an HTTPClient.
type HTTPOption func(*HTTPClient)

// WithHTTPClient overrides the underlying *http.Client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(c *HTTPClient) {
		if client != nil {
			c.http = client
		}
	}
}

// WithToken sends token as a bearer Authorization header.
func WithToken(token string) HTTPOption {
	return func(c *HTTPClient) {
		c.token = strings.TrimSpace(token)
	}
}

// WithTimeout bounds every request. Zero disables the per-request timeout.
func WithTimeout(timeout time.Duration) HTTPOption {
	return func(c *HTTPClient) {
		if timeout >= 0 {
			c.timeout = timeout
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *slog.Logger) HTTPOption {
	return func(c *HTTPClient) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRequestIDFunc overrides request id generation.
func WithRequestIDFunc(fn func() string) HTTPOption {
	return func(c *HTTPClient) {
		if fn != nil {
			c.requestID = fn
		}
	}
}

// HTTPClient implements Collaborators against the registration API.
type HTTPClient struct {
	baseURL   *url.URL
	http      *http.Client
	token     string
	timeout   time.Duration
	logger    *slog.Logger
	requestID func() string
}

var _ Collaborators = (*HTTPClient)(nil)

// NewHTTPClient builds a client rooted at baseURL.
func NewHTTPClient(baseURL string, options ...HTTPOption) (*HTTPClient, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		return nil, errors.New("client: base url is required")
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("client: parse base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("client: unsupported scheme %q", parsed.Scheme)
	}

	c := &HTTPClient{
		baseURL:   parsed,
		http:      http.DefaultClient,
		timeout:   defaultTimeout,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		requestID: uuid.NewString,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c, nil
}

// GetOffer fetches the caller's offer for eventID. Event id 0 means "no
// event" and is forwarded as-is.
func (c *HTTPClient) GetOffer(ctx context.Context, eventID int) (OfferResult, error) {
	query := url.Values{"event_id": {strconv.Itoa(eventID)}}
	resp, err := c.do(ctx, http.MethodGet, OfferPath, query, nil)
	if err != nil {
		return OfferResult{Error: err.Error()}, err
	}
	if !resp.ok() {
		return OfferResult{Error: resp.message()}, nil
	}
	if isNullBody(resp.body) {
		return OfferResult{}, nil
	}
	var offer model.Offer
	if err := json.Unmarshal(resp.body, &offer); err != nil {
		err = fmt.Errorf("client: decode offer: %w", err)
		return OfferResult{Error: err.Error()}, err
	}
	return OfferResult{Offer: &offer}, nil
}

// GetRegistrationForm fetches the form schema for eventID under offerID.
// StatusCode is always populated when the server answered.
func (c *HTTPClient) GetRegistrationForm(ctx context.Context, eventID, offerID int) (FormResult, error) {
	query := url.Values{
		"event_id": {strconv.Itoa(eventID)},
		"offer_id": {strconv.Itoa(offerID)},
	}
	resp, err := c.do(ctx, http.MethodGet, RegistrationFormPath, query, nil)
	if err != nil {
		return FormResult{Error: err.Error()}, err
	}
	result := FormResult{StatusCode: resp.status}
	if !resp.ok() {
		result.Error = resp.message()
		return result, nil
	}
	if err := json.Unmarshal(resp.body, &result.Form); err != nil {
		err = fmt.Errorf("client: decode registration form: %w", err)
		result.Error = err.Error()
		return result, err
	}
	return result, nil
}

// GetRegistrationResponse fetches the caller's prior answers, if any.
func (c *HTTPClient) GetRegistrationResponse(ctx context.Context) (ResponseResult, error) {
	resp, err := c.do(ctx, http.MethodGet, RegistrationResponsePath, nil, nil)
	if err != nil {
		return ResponseResult{Error: err.Error()}, err
	}
	if !resp.ok() {
		return ResponseResult{Error: resp.message()}, nil
	}
	var prior PriorResponse
	if err := json.Unmarshal(resp.body, &prior); err != nil {
		err = fmt.Errorf("client: decode registration response: %w", err)
		return ResponseResult{Error: err.Error()}, err
	}
	return ResponseResult{Form: prior}, nil
}

// SubmitResponse creates (POST) or updates (PUT) the caller's registration.
func (c *HTTPClient) SubmitResponse(ctx context.Context, payload model.Submission, isUpdate bool) (SubmitResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		err = fmt.Errorf("client: encode submission: %w", err)
		return SubmitResult{Error: err.Error()}, err
	}
	method := http.MethodPost
	if isUpdate {
		method = http.MethodPut
	}
	resp, err := c.do(ctx, method, RegistrationResponsePath, nil, body)
	if err != nil {
		return SubmitResult{Error: err.Error()}, err
	}
	result := SubmitResult{Form: SubmitStatus{Status: resp.status}}
	if !resp.ok() {
		result.Error = resp.message()
		return result, nil
	}
	result.Form.RegistrationID = decodeRegistrationID(resp.body)
	return result, nil
}

type response struct {
	status int
	body   []byte
}

func (r response) ok() bool {
	return r.status >= 200 && r.status < 300
}

// message extracts the API's {"message": "..."} error body, falling back to
// the status text.
func (r response) message() string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(r.body, &payload); err == nil {
		if msg := strings.TrimSpace(payload.Message); msg != "" {
			return msg
		}
		if msg := strings.TrimSpace(payload.Error); msg != "" {
			return msg
		}
	}
	if text := http.StatusText(r.status); text != "" {
		return text
	}
	return "unexpected status " + strconv.Itoa(r.status)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, body []byte) (response, error) {
	if ctx == nil {
		return response{}, errors.New("client: context is required")
	}

	reqCtx := ctx
	var cancel context.CancelFunc
	if c.timeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	target := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		target.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(reqCtx, method, target.String(), reader)
	if err != nil {
		return response{}, fmt.Errorf("client: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	requestID := c.requestID()
	req.Header.Set(RequestIDHeader, requestID)

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("client: request failed",
			"method", method,
			"path", path,
			"request_id", requestID,
			"error", err,
		)
		return response{}, fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return response{}, fmt.Errorf("client: read %s %s: %w", method, path, err)
	}

	c.logger.Debug("client: request completed",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(started),
	)
	return response{status: resp.StatusCode, body: data}, nil
}

func isNullBody(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func decodeRegistrationID(body []byte) model.RegistrationID {
	if isNullBody(body) {
		return 0
	}
	var payload struct {
		ID             model.RegistrationID `json:"id"`
		RegistrationID model.RegistrationID `json:"registration_id"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0
	}
	if payload.RegistrationID.Known() {
		return payload.RegistrationID
	}
	return payload.ID
}
