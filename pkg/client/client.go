// Package client talks to the netinventory HTTP API and carries the
// registration checks an operator console runs before creating a device.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/architeacher/netinventory/pkg/circuitbreaker"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const defaultTimeout = 10 * time.Second

var (
	ErrNotFound   = errors.New("device not found")
	ErrValidation = errors.New("request rejected by validation")
)

type (
	Device struct {
		ID          int64   `json:"id"`
		IP          string  `json:"ip"`
		Name        string  `json:"name"`
		TrafficRate float64 `json:"traffic_rate"`
	}

	// APIError is any non-2xx answer from the service.
	APIError struct {
		StatusCode int    `json:"-"`
		Code       string `json:"code"`
		Message    string `json:"message"`
	}

	Client struct {
		baseURL    string
		httpClient *http.Client
		cb         *circuitbreaker.CircuitBreaker[[]byte]
	}

	Option func(*Client)

	createRequest struct {
		IP          string  `json:"ip"`
		Name        string  `json:"name"`
		TrafficRate float64 `json:"traffic_rate"`
	}
)

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("netinventory: status %d", e.StatusCode)
	}

	return fmt.Sprintf("netinventory: status %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// Is lets callers match 404 and 400 answers with ErrNotFound and ErrValidation.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrValidation:
		return e.StatusCode == http.StatusBadRequest
	default:
		return false
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithCircuitBreaker guards every call. Only transport failures and 5xx answers count against it.
func WithCircuitBreaker(cfg circuitbreaker.Config) Option {
	return func(c *Client) {
		cfg.IsSuccessful = countsAsSuccess
		c.cb = circuitbreaker.New[[]byte](cfg)
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   defaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Client) List(ctx context.Context) ([]Device, error) {
	body, err := c.do(ctx, http.MethodGet, "/devices", nil)
	if err != nil {
		return nil, err
	}

	devices := []Device{}
	if err := json.Unmarshal(body, &devices); err != nil {
		return nil, fmt.Errorf("decoding devices: %w", err)
	}

	return devices, nil
}

// Create stores a device as given. The service assigns the id.
func (c *Client) Create(ctx context.Context, ip, name string, trafficRate float64) (Device, error) {
	payload, err := json.Marshal(createRequest{IP: ip, Name: name, TrafficRate: trafficRate})
	if err != nil {
		return Device{}, fmt.Errorf("encoding device: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, "/devices", payload)
	if err != nil {
		return Device{}, err
	}

	var device Device
	if err := json.Unmarshal(body, &device); err != nil {
		return Device{}, fmt.Errorf("decoding device: %w", err)
	}

	return device, nil
}

func (c *Client) Delete(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, "/devices/"+strconv.FormatInt(id, 10), nil)

	return err
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	return circuitbreaker.Execute(c.cb, func() ([]byte, error) {
		var reqBody io.Reader
		if payload != nil {
			reqBody = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
		if err != nil {
			return nil, fmt.Errorf("building %s %s: %w", method, path, err)
		}

		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", method, path, err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("reading %s %s response: %w", method, path, err)
		}

		if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
			return body, nil
		}

		apiErr := &APIError{StatusCode: resp.StatusCode}
		_ = json.Unmarshal(body, apiErr)

		return nil, apiErr
	})
}

func countsAsSuccess(err error) bool {
	if err == nil {
		return true
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode < http.StatusInternalServerError
	}

	return false
}
