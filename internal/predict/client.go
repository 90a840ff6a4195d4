package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/Skufu/heartform/internal/form"
)

const (
	maxResponseBytes = 1 << 20

	genericFailure   = "Prediction failed"
	transportFailure = "Error making prediction. Please try again."
)

var ErrMalformedResponse = errors.New("malformed prediction response")

// APIError is a non-2xx answer from the inference service. Detail carries the
// body's "detail" string when there was one.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return genericFailure
}

// Client talks JSON over HTTP to the inference service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return NewClientWithHTTP(baseURL, &http.Client{Timeout: timeout})
}

// NewClientWithHTTP creates a Client with an injected http.Client.
func NewClientWithHTTP(baseURL string, hc *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: hc,
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Wake sends HEAD to the service root. Any HTTP answer, whatever its status,
// counts as delivered; only transport failures are returned.
func (c *Client) Wake(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("build wake request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("wake %s: %w", c.baseURL, err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return nil
}

// Predict posts the payload to /predict and returns the response body as-is.
func (c *Client) Predict(ctx context.Context, payload form.Payload) (Result, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build predict request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read predict response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		if gjson.ValidBytes(data) {
			if detail := gjson.GetBytes(data, "detail"); detail.Type == gjson.String {
				apiErr.Detail = detail.Str
			}
		}
		return nil, apiErr
	}

	if !json.Valid(data) {
		return nil, ErrMalformedResponse
	}
	return Result(data), nil
}
