package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/supportline/complaintdesk/internal/complaints"
	"go.uber.org/zap"
)

var errMissingBaseURL = errors.New("dashboard: base URL is required")

// ClientConfig describes how to reach the update service.
type ClientConfig struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client is the typed HTTP boundary over the update service. It enforces no
// timeout of its own; the injected http.Client's defaults apply.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(cfg ClientConfig) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errMissingBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// ListComplaints fetches the full record list.
func (c *Client) ListComplaints(ctx context.Context) ([]complaints.Complaint, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/customers", http.NoBody)
	if err != nil {
		return nil, newTransportError(err)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, newTransportError(err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, c.failureFromResponse(response)
	}

	var records []complaints.Complaint
	if err := json.NewDecoder(response.Body).Decode(&records); err != nil {
		return nil, newTransportError(err)
	}

	return records, nil
}

// UpdateIssue patches one complaint's issue text.
func (c *Client) UpdateIssue(ctx context.Context, id, issue string) error {
	return c.patchComplaint(ctx, id, patchPayload{Issue: &issue})
}

// UpdateStatus patches one complaint's workflow status.
func (c *Client) UpdateStatus(ctx context.Context, id string, status complaints.Status) error {
	value := status.String()
	return c.patchComplaint(ctx, id, patchPayload{Status: &value})
}

type patchPayload struct {
	Issue  *string `json:"issue,omitempty"`
	Status *string `json:"status,omitempty"`
}

func (c *Client) patchComplaint(ctx context.Context, id string, payload patchPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return newTransportError(err)
	}

	url := fmt.Sprintf("%s/api/customers/%s", c.baseURL, id)
	request, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(body))
	if err != nil {
		return newTransportError(err)
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return newTransportError(err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		apiErr := c.failureFromResponse(response)
		c.logger.Warn("complaint patch rejected",
			zap.String("complaint_id", id),
			zap.Int("status_code", response.StatusCode),
			zap.Error(apiErr))
		return apiErr
	}

	io.Copy(io.Discard, response.Body) //nolint:errcheck
	return nil
}

type messagePayload struct {
	Message string `json:"message"`
}

// failureFromResponse maps a non-2xx response onto the boundary error enum,
// carrying the server-supplied message when one is present.
func (c *Client) failureFromResponse(response *http.Response) *APIError {
	body, err := io.ReadAll(io.LimitReader(response.Body, 1<<16))
	if err != nil {
		return newTransportError(err)
	}

	var payload messagePayload
	if err := json.Unmarshal(body, &payload); err != nil || payload.Message == "" {
		return &APIError{
			Kind:  KindTransport,
			cause: fmt.Errorf("unexpected response status %d", response.StatusCode),
		}
	}

	return &APIError{
		Kind:    kindForStatus(response.StatusCode),
		Message: payload.Message,
	}
}
