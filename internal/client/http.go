package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/alfredjeanlab/ticketbot/internal/model"
)

// HTTPClient implements TicketsClient over the ops HTTP/JSON API.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewHTTPClient returns a client for baseURL (e.g. "http://localhost:8080").
// When token is non-empty it is sent as a bearer token on every request.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{},
	}
}

// Close is a no-op for the HTTP client.
func (c *HTTPClient) Close() error { return nil }

func (c *HTTPClient) ListTickets(ctx context.Context, req *ListTicketsRequest) (*ListTicketsResponse, error) {
	q := url.Values{}
	if req != nil && req.Pending != nil {
		q.Set("pending", strconv.FormatBool(*req.Pending))
	}
	if req != nil && req.Limit > 0 {
		q.Set("limit", strconv.Itoa(req.Limit))
	}

	path := "/v1/tickets"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp ListTicketsResponse
	if err := c.getJSON(ctx, path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) GetTicket(ctx context.Context, id string) (*model.Ticket, error) {
	var t model.Ticket
	if err := c.getJSON(ctx, "/v1/tickets/"+url.PathEscape(id), &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *HTTPClient) GetTicketByChannel(ctx context.Context, channelID string) (*model.Ticket, error) {
	var t model.Ticket
	if err := c.getJSON(ctx, "/v1/channels/"+url.PathEscape(channelID)+"/ticket", &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Health returns the reported status, "ok" once the bot is connected.
// A bot that is still starting answers 503 with status "starting".
func (c *HTTPClient) Health(ctx context.Context) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	err := c.getJSON(ctx, "/v1/health", &resp)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusServiceUnavailable {
		return "starting", nil
	}
	if err != nil {
		return "", err
	}
	return resp.Status, nil
}

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

func (c *HTTPClient) getJSON(ctx context.Context, path string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
