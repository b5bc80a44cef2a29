// Package heynabo talks to the Heynabo members API.
package heynabo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"booking-warden/internal/config"
	"booking-warden/internal/logger"
	"booking-warden/internal/models"
)

// ErrUnexpectedStatus wraps every non-2xx answer.
var ErrUnexpectedStatus = errors.New("heynabo: unexpected status")

// StatusError is a non-2xx answer. It matches ErrUnexpectedStatus.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%v: %s %s returned %s: %s", ErrUnexpectedStatus, e.Method, e.Path, e.Status, e.Body)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrUnexpectedStatus
}

// IsUnauthorized reports whether err carries a 401 from the API, i.e. the
// session token was rejected.
func IsUnauthorized(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusUnauthorized
}

type Client struct {
	baseURL  string
	email    string
	password string
	client   *http.Client
	logger   *logger.Logger
}

func NewClient(cfg config.HeynaboConfig, client *http.Client, log *logger.Logger) *Client {
	return &Client{
		baseURL:  BaseURL(cfg.Host),
		email:    cfg.Email,
		password: cfg.Password,
		client:   client,
		logger:   log,
	}
}

// BaseURL turns a bare host into an https URL; hosts that already carry a
// scheme are kept as they are.
func BaseURL(host string) string {
	host = strings.TrimRight(host, "/")
	if strings.Contains(host, "://") {
		return host
	}
	return "https://" + host
}

// Login exchanges the configured credentials for a session token.
func (c *Client) Login(ctx context.Context) (*models.Session, error) {
	var session models.Session
	body := models.LoginRequest{Email: c.email, Password: c.password}
	if err := c.do(ctx, http.MethodPost, "/api/login", "", body, &session); err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	if session.Token == "" {
		return nil, errors.New("login failed: response carried no token")
	}
	c.logger.LogFeed("LOGIN", "/api/login", fmt.Sprintf("Logged in as %s %s (%s)", session.FirstName, session.LastName, session.Email))
	return &session, nil
}

// FetchBookingOrders returns the booking item with its current order window.
func (c *Client) FetchBookingOrders(ctx context.Context, bookingID int64, token string) (*models.Booking, error) {
	var booking models.Booking
	path := fmt.Sprintf("/api/members/bookings/items/%d", bookingID)
	if err := c.do(ctx, http.MethodGet, path, token, nil, &booking); err != nil {
		return nil, fmt.Errorf("booking fetch failed: %w", err)
	}
	c.logger.LogFeed("FETCH", path, fmt.Sprintf("Booking ID: %d with %d orders", booking.ID, len(booking.Orders)))
	return &booking, nil
}

func (c *Client) FetchLocations(ctx context.Context, token string) ([]models.Location, error) {
	var locations []models.Location
	if err := c.do(ctx, http.MethodGet, "/api/members/locations", token, nil, &locations); err != nil {
		return nil, fmt.Errorf("locations fetch failed: %w", err)
	}
	return locations, nil
}

func (c *Client) FetchUsers(ctx context.Context, token string) ([]models.User, error) {
	var users models.UserList
	if err := c.do(ctx, http.MethodGet, "/api/members/users", token, nil, &users); err != nil {
		return nil, fmt.Errorf("users fetch failed: %w", err)
	}
	return users.List, nil
}

// CreatePost publishes a post to a group.
func (c *Client) CreatePost(ctx context.Context, token string, post models.PostRequest) error {
	if err := c.do(ctx, http.MethodPost, "/api/members/posts", token, post, nil); err != nil {
		return fmt.Errorf("post failed: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out interface{}) error {
	var reqBody io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.logger.Debug("FEED", fmt.Sprintf("%s %s", method, path))
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			c.logger.Error("FEED", fmt.Sprintf("Failed to close response body: %v", err))
		}
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}
