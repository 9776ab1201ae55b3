// Package bookstore is the typed client for the upstream book-issue API,
// the sole source of truth for users, books and bookings. The gateway never
// mutates state except through this client.
package bookstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	jsoniter "github.com/json-iterator/go"
	"golang.org/x/time/rate"

	"github.com/joy095/bookmarathon/models/book_models"
	"github.com/joy095/bookmarathon/models/booking_models"
	"github.com/joy095/bookmarathon/models/user_models"
	"github.com/joy095/bookmarathon/settlement"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// API is the surface the controllers depend on. The interface exists so
// tests can stub the upstream store.
type API interface {
	CreateUser(ctx context.Context, req user_models.CreateUserRequest) (*user_models.User, error)
	ListUsers(ctx context.Context) ([]user_models.User, error)
	ListBooks(ctx context.Context) ([]book_models.Book, error)
	CreateBooking(ctx context.Context, req booking_models.CreateBookingRequest) (*CreateBookingResult, error)
	ListBookings(ctx context.Context, userID string) ([]booking_models.Booking, error)
	ListAdminBookings(ctx context.Context, groupID string) ([]booking_models.Booking, error)
	UpdateBooking(ctx context.Context, bookingID string, op settlement.UpdateOp) error
	ApproveBooking(ctx context.Context, bookingID string) (*booking_models.Booking, error)
}

// APIError is a non-success response from the upstream store, carrying the
// status code and the server-provided message when one was present.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("upstream returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("upstream returned %d", e.Status)
}

// Client talks to the upstream store over HTTP. Every request carries the
// configured bearer credential, a deadline, and passes through an outbound
// rate limiter. Idempotent reads retry with exponential backoff on 429/5xx.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	limiter    *rate.Limiter
	maxRetries int
}

var _ API = (*Client)(nil)

// NewClient builds a store client for the given base URL. The base URL is
// the single authoritative upstream host; no endpoint is hardcoded.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		baseURL:    baseURL,
		token:      token,
		limiter:    rate.NewLimiter(rate.Limit(20), 5),
		maxRetries: 2,
	}
}

// CreateUser registers a user upstream. POST /users
func (c *Client) CreateUser(ctx context.Context, req user_models.CreateUserRequest) (*user_models.User, error) {
	var res struct {
		Data user_models.User `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/users", req, &res); err != nil {
		return nil, err
	}
	return &res.Data, nil
}

// ListUsers lists all registered users. GET /users
func (c *Client) ListUsers(ctx context.Context) ([]user_models.User, error) {
	var users []user_models.User
	if err := c.getWithRetry(ctx, "/users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

// ListBooks lists the catalog. GET /books
func (c *Client) ListBooks(ctx context.Context) ([]book_models.Book, error) {
	var books []book_models.Book
	if err := c.getWithRetry(ctx, "/books", &books); err != nil {
		return nil, err
	}
	return books, nil
}

// CreateBookingResult is the upstream acknowledgement of a new booking.
type CreateBookingResult struct {
	Message string                   `json:"message"`
	Data    []booking_models.Booking `json:"data"`
}

// CreateBooking records a booking for a user. POST /booking
func (c *Client) CreateBooking(ctx context.Context, req booking_models.CreateBookingRequest) (*CreateBookingResult, error) {
	var res CreateBookingResult
	if err := c.do(ctx, http.MethodPost, "/booking", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ListBookings lists a user's bookings. GET /booking?userId=
func (c *Client) ListBookings(ctx context.Context, userID string) ([]booking_models.Booking, error) {
	var bookings []booking_models.Booking
	path := "/booking?userId=" + url.QueryEscape(userID)
	if err := c.getWithRetry(ctx, path, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// ListAdminBookings lists the bookings under an admin verification group.
// GET /admin/booking/:id
func (c *Client) ListAdminBookings(ctx context.Context, groupID string) ([]booking_models.Booking, error) {
	var bookings []booking_models.Booking
	path := "/admin/booking/" + url.PathEscape(groupID)
	if err := c.getWithRetry(ctx, path, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// UpdateBooking persists one return adjustment. PATCH /booking/:id
func (c *Client) UpdateBooking(ctx context.Context, bookingID string, op settlement.UpdateOp) error {
	body := struct {
		QuantityReturned int     `json:"quantityReturned"`
		TotalPrice       float64 `json:"totalPrice"`
	}{
		QuantityReturned: op.QuantityReturned,
		TotalPrice:       op.TotalPrice,
	}
	path := "/booking/" + url.PathEscape(bookingID)
	return c.do(ctx, http.MethodPatch, path, body, nil)
}

// ApproveBooking requests the pending -> approved transition. POST /verify/:id
func (c *Client) ApproveBooking(ctx context.Context, bookingID string) (*booking_models.Booking, error) {
	var booking booking_models.Booking
	path := "/verify/" + url.PathEscape(bookingID)
	if err := c.do(ctx, http.MethodPost, path, nil, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (c *Client) getWithRetry(ctx context.Context, path string, target interface{}) error {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err := c.do(ctx, http.MethodGet, path, nil, target)
		if err == nil {
			return nil
		}
		lastErr = err

		var apiErr *APIError
		if errors.As(err, &apiErr) &&
			apiErr.Status != http.StatusTooManyRequests && apiErr.Status < 500 {
			return err
		}
	}
	return fmt.Errorf("after %d retries: %w", c.maxRetries, lastErr)
}

func (c *Client) do(ctx context.Context, method, path string, body, target interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read upstream response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &APIError{Status: resp.StatusCode, Message: extractMessage(raw)}
	}

	if target == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("failed to decode upstream response: %w", err)
	}
	return nil
}

// extractMessage pulls the server-provided message out of an error body.
func extractMessage(raw []byte) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if body.Error != "" {
		return body.Error
	}
	return body.Message
}
