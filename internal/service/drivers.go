package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/fleetops/fleetctl/internal/adapter/outbound/rest"
)

// Driver is an admin view of a driver account.
type Driver struct {
	ID               int             `json:"id"`
	UserID           int             `json:"user_id"`
	IsAvailable      bool            `json:"is_available"`
	IsApproved       bool            `json:"is_approved"`
	Status           string          `json:"status"`
	RejectionReason  string          `json:"rejection_reason,omitempty"`
	SuspensionReason string          `json:"suspension_reason,omitempty"`
	CategoryID       int             `json:"driver_category_id,omitempty"`
	Rating           float64         `json:"rating,omitempty"`
	User             DriverUser      `json:"user"`
	Category         *DriverCategory `json:"category,omitempty"`
	CreatedAt        string          `json:"created_at"`
	UpdatedAt        string          `json:"updated_at"`
}

// DriverUser is the account behind a driver profile.
type DriverUser struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// DriverCategory is a vehicle class with its pricing.
type DriverCategory struct {
	ID             int     `json:"id"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	BaseFare       float64 `json:"base_fare"`
	PricePerKm     float64 `json:"price_per_km"`
	PricePerMinute float64 `json:"price_per_minute"`
	Icon           string  `json:"icon,omitempty"`
	IsActive       bool    `json:"is_active"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

// DriverStats is the aggregate counters returned by the statistics endpoint.
type DriverStats struct {
	TotalDrivers     int `json:"total_drivers"`
	ActiveDrivers    int `json:"active_drivers"`
	ApprovedDrivers  int `json:"approved_drivers"`
	PendingDrivers   int `json:"pending_drivers"`
	SuspendedDrivers int `json:"suspended_drivers"`
}

// DriverPage is one page of a driver listing.
type DriverPage struct {
	Data        []Driver `json:"data"`
	CurrentPage int      `json:"current_page"`
	PerPage     int      `json:"per_page"`
	Total       int      `json:"total"`
	LastPage    int      `json:"last_page"`
}

// ListDriversParams narrows and orders a driver listing. Zero values are
// omitted from the query.
type ListDriversParams struct {
	Page    int
	PerPage int
	Search  string
	OrderBy string
	Order   string
	Status  string
}

func (p ListDriversParams) query() url.Values {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(p.PerPage))
	}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	if p.OrderBy != "" {
		q.Set("order_by", p.OrderBy)
	}
	if p.Order != "" {
		q.Set("order", p.Order)
	}
	if p.Status != "" {
		q.Set("status", p.Status)
	}
	return q
}

// noRetry returns a pointer to the single-attempt policy for mutating calls.
func noRetry() *rest.RetryPolicy {
	p := rest.NoRetry()
	return &p
}

// DriverService manages driver accounts through the admin API.
type DriverService struct {
	client *rest.Client
	logger *slog.Logger
}

// NewDriverService creates a driver service over the given client.
func NewDriverService(client *rest.Client, logger *slog.Logger) *DriverService {
	return &DriverService{client: client, logger: logger}
}

// List returns one page of drivers matching the params.
func (s *DriverService) List(ctx context.Context, params ListDriversParams) (*DriverPage, error) {
	var page DriverPage
	err := s.client.Do(ctx, rest.Request{
		Method:    http.MethodGet,
		Path:      "/api/v1/admin/drivers",
		Query:     params.query(),
		Operation: "drivers.list",
	}, &page)
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// Get returns a single driver by id.
func (s *DriverService) Get(ctx context.Context, id int) (*Driver, error) {
	var driver Driver
	err := s.client.Do(ctx, rest.Request{
		Method:    http.MethodGet,
		Path:      fmt.Sprintf("/api/v1/admin/drivers/%d", id),
		Operation: "drivers.get",
	}, &driver)
	if err != nil {
		return nil, err
	}
	return &driver, nil
}

// UpdateDriverInput carries the mutable driver fields for Update. Nil
// pointers are left untouched server-side.
type UpdateDriverInput struct {
	IsAvailable *bool `json:"is_available,omitempty"`
	IsApproved  *bool `json:"is_approved,omitempty"`
	CategoryID  *int  `json:"driver_category_id,omitempty"`
}

// Update applies a partial update to a driver.
func (s *DriverService) Update(ctx context.Context, id int, input UpdateDriverInput) (*Driver, error) {
	var driver Driver
	err := s.client.Do(ctx, rest.Request{
		Method:    http.MethodPut,
		Path:      fmt.Sprintf("/api/v1/admin/drivers/%d", id),
		Body:      input,
		Operation: "drivers.update",
		Policy:    noRetry(),
	}, &driver)
	if err != nil {
		return nil, err
	}
	return &driver, nil
}

// Approve marks a pending driver as approved.
func (s *DriverService) Approve(ctx context.Context, id int) (*Driver, error) {
	var driver Driver
	err := s.client.Do(ctx, rest.Request{
		Method:    http.MethodPost,
		Path:      fmt.Sprintf("/api/v1/admin/drivers/%d/approve", id),
		Operation: "drivers.approve",
		Policy:    noRetry(),
	}, &driver)
	if err != nil {
		return nil, err
	}
	return &driver, nil
}

// Reject rejects a driver application with a reason.
func (s *DriverService) Reject(ctx context.Context, id int, reason string) (*Driver, error) {
	var driver Driver
	err := s.client.Do(ctx, rest.Request{
		Method:    http.MethodPost,
		Path:      fmt.Sprintf("/api/v1/admin/drivers/%d/reject", id),
		Body:      map[string]string{"reason": reason},
		Operation: "drivers.reject",
		Policy:    noRetry(),
	}, &driver)
	if err != nil {
		return nil, err
	}
	return &driver, nil
}

// Suspend suspends an active driver with a reason.
func (s *DriverService) Suspend(ctx context.Context, id int, reason string) (*Driver, error) {
	var driver Driver
	err := s.client.Do(ctx, rest.Request{
		Method:    http.MethodPost,
		Path:      fmt.Sprintf("/api/v1/admin/drivers/%d/suspend", id),
		Body:      map[string]string{"reason": reason},
		Operation: "drivers.suspend",
		Policy:    noRetry(),
	}, &driver)
	if err != nil {
		return nil, err
	}
	return &driver, nil
}

// SetCategory assigns a driver to a vehicle category.
func (s *DriverService) SetCategory(ctx context.Context, driverID, categoryID int) (*Driver, error) {
	var driver Driver
	err := s.client.Do(ctx, rest.Request{
		Method:    http.MethodPost,
		Path:      fmt.Sprintf("/api/v1/admin/drivers/%d/category", driverID),
		Body:      map[string]int{"category_id": categoryID},
		Operation: "drivers.set_category",
		Policy:    noRetry(),
	}, &driver)
	if err != nil {
		return nil, err
	}
	return &driver, nil
}

// Statistics returns fleet-wide driver counters. The result changes slowly,
// so it is cached briefly to spare the rate limit.
func (s *DriverService) Statistics(ctx context.Context) (*DriverStats, error) {
	var stats DriverStats
	err := s.client.Do(ctx, rest.Request{
		Method:    http.MethodGet,
		Path:      "/api/v1/admin/drivers-statistics",
		Operation: "drivers.statistics",
		CacheTTL:  30 * time.Second,
	}, &stats)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// Categories lists all vehicle categories.
func (s *DriverService) Categories(ctx context.Context) ([]DriverCategory, error) {
	var categories []DriverCategory
	err := s.client.Do(ctx, rest.Request{
		Method:    http.MethodGet,
		Path:      "/api/v1/admin/driver-categories",
		Operation: "drivers.categories",
		CacheTTL:  time.Minute,
	}, &categories)
	if err != nil {
		return nil, err
	}
	return categories, nil
}
