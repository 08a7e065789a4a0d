package service

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/fleetops/fleetctl/internal/adapter/outbound/rest"
)

// DashboardStats is the platform-wide snapshot shown on the overview.
type DashboardStats struct {
	Users struct {
		Total  int `json:"total"`
		New    int `json:"new"`
		Active int `json:"active"`
	} `json:"users"`
	Drivers struct {
		Total  int `json:"total"`
		New    int `json:"new"`
		Active int `json:"active"`
	} `json:"drivers"`
	Rides struct {
		Total     int `json:"total"`
		Completed int `json:"completed"`
		Cancelled int `json:"cancelled"`
	} `json:"rides"`
	Transactions struct {
		TotalRevenue float64 `json:"total_revenue"`
		Successful   int     `json:"successful"`
	} `json:"transactions"`
	Dispatches struct {
		Total     int     `json:"total"`
		Completed int     `json:"completed"`
		Pending   int     `json:"pending"`
		Cancelled int     `json:"cancelled"`
		Revenue   float64 `json:"revenue"`
	} `json:"dispatches"`
	Dispatchers struct {
		Total  int `json:"total"`
		Active int `json:"active"`
		New    int `json:"new"`
	} `json:"dispatchers"`
}

// RideTransaction is a recent ride for the activity feed.
type RideTransaction struct {
	ID             int      `json:"id"`
	Amount         float64  `json:"amount"`
	Status         string   `json:"status"`
	CreatedAt      string   `json:"created_at"`
	User           PartyRef `json:"user"`
	Driver         PartyRef `json:"driver"`
	PickupAddress  string   `json:"pickup_address"`
	DropoffAddress string   `json:"dropoff_address"`
}

// DispatchTransaction is a recent package dispatch for the activity feed.
type DispatchTransaction struct {
	ID               int      `json:"id"`
	Amount           float64  `json:"amount"`
	Status           string   `json:"status"`
	CreatedAt        string   `json:"created_at"`
	TrackingID       string   `json:"tracking_id"`
	User             PartyRef `json:"user"`
	Dispatcher       PartyRef `json:"dispatcher"`
	PickupLocation   string   `json:"pickup_location"`
	DeliveryLocation string   `json:"delivery_location"`
}

// PartyRef identifies a user involved in a transaction.
type PartyRef struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// OverviewParams bounds the dashboard aggregation window. Empty values mean
// the backend default (current period).
type OverviewParams struct {
	From string
	To   string
}

func (p OverviewParams) query() url.Values {
	q := url.Values{}
	if p.From != "" {
		q.Set("from", p.From)
	}
	if p.To != "" {
		q.Set("to", p.To)
	}
	return q
}

// DashboardService reads platform aggregates through the admin API.
type DashboardService struct {
	client *rest.Client
	logger *slog.Logger
}

// NewDashboardService creates a dashboard service over the given client.
func NewDashboardService(client *rest.Client, logger *slog.Logger) *DashboardService {
	return &DashboardService{client: client, logger: logger}
}

// Overview returns the stats snapshot for the given window. Cached briefly:
// the watch command polls and would otherwise burn through the rate limit.
func (s *DashboardService) Overview(ctx context.Context, params OverviewParams) (*DashboardStats, error) {
	var stats DashboardStats
	err := s.client.Do(ctx, rest.Request{
		Method:    http.MethodGet,
		Path:      "/api/v1/admin/dashboard",
		Query:     params.query(),
		Operation: "dashboard.overview",
		CacheTTL:  15 * time.Second,
	}, &stats)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// RecentRides returns the latest rides, newest first.
func (s *DashboardService) RecentRides(ctx context.Context, limit int) ([]RideTransaction, error) {
	var rides []RideTransaction
	err := s.client.Do(ctx, rest.Request{
		Method:    http.MethodGet,
		Path:      "/api/v1/admin/rides",
		Query:     recentQuery(limit),
		Operation: "dashboard.recent_rides",
	}, &rides)
	if err != nil {
		return nil, err
	}
	return rides, nil
}

// RecentDispatches returns the latest dispatches, newest first.
func (s *DashboardService) RecentDispatches(ctx context.Context, limit int) ([]DispatchTransaction, error) {
	var dispatches []DispatchTransaction
	err := s.client.Do(ctx, rest.Request{
		Method:    http.MethodGet,
		Path:      "/api/v1/admin/dispatches",
		Query:     recentQuery(limit),
		Operation: "dashboard.recent_dispatches",
	}, &dispatches)
	if err != nil {
		return nil, err
	}
	return dispatches, nil
}

func recentQuery(limit int) url.Values {
	if limit <= 0 {
		limit = 10
	}
	q := url.Values{}
	q.Set("per_page", strconv.Itoa(limit))
	q.Set("order_by", "created_at")
	q.Set("order", "desc")
	return q
}
