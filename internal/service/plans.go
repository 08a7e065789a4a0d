package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/fleetops/fleetctl/internal/adapter/outbound/rest"
)

// SubscriptionPlan is a driver subscription offering.
type SubscriptionPlan struct {
	ID               int     `json:"id"`
	Name             string  `json:"name"`
	Description      string  `json:"description"`
	Price            float64 `json:"price"`
	DurationDays     int     `json:"duration_days"`
	Features         string  `json:"features,omitempty"`
	IsActive         bool    `json:"is_active"`
	PlanCode         string  `json:"plan_code,omitempty"`
	IsCommissionPlan bool    `json:"is_commission_plan,omitempty"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
}

// PlanInput carries the writable plan fields for create and update.
type PlanInput struct {
	Name             string  `json:"name"`
	Description      string  `json:"description"`
	Price            float64 `json:"price"`
	DurationDays     int     `json:"duration_days"`
	Features         string  `json:"features,omitempty"`
	IsActive         bool    `json:"is_active"`
	PlanCode         string  `json:"plan_code,omitempty"`
	IsCommissionPlan bool    `json:"is_commission_plan,omitempty"`
}

// PlanService manages subscription plans through the admin API.
type PlanService struct {
	client *rest.Client
	logger *slog.Logger
}

// NewPlanService creates a plan service over the given client.
func NewPlanService(client *rest.Client, logger *slog.Logger) *PlanService {
	return &PlanService{client: client, logger: logger}
}

// List returns all subscription plans.
func (s *PlanService) List(ctx context.Context) ([]SubscriptionPlan, error) {
	var plans []SubscriptionPlan
	err := s.client.Do(ctx, rest.Request{
		Method:    http.MethodGet,
		Path:      "/api/v1/admin/subscription-plans",
		Operation: "plans.list",
	}, &plans)
	if err != nil {
		return nil, err
	}
	return plans, nil
}

// Get returns a single plan by id.
func (s *PlanService) Get(ctx context.Context, id int) (*SubscriptionPlan, error) {
	var plan SubscriptionPlan
	err := s.client.Do(ctx, rest.Request{
		Method:    http.MethodGet,
		Path:      fmt.Sprintf("/api/v1/admin/subscription-plans/%d", id),
		Operation: "plans.get",
	}, &plan)
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// Create creates a new subscription plan.
func (s *PlanService) Create(ctx context.Context, input PlanInput) (*SubscriptionPlan, error) {
	var plan SubscriptionPlan
	err := s.client.Do(ctx, rest.Request{
		Method:    http.MethodPost,
		Path:      "/api/v1/admin/subscription-plans",
		Body:      input,
		Operation: "plans.create",
		Policy:    noRetry(),
	}, &plan)
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// Update replaces the writable fields of a plan.
func (s *PlanService) Update(ctx context.Context, id int, input PlanInput) (*SubscriptionPlan, error) {
	var plan SubscriptionPlan
	err := s.client.Do(ctx, rest.Request{
		Method:    http.MethodPut,
		Path:      fmt.Sprintf("/api/v1/admin/subscription-plans/%d", id),
		Body:      input,
		Operation: "plans.update",
		Policy:    noRetry(),
	}, &plan)
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// Delete removes a plan.
func (s *PlanService) Delete(ctx context.Context, id int) error {
	return s.client.Do(ctx, rest.Request{
		Method:    http.MethodDelete,
		Path:      fmt.Sprintf("/api/v1/admin/subscription-plans/%d", id),
		Operation: "plans.delete",
		Policy:    noRetry(),
	}, nil)
}

// Toggle flips a plan between active and inactive.
func (s *PlanService) Toggle(ctx context.Context, id int) (*SubscriptionPlan, error) {
	var plan SubscriptionPlan
	err := s.client.Do(ctx, rest.Request{
		Method:    http.MethodPatch,
		Path:      fmt.Sprintf("/api/v1/admin/subscription-plans/%d/toggle", id),
		Operation: "plans.toggle",
		Policy:    noRetry(),
	}, &plan)
	if err != nil {
		return nil, err
	}
	return &plan, nil
}
