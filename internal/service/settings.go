package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"

	"github.com/fleetops/fleetctl/internal/adapter/outbound/rest"
)

// Setting groups recognized by the backend.
const (
	SettingGroupGeneral  = "general"
	SettingGroupAPI      = "api"
	SettingGroupEmail    = "email"
	SettingGroupPayment  = "payment"
	SettingGroupDriver   = "driver"
	SettingGroupSecurity = "security"
)

// SettingGroups lists the known groups in display order.
func SettingGroups() []string {
	return []string{
		SettingGroupGeneral,
		SettingGroupAPI,
		SettingGroupEmail,
		SettingGroupPayment,
		SettingGroupDriver,
		SettingGroupSecurity,
	}
}

// SettingValue is a single platform setting. Value is a string, number or
// bool depending on the key.
type SettingValue struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
	Type  string `json:"type,omitempty"`
}

// GroupedSettings maps group name to its key/value pairs.
type GroupedSettings map[string]map[string]any

// Keys returns the group's keys sorted for stable output.
func (g GroupedSettings) Keys(group string) []string {
	keys := make([]string, 0, len(g[group]))
	for k := range g[group] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SettingsService manages platform settings through the admin API.
type SettingsService struct {
	client *rest.Client
	logger *slog.Logger
}

// NewSettingsService creates a settings service over the given client.
func NewSettingsService(client *rest.Client, logger *slog.Logger) *SettingsService {
	return &SettingsService{client: client, logger: logger}
}

// All returns every setting grouped by type. The endpoint wraps the groups in
// an extra data object, hence the intermediate decode.
func (s *SettingsService) All(ctx context.Context) (GroupedSettings, error) {
	var wrapper struct {
		Data GroupedSettings `json:"data"`
	}
	err := s.client.Do(ctx, rest.Request{
		Method:    http.MethodGet,
		Path:      "/api/v1/admin/settings",
		Operation: "settings.all",
	}, &wrapper)
	if err != nil {
		return nil, err
	}
	return wrapper.Data, nil
}

// Get returns a single setting by key.
func (s *SettingsService) Get(ctx context.Context, key string) (*SettingValue, error) {
	var value SettingValue
	err := s.client.Do(ctx, rest.Request{
		Method:    http.MethodGet,
		Path:      fmt.Sprintf("/api/v1/admin/settings/%s", key),
		Operation: "settings.get",
	}, &value)
	if err != nil {
		return nil, err
	}
	return &value, nil
}

// Set updates a single setting. Group is optional; when empty the backend
// keeps the existing group.
func (s *SettingsService) Set(ctx context.Context, key string, value any, group string) (*SettingValue, error) {
	body := map[string]any{"value": value}
	if group != "" {
		body["type"] = group
	}
	var updated SettingValue
	err := s.client.Do(ctx, rest.Request{
		Method:    http.MethodPut,
		Path:      fmt.Sprintf("/api/v1/admin/settings/%s", key),
		Body:      body,
		Operation: "settings.set",
		Policy:    noRetry(),
	}, &updated)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// BulkSet updates several settings in one request.
func (s *SettingsService) BulkSet(ctx context.Context, values map[string]any) ([]SettingValue, error) {
	var updated []SettingValue
	err := s.client.Do(ctx, rest.Request{
		Method:    http.MethodPut,
		Path:      "/api/v1/admin/settings/bulk",
		Body:      values,
		Operation: "settings.bulk_set",
		Policy:    noRetry(),
	}, &updated)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a setting by key.
func (s *SettingsService) Delete(ctx context.Context, key string) error {
	return s.client.Do(ctx, rest.Request{
		Method:    http.MethodDelete,
		Path:      fmt.Sprintf("/api/v1/admin/settings/%s", key),
		Operation: "settings.delete",
		Policy:    noRetry(),
	}, nil)
}
