package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"reflect"
	"testing"
)

func TestAllUnwrapsNestedData(t *testing.T) {
	// The settings endpoint wraps the groups in an extra data object:
	// {"success":true,"data":{"data":{...groups...}}}.
	client := newServiceTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/v1/admin/settings" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		io.WriteString(w, `{"success":true,"data":{"data":{"general":{"app_name":"FleetOps","support_email":"help@example.com"},"payment":{"commission_rate":15}}}}`)
	})

	svc := NewSettingsService(client, testLogger())
	settings, err := svc.All(context.Background())
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if settings["general"]["app_name"] != "FleetOps" {
		t.Errorf("general.app_name = %v", settings["general"]["app_name"])
	}
	if settings["payment"]["commission_rate"] != float64(15) {
		t.Errorf("payment.commission_rate = %v", settings["payment"]["commission_rate"])
	}
}

func TestSetSendsValueAndGroup(t *testing.T) {
	client := newServiceTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/api/v1/admin/settings/commission_rate" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		if body["value"] != float64(20) || body["type"] != "payment" {
			t.Errorf("body = %v", body)
		}
		io.WriteString(w, `{"data":{"key":"commission_rate","value":20,"type":"payment"}}`)
	})

	svc := NewSettingsService(client, testLogger())
	updated, err := svc.Set(context.Background(), "commission_rate", 20, "payment")
	if err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if updated.Key != "commission_rate" {
		t.Errorf("updated = %+v", updated)
	}
}

func TestSetWithoutGroupOmitsType(t *testing.T) {
	client := newServiceTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		if _, ok := body["type"]; ok {
			t.Error("type should be omitted when group is empty")
		}
		io.WriteString(w, `{"data":{"key":"app_name","value":"FleetOps"}}`)
	})

	svc := NewSettingsService(client, testLogger())
	if _, err := svc.Set(context.Background(), "app_name", "FleetOps", ""); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
}

func TestBulkSetUsesBulkEndpoint(t *testing.T) {
	client := newServiceTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/api/v1/admin/settings/bulk" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		if len(body) != 2 {
			t.Errorf("body = %v", body)
		}
		io.WriteString(w, `{"data":[{"key":"a","value":1},{"key":"b","value":2}]}`)
	})

	svc := NewSettingsService(client, testLogger())
	updated, err := svc.BulkSet(context.Background(), map[string]any{"a": 1, "b": 2})
	if err != nil {
		t.Fatalf("BulkSet() error = %v", err)
	}
	if len(updated) != 2 {
		t.Errorf("updated = %+v", updated)
	}
}

func TestGroupedSettingsKeysSorted(t *testing.T) {
	g := GroupedSettings{
		"general": {"zeta": 1, "alpha": 2, "mid": 3},
	}
	want := []string{"alpha", "mid", "zeta"}
	if got := g.Keys("general"); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
	if got := g.Keys("missing"); len(got) != 0 {
		t.Errorf("Keys(missing) = %v, want empty", got)
	}
}
