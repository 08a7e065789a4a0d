package service

import (
	"context"
	"io"
	"net/http"
	"testing"
)

func TestOverviewPassesWindow(t *testing.T) {
	client := newServiceTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/admin/dashboard" {
			t.Errorf("path = %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("from") != "2026-08-01" || q.Get("to") != "2026-08-28" {
			t.Errorf("query = %v", q)
		}
		io.WriteString(w, `{"data":{"users":{"total":5000,"new":120,"active":3100},"drivers":{"total":800,"new":14,"active":540},"rides":{"total":42000,"completed":39000,"cancelled":1800},"transactions":{"total_revenue":12500000.50,"successful":38500},"dispatches":{"total":9000,"completed":8400,"pending":300,"cancelled":300,"revenue":2100000},"dispatchers":{"total":60,"active":45,"new":2}}}`)
	})

	svc := NewDashboardService(client, testLogger())
	stats, err := svc.Overview(context.Background(), OverviewParams{From: "2026-08-01", To: "2026-08-28"})
	if err != nil {
		t.Fatalf("Overview() error = %v", err)
	}
	if stats.Users.Total != 5000 || stats.Rides.Completed != 39000 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.Transactions.TotalRevenue != 12500000.50 {
		t.Errorf("revenue = %v", stats.Transactions.TotalRevenue)
	}
	if stats.Dispatches.Pending != 300 || stats.Dispatchers.Active != 45 {
		t.Errorf("dispatch stats = %+v", stats.Dispatches)
	}
}

func TestRecentRidesOrdersNewestFirst(t *testing.T) {
	client := newServiceTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/admin/rides" {
			t.Errorf("path = %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("per_page") != "5" || q.Get("order_by") != "created_at" || q.Get("order") != "desc" {
			t.Errorf("query = %v", q)
		}
		io.WriteString(w, `{"data":[{"id":901,"amount":2500,"status":"completed","user":{"name":"U","email":"u@example.com"},"driver":{"name":"D","email":"d@example.com"},"pickup_address":"A","dropoff_address":"B"}]}`)
	})

	svc := NewDashboardService(client, testLogger())
	rides, err := svc.RecentRides(context.Background(), 5)
	if err != nil {
		t.Fatalf("RecentRides() error = %v", err)
	}
	if len(rides) != 1 || rides[0].ID != 901 || rides[0].Driver.Name != "D" {
		t.Errorf("rides = %+v", rides)
	}
}

func TestRecentDispatchesDefaultsLimit(t *testing.T) {
	client := newServiceTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/admin/dispatches" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("per_page"); got != "10" {
			t.Errorf("per_page = %q, want default 10", got)
		}
		io.WriteString(w, `{"data":[{"id":77,"amount":1200,"status":"pending","tracking_id":"TRK-77","user":{"name":"U","email":"u@example.com"},"dispatcher":{"name":"P","email":"p@example.com"},"pickup_location":"A","delivery_location":"B"}]}`)
	})

	svc := NewDashboardService(client, testLogger())
	dispatches, err := svc.RecentDispatches(context.Background(), 0)
	if err != nil {
		t.Fatalf("RecentDispatches() error = %v", err)
	}
	if len(dispatches) != 1 || dispatches[0].TrackingID != "TRK-77" {
		t.Errorf("dispatches = %+v", dispatches)
	}
}
