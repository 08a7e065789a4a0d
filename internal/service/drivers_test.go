package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
)

func TestListDriversBuildsQuery(t *testing.T) {
	client := newServiceTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/admin/drivers" {
			t.Errorf("path = %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("page") != "2" || q.Get("per_page") != "25" || q.Get("status") != "pending" {
			t.Errorf("query = %v", q)
		}
		if q.Get("search") != "ade" || q.Get("order_by") != "rating" || q.Get("order") != "desc" {
			t.Errorf("query = %v", q)
		}
		io.WriteString(w, `{"success":true,"data":{"data":[{"id":1,"status":"pending","user":{"id":10,"name":"Ade","email":"ade@example.com","phone_number":"+2348000000000"}}],"current_page":2,"per_page":25,"total":51,"last_page":3}}`)
	})

	svc := NewDriverService(client, testLogger())
	page, err := svc.List(context.Background(), ListDriversParams{
		Page:    2,
		PerPage: 25,
		Search:  "ade",
		OrderBy: "rating",
		Order:   "desc",
		Status:  "pending",
	})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if page.CurrentPage != 2 || page.Total != 51 || page.LastPage != 3 {
		t.Errorf("page meta = %+v", page)
	}
	if len(page.Data) != 1 || page.Data[0].User.Name != "Ade" {
		t.Errorf("page data = %+v", page.Data)
	}
}

func TestListDriversOmitsZeroParams(t *testing.T) {
	client := newServiceTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.RawQuery != "" {
			t.Errorf("query = %q, want empty", r.URL.RawQuery)
		}
		io.WriteString(w, `{"data":{"data":[],"current_page":1,"per_page":15,"total":0,"last_page":1}}`)
	})

	svc := NewDriverService(client, testLogger())
	if _, err := svc.List(context.Background(), ListDriversParams{}); err != nil {
		t.Fatalf("List() error = %v", err)
	}
}

func TestRejectSendsReason(t *testing.T) {
	client := newServiceTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/admin/drivers/7/reject" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		if body["reason"] != "expired licence" {
			t.Errorf("reason = %q", body["reason"])
		}
		io.WriteString(w, `{"data":{"id":7,"status":"rejected","rejection_reason":"expired licence","user":{"id":70,"name":"D","email":"d@example.com","phone_number":"x"}}}`)
	})

	svc := NewDriverService(client, testLogger())
	driver, err := svc.Reject(context.Background(), 7, "expired licence")
	if err != nil {
		t.Fatalf("Reject() error = %v", err)
	}
	if driver.Status != "rejected" || driver.RejectionReason != "expired licence" {
		t.Errorf("driver = %+v", driver)
	}
}

func TestSetCategorySendsCategoryID(t *testing.T) {
	client := newServiceTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/admin/drivers/4/category" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		var body map[string]int
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		if body["category_id"] != 2 {
			t.Errorf("category_id = %d", body["category_id"])
		}
		io.WriteString(w, `{"data":{"id":4,"driver_category_id":2,"user":{"id":40,"name":"E","email":"e@example.com","phone_number":"x"}}}`)
	})

	svc := NewDriverService(client, testLogger())
	driver, err := svc.SetCategory(context.Background(), 4, 2)
	if err != nil {
		t.Fatalf("SetCategory() error = %v", err)
	}
	if driver.CategoryID != 2 {
		t.Errorf("CategoryID = %d, want 2", driver.CategoryID)
	}
}

func TestUpdateOmitsUnsetFields(t *testing.T) {
	approved := true
	client := newServiceTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/api/v1/admin/drivers/5" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		if len(body) != 1 {
			t.Errorf("body = %v, want only is_approved", body)
		}
		if body["is_approved"] != true {
			t.Errorf("is_approved = %v", body["is_approved"])
		}
		io.WriteString(w, `{"data":{"id":5,"is_approved":true,"user":{"id":50,"name":"F","email":"f@example.com","phone_number":"x"}}}`)
	})

	svc := NewDriverService(client, testLogger())
	if _, err := svc.Update(context.Background(), 5, UpdateDriverInput{IsApproved: &approved}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
}

func TestStatisticsCachesResult(t *testing.T) {
	hits := 0
	client := newServiceTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits++
		if r.URL.Path != "/api/v1/admin/drivers-statistics" {
			t.Errorf("path = %s", r.URL.Path)
		}
		io.WriteString(w, `{"data":{"total_drivers":120,"active_drivers":80,"approved_drivers":100,"pending_drivers":15,"suspended_drivers":5}}`)
	})

	svc := NewDriverService(client, testLogger())
	for i := 0; i < 3; i++ {
		stats, err := svc.Statistics(context.Background())
		if err != nil {
			t.Fatalf("Statistics() error = %v", err)
		}
		if stats.TotalDrivers != 120 || stats.PendingDrivers != 15 {
			t.Errorf("stats = %+v", stats)
		}
	}
	if hits != 1 {
		t.Errorf("server hits = %d, want 1 (cached)", hits)
	}
}

func TestCategoriesDecodesList(t *testing.T) {
	client := newServiceTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/admin/driver-categories" {
			t.Errorf("path = %s", r.URL.Path)
		}
		io.WriteString(w, `{"data":[{"id":1,"name":"Standard","base_fare":500,"price_per_km":120,"price_per_minute":30,"is_active":true},{"id":2,"name":"Premium","base_fare":1200,"price_per_km":250,"price_per_minute":60,"is_active":true}]}`)
	})

	svc := NewDriverService(client, testLogger())
	cats, err := svc.Categories(context.Background())
	if err != nil {
		t.Fatalf("Categories() error = %v", err)
	}
	if len(cats) != 2 || cats[1].Name != "Premium" || cats[1].BaseFare != 1200 {
		t.Errorf("categories = %+v", cats)
	}
}
