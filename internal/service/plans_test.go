package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
)

func TestCreatePlanSendsInput(t *testing.T) {
	client := newServiceTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/admin/subscription-plans" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		var body PlanInput
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		if body.Name != "Weekly" || body.Price != 5000 || body.DurationDays != 7 {
			t.Errorf("body = %+v", body)
		}
		io.WriteString(w, `{"data":{"id":11,"name":"Weekly","price":5000,"duration_days":7,"is_active":true}}`)
	})

	svc := NewPlanService(client, testLogger())
	plan, err := svc.Create(context.Background(), PlanInput{
		Name:         "Weekly",
		Price:        5000,
		DurationDays: 7,
		IsActive:     true,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if plan.ID != 11 || plan.Name != "Weekly" {
		t.Errorf("plan = %+v", plan)
	}
}

func TestTogglePlanUsesPatch(t *testing.T) {
	client := newServiceTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/api/v1/admin/subscription-plans/11/toggle" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		io.WriteString(w, `{"data":{"id":11,"name":"Weekly","is_active":false}}`)
	})

	svc := NewPlanService(client, testLogger())
	plan, err := svc.Toggle(context.Background(), 11)
	if err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if plan.IsActive {
		t.Error("plan should be inactive after toggle")
	}
}

func TestDeletePlan(t *testing.T) {
	client := newServiceTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/api/v1/admin/subscription-plans/11" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		io.WriteString(w, `{"success":true,"data":{}}`)
	})

	svc := NewPlanService(client, testLogger())
	if err := svc.Delete(context.Background(), 11); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
}

func TestListPlansDecodesList(t *testing.T) {
	client := newServiceTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"data":[{"id":1,"name":"Daily","price":1000,"duration_days":1,"is_active":true},{"id":2,"name":"Monthly","price":15000,"duration_days":30,"is_active":true,"plan_code":"PLN_m"}]}`)
	})

	svc := NewPlanService(client, testLogger())
	plans, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(plans) != 2 || plans[1].PlanCode != "PLN_m" {
		t.Errorf("plans = %+v", plans)
	}
}
