package service

import (
	"context"
	"errors"
	"testing"

	"github.com/payalert-labs/payalert/internal/storage"
)

func TestCreatePaymentValidation(t *testing.T) {
	svc := NewPaymentService(newFakeStore())
	cases := []struct {
		name string
		req  CreatePaymentRequest
	}{
		{"missing device", CreatePaymentRequest{Title: "Affitto", DueDate: "2026-04-01"}},
		{"missing title", CreatePaymentRequest{DeviceID: "dev-1", DueDate: "2026-04-01"}},
		{"missing due date", CreatePaymentRequest{DeviceID: "dev-1", Title: "Affitto"}},
		{"bad date format", CreatePaymentRequest{DeviceID: "dev-1", Title: "Affitto", DueDate: "01/04/2026"}},
		{"impossible date", CreatePaymentRequest{DeviceID: "dev-1", Title: "Affitto", DueDate: "2026-02-30"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), tc.req); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestCreatePaymentMintsID(t *testing.T) {
	svc := NewPaymentService(newFakeStore())
	payment, err := svc.Create(context.Background(), CreatePaymentRequest{
		DeviceID: "dev-1",
		Title:    "  Affitto  ",
		DueDate:  "2026-04-01",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if payment.ID == "" {
		t.Fatal("expected server-minted id")
	}
	if payment.Title != "Affitto" {
		t.Fatalf("title = %q, want trimmed", payment.Title)
	}
	if payment.IsPaid {
		t.Fatal("new payments start unpaid")
	}
}

func TestUpdatePaymentPartial(t *testing.T) {
	store := newFakeStore()
	svc := NewPaymentService(store)
	created, err := svc.Create(context.Background(), CreatePaymentRequest{
		DeviceID: "dev-1",
		Title:    "Affitto",
		DueDate:  "2026-04-01",
		Notes:    "appartamento",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	paid := true
	updated, err := svc.Update(context.Background(), UpdatePaymentRequest{
		ID:       created.ID,
		DeviceID: "dev-1",
		IsPaid:   &paid,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !updated.IsPaid {
		t.Fatal("is_paid not applied")
	}
	if updated.Title != "Affitto" || updated.DueDate != "2026-04-01" || updated.Notes != "appartamento" {
		t.Fatalf("unset fields changed: %+v", updated)
	}
}

func TestUpdatePaymentWrongDevice(t *testing.T) {
	store := newFakeStore()
	svc := NewPaymentService(store)
	created, err := svc.Create(context.Background(), CreatePaymentRequest{
		DeviceID: "dev-1",
		Title:    "Affitto",
		DueDate:  "2026-04-01",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	title := "hijack"
	_, err = svc.Update(context.Background(), UpdatePaymentRequest{
		ID:       created.ID,
		DeviceID: "dev-2",
		Title:    &title,
	})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound for foreign device", err)
	}
}

func TestDeletePaymentScopedToDevice(t *testing.T) {
	store := newFakeStore()
	svc := NewPaymentService(store)
	created, err := svc.Create(context.Background(), CreatePaymentRequest{
		DeviceID: "dev-1",
		Title:    "Affitto",
		DueDate:  "2026-04-01",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.Delete(context.Background(), "dev-2", created.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("foreign delete err = %v, want ErrNotFound", err)
	}
	if err := svc.Delete(context.Background(), "dev-1", created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}

func TestListPaymentsRequiresDevice(t *testing.T) {
	svc := NewPaymentService(newFakeStore())
	if _, err := svc.List(context.Background(), " "); err == nil {
		t.Fatal("expected error for blank device_id")
	}
}

func TestListPaymentsEmptyIsNotNil(t *testing.T) {
	svc := NewPaymentService(newFakeStore())
	payments, err := svc.List(context.Background(), "dev-1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if payments == nil {
		t.Fatal("expected empty slice, got nil")
	}
}
