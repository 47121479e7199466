package service

import (
	"context"
	"testing"
	"time"

	"github.com/payalert-labs/payalert/internal/model"
)

func seedLogs(store *fakeStore) {
	base := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	entries := []*model.NotificationLogEntry{
		{DeviceID: "dev-1", PaymentID: "pay-1", Kind: "d1_afternoon", CreatedAt: base},
		{DeviceID: "dev-1", PaymentID: "pay-1", Kind: "d1_evening", CreatedAt: base.Add(6 * time.Hour)},
		{DeviceID: "dev-1", PaymentID: "pay-1", Kind: "d0_morning", CreatedAt: base.AddDate(0, 0, 1)},
		{DeviceID: "dev-2", PaymentID: "pay-2", Kind: "d0_morning", CreatedAt: base.AddDate(0, 0, 2)},
	}
	for _, entry := range entries {
		store.logs[logMapKey(entry.DeviceID, entry.PaymentID, entry.Kind)] = entry
	}
}

func TestLogQueryFiltersAndPaginates(t *testing.T) {
	store := newFakeStore()
	seedLogs(store)
	svc := NewNotificationLogService(store)

	page, err := svc.Query(context.Background(), model.NotificationLogFilter{DeviceID: "dev-1", Page: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if page.Total != 3 || page.Pages != 2 || len(page.Data) != 2 {
		t.Fatalf("page = %+v", page)
	}
	// newest first
	if page.Data[0].Kind != "d0_morning" {
		t.Fatalf("first entry kind = %q", page.Data[0].Kind)
	}
}

func TestLogQueryTimeRange(t *testing.T) {
	store := newFakeStore()
	seedLogs(store)
	svc := NewNotificationLogService(store)

	begin := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	page, err := svc.Query(context.Background(), model.NotificationLogFilter{BeginTime: &begin})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if page.Total != 2 {
		t.Fatalf("total = %d, want 2", page.Total)
	}
}

func TestLogCountByKind(t *testing.T) {
	store := newFakeStore()
	seedLogs(store)
	svc := NewNotificationLogService(store)

	rows, err := svc.CountByKind(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("CountByKind: %v", err)
	}
	counts := make(map[string]int)
	for _, row := range rows {
		counts[row["kind"].(string)] = row["count"].(int)
	}
	if counts["d0_morning"] != 2 || counts["d1_afternoon"] != 1 || counts["d1_evening"] != 1 {
		t.Fatalf("counts = %v", counts)
	}
}

func TestLogCountByDate(t *testing.T) {
	store := newFakeStore()
	seedLogs(store)
	svc := NewNotificationLogService(store)

	rows, err := svc.CountByDate(context.Background(), "day", nil, nil)
	if err != nil {
		t.Fatalf("CountByDate: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %v", rows)
	}
	if rows[0]["date"].(string) != "2026-03-01" || rows[0]["count"].(int) != 2 {
		t.Fatalf("first row = %v", rows[0])
	}
}
