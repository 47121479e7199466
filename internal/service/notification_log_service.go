package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/payalert-labs/payalert/internal/model"
	"github.com/payalert-labs/payalert/internal/storage"
)

// NotificationLogService provides filtering and statistics over the
// dedup log for the admin UI.
type NotificationLogService struct {
	store storage.Store
}

// NewNotificationLogService builds the log service.
func NewNotificationLogService(store storage.Store) *NotificationLogService {
	return &NotificationLogService{store: store}
}

// Query returns paginated log entries, newest first.
func (s *NotificationLogService) Query(ctx context.Context, filter model.NotificationLogFilter) (*model.NotificationLogPage, error) {
	entries, err := s.filteredLogs(ctx, filter)
	if err != nil {
		return nil, err
	}

	total := len(entries)
	if filter.PageSize <= 0 {
		filter.PageSize = 10
	}
	if filter.PageSize > 100 {
		filter.PageSize = 100
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}

	start := (filter.Page - 1) * filter.PageSize
	if start > total {
		start = total
	}
	end := start + filter.PageSize
	if end > total {
		end = total
	}

	pages := (total + filter.PageSize - 1) / filter.PageSize

	return &model.NotificationLogPage{
		Data:     entries[start:end],
		Total:    total,
		Pages:    pages,
		PageNum:  filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

// CountByDate aggregates sends per day/month/year.
func (s *NotificationLogService) CountByDate(ctx context.Context, dateType string, begin, end *time.Time) ([]map[string]any, error) {
	entries, err := s.filteredLogs(ctx, model.NotificationLogFilter{BeginTime: begin, EndTime: end})
	if err != nil {
		return nil, err
	}

	layout := "2006-01-02"
	switch strings.ToLower(dateType) {
	case "year":
		layout = "2006"
	case "month":
		layout = "2006-01"
	}

	counter := make(map[string]int)
	for _, entry := range entries {
		counter[entry.CreatedAt.Format(layout)]++
	}
	return mapToKV(counter, "date"), nil
}

// CountByKind aggregates sends per reminder kind.
func (s *NotificationLogService) CountByKind(ctx context.Context, begin, end *time.Time) ([]map[string]any, error) {
	entries, err := s.filteredLogs(ctx, model.NotificationLogFilter{BeginTime: begin, EndTime: end})
	if err != nil {
		return nil, err
	}
	counter := make(map[string]int)
	for _, entry := range entries {
		kind := entry.Kind
		if kind == "" {
			kind = "UNKNOWN"
		}
		counter[kind]++
	}
	return mapToKV(counter, "kind"), nil
}

// CountByDevice aggregates sends per device id.
func (s *NotificationLogService) CountByDevice(ctx context.Context, begin, end *time.Time) ([]map[string]any, error) {
	entries, err := s.filteredLogs(ctx, model.NotificationLogFilter{BeginTime: begin, EndTime: end})
	if err != nil {
		return nil, err
	}
	counter := make(map[string]int)
	for _, entry := range entries {
		counter[entry.DeviceID]++
	}
	return mapToKV(counter, "device"), nil
}

func (s *NotificationLogService) filteredLogs(ctx context.Context, filter model.NotificationLogFilter) ([]*model.NotificationLogEntry, error) {
	all, err := s.store.ListNotificationLogs(ctx)
	if err != nil {
		return nil, err
	}
	matches := make([]*model.NotificationLogEntry, 0, len(all))
	for _, entry := range all {
		if filter.DeviceID != "" && !strings.EqualFold(entry.DeviceID, filter.DeviceID) {
			continue
		}
		if filter.Kind != "" && !strings.EqualFold(entry.Kind, filter.Kind) {
			continue
		}
		if filter.BeginTime != nil && entry.CreatedAt.Before(filter.BeginTime.UTC()) {
			continue
		}
		if filter.EndTime != nil && entry.CreatedAt.After(filter.EndTime.UTC()) {
			continue
		}
		matches = append(matches, entry)
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	return matches, nil
}

func mapToKV(counter map[string]int, key string) []map[string]any {
	var result []map[string]any
	for k, v := range counter {
		result = append(result, map[string]any{
			key:     k,
			"count": v,
		})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i][key].(string) < result[j][key].(string)
	})
	return result
}
