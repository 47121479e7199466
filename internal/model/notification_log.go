package model

import "time"

// NotificationLogEntry records one delivered reminder. The
// (DeviceID, PaymentID, Kind) triple is unique and is the sole
// deduplication signal for the dispatch engine.
type NotificationLogEntry struct {
	DeviceID  string    `json:"device_id"`
	PaymentID string    `json:"payment_id"`
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}

// NotificationLogFilter describes query parameters for log searching.
type NotificationLogFilter struct {
	DeviceID  string
	Kind      string
	BeginTime *time.Time
	EndTime   *time.Time
	Page      int
	PageSize  int
}

// NotificationLogPage is the paginated payload for the admin log UI.
type NotificationLogPage struct {
	Data     []*NotificationLogEntry `json:"data"`
	Total    int                     `json:"total"`
	Pages    int                     `json:"pages"`
	PageNum  int                     `json:"pageNum"`
	PageSize int                     `json:"pageSize"`
}
