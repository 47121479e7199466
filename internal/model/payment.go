package model

import "time"

// DueDateLayout is the wire and storage format for payment due dates.
// Due dates are calendar dates, no time component.
const DueDateLayout = "2006-01-02"

// Payment is a bill tracked for a single device.
type Payment struct {
	ID          string    `json:"id"`
	DeviceID    string    `json:"device_id"`
	Title       string    `json:"title"`
	DueDate     string    `json:"due_date"`
	AmountCents *int64    `json:"amount_cents"`
	Notes       string    `json:"notes,omitempty"`
	IsPaid      bool      `json:"is_paid"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
