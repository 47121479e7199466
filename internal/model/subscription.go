package model

import "time"

// PushSubscription is the web-push endpoint registered for a device.
// One row per device, latest upsert wins.
type PushSubscription struct {
	DeviceID  string    `json:"device_id"`
	Endpoint  string    `json:"endpoint"`
	P256dh    string    `json:"p256dh"`
	Auth      string    `json:"auth"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
