package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/payalert-labs/payalert/internal/model"
	"github.com/payalert-labs/payalert/internal/storage"
)

// SubscriptionService manages per-device web-push subscriptions.
type SubscriptionService struct {
	store storage.Store
}

// NewSubscriptionService constructs SubscriptionService.
func NewSubscriptionService(store storage.Store) *SubscriptionService {
	return &SubscriptionService{store: store}
}

// SubscribeRequest mirrors the browser PushSubscription JSON plus the
// owning device id.
type SubscribeRequest struct {
	DeviceID     string `json:"device_id"`
	Subscription struct {
		Endpoint string `json:"endpoint"`
		Keys     struct {
			P256dh string `json:"p256dh"`
			Auth   string `json:"auth"`
		} `json:"keys"`
	} `json:"subscription"`
}

// Upsert validates and stores a subscription; an existing row for the
// device is replaced, latest wins.
func (s *SubscriptionService) Upsert(ctx context.Context, req SubscribeRequest) (*model.PushSubscription, error) {
	if strings.TrimSpace(req.DeviceID) == "" {
		return nil, fmt.Errorf("device_id and subscription are required")
	}
	if strings.TrimSpace(req.Subscription.Endpoint) == "" || strings.TrimSpace(req.Subscription.Keys.P256dh) == "" || strings.TrimSpace(req.Subscription.Keys.Auth) == "" {
		return nil, fmt.Errorf("invalid subscription object")
	}
	sub := &model.PushSubscription{
		DeviceID: req.DeviceID,
		Endpoint: req.Subscription.Endpoint,
		P256dh:   req.Subscription.Keys.P256dh,
		Auth:     req.Subscription.Keys.Auth,
	}
	if err := s.store.UpsertSubscription(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// Get returns the subscription registered for a device.
func (s *SubscriptionService) Get(ctx context.Context, deviceID string) (*model.PushSubscription, error) {
	return s.store.GetSubscription(ctx, deviceID)
}
