package service

import (
	"context"
	"testing"
)

func subscribeRequest(deviceID, endpoint, p256dh, auth string) SubscribeRequest {
	var req SubscribeRequest
	req.DeviceID = deviceID
	req.Subscription.Endpoint = endpoint
	req.Subscription.Keys.P256dh = p256dh
	req.Subscription.Keys.Auth = auth
	return req
}

func TestSubscriptionUpsertValidation(t *testing.T) {
	svc := NewSubscriptionService(newFakeStore())
	cases := []struct {
		name string
		req  SubscribeRequest
	}{
		{"missing device", subscribeRequest("", "https://push.example/x", "k", "a")},
		{"missing endpoint", subscribeRequest("dev-1", "", "k", "a")},
		{"missing keys", subscribeRequest("dev-1", "https://push.example/x", "", "")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Upsert(context.Background(), tc.req); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestSubscriptionUpsertLatestWins(t *testing.T) {
	store := newFakeStore()
	svc := NewSubscriptionService(store)

	if _, err := svc.Upsert(context.Background(), subscribeRequest("dev-1", "https://push.example/old", "k1", "a1")); err != nil {
		t.Fatalf("first Upsert: %v", err)
	}
	if _, err := svc.Upsert(context.Background(), subscribeRequest("dev-1", "https://push.example/new", "k2", "a2")); err != nil {
		t.Fatalf("second Upsert: %v", err)
	}

	sub, err := svc.Get(context.Background(), "dev-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if sub.Endpoint != "https://push.example/new" || sub.P256dh != "k2" {
		t.Fatalf("stale subscription kept: %+v", sub)
	}
}
