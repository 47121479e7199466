package pushclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/payalert-labs/payalert/internal/model"
)

// ErrSubscriptionGone marks an endpoint the push service reports as
// permanently invalid. Callers drop the stored subscription on this error.
var ErrSubscriptionGone = errors.New("subscription gone")

// Client delivers VAPID-signed web-push messages.
type Client struct {
	subject    string
	publicKey  string
	privateKey string
	ttl        int
	http       *http.Client
}

// New creates a push client. The subject is the VAPID contact address;
// webpush-go prepends mailto: when missing.
func New(subject, publicKey, privateKey string, ttl int, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(publicKey) == "" || strings.TrimSpace(privateKey) == "" {
		return nil, fmt.Errorf("vapid keys are required")
	}
	if ttl <= 0 {
		ttl = 86400
	}
	return &Client{
		subject:    subject,
		publicKey:  publicKey,
		privateKey: privateKey,
		ttl:        ttl,
		http: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// PublicKey returns the VAPID public key for client-side subscription.
func (c *Client) PublicKey() string {
	return c.publicKey
}

// Send encrypts and posts one payload to a device's endpoint.
func (c *Client) Send(ctx context.Context, sub *model.PushSubscription, payload []byte) error {
	s := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}
	resp, err := webpush.SendNotificationWithContext(ctx, payload, s, &webpush.Options{
		HTTPClient:      c.http,
		Subscriber:      c.subject,
		VAPIDPublicKey:  c.publicKey,
		VAPIDPrivateKey: c.privateKey,
		TTL:             c.ttl,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return fmt.Errorf("push status %d: %w", resp.StatusCode, ErrSubscriptionGone)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("push status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
}
