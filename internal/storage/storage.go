package storage

import (
	"context"
	"time"

	"github.com/payalert-labs/payalert/internal/model"
)

// Store abstracts payment, subscription and notification-log persistence.
type Store interface {
	CreatePayment(ctx context.Context, payment *model.Payment) error
	GetPayment(ctx context.Context, deviceID, id string) (*model.Payment, error)
	UpdatePayment(ctx context.Context, payment *model.Payment) error
	DeletePayment(ctx context.Context, deviceID, id string) error
	ListPayments(ctx context.Context, deviceID string) ([]*model.Payment, error)
	ListDueUnpaid(ctx context.Context, from, to time.Time) ([]*model.Payment, error)

	UpsertSubscription(ctx context.Context, sub *model.PushSubscription) error
	GetSubscription(ctx context.Context, deviceID string) (*model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, deviceID string) error

	HasNotificationLog(ctx context.Context, deviceID, paymentID, kind string) (bool, error)
	AppendNotificationLog(ctx context.Context, entry *model.NotificationLogEntry) error
	ListNotificationLogs(ctx context.Context) ([]*model.NotificationLogEntry, error)

	Close() error
}
