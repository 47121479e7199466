package bolt

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/payalert-labs/payalert/internal/model"
	"github.com/payalert-labs/payalert/internal/storage"
	bolt "go.etcd.io/bbolt"
)

var _ storage.Store = (*Store)(nil)

var (
	bucketPayments      = []byte("payments")
	bucketSubscriptions = []byte("subscriptions")
	bucketLog           = []byte("notification_log")
)

// Store is a BoltDB-backed Store implementation.
type Store struct {
	db *bolt.DB
}

// New initialises the Bolt store.
func New(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketPayments, bucketSubscriptions, bucketLog} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes underlying Bolt DB.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreatePayment stores a new payment record.
func (s *Store) CreatePayment(ctx context.Context, payment *model.Payment) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	now := time.Now().UTC()
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = now
	}
	payment.UpdatedAt = now
	payload, err := json.Marshal(payment)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(bucketPayments)
		if bkt.Get([]byte(payment.ID)) != nil {
			return storage.ErrDuplicate
		}
		return bkt.Put([]byte(payment.ID), payload)
	})
}

// GetPayment fetches a payment by id, scoped to its owning device.
func (s *Store) GetPayment(ctx context.Context, deviceID, id string) (*model.Payment, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	var result *model.Payment
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketPayments).Get([]byte(id))
		if raw == nil {
			return nil
		}
		var payment model.Payment
		if err := json.Unmarshal(raw, &payment); err != nil {
			return err
		}
		if payment.DeviceID == deviceID {
			result = &payment
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, storage.ErrNotFound
	}
	return result, nil
}

// UpdatePayment overwrites an existing payment record.
func (s *Store) UpdatePayment(ctx context.Context, payment *model.Payment) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	payment.UpdatedAt = time.Now().UTC()
	payload, err := json.Marshal(payment)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(bucketPayments)
		raw := bkt.Get([]byte(payment.ID))
		if raw == nil {
			return storage.ErrNotFound
		}
		var existing model.Payment
		if err := json.Unmarshal(raw, &existing); err != nil {
			return err
		}
		if existing.DeviceID != payment.DeviceID {
			return storage.ErrNotFound
		}
		return bkt.Put([]byte(payment.ID), payload)
	})
}

// DeletePayment removes a payment, scoped to its owning device.
func (s *Store) DeletePayment(ctx context.Context, deviceID, id string) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(bucketPayments)
		raw := bkt.Get([]byte(id))
		if raw == nil {
			return storage.ErrNotFound
		}
		var existing model.Payment
		if err := json.Unmarshal(raw, &existing); err != nil {
			return err
		}
		if existing.DeviceID != deviceID {
			return storage.ErrNotFound
		}
		return bkt.Delete([]byte(id))
	})
}

// ListPayments returns a device's payments ordered by due date.
func (s *Store) ListPayments(ctx context.Context, deviceID string) ([]*model.Payment, error) {
	payments, err := s.listPayments(ctx, func(p *model.Payment) bool {
		return p.DeviceID == deviceID
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(payments, func(i, j int) bool {
		return payments[i].DueDate < payments[j].DueDate
	})
	return payments, nil
}

// ListDueUnpaid returns unpaid payments across all devices whose due date
// falls within [from, to] inclusive.
func (s *Store) ListDueUnpaid(ctx context.Context, from, to time.Time) ([]*model.Payment, error) {
	min := from.Format(model.DueDateLayout)
	max := to.Format(model.DueDateLayout)
	return s.listPayments(ctx, func(p *model.Payment) bool {
		// ISO dates compare correctly as strings
		return !p.IsPaid && p.DueDate >= min && p.DueDate <= max
	})
}

func (s *Store) listPayments(ctx context.Context, filter func(*model.Payment) bool) ([]*model.Payment, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	var payments []*model.Payment
	err := s.db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(bucketPayments)
		return bkt.ForEach(func(_, v []byte) error {
			var payment model.Payment
			if err := json.Unmarshal(v, &payment); err != nil {
				return err
			}
			if filter(&payment) {
				copied := payment
				payments = append(payments, &copied)
			}
			return nil
		})
	})
	return payments, err
}

// UpsertSubscription stores or replaces a device's push subscription.
func (s *Store) UpsertSubscription(ctx context.Context, sub *model.PushSubscription) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	now := time.Now().UTC()
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = now
	}
	sub.UpdatedAt = now
	payload, err := json.Marshal(sub)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(bucketSubscriptions)
		if raw := bkt.Get([]byte(sub.DeviceID)); raw != nil {
			var existing model.PushSubscription
			if err := json.Unmarshal(raw, &existing); err == nil && !existing.CreatedAt.IsZero() {
				sub.CreatedAt = existing.CreatedAt
				payload, err = json.Marshal(sub)
				if err != nil {
					return err
				}
			}
		}
		return bkt.Put([]byte(sub.DeviceID), payload)
	})
}

// GetSubscription fetches the push subscription for a device.
func (s *Store) GetSubscription(ctx context.Context, deviceID string) (*model.PushSubscription, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	var result *model.PushSubscription
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketSubscriptions).Get([]byte(deviceID))
		if raw == nil {
			return nil
		}
		var sub model.PushSubscription
		if err := json.Unmarshal(raw, &sub); err != nil {
			return err
		}
		result = &sub
		return nil
	})
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, storage.ErrNotFound
	}
	return result, nil
}

// DeleteSubscription drops a device's push subscription.
func (s *Store) DeleteSubscription(ctx context.Context, deviceID string) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSubscriptions).Delete([]byte(deviceID))
	})
}

// HasNotificationLog reports whether the (device, payment, kind) triple was
// already logged.
func (s *Store) HasNotificationLog(ctx context.Context, deviceID, paymentID, kind string) (bool, error) {
	if err := ctxErr(ctx); err != nil {
		return false, err
	}
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		found = tx.Bucket(bucketLog).Get(logKey(deviceID, paymentID, kind)) != nil
		return nil
	})
	return found, err
}

// AppendNotificationLog records a delivered reminder. The triple key is
// checked and inserted inside one write transaction, so a concurrent sweep
// that raced past the read-side check gets ErrDuplicate here instead of a
// second log row.
func (s *Store) AppendNotificationLog(ctx context.Context, entry *model.NotificationLogEntry) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(bucketLog)
		key := logKey(entry.DeviceID, entry.PaymentID, entry.Kind)
		if bkt.Get(key) != nil {
			return storage.ErrDuplicate
		}
		return bkt.Put(key, payload)
	})
}

// ListNotificationLogs returns all log entries.
func (s *Store) ListNotificationLogs(ctx context.Context) ([]*model.NotificationLogEntry, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	var entries []*model.NotificationLogEntry
	err := s.db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(bucketLog)
		return bkt.ForEach(func(_, v []byte) error {
			var entry model.NotificationLogEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				return err
			}
			copied := entry
			entries = append(entries, &copied)
			return nil
		})
	})
	return entries, err
}

func logKey(deviceID, paymentID, kind string) []byte {
	return []byte(strings.Join([]string{deviceID, paymentID, kind}, "\x00"))
}

func ctxErr(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
