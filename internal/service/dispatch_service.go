package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/payalert-labs/payalert/internal/model"
	"github.com/payalert-labs/payalert/internal/pushclient"
	"github.com/payalert-labs/payalert/internal/reminder"
	"github.com/payalert-labs/payalert/internal/storage"
	"github.com/sirupsen/logrus"
)

// PushSender delivers an encoded payload to a device's push endpoint.
// pushclient.ErrSubscriptionGone signals a permanently dead endpoint.
type PushSender interface {
	Send(ctx context.Context, sub *model.PushSubscription, payload []byte) error
}

// DispatchService runs reminder sweeps: fetch candidates in the due
// window, evaluate each against the reminder table, deduplicate via the
// notification log and deliver over web push. Safe to invoke repeatedly
// (the log makes every kind at-most-once) and concurrently for
// different modes.
type DispatchService struct {
	store      storage.Store
	push       PushSender
	log        *logrus.Logger
	windowDays int
}

// NewDispatchService constructs DispatchService. windowDays bounds the
// candidate fetch: only unpaid payments due within [today, today+windowDays]
// are evaluated.
func NewDispatchService(store storage.Store, push PushSender, log *logrus.Logger, windowDays int) *DispatchService {
	if windowDays <= 0 {
		windowDays = 7
	}
	return &DispatchService{store: store, push: push, log: log, windowDays: windowDays}
}

type outcome int

const (
	outcomeNone outcome = iota
	outcomeSkipped
	outcomeSent
	outcomeError
)

// RunSweep executes one full dispatch run for a mode. A failing candidate
// never aborts the sweep; failures accumulate in the result's error list.
// Only the initial candidate fetch is fatal.
func (s *DispatchService) RunSweep(ctx context.Context, mode reminder.Mode, today time.Time) (*model.SweepResult, error) {
	if s.push == nil {
		return nil, fmt.Errorf("push transport not configured")
	}

	payments, err := s.store.ListDueUnpaid(ctx, today, today.AddDate(0, 0, s.windowDays))
	if err != nil {
		return nil, fmt.Errorf("fetch candidates: %w", err)
	}

	result := &model.SweepResult{
		Checked: len(payments),
		Errors:  []model.SweepError{},
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	wg.Add(len(payments))
	for _, payment := range payments {
		payment := payment
		go func() {
			defer wg.Done()
			out, sweepErr := s.processCandidate(ctx, payment, mode, today)
			mu.Lock()
			defer mu.Unlock()
			switch out {
			case outcomeSent:
				result.Sent++
			case outcomeSkipped:
				result.Skipped++
			case outcomeError:
				result.Errors = append(result.Errors, *sweepErr)
			}
		}()
	}
	wg.Wait()

	s.log.WithFields(logrus.Fields{
		"mode":    string(mode),
		"checked": result.Checked,
		"sent":    result.Sent,
		"skipped": result.Skipped,
		"errors":  len(result.Errors),
	}).Info("sweep finished")
	return result, nil
}

func (s *DispatchService) processCandidate(ctx context.Context, payment *model.Payment, mode reminder.Mode, today time.Time) (outcome, *model.SweepError) {
	kind, ok := reminder.Evaluate(today, payment.DueDate, mode)
	if !ok {
		return outcomeNone, nil
	}

	logged, err := s.store.HasNotificationLog(ctx, payment.DeviceID, payment.ID, string(kind))
	if err != nil {
		return outcomeError, &model.SweepError{PaymentID: payment.ID, Error: fmt.Sprintf("check log: %v", err)}
	}
	if logged {
		return outcomeSkipped, nil
	}

	sub, err := s.store.GetSubscription(ctx, payment.DeviceID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return outcomeSkipped, nil
		}
		return outcomeError, &model.SweepError{PaymentID: payment.ID, Error: fmt.Sprintf("fetch subscription: %v", err)}
	}

	payload, err := json.Marshal(reminder.BuildPayload(payment, kind))
	if err != nil {
		return outcomeError, &model.SweepError{PaymentID: payment.ID, Error: fmt.Sprintf("encode payload: %v", err)}
	}

	if err := s.push.Send(ctx, sub, payload); err != nil {
		if errors.Is(err, pushclient.ErrSubscriptionGone) {
			if delErr := s.store.DeleteSubscription(ctx, payment.DeviceID); delErr != nil {
				s.log.WithError(delErr).WithField("device_id", payment.DeviceID).Warn("drop dead subscription failed")
			} else {
				s.log.WithField("device_id", payment.DeviceID).Info("dropped gone subscription")
			}
		}
		return outcomeError, &model.SweepError{PaymentID: payment.ID, Error: err.Error()}
	}

	entry := &model.NotificationLogEntry{
		DeviceID:  payment.DeviceID,
		PaymentID: payment.ID,
		Kind:      string(kind),
	}
	if err := s.store.AppendNotificationLog(ctx, entry); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			// an overlapping sweep recorded the triple first; our delivery
			// already happened, so this still counts as sent
			return outcomeSent, nil
		}
		return outcomeError, &model.SweepError{PaymentID: payment.ID, Error: fmt.Sprintf("append log: %v", err)}
	}
	return outcomeSent, nil
}

// SendTest pushes a one-off test notification to a device, bypassing the
// reminder table and the deduplication log.
func (s *DispatchService) SendTest(ctx context.Context, deviceID string) error {
	if s.push == nil {
		return fmt.Errorf("push transport not configured")
	}
	sub, err := s.store.GetSubscription(ctx, deviceID)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(model.PushPayload{
		Title: "🎉 Test PayAlert",
		Body:  "Le notifiche funzionano correttamente!",
		Icon:  "/icon-192.png",
		Badge: "/icon-192.png",
		Data:  model.PushPayloadData{URL: "/", Test: true},
	})
	if err != nil {
		return err
	}
	if err := s.push.Send(ctx, sub, payload); err != nil {
		if errors.Is(err, pushclient.ErrSubscriptionGone) {
			if delErr := s.store.DeleteSubscription(ctx, deviceID); delErr != nil {
				s.log.WithError(delErr).WithField("device_id", deviceID).Warn("drop dead subscription failed")
			}
		}
		return err
	}
	return nil
}
