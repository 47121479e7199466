package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/payalert-labs/payalert/internal/model"
	"github.com/payalert-labs/payalert/internal/storage"
)

var dueDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// PaymentService manages device-scoped payment records.
type PaymentService struct {
	store storage.Store
}

// NewPaymentService constructs PaymentService.
func NewPaymentService(store storage.Store) *PaymentService {
	return &PaymentService{store: store}
}

// CreatePaymentRequest describes the create payload.
type CreatePaymentRequest struct {
	DeviceID    string `json:"device_id"`
	Title       string `json:"title"`
	DueDate     string `json:"due_date"`
	AmountCents *int64 `json:"amount_cents"`
	Notes       string `json:"notes"`
}

// UpdatePaymentRequest describes a partial update; nil fields keep their
// stored value.
type UpdatePaymentRequest struct {
	ID          string  `json:"id"`
	DeviceID    string  `json:"device_id"`
	Title       *string `json:"title"`
	DueDate     *string `json:"due_date"`
	AmountCents *int64  `json:"amount_cents"`
	Notes       *string `json:"notes"`
	IsPaid      *bool   `json:"is_paid"`
}

// List returns a device's payments ordered by due date.
func (s *PaymentService) List(ctx context.Context, deviceID string) ([]*model.Payment, error) {
	if strings.TrimSpace(deviceID) == "" {
		return nil, fmt.Errorf("device_id is required")
	}
	payments, err := s.store.ListPayments(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if payments == nil {
		payments = []*model.Payment{}
	}
	return payments, nil
}

// Create validates and stores a new payment with a server-minted id.
func (s *PaymentService) Create(ctx context.Context, req CreatePaymentRequest) (*model.Payment, error) {
	if strings.TrimSpace(req.DeviceID) == "" || strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.DueDate) == "" {
		return nil, fmt.Errorf("device_id, title, and due_date are required")
	}
	if err := validateDueDate(req.DueDate); err != nil {
		return nil, err
	}
	payment := &model.Payment{
		ID:          uuid.NewString(),
		DeviceID:    req.DeviceID,
		Title:       strings.TrimSpace(req.Title),
		DueDate:     req.DueDate,
		AmountCents: req.AmountCents,
		Notes:       req.Notes,
		IsPaid:      false,
	}
	if err := s.store.CreatePayment(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// Update applies provided fields to an existing payment.
func (s *PaymentService) Update(ctx context.Context, req UpdatePaymentRequest) (*model.Payment, error) {
	if strings.TrimSpace(req.ID) == "" || strings.TrimSpace(req.DeviceID) == "" {
		return nil, fmt.Errorf("id and device_id are required")
	}
	payment, err := s.store.GetPayment(ctx, req.DeviceID, req.ID)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		payment.Title = strings.TrimSpace(*req.Title)
	}
	if req.DueDate != nil {
		if err := validateDueDate(*req.DueDate); err != nil {
			return nil, err
		}
		payment.DueDate = *req.DueDate
	}
	if req.AmountCents != nil {
		payment.AmountCents = req.AmountCents
	}
	if req.Notes != nil {
		payment.Notes = *req.Notes
	}
	if req.IsPaid != nil {
		payment.IsPaid = *req.IsPaid
	}
	if err := s.store.UpdatePayment(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// Delete removes a payment, scoped to its owning device.
func (s *PaymentService) Delete(ctx context.Context, deviceID, id string) error {
	if strings.TrimSpace(id) == "" || strings.TrimSpace(deviceID) == "" {
		return fmt.Errorf("id and device_id are required")
	}
	return s.store.DeletePayment(ctx, deviceID, id)
}

func validateDueDate(value string) error {
	if !dueDatePattern.MatchString(value) {
		return fmt.Errorf("invalid date format, use YYYY-MM-DD")
	}
	if _, err := time.Parse(model.DueDateLayout, value); err != nil {
		return fmt.Errorf("invalid date format, use YYYY-MM-DD")
	}
	return nil
}
