package model

import "time"

// SweepError pins a delivery failure to the payment that caused it.
type SweepError struct {
	PaymentID string `json:"paymentId"`
	Error     string `json:"error"`
}

// SweepResult aggregates one dispatch run. Counters are commutative:
// candidates are processed concurrently and the totals must not depend
// on iteration order.
type SweepResult struct {
	Checked int          `json:"checked"`
	Sent    int          `json:"sent"`
	Skipped int          `json:"skipped"`
	Errors  []SweepError `json:"errors"`
}

// SweepResponse is the trigger endpoint's summary body.
type SweepResponse struct {
	Success   bool         `json:"success"`
	Timestamp time.Time    `json:"timestamp"`
	Mode      string       `json:"mode"`
	Results   *SweepResult `json:"results"`
}
