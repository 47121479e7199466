package model

// PushPayload is the JSON document delivered to the service worker.
type PushPayload struct {
	Title string          `json:"title"`
	Body  string          `json:"body"`
	Icon  string          `json:"icon"`
	Badge string          `json:"badge"`
	Data  PushPayloadData `json:"data"`
}

// PushPayloadData carries routing information for notification clicks.
// PaymentID is the stable field the client uses to deep-link.
type PushPayloadData struct {
	URL       string `json:"url"`
	PaymentID string `json:"paymentId,omitempty"`
	Test      bool   `json:"test,omitempty"`
}
