package reminder

import (
	"fmt"
	"strings"
	"time"

	"github.com/payalert-labs/payalert/internal/model"
	"github.com/shopspring/decimal"
)

const (
	notificationIcon  = "/icon-192.png"
	notificationBadge = "/icon-192.png"
)

// titles is the kind→copy table. It must cover every value in Kinds;
// reminder tests enforce completeness.
var titles = map[Kind]string{
	KindD0Morning:   "🚨 Pagamento oggi",
	KindD1Afternoon: "🔔 Pagamento domani",
	KindD1Evening:   "⏰ Ultimo promemoria",
}

var weekdaysIT = [...]string{"domenica", "lunedì", "martedì", "mercoledì", "giovedì", "venerdì", "sabato"}

var monthsIT = [...]string{
	"gennaio", "febbraio", "marzo", "aprile", "maggio", "giugno",
	"luglio", "agosto", "settembre", "ottobre", "novembre", "dicembre",
}

// BuildPayload assembles the notification document for a payment/kind
// pair. The payload carries the payment id so the client can deep-link a
// notification click to the right record.
func BuildPayload(payment *model.Payment, kind Kind) model.PushPayload {
	body := payment.Title + " scade " + dueDatePhrase(payment.DueDate, kind)
	if payment.AmountCents != nil {
		body += " · " + FormatAmount(*payment.AmountCents)
	}
	return model.PushPayload{
		Title: titles[kind],
		Body:  body,
		Icon:  notificationIcon,
		Badge: notificationBadge,
		Data: model.PushPayloadData{
			URL:       "/",
			PaymentID: payment.ID,
		},
	}
}

func dueDatePhrase(dueDate string, kind Kind) string {
	if kind == KindD0Morning {
		return "oggi"
	}
	due, err := time.Parse(model.DueDateLayout, dueDate)
	if err != nil {
		return dueDate
	}
	return FormatDueDate(due)
}

// FormatDueDate renders a due date the way the PWA does, in Italian with
// long weekday and month names.
func FormatDueDate(t time.Time) string {
	return fmt.Sprintf("%s %d %s", weekdaysIT[int(t.Weekday())], t.Day(), monthsIT[int(t.Month())-1])
}

// FormatAmount renders a minor-unit amount as a euro string, comma as
// decimal separator.
func FormatAmount(cents int64) string {
	value := decimal.NewFromInt(cents).Shift(-2)
	return strings.ReplaceAll(value.StringFixed(2), ".", ",") + " €"
}
