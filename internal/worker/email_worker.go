package worker

// email_worker.go
// Processes alert email jobs from QueueEmail. Delivery failures never reach
// the stock pipeline: the job is logged and parked in the DLQ instead.

import (
	"context"
	"encoding/json"

	"github.com/vllevinton/bakery-stock-app/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// AlertEmailPayload is the job envelope sent to QueueEmail.
type AlertEmailPayload struct {
	To       []string `json:"to"`
	Subject  string   `json:"subject"`
	HTMLBody string   `json:"html_body"`
	TextBody string   `json:"text_body"`
}

// EmailWorker sends stock alert emails via SMTP.
type EmailWorker struct {
	mailer *infra.Mailer
	rdb    *redis.Client
}

func NewEmailWorker(mailer *infra.Mailer, rdb *redis.Client) *EmailWorker {
	return &EmailWorker{mailer: mailer, rdb: rdb}
}

// Process sends one alert email.
func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload AlertEmailPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return
	}
	if len(payload.To) == 0 {
		log.Warn().Msg("email_worker: empty recipient list — skipping")
		return
	}

	if err := w.mailer.Send(payload.To, payload.Subject, payload.HTMLBody, payload.TextBody); err != nil {
		log.Error().Err(err).Strs("to", payload.To).Msg("email_worker: failed to send alert")
		SendToDLQ(ctx, w.rdb, QueueEmail, "email", raw, err.Error(), 1)
		return
	}
	log.Info().Strs("to", payload.To).Str("subject", payload.Subject).Msg("email_worker: alert sent")
}
