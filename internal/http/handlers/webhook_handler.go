// WhatsApp webhook handlers.
//
// Meta's Cloud API delivers two kinds of traffic to the same path:
//   - GET  /webhooks/whatsapp   (subscription verification handshake)
//   - POST /webhooks/whatsapp   (inbound messages and delivery receipts)
//
// The POST handler acknowledges with 200 whenever the payload could be
// decoded, even if individual events fail downstream: Meta retries the whole
// delivery on non-2xx, and retries are already absorbed by the processed-
// message dedup, so failing the batch would only produce noise. Only an
// undecodable body yields 400.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/gastropedido/go-orders-backend/internal/services"
	"github.com/gastropedido/go-orders-backend/internal/whatsapp"
)

// VerifyWebhook handles the GET handshake. Meta sends hub.mode=subscribe,
// hub.verify_token and hub.challenge; on a token match the challenge must be
// echoed back as plain text.
func (h *Handlers) VerifyWebhook(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode != "subscribe" || token == "" || token != h.verifyToken {
		fail(c, http.StatusForbidden, ErrCodeForbidden, "verification failed")
		return
	}

	c.String(http.StatusOK, challenge)
}

// ReceiveWebhook handles POST deliveries.
func (h *Handlers) ReceiveWebhook(c *gin.Context) {
	var payload whatsapp.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid webhook payload")
		return
	}

	ctx := c.Request.Context()
	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				h.processMessage(c, msg)
			}
			for _, st := range change.Value.Statuses {
				if err := h.inbound.HandleReceipt(ctx, st.ID, st.Status); err != nil {
					log.Error().Err(err).Str("wa_message_id", st.ID).
						Msg("webhook receipt processing failed")
				}
			}
		}
	}

	ok(c, http.StatusOK, gin.H{"status": "received"})
}

// processMessage feeds one inbound message to the correlator. Non-text
// messages are logged with an empty body so the conversation history stays
// complete; they can never classify as a confirmation.
func (h *Handlers) processMessage(c *gin.Context, msg whatsapp.Message) {
	in := services.InboundText{
		WAMessageID: msg.ID,
		From:        msg.From,
	}
	if msg.Text != nil {
		in.Body = msg.Text.Body
	}
	switch {
	case msg.Image != nil:
		in.MediaURL = msg.Image.Link
	case msg.Document != nil:
		in.MediaURL = msg.Document.Link
	}

	res, err := h.inbound.HandleInbound(c.Request.Context(), in)
	if err != nil {
		if errors.Is(err, services.ErrAlreadyProcessed) {
			log.Debug().Str("wa_message_id", msg.ID).Msg("duplicate webhook delivery ignored")
			return
		}
		log.Error().Err(err).Str("wa_message_id", msg.ID).
			Msg("webhook message processing failed")
		return
	}
	if res.OrderID != "" {
		log.Info().
			Str("order_id", res.OrderID).
			Str("classification", res.Classification.String()).
			Msg("order transitioned from provider reply")
	}
}
