// Package services – ConfirmationService
//
// ConfirmationService is the inbound half of the confirmation flow: it takes
// a provider's WhatsApp reply, correlates it to a pending order via the
// sender's phone number, classifies the text, and advances the order state
// machine. Every inbound message is logged regardless of outcome, and
// redeliveries of the same WhatsApp message ID are absorbed exactly once.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/gastropedido/go-orders-backend/internal/domain"
	"github.com/gastropedido/go-orders-backend/internal/repo"
	"github.com/gastropedido/go-orders-backend/internal/whatsapp"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// InboundText is a provider reply extracted from a webhook delivery.
type InboundText struct {
	WAMessageID string
	From        string
	Body        string
	MediaURL    string
}

// InboundResult reports what HandleInbound did with a message.
type InboundResult struct {
	Classification Classification
	OrderID        string // set when a pending order was resolved and acted on
}

// ConfirmationService correlates inbound provider replies with pending
// confirmations and transitions the matching order.
type ConfirmationService struct {
	DB         *gorm.DB
	Sender     whatsapp.Sender
	Classifier ReplyClassifier
}

// NewConfirmationService constructs a ConfirmationService.
func NewConfirmationService(db *gorm.DB, sender whatsapp.Sender, cls ReplyClassifier) *ConfirmationService {
	return &ConfirmationService{DB: db, Sender: sender, Classifier: cls}
}

// HandleInbound processes one inbound text message.
//
// Flow: claim the WhatsApp message ID (ErrAlreadyProcessed on redelivery),
// log the message, resolve the most recent pending confirmation for the
// sender's phone, classify the reply, and on affirmative/negative apply the
// status transition and pending removal in a single transaction. An
// affirmative reply additionally sends the order detail back to the
// provider; a failure on that send does not roll back the confirmation.
func (s *ConfirmationService) HandleInbound(ctx context.Context, in InboundText) (InboundResult, error) {
	tr := otel.Tracer("services/ConfirmationService")
	ctx, span := tr.Start(ctx, "HandleInbound",
		trace.WithAttributes(attribute.String("wa.message_id", in.WAMessageID)),
	)
	defer span.End()

	res := InboundResult{Classification: Unrecognized}

	if in.WAMessageID != "" {
		if _, err := repo.MarkProcessed(ctx, s.DB, in.WAMessageID); err != nil {
			if errors.Is(err, repo.ErrDuplicate) {
				return res, ErrAlreadyProcessed
			}
			return res, err
		}
	}

	phone, err := NormalizePhone(in.From)
	if err != nil {
		phone = in.From
	}

	if _, err := repo.AppendMessage(ctx, s.DB, &domain.WhatsAppMessage{
		WAMessageID: in.WAMessageID,
		Direction:   domain.DirectionInbound,
		Phone:       phone,
		Content:     in.Body,
		MediaURL:    in.MediaURL,
	}); err != nil {
		return res, err
	}

	pending, err := repo.FindPendingByPhone(ctx, s.DB, phone)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Debug().Str("wa_message_id", in.WAMessageID).
				Msg("inbound message without pending confirmation")
			return res, nil
		}
		return res, err
	}

	cls := s.Classifier.Classify(in.Body)
	res.Classification = cls
	replyClassifications.WithLabelValues(cls.String()).Inc()

	switch cls {
	case Affirmative:
		res.OrderID = pending.OrderID
		return res, s.confirm(ctx, pending)
	case Negative:
		res.OrderID = pending.OrderID
		return res, s.reject(ctx, pending)
	default:
		log.Debug().Str("order_id", pending.OrderID).
			Msg("unrecognized reply for pending confirmation")
		return res, nil
	}
}

// confirm moves the order to confirmed, clears the pending entry, and sends
// the order detail back to the provider.
func (s *ConfirmationService) confirm(ctx context.Context, pending *domain.PendingConfirmation) error {
	o, err := repo.GetOrderByID(ctx, s.DB, pending.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Order deleted after the request went out; drop the stale entry.
			return repo.RemovePendingConfirmation(ctx, s.DB, pending.ID)
		}
		return err
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.UpdateOrderStatus(ctx, tx, o.ID, domain.OrderStatusConfirmed); err != nil {
			return err
		}
		return repo.RemovePendingConfirmation(ctx, tx, pending.ID)
	})
	if err != nil {
		return err
	}

	body := RenderOrderDetail(o)
	waID, err := s.Sender.SendText(ctx, pending.Phone, body)
	if err != nil {
		outboundSends.WithLabelValues("failed").Inc()
		log.Error().Err(err).Str("order_id", o.ID).
			Msg("order confirmed but detail message failed to send")
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	outboundSends.WithLabelValues("sent").Inc()

	_, err = repo.AppendMessage(ctx, s.DB, &domain.WhatsAppMessage{
		WAMessageID: waID,
		Direction:   domain.DirectionOutbound,
		Phone:       pending.Phone,
		Content:     body,
		Status:      domain.MessageStatusSent,
	})
	return err
}

// reject moves the order to rejected and clears the pending entry. No
// outbound message is sent for rejections.
func (s *ConfirmationService) reject(ctx context.Context, pending *domain.PendingConfirmation) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.UpdateOrderStatus(ctx, tx, pending.OrderID, domain.OrderStatusRejected); err != nil {
			return err
		}
		return repo.RemovePendingConfirmation(ctx, tx, pending.ID)
	})
}

// HandleReceipt records a delivery receipt for an outbound message. Receipts
// for unknown message IDs are ignored.
func (s *ConfirmationService) HandleReceipt(ctx context.Context, waMessageID, status string) error {
	switch status {
	case domain.MessageStatusSent, domain.MessageStatusDelivered,
		domain.MessageStatusRead, domain.MessageStatusFailed:
	default:
		log.Debug().Str("wa_message_id", waMessageID).Str("status", status).
			Msg("ignoring unknown receipt status")
		return nil
	}
	return repo.UpdateMessageStatus(ctx, s.DB, waMessageID, status)
}
