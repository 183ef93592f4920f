package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gastropedido/go-orders-backend/internal/domain"
)

func TestAppendMessage_DefaultsByDirection(t *testing.T) {
	db := newRepoDB(t, &domain.WhatsAppMessage{})

	in, err := AppendMessage(context.Background(), db, &domain.WhatsAppMessage{
		WAMessageID: "wamid.in.1",
		Direction:   domain.DirectionInbound,
		Phone:       "549111",
		Content:     "dale, confirmo",
	})
	if err != nil {
		t.Fatalf("append inbound: %v", err)
	}
	if in.ID == "" || in.Status != domain.MessageStatusReceived || in.CreatedAt.IsZero() {
		t.Fatalf("inbound defaults not applied: %+v", in)
	}

	out, err := AppendMessage(context.Background(), db, &domain.WhatsAppMessage{
		Direction: domain.DirectionOutbound,
		Phone:     "549111",
		Content:   "detalle del pedido",
	})
	if err != nil {
		t.Fatalf("append outbound: %v", err)
	}
	if out.Status != domain.MessageStatusSent {
		t.Fatalf("outbound default status: %+v", out)
	}
}

func TestUpdateMessageStatus_KnownAndUnknownID(t *testing.T) {
	db := newRepoDB(t, &domain.WhatsAppMessage{})

	m, _ := AppendMessage(context.Background(), db, &domain.WhatsAppMessage{
		WAMessageID: "wamid.out.7",
		Direction:   domain.DirectionOutbound,
		Phone:       "549111",
		Content:     "hola",
	})

	if err := UpdateMessageStatus(context.Background(), db, "wamid.out.7", domain.MessageStatusRead); err != nil {
		t.Fatalf("UpdateMessageStatus: %v", err)
	}
	var got domain.WhatsAppMessage
	if err := db.First(&got, "id = ?", m.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Status != domain.MessageStatusRead {
		t.Fatalf("status not updated: %s", got.Status)
	}

	// Receipts for unknown ids are ignored, not errors.
	if err := UpdateMessageStatus(context.Background(), db, "wamid.unknown", domain.MessageStatusFailed); err != nil {
		t.Fatalf("unknown id should be ignored: %v", err)
	}
}

func TestListMessagesByPhonePage_OldestFirst(t *testing.T) {
	db := newRepoDB(t, &domain.WhatsAppMessage{})

	base := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	for i, content := range []string{"primero", "segundo", "tercero"} {
		m := domain.WhatsAppMessage{
			ID: content, Direction: domain.DirectionInbound, Phone: "549444",
			Content: content, Status: domain.MessageStatusReceived,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := db.Create(&m).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	total, err := CountMessagesByPhone(context.Background(), db, "549444")
	if err != nil || total != 3 {
		t.Fatalf("count: total=%d err=%v", total, err)
	}

	page, err := ListMessagesByPhonePage(context.Background(), db, "549444", 0, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page) != 2 || page[0].Content != "primero" || page[1].Content != "segundo" {
		t.Fatalf("unexpected page: %+v", page)
	}
}

func TestMarkProcessed_DuplicateDetection(t *testing.T) {
	db := newRepoDB(t, &domain.ProcessedMessage{})

	if _, err := MarkProcessed(context.Background(), db, "wamid.x"); err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if _, err := MarkProcessed(context.Background(), db, "wamid.x"); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate on second claim, got %v", err)
	}

	done, err := IsProcessed(context.Background(), db, "wamid.x")
	if err != nil || !done {
		t.Fatalf("IsProcessed: done=%v err=%v", done, err)
	}
	done, err = IsProcessed(context.Background(), db, "wamid.y")
	if err != nil || done {
		t.Fatalf("IsProcessed for unseen id: done=%v err=%v", done, err)
	}
}
