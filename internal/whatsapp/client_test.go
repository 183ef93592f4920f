package whatsapp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSendText_Success(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody sendRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.ABC"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok-123", "555000111")
	id, err := c.SendText(context.Background(), "5491155550001", "hola proveedor")
	if err != nil {
		t.Fatalf("SendText: %v", err)
	}
	if id != "wamid.ABC" {
		t.Fatalf("expected wamid.ABC, got %q", id)
	}
	if gotPath != "/555000111/messages" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotAuth != "Bearer tok-123" {
		t.Fatalf("unexpected auth header: %s", gotAuth)
	}
	if gotBody.To != "5491155550001" || gotBody.Type != "text" || gotBody.Text == nil || gotBody.Text.Body != "hola proveedor" {
		t.Fatalf("unexpected request body: %+v", gotBody)
	}
	if gotBody.MessagingProduct != "whatsapp" {
		t.Fatalf("messaging_product must be whatsapp, got %q", gotBody.MessagingProduct)
	}
}

func TestSendText_NonOKStatusReturnsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid OAuth access token"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "bad", "555000111")
	_, err := c.SendText(context.Background(), "549111", "x")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", apiErr.StatusCode)
	}
	if apiErr.Body == "" {
		t.Fatal("expected upstream body to be retained")
	}
}

func TestSendText_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(srv.URL, "tok", "555")
	if _, err := c.SendText(ctx, "549111", "x"); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

func TestWebhookPayload_DecodesInboundText(t *testing.T) {
	raw := `{
	  "object": "whatsapp_business_account",
	  "entry": [{
	    "id": "123",
	    "changes": [{
	      "field": "messages",
	      "value": {
	        "messaging_product": "whatsapp",
	        "metadata": {"display_phone_number": "555", "phone_number_id": "555000111"},
	        "contacts": [{"wa_id": "5491155550001", "profile": {"name": "Frutas del Sur"}}],
	        "messages": [{
	          "from": "5491155550001",
	          "id": "wamid.IN1",
	          "timestamp": "1712345678",
	          "type": "text",
	          "text": {"body": "dale, confirmo"}
	        }]
	      }
	    }]
	  }]
	}`

	var p WebhookPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.Object != "whatsapp_business_account" || len(p.Entry) != 1 {
		t.Fatalf("unexpected envelope: %+v", p)
	}
	msgs := p.Entry[0].Changes[0].Value.Messages
	if len(msgs) != 1 || msgs[0].From != "5491155550001" || msgs[0].Text == nil || msgs[0].Text.Body != "dale, confirmo" {
		t.Fatalf("unexpected message: %+v", msgs)
	}
}

func TestSendResponse_MessageID(t *testing.T) {
	var empty SendResponse
	if empty.MessageID() != "" {
		t.Fatal("empty response should yield empty id")
	}
}
