// Package services – outbound message composition.
//
// The texts sent to providers are plain WhatsApp messages in Spanish. The
// renderer is deterministic: items appear exactly once in stored position
// order, and optional fields fall back to a literal "no especificado" marker
// instead of rendering empty.
package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gastropedido/go-orders-backend/internal/domain"
)

// notSpecified is the fallback marker for absent delivery date/time fields.
const notSpecified = "no especificado"

// deliveryTimesSep is the storage separator for the DeliveryTimes column.
const deliveryTimesSep = ","

// JoinDeliveryTimes serializes delivery time slots for storage, preserving
// input order and dropping blank entries.
func JoinDeliveryTimes(times []string) string {
	clean := make([]string, 0, len(times))
	for _, t := range times {
		if t = strings.TrimSpace(t); t != "" {
			clean = append(clean, t)
		}
	}
	return strings.Join(clean, deliveryTimesSep)
}

// SplitDeliveryTimes is the inverse of JoinDeliveryTimes. An empty column
// yields a nil slice, not [""].
func SplitDeliveryTimes(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, deliveryTimesSep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// RenderOrderDetail composes the follow-up message sent to a provider after
// an affirmative reply: every line item with quantity and unit, the total
// with currency, delivery date and time slots (or "no especificado"), and
// the payment method.
func RenderOrderDetail(o *domain.Order) string {
	var b strings.Builder

	b.WriteString("Detalle del pedido:\n")
	for _, it := range o.Items {
		fmt.Fprintf(&b, "- %s: %s %s\n", it.Product, formatQuantity(it.Quantity), it.Unit)
	}
	fmt.Fprintf(&b, "Total: %.2f %s\n", o.TotalAmount, o.Currency)
	fmt.Fprintf(&b, "Fecha de entrega: %s\n", formatDeliveryDate(o.DeliveryDate))
	fmt.Fprintf(&b, "Horario de entrega: %s\n", formatDeliveryTimes(o.DeliveryTimes))
	fmt.Fprintf(&b, "Forma de pago: %s", o.PaymentMethod)

	return b.String()
}

// RenderConfirmationRequest composes the initial notification asking the
// provider to confirm an order. It names the business user's order and tells
// the provider how to answer, since replies are matched by keyword.
func RenderConfirmationRequest(providerName string, o *domain.Order) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Hola %s, tenemos un nuevo pedido para vos.\n", providerName)
	fmt.Fprintf(&b, "Son %d producto(s) por un total de %.2f %s.\n", len(o.Items), o.TotalAmount, o.Currency)
	b.WriteString("¿Podés tomarlo? Respondé SI para confirmar o NO para rechazar.")

	return b.String()
}

// formatQuantity prints quantities without trailing zeros ("2", "2.5").
func formatQuantity(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}

func formatDeliveryDate(d *time.Time) string {
	if d == nil {
		return notSpecified
	}
	return d.Format("02/01/2006")
}

func formatDeliveryTimes(stored string) string {
	times := SplitDeliveryTimes(stored)
	if len(times) == 0 {
		return notSpecified
	}
	return strings.Join(times, ", ")
}
