// Package services – domain metrics.
//
// Prometheus collectors for the confirmation flow. HTTP-level metrics live
// in the middleware package; these counters track the business events that
// dashboards actually alert on: outbound sends and reply classifications.
package services

import "github.com/prometheus/client_golang/prometheus"

var (
	// outboundSends counts attempts to send a WhatsApp message by result.
	outboundSends = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "whatsapp_outbound_messages_total",
			Help: "Total outbound WhatsApp messages by result (sent|failed).",
		},
		[]string{"result"},
	)

	// replyClassifications counts inbound replies by classification outcome.
	replyClassifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "whatsapp_reply_classifications_total",
			Help: "Total classified inbound replies (affirmative|negative|unrecognized).",
		},
		[]string{"classification"},
	)
)

func init() {
	prometheus.MustRegister(outboundSends, replyClassifications)
}
