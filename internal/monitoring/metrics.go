package monitoring

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ticketsIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "museum_tickets_issued_total",
			Help: "Admissions sold, counted by quantity",
		},
	)

	ticketValidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "museum_ticket_validations_total",
			Help: "QR validation attempts by result",
		},
		[]string{"result"},
	)

	ticketCancellations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "museum_ticket_cancellations_total",
			Help: "Tickets cancelled",
		},
	)

	confirmationEmails = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "museum_confirmation_emails_total",
			Help: "Confirmation emails by delivery result",
		},
		[]string{"result"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "museum_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

func TicketsIssued(quantity int) {
	ticketsIssued.Add(float64(quantity))
}

// TicketValidated records a validation attempt; result is "valid", "rejected" or "event_ended".
func TicketValidated(result string) {
	ticketValidations.WithLabelValues(result).Inc()
}

func TicketCancelled() {
	ticketCancellations.Inc()
}

func ConfirmationEmail(err error) {
	if err != nil {
		confirmationEmails.WithLabelValues("failed").Inc()
		return
	}
	confirmationEmails.WithLabelValues("sent").Inc()
}

func ObserveRequest(method, route string, status int, elapsed time.Duration) {
	httpRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
