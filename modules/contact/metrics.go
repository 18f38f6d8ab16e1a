package contact

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	svc "github.com/dmitrymomot/contactguard/svc/contact"
)

// Metrics counts pipeline outcomes.
type Metrics struct {
	SubmissionsTotal *prometheus.CounterVec
	AuditRunsTotal   *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// NewMetrics creates and registers the contact metrics with registry.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		SubmissionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contactguard_submissions_total",
				Help: "Contact form submissions by outcome",
			},
			[]string{"outcome"},
		),
		AuditRunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contactguard_audit_runs_total",
				Help: "Security self-check runs by result",
			},
			[]string{"result"},
		),
		gatherer: registry,
	}
	registry.MustRegister(m.SubmissionsTotal, m.AuditRunsTotal)
	return m
}

// Outcome label values.
const (
	OutcomeDispatched  = "dispatched"
	OutcomeRateLimited = "rate_limited"
	OutcomeBadToken    = "invalid_token"
	OutcomeInvalid     = "validation_failed"
	OutcomeFailed      = "dispatch_failed"
	OutcomeUnavailable = "unavailable"
)

// OutcomeLabel maps a Handle error to its metric label.
func OutcomeLabel(err error) string {
	switch {
	case err == nil:
		return OutcomeDispatched
	case errors.Is(err, svc.ErrRateLimitExceeded):
		return OutcomeRateLimited
	case errors.Is(err, svc.ErrInvalidToken):
		return OutcomeBadToken
	case errors.Is(err, svc.ErrValidationFailed):
		return OutcomeInvalid
	case errors.Is(err, svc.ErrDispatchFailed):
		return OutcomeFailed
	default:
		return OutcomeUnavailable
	}
}

func (m *Metrics) observeSubmission(err error) {
	if m == nil {
		return
	}
	m.SubmissionsTotal.WithLabelValues(OutcomeLabel(err)).Inc()
}

func (m *Metrics) observeAudit(passed bool) {
	if m == nil {
		return
	}
	result := "pass"
	if !passed {
		result = "fail"
	}
	m.AuditRunsTotal.WithLabelValues(result).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
