// Package metrics defines the custom Prometheus metrics of the ledger API.
// It is the single source of truth for metric names, labels and help strings.
//
// Build one Metrics per registry with New. All methods are safe on a nil
// *Metrics so callers that run without metrics need no guards.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/99minutos/ledger-system/internal/core/domain"
)

const namespace = "ledger"

// Result labels.
const (
	ResultOK                = "ok"
	ResultInvalidAmount     = "invalid_amount"
	ResultUnauthenticated   = "unauthenticated"
	ResultInvalidCSRF       = "invalid_csrf"
	ResultRecipientNotFound = "recipient_not_found"
	ResultInsufficientFunds = "insufficient_funds"
	ResultSelfTransfer      = "self_transfer"
	ResultStorage           = "storage_error"
	ResultError             = "error"
)

type Metrics struct {
	// LoginsTotal counts login attempts.
	// Label result: "ok", "unauthenticated", "storage_error", "error".
	LoginsTotal *prometheus.CounterVec

	// TransfersTotal counts transfer attempts by outcome.
	TransfersTotal *prometheus.CounterVec

	// TransferredUnitsTotal sums the amounts of committed transfers.
	TransferredUnitsTotal prometheus.Counter

	// TransferDuration measures a transfer from request to commit or rejection.
	TransferDuration *prometheus.HistogramVec
}

// New registers the ledger metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		LoginsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "logins_total",
				Help:      "Total number of login attempts, by result.",
			},
			[]string{"result"},
		),
		TransfersTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transfers_total",
				Help:      "Total number of transfer attempts, by result.",
			},
			[]string{"result"},
		),
		TransferredUnitsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transferred_units_total",
				Help:      "Sum of amounts moved by committed transfers.",
			},
		),
		TransferDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "transfer_duration_seconds",
				Help:      "Duration of transfer handling, by result.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"result"},
		),
	}
}

// RegisterStateGauges exposes live session and CSRF token counts.
func RegisterStateGauges(reg prometheus.Registerer, sessions, csrfTokens func() int) {
	factory := promauto.With(reg)
	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of sessions currently held in memory.",
		},
		func() float64 { return float64(sessions()) },
	)
	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "csrf_tokens",
			Help:      "Number of CSRF tokens currently held in memory.",
		},
		func() float64 { return float64(csrfTokens()) },
	)
}

func (m *Metrics) ObserveLogin(err error) {
	if m == nil {
		return
	}
	m.LoginsTotal.WithLabelValues(ResultFor(err)).Inc()
}

func (m *Metrics) ObserveTransfer(amount int64, seconds float64, err error) {
	if m == nil {
		return
	}
	result := ResultFor(err)
	m.TransfersTotal.WithLabelValues(result).Inc()
	m.TransferDuration.WithLabelValues(result).Observe(seconds)
	if err == nil {
		m.TransferredUnitsTotal.Add(float64(amount))
	}
}

// ResultFor maps an operation error to its result label.
func ResultFor(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, domain.ErrInvalidAmount):
		return ResultInvalidAmount
	case errors.Is(err, domain.ErrUnauthenticated):
		return ResultUnauthenticated
	case errors.Is(err, domain.ErrInvalidCSRF):
		return ResultInvalidCSRF
	case errors.Is(err, domain.ErrRecipientNotFound):
		return ResultRecipientNotFound
	case errors.Is(err, domain.ErrInsufficientFunds):
		return ResultInsufficientFunds
	case errors.Is(err, domain.ErrSelfTransfer):
		return ResultSelfTransfer
	case errors.Is(err, domain.ErrStorage):
		return ResultStorage
	default:
		return ResultError
	}
}
