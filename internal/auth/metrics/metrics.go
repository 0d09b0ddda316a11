package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	TransitionsTotal   *prometheus.CounterVec
	OTPVerifications   *prometheus.CounterVec
	ProviderAuthTotal  *prometheus.CounterVec
	SessionResets      prometheus.Counter
	SessionsExpired    prometheus.Counter
	AdvanceDuration    prometheus.Histogram
	StoreDegradedReads prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		TransitionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fusebot_auth_transitions_total",
			Help: "Authentication state transitions by resulting status",
		}, []string{"to_status"}),
		OTPVerifications: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fusebot_auth_otp_verifications_total",
			Help: "OTP verification attempts by outcome",
		}, []string{"outcome"}),
		ProviderAuthTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fusebot_auth_provider_requests_total",
			Help: "Identity provider authentication calls by outcome",
		}, []string{"outcome"}),
		SessionResets: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fusebot_auth_session_resets_total",
			Help: "Sessions reset on user request",
		}),
		SessionsExpired: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fusebot_auth_sessions_expired_total",
			Help: "Sessions invalidated after a provider token rejection",
		}),
		AdvanceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "fusebot_auth_advance_duration_seconds",
			Help:    "Duration of authentication flow advancement (includes provider calls)",
			Buckets: []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		StoreDegradedReads: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fusebot_auth_store_degraded_reads_total",
			Help: "Session reads that fell back to a fresh session after a store failure",
		}),
	}
}

func (m *Metrics) IncrementTransition(toStatus string) {
	if m == nil {
		return
	}
	m.TransitionsTotal.WithLabelValues(toStatus).Inc()
}

func (m *Metrics) IncrementOTPVerification(outcome string) {
	if m == nil {
		return
	}
	m.OTPVerifications.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementProviderAuth(outcome string) {
	if m == nil {
		return
	}
	m.ProviderAuthTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementSessionReset() {
	if m == nil {
		return
	}
	m.SessionResets.Inc()
}

func (m *Metrics) IncrementSessionExpired() {
	if m == nil {
		return
	}
	m.SessionsExpired.Inc()
}

func (m *Metrics) ObserveAdvance(start time.Time) {
	if m == nil {
		return
	}
	m.AdvanceDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncrementDegradedRead() {
	if m == nil {
		return
	}
	m.StoreDegradedReads.Inc()
}
