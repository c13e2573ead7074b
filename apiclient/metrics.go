package apiclient

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Refresh outcomes recorded in the token refresh counter.
const (
	RefreshSuccess = "success"
	RefreshReused  = "reused"
	RefreshFailure = "failure"
)

// Metrics counts pipeline activity. A nil *Metrics records nothing.
type Metrics struct {
	Requests *prometheus.CounterVec
	Refresh  *prometheus.CounterVec
	Retries  prometheus.Counter
}

// NewMetrics creates the pipeline counters and registers them on reg when
// reg is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pcs_client_requests_total",
			Help: "HTTP attempts sent by the API client, by response status code.",
		}, []string{"code"}),
		Refresh: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pcs_client_token_refresh_total",
			Help: "Access token refreshes, by result.",
		}, []string{"result"}),
		Retries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pcs_client_retries_total",
			Help: "Requests re-issued after a successful token refresh.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Requests, m.Refresh, m.Retries)
	}
	return m
}

func (m *Metrics) request(code int) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(strconv.Itoa(code)).Inc()
}

func (m *Metrics) refresh(result string) {
	if m == nil {
		return
	}
	m.Refresh.WithLabelValues(result).Inc()
}

func (m *Metrics) retry() {
	if m == nil {
		return
	}
	m.Retries.Inc()
}
