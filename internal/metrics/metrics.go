// Package metrics exposes prometheus counters for session and note activity.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what the HTTP layer reports to. Labels are short, fixed
// result names such as "ok", "expired", "revoked".
type Recorder interface {
	RecordResolve(result string)
	RecordLogin(result string)
	RecordLogout(result string)
	RecordNoteOp(op string)
}

type Collector struct {
	resolve *prometheus.CounterVec
	login   *prometheus.CounterVec
	logout  *prometheus.CounterVec
	noteOps *prometheus.CounterVec
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		resolve: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notes_auth_resolve_total",
			Help: "Bearer token resolutions by result.",
		}, []string{"result"}),
		login: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notes_login_total",
			Help: "Login attempts by result.",
		}, []string{"result"}),
		logout: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notes_logout_total",
			Help: "Logout attempts by result.",
		}, []string{"result"}),
		noteOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notes_note_ops_total",
			Help: "Successful note operations by kind.",
		}, []string{"op"}),
	}

	reg.MustRegister(c.resolve, c.login, c.logout, c.noteOps)

	return c
}

func (c *Collector) RecordResolve(result string) {
	c.resolve.WithLabelValues(result).Inc()
}

func (c *Collector) RecordLogin(result string) {
	c.login.WithLabelValues(result).Inc()
}

func (c *Collector) RecordLogout(result string) {
	c.logout.WithLabelValues(result).Inc()
}

func (c *Collector) RecordNoteOp(op string) {
	c.noteOps.WithLabelValues(op).Inc()
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordResolve(string) {}
func (Nop) RecordLogin(string)   {}
func (Nop) RecordLogout(string)  {}
func (Nop) RecordNoteOp(string)  {}

// Handler serves the prometheus exposition format for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
