package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Auth-related Prometheus metrics. These live in a standalone package to
// avoid import cycles between controllers and the HTTP package.

var (
	LoginsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_logins_total",
		Help: "Logins por método y resultado",
	}, []string{"method", "result"}) // method: local|google|naver, result: ok|failed

	RegistrationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auth_registrations_total",
		Help: "Registros locales exitosos",
	})

	UnlinksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_unlinks_total",
		Help: "Desvinculaciones por proveedor y resultado",
	}, []string{"provider", "result"})
)

// RegisterAuth registers the auth metrics on the given registry (or default if nil).
func RegisterAuth(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{LoginsTotal, RegistrationsTotal, UnlinksTotal} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}

// RecordLogin registra el resultado de un login.
func RecordLogin(method, result string) {
	LoginsTotal.WithLabelValues(method, result).Inc()
}

// RecordUnlink registra el resultado de una desvinculación.
func RecordUnlink(provider, result string) {
	UnlinksTotal.WithLabelValues(provider, result).Inc()
}
