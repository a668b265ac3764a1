package metrics

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iota-uz/payroll-bot/pkg/application"
)

const DefaultPath = "/debug/prometheus"

// NewInfo is the constant payroll_info gauge describing the running deployment.
func NewInfo(environment, locale, currency string) prometheus.Collector {
	g := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "payroll",
		Name:      "info",
		Help:      "Deployment settings of the running bot; always 1.",
		ConstLabels: prometheus.Labels{
			"environment": environment,
			"locale":      locale,
			"currency":    currency,
		},
	})
	g.Set(1)
	return g
}

type PrometheusController struct {
	path    string
	handler http.Handler
}

// NewPrometheusController serves the default registry at path after registering collectors on it.
// The payroll_* vectors register themselves through promauto.
func NewPrometheusController(path string, collectors ...prometheus.Collector) (application.Controller, error) {
	if path == "" {
		path = DefaultPath
	}
	for _, c := range collectors {
		if err := prometheus.Register(c); err != nil {
			var registered prometheus.AlreadyRegisteredError
			if !errors.As(err, &registered) {
				return nil, err
			}
		}
	}
	handler := promhttp.InstrumentMetricHandler(
		prometheus.DefaultRegisterer,
		promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{}),
	)
	return &PrometheusController{path: path, handler: handler}, nil
}

func (c *PrometheusController) Key() string {
	return c.path
}

func (c *PrometheusController) Register(r *mux.Router) {
	r.Handle(c.path, c.handler).Methods(http.MethodGet)
}
