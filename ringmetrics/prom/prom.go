// Package prom adapts ringmetrics.Metrics to Prometheus counters.
//
// Grounded on IvanBrykalov-shardcache/metrics/prom/prom.go.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/avijeet-zanskar/ring-buffer-exanic-like/ringmetrics"
)

// Adapter implements ringmetrics.Metrics and exports Prometheus counters.
// Safe for concurrent use; all Prometheus metric types are goroutine-safe.
type Adapter struct {
	pushed           prometheus.Counter
	readNew          prometheus.Counter
	readNoNew        prometheus.Counter
	lapped           prometheus.Counter
	lappedPrecaution prometheus.Counter
	catchup          prometheus.Counter
}

// New constructs a Prometheus metrics adapter.
//   - reg:         registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:      Prometheus namespace and subsystem
//   - constLabels:  static labels applied to all metrics (may be nil), typically {"ring": name}
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	counter := func(name, help string) prometheus.Counter {
		c := prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        name,
			Help:        help,
			ConstLabels: constLabels,
		})
		reg.MustRegister(c)
		return c
	}
	return &Adapter{
		pushed:           counter("pushed_total", "Records pushed by the producer"),
		readNew:          counter("read_new_total", "Pop calls that delivered an untorn record"),
		readNoNew:        counter("read_no_new_total", "Pop calls that found nothing new"),
		lapped:           counter("lapped_total", "Pop calls that detected the consumer fell behind a wrap"),
		lappedPrecaution: counter("lapped_precaution_total", "Pop calls that delivered a possibly torn record"),
		catchup:          counter("catchup_total", "Catchup invocations"),
	}
}

func (a *Adapter) Pushed()           { a.pushed.Inc() }
func (a *Adapter) ReadNew()          { a.readNew.Inc() }
func (a *Adapter) ReadNoNew()        { a.readNoNew.Inc() }
func (a *Adapter) Lapped()           { a.lapped.Inc() }
func (a *Adapter) LappedPrecaution() { a.lappedPrecaution.Inc() }
func (a *Adapter) Catchup()          { a.catchup.Inc() }

var _ ringmetrics.Metrics = (*Adapter)(nil)
