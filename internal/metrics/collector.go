package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/san-kum/broadphase/internal/sim"
)

// Collector exports step statistics as prometheus series. It implements
// sim.Observer and owns its registry so several collectors can coexist in
// one process.
type Collector struct {
	registry *prometheus.Registry

	steps      prometheus.Counter
	candidates prometheus.Counter
	contacts   prometheus.Counter
	reinserts  prometheus.Counter
	proxies    prometheus.Gauge
	height     prometheus.Gauge
	moved      prometheus.Histogram
	duration   prometheus.Histogram
}

func NewCollector(scene string) *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	labels := prometheus.Labels{"scene": scene}

	return &Collector{
		registry: reg,
		steps: factory.NewCounter(prometheus.CounterOpts{
			Name:        "broadphase_steps_total",
			Help:        "Total number of simulation steps",
			ConstLabels: labels,
		}),
		candidates: factory.NewCounter(prometheus.CounterOpts{
			Name:        "broadphase_candidate_pairs_total",
			Help:        "Total number of candidate pairs reported",
			ConstLabels: labels,
		}),
		contacts: factory.NewCounter(prometheus.CounterOpts{
			Name:        "broadphase_contacts_total",
			Help:        "Total number of candidate pairs whose tight boxes overlap",
			ConstLabels: labels,
		}),
		reinserts: factory.NewCounter(prometheus.CounterOpts{
			Name:        "broadphase_reinserts_total",
			Help:        "Total number of proxies reinserted after leaving their fat box",
			ConstLabels: labels,
		}),
		proxies: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "broadphase_proxies",
			Help:        "Current number of proxies in the tree",
			ConstLabels: labels,
		}),
		height: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "broadphase_tree_height",
			Help:        "Current height of the dynamic tree",
			ConstLabels: labels,
		}),
		moved: factory.NewHistogram(prometheus.HistogramOpts{
			Name:        "broadphase_moved_proxies",
			Help:        "Proxies re-tested per step",
			Buckets:     prometheus.ExponentialBuckets(1, 4, 8),
			ConstLabels: labels,
		}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:        "broadphase_step_duration_seconds",
			Help:        "Wall time of one simulation step",
			Buckets:     prometheus.ExponentialBuckets(0.00001, 4, 10),
			ConstLabels: labels,
		}),
	}
}

func (c *Collector) OnStep(st sim.StepStats) {
	c.steps.Inc()
	c.candidates.Add(float64(st.Candidates))
	c.contacts.Add(float64(st.Contacts))
	c.reinserts.Add(float64(st.Reinserted))
	c.proxies.Set(float64(st.Proxies))
	c.height.Set(float64(st.Height))
	c.moved.Observe(float64(st.Moved))
	c.duration.Observe(st.Duration.Seconds())
}

func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler serves the collector's registry in the text exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
