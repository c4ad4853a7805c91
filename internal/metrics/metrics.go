// Package metrics exposes Prometheus collectors for the draw.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"prizedraw/internal/models"
)

// Collector groups the draw metrics on a private registry.
type Collector struct {
	registry *prometheus.Registry

	drawsCompleted prometheus.Counter
	drawsCancelled prometheus.Counter
	winnersDrawn   *prometheus.CounterVec
	unfilledSlots  prometheus.Counter
	poolSize       prometheus.Gauge
	prizes         prometheus.Gauge
}

// NewCollector creates and registers the draw collectors under namespace.
func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = "lottery"
	}

	c := &Collector{registry: prometheus.NewRegistry()}
	c.drawsCompleted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "draws_completed_total",
		Help:      "Number of draws that ran to completion.",
	})
	c.drawsCancelled = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "draws_cancelled_total",
		Help:      "Number of countdowns cancelled before the draw.",
	})
	c.winnersDrawn = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "winners_drawn_total",
		Help:      "Participants drawn, by status (main or backup).",
	}, []string{"status"})
	c.unfilledSlots = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "unfilled_slots_total",
		Help:      "Prize slots left empty because the pool ran out.",
	})
	c.poolSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "pool_size",
		Help:      "Participants currently loaded.",
	})
	c.prizes = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "prizes",
		Help:      "Prizes currently registered.",
	})

	c.registry.MustRegister(
		c.drawsCompleted,
		c.drawsCancelled,
		c.winnersDrawn,
		c.unfilledSlots,
		c.poolSize,
		c.prizes,
	)
	return c
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collected metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// RecordDraw counts a completed draw and its winners.
func (c *Collector) RecordDraw(winners []models.Winner, fills []models.PrizeFill) {
	c.drawsCompleted.Inc()
	for _, w := range winners {
		if w.IsBackup {
			c.winnersDrawn.WithLabelValues("backup").Inc()
		} else {
			c.winnersDrawn.WithLabelValues("main").Inc()
		}
	}
	for _, f := range fills {
		c.unfilledSlots.Add(float64(f.Unfilled()))
	}
}

// RecordCancel counts a cancelled countdown.
func (c *Collector) RecordCancel() {
	c.drawsCancelled.Inc()
}

// SetInventory records the current pool and registry sizes.
func (c *Collector) SetInventory(poolSize, prizes int) {
	c.poolSize.Set(float64(poolSize))
	c.prizes.Set(float64(prizes))
}
