/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package monitor exposes Prometheus gauges over the pool/eventloop/module
// health a running worker already tracks in plain ints (pgpool.Pool.
// QueueSize/ConnectionCount, eventloop.Loop.WatchedFDs, module.Manager.Len)
// plus a heartbeat-latency histogram. It never touches those packages'
// internals directly; a Collector only Observes values handed to it, so it
// carries no dependency on how any of them is implemented.
package monitor

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector owns one Registry and the gauges/histogram registered to it.
// Nil-safe: a *Collector obtained from NewCollector is always usable, and
// every Observe* method accepts a nil source, in which case it returns
// without touching the gauge (every gauge starts at zero).
type Collector struct {
	registry *prometheus.Registry

	poolQueueDepth   prometheus.Gauge
	poolConnections  prometheus.Gauge
	loopWatchedFDs   prometheus.Gauge
	moduleCount      prometheus.Gauge
	heartbeatLatency prometheus.Histogram
}

// NewCollector builds a Collector with its own Registry (not the global
// DefaultRegisterer) under the given namespace, e.g. "apostol", so every
// metric name is "apostol_pool_queue_depth" etc.
func NewCollector(namespace string) *Collector {
	c := &Collector{registry: prometheus.NewRegistry()}

	c.poolQueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "pool",
		Name:      "queue_depth",
		Help:      "Number of queries waiting for a free pgpool connection slot.",
	})
	c.poolConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "pool",
		Name:      "connections",
		Help:      "Number of pgpool query connection slots, listener excluded.",
	})
	c.loopWatchedFDs = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "eventloop",
		Name:      "watched_fds",
		Help:      "Number of file descriptors currently registered with the event loop.",
	})
	c.moduleCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "module",
		Name:      "registered",
		Help:      "Number of modules registered in the dispatch fabric.",
	})
	c.heartbeatLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "worker",
		Name:      "heartbeat_seconds",
		Help:      "Wall-clock time spent running one Heartbeat tick across all modules.",
		Buckets:   prometheus.DefBuckets,
	})

	c.registry.MustRegister(
		c.poolQueueDepth,
		c.poolConnections,
		c.loopWatchedFDs,
		c.moduleCount,
		c.heartbeatLatency,
	)
	return c
}

// poolStats is the read-only subset pgpool.Pool already exposes
// (QueueSize/ConnectionCount); Collector depends on this shape instead of
// *pgpool.Pool so its tests can drive it with a fake and so monitor never
// needs to import pgpool.
type poolStats interface {
	QueueSize() int
	ConnectionCount() int
}

// loopStats is the subset eventloop.Loop exposes for introspection.
type loopStats interface {
	WatchedFDs() int
}

// moduleStats is the subset module.Manager exposes for introspection.
type moduleStats interface {
	Len() int
}

// ObservePool samples a pool's current queue depth and connection count.
func (c *Collector) ObservePool(p poolStats) {
	if p == nil {
		return
	}
	c.poolQueueDepth.Set(float64(p.QueueSize()))
	c.poolConnections.Set(float64(p.ConnectionCount()))
}

// ObserveLoop samples the event loop's currently watched fd count.
func (c *Collector) ObserveLoop(l loopStats) {
	if l == nil {
		return
	}
	c.loopWatchedFDs.Set(float64(l.WatchedFDs()))
}

// ObserveModules samples the dispatch fabric's registered module count.
func (c *Collector) ObserveModules(m moduleStats) {
	if m == nil {
		return
	}
	c.moduleCount.Set(float64(m.Len()))
}

// ObserveHeartbeat records how long one Heartbeat tick took.
func (c *Collector) ObserveHeartbeat(d time.Duration) {
	c.heartbeatLatency.Observe(d.Seconds())
}

// Registry returns the Collector's Registry for Handler or direct Gather.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }
