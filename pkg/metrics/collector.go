// Package metrics exposes the Prometheus instruments recorded by the dispatch engine.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventsDispatchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_events_dispatched_total",
			Help: "Total number of inbound events dispatched labeled by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)
	dispatchDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bot_dispatch_duration_seconds",
			Help:    "Duration of a dispatch excluding the settle delay",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)
	moduleFaultsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_module_faults_total",
			Help: "Total number of faults raised by modules labeled by module and event kind",
		},
		[]string{"module", "kind"},
	)
	botCommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_commands_total",
			Help: "Total number of bot commands executed labeled by command and status",
		},
		[]string{"command", "status"},
	)
	commandDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "command_duration_seconds",
			Help:    "Duration of bot commands in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"command"},
	)
	errorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors split by type and severity",
		},
		[]string{"type", "severity"},
	)
	continuationEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bot_continuation_entries",
			Help: "Current number of pending continuation entries",
		},
	)
)

// RecordDispatch counts a finished dispatch and observes its duration.
func RecordDispatch(kind, outcome string, duration time.Duration) {
	kind = orUnknown(kind)
	eventsDispatchedTotal.WithLabelValues(kind, orUnknown(outcome)).Inc()
	dispatchDurationSeconds.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordModuleFault counts a fault raised by module while handling kind.
func RecordModuleFault(module, kind string) {
	moduleFaultsTotal.WithLabelValues(orUnknown(module), orUnknown(kind)).Inc()
}

// RecordCommand increments command counters and records duration.
func RecordCommand(command, status string, duration time.Duration) {
	command = orUnknown(command)
	botCommandsTotal.WithLabelValues(command, orUnknown(status)).Inc()
	commandDurationSeconds.WithLabelValues(command).Observe(duration.Seconds())
}

// RecordError increments error counters with metadata.
func RecordError(errType, severity string) {
	errorsTotal.WithLabelValues(orUnknown(errType), orUnknown(severity)).Inc()
}

// SetContinuationEntries updates the pending continuation gauge.
func SetContinuationEntries(count int) {
	continuationEntries.Set(float64(count))
}

// Sizer reports the current number of entries in a table.
type Sizer interface {
	Len() int
}

// TableCollector periodically samples a continuation table into the gauge.
type TableCollector struct {
	table    Sizer
	interval time.Duration
}

// NewTableCollector builds a collector bound to table. A non-positive interval defaults to 10s.
func NewTableCollector(table Sizer, interval time.Duration) *TableCollector {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &TableCollector{table: table, interval: interval}
}

// Run samples the table until ctx is cancelled.
func (c *TableCollector) Run(ctx context.Context) {
	if c == nil || c.table == nil {
		return
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		SetContinuationEntries(c.table.Len())

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func orUnknown(label string) string {
	if label == "" {
		return "unknown"
	}
	return label
}
