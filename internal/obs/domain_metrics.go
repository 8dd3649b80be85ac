package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// ResiBatchesTotal counts batch registrations by outcome.
	ResiBatchesTotal *prometheus.CounterVec
	// ResiLinesWritten counts return lines persisted by batches and direct creation.
	ResiLinesWritten prometheus.Counter
	// ResiResolutionMiss counts customer and product codes missing from the reference data.
	ResiResolutionMiss *prometheus.CounterVec
	// ResiRateMiss counts tariff ids without a unit rate.
	ResiRateMiss prometheus.Counter
	// ResiReferenceAmbiguity counts lookups that saw conflicting reference rows.
	ResiReferenceAmbiguity *prometheus.CounterVec
	// ResiUpdatesTotal counts single-record updates by outcome.
	ResiUpdatesTotal *prometheus.CounterVec
	// ResiBatchLines records the number of lines per submitted batch.
	ResiBatchLines prometheus.Histogram
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		ResiBatchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resi_batches_total",
			Help:      "Count of return batch registrations by outcome.",
		}, []string{"result"})
		ResiLinesWritten = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resi_lines_written_total",
			Help:      "Number of return lines persisted.",
		})
		ResiResolutionMiss = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resi_resolution_miss_total",
			Help:      "Count of customer or product codes not found in shipment history.",
		}, []string{"kind"})
		ResiRateMiss = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resi_rate_miss_total",
			Help:      "Count of tariff ids without a unit rate.",
		})
		ResiReferenceAmbiguity = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resi_reference_ambiguity_total",
			Help:      "Count of lookups that found conflicting reference rows and kept the first.",
		}, []string{"kind"})
		ResiUpdatesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resi_updates_total",
			Help:      "Count of single return line updates by outcome.",
		}, []string{"result"})
		ResiBatchLines = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "resi_batch_lines",
			Help:      "Number of lines per submitted batch.",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250},
		})

		mustRegisterCollector(reg, ResiBatchesTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				ResiBatchesTotal = v
			}
		})
		mustRegisterCollector(reg, ResiLinesWritten, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				ResiLinesWritten = v
			}
		})
		mustRegisterCollector(reg, ResiResolutionMiss, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				ResiResolutionMiss = v
			}
		})
		mustRegisterCollector(reg, ResiRateMiss, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				ResiRateMiss = v
			}
		})
		mustRegisterCollector(reg, ResiReferenceAmbiguity, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				ResiReferenceAmbiguity = v
			}
		})
		mustRegisterCollector(reg, ResiUpdatesTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				ResiUpdatesTotal = v
			}
		})
		mustRegisterCollector(reg, ResiBatchLines, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Histogram); ok {
				ResiBatchLines = v
			}
		})
	})
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
