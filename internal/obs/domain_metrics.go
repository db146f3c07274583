package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// SalesCommittedTotal counts committed sales by payment method.
	SalesCommittedTotal *prometheus.CounterVec
	// SaleAmount records the grand total of each committed sale.
	SaleAmount prometheus.Histogram
	// CartMutationsTotal counts cart operations by kind.
	CartMutationsTotal *prometheus.CounterVec
	// FinalizeRejectedTotal counts finalize attempts rejected before submission.
	FinalizeRejectedTotal *prometheus.CounterVec
	// ReceiptDispatchAttempts counts receipt dispatch attempts regardless of outcome.
	ReceiptDispatchAttempts prometheus.Counter
	// ReceiptDispatchFailures counts receipt dispatch attempts that errored.
	ReceiptDispatchFailures prometheus.Counter
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		SalesCommittedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_committed_total",
			Help:      "Count of committed sales by payment method.",
		}, []string{"method"})
		SaleAmount = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sale_total_amount",
			Help:      "Grand total of committed sales.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		})
		CartMutationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_mutations_total",
			Help:      "Count of cart operations by kind.",
		}, []string{"op"})
		FinalizeRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "finalize_rejected_total",
			Help:      "Count of finalize attempts rejected before submission.",
		}, []string{"reason"})
		ReceiptDispatchAttempts = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "receipt_dispatch_attempts_total",
			Help:      "Total number of receipt dispatch attempts.",
		})
		ReceiptDispatchFailures = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "receipt_dispatch_failures_total",
			Help:      "Number of receipt dispatch attempts that errored.",
		})

		mustRegisterCollector(reg, SalesCommittedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				SalesCommittedTotal = v
			}
		})
		mustRegisterCollector(reg, SaleAmount, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Histogram); ok {
				SaleAmount = v
			}
		})
		mustRegisterCollector(reg, CartMutationsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CartMutationsTotal = v
			}
		})
		mustRegisterCollector(reg, FinalizeRejectedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				FinalizeRejectedTotal = v
			}
		})
		mustRegisterCollector(reg, ReceiptDispatchAttempts, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				ReceiptDispatchAttempts = v
			}
		})
		mustRegisterCollector(reg, ReceiptDispatchFailures, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				ReceiptDispatchFailures = v
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
