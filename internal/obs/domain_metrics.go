package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// DocumentComputeTotal counts document totals computations by outcome.
	DocumentComputeTotal *prometheus.CounterVec
	// PaymentAllocationTotal counts payment allocation runs by outcome.
	PaymentAllocationTotal *prometheus.CounterVec
	// PaymentAllocationDocs records how many documents a payment settled against.
	PaymentAllocationDocs prometheus.Histogram
	// PaymentRemainingCredit counts payments that left unapplied credit.
	PaymentRemainingCredit prometheus.Counter
	// TaxPreviewTotal counts ad-hoc calculator requests by kind.
	TaxPreviewTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		DocumentComputeTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "document_compute_total",
			Help:      "Count of document totals computations by outcome.",
		}, []string{"operation", "result"})
		PaymentAllocationTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_allocation_total",
			Help:      "Count of payment allocation runs by outcome.",
		}, []string{"result"})
		PaymentAllocationDocs = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "payment_allocation_documents",
			Help:      "Number of documents settled per payment allocation.",
			Buckets:   []float64{0, 1, 2, 3, 5, 10, 25, 50},
		})
		PaymentRemainingCredit = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_remaining_credit_total",
			Help:      "Count of payments that exceeded the customer's outstanding balance.",
		})
		TaxPreviewTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tax_preview_total",
			Help:      "Count of ad-hoc tax and discount preview requests.",
		}, []string{"kind"})

		registerCollector(reg, DocumentComputeTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				DocumentComputeTotal = v
			}
		})
		registerCollector(reg, PaymentAllocationTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				PaymentAllocationTotal = v
			}
		})
		registerCollector(reg, PaymentAllocationDocs, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Histogram); ok {
				PaymentAllocationDocs = v
			}
		})
		registerCollector(reg, PaymentRemainingCredit, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				PaymentRemainingCredit = v
			}
		})
		registerCollector(reg, TaxPreviewTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				TaxPreviewTotal = v
			}
		})
	})
}
