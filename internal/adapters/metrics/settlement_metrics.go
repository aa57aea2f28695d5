package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// SettlementMetricsCollector handles tax and invoice metrics
type SettlementMetricsCollector struct {
	taxAssessed    prometheus.Counter
	lateFees       prometheus.Counter
	lateFeesTotal  prometheus.Counter
	taxPaid        prometheus.Counter
	outstandingTax prometheus.Gauge
	overdueRecords prometheus.Gauge
	invoicesIssued *prometheus.CounterVec
	invoicesPaid   *prometheus.CounterVec
	invoiceAmount  *prometheus.HistogramVec
}

// NewSettlementMetricsCollector creates a new settlement metrics collector
func NewSettlementMetricsCollector() *SettlementMetricsCollector {
	return &SettlementMetricsCollector{
		taxAssessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "tax_assessed_amount_total",
			Help:      "Sum of all assessed tax charges",
		}),

		lateFees: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "late_fee_amount_total",
			Help:      "Sum of all late fees charged",
		}),

		lateFeesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "late_fees_total",
			Help:      "Number of late fees charged",
		}),

		taxPaid: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "tax_paid_amount_total",
			Help:      "Sum of all tax payments",
		}),

		outstandingTax: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "tax_outstanding_amount",
			Help:      "Unpaid tax across all records at the last overdue check",
		}),

		overdueRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "tax_overdue_records",
			Help:      "Overdue tax records at the last overdue check",
		}),

		invoicesIssued: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "invoices_issued_total",
				Help:      "Invoices generated by type",
			},
			[]string{"type"},
		),

		invoicesPaid: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "invoices_paid_total",
				Help:      "Invoices paid by type",
			},
			[]string{"type"},
		),

		invoiceAmount: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "invoice_amount",
				Help:      "Invoice amount distribution",
				Buckets:   []float64{10, 50, 100, 500, 1000, 5000, 10000, 50000},
			},
			[]string{"type"},
		),
	}
}

// Register registers all settlement metrics with the Prometheus registry
func (c *SettlementMetricsCollector) Register() error {
	if Registry == nil {
		return nil // Metrics not enabled
	}

	metrics := []prometheus.Collector{
		c.taxAssessed,
		c.lateFees,
		c.lateFeesTotal,
		c.taxPaid,
		c.outstandingTax,
		c.overdueRecords,
		c.invoicesIssued,
		c.invoicesPaid,
		c.invoiceAmount,
	}

	for _, metric := range metrics {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}

	return nil
}

func (c *SettlementMetricsCollector) RecordTaxAssessed(amount float64) {
	c.taxAssessed.Add(amount)
}

func (c *SettlementMetricsCollector) RecordLateFee(amount float64) {
	c.lateFeesTotal.Inc()
	c.lateFees.Add(amount)
}

func (c *SettlementMetricsCollector) RecordTaxPaid(amount float64) {
	c.taxPaid.Add(amount)
}

func (c *SettlementMetricsCollector) RecordOutstandingTax(total float64, overdueRecords int) {
	c.outstandingTax.Set(total)
	c.overdueRecords.Set(float64(overdueRecords))
}

func (c *SettlementMetricsCollector) RecordInvoiceIssued(invoiceType string, amount float64) {
	c.invoicesIssued.WithLabelValues(invoiceType).Inc()
	c.invoiceAmount.WithLabelValues(invoiceType).Observe(amount)
}

func (c *SettlementMetricsCollector) RecordInvoicePaid(invoiceType string, amount float64) {
	c.invoicesPaid.WithLabelValues(invoiceType).Inc()
}
