package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// Namespace for all metrics
	namespace = "factory_economy"
	// Subsystem for engine metrics
	subsystem = "engine"
)

var (
	// Registry is the global Prometheus registry for all metrics
	Registry *prometheus.Registry

	// globalEngineCollector is the singleton tick/production metrics collector
	// Set by SetGlobalEngineCollector() when metrics are enabled
	globalEngineCollector EngineMetricsRecorder

	// globalSettlementCollector is the singleton tax/invoice metrics collector
	// Set by SetGlobalSettlementCollector() when metrics are enabled
	globalSettlementCollector SettlementMetricsRecorder
)

// EngineMetricsRecorder records scheduler and state machine events
type EngineMetricsRecorder interface {
	RecordTick(durationSeconds float64)
	RecordPass(pass string, durationSeconds float64, success bool)
	RecordProductionCompleted(factoryType, recipeID string)
	RecordUpgradeCompleted(level int)
	RecordHeal(entity string)
	RecordFlush(success bool, records int)
}

// SettlementMetricsRecorder records liabilities and payments
type SettlementMetricsRecorder interface {
	RecordTaxAssessed(amount float64)
	RecordLateFee(amount float64)
	RecordTaxPaid(amount float64)
	RecordOutstandingTax(total float64, overdueRecords int)
	RecordInvoiceIssued(invoiceType string, amount float64)
	RecordInvoicePaid(invoiceType string, amount float64)
}

// InitRegistry initializes the Prometheus registry
// Should be called once at application startup if metrics are enabled
func InitRegistry() {
	Registry = prometheus.NewRegistry()
}

// GetRegistry returns the global Prometheus registry
// Returns nil if metrics are not initialized
func GetRegistry() *prometheus.Registry {
	return Registry
}

// IsEnabled returns true if metrics collection is enabled
func IsEnabled() bool {
	return Registry != nil
}

// SetGlobalEngineCollector sets the global engine metrics collector
func SetGlobalEngineCollector(collector EngineMetricsRecorder) {
	globalEngineCollector = collector
}

// SetGlobalSettlementCollector sets the global settlement metrics collector
func SetGlobalSettlementCollector(collector SettlementMetricsRecorder) {
	globalSettlementCollector = collector
}

// RecordTick records one scheduler tick globally
func RecordTick(durationSeconds float64) {
	if globalEngineCollector != nil {
		globalEngineCollector.RecordTick(durationSeconds)
	}
}

// RecordPass records a periodic pass (tax assessment, overdue check, salary run)
func RecordPass(pass string, durationSeconds float64, success bool) {
	if globalEngineCollector != nil {
		globalEngineCollector.RecordPass(pass, durationSeconds, success)
	}
}

// RecordProductionCompleted records a finished production task
func RecordProductionCompleted(factoryType, recipeID string) {
	if globalEngineCollector != nil {
		globalEngineCollector.RecordProductionCompleted(factoryType, recipeID)
	}
}

// RecordUpgradeCompleted records a level-up
func RecordUpgradeCompleted(level int) {
	if globalEngineCollector != nil {
		globalEngineCollector.RecordUpgradeCompleted(level)
	}
}

// RecordHeal records a self-healed inconsistency
func RecordHeal(entity string) {
	if globalEngineCollector != nil {
		globalEngineCollector.RecordHeal(entity)
	}
}

// RecordFlush records a snapshot flush attempt
func RecordFlush(success bool, records int) {
	if globalEngineCollector != nil {
		globalEngineCollector.RecordFlush(success, records)
	}
}

// RecordTaxAssessed records one assessed charge
func RecordTaxAssessed(amount float64) {
	if globalSettlementCollector != nil {
		globalSettlementCollector.RecordTaxAssessed(amount)
	}
}

// RecordLateFee records a late fee
func RecordLateFee(amount float64) {
	if globalSettlementCollector != nil {
		globalSettlementCollector.RecordLateFee(amount)
	}
}

// RecordTaxPaid records a tax payment
func RecordTaxPaid(amount float64) {
	if globalSettlementCollector != nil {
		globalSettlementCollector.RecordTaxPaid(amount)
	}
}

// RecordOutstandingTax records the total unpaid tax after an overdue check
func RecordOutstandingTax(total float64, overdueRecords int) {
	if globalSettlementCollector != nil {
		globalSettlementCollector.RecordOutstandingTax(total, overdueRecords)
	}
}

// RecordInvoiceIssued records a generated invoice
func RecordInvoiceIssued(invoiceType string, amount float64) {
	if globalSettlementCollector != nil {
		globalSettlementCollector.RecordInvoiceIssued(invoiceType, amount)
	}
}

// RecordInvoicePaid records a paid invoice
func RecordInvoicePaid(invoiceType string, amount float64) {
	if globalSettlementCollector != nil {
		globalSettlementCollector.RecordInvoicePaid(invoiceType, amount)
	}
}
