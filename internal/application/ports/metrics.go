package ports

import "github.com/shopspring/decimal"

// Metrics contadores de negocio que emiten los servicios del núcleo.
type Metrics interface {
	MovementApplied(kind string)
	StockRejected(productID string)
	SaleRecorded(paymentKind string, total decimal.Decimal)
	SaleCancelled()
	SessionTransition(status string)
	SessionVariance(variance decimal.Decimal)
	AccountAdjusted()
}

// NopMetrics implementación vacía para tests y herramientas de línea de comandos.
type NopMetrics struct{}

func (NopMetrics) MovementApplied(string)               {}
func (NopMetrics) StockRejected(string)                 {}
func (NopMetrics) SaleRecorded(string, decimal.Decimal) {}
func (NopMetrics) SaleCancelled()                       {}
func (NopMetrics) SessionTransition(string)             {}
func (NopMetrics) SessionVariance(decimal.Decimal)      {}
func (NopMetrics) AccountAdjusted()                     {}
