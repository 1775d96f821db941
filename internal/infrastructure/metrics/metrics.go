package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Caisse-api/internal/application/ports"
)

var _ ports.Metrics = (*Metrics)(nil)

const namespace = "caisse"

// Metrics métricas Prometheus de negocio y HTTP en un registro propio.
type Metrics struct {
	registry *prometheus.Registry

	movements         *prometheus.CounterVec
	stockRejected     prometheus.Counter
	sales             *prometheus.CounterVec
	salesAmount       *prometheus.CounterVec
	salesCancelled    prometheus.Counter
	sessionTransition *prometheus.CounterVec
	sessionVariance   prometheus.Histogram
	accountAdjusted   prometheus.Counter

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New crea las métricas y las registra junto a las del runtime de Go y del proceso.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: registry,
		movements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_movements_total",
			Help:      "Movimientos de stock confirmados por tipo",
		}, []string{"kind"}),
		stockRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_rejections_total",
			Help:      "Operaciones rechazadas por stock insuficiente",
		}),
		sales: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sale_transactions_total",
			Help:      "Transacciones de caja registradas por modo de pago",
		}, []string{"payment_kind"}),
		salesAmount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sale_amount_total",
			Help:      "Importe acumulado de ventas por modo de pago",
		}, []string{"payment_kind"}),
		salesCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sale_cancellations_total",
			Help:      "Ventas anuladas",
		}),
		sessionTransition: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cash_session_transitions_total",
			Help:      "Transiciones de sesiones de caja por estado destino",
		}, []string{"status"}),
		sessionVariance: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cash_session_variance",
			Help:      "Diferencia declarado - esperado al cierre",
			Buckets:   []float64{-50, -10, -5, -1, -0.01, 0, 0.01, 1, 5, 10, 50},
		}),
		accountAdjusted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "account_adjustments_total",
			Help:      "Ajustes manuales de saldo de socios",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Peticiones HTTP por método, ruta y estado",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duración de las peticiones HTTP",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"method", "path"}),
	}
	registry.MustRegister(
		m.movements, m.stockRejected, m.sales, m.salesAmount, m.salesCancelled,
		m.sessionTransition, m.sessionVariance, m.accountAdjusted, m.httpRequests, m.httpDuration,
	)
	return m
}

// Handler expone el registro en formato de texto de Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry devuelve el registro (tests y colectores adicionales).
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) MovementApplied(kind string) { m.movements.WithLabelValues(kind).Inc() }

// StockRejected no etiqueta por producto para no disparar la cardinalidad.
func (m *Metrics) StockRejected(string) { m.stockRejected.Inc() }

func (m *Metrics) SaleRecorded(paymentKind string, total decimal.Decimal) {
	m.sales.WithLabelValues(paymentKind).Inc()
	if total.IsPositive() {
		m.salesAmount.WithLabelValues(paymentKind).Add(total.InexactFloat64())
	}
}

func (m *Metrics) SaleCancelled()                  { m.salesCancelled.Inc() }
func (m *Metrics) SessionTransition(status string) { m.sessionTransition.WithLabelValues(status).Inc() }
func (m *Metrics) SessionVariance(v decimal.Decimal) {
	m.sessionVariance.Observe(v.InexactFloat64())
}
func (m *Metrics) AccountAdjusted() { m.accountAdjusted.Inc() }

// RecordHTTPRequest registra una petición atendida; path es la ruta declarada, no la URL.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	m.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
