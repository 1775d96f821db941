package metrics_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Caisse-api/internal/infrastructure/metrics"
)

func TestMetrics_ExponeContadoresDeNegocio(t *testing.T) {
	m := metrics.New()
	m.MovementApplied("out")
	m.MovementApplied("out")
	m.StockRejected("p-1")
	m.SaleRecorded("cash", decimal.RequireFromString("23.50"))
	m.SaleRecorded("change", decimal.Zero)
	m.SessionTransition("open")
	m.SessionVariance(decimal.RequireFromString("-3.50"))
	m.RecordHTTPRequest("POST", "/api/sales", 201, 15*time.Millisecond)

	n, err := testutil.GatherAndCount(m.Registry(), "caisse_stock_movements_total", "caisse_sale_transactions_total")
	require.NoError(t, err)
	assert.Equal(t, 3, n, "una serie de movimientos y dos de ventas")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()
	assert.Contains(t, body, `caisse_stock_movements_total{kind="out"} 2`)
	assert.Contains(t, body, `caisse_sale_amount_total{payment_kind="cash"} 23.5`)
	assert.Contains(t, body, `caisse_http_requests_total{method="POST",path="/api/sales",status="201"} 1`)
	assert.Contains(t, body, "caisse_cash_session_variance_count 1")
}
