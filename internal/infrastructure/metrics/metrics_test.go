package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Recorder_ExposesCounters(t *testing.T) {
	t.Parallel()
	rec := New()
	rec.RefreshCycle("ok", 3)
	rec.SourceFailure("coingecko")
	rec.LedgerOp("BUY", "ok")

	w := httptest.NewRecorder()
	rec.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	require.Contains(t, body, `rates_refresh_cycles_total{status="ok"} 1`)
	require.Contains(t, body, `rates_refreshed_pairs_total 3`)
	require.Contains(t, body, `rates_source_failures_total{source="coingecko"} 1`)
	require.Contains(t, body, `ledger_operations_total{op="BUY",outcome="ok"} 1`)
}
