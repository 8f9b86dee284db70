package httpserver_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fardannozami/faccao-bot/internal/infra/httpserver"
	"github.com/fardannozami/faccao-bot/internal/metrics"
)

func TestRouter(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := metrics.NewCollector()
	registry.MustRegister(m)
	m.DepositAccepted(400)
	m.JobRun("report_reset", "no_destination")

	srv := httptest.NewServer(httpserver.NewRouter(registry))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "✅ Bot Facção ativo e online!", string(body))

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), "faccao_deposits_accepted_total 1")
	assert.Contains(t, string(body), "faccao_quantity_deposited_total 400")
	assert.Contains(t, string(body), `faccao_weekly_job_runs_total{job="report_reset",outcome="no_destination"} 1`)

	resp, err = http.Post(srv.URL+"/", "text/plain", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
