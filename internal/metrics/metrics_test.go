package metrics_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/videotube-server/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestAuthEvent(t *testing.T) {
	m := metrics.New()
	m.AuthEvent("login", nil)
	m.AuthEvent("login", nil)
	m.AuthEvent("login", errors.New("bad password"))

	require.Equal(t, 2.0, testutil.ToFloat64(m.AuthEvents.WithLabelValues("login", "success")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.AuthEvents.WithLabelValues("login", "failure")))
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := metrics.New()
	m.RequestCount.WithLabelValues("GET", "/healthz", "200").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `http_requests_total{method="GET",path="/healthz",status="200"} 1`)
}
