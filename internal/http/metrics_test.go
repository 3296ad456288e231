package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveDecision("allow", "allowed")
		m.ObserveLogin("password", "success")
	})
	next := http.NotFoundHandler()
	assert.NotNil(t, m.Instrument(next))
}

func TestMetrics_InstrumentUsesRoutePattern(t *testing.T) {
	f := newFixture(t)

	f.do(withCredential(httptest.NewRequest(http.MethodGet, "/hotel/dashboard/42", nil), "abc", "hotel", "42"))
	f.do(withCredential(httptest.NewRequest(http.MethodGet, "/hotel/dashboard/43", nil), "abc", "hotel", "43"))
	f.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))

	out := scrape(t, f.metrics)
	assert.Contains(t, out, `hotelweb_http_requests_total{method="GET",route="GET /hotel/dashboard/{hotelID}",status="200"} 2`)
	assert.Contains(t, out, `hotelweb_http_requests_total{method="GET",route="GET /healthz",status="200"} 1`)
	assert.Contains(t, out, `hotelweb_gateway_decisions_total{outcome="allow",reason="allowed"} 2`)
	assert.NotContains(t, out, `/hotel/dashboard/42"`)
}

func TestMetrics_LoginCounter(t *testing.T) {
	f := newFixture(t)
	f.do(formRequest("/login", loginForm("guest@example.com", "secret123")))
	f.do(formRequest("/login", loginForm("guest@example.com", "wrong")))

	out := scrape(t, f.metrics)
	assert.Contains(t, out, `hotelweb_auth_logins_total{flow="password",result="success"} 1`)
	assert.Contains(t, out, `hotelweb_auth_logins_total{flow="password",result="invalid"} 1`)
}

func TestRouter_ServesMetricsEndpoint(t *testing.T) {
	f := newFixture(t)
	rec := f.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "hotelweb_http_in_flight_requests")
}
