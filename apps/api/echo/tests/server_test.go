package tests

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_server_home(t *testing.T) {
	app := setup(t)

	req, rec := newRequest(http.MethodGet, "/")
	app.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to ACE ERP API!", rec.Body.String())
}

func Test_server_health(t *testing.T) {
	app := setup(t)

	tt := httpTest{
		wantCode: http.StatusOK,
		wantData: []byte(`{"status": "UP"}`),
	}
	req, rec := newRequest(http.MethodGet, "/health")
	app.server.ServeHTTP(rec, req)
	checkCodeAndData(t, tt, rec)
}

func Test_server_metrics(t *testing.T) {
	app := setup(t)

	// drive a request through the middleware then scrape
	req, rec := newRequest(http.MethodGet, "/health")
	app.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req, rec = newRequest(http.MethodGet, "/metrics")
	app.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "acerp_http_requests_total"))
}

func Test_server_trailingSlash(t *testing.T) {
	app := setup(t)

	req, rec := newRequest(http.MethodGet, "/health/")
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
