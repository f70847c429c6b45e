package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareLabelsByRouteTemplate(t *testing.T) {
	m := New()

	r := mux.NewRouter()
	r.Use(m.Middleware)
	r.HandleFunc("/statements/statementId/{statementId}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b", "c"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/statements/statementId/"+id, nil))
		require.Equal(t, http.StatusNotFound, rr.Code)
	}

	count := testutil.ToFloat64(m.RequestsTotal.WithLabelValues(http.MethodGet, "/statements/statementId/{statementId}", "404"))
	assert.Equal(t, float64(3), count)
}

func TestMiddlewareLabelsFallbackHandlersUnmatched(t *testing.T) {
	m := New()

	r := mux.NewRouter()
	r.Use(m.Middleware)
	r.HandleFunc("/statements", func(http.ResponseWriter, *http.Request) {}).Methods(http.MethodGet)
	r.NotFoundHandler = m.Middleware(http.NotFoundHandler())
	r.MethodNotAllowedHandler = m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusMethodNotAllowed)
	}))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/statements", nil))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.RequestsTotal.WithLabelValues(http.MethodGet, "unmatched", "404")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RequestsTotal.WithLabelValues(http.MethodDelete, "unmatched", "405")))
}

func TestRecordCounters(t *testing.T) {
	m := New()

	m.RecordRegistration(ResultSuccess)
	m.RecordRegistration(ResultSuccess)
	m.RecordLogin(ResultFailure)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.RegistrationsTotal.WithLabelValues(ResultSuccess)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.LoginsTotal.WithLabelValues(ResultFailure)))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	m.RecordLogin(ResultSuccess)
	m.RecordRegistration(ResultFailure)

	called := false
	h := m.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, called)
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.RecordLogin(ResultSuccess)

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, string(body), "gripp_logins_total")
}
