package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gripp-game/gripp-api/internal/api"
	"github.com/gripp-game/gripp-api/internal/api/apierr"
	"github.com/gripp-game/gripp-api/internal/api/response"
	"github.com/gripp-game/gripp-api/internal/factory"
	"github.com/gripp-game/gripp-api/internal/middleware"
	"github.com/gripp-game/gripp-api/internal/services/auth"
	"github.com/gripp-game/gripp-api/internal/storage"
	"github.com/gripp-game/gripp-api/internal/testutil"
)

// testServer creates a test server with all dependencies
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithConfig(t, auth.DefaultConfig())
}

func newTestServerWithConfig(t *testing.T, authCfg auth.Config) *testServer {
	t.Helper()

	app := factory.NewTestAppWithConfig(authCfg)
	require.NoError(t, app.LoadTestStatements())

	return &testServer{
		handler: app.Router(middleware.DefaultCORSConfig()),
		app:     app,
	}
}

func (ts *testServer) request(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

// envelope mirrors the success envelope with a typed payload
type envelope[T any] struct {
	Success  bool `json:"success"`
	Response T    `json:"response"`
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	require.True(t, env.Success, rr.Body.String())
	return env.Response
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) apierr.APIError {
	t.Helper()
	var resp apierr.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp), rr.Body.String())
	require.False(t, resp.Success)
	return resp.Error
}

func (ts *testServer) register(t *testing.T, username, password string) response.Account {
	t.Helper()
	rr := ts.request(http.MethodPost, "/register", map[string]string{"username": username, "password": password}, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[response.Account](t, rr)
}

func TestHelp(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	help := decode[response.Help](t, rr)
	assert.Equal(t, api.Routes, help.Routes)
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", decode[response.Health](t, rr).Status)
}

func TestHealthCheckStoreDown(t *testing.T) {
	app := factory.NewTestApp()
	handler := api.NewRouter(api.RouterConfig{
		Logger:           testutil.NopLogger(),
		AuthService:      app.AuthService,
		StatementService: app.StatementService,
		Pinger:           downPinger{},
	})

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, apierr.CodeStoreUnavailable, decodeError(t, rr).Code)
}

func TestRegisterThenProfile(t *testing.T) {
	ts := newTestServer(t)

	account := ts.register(t, "alice1", "longenough1")
	assert.Len(t, account.AccessToken, 256)
	assert.NotEmpty(t, account.ID)

	rr := ts.request(http.MethodGet, "/profile", nil, account.AccessToken)
	require.Equal(t, http.StatusOK, rr.Code)

	profile := decode[response.Profile](t, rr)
	assert.Equal(t, "alice1", profile.Username)
	assert.True(t, account.CreatedAt.Equal(profile.CreatedAt))
}

func TestRegisterResponseOmitsPasswordHash(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/register", map[string]string{"username": "alice1", "password": "longenough1"}, "")
	require.Equal(t, http.StatusCreated, rr.Code)

	body := rr.Body.String()
	assert.NotContains(t, body, "longenough1")
	assert.NotContains(t, body, "$2a$")
	assert.NotContains(t, strings.ToLower(body), "hash")
}

func TestProfileBodyOmitsSecrets(t *testing.T) {
	ts := newTestServer(t)
	account := ts.register(t, "alice1", "longenough1")

	rr := ts.request(http.MethodGet, "/profile", nil, "Bearer "+account.AccessToken)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), account.AccessToken)
	assert.NotContains(t, rr.Body.String(), "accessToken")
}

func TestRegisterValidationErrors(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "alice1", "longenough1")

	tests := []struct {
		name string
		body any
		code string
	}{
		{"weak password", map[string]string{"username": "bobby1", "password": "short"}, apierr.CodeWeakPassword},
		{"password over 72 bytes", map[string]string{"username": "bobby1", "password": strings.Repeat("p", 73)}, apierr.CodeWeakPassword},
		{"100 byte password", map[string]string{"username": "bobby1", "password": strings.Repeat("p", 100)}, apierr.CodeWeakPassword},
		{"short username", map[string]string{"username": "bob", "password": "longenough1"}, apierr.CodeInvalidUsername},
		{"duplicate username", map[string]string{"username": "alice1", "password": "longenough1"}, apierr.CodeDuplicateUsername},
		{"malformed body", "not an object", apierr.CodeInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.request(http.MethodPost, "/register", tt.body, "")
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, tt.code, decodeError(t, rr).Code)
		})
	}
}

func TestRegisterPasswordLengthLimit(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/register", map[string]string{"username": "alice1", "password": strings.Repeat("p", 72)}, "")
	assert.Equal(t, http.StatusCreated, rr.Code)

	rr = ts.request(http.MethodPost, "/register", map[string]string{"username": "bobby1", "password": strings.Repeat("p", 100)}, "")
	require.Equal(t, http.StatusBadRequest, rr.Code)
	apiErr := decodeError(t, rr)
	assert.Equal(t, apierr.CodeWeakPassword, apiErr.Code)
	assert.Contains(t, apiErr.Message, "72")

	rr = ts.request(http.MethodPost, "/login", map[string]string{"identifier": "bobby1", "password": strings.Repeat("p", 100)}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeInvalidCredentials, decodeError(t, rr).Code)
}

func TestRegisterRequiresEmailWhenConfigured(t *testing.T) {
	cfg := auth.DefaultConfig()
	cfg.RequireEmail = true
	cfg.LoginIdentifier = auth.LoginByEmail
	ts := newTestServerWithConfig(t, cfg)

	rr := ts.request(http.MethodPost, "/register", map[string]string{"username": "alice1", "password": "longenough1"}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeMissingEmail, decodeError(t, rr).Code)

	rr = ts.request(http.MethodPost, "/register", map[string]string{
		"username": "alice1", "password": "longenough1", "email": "Alice@Example.com",
	}, "")
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "alice@example.com", decode[response.Account](t, rr).Email)

	rr = ts.request(http.MethodPost, "/register", map[string]string{
		"username": "bobby1", "password": "longenough1", "email": "alice@example.com",
	}, "")
	assert.Equal(t, apierr.CodeDuplicateEmail, decodeError(t, rr).Code)

	rr = ts.request(http.MethodPost, "/login", map[string]string{"email": "alice@example.com", "password": "longenough1"}, "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)
	registered := ts.register(t, "alice1", "longenough1")

	rr := ts.request(http.MethodPost, "/login", map[string]string{"identifier": "alice1", "password": "longenough1"}, "")
	require.Equal(t, http.StatusOK, rr.Code)
	loggedIn := decode[response.Account](t, rr)
	assert.Equal(t, registered.ID, loggedIn.ID)
	assert.Equal(t, registered.AccessToken, loggedIn.AccessToken)

	rr = ts.request(http.MethodPost, "/login", map[string]string{"username": "alice1", "password": "longenough1"}, "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "alice1", "longenough1")

	wrong := ts.request(http.MethodPost, "/login", map[string]string{"identifier": "alice1", "password": "nottheone"}, "")
	unknown := ts.request(http.MethodPost, "/login", map[string]string{"identifier": "nobody", "password": "nottheone"}, "")

	assert.Equal(t, http.StatusBadRequest, wrong.Code)
	assert.Equal(t, wrong.Code, unknown.Code)
	assert.Equal(t, wrong.Body.String(), unknown.Body.String())
	assert.Equal(t, apierr.CodeInvalidCredentials, decodeError(t, wrong).Code)
}

func TestProfileRequiresValidToken(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/profile", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, apierr.CodeNotAuthorized, decodeError(t, rr).Code)

	rr = ts.request(http.MethodGet, "/profile", nil, "Bearer not-a-real-token")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestListStatementsShuffled(t *testing.T) {
	ts := newTestServer(t)
	ts.app.MockRandom.QueueSwaps([2]int{0, 3})

	rr := ts.request(http.MethodGet, "/statements", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)

	list := decode[response.StatementList](t, rr)
	require.Len(t, list.Statements, 4)
	assert.Equal(t, "s4", list.Statements[0].StatementID)
	assert.Equal(t, "s1", list.Statements[3].StatementID)
}

func TestStatementTextsAndIDs(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/statements-only", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.ElementsMatch(t,
		[]string{"has climbed a mountain", "has been to Paris", "can juggle", "owns a cat"},
		decode[response.TextList](t, rr).Texts)

	rr = ts.request(http.MethodGet, "/statements/id", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{"s1", "s2", "s3", "s4"}, decode[response.IDList](t, rr).StatementIDs)
}

func TestRandomStatement(t *testing.T) {
	ts := newTestServer(t)
	ts.app.MockRandom.QueueIntn(2)

	rr := ts.request(http.MethodGet, "/random", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)

	picked := decode[response.RandomStatement](t, rr)
	assert.Equal(t, "can juggle", picked.Text)
	assert.Equal(t, "s3", picked.Statement.StatementID)
}

func TestRandomStatementEmptyCatalog(t *testing.T) {
	ts := newTestServer(t)
	require.NoError(t, ts.app.Storage.ReplaceStatements(context.Background(), nil))

	rr := ts.request(http.MethodGet, "/random", nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodeNotFound, decodeError(t, rr).Code)
}

func TestStatementsSortedByLevel(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/statements/levels", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)

	list := decode[response.StatementList](t, rr)
	var ids []string
	for _, st := range list.Statements {
		ids = append(ids, st.StatementID)
	}
	assert.Equal(t, []string{"s2", "s4", "s3", "s1"}, ids)
}

func TestStatementsByLevel(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/statements/levels/1", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[response.StatementList](t, rr).Statements, 2)

	rr = ts.request(http.MethodGet, "/statements/levels/9", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"statements":[]`)

	rr = ts.request(http.MethodGet, "/statements/levels/abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeInvalidLevel, decodeError(t, rr).Code)
}

func TestStatementByID(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/statements/statementId/s3", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "s3", decode[response.SingleStatement](t, rr).Statement.StatementID)

	rr = ts.request(http.MethodGet, "/statements/statementId/missing", nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUnknownRouteAndMethod(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodeNotFound, decodeError(t, rr).Code)

	rr = ts.request(http.MethodDelete, "/statements", nil, "")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/profile", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "alice1", "longenough1")
	ts.request(http.MethodGet, "/statements", nil, "")

	rr := ts.request(http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "gripp_registrations_total")
	assert.Contains(t, rr.Body.String(), `route="/statements"`)
}

func TestMetricsCountUnmatchedRequests(t *testing.T) {
	ts := newTestServer(t)
	ts.request(http.MethodGet, "/nope", nil, "")
	ts.request(http.MethodDelete, "/statements", nil, "")

	rr := ts.request(http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `gripp_http_requests_total{method="GET",route="unmatched",status="404"} 1`)
	assert.Contains(t, body, `gripp_http_requests_total{method="DELETE",route="unmatched",status="405"} 1`)
}

type downPinger struct{}

func (downPinger) Ping(context.Context) error {
	return storage.Unavailable(errors.New("connection refused"))
}
