package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"campuseats/pkg/logger"
	"campuseats/pkg/order"
	"campuseats/pkg/order/memory"
)

type testApp struct {
	clock    *clockwork.FakeClock
	session  *order.Session
	receipts *memory.Repository
	hub      *Hub
	handler  http.Handler
}

func setupApp(t *testing.T) *testApp {
	t.Helper()
	log := logger.Nop()
	clock := clockwork.NewFakeClock()
	receipts := memory.New(10)

	var hub *Hub
	session := order.NewSession(order.Options{
		Clock:    clock,
		Receipts: receipts,
		Log:      log,
		OnChange: func(s order.Snapshot) { hub.OnChange(s) },
	})
	hub = NewHub(log, session.Snapshot())
	t.Cleanup(func() {
		session.Close()
		hub.Stop()
	})

	srv := NewServer(session, receipts, hub, log, noop.NewTracerProvider().Tracer("test"))
	return &testApp{clock: clock, session: session, receipts: receipts, hub: hub, handler: srv.Routes()}
}

func (a *testApp) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	a.handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func (a *testApp) waitScreen(t *testing.T, want order.Screen) {
	t.Helper()
	require.Eventually(t, func() bool { return a.session.Snapshot().Screen == want }, time.Second, 5*time.Millisecond)
}

func TestCatalogHandler(t *testing.T) {
	app := setupApp(t)
	rr := app.do(t, http.MethodGet, "/catalog", "")
	require.Equal(t, http.StatusOK, rr.Code)

	items := decode[[]order.Item](t, rr)
	assert.Len(t, items, 5)
	assert.NotEmpty(t, rr.Header().Get("X-Request-Id"))
}

func TestPlaceOrderAndAdjust(t *testing.T) {
	app := setupApp(t)

	rr := app.do(t, http.MethodPost, "/session/orders", `{"item":"Idli"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decode[actionResponse](t, rr)
	assert.True(t, resp.Applied)
	assert.Equal(t, 85, resp.Session.Credits)
	assert.Equal(t, order.MsgOrderPlaced, resp.Session.Message)
	assert.Equal(t, order.ScreenOrdering, resp.Session.Screen)

	rr = app.do(t, http.MethodPost, "/session/adjust", `{"item":"Idli","delta":-1}`)
	require.Equal(t, http.StatusOK, rr.Code)
	resp = decode[actionResponse](t, rr)
	assert.True(t, resp.Applied)
	assert.Equal(t, 100, resp.Session.Credits)
	assert.Empty(t, resp.Session.Lines)

	rr = app.do(t, http.MethodPost, "/session/adjust", `{"item":"Idli","delta":-1}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, decode[actionResponse](t, rr).Applied)
}

func TestPlaceOrderInsufficientCredits(t *testing.T) {
	app := setupApp(t)
	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusOK, app.do(t, http.MethodPost, "/session/orders", `{"item":"Fried Rice"}`).Code)
	}
	rr := app.do(t, http.MethodPost, "/session/orders", `{"item":"Fried Rice"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decode[actionResponse](t, rr)
	assert.False(t, resp.Applied)
	assert.Equal(t, 20, resp.Session.Credits)
	assert.Equal(t, order.MsgNotEnoughCredits, resp.Session.Message)
}

func TestSessionErrors(t *testing.T) {
	app := setupApp(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"unknown item", http.MethodPost, "/session/orders", `{"item":"Pizza"}`, http.StatusNotFound},
		{"malformed body", http.MethodPost, "/session/orders", `{`, http.StatusBadRequest},
		{"bad delta", http.MethodPost, "/session/adjust", `{"item":"Idli","delta":3}`, http.StatusBadRequest},
		{"adjust unknown item", http.MethodPost, "/session/adjust", `{"item":"Pizza","delta":1}`, http.StatusNotFound},
		{"confirm from ordering", http.MethodPost, "/session/confirm", "", http.StatusConflict},
		{"bad receipt id", http.MethodGet, "/receipts/not-a-uuid", "", http.StatusBadRequest},
		{"missing receipt", http.MethodGet, "/receipts/8f14e45f-ceea-467f-a0e6-6a1d3b7c2a10", "", http.StatusNotFound},
		{"wrong method", http.MethodGet, "/session/orders", "", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := app.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rr.Code, rr.Body.String())
		})
	}

	rr := app.do(t, http.MethodPost, "/session/orders", `{"item":"Pizza"}`)
	assert.Equal(t, "unknown item", decode[jsonError](t, rr).Error)
}

func TestCheckoutFlowProducesReceipt(t *testing.T) {
	app := setupApp(t)
	require.Equal(t, http.StatusOK, app.do(t, http.MethodPost, "/session/orders", `{"item":"Pasta"}`).Code)

	rr := app.do(t, http.MethodPost, "/session/summary", "")
	require.Equal(t, http.StatusAccepted, rr.Code)
	assert.Equal(t, order.ScreenSummaryLoading, decode[order.Snapshot](t, rr).Screen)
	assert.Equal(t, http.StatusConflict, app.do(t, http.MethodPost, "/session/summary", "").Code)

	app.clock.Advance(1200 * time.Millisecond)
	app.waitScreen(t, order.ScreenSummary)

	rr = app.do(t, http.MethodPost, "/session/confirm", "")
	require.Equal(t, http.StatusAccepted, rr.Code)
	assert.Equal(t, order.ScreenFinalLoading, decode[order.Snapshot](t, rr).Screen)

	app.clock.Advance(1500 * time.Millisecond)
	app.waitScreen(t, order.ScreenConfirmation)

	rr = app.do(t, http.MethodGet, "/receipts", "")
	require.Equal(t, http.StatusOK, rr.Code)
	receipts := decode[[]order.Receipt](t, rr)
	require.Len(t, receipts, 1)
	assert.Equal(t, 30, receipts[0].Total)

	rr = app.do(t, http.MethodGet, "/receipts/"+receipts[0].ID.String(), "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, receipts[0].ID, decode[order.Receipt](t, rr).ID)

	app.clock.Advance(5 * time.Second)
	app.waitScreen(t, order.ScreenOrdering)

	snap := decode[order.Snapshot](t, app.do(t, http.MethodGet, "/session", ""))
	assert.Equal(t, 100, snap.Credits)
	assert.Empty(t, snap.Lines)
}

func postForm(t *testing.T, app *testApp, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	app.handler.ServeHTTP(rr, req)
	return rr
}

func TestUIActions(t *testing.T) {
	app := setupApp(t)

	rr := postForm(t, app, "/ui/order", url.Values{"item": {"Veg Sandwich"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))

	rr = postForm(t, app, "/ui/adjust", url.Values{"item": {"Veg Sandwich"}, "delta": {"1"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, 60, app.session.Credits())

	page := app.do(t, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, page.Body.String(), "Available Credits: <strong>60</strong>")

	assert.Equal(t, http.StatusBadRequest, postForm(t, app, "/ui/adjust", url.Values{"item": {"Idli"}, "delta": {"x"}}).Code)
	assert.Equal(t, http.StatusNotFound, postForm(t, app, "/ui/order", url.Values{"item": {"Pizza"}}).Code)

	require.Equal(t, http.StatusSeeOther, postForm(t, app, "/ui/summary", nil).Code)
	// a second click while loading is ignored
	require.Equal(t, http.StatusSeeOther, postForm(t, app, "/ui/summary", nil).Code)

	page = app.do(t, http.MethodGet, "/", "")
	assert.Contains(t, page.Body.String(), "Preparing your summary...")

	app.clock.Advance(1200 * time.Millisecond)
	app.waitScreen(t, order.ScreenSummary)
	require.Equal(t, http.StatusSeeOther, postForm(t, app, "/ui/confirm", nil).Code)
	assert.Equal(t, order.ScreenFinalLoading, app.session.Snapshot().Screen)
}

func TestOperationalEndpoints(t *testing.T) {
	app := setupApp(t)

	rr := app.do(t, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, rr)["status"])

	app.do(t, http.MethodPost, "/session/orders", `{"item":"Lassi"}`)
	rr = app.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "campuseats_orders_total")
	assert.Contains(t, rr.Body.String(), "campuseats_http_request_duration_seconds")

	rr = app.do(t, http.MethodGet, "/swagger/doc.json", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, bytes.Contains(rr.Body.Bytes(), []byte("CampusEats API")))
}

func TestRequestIDIsPropagated(t *testing.T) {
	app := setupApp(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "req-42")
	rr := httptest.NewRecorder()
	app.handler.ServeHTTP(rr, req)
	assert.Equal(t, "req-42", rr.Header().Get("X-Request-Id"))
}
