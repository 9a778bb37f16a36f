package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crypto_dash/internal/dashboard"
	"crypto_dash/internal/domain"
	"crypto_dash/internal/infra"
	"crypto_dash/internal/service"
)

type fakeMarket struct {
	mu         sync.Mutex
	state      domain.MarketState
	refreshErr error
	refetches  int
}

func (f *fakeMarket) State() domain.MarketState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeMarket) Refetch(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refetches++
	return f.refreshErr
}

type fakeDetails struct{}

func (fakeDetails) Load(_ context.Context, id string) service.DetailState {
	if id != "bitcoin" {
		return service.DetailState{Error: "coin detail: HTTP error! status: 404"}
	}
	coin := &domain.CoinDetail{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin"}
	coin.Description.En = "<p>First. Second. Third. Fourth.</p>"
	return service.DetailState{
		Coin: coin,
		History: []domain.PricePoint{
			{Timestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Price: 100},
			{Timestamp: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Price: 110},
		},
	}
}

var testCoins = []domain.CoinRecord{
	{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin", MarketCapRank: 1, CurrentPrice: 50000, MarketCap: 1e12, PriceChangePercentage24h: 2.5},
	{ID: "ethereum", Symbol: "eth", Name: "Ethereum", MarketCapRank: 2, CurrentPrice: 3000, MarketCap: 4e11, PriceChangePercentage24h: -1.2},
}

func newTestServer(t *testing.T) (*Server, *fakeMarket) {
	t.Helper()
	m := &fakeMarket{state: domain.MarketState{Coins: testCoins}}
	s := New(Options{
		Dashboard: dashboard.New(m),
		Market:    m,
		Details:   fakeDetails{},
		Metrics:   &infra.Metrics{},
	})
	return s, m
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, APIResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func TestServer_Health(t *testing.T) {
	s, _ := newTestServer(t)
	rec, resp := doRequest(t, s.Router(), http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestServer_Dashboard(t *testing.T) {
	s, _ := newTestServer(t)
	rec, resp := doRequest(t, s.Router(), http.MethodGet, "/api/v1/dashboard", "")
	require.Equal(t, http.StatusOK, rec.Code)

	data := resp.Data.(map[string]any)
	assert.Len(t, data["filtered"], 2)
	summary := data["summary"].(map[string]any)
	assert.InDelta(t, 1.4e12, summary["total_market_cap"], 1)
	assert.InDelta(t, 0.65, summary["average_change"], 1e-9)
}

func TestServer_PatchFilters(t *testing.T) {
	s, _ := newTestServer(t)

	rec, resp := doRequest(t, s.Router(), http.MethodPatch, "/api/v1/filters", `{"search":"ETH","bucket":"top10"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	criteria := resp.Data.(map[string]any)
	assert.Equal(t, "ETH", criteria["search"])
	assert.Equal(t, "top10", criteria["bucket"])

	_, resp = doRequest(t, s.Router(), http.MethodGet, "/api/v1/coins", "")
	coins := resp.Data.([]any)
	require.Len(t, coins, 1)
	assert.Equal(t, "ethereum", coins[0].(map[string]any)["id"])

	// Summary still covers the full list
	_, resp = doRequest(t, s.Router(), http.MethodGet, "/api/v1/summary", "")
	assert.InDelta(t, 1.4e12, resp.Data.(map[string]any)["total_market_cap"], 1)
}

func TestServer_PatchFilters_Invalid(t *testing.T) {
	s, _ := newTestServer(t)

	rec, resp := doRequest(t, s.Router(), http.MethodPatch, "/api/v1/filters", `{"bucket":"51-100"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, domain.ErrInvalidBucket.Error())

	rec, _ = doRequest(t, s.Router(), http.MethodPatch, "/api/v1/filters", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_PatchFilters_Clamp(t *testing.T) {
	s, _ := newTestServer(t)

	_, resp := doRequest(t, s.Router(), http.MethodPatch, "/api/v1/filters", `{"min_price":200000}`)
	price := resp.Data.(map[string]any)["price"].(map[string]any)
	assert.Equal(t, 200000.0, price["min"])
	assert.Equal(t, 200000.0, price["max"])
}

func TestServer_Refresh(t *testing.T) {
	s, m := newTestServer(t)

	rec, resp := doRequest(t, s.Router(), http.MethodPost, "/api/v1/refresh", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, 1, m.refetches)

	m.refreshErr = domain.NewStatusError("fetch markets", 500)
	rec, resp = doRequest(t, s.Router(), http.MethodPost, "/api/v1/refresh", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, resp.Error, "status: 500")

	m.refreshErr = domain.ErrStopped
	rec, _ = doRequest(t, s.Router(), http.MethodPost, "/api/v1/refresh", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestServer_CoinDetail(t *testing.T) {
	s, _ := newTestServer(t)

	rec, resp := doRequest(t, s.Router(), http.MethodGet, "/api/v1/coins/bitcoin", "")
	require.Equal(t, http.StatusOK, rec.Code)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "First. Second. Third.", data["description"])
	assert.Len(t, data["price_history"], 2)
	assert.NotNil(t, data["history_range"])

	rec, resp = doRequest(t, s.Router(), http.MethodGet, "/api/v1/coins/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, resp.Error, "404")
}

func TestServer_Metrics(t *testing.T) {
	s, _ := newTestServer(t)
	s.metrics.RecordStale()

	_, resp := doRequest(t, s.Router(), http.MethodGet, "/api/v1/metrics", "")
	assert.Equal(t, 1.0, resp.Data.(map[string]any)["stale_discarded"])
}

func TestServer_WebSocketPush(t *testing.T) {
	s, _ := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Hub().Run(ctx)

	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	readMessage := func() Message {
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var msg Message
		require.NoError(t, conn.ReadJSON(&msg))
		return msg
	}

	// Initial view on connect
	assert.Equal(t, "dashboard", readMessage().Type)

	require.Eventually(t, func() bool { return s.Hub().ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(1), s.metrics.Snapshot().ActiveConnections)

	s.NotifyChange(domain.MarketState{})
	msg := readMessage()
	assert.Equal(t, "dashboard", msg.Type)
	assert.NotNil(t, msg.Data)
}

func TestHub_StopClosesClients(t *testing.T) {
	h := NewHub(&infra.Metrics{})
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(stopped)
	}()

	c := &client{send: make(chan Message, 1)}
	require.True(t, h.add(c))
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	<-stopped

	_, ok := <-c.send
	assert.False(t, ok, "client channel should be closed")
	assert.False(t, h.add(&client{send: make(chan Message)}), "add after stop must not block")
	assert.Equal(t, int32(0), h.metrics.Snapshot().ActiveConnections)
}

func TestServer_ListenAndServeShutdown(t *testing.T) {
	s, _ := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
