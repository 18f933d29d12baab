package fixture

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/fundsmith/tradewatch/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) (*Server, *Store, http.Handler) {
	t.Helper()
	store := NewStore(nil)
	srv := NewServer("", store, nil)
	t.Cleanup(func() { srv.Stop() })
	return srv, store, srv.Handler()
}

func serve(h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestListImportsEndpoint(t *testing.T) {
	_, store, h := newTestServer(t)
	store.AddImport("batch-1", sampleTrades())

	w := serve(h, http.MethodGet, "/api/imports", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got []model.TradeImport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "batch-1", got[0].ImportName)
	assert.False(t, got[0].CreatedAt.IsZero())
}

func TestConsolidateEndpoint(t *testing.T) {
	_, store, h := newTestServer(t)
	imp := store.AddImport("batch-1", sampleTrades())
	path := "/api/imports/" + strconv.FormatInt(imp.ID, 10) + "/consolidate"

	tests := []struct {
		name string
		body any
		code int
	}{
		{"missing criteria", map[string]string{}, http.StatusBadRequest},
		{"unknown criteria", map[string]string{"criteria": "SIDE"}, http.StatusBadRequest},
		{"valid", map[string]string{"criteria": "COUNTERPARTY_AND_BOOK"}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(h, http.MethodPost, path, tt.body)
			assert.Equal(t, tt.code, w.Code, w.Body.String())
		})
	}

	got, err := store.GetImport(imp.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StageConsolidated, got.Status)
}

func TestStageErrorsMapToStatusCodes(t *testing.T) {
	_, store, h := newTestServer(t)
	imp := store.AddImport("batch-1", sampleTrades())
	id := strconv.FormatInt(imp.ID, 10)

	assert.Equal(t, http.StatusConflict, serve(h, http.MethodPost, "/api/imports/"+id+"/push-to-murex", nil).Code)
	assert.Equal(t, http.StatusNotFound, serve(h, http.MethodGet, "/api/imports/42", nil).Code)
	assert.Equal(t, http.StatusBadRequest, serve(h, http.MethodDelete, "/api/imports/abc", nil).Code)
	assert.Equal(t, http.StatusOK, serve(h, http.MethodDelete, "/api/imports/"+id, nil).Code)
}

func TestPendingCountIsBareNumber(t *testing.T) {
	_, store, h := newTestServer(t)
	store.SubmitLive(sampleTrades()[0])
	store.SubmitLive(sampleTrades()[1])

	w := serve(h, http.MethodGet, "/api/live-trades/pending-count", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Body.String())
}

func TestProcessEndpointWithEmptyQueue(t *testing.T) {
	_, _, h := newTestServer(t)
	w := serve(h, http.MethodPost, "/api/live-trades/process", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestDemoConfigRoundTrip(t *testing.T) {
	_, _, h := newTestServer(t)
	cfg := model.DefaultDemoConfig()
	cfg.Enabled = true
	cfg.AutoMurexEnabled = true

	w := serve(h, http.MethodPut, "/api/live-trades/demo-config", cfg)
	require.Equal(t, http.StatusOK, w.Code)

	w = serve(h, http.MethodGet, "/api/live-trades/demo-config", nil)
	var got model.DemoConfig
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, cfg, got)

	cfg.MurexPushIntervalSeconds = -1
	assert.Equal(t, http.StatusBadRequest, serve(h, http.MethodPut, "/api/live-trades/demo-config", cfg).Code)
}

func TestInjectedFaults(t *testing.T) {
	srv, _, h := newTestServer(t)
	srv.FailNext(2, http.StatusServiceUnavailable)
	srv.GarbageNext(1)

	assert.Equal(t, http.StatusServiceUnavailable, serve(h, http.MethodGet, "/api/imports", nil).Code)
	assert.Equal(t, http.StatusServiceUnavailable, serve(h, http.MethodGet, "/api/imports", nil).Code)

	w := serve(h, http.MethodGet, "/api/imports", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "{not json", w.Body.String())

	assert.Equal(t, "[]", serve(h, http.MethodGet, "/api/imports", nil).Body.String())
}
