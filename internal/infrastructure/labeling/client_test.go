package labeling

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stocksync/backend/internal/domain/integration"
	"github.com/stocksync/backend/internal/infrastructure/config"
)

func newTestClient(serverURL string) *Client {
	return NewClient(config.LabelingConfig{
		BaseURL: serverURL,
		APIKey:  "test-key",
		Timeout: 5 * time.Second,
	}, zap.NewNop())
}

func TestClient_Label(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/label", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Organic Honey 500g", req["name"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "ok", "category": "Food", "label": "Pantry"}`))
	}))
	defer server.Close()

	result, err := newTestClient(server.URL).Label(context.Background(), "Organic Honey 500g")
	require.NoError(t, err)
	assert.Equal(t, integration.LabelStatusOK, result.Status)
	assert.Equal(t, "Food", result.Category)
	assert.Equal(t, "Pantry", result.Label)
}

func TestClient_Label_InsufficientData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status": "insufficient_data"}`))
	}))
	defer server.Close()

	result, err := newTestClient(server.URL).Label(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, integration.LabelStatusInsufficientData, result.Status)
	assert.Empty(t, result.Category)
}

func TestClient_Label_UnknownStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status": "weird"}`))
	}))
	defer server.Close()

	result, err := newTestClient(server.URL).Label(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, integration.LabelStatusInsufficientData, result.Status)
}

func TestClient_Label_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Label(context.Background(), "x")
	assert.ErrorIs(t, err, integration.ErrPlatformRequestFailed)
}

func TestNoopLabeler(t *testing.T) {
	result, err := NoopLabeler{}.Label(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, integration.LabelStatusInsufficientData, result.Status)
}
