package chainbridge

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shillingix/backend/pkg/config"
	"github.com/shillingix/backend/pkg/provider/settlement"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(config.ChainBridge{
		URL:         srv.URL,
		HTTPTimeout: 2 * time.Second,
	}, slog.Default())
}

func TestBuyAssetFor_Success(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/assets/buy", r.URL.Path)
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "asset-42", req["asset_id"])

		json.NewEncoder(w).Encode(map[string]string{ //nolint:errcheck
			"transaction_id":     "17",
			"blockchain_tx_hash": "0xabc123",
		})
	}))

	result, err := client.BuyAssetFor(context.Background(), &settlement.TradeParams{
		UserRef:  "user-1",
		AssetID:  "asset-42",
		Quantity: 1,
		Amount:   50_000,
	})
	require.NoError(t, err)
	assert.Equal(t, "17", result.TransactionID)
	assert.Equal(t, "0xabc123", result.BlockchainTxHash)
}

func TestBuyAssetFor_ServerError_IsGatewayUnavailable(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := client.BuyAssetFor(context.Background(), &settlement.TradeParams{
		UserRef: "user-1", AssetID: "asset-42", Quantity: 1, Amount: 100,
	})
	assert.ErrorIs(t, err, settlement.ErrGatewayUnavailable)
}

func TestBuyAssetFor_Unreachable_IsGatewayUnavailable(t *testing.T) {
	client := New(config.ChainBridge{
		URL:         "http://127.0.0.1:1", // nothing listens here
		HTTPTimeout: 200 * time.Millisecond,
	}, slog.Default())

	_, err := client.BuyAssetFor(context.Background(), &settlement.TradeParams{
		UserRef: "user-1", AssetID: "asset-42", Quantity: 1, Amount: 100,
	})
	assert.ErrorIs(t, err, settlement.ErrGatewayUnavailable)
}

func TestIsConnected(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/health", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]bool{"connected": true}) //nolint:errcheck
	}))

	assert.True(t, client.IsConnected(context.Background()))
}

func TestGetUserBalance(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/users/user-7/balance", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]int64{"balance": 250_000}) //nolint:errcheck
	}))

	balance, err := client.GetUserBalance(context.Background(), "user-7")
	require.NoError(t, err)
	assert.Equal(t, int64(250_000), balance)
}
