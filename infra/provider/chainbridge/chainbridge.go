// Package chainbridge implements the settlement.Gateway contract against the
// asset-manager bridge: an HTTP service fronting the deployed contract that
// marshals calls into the contract ABI and awaits transaction receipts.
package chainbridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/shillingix/backend/pkg/config"
	"github.com/shillingix/backend/pkg/provider/settlement"
)

// Client is an HTTP client for the asset-manager bridge.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a bridge client from config. A short timeout keeps gateway
// outages from stalling user-facing operations; callers fall back to local
// settlement on any error.
func New(cfg config.ChainBridge, logger *slog.Logger) *Client {
	timeout := cfg.HTTPTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    cfg.URL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With("provider", "chainbridge"),
	}
}

// IsConnected implements settlement.Gateway.
func (c *Client) IsConnected(ctx context.Context) bool {
	var out struct {
		Connected bool `json:"connected"`
	}
	if err := c.get(ctx, "/v1/health", &out); err != nil {
		c.logger.Warn("bridge health check failed", "error", err)
		return false
	}
	return out.Connected
}

// GetUserBalance implements settlement.Gateway.
func (c *Client) GetUserBalance(ctx context.Context, userRef string) (int64, error) {
	var out struct {
		Balance int64 `json:"balance"`
	}
	path := fmt.Sprintf("/v1/users/%s/balance", userRef)
	if err := c.get(ctx, path, &out); err != nil {
		return 0, err
	}
	return out.Balance, nil
}

type tradeRequest struct {
	UserRef  string `json:"user_ref"`
	AssetID  string `json:"asset_id"`
	Quantity int64  `json:"quantity"`
	Amount   int64  `json:"amount"`
}

type tradeResponse struct {
	TransactionID    string `json:"transaction_id"`
	BlockchainTxHash string `json:"blockchain_tx_hash"`
}

// BuyAssetFor implements settlement.Gateway.
func (c *Client) BuyAssetFor(ctx context.Context, params *settlement.TradeParams) (*settlement.TradeResult, error) {
	return c.trade(ctx, "/v1/assets/buy", params)
}

// SellAssetFor implements settlement.Gateway.
func (c *Client) SellAssetFor(ctx context.Context, params *settlement.TradeParams) (*settlement.TradeResult, error) {
	return c.trade(ctx, "/v1/assets/sell", params)
}

func (c *Client) trade(ctx context.Context, path string, params *settlement.TradeParams) (*settlement.TradeResult, error) {
	req := tradeRequest{
		UserRef:  params.UserRef,
		AssetID:  params.AssetID,
		Quantity: params.Quantity,
		Amount:   params.Amount,
	}
	var resp tradeResponse
	if err := c.post(ctx, path, req, &resp); err != nil {
		return nil, err
	}
	return &settlement.TradeResult{
		TransactionID:    resp.TransactionID,
		BlockchainTxHash: resp.BlockchainTxHash,
	}, nil
}

// IssueAsset implements settlement.Gateway.
func (c *Client) IssueAsset(ctx context.Context, params *settlement.IssueParams) (*settlement.IssueResult, error) {
	req := struct {
		Name         string `json:"name"`
		Symbol       string `json:"symbol"`
		TotalSupply  int64  `json:"total_supply"`
		PricePerUnit int64  `json:"price_per_unit"`
	}{params.Name, params.Symbol, params.TotalSupply, params.PricePerUnit}

	var resp struct {
		AssetID          string `json:"asset_id"`
		BlockchainTxHash string `json:"blockchain_tx_hash"`
	}
	if err := c.post(ctx, "/v1/assets/issue", req, &resp); err != nil {
		return nil, err
	}
	return &settlement.IssueResult{
		AssetID:          resp.AssetID,
		BlockchainTxHash: resp.BlockchainTxHash,
	}, nil
}

// GetAssets implements settlement.Gateway.
func (c *Client) GetAssets(ctx context.Context) ([]settlement.Asset, error) {
	var out struct {
		Assets []settlement.Asset `json:"assets"`
	}
	if err := c.get(ctx, "/v1/assets", &out); err != nil {
		return nil, err
	}
	return out.Assets, nil
}

// GetTransaction implements settlement.Gateway.
func (c *Client) GetTransaction(ctx context.Context, transactionID string) (*settlement.ChainTransaction, error) {
	var out settlement.ChainTransaction
	path := fmt.Sprintf("/v1/transactions/%s", transactionID)
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", settlement.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: status %d", settlement.ErrGatewayUnavailable, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bridge request failed: status %d: %s", resp.StatusCode, raw)
	}
	return json.Unmarshal(raw, out)
}

var _ settlement.Gateway = (*Client)(nil)
