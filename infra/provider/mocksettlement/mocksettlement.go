// Package mocksettlement provides an in-memory settlement.Gateway used in
// tests and local development.
package mocksettlement

import (
	"context"
	"fmt"
	"sync"

	"github.com/shillingix/backend/pkg/provider/settlement"
)

// Gateway is a scriptable settlement double. The zero value is connected and
// settles every trade.
type Gateway struct {
	mu sync.Mutex

	// Down simulates an unreachable bridge: IsConnected reports false and
	// every call returns ErrGatewayUnavailable.
	Down bool

	assets  map[string]settlement.Asset
	trades  []*settlement.TradeParams
	counter int
}

// New creates a connected mock gateway.
func New() *Gateway {
	return &Gateway{assets: make(map[string]settlement.Asset)}
}

// IsConnected implements settlement.Gateway.
func (g *Gateway) IsConnected(ctx context.Context) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return !g.Down
}

// GetUserBalance implements settlement.Gateway.
func (g *Gateway) GetUserBalance(ctx context.Context, userRef string) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.Down {
		return 0, settlement.ErrGatewayUnavailable
	}
	return 0, nil
}

// BuyAssetFor implements settlement.Gateway.
func (g *Gateway) BuyAssetFor(ctx context.Context, params *settlement.TradeParams) (*settlement.TradeResult, error) {
	return g.trade(params)
}

// SellAssetFor implements settlement.Gateway.
func (g *Gateway) SellAssetFor(ctx context.Context, params *settlement.TradeParams) (*settlement.TradeResult, error) {
	return g.trade(params)
}

func (g *Gateway) trade(params *settlement.TradeParams) (*settlement.TradeResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.Down {
		return nil, settlement.ErrGatewayUnavailable
	}
	g.trades = append(g.trades, params)
	g.counter++
	return &settlement.TradeResult{
		TransactionID:    fmt.Sprintf("%d", g.counter),
		BlockchainTxHash: fmt.Sprintf("0xmock%08d", g.counter),
	}, nil
}

// IssueAsset implements settlement.Gateway.
func (g *Gateway) IssueAsset(ctx context.Context, params *settlement.IssueParams) (*settlement.IssueResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.Down {
		return nil, settlement.ErrGatewayUnavailable
	}
	g.counter++
	id := fmt.Sprintf("asset-%d", g.counter)
	g.assets[id] = settlement.Asset{
		ID:           id,
		Name:         params.Name,
		Symbol:       params.Symbol,
		PricePerUnit: params.PricePerUnit,
		Available:    params.TotalSupply,
	}
	return &settlement.IssueResult{
		AssetID:          id,
		BlockchainTxHash: fmt.Sprintf("0xmock%08d", g.counter),
	}, nil
}

// GetAssets implements settlement.Gateway.
func (g *Gateway) GetAssets(ctx context.Context) ([]settlement.Asset, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.Down {
		return nil, settlement.ErrGatewayUnavailable
	}
	assets := make([]settlement.Asset, 0, len(g.assets))
	for _, a := range g.assets {
		assets = append(assets, a)
	}
	return assets, nil
}

// GetTransaction implements settlement.Gateway.
func (g *Gateway) GetTransaction(ctx context.Context, transactionID string) (*settlement.ChainTransaction, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.Down {
		return nil, settlement.ErrGatewayUnavailable
	}
	return &settlement.ChainTransaction{ID: transactionID}, nil
}

// Trades returns the recorded buy/sell calls.
func (g *Gateway) Trades() []*settlement.TradeParams {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]*settlement.TradeParams(nil), g.trades...)
}

var _ settlement.Gateway = (*Gateway)(nil)
