// Package settlement defines the gateway contract for the on-ledger asset
// manager used as an optional secondary settlement path. Every call may fail
// (network, timeout, contract revert); callers must treat failures as
// non-fatal and continue with the persistence-only fallback.
package settlement

import (
	"context"
	"errors"
)

// ErrGatewayUnavailable is returned when the gateway cannot be reached or is
// disabled. Reconciler operations log it and fall back to local settlement.
var ErrGatewayUnavailable = errors.New("settlement gateway unavailable")

// Gateway is the interface to the deployed asset-manager contract, reached
// through a bridge service.
type Gateway interface {
	// IsConnected reports whether the bridge and chain are reachable.
	IsConnected(ctx context.Context) bool

	// GetUserBalance returns the user's on-ledger balance in minor units.
	GetUserBalance(ctx context.Context, userRef string) (int64, error)

	// BuyAssetFor settles a purchase on the ledger.
	BuyAssetFor(ctx context.Context, params *TradeParams) (*TradeResult, error)

	// SellAssetFor settles a disposal on the ledger.
	SellAssetFor(ctx context.Context, params *TradeParams) (*TradeResult, error)

	// IssueAsset registers a new product as an on-ledger asset.
	IssueAsset(ctx context.Context, params *IssueParams) (*IssueResult, error)

	// GetAssets lists the assets known to the contract.
	GetAssets(ctx context.Context) ([]Asset, error)

	// GetTransaction fetches a settled transaction by its contract-side id,
	// used to correlate chain events with local ledger rows.
	GetTransaction(ctx context.Context, transactionID string) (*ChainTransaction, error)
}

// TradeParams holds the arguments for BuyAssetFor / SellAssetFor.
type TradeParams struct {
	UserRef  string // user's on-ledger address or external reference
	AssetID  string
	Quantity int64
	Amount   int64 // minor units
}

// TradeResult carries the contract-side correlation id and the chain
// transaction hash for a settled trade.
type TradeResult struct {
	TransactionID    string
	BlockchainTxHash string
}

// IssueParams holds the arguments for IssueAsset.
type IssueParams struct {
	Name         string
	Symbol       string
	TotalSupply  int64
	PricePerUnit int64 // minor units
}

// IssueResult carries the new asset id and issuing transaction hash.
type IssueResult struct {
	AssetID          string
	BlockchainTxHash string
}

// Asset is a product as the contract sees it.
type Asset struct {
	ID           string
	Name         string
	Symbol       string
	PricePerUnit int64
	Available    int64
}

// ChainTransaction is a settled transaction as recorded by the contract.
type ChainTransaction struct {
	ID        string
	UserRef   string
	AssetID   string
	Quantity  int64
	Amount    int64
	Kind      string // "buy" | "sell" | "issue"
	TxHash    string
	Timestamp int64
}
