package ledger

// Settlement records how a ledger entry was settled: on the external ledger
// (carrying the chain transaction hash) or locally only, when the gateway was
// disabled or unreachable. Modeled as a tagged value rather than a nullable
// hash so the fallback path is explicit.
type Settlement struct {
	onChain bool
	txHash  string
}

// Settled returns a Settlement for an entry mirrored to the external ledger.
func Settled(txHash string) Settlement {
	return Settlement{onChain: true, txHash: txHash}
}

// LocalOnly returns a Settlement for an entry settled via persistence alone.
func LocalOnly() Settlement {
	return Settlement{}
}

// OnChain reports whether the entry was mirrored to the external ledger.
func (s Settlement) OnChain() bool { return s.onChain }

// TxHash returns the chain transaction hash, empty for local-only entries.
func (s Settlement) TxHash() string { return s.txHash }
