package types

import (
	"github.com/shopspring/decimal"
)

// SignatureInfo is one entry of an account's signature history, newest first.
type SignatureInfo struct {
	Signature string
	Slot      uint64
	BlockTime int64 // unix seconds, 0 when the node does not know it
	IsFailed  bool
}

// RawTransaction is the transport-independent view of a ledger transaction that the
// normalizer consumes. Both the JSON-RPC and the Helius transports produce it.
type RawTransaction struct {
	Slot      uint64
	Position  int // index in the slot's ordered signature list, -1 when unknown
	Timestamp int64
	IsFailed  bool

	// The identifier of this transaction, which is the first signature in Signatures field.
	Signature string
	// The fee payer, first entry of AccountKeys
	Signer string
	// Static keys followed by keys loaded from address lookup tables
	AccountKeys []string

	// Indexer labels, e.g. Source "RAYDIUM", Type "SWAP". Empty on the RPC path.
	Source string
	Type   string

	// Signer's lamport change with the fee added back
	NativeDelta decimal.Decimal
	// Token balance changes per (owner, mint), in base units, ordered by first appearance
	TokenDeltas []TokenDelta
	// Token transfers, in base units
	Transfers    []TokenTransfer
	Instructions []Instruction
}

type TokenDelta struct {
	Owner  string
	Mint   string
	Amount decimal.Decimal
}

type TokenTransfer struct {
	From   string // owner that sent the tokens
	To     string // owner that received them
	Mint   string
	Amount decimal.Decimal
}

// Instruction is a program invocation with its accounts resolved to addresses.
type Instruction struct {
	ProgramID string
	Accounts  []string
	Inner     []Instruction
}

// Owners returns every owner that appears in the token balance changes, in order.
func (tx *RawTransaction) Owners() []string {
	seen := make(map[string]struct{}, len(tx.TokenDeltas))
	owners := make([]string, 0, len(tx.TokenDeltas))
	for _, d := range tx.TokenDeltas {
		if d.Owner == "" {
			continue
		}
		if _, ok := seen[d.Owner]; ok {
			continue
		}
		seen[d.Owner] = struct{}{}
		owners = append(owners, d.Owner)
	}
	return owners
}
