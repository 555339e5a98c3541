package types

import (
	"github.com/shopspring/decimal"
)

type Direction string

const (
	Buy  Direction = "buy"
	Sell Direction = "sell"
)

// TradeEvent is one signer's directional trade of a token against the reference asset (SOL),
// inferred from a single transaction. Amounts are in base units of their asset.
type TradeEvent struct {
	Signature   string          `json:"signature"`
	Slot        uint64          `json:"slot"`
	Position    int             `json:"slotIndex"`
	Pool        string          `json:"pool"`
	TokenMint   string          `json:"tokenMint"`
	TokenSymbol string          `json:"tokenSymbol,omitempty"`
	Direction   Direction       `json:"direction"`
	AmountIn    decimal.Decimal `json:"amountIn"`
	AmountOut   decimal.Decimal `json:"amountOut"`
	Signer      string          `json:"signer"`
	Timestamp   int64           `json:"timestamp"`
	Dex         string          `json:"dex"`
}

type TradeEvents []*TradeEvent
