package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type SandwichKind string

const (
	// Front-run and back-run signed by the same account
	Classic SandwichKind = "classic"
	// Closest buy before and closest sell after, signed by different accounts
	Wide SandwichKind = "wide"
)

// SandwichAttack is a front-run buy, a victim trade and a back-run sell on the same token
// in the same slot, with FrontRun.Position < Victim.Position < BackRun.Position.
type SandwichAttack struct {
	ID             string
	Kind           SandwichKind
	VictimWallet   string
	AttackerWallet string // signer, or "<front signer>+<back signer>" for wide sandwiches

	Slot        uint64
	Pool        string
	TokenMint   string
	TokenSymbol string
	Dex         string

	Victim   *TradeEvent
	FrontRun *TradeEvent
	BackRun  *TradeEvent

	// The bot's round-trip profit stands in for the victim's loss. Real slippage is often larger.
	LossLamports      decimal.Decimal
	LossUSD           float64
	BotProfitLamports decimal.Decimal

	DetectedAt time.Time
}

type SandwichAttacks []*SandwichAttack
