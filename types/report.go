package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type TokenStat struct {
	Mint    string  `json:"mint"`
	Symbol  string  `json:"symbol,omitempty"`
	Count   int     `json:"count"`
	LossUSD float64 `json:"lossUSD"`
}

type AttackerStat struct {
	Wallet         string  `json:"wallet"`
	Count          int     `json:"count"`
	TotalProfitUSD float64 `json:"totalProfitUSD"`
	KnownAlias     string  `json:"knownAlias,omitempty"`
}

type DexStat struct {
	Count   int     `json:"count"`
	LossUSD float64 `json:"lossUSD"`
}

type WeekStat struct {
	Week    string  `json:"week"` // local Sunday, YYYY-MM-DD
	Count   int     `json:"count"`
	LossUSD float64 `json:"lossUSD"`
}

type TimeRange struct {
	From int64 `json:"from"`
	To   int64 `json:"to"`
}

// WalletReport aggregates every sandwich found against one wallet.
type WalletReport struct {
	Wallet      string
	SolPriceUSD float64

	AttackCount       int
	TotalLossLamports decimal.Decimal
	TotalLossSOL      float64
	TotalLossUSD      float64

	WorstAttack        *SandwichAttack
	MostTargetedToken  *TokenStat
	MostActiveAttacker *AttackerStat

	AttacksByDex   map[string]DexStat
	AttacksByWeek  []WeekStat  // ascending by week
	AttacksByToken []TokenStat // descending by loss
	TopAttackers   []AttackerStat

	Attacks    SandwichAttacks
	TimeRange  TimeRange
	AnalyzedAt time.Time
}

// SandwichAttackJSON is the wire form of an attack: lamports as decimal strings and
// the three trades reduced to their signatures.
type SandwichAttackJSON struct {
	ID                string  `json:"id"`
	Kind              string  `json:"kind"`
	VictimWallet      string  `json:"victimWallet"`
	AttackerWallet    string  `json:"attackerWallet"`
	Slot              uint64  `json:"slot"`
	Pool              string  `json:"pool"`
	TokenMint         string  `json:"tokenMint"`
	TokenSymbol       string  `json:"tokenSymbol,omitempty"`
	VictimTxSig       string  `json:"victimTxSig"`
	FrontrunTxSig     string  `json:"frontrunTxSig"`
	BackrunTxSig      string  `json:"backrunTxSig"`
	LossLamports      string  `json:"lossLamports"`
	LossUSD           float64 `json:"lossUSD"`
	BotProfitLamports string  `json:"botProfitLamports"`
	Dex               string  `json:"dex"`
	DetectedAt        string  `json:"detectedAt"`
	Timestamp         int64   `json:"timestamp"`
}

type WalletReportJSON struct {
	Wallet             string               `json:"wallet"`
	AttackCount        int                  `json:"attackCount"`
	TotalLossLamports  string               `json:"totalLossLamports"`
	TotalLossSOL       float64              `json:"totalLossSOL"`
	TotalLossUSD       float64              `json:"totalLossUSD"`
	SolPriceUSD        float64              `json:"solPriceUSD"`
	WorstAttack        *SandwichAttackJSON  `json:"worstAttack"`
	MostTargetedToken  *TokenStat           `json:"mostTargetedToken"`
	MostActiveAttacker *AttackerStat        `json:"mostActiveAttacker"`
	AttacksByDex       map[string]DexStat   `json:"attacksByDex"`
	AttacksByWeek      []WeekStat           `json:"attacksByWeek"`
	AttacksByToken     []TokenStat          `json:"attacksByToken"`
	TopAttackers       []AttackerStat       `json:"topAttackers"`
	Attacks            []SandwichAttackJSON `json:"attacks"`
	TimeRange          TimeRange            `json:"timeRange"`
	AnalyzedAt         string               `json:"analyzedAt"`
}

func SerializeAttack(a *SandwichAttack) SandwichAttackJSON {
	out := SandwichAttackJSON{
		ID:                a.ID,
		Kind:              string(a.Kind),
		VictimWallet:      a.VictimWallet,
		AttackerWallet:    a.AttackerWallet,
		Slot:              a.Slot,
		Pool:              a.Pool,
		TokenMint:         a.TokenMint,
		TokenSymbol:       a.TokenSymbol,
		LossLamports:      a.LossLamports.String(),
		LossUSD:           a.LossUSD,
		BotProfitLamports: a.BotProfitLamports.String(),
		Dex:               a.Dex,
		DetectedAt:        a.DetectedAt.UTC().Format(time.RFC3339),
	}
	if a.Victim != nil {
		out.VictimTxSig = a.Victim.Signature
		out.Timestamp = a.Victim.Timestamp
	}
	if a.FrontRun != nil {
		out.FrontrunTxSig = a.FrontRun.Signature
	}
	if a.BackRun != nil {
		out.BackrunTxSig = a.BackRun.Signature
	}
	return out
}

// SerializeReport converts a report to its JSON form. Slices are never nil so the
// output always carries every field.
func SerializeReport(r *WalletReport) *WalletReportJSON {
	out := &WalletReportJSON{
		Wallet:             r.Wallet,
		AttackCount:        r.AttackCount,
		TotalLossLamports:  r.TotalLossLamports.String(),
		TotalLossSOL:       r.TotalLossSOL,
		TotalLossUSD:       r.TotalLossUSD,
		SolPriceUSD:        r.SolPriceUSD,
		MostTargetedToken:  r.MostTargetedToken,
		MostActiveAttacker: r.MostActiveAttacker,
		AttacksByDex:       r.AttacksByDex,
		AttacksByWeek:      r.AttacksByWeek,
		AttacksByToken:     r.AttacksByToken,
		TopAttackers:       r.TopAttackers,
		Attacks:            make([]SandwichAttackJSON, 0, len(r.Attacks)),
		TimeRange:          r.TimeRange,
		AnalyzedAt:         r.AnalyzedAt.UTC().Format(time.RFC3339),
	}
	if r.WorstAttack != nil {
		worst := SerializeAttack(r.WorstAttack)
		out.WorstAttack = &worst
	}
	if out.AttacksByDex == nil {
		out.AttacksByDex = map[string]DexStat{}
	}
	if out.AttacksByWeek == nil {
		out.AttacksByWeek = []WeekStat{}
	}
	if out.AttacksByToken == nil {
		out.AttacksByToken = []TokenStat{}
	}
	if out.TopAttackers == nil {
		out.TopAttackers = []AttackerStat{}
	}
	for _, a := range r.Attacks {
		out.Attacks = append(out.Attacks, SerializeAttack(a))
	}
	return out
}
