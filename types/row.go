package types

import (
	"time"

	"sandwichcheck/utils"
)

// AttackRow is one detected sandwich as stored in the attacks table.
type AttackRow struct {
	SandwichId        string    `ch:"sandwichId"`
	Kind              string    `ch:"kind"`
	VictimWallet      string    `ch:"victimWallet"`
	AttackerWallet    string    `ch:"attackerWallet"`
	Slot              uint64    `ch:"slot"`
	Timestamp         time.Time `ch:"timestamp"`
	Pool              string    `ch:"pool"`
	TokenMint         string    `ch:"tokenMint"`
	TokenSymbol       string    `ch:"tokenSymbol"`
	Dex               string    `ch:"dex"`
	FrontrunTxSig     string    `ch:"frontrunTxSig"`
	VictimTxSig       string    `ch:"victimTxSig"`
	BackrunTxSig      string    `ch:"backrunTxSig"`
	LossLamports      uint64    `ch:"lossLamports"`
	LossUSD           float64   `ch:"lossUSD"`
	BotProfitLamports uint64    `ch:"botProfitLamports"`
	DetectedAt        time.Time `ch:"detectedAt"`
}

// ReportRow is the summary of one wallet check.
type ReportRow struct {
	Wallet            string    `ch:"wallet"`
	AnalyzedAt        time.Time `ch:"analyzedAt"`
	AttackCount       uint32    `ch:"attackCount"`
	TotalLossLamports uint64    `ch:"totalLossLamports"`
	TotalLossSOL      float64   `ch:"totalLossSOL"`
	TotalLossUSD      float64   `ch:"totalLossUSD"`
	SolPriceUSD       float64   `ch:"solPriceUSD"`
	MostTargetedToken string    `ch:"mostTargetedToken"`
	MostActiveBot     string    `ch:"mostActiveAttacker"`
	FromTime          time.Time `ch:"fromTime"`
	ToTime            time.Time `ch:"toTime"`
}

func NewAttackRow(a *SandwichAttack) *AttackRow {
	row := &AttackRow{
		SandwichId:        a.ID,
		Kind:              string(a.Kind),
		VictimWallet:      a.VictimWallet,
		AttackerWallet:    a.AttackerWallet,
		Slot:              a.Slot,
		Pool:              a.Pool,
		TokenMint:         a.TokenMint,
		TokenSymbol:       a.TokenSymbol,
		Dex:               a.Dex,
		LossLamports:      utils.ClampUint64(a.LossLamports),
		LossUSD:           a.LossUSD,
		BotProfitLamports: utils.ClampUint64(a.BotProfitLamports),
		DetectedAt:        a.DetectedAt.UTC(),
	}
	if a.Victim != nil {
		row.VictimTxSig = a.Victim.Signature
		row.Timestamp = time.Unix(a.Victim.Timestamp, 0).UTC()
	}
	if a.FrontRun != nil {
		row.FrontrunTxSig = a.FrontRun.Signature
	}
	if a.BackRun != nil {
		row.BackrunTxSig = a.BackRun.Signature
	}
	return row
}

func NewAttackRows(attacks SandwichAttacks) []*AttackRow {
	rows := make([]*AttackRow, 0, len(attacks))
	for _, a := range attacks {
		rows = append(rows, NewAttackRow(a))
	}
	return rows
}

func NewReportRow(r *WalletReport) *ReportRow {
	row := &ReportRow{
		Wallet:            r.Wallet,
		AnalyzedAt:        r.AnalyzedAt.UTC(),
		AttackCount:       uint32(r.AttackCount),
		TotalLossLamports: utils.ClampUint64(r.TotalLossLamports),
		TotalLossSOL:      r.TotalLossSOL,
		TotalLossUSD:      r.TotalLossUSD,
		SolPriceUSD:       r.SolPriceUSD,
		FromTime:          time.Unix(r.TimeRange.From, 0).UTC(),
		ToTime:            time.Unix(r.TimeRange.To, 0).UTC(),
	}
	if r.MostTargetedToken != nil {
		row.MostTargetedToken = r.MostTargetedToken.Mint
	}
	if r.MostActiveAttacker != nil {
		row.MostActiveBot = r.MostActiveAttacker.Wallet
	}
	return row
}
