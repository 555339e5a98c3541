package helius

import (
	"sandwichcheck/types"

	"github.com/shopspring/decimal"
)

const TypeSwap = "SWAP"

type TokenTransfer struct {
	FromUserAccount  string  `json:"fromUserAccount"`
	ToUserAccount    string  `json:"toUserAccount"`
	FromTokenAccount string  `json:"fromTokenAccount"`
	ToTokenAccount   string  `json:"toTokenAccount"`
	TokenAmount      float64 `json:"tokenAmount"` // UI amount, decimals applied
	Mint             string  `json:"mint"`
}

type NativeTransfer struct {
	FromUserAccount string `json:"fromUserAccount"`
	ToUserAccount   string `json:"toUserAccount"`
	Amount          int64  `json:"amount"`
}

type RawTokenAmount struct {
	TokenAmount string `json:"tokenAmount"` // signed, base units
	Decimals    int32  `json:"decimals"`
}

type TokenBalanceChange struct {
	UserAccount    string         `json:"userAccount"`
	TokenAccount   string         `json:"tokenAccount"`
	Mint           string         `json:"mint"`
	RawTokenAmount RawTokenAmount `json:"rawTokenAmount"`
}

type AccountData struct {
	Account             string               `json:"account"`
	NativeBalanceChange int64                `json:"nativeBalanceChange"`
	TokenBalanceChanges []TokenBalanceChange `json:"tokenBalanceChanges"`
}

type InnerInstruction struct {
	ProgramId string   `json:"programId"`
	Accounts  []string `json:"accounts"`
	Data      string   `json:"data"`
}

type Instruction struct {
	ProgramId         string             `json:"programId"`
	Accounts          []string           `json:"accounts"`
	Data              string             `json:"data"`
	InnerInstructions []InnerInstruction `json:"innerInstructions"`
}

type EnhancedTransaction struct {
	Signature        string           `json:"signature"`
	Type             string           `json:"type"`
	Source           string           `json:"source"`
	Description      string           `json:"description"`
	Fee              int64            `json:"fee"`
	FeePayer         string           `json:"feePayer"`
	Slot             uint64           `json:"slot"`
	Timestamp        int64            `json:"timestamp"`
	TransactionError any              `json:"transactionError"`
	NativeTransfers  []NativeTransfer `json:"nativeTransfers"`
	TokenTransfers   []TokenTransfer  `json:"tokenTransfers"`
	AccountData      []AccountData    `json:"accountData"`
	Instructions     []Instruction    `json:"instructions"`
}

// ToRaw converts the parsed transaction. Token transfers are scaled back to base units with the
// decimals seen in the balance changes of the same mint; transfers of a mint without any
// balance change are dropped.
func (tx *EnhancedTransaction) ToRaw() *types.RawTransaction {
	if tx.Signature == "" || tx.FeePayer == "" {
		return nil
	}
	raw := &types.RawTransaction{
		Slot:        tx.Slot,
		Position:    -1,
		Timestamp:   tx.Timestamp,
		IsFailed:    tx.TransactionError != nil,
		Signature:   tx.Signature,
		Signer:      tx.FeePayer,
		Source:      tx.Source,
		Type:        tx.Type,
		NativeDelta: decimal.Zero,
	}

	decimals := make(map[string]int32)
	raw.AccountKeys = make([]string, 0, len(tx.AccountData))
	for _, ad := range tx.AccountData {
		raw.AccountKeys = append(raw.AccountKeys, ad.Account)
		if ad.Account == tx.FeePayer {
			raw.NativeDelta = decimal.NewFromInt(ad.NativeBalanceChange + tx.Fee)
		}
		for _, tbc := range ad.TokenBalanceChanges {
			amount, err := decimal.NewFromString(tbc.RawTokenAmount.TokenAmount)
			if err != nil {
				continue
			}
			decimals[tbc.Mint] = tbc.RawTokenAmount.Decimals
			raw.TokenDeltas = append(raw.TokenDeltas, types.TokenDelta{
				Owner:  tbc.UserAccount,
				Mint:   tbc.Mint,
				Amount: amount,
			})
		}
	}
	// The fee payer always comes first in the account list
	if len(raw.AccountKeys) == 0 || raw.AccountKeys[0] != tx.FeePayer {
		raw.AccountKeys = append([]string{tx.FeePayer}, raw.AccountKeys...)
	}

	for _, tt := range tx.TokenTransfers {
		d, ok := decimals[tt.Mint]
		if !ok {
			continue
		}
		raw.Transfers = append(raw.Transfers, types.TokenTransfer{
			From:   tt.FromUserAccount,
			To:     tt.ToUserAccount,
			Mint:   tt.Mint,
			Amount: decimal.NewFromFloat(tt.TokenAmount).Shift(d).Round(0),
		})
	}

	for _, ix := range tx.Instructions {
		top := types.Instruction{ProgramID: ix.ProgramId, Accounts: ix.Accounts}
		for _, in := range ix.InnerInstructions {
			top.Inner = append(top.Inner, types.Instruction{ProgramID: in.ProgramId, Accounts: in.Accounts})
		}
		raw.Instructions = append(raw.Instructions, top)
	}
	return raw
}
