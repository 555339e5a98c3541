package sol

import (
	"math/big"

	"sandwichcheck/types"
	"sandwichcheck/utils"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"
)

// SPL Token instruction tags
const (
	splTransfer        = 3
	splTransferChecked = 12
)

type index interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 | ~int | ~int64
}

// resolve maps account indexes to addresses, dropping indexes outside keys.
func resolve[T index](keys []string, idx []T) []string {
	out := make([]string, 0, len(idx))
	for _, i := range idx {
		if int(i) >= 0 && int(i) < len(keys) {
			out = append(out, keys[int(i)])
		}
	}
	return out
}

func keyAt[T index](keys []string, i T) string {
	if int(i) >= 0 && int(i) < len(keys) {
		return keys[int(i)]
	}
	return ""
}

type tokenAccount struct {
	Owner string
	Mint  string
	Pre   decimal.Decimal
	Post  decimal.Decimal
}

// ConvertTransaction builds the RawTransaction of a decoded ledger transaction. Keys loaded
// from address lookup tables follow the static keys, writable first, as the runtime orders them.
func ConvertTransaction(sig string, slot uint64, blockTime int64, tx *solana.Transaction, meta *rpc.TransactionMeta) *types.RawTransaction {
	if tx == nil || meta == nil || len(tx.Message.AccountKeys) == 0 {
		return nil
	}

	keys := make([]string, 0, len(tx.Message.AccountKeys)+len(meta.LoadedAddresses.Writable)+len(meta.LoadedAddresses.ReadOnly))
	for _, k := range tx.Message.AccountKeys {
		keys = append(keys, k.String())
	}
	for _, k := range meta.LoadedAddresses.Writable {
		keys = append(keys, k.String())
	}
	for _, k := range meta.LoadedAddresses.ReadOnly {
		keys = append(keys, k.String())
	}

	raw := &types.RawTransaction{
		Slot:        slot,
		Position:    -1,
		Timestamp:   blockTime,
		IsFailed:    meta.Err != nil,
		Signature:   sig,
		Signer:      keys[0],
		AccountKeys: keys,
		NativeDelta: decimal.Zero,
	}

	// The fee payer's lamport change, fee added back
	if len(meta.PreBalances) > 0 && len(meta.PostBalances) > 0 {
		pre := decimalFromUint64(meta.PreBalances[0])
		post := decimalFromUint64(meta.PostBalances[0])
		raw.NativeDelta = post.Sub(pre).Add(decimalFromUint64(meta.Fee))
	}

	accounts, order := tokenAccounts(keys, meta)
	raw.TokenDeltas = tokenDeltas(accounts, order)

	for i, ix := range tx.Message.Instructions {
		top := types.Instruction{
			ProgramID: keyAt(keys, ix.ProgramIDIndex),
			Accounts:  resolve(keys, ix.Accounts),
		}
		if t, ok := decodeTransfer(top.ProgramID, top.Accounts, ix.Data, accounts); ok {
			raw.Transfers = append(raw.Transfers, t)
		}
		for _, inner := range meta.InnerInstructions {
			if int(inner.Index) != i {
				continue
			}
			for _, in := range inner.Instructions {
				ins := types.Instruction{
					ProgramID: keyAt(keys, in.ProgramIDIndex),
					Accounts:  resolve(keys, in.Accounts),
				}
				if t, ok := decodeTransfer(ins.ProgramID, ins.Accounts, in.Data, accounts); ok {
					raw.Transfers = append(raw.Transfers, t)
				}
				top.Inner = append(top.Inner, ins)
			}
		}
		raw.Instructions = append(raw.Instructions, top)
	}

	return raw
}

// tokenAccounts indexes token balances by token account address, in order of first appearance.
func tokenAccounts(keys []string, meta *rpc.TransactionMeta) (map[string]*tokenAccount, []string) {
	accounts := make(map[string]*tokenAccount)
	order := make([]string, 0)

	visit := func(balances []rpc.TokenBalance, post bool) {
		for _, b := range balances {
			addr := keyAt(keys, b.AccountIndex)
			if addr == "" || b.UiTokenAmount == nil {
				continue
			}
			amount, err := decimal.NewFromString(b.UiTokenAmount.Amount)
			if err != nil {
				continue
			}
			acc, ok := accounts[addr]
			if !ok {
				acc = &tokenAccount{Mint: b.Mint.String(), Pre: decimal.Zero, Post: decimal.Zero}
				if b.Owner != nil {
					acc.Owner = b.Owner.String()
				}
				accounts[addr] = acc
				order = append(order, addr)
			}
			if post {
				acc.Post = amount
			} else {
				acc.Pre = amount
			}
		}
	}
	visit(meta.PreTokenBalances, false)
	visit(meta.PostTokenBalances, true)
	return accounts, order
}

// tokenDeltas sums token account changes per (owner, mint), dropping zero results.
func tokenDeltas(accounts map[string]*tokenAccount, order []string) []types.TokenDelta {
	type key struct{ owner, mint string }
	sums := make(map[key]decimal.Decimal)
	keysInOrder := make([]key, 0)
	for _, addr := range order {
		acc := accounts[addr]
		k := key{acc.Owner, acc.Mint}
		if _, ok := sums[k]; !ok {
			keysInOrder = append(keysInOrder, k)
			sums[k] = decimal.Zero
		}
		sums[k] = sums[k].Add(acc.Post.Sub(acc.Pre))
	}

	deltas := make([]types.TokenDelta, 0, len(keysInOrder))
	for _, k := range keysInOrder {
		if sums[k].IsZero() {
			continue
		}
		deltas = append(deltas, types.TokenDelta{Owner: k.owner, Mint: k.mint, Amount: sums[k]})
	}
	return deltas
}

// decodeTransfer reads an SPL Token Transfer or TransferChecked instruction. Token accounts are
// mapped to their owners when the balances name them; otherwise the authority stands in for the
// sender and the destination account for the receiver.
func decodeTransfer(programID string, accounts []string, data []byte, tokenAccs map[string]*tokenAccount) (types.TokenTransfer, bool) {
	if programID != utils.TOKEN_PROGRAM && programID != utils.TOKEN_2022_PROGRAM {
		return types.TokenTransfer{}, false
	}
	if len(data) < 9 {
		return types.TokenTransfer{}, false
	}

	var src, dst, auth, mint string
	switch data[0] {
	case splTransfer:
		if len(accounts) < 3 {
			return types.TokenTransfer{}, false
		}
		src, dst, auth = accounts[0], accounts[1], accounts[2]
	case splTransferChecked:
		if len(accounts) < 4 {
			return types.TokenTransfer{}, false
		}
		src, mint, dst, auth = accounts[0], accounts[1], accounts[2], accounts[3]
	default:
		return types.TokenTransfer{}, false
	}

	amount, err := bin.NewBinDecoder(data[1:9]).ReadUint64(bin.LE)
	if err != nil {
		return types.TokenTransfer{}, false
	}

	t := types.TokenTransfer{From: auth, To: dst, Mint: mint, Amount: decimalFromUint64(amount)}
	if acc, ok := tokenAccs[src]; ok {
		if acc.Owner != "" {
			t.From = acc.Owner
		}
		if t.Mint == "" {
			t.Mint = acc.Mint
		}
	}
	if acc, ok := tokenAccs[dst]; ok {
		if acc.Owner != "" {
			t.To = acc.Owner
		}
		if t.Mint == "" {
			t.Mint = acc.Mint
		}
	}
	if t.Mint == "" {
		return types.TokenTransfer{}, false
	}
	return t, true
}

func decimalFromUint64(v uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(v), 0)
}
