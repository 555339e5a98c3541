package sandwich

import (
	"sandwichcheck/types"
	"sandwichcheck/utils"

	"github.com/shopspring/decimal"
)

// tokenDelta is the signer's net change of one non-SOL token.
type tokenDelta struct {
	Mint   string
	Amount decimal.Decimal
}

// deltaStrategy extracts the signer's token deltas from one shape of transaction record.
// Strategies run in order and the first non-empty result wins.
type deltaStrategy func(tx *types.RawTransaction) []tokenDelta

var deltaStrategies = []deltaStrategy{
	signerBalanceDeltas,
	signerTransferDeltas,
}

// Normalize turns a raw transaction into the signer's trade, or nil when the transaction
// is not a recognizable swap. It never panics on partial records.
func Normalize(tx *types.RawTransaction) *types.TradeEvent {
	if tx == nil || tx.IsFailed || tx.Signature == "" || tx.Signer == "" {
		return nil
	}

	var deltas []tokenDelta
	for _, strategy := range deltaStrategies {
		if deltas = strategy(tx); len(deltas) > 0 {
			break
		}
	}
	if len(deltas) == 0 {
		return nil
	}

	// Largest absolute change, first one wins ties
	primary := deltas[0]
	for _, d := range deltas[1:] {
		if d.Amount.Abs().GreaterThan(primary.Amount.Abs()) {
			primary = d
		}
	}

	native := referenceDelta(tx)
	event := &types.TradeEvent{
		Signature:   tx.Signature,
		Slot:        tx.Slot,
		Position:    tx.Position,
		TokenMint:   primary.Mint,
		TokenSymbol: utils.TokenSymbol(primary.Mint),
		Signer:      tx.Signer,
		Timestamp:   tx.Timestamp,
	}

	if primary.Amount.IsPositive() {
		event.Direction = types.Buy
		event.AmountOut = primary.Amount
		event.AmountIn = decimal.Zero
		if spent, ok := firstDelta(deltas, primary.Mint, false); ok {
			event.AmountIn = spent.Abs()
		} else if native.IsNegative() {
			event.AmountIn = native.Abs()
		}
	} else {
		event.Direction = types.Sell
		event.AmountIn = primary.Amount.Abs()
		event.AmountOut = decimal.Zero
		if gained, ok := firstDelta(deltas, primary.Mint, true); ok {
			event.AmountOut = gained
		} else if native.IsPositive() {
			event.AmountOut = native
		}
	}
	if event.AmountIn.IsZero() && event.AmountOut.IsZero() {
		return nil
	}

	dex, pool := resolveVenue(tx)
	if pool == "" {
		return nil
	}
	event.Dex = dex
	event.Pool = pool
	return event
}

// NormalizeAll keeps the transactions that normalize to a trade, in input order.
func NormalizeAll(txs []*types.RawTransaction) types.TradeEvents {
	events := make(types.TradeEvents, 0, len(txs))
	for _, tx := range txs {
		if e := Normalize(tx); e != nil {
			events = append(events, e)
		}
	}
	return events
}

// firstDelta returns the first delta of another mint with the requested sign.
func firstDelta(deltas []tokenDelta, skipMint string, positive bool) (decimal.Decimal, bool) {
	for _, d := range deltas {
		if d.Mint == skipMint {
			continue
		}
		if positive && d.Amount.IsPositive() || !positive && d.Amount.IsNegative() {
			return d.Amount, true
		}
	}
	return decimal.Zero, false
}

// signerBalanceDeltas sums the signer's token balance changes per mint, WSOL excluded.
func signerBalanceDeltas(tx *types.RawTransaction) []tokenDelta {
	acc := newDeltaAccumulator()
	for _, d := range tx.TokenDeltas {
		if d.Owner != tx.Signer || d.Mint == utils.WSOL || d.Mint == "" {
			continue
		}
		acc.add(d.Mint, d.Amount)
	}
	return acc.nonZero()
}

// signerTransferDeltas rebuilds net deltas from transfers: received minus sent by the signer.
func signerTransferDeltas(tx *types.RawTransaction) []tokenDelta {
	acc := newDeltaAccumulator()
	for _, t := range tx.Transfers {
		if t.Mint == utils.WSOL || t.Mint == "" {
			continue
		}
		if t.To == tx.Signer {
			acc.add(t.Mint, t.Amount)
		}
		if t.From == tx.Signer {
			acc.add(t.Mint, t.Amount.Neg())
		}
	}
	return acc.nonZero()
}

// referenceDelta is the signer's SOL change with wrapped SOL folded in. WSOL balance
// changes take precedence over WSOL transfers so the same movement is not counted twice.
func referenceDelta(tx *types.RawTransaction) decimal.Decimal {
	total := tx.NativeDelta
	foundBalance := false
	for _, d := range tx.TokenDeltas {
		if d.Owner == tx.Signer && d.Mint == utils.WSOL {
			total = total.Add(d.Amount)
			foundBalance = true
		}
	}
	if foundBalance {
		return total
	}
	for _, t := range tx.Transfers {
		if t.Mint != utils.WSOL || t.From == t.To {
			continue
		}
		if t.To == tx.Signer {
			total = total.Add(t.Amount)
		}
		if t.From == tx.Signer {
			total = total.Sub(t.Amount)
		}
	}
	return total
}

type deltaAccumulator struct {
	order  []string
	totals map[string]decimal.Decimal
}

func newDeltaAccumulator() *deltaAccumulator {
	return &deltaAccumulator{totals: make(map[string]decimal.Decimal)}
}

func (a *deltaAccumulator) add(mint string, amount decimal.Decimal) {
	cur, ok := a.totals[mint]
	if !ok {
		a.order = append(a.order, mint)
		cur = decimal.Zero
	}
	a.totals[mint] = cur.Add(amount)
}

func (a *deltaAccumulator) nonZero() []tokenDelta {
	res := make([]tokenDelta, 0, len(a.order))
	for _, mint := range a.order {
		if amt := a.totals[mint]; !amt.IsZero() {
			res = append(res, tokenDelta{Mint: mint, Amount: amt})
		}
	}
	return res
}

// resolveVenue names the trading venue and its pool account. Instructions are scanned level
// by level (top-level first, then inner), then the account keys, then the indexer's label.
// Without a positional pool, the pool is derived from the token owners.
func resolveVenue(tx *types.RawTransaction) (dex string, pool string) {
	dex = utils.UNKNOWN_VENUE
	found := false

	level := tx.Instructions
	for len(level) > 0 && !found {
		var next []types.Instruction
		for _, ix := range level {
			venue, ok := utils.LookupVenue(ix.ProgramID)
			if !ok {
				next = append(next, ix.Inner...)
				continue
			}
			dex, found = venue.Name, true
			if venue.PoolAccountIndex < len(ix.Accounts) {
				pool = ix.Accounts[venue.PoolAccountIndex]
			}
			break
		}
		level = next
	}

	if !found {
		for _, key := range tx.AccountKeys {
			if venue, ok := utils.LookupVenue(key); ok {
				dex, found = venue.Name, true
				break
			}
		}
	}
	if !found && tx.Source != "" {
		dex = tx.Source
	}

	if pool == "" {
		pool = derivePool(tx)
	}
	return dex, pool
}

// derivePool picks the first token owner that is neither the signer nor a program,
// else the second account of the transaction.
func derivePool(tx *types.RawTransaction) string {
	for _, owner := range tx.Owners() {
		if owner == tx.Signer || utils.IsSystemProgram(owner) || utils.IsVenueProgram(owner) {
			continue
		}
		return owner
	}
	if len(tx.AccountKeys) > 1 {
		return tx.AccountKeys[1]
	}
	return ""
}
