package sandwich

import (
	"sort"

	"sandwichcheck/types"
)

// tokenBucket groups the other signers' trades of one token in a slot, split by direction.
// Both sides are sorted by position so candidate scans run in block order.
type tokenBucket struct {
	Buys  types.TradeEvents
	Sells types.TradeEvents
}

func buildTokenBuckets(trades types.TradeEvents, victimWallet string) map[string]*tokenBucket {
	buckets := make(map[string]*tokenBucket)
	for _, t := range trades {
		if t == nil || t.Signer == victimWallet {
			continue
		}
		b, ok := buckets[t.TokenMint]
		if !ok {
			b = &tokenBucket{}
			buckets[t.TokenMint] = b
		}
		switch t.Direction {
		case types.Buy:
			b.Buys = append(b.Buys, t)
		case types.Sell:
			b.Sells = append(b.Sells, t)
		}
	}

	for _, b := range buckets {
		sortByPosition(b.Buys)
		sortByPosition(b.Sells)
	}
	return buckets
}

// sortByPosition is stable so equal positions keep their input order.
func sortByPosition(trades types.TradeEvents) {
	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].Position < trades[j].Position
	})
}
