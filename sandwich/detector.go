package sandwich

import (
	"context"
	"log/slog"
	"time"

	"sandwichcheck/logger"
	"sandwichcheck/types"

	MapSet "github.com/deckarep/golang-set/v2"
	"golang.org/x/sync/errgroup"
)

// unitCheck is one slot to inspect and the victim signatures it contains.
type unitCheck struct {
	Slot       uint64
	VictimSigs []string
}

// Detector fans slot fetches out with bounded concurrency and matches each slot on its own.
type Detector struct {
	Retriever *Retriever
	Opts      Options
	Now       func() time.Time
	Logger    *slog.Logger
}

func NewDetector(r *Retriever, opts Options) *Detector {
	return &Detector{Retriever: r, Opts: opts.withDefaults(), Now: time.Now}
}

func (d *Detector) log() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return logger.DetectLogger
}

// DetectSandwiches inspects at most MaxUnits distinct slots of the victim's trades, UnitsInFlight
// at a time. A slot that fails contributes nothing and never cancels the others. Attacks are
// returned grouped by slot in the order the slots first appear in victimTrades.
func (d *Detector) DetectSandwiches(ctx context.Context, victimWallet string, victimTrades types.TradeEvents, solPriceUSD float64) types.SandwichAttacks {
	units := planUnits(victimTrades, d.Opts.MaxUnits)
	d.log().Info("Check slots for sandwiches", "wallet", victimWallet, "trades", len(victimTrades), "slots", len(units))

	results := make([]types.SandwichAttacks, len(units))
	var g errgroup.Group
	g.SetLimit(d.Opts.UnitsInFlight)

	for i, unit := range units {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			begin := time.Now()
			trades := d.Retriever.FetchUnitTrades(ctx, unit.Slot, unit.VictimSigs)
			if len(trades) == 0 {
				return nil
			}
			sortByPosition(trades)
			results[i] = FindSandwiches(victimWallet, trades, d.Opts.Window, solPriceUSD, d.Now)
			d.log().Info("Slot checked", "slot", unit.Slot, "trades", len(trades), "sandwiches", len(results[i]), "time_cost", time.Since(begin).String())
			return nil
		})
	}
	_ = g.Wait()

	attacks := make(types.SandwichAttacks, 0)
	for _, r := range results {
		attacks = append(attacks, r...)
	}
	return attacks
}

// planUnits dedupes the victim's slots in order of first appearance, keeping at most maxUnits.
func planUnits(victimTrades types.TradeEvents, maxUnits int) []*unitCheck {
	units := make([]*unitCheck, 0)
	index := make(map[uint64]*unitCheck)
	seenSigs := MapSet.NewThreadUnsafeSet[string]()

	for _, t := range victimTrades {
		if t == nil || !seenSigs.Add(t.Signature) {
			continue
		}
		if u, ok := index[t.Slot]; ok {
			u.VictimSigs = append(u.VictimSigs, t.Signature)
			continue
		}
		if len(units) >= maxUnits {
			continue
		}
		u := &unitCheck{Slot: t.Slot, VictimSigs: []string{t.Signature}}
		index[t.Slot] = u
		units = append(units, u)
	}
	return units
}
