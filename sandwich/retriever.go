package sandwich

import (
	"context"
	"log/slog"

	"sandwichcheck/logger"
	"sandwichcheck/types"
	"sandwichcheck/utils"
)

// Retriever fetches the trades that share a slot with the victim.
type Retriever struct {
	Ledger Ledger
	Opts   Options
	Logger *slog.Logger
}

func NewRetriever(l Ledger, opts Options) *Retriever {
	return &Retriever{Ledger: l, Opts: opts.withDefaults()}
}

func (r *Retriever) log() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return logger.DetectLogger
}

// FetchUnitTrades returns the normalized trades within Window positions of the victim's
// signatures in the slot, sorted by position. A slot the node cannot serve yields no trades,
// and a batch that keeps failing is left out rather than failing the slot.
func (r *Retriever) FetchUnitTrades(ctx context.Context, slot uint64, victimSigs []string) types.TradeEvents {
	events := make(types.TradeEvents, 0)

	sigs, err := utils.Retry(ctx, r.Opts.Retry, r.log(), "getBlock", func(ctx context.Context) ([]string, error) {
		return r.Ledger.GetUnitSignatures(ctx, slot)
	})
	if err != nil {
		if utils.IsUnavailableUnit(err) {
			r.log().Debug("Slot not available", "slot", slot, "err", err)
		} else {
			r.log().Warn("Failed to get slot signatures", "slot", slot, "err", err)
		}
		return events
	}
	if len(sigs) == 0 {
		return events
	}

	start, end := neighborhood(sigs, victimSigs, r.Opts.Window)
	window := sigs[start:end]
	r.log().Debug("Fetch slot neighborhood", "slot", slot, "total", len(sigs), "start", start, "end", end)

	for i := 0; i < len(window); i += r.Opts.BatchSize {
		batchEnd := min(i+r.Opts.BatchSize, len(window))
		batch := window[i:batchEnd]

		details, err := r.fetchBatch(ctx, slot, batch)
		if err != nil {
			// Partial data beats no data
			r.log().Warn("Skip batch", "slot", slot, "from", start+i, "to", start+batchEnd, "err", err)
		}
		for j, sig := range batch {
			raw, ok := details[sig]
			if !ok || raw == nil {
				continue
			}
			tx := *raw
			tx.Position = start + i + j
			if tx.Slot == 0 {
				tx.Slot = slot
			}
			if e := Normalize(&tx); e != nil {
				events = append(events, e)
			}
		}

		if batchEnd < len(window) {
			if err := utils.SleepContext(ctx, r.Opts.BatchPacing); err != nil {
				break
			}
		}
	}

	sortByPosition(events)
	return events
}

// fetchBatch gets one batch of details. A rate-limited batch gets one more try after
// BatchRetryDelay; any other failure is returned at once.
func (r *Retriever) fetchBatch(ctx context.Context, slot uint64, batch []string) (map[string]*types.RawTransaction, error) {
	fetch := func(ctx context.Context) (map[string]*types.RawTransaction, error) {
		return r.Ledger.GetTransactionDetails(ctx, batch)
	}

	details, err := utils.Retry(ctx, r.Opts.Retry, r.log(), "getTransactions", fetch)
	if err == nil || !utils.IsRateLimited(err) {
		return details, err
	}

	r.log().Info("Batch rate limited, waiting before one more try", "slot", slot, "wait", r.Opts.BatchRetryDelay.String())
	if err := utils.SleepContext(ctx, r.Opts.BatchRetryDelay); err != nil {
		return nil, err
	}
	return utils.Retry(ctx, r.Opts.Retry, r.log(), "getTransactions", fetch)
}

// neighborhood bounds [min victim - window, max victim + window] inside sigs, end exclusive.
// Without a victim in the list the whole slot is used.
func neighborhood(sigs []string, victimSigs []string, window int) (int, int) {
	victims := make(map[string]struct{}, len(victimSigs))
	for _, s := range victimSigs {
		victims[s] = struct{}{}
	}

	lo, hi := -1, -1
	for i, s := range sigs {
		if _, ok := victims[s]; !ok {
			continue
		}
		if lo < 0 {
			lo = i
		}
		hi = i
	}
	if lo < 0 {
		return 0, len(sigs)
	}
	return max(0, lo-window), min(len(sigs), hi+window+1)
}
