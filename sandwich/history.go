package sandwich

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"sandwichcheck/logger"
	"sandwichcheck/types"
	"sandwichcheck/utils"
)

// History collects the trades a wallet signed within the analysis window, newest first.
type History struct {
	Ledger Ledger
	Opts   Options
	Now    func() time.Time
	Logger *slog.Logger
}

func NewHistory(l Ledger, opts Options) *History {
	return &History{Ledger: l, Opts: opts.withDefaults(), Now: time.Now}
}

func (h *History) log() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return logger.DetectLogger
}

// FetchVictimTrades pages the wallet's signatures backward until the analysis window
// cutoff, HistoryMaxPages pages or HistoryMaxTrades trades. Failing to list signatures
// is fatal and returns ErrUpstreamUnavailable.
func (h *History) FetchVictimTrades(ctx context.Context, wallet string) (types.TradeEvents, error) {
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	cutoff := now().Add(-h.Opts.AnalysisWindow).Unix()
	trades := make(types.TradeEvents, 0)
	before := ""

	for page := 0; page < h.Opts.HistoryMaxPages; page++ {
		infos, err := utils.Retry(ctx, h.Opts.Retry, h.log(), "getSignaturesForAddress", func(ctx context.Context) ([]types.SignatureInfo, error) {
			return h.Ledger.ListRecentSignatures(ctx, wallet, before, h.Opts.HistoryPageLimit)
		})
		if err != nil {
			return nil, fmt.Errorf("%w: list signatures of %s: %w", ErrUpstreamUnavailable, wallet, err)
		}
		if len(infos) == 0 {
			break
		}

		reachedCutoff := false
		candidates := make([]string, 0, len(infos))
		for _, info := range infos {
			if info.BlockTime != 0 && info.BlockTime < cutoff {
				reachedCutoff = true
				break
			}
			if info.IsFailed {
				continue
			}
			candidates = append(candidates, info.Signature)
		}
		h.log().Debug("History page", "wallet", wallet, "page", page, "signatures", len(infos), "candidates", len(candidates))

		full, err := h.collectTrades(ctx, wallet, candidates, &trades)
		if err != nil {
			return nil, err
		}
		if full || reachedCutoff || len(infos) < h.Opts.HistoryPageLimit {
			break
		}

		before = infos[len(infos)-1].Signature
		if err := utils.SleepContext(ctx, h.Opts.HistoryPageDelay); err != nil {
			return nil, err
		}
	}

	h.log().Info("Wallet trades collected", "wallet", wallet, "trades", len(trades))
	return trades, nil
}

// collectTrades fetches details batch by batch and appends the wallet's own trades.
// It reports true once HistoryMaxTrades is reached.
func (h *History) collectTrades(ctx context.Context, wallet string, sigs []string, trades *types.TradeEvents) (bool, error) {
	for i := 0; i < len(sigs); i += h.Opts.BatchSize {
		batch := sigs[i:min(i+h.Opts.BatchSize, len(sigs))]

		details, err := utils.Retry(ctx, h.Opts.Retry, h.log(), "getTransactions", func(ctx context.Context) (map[string]*types.RawTransaction, error) {
			return h.Ledger.GetTransactionDetails(ctx, batch)
		})
		if err != nil {
			if ctx.Err() != nil {
				return false, ctx.Err()
			}
			h.log().Warn("Skip history batch", "wallet", wallet, "from", i, "size", len(batch), "err", err)
		}

		for _, sig := range batch {
			raw, ok := details[sig]
			if !ok || raw == nil || raw.Signer != wallet {
				continue
			}
			if e := Normalize(raw); e != nil {
				*trades = append(*trades, e)
				if len(*trades) >= h.Opts.HistoryMaxTrades {
					return true, nil
				}
			}
		}

		if i+h.Opts.BatchSize < len(sigs) {
			if err := utils.SleepContext(ctx, h.Opts.HistoryPacing); err != nil {
				return false, err
			}
		}
	}
	return false, nil
}
