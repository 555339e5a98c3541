package sandwich

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"sandwichcheck/logger"
	"sandwichcheck/types"
)

// Analyzer produces a wallet's sandwich report: history, quote, per-slot detection, aggregation.
type Analyzer struct {
	History    *History
	Detector   *Detector
	Aggregator *Aggregator
	Quoter     PriceQuoter
	// Validate rejects malformed wallet addresses before any network call.
	Validate func(wallet string) error
	// Mock replaces history and detection with MockAttacks.
	Mock   bool
	Logger *slog.Logger
}

func NewAnalyzer(l Ledger, quoter PriceQuoter, validate func(string) error, opts Options) *Analyzer {
	opts = opts.withDefaults()
	agg := NewAggregator()
	agg.TopAttackers = opts.TopAttackersLimit
	agg.AnalysisWindow = opts.AnalysisWindow
	return &Analyzer{
		History:    NewHistory(l, opts),
		Detector:   NewDetector(NewRetriever(l, opts), opts),
		Aggregator: agg,
		Quoter:     quoter,
		Validate:   validate,
	}
}

func (a *Analyzer) log() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return logger.DetectLogger
}

// Analyze returns a complete or partial report, or an error with no report at all.
func (a *Analyzer) Analyze(ctx context.Context, wallet string) (*types.WalletReport, error) {
	if a.Validate != nil {
		if err := a.Validate(wallet); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
	}

	if a.Mock {
		price := a.solPrice(ctx)
		attacks := MockAttacks(wallet, a.Aggregator.now(), price)
		return a.Aggregator.Aggregate(wallet, attacks, price), nil
	}

	begin := time.Now()
	trades, err := a.History.FetchVictimTrades(ctx, wallet)
	if err != nil {
		return nil, err
	}

	price := a.solPrice(ctx)
	attacks := a.Detector.DetectSandwiches(ctx, wallet, trades, price)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := a.Aggregator.Aggregate(wallet, attacks, price)
	a.log().Info("Wallet analyzed", "wallet", wallet, "trades", len(trades), "sandwiches", report.AttackCount,
		"loss_sol", report.TotalLossSOL, "time_cost", time.Since(begin).String())
	return report, nil
}

func (a *Analyzer) solPrice(ctx context.Context) float64 {
	if a.Quoter == nil {
		return 0
	}
	return a.Quoter.SolPriceUSD(ctx)
}
