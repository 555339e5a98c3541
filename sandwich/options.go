package sandwich

import (
	"time"

	"sandwichcheck/config"
	"sandwichcheck/utils"
)

// Options carries the detection limits. Tests shrink the delays.
type Options struct {
	Window int // max position distance for wide sandwiches and the fetch neighborhood

	BatchSize       int
	BatchPacing     time.Duration
	BatchRetryDelay time.Duration

	MaxUnits      int
	UnitsInFlight int

	HistoryPageLimit  int
	HistoryMaxPages   int
	HistoryMaxTrades  int
	HistoryPageDelay  time.Duration
	HistoryPacing     time.Duration
	AnalysisWindow    time.Duration
	TopAttackersLimit int

	Retry utils.RetryPolicy
}

func DefaultOptions() Options {
	return Options{
		Window:            config.SANDWICH_WINDOW,
		BatchSize:         config.UNIT_FETCH_BATCH_SIZE,
		BatchPacing:       config.UNIT_FETCH_BATCH_PACING,
		BatchRetryDelay:   config.UNIT_FETCH_BATCH_RETRY_IN,
		MaxUnits:          config.MAX_UNIT_CHECKS,
		UnitsInFlight:     config.UNIT_FETCH_PARALLEL,
		HistoryPageLimit:  config.HISTORY_PAGE_LIMIT,
		HistoryMaxPages:   config.HISTORY_MAX_PAGES,
		HistoryMaxTrades:  config.HISTORY_MAX_TRADES,
		HistoryPageDelay:  config.HISTORY_PAGE_INTERVAL,
		HistoryPacing:     config.HISTORY_BATCH_PACING,
		AnalysisWindow:    config.ANALYSIS_WINDOW,
		TopAttackersLimit: config.REPORT_TOP_ATTACKERS,
		Retry:             utils.DefaultRetryPolicy(),
	}
}

// withDefaults fills zero values so a partially built Options still works.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Window <= 0 {
		o.Window = d.Window
	}
	if o.BatchSize <= 0 {
		o.BatchSize = d.BatchSize
	}
	if o.MaxUnits <= 0 {
		o.MaxUnits = d.MaxUnits
	}
	if o.UnitsInFlight <= 0 {
		o.UnitsInFlight = d.UnitsInFlight
	}
	if o.HistoryPageLimit <= 0 {
		o.HistoryPageLimit = d.HistoryPageLimit
	}
	if o.HistoryMaxPages <= 0 {
		o.HistoryMaxPages = d.HistoryMaxPages
	}
	if o.HistoryMaxTrades <= 0 {
		o.HistoryMaxTrades = d.HistoryMaxTrades
	}
	if o.AnalysisWindow <= 0 {
		o.AnalysisWindow = d.AnalysisWindow
	}
	if o.TopAttackersLimit <= 0 {
		o.TopAttackersLimit = d.TopAttackersLimit
	}
	if o.Retry.Retryable == nil {
		o.Retry.Retryable = utils.IsRateLimited
	}
	return o
}
