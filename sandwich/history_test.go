package sandwich

import (
	"context"
	"fmt"
	"testing"
	"time"

	"sandwichcheck/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fillHistory gives the victim n swaps, one per hour going back from fixedNow.
func fillHistory(l *fakeLedger, n int) {
	for i := 0; i < n; i++ {
		sig := fmt.Sprintf("h-%d", i)
		ts := fixedNow().Add(-time.Duration(i) * time.Hour).Unix()
		tx := rawSwap(sig, victimWallet, tokenX, types.Buy, 100, 10)
		tx.Slot = uint64(1000 - i)
		tx.Timestamp = ts
		l.txs[sig] = tx
		l.history = append(l.history, types.SignatureInfo{Signature: sig, Slot: tx.Slot, BlockTime: ts})
	}
}

func testHistory(l *fakeLedger, opts Options) *History {
	h := NewHistory(l, opts)
	h.Now = fixedNow
	return h
}

func TestFetchVictimTradesPages(t *testing.T) {
	l := newFakeLedger()
	fillHistory(l, 25)

	opts := testOptions()
	opts.HistoryPageLimit = 10
	opts.BatchSize = 3
	trades, err := testHistory(l, opts).FetchVictimTrades(context.Background(), victimWallet)
	require.NoError(t, err)
	require.Len(t, trades, 25)
	assert.Equal(t, "h-0", trades[0].Signature)
	assert.Equal(t, "h-24", trades[24].Signature)
	assert.Equal(t, uint64(1000), trades[0].Slot)
}

func TestFetchVictimTradesStopsAtCutoff(t *testing.T) {
	l := newFakeLedger()
	fillHistory(l, 10)

	opts := testOptions()
	opts.AnalysisWindow = 4*time.Hour + time.Minute
	trades, err := testHistory(l, opts).FetchVictimTrades(context.Background(), victimWallet)
	require.NoError(t, err)
	assert.Len(t, trades, 5)
	assert.NotContains(t, l.requested, "h-5")
}

func TestFetchVictimTradesSkipsFailedAndForeign(t *testing.T) {
	l := newFakeLedger()
	fillHistory(l, 4)
	l.history[1].IsFailed = true
	l.txs["h-2"].Signer = "SomeoneElse"

	trades, err := testHistory(l, testOptions()).FetchVictimTrades(context.Background(), victimWallet)
	require.NoError(t, err)
	require.Len(t, trades, 2)
	assert.Equal(t, "h-0", trades[0].Signature)
	assert.Equal(t, "h-3", trades[1].Signature)
	assert.NotContains(t, l.requested, "h-1")
}

func TestFetchVictimTradesMaxTradesAndPages(t *testing.T) {
	l := newFakeLedger()
	fillHistory(l, 50)

	opts := testOptions()
	opts.HistoryMaxTrades = 7
	opts.BatchSize = 5
	trades, err := testHistory(l, opts).FetchVictimTrades(context.Background(), victimWallet)
	require.NoError(t, err)
	assert.Len(t, trades, 7)
	assert.Equal(t, 2, l.detailCalls)

	l = newFakeLedger()
	fillHistory(l, 50)
	opts = testOptions()
	opts.HistoryPageLimit = 10
	opts.HistoryMaxPages = 2
	trades, err = testHistory(l, opts).FetchVictimTrades(context.Background(), victimWallet)
	require.NoError(t, err)
	assert.Len(t, trades, 20)
}

func TestFetchVictimTradesSkipsFailedBatch(t *testing.T) {
	l := newFakeLedger()
	fillHistory(l, 6)
	l.detailErrs = []error{errBoom}

	opts := testOptions()
	opts.BatchSize = 3
	trades, err := testHistory(l, opts).FetchVictimTrades(context.Background(), victimWallet)
	require.NoError(t, err)
	require.Len(t, trades, 3)
	assert.Equal(t, "h-3", trades[0].Signature)
}

func TestFetchVictimTradesListingFails(t *testing.T) {
	l := newFakeLedger()
	l.listErr = errBoom

	trades, err := testHistory(l, testOptions()).FetchVictimTrades(context.Background(), victimWallet)
	assert.Nil(t, trades)
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	assert.ErrorIs(t, err, errBoom)
}

func TestFetchVictimTradesEmptyWallet(t *testing.T) {
	trades, err := testHistory(newFakeLedger(), testOptions()).FetchVictimTrades(context.Background(), victimWallet)
	require.NoError(t, err)
	assert.NotNil(t, trades)
	assert.Empty(t, trades)
}
