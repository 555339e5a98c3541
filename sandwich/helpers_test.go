package sandwich

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"sandwichcheck/logger"
	"sandwichcheck/types"
	"sandwichcheck/utils"

	"github.com/shopspring/decimal"
)

const (
	victimWallet = "Victim1111111111111111111111111111111111111"
	tokenX       = "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"
	tokenY       = "JUPyiwrYJFskUPiHa7hkeR8VUtAeFoSYbKedZNsDvCN"
	poolX        = "PoolX11111111111111111111111111111111111111"
)

func init() {
	logger.Discard()
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.BatchPacing = 0
	opts.BatchRetryDelay = time.Millisecond
	opts.HistoryPageDelay = 0
	opts.HistoryPacing = 0
	opts.Retry = utils.RetryPolicy{BaseDelay: time.Millisecond, MaxRetries: 3, Retryable: utils.IsRateLimited}
	return opts
}

func fixedNow() time.Time {
	return time.Date(2024, 6, 12, 15, 0, 0, 0, time.UTC)
}

func trade(sig, signer string, pos int, dir types.Direction, in, out int64) *types.TradeEvent {
	return &types.TradeEvent{
		Signature: sig,
		Slot:      500,
		Position:  pos,
		Pool:      poolX,
		TokenMint: tokenX,
		Direction: dir,
		AmountIn:  decimal.NewFromInt(in),
		AmountOut: decimal.NewFromInt(out),
		Signer:    signer,
		Timestamp: fixedNow().Unix(),
		Dex:       "Raydium",
	}
}

// rawSwap builds a Raydium swap record for signer: a buy gains tokenAmt of mint for solAmt
// lamports, a sell the reverse.
func rawSwap(sig, signer, mint string, dir types.Direction, tokenAmt, solAmt int64) *types.RawTransaction {
	tokenDelta, nativeDelta := tokenAmt, -solAmt
	if dir == types.Sell {
		tokenDelta, nativeDelta = -tokenAmt, solAmt
	}
	return &types.RawTransaction{
		Signature:   sig,
		Signer:      signer,
		Position:    -1,
		Timestamp:   fixedNow().Unix(),
		AccountKeys: []string{signer, poolX, utils.RAYDIUM_AMM},
		NativeDelta: decimal.NewFromInt(nativeDelta),
		TokenDeltas: []types.TokenDelta{
			{Owner: signer, Mint: mint, Amount: decimal.NewFromInt(tokenDelta)},
			{Owner: "PoolAuthority111111111111111111111111111111", Mint: mint, Amount: decimal.NewFromInt(-tokenDelta)},
		},
		Instructions: []types.Instruction{
			{ProgramID: utils.RAYDIUM_AMM, Accounts: []string{utils.TOKEN_PROGRAM, poolX}},
		},
	}
}

type fakeLedger struct {
	mu sync.Mutex

	unitSigs map[uint64][]string
	unitErrs map[uint64]error
	txs      map[string]*types.RawTransaction
	history  []types.SignatureInfo
	listErr  error

	// detailErrs is consumed one entry per GetTransactionDetails call; nil entries succeed
	detailErrs  []error
	detailCalls int
	requested   []string
	unitCalls   int
	unitDelay   time.Duration
	inFlight    int
	maxInFlight int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		unitSigs: make(map[uint64][]string),
		unitErrs: make(map[uint64]error),
		txs:      make(map[string]*types.RawTransaction),
	}
}

// addUnit registers the slot's ordered signature list and the transactions behind it.
func (l *fakeLedger) addUnit(slot uint64, txs ...*types.RawTransaction) {
	for _, tx := range txs {
		tx.Slot = slot
		l.unitSigs[slot] = append(l.unitSigs[slot], tx.Signature)
		l.txs[tx.Signature] = tx
	}
}

func (l *fakeLedger) ListRecentSignatures(ctx context.Context, account string, before string, limit int) ([]types.SignatureInfo, error) {
	if l.listErr != nil {
		return nil, l.listErr
	}
	start := 0
	if before != "" {
		for i, info := range l.history {
			if info.Signature == before {
				start = i + 1
				break
			}
		}
	}
	end := min(start+limit, len(l.history))
	return append([]types.SignatureInfo{}, l.history[start:end]...), nil
}

func (l *fakeLedger) GetUnitSignatures(ctx context.Context, slot uint64) ([]string, error) {
	l.mu.Lock()
	l.unitCalls++
	l.inFlight++
	l.maxInFlight = max(l.maxInFlight, l.inFlight)
	l.mu.Unlock()
	defer func() {
		l.mu.Lock()
		l.inFlight--
		l.mu.Unlock()
	}()

	if l.unitDelay > 0 {
		time.Sleep(l.unitDelay)
	}
	if err, ok := l.unitErrs[slot]; ok {
		return nil, err
	}
	sigs, ok := l.unitSigs[slot]
	if !ok {
		return nil, fmt.Errorf("Slot %d was skipped, or missing due to ledger jump to recent snapshot", slot)
	}
	return sigs, nil
}

func (l *fakeLedger) GetTransactionDetails(ctx context.Context, signatures []string) (map[string]*types.RawTransaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	call := l.detailCalls
	l.detailCalls++
	if call < len(l.detailErrs) && l.detailErrs[call] != nil {
		return nil, l.detailErrs[call]
	}
	l.requested = append(l.requested, signatures...)

	res := make(map[string]*types.RawTransaction, len(signatures))
	for _, sig := range signatures {
		if tx, ok := l.txs[sig]; ok {
			res[sig] = tx
		}
	}
	return res, nil
}

var errRateLimited = &utils.HTTPStatusError{StatusCode: 429, Body: "Too Many Requests"}
var errBoom = errors.New("boom")

type fixedQuoter float64

func (q fixedQuoter) SolPriceUSD(context.Context) float64 { return float64(q) }
