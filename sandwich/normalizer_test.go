package sandwich

import (
	"testing"

	"sandwichcheck/types"
	"sandwichcheck/utils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	signer = "Signer1111111111111111111111111111111111111"
	usdc   = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestNormalizeBuyFromBalanceDeltas(t *testing.T) {
	tx := rawSwap("sig1", signer, tokenX, types.Buy, 1_000_000, 500_000_000)
	tx.Slot, tx.Position = 42, 7

	e := Normalize(tx)
	require.NotNil(t, e)
	assert.Equal(t, types.Buy, e.Direction)
	assert.True(t, e.AmountOut.Equal(dec(1_000_000)))
	assert.True(t, e.AmountIn.Equal(dec(500_000_000)))
	assert.Equal(t, tokenX, e.TokenMint)
	assert.Equal(t, "BONK", e.TokenSymbol)
	assert.Equal(t, "Raydium", e.Dex)
	assert.Equal(t, poolX, e.Pool)
	assert.Equal(t, uint64(42), e.Slot)
	assert.Equal(t, 7, e.Position)
	assert.Equal(t, signer, e.Signer)
}

func TestNormalizeSellIntoAnotherToken(t *testing.T) {
	tx := &types.RawTransaction{
		Signature:   "sig2",
		Signer:      signer,
		AccountKeys: []string{signer, poolX},
		TokenDeltas: []types.TokenDelta{
			{Owner: signer, Mint: tokenX, Amount: dec(-1000)},
			{Owner: signer, Mint: usdc, Amount: dec(300)},
		},
		Instructions: []types.Instruction{{ProgramID: utils.METEORA_DLMM, Accounts: []string{"a", poolX}}},
	}
	e := Normalize(tx)
	require.NotNil(t, e)
	assert.Equal(t, types.Sell, e.Direction)
	assert.Equal(t, tokenX, e.TokenMint)
	assert.True(t, e.AmountIn.Equal(dec(1000)))
	assert.True(t, e.AmountOut.Equal(dec(300)))
	assert.Equal(t, "Meteora DLMM", e.Dex)
}

func TestNormalizeSumsMultipleTokenAccounts(t *testing.T) {
	tx := rawSwap("sig3", signer, tokenX, types.Buy, 600, 10)
	tx.TokenDeltas = append(tx.TokenDeltas, types.TokenDelta{Owner: signer, Mint: tokenX, Amount: dec(400)})
	e := Normalize(tx)
	require.NotNil(t, e)
	assert.True(t, e.AmountOut.Equal(dec(1000)))
}

func TestNormalizeFallsBackToTransfers(t *testing.T) {
	tx := &types.RawTransaction{
		Signature:   "sig4",
		Signer:      signer,
		AccountKeys: []string{signer, poolX},
		Transfers: []types.TokenTransfer{
			{From: signer, To: "PoolAuth", Mint: utils.WSOL, Amount: dec(200_000_000)},
			{From: "PoolAuth", To: signer, Mint: tokenX, Amount: dec(500)},
			{From: signer, To: "Fee", Mint: tokenX, Amount: dec(100)},
		},
		Instructions: []types.Instruction{{ProgramID: utils.RAYDIUM_CP, Accounts: []string{"a", poolX}}},
	}
	e := Normalize(tx)
	require.NotNil(t, e)
	assert.Equal(t, types.Buy, e.Direction)
	assert.True(t, e.AmountOut.Equal(dec(400)))
	assert.True(t, e.AmountIn.Equal(dec(200_000_000)), "WSOL sent is the SOL leg")
}

func TestNormalizeZeroNetTransfersIsNotATrade(t *testing.T) {
	tx := &types.RawTransaction{
		Signature:   "sig5",
		Signer:      signer,
		AccountKeys: []string{signer, poolX},
		Transfers: []types.TokenTransfer{
			{From: "A", To: signer, Mint: tokenX, Amount: dec(100)},
			{From: signer, To: "B", Mint: tokenX, Amount: dec(100)},
		},
	}
	assert.Nil(t, Normalize(tx))
}

func TestNormalizeRejectsPartialRecords(t *testing.T) {
	assert.Nil(t, Normalize(nil))
	assert.Nil(t, Normalize(&types.RawTransaction{Signature: "x"}))

	failed := rawSwap("sig6", signer, tokenX, types.Buy, 10, 10)
	failed.IsFailed = true
	assert.Nil(t, Normalize(failed))

	solOnly := &types.RawTransaction{Signature: "sig7", Signer: signer, NativeDelta: dec(-5000), AccountKeys: []string{signer, "B"}}
	assert.Nil(t, Normalize(solOnly))
}

func TestNormalizeMergesWrappedSol(t *testing.T) {
	tx := rawSwap("sig8", signer, tokenX, types.Buy, 1000, 0)
	tx.NativeDelta = dec(-2_039_280) // token account rent
	tx.TokenDeltas = append(tx.TokenDeltas, types.TokenDelta{Owner: signer, Mint: utils.WSOL, Amount: dec(-100_000_000)})

	e := Normalize(tx)
	require.NotNil(t, e)
	assert.Equal(t, tokenX, e.TokenMint, "WSOL is never the traded token")
	assert.True(t, e.AmountIn.Equal(dec(102_039_280)))
}

func TestNormalizeBuyWithoutCounterLegKeepsZero(t *testing.T) {
	tx := rawSwap("sig9", signer, tokenX, types.Buy, 1000, 0)
	tx.NativeDelta = dec(5)
	e := Normalize(tx)
	require.NotNil(t, e)
	assert.True(t, e.AmountIn.IsZero())
	assert.True(t, e.AmountOut.Equal(dec(1000)))
}

func TestNormalizePrimaryTieKeepsFirst(t *testing.T) {
	tx := &types.RawTransaction{
		Signature:   "sig10",
		Signer:      signer,
		AccountKeys: []string{signer, poolX},
		TokenDeltas: []types.TokenDelta{
			{Owner: signer, Mint: tokenY, Amount: dec(-500)},
			{Owner: signer, Mint: tokenX, Amount: dec(500)},
		},
	}
	e := Normalize(tx)
	require.NotNil(t, e)
	assert.Equal(t, tokenY, e.TokenMint)
	assert.Equal(t, types.Sell, e.Direction)
	assert.True(t, e.AmountOut.Equal(dec(500)))
}

func TestNormalizeVenueResolution(t *testing.T) {
	base := func() *types.RawTransaction {
		return &types.RawTransaction{
			Signature: "sig11",
			Signer:    signer,
			TokenDeltas: []types.TokenDelta{
				{Owner: signer, Mint: tokenX, Amount: dec(10)},
				{Owner: "PoolAuthority", Mint: tokenX, Amount: dec(-10)},
			},
			NativeDelta: dec(-100),
			AccountKeys: []string{signer, "SecondKey"},
		}
	}

	t.Run("inner instruction with whirlpool layout", func(t *testing.T) {
		tx := base()
		tx.Instructions = []types.Instruction{{
			ProgramID: "Router111111111111111111111111111111111111",
			Inner: []types.Instruction{
				{ProgramID: utils.TOKEN_PROGRAM, Accounts: []string{"x", "y"}},
				{ProgramID: utils.ORCA_WHIRLPOOL, Accounts: []string{utils.TOKEN_PROGRAM, "authority", "Whirlpool1"}},
			},
		}}
		e := Normalize(tx)
		require.NotNil(t, e)
		assert.Equal(t, "Orca", e.Dex)
		assert.Equal(t, "Whirlpool1", e.Pool)
	})

	t.Run("top level wins over inner", func(t *testing.T) {
		tx := base()
		tx.Instructions = []types.Instruction{
			{ProgramID: utils.JUPITER_V6, Accounts: []string{"a", "JupPool"}, Inner: []types.Instruction{
				{ProgramID: utils.RAYDIUM_AMM, Accounts: []string{"a", "RayPool"}},
			}},
		}
		e := Normalize(tx)
		require.NotNil(t, e)
		assert.Equal(t, "Jupiter", e.Dex)
		assert.Equal(t, "JupPool", e.Pool)
	})

	t.Run("program in account keys", func(t *testing.T) {
		tx := base()
		tx.AccountKeys = append(tx.AccountKeys, utils.PUMP_FUN)
		e := Normalize(tx)
		require.NotNil(t, e)
		assert.Equal(t, "pump.fun", e.Dex)
		assert.Equal(t, "PoolAuthority", e.Pool, "pool derived from token owners")
	})

	t.Run("indexer label", func(t *testing.T) {
		tx := base()
		tx.Source = "RAYDIUM"
		e := Normalize(tx)
		require.NotNil(t, e)
		assert.Equal(t, "RAYDIUM", e.Dex)
	})

	t.Run("unknown venue falls back to second account", func(t *testing.T) {
		tx := base()
		tx.TokenDeltas[1].Owner = utils.TOKEN_PROGRAM
		e := Normalize(tx)
		require.NotNil(t, e)
		assert.Equal(t, utils.UNKNOWN_VENUE, e.Dex)
		assert.Equal(t, "SecondKey", e.Pool)
	})

	t.Run("no pool at all", func(t *testing.T) {
		tx := base()
		tx.TokenDeltas[1].Owner = signer
		tx.AccountKeys = []string{signer}
		assert.Nil(t, Normalize(tx))
	})
}

func TestNormalizeAllKeepsOrder(t *testing.T) {
	txs := []*types.RawTransaction{
		rawSwap("a", signer, tokenX, types.Buy, 1, 1),
		{Signature: "junk"},
		rawSwap("b", signer, tokenX, types.Sell, 1, 1),
	}
	events := NormalizeAll(txs)
	require.Len(t, events, 2)
	assert.Equal(t, "a", events[0].Signature)
	assert.Equal(t, "b", events[1].Signature)
}
