package sol

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"testing"

	"sandwichcheck/sandwich"
	"sandwichcheck/types"
	"sandwichcheck/utils"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func splData(tag byte, amount uint64, extra ...byte) []byte {
	data := make([]byte, 9, 9+len(extra))
	data[0] = tag
	binary.LittleEndian.PutUint64(data[1:], amount)
	return append(data, extra...)
}

func base58JSON(t *testing.T, data []byte) string {
	out, err := json.Marshal(solana.Base58(data))
	require.NoError(t, err)
	return string(out)
}

// swapFixture is a Raydium buy: the signer pays 0.5 SOL and receives 1000 units of mint
// from the pool's token account through an inner SPL transfer.
type swapFixture struct {
	signer, signerAcc, poolAcc, pool, mint solana.PublicKey
	tx                                    *solana.Transaction
	meta                                  *rpc.TransactionMeta
}

func newSwapFixture(t *testing.T, innerData []byte) *swapFixture {
	f := &swapFixture{
		signer:    testKey(1),
		signerAcc: testKey(2),
		poolAcc:   testKey(3),
		pool:      testKey(4),
		mint:      testKey(5),
	}
	keys := solana.PublicKeySlice{
		f.signer, f.signerAcc, f.poolAcc, f.pool,
		solana.MustPublicKeyFromBase58(utils.RAYDIUM_AMM),
		solana.MustPublicKeyFromBase58(utils.TOKEN_PROGRAM),
	}
	f.tx = &solana.Transaction{
		Message: solana.Message{
			AccountKeys: keys,
			Instructions: []solana.CompiledInstruction{
				{ProgramIDIndex: 4, Accounts: []uint16{5, 3, 1, 2}, Data: solana.Base58{9}},
			},
		},
	}

	metaJSON := fmt.Sprintf(`{
		"err": null,
		"fee": 5000,
		"preBalances": [10000000000, 2039280, 2039280, 0, 1, 1],
		"postBalances": [9499995000, 2039280, 2039280, 0, 1, 1],
		"preTokenBalances": [
			{"accountIndex": 1, "mint": %[1]q, "owner": %[2]q, "uiTokenAmount": {"amount": "0", "decimals": 5, "uiAmountString": "0"}},
			{"accountIndex": 2, "mint": %[1]q, "owner": %[3]q, "uiTokenAmount": {"amount": "5000", "decimals": 5, "uiAmountString": "0.05"}}
		],
		"postTokenBalances": [
			{"accountIndex": 1, "mint": %[1]q, "owner": %[2]q, "uiTokenAmount": {"amount": "1000", "decimals": 5, "uiAmountString": "0.01"}},
			{"accountIndex": 2, "mint": %[1]q, "owner": %[3]q, "uiTokenAmount": {"amount": "4000", "decimals": 5, "uiAmountString": "0.04"}}
		],
		"innerInstructions": [
			{"index": 0, "instructions": [{"programIdIndex": 5, "accounts": [2, 1, 3], "data": %[4]s}]}
		],
		"logMessages": [],
		"loadedAddresses": {"writable": [], "readonly": []}
	}`, f.mint.String(), f.signer.String(), f.pool.String(), base58JSON(t, innerData))

	f.meta = new(rpc.TransactionMeta)
	require.NoError(t, json.Unmarshal([]byte(metaJSON), f.meta))
	return f
}

func TestConvertTransaction(t *testing.T) {
	f := newSwapFixture(t, splData(splTransfer, 1000))

	raw := ConvertTransaction("sig", 77, 1700000000, f.tx, f.meta)
	require.NotNil(t, raw)
	assert.Equal(t, "sig", raw.Signature)
	assert.Equal(t, uint64(77), raw.Slot)
	assert.Equal(t, -1, raw.Position)
	assert.Equal(t, f.signer.String(), raw.Signer)
	assert.Len(t, raw.AccountKeys, 6)
	assert.Equal(t, "-500000000", raw.NativeDelta.String())

	require.Len(t, raw.TokenDeltas, 2)
	assert.Equal(t, types.TokenDelta{Owner: f.signer.String(), Mint: f.mint.String(), Amount: raw.TokenDeltas[0].Amount}, raw.TokenDeltas[0])
	assert.Equal(t, "1000", raw.TokenDeltas[0].Amount.String())
	assert.Equal(t, f.pool.String(), raw.TokenDeltas[1].Owner)
	assert.Equal(t, "-1000", raw.TokenDeltas[1].Amount.String())

	require.Len(t, raw.Transfers, 1)
	assert.Equal(t, f.pool.String(), raw.Transfers[0].From)
	assert.Equal(t, f.signer.String(), raw.Transfers[0].To)
	assert.Equal(t, f.mint.String(), raw.Transfers[0].Mint)
	assert.Equal(t, "1000", raw.Transfers[0].Amount.String())

	require.Len(t, raw.Instructions, 1)
	assert.Equal(t, utils.RAYDIUM_AMM, raw.Instructions[0].ProgramID)
	require.Len(t, raw.Instructions[0].Inner, 1)
	assert.Equal(t, utils.TOKEN_PROGRAM, raw.Instructions[0].Inner[0].ProgramID)

	e := sandwich.Normalize(raw)
	require.NotNil(t, e)
	assert.Equal(t, types.Buy, e.Direction)
	assert.Equal(t, "500000000", e.AmountIn.String())
	assert.Equal(t, "1000", e.AmountOut.String())
	assert.Equal(t, "Raydium", e.Dex)
	assert.Equal(t, f.pool.String(), e.Pool)
}

func TestConvertTransferChecked(t *testing.T) {
	f := newSwapFixture(t, splData(splTransferChecked, 42, 5))
	raw := ConvertTransaction("sig", 1, 0, f.tx, f.meta)
	require.NotNil(t, raw)
	assert.Empty(t, raw.Transfers, "three accounts cannot be a TransferChecked")

	// source, mint, destination, authority
	tr, ok := decodeTransfer(utils.TOKEN_2022_PROGRAM,
		[]string{"srcAcc", "MintM", "dstAcc", "Auth"}, splData(splTransferChecked, 42, 5), nil)
	require.True(t, ok)
	assert.Equal(t, "Auth", tr.From)
	assert.Equal(t, "dstAcc", tr.To)
	assert.Equal(t, "MintM", tr.Mint)
	assert.Equal(t, "42", tr.Amount.String())
}

func TestDecodeTransferIgnoresOtherInstructions(t *testing.T) {
	accs := []string{"a", "b", "c", "d"}
	_, ok := decodeTransfer(utils.RAYDIUM_AMM, accs, splData(splTransfer, 1), nil)
	assert.False(t, ok, "not a token program")
	_, ok = decodeTransfer(utils.TOKEN_PROGRAM, accs, []byte{splTransfer, 1, 2}, nil)
	assert.False(t, ok, "short data")
	_, ok = decodeTransfer(utils.TOKEN_PROGRAM, accs, splData(7, 1), nil)
	assert.False(t, ok, "MintTo")
	_, ok = decodeTransfer(utils.TOKEN_PROGRAM, accs, splData(splTransfer, 1), nil)
	assert.False(t, ok, "mint unknown without balances")
}

func TestConvertTransactionFailedAndEmpty(t *testing.T) {
	f := newSwapFixture(t, splData(splTransfer, 1000))
	f.meta.Err = map[string]any{"InstructionError": []any{0, "Custom"}}
	raw := ConvertTransaction("sig", 1, 0, f.tx, f.meta)
	require.NotNil(t, raw)
	assert.True(t, raw.IsFailed)
	assert.Nil(t, sandwich.Normalize(raw))

	assert.Nil(t, ConvertTransaction("sig", 1, 0, nil, f.meta))
	assert.Nil(t, ConvertTransaction("sig", 1, 0, f.tx, nil))
	assert.Nil(t, ConvertTransaction("sig", 1, 0, &solana.Transaction{}, f.meta))
}

func TestConvertTransactionLoadedAddresses(t *testing.T) {
	f := newSwapFixture(t, splData(splTransfer, 1000))
	f.meta.LoadedAddresses.Writable = solana.PublicKeySlice{testKey(8)}
	f.meta.LoadedAddresses.ReadOnly = solana.PublicKeySlice{testKey(9)}
	f.tx.Message.Instructions[0].Accounts = []uint16{5, 6, 7}

	raw := ConvertTransaction("sig", 1, 0, f.tx, f.meta)
	require.NotNil(t, raw)
	assert.Len(t, raw.AccountKeys, 8)
	assert.Equal(t, []string{utils.TOKEN_PROGRAM, testKey(8).String(), testKey(9).String()}, raw.Instructions[0].Accounts)
}

func TestResolveDropsOutOfRange(t *testing.T) {
	keys := []string{"a", "b"}
	assert.Equal(t, []string{"a", "b"}, resolve(keys, []uint16{0, 1, 2}))
	assert.Equal(t, "", keyAt(keys, 5))
	assert.Equal(t, "b", keyAt(keys, uint8(1)))
}
