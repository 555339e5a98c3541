package sandwich

import (
	"sort"
	"time"

	"sandwichcheck/types"
	"sandwichcheck/utils"

	"github.com/shopspring/decimal"
)

const base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

var (
	mockTokens = []string{
		"DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263",
		"JUPyiwrYJFskUPiHa7hkeR8VUtAeFoSYbKedZNsDvCN",
		utils.WSOL,
		"HZ1JovNiVvGrGNiiYvEozEVgZ58xaU3RKwX8eACQBCt3",
		"WENWENvqqNya429ubCdR81ZmD69brwQaaBYY6p91oHPk",
	}
	mockDexes = []string{"Raydium", "Orca", "Meteora", "pump.fun"}
)

// MockAttacks fabricates a deterministic set of attacks for a wallet. The same wallet
// always gets the same attacks relative to now. Used by the --mock mode of check and serve.
func MockAttacks(wallet string, now time.Time, solPriceUSD float64) types.SandwichAttacks {
	seed := 0
	for _, c := range wallet {
		seed += int(c)
	}

	bots := make([]string, 0, len(utils.KnownSandwichBots))
	for bot := range utils.KnownSandwichBots {
		bots = append(bots, bot)
	}
	sort.Strings(bots)

	count := 5 + seed%20
	attacks := make(types.SandwichAttacks, 0, count)
	const day = 24 * time.Hour

	for i := 0; i < count; i++ {
		mint := mockTokens[(seed+i)%len(mockTokens)]
		dex := mockDexes[(seed+i)%len(mockDexes)]
		bot := bots[(seed+i)%len(bots)]
		slot := uint64(250000000 + seed + i*1000)
		ts := now.Add(-time.Duration(i)*3*day - time.Duration(seed)*time.Second).Unix()
		loss := decimal.NewFromInt(int64(50000000 + ((seed*(i+1))%1000)*1000000))

		front := &types.TradeEvent{
			Signature:   mockString(seed*31+i*17, 88),
			Slot:        slot,
			Position:    i * 3,
			Pool:        mockString(seed+i, 44),
			TokenMint:   mint,
			TokenSymbol: utils.TokenSymbol(mint),
			Direction:   types.Buy,
			AmountIn:    loss.Mul(decimal.NewFromInt(2)),
			AmountOut:   loss.Mul(decimal.NewFromInt(3)),
			Signer:      bot,
			Timestamp:   ts,
			Dex:         dex,
		}
		victim := *front
		victim.Signature = mockString(seed*31+i*17+7, 88)
		victim.Position = i*3 + 1
		victim.Signer = wallet
		back := *front
		back.Signature = mockString(seed*31+i*17+14, 88)
		back.Position = i*3 + 2
		back.Direction = types.Sell
		back.AmountIn, back.AmountOut = front.AmountOut, front.AmountIn.Add(loss)

		computed := ComputeLoss(front, &victim, &back, solPriceUSD)
		attacks = append(attacks, &types.SandwichAttack{
			ID:                makeSandwichID(front.Signature, victim.Signature, back.Signature),
			Kind:              types.Classic,
			VictimWallet:      wallet,
			AttackerWallet:    bot,
			Slot:              slot,
			Pool:              front.Pool,
			TokenMint:         mint,
			TokenSymbol:       front.TokenSymbol,
			Dex:               dex,
			Victim:            &victim,
			FrontRun:          front,
			BackRun:           &back,
			LossLamports:      computed.LossLamports,
			LossUSD:           computed.LossUSD,
			BotProfitLamports: computed.BotProfitLamports,
			DetectedAt:        time.Unix(ts, 0),
		})
	}

	sort.SliceStable(attacks, func(i, j int) bool { return attacks[i].Slot > attacks[j].Slot })
	return attacks
}

// mockString draws n base58 characters from a linear congruential generator.
func mockString(seed int, n int) string {
	buf := make([]byte, n)
	s := int64(seed)
	for k := range buf {
		s = (s*1103515245 + 12345) & 0x7fffffff
		buf[k] = base58Alphabet[s%int64(len(base58Alphabet))]
	}
	return string(buf)
}
