package sandwich

import (
	"sandwichcheck/types"
	"sandwichcheck/utils"

	"github.com/shopspring/decimal"
)

type Loss struct {
	LossLamports      decimal.Decimal
	LossUSD           float64
	BotProfitLamports decimal.Decimal
}

// ComputeLoss uses the bot's round trip in SOL as the victim's loss:
// back-run proceeds minus front-run spend, clamped at zero. This is a lower bound,
// the victim's real slippage is frequently larger.
func ComputeLoss(frontRun, victim, backRun *types.TradeEvent, solPriceUSD float64) Loss {
	profit := backRun.AmountOut.Sub(frontRun.AmountIn)
	if profit.IsNegative() {
		profit = decimal.Zero
	}
	usd := profit.Shift(-utils.SOL_DECIMALS).Mul(decimal.NewFromFloat(solPriceUSD)).InexactFloat64()
	return Loss{
		LossLamports:      profit,
		LossUSD:           usd,
		BotProfitLamports: profit,
	}
}
