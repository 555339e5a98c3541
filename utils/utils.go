package utils

import (
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

// Units
const (
	LAMPORTS_PER_SOL = 1e9 // 1 SOL = 10^9 lamports
	SOL_DECIMALS     = 9
)

var maxUint64 = decimal.NewFromBigInt(new(big.Int).SetUint64(math.MaxUint64), 0)

// ClampUint64 converts a base-unit amount to uint64, mapping negatives to 0 and
// overflow to MaxUint64.
func ClampUint64(v decimal.Decimal) uint64 {
	if !v.IsPositive() {
		return 0
	}
	if v.Cmp(maxUint64) >= 0 {
		return math.MaxUint64
	}
	return v.Truncate(0).BigInt().Uint64()
}

// ShortAddress keeps the first 8 characters of an address for log lines.
// e.g. ShortAddress("arsc4jbDnzaqcCLByyGo7fg7S2SmcFsWUzQuDtLZh2y") => "arsc4jbD..."
func ShortAddress(addr string) string {
	if len(addr) <= 8 {
		return addr
	}
	return addr[:8] + "..."
}

// LamportsToSol converts a lamport amount to SOL as a float for display.
func LamportsToSol(lamports decimal.Decimal) float64 {
	return lamports.Shift(-SOL_DECIMALS).InexactFloat64()
}
