package utils

import (
	"strings"

	"sandwichcheck/config"
	"sandwichcheck/logger"

	"github.com/spf13/viper"
)

const TOKEN_PROGRAM = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
const TOKEN_2022_PROGRAM = "TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb"
const SYSTEM_PROGRAM = "11111111111111111111111111111111"

const SOL = "SOL"
const WSOL = "So11111111111111111111111111111111111111112"

const UNKNOWN_VENUE = "Unknown"

// Venue describes a trading program and where its instructions carry the pool account.
type Venue struct {
	Name             string
	PoolAccountIndex int
}

const (
	RAYDIUM_AMM       = "675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8"
	RAYDIUM_CLMM      = "CAMMCzo5YL8w4VFF8KVHrK22GGUsp5VTaW7grrKgrWqK"
	RAYDIUM_CP        = "CPMMoo8L3F4NbTegBCKVNunggL7H1ZpdTHKxQB5qKP1C"
	ORCA_WHIRLPOOL    = "whirLbMiicVdio4qvUfM5KAg6Ct8VwpYzGff3uctyCc"
	METEORA_DLMM      = "LBUZKhRxPF3XUpBCjp4YzTKgLccjZhTSDM9YuVaPwxo"
	METEORA_POOLS     = "Eo7WjKq67rjJQSZxS6z3YkapzY3eMj6Xy8X5EQVn5UaB"
	PUMP_FUN          = "6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P"
	JUPITER_V6        = "JUP6LkbZbjS1jKKwapdHNy74zcZ3tLUZoi5QNyVTaV4"
	JUPITER_V4        = "JUP4Fb2cqiRUcaTHdrPC8h2gNsA2ETXiPDD33WcGuJB"
	JUPITER_DCA       = "DCAK36VfExkPdAkYUQg6ewgxyinvcEyPLyHjRbmveKFw"
	PHOENIX           = "PhoeNiXZ8ByJGLkxNfZRnkUfjvmuYqLR89jjFHGqdXY"
	LIFINITY          = "2wT8Yq49kHgDzXuPxZSaeLaH1qbmGXtEyPy64bL7aD3c"
	OPENBOOK          = "srmqPvymJeFKQ4zGQed1GFppgkRHL9kaELCbyksJtPX"
	MEV_ROUTER        = "MEViEnscUm6tsQRoGd9h6nLQaQspKj7DB2M5FwM3Xvz"
	defaultPoolIndex  = 1
	whirlpoolPoolIndx = 2
)

var venuePrograms = map[string]Venue{
	RAYDIUM_AMM:    {Name: "Raydium", PoolAccountIndex: defaultPoolIndex},
	RAYDIUM_CLMM:   {Name: "Raydium CLMM", PoolAccountIndex: defaultPoolIndex},
	RAYDIUM_CP:     {Name: "Raydium CP", PoolAccountIndex: defaultPoolIndex},
	ORCA_WHIRLPOOL: {Name: "Orca", PoolAccountIndex: whirlpoolPoolIndx},
	METEORA_DLMM:   {Name: "Meteora DLMM", PoolAccountIndex: defaultPoolIndex},
	METEORA_POOLS:  {Name: "Meteora", PoolAccountIndex: defaultPoolIndex},
	PUMP_FUN:       {Name: "pump.fun", PoolAccountIndex: defaultPoolIndex},
	JUPITER_V6:     {Name: "Jupiter", PoolAccountIndex: defaultPoolIndex},
	JUPITER_V4:     {Name: "Jupiter v4", PoolAccountIndex: defaultPoolIndex},
	JUPITER_DCA:    {Name: "Jupiter DCA", PoolAccountIndex: defaultPoolIndex},
	PHOENIX:        {Name: "Phoenix", PoolAccountIndex: defaultPoolIndex},
	LIFINITY:       {Name: "Lifinity", PoolAccountIndex: defaultPoolIndex},
	OPENBOOK:       {Name: "OpenBook", PoolAccountIndex: defaultPoolIndex},
	MEV_ROUTER:     {Name: "MEV Router", PoolAccountIndex: defaultPoolIndex},
}

// Programs that never hold a pool: system, token, ATA, compute budget, memo
var systemPrograms = map[string]struct{}{
	SYSTEM_PROGRAM:     {},
	TOKEN_PROGRAM:      {},
	TOKEN_2022_PROGRAM: {},
	"ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL": {},
	"ComputeBudget111111111111111111111111111111":  {},
	"MemoSq4gqABAXKb96qnH8TysNcWxMyWCqXgDLGmfcHr":  {},
	"Memo1UhkJBfCR6MNB3fhkQLbbp5Z9QpKET4gGJQzPDB":  {},
}

var KnownTokens = map[string]string{
	WSOL: "SOL",
	"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v": "USDC",
	"Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB": "USDT",
	"mSoLzYCxHdYgdzU16g5QSh3i5K3z3KZK7ytfqcJm7So":  "mSOL",
	"DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263": "BONK",
	"JUPyiwrYJFskUPiHa7hkeR8VUtAeFoSYbKedZNsDvCN":  "JUP",
	"7vfCXTUXx5WJV5JADk17DUJ4ksgau7utNKj4b963voxs": "ETH",
	"rndrizKT3MK1iimdxRdWabcF7Zg7AR5T4nud4EkHBof":  "RNDR",
	"HZ1JovNiVvGrGNiiYvEozEVgZ58xaU3RKwX8eACQBCt3": "PYTH",
	"WENWENvqqNya429ubCdR81ZmD69brwQaaBYY6p91oHPk": "WEN",
}

// Sandwich bots seen in public MEV dashboards, keyed by signer
var KnownSandwichBots = map[string]string{
	"arsc4jbDnzaqcCLByyGo7fg7S2SmcFsWUzQuDtLZh2y":  "arsc",
	"JUPzBjEFSqECCsHHJgSCVFbPVzpjhBSsE1C7bAh15RK":  "jito-sandwich-1",
	"A77HErqtfN1hLFhkQJM8mLFBpJQmBqYWGTwENhSJyAYo": "sandwich-bot-3",
	"5quBtoiQqxF9Jv6KYKctB59NT3gtJD2Y65kdnB1Uev3h": "sandwich-bot-4",
	"9nnLbotNTbcUCyrqE1hTnPzSJaFy1gSXJV8QfnkeLBKx": "sandwich-bot-5",
	"HWEoBxYs7ssKuudEjzjmpfJVX7Dvi7wescFsVx2L5yoY": "sandwich-bot-6",
}

func init() {
	viper.SetConfigName("programs")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(config.ConfigPath)

	if err := viper.MergeInConfig(); err != nil {
		logger.GlobalLogger.Warn("Error reading programs.yaml file, only built-in venues are known", "err", err)
	}
}

// LookupVenue returns the trading venue for a program id. Built-in venues come first,
// then entries under "labeled" in programs.yaml (name only, pool at account 1).
func LookupVenue(programID string) (Venue, bool) {
	if v, ok := venuePrograms[programID]; ok {
		return v, true
	}
	if IsLabeledPrograms(programID) {
		return Venue{Name: viper.GetString("labeled." + strings.ToLower(programID)), PoolAccountIndex: defaultPoolIndex}, true
	}
	return Venue{}, false
}

func IsVenueProgram(programID string) bool {
	_, ok := LookupVenue(programID)
	return ok
}

func IsSystemProgram(programID string) bool {
	_, ok := systemPrograms[programID]
	return ok
}

func IsLabeledPrograms(name string) bool {
	return viper.IsSet("labeled." + strings.ToLower(name))
}

func TokenSymbol(mint string) string {
	return KnownTokens[mint]
}

func KnownBotAlias(wallet string) string {
	return KnownSandwichBots[wallet]
}
