package config

import "time"

// Path config
const (
	LogPath    = "./logs/"
	ConfigPath = "./"
)

// Network config
const (
	DefaultSolanaRpcURL = "https://api.mainnet-beta.solana.com"
	DefaultHeliusURL    = "https://api.helius.xyz"
	DefaultPriceURL     = "https://api.coingecko.com/api/v3/simple/price"

	DefaultTimeout = 20 * time.Second

	// Rate-limited calls back off 2s, 4s, 8s before giving up
	RETRY_BASE_DELAY  = 2 * time.Second
	RETRY_MAX_RETRIES = 3
)

// Analysis config
const (
	ANALYSIS_WINDOW_DAYS = 90
	ANALYSIS_WINDOW      = ANALYSIS_WINDOW_DAYS * 24 * time.Hour

	// Victim history, paged backward from the newest signature
	HISTORY_PAGE_LIMIT    = 1000
	HISTORY_MAX_PAGES     = 5
	HISTORY_MAX_TRADES    = 80
	HISTORY_PAGE_INTERVAL = 300 * time.Millisecond
	HISTORY_BATCH_PACING  = 150 * time.Millisecond
)

// Fetch config
const (
	SANDWICH_WINDOW = 500 // max distance (in positions) between a victim and a lead/trail trade

	UNIT_FETCH_BATCH_SIZE     = 100                    // tx details fetched per request
	UNIT_FETCH_BATCH_PACING   = 120 * time.Millisecond // sleep between two batches of the same unit
	UNIT_FETCH_BATCH_RETRY_IN = 2 * time.Second        // one extra try for a rate-limited batch

	MAX_UNIT_CHECKS      = 15 // distinct slots inspected per wallet
	UNIT_FETCH_PARALLEL  = 2  // slots in flight
	TX_DETAIL_PARALLEL   = 8  // getTransaction calls in flight inside a batch
	UNIT_CACHE_SIZE      = 64 // recently fetched slot signature lists
	REPORT_TOP_ATTACKERS = 5
)

// Quote config
const (
	FALLBACK_SOL_PRICE_USD = 150.0
	PRICE_CACHE_INTERVAL   = 5 * time.Minute
)

// API config
const (
	DefaultHTTPAddr      = ":8080"
	REPORT_CACHE_TTL     = time.Hour
	REPORT_CACHE_ENTRIES = 1000
	API_RATE_LIMIT       = 5
	API_RATE_WINDOW      = time.Minute
)
