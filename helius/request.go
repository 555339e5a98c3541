package helius

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"sandwichcheck/config"
	"sandwichcheck/logger"
	"sandwichcheck/types"
	"sandwichcheck/utils"

	"github.com/spf13/viper"
)

var HeliusURL string

func GetHeliusURL() string {
	if HeliusURL != "" {
		return HeliusURL
	}
	if u := viper.GetString("helius.url"); u != "" {
		return u
	}
	return config.DefaultHeliusURL
}

// GetApiKey reads helius.api-key, then HELIUS_API_KEY, then the api-key parameter of sol.rpc.
func GetApiKey() string {
	if key := viper.GetString("helius.api-key"); key != "" {
		return key
	}
	if key := viper.GetString("HELIUS_API_KEY"); key != "" {
		return key
	}
	return ApiKeyFromRpcURL(viper.GetString("sol.rpc"))
}

// ApiKeyFromRpcURL extracts the api-key query parameter of a Helius RPC URL, if any.
func ApiKeyFromRpcURL(rpcURL string) string {
	u, err := url.Parse(rpcURL)
	if err != nil {
		return ""
	}
	return u.Query().Get("api-key")
}

// Client fetches parsed transactions from the Helius enhanced transactions API.
type Client struct {
	URL    string
	ApiKey string
	// Only transactions Helius labels SWAP are returned
	SwapsOnly bool
	Logger    *slog.Logger
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{URL: strings.TrimRight(baseURL, "/"), ApiKey: apiKey, SwapsOnly: true}
}

func (c *Client) log() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return logger.SolLogger
}

type transactionsRequest struct {
	Transactions []string `json:"transactions"`
}

// GetTransactions parses up to 100 signatures in one call. Unknown signatures are absent
// from the result.
func (c *Client) GetTransactions(ctx context.Context, signatures []string) ([]EnhancedTransaction, error) {
	reqUrl := c.URL + "/v0/transactions/?api-key=" + url.QueryEscape(c.ApiKey)

	var result []EnhancedTransaction
	err := utils.PostUrlResponse(ctx, reqUrl, transactionsRequest{Transactions: signatures}, &result, c.log())
	if err != nil {
		return nil, fmt.Errorf("GetTransactions failed: %w", err)
	}
	return result, nil
}

// GetTransactionDetails serves the detector's detail lookups from one enhanced API call.
func (c *Client) GetTransactionDetails(ctx context.Context, signatures []string) (map[string]*types.RawTransaction, error) {
	txs, err := c.GetTransactions(ctx, signatures)
	if err != nil {
		return nil, err
	}

	res := make(map[string]*types.RawTransaction, len(txs))
	skipped := 0
	for i := range txs {
		if c.SwapsOnly && txs[i].Type != TypeSwap {
			skipped++
			continue
		}
		if raw := txs[i].ToRaw(); raw != nil {
			res[raw.Signature] = raw
		}
	}
	c.log().Debug("Parsed transactions", "requested", len(signatures), "returned", len(txs), "kept", len(res), "skipped", skipped)
	return res, nil
}
