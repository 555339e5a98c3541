package sol

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"sandwichcheck/config"
	"sandwichcheck/logger"
	"sandwichcheck/types"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

var SolanaRpcURL string

func GetSolanaRpcURL() string {
	if SolanaRpcURL != "" {
		return SolanaRpcURL
	}
	if url := viper.GetString("sol.rpc"); url != "" {
		return url
	}
	return config.DefaultSolanaRpcURL
}

// Client reaches a Solana JSON-RPC node. It serves both the signature listings and the
// transaction details the detector needs. Rate-limit failures are returned as they are;
// retrying is up to the caller.
type Client struct {
	rpc        *rpc.Client
	Cache      *UnitCache
	Parallel   int // getTransaction calls in flight per batch
	Commitment rpc.CommitmentType
	Logger     *slog.Logger
}

func NewClient(endpoint string) *Client {
	return &Client{
		rpc:        rpc.New(endpoint),
		Cache:      NewUnitCache(config.UNIT_CACHE_SIZE),
		Parallel:   config.TX_DETAIL_PARALLEL,
		Commitment: rpc.CommitmentFinalized,
	}
}

func (c *Client) log() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return logger.SolLogger
}

func (c *Client) Close() error {
	return c.rpc.Close()
}

// ListRecentSignatures returns up to limit signatures of account older than before, newest first.
func (c *Client) ListRecentSignatures(ctx context.Context, account string, before string, limit int) ([]types.SignatureInfo, error) {
	pk, err := solana.PublicKeyFromBase58(account)
	if err != nil {
		return nil, fmt.Errorf("invalid account %s: %w", account, err)
	}
	opts := &rpc.GetSignaturesForAddressOpts{
		Limit:      &limit,
		Commitment: c.Commitment,
	}
	if before != "" {
		sig, err := solana.SignatureFromBase58(before)
		if err != nil {
			return nil, fmt.Errorf("invalid cursor %s: %w", before, err)
		}
		opts.Before = sig
	}

	out, err := c.rpc.GetSignaturesForAddressWithOpts(ctx, pk, opts)
	if err != nil {
		return nil, fmt.Errorf("getSignaturesForAddress %s: %w", account, err)
	}

	infos := make([]types.SignatureInfo, 0, len(out))
	for _, s := range out {
		if s == nil {
			continue
		}
		info := types.SignatureInfo{
			Signature: s.Signature.String(),
			Slot:      s.Slot,
			IsFailed:  s.Err != nil,
		}
		if s.BlockTime != nil {
			info.BlockTime = int64(*s.BlockTime)
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// GetUnitSignatures returns the slot's transaction signatures in execution order.
func (c *Client) GetUnitSignatures(ctx context.Context, slot uint64) ([]string, error) {
	if c.Cache != nil {
		if sigs, ok := c.Cache.Get(slot); ok {
			c.log().Debug("Slot signatures from cache", "slot", slot, "count", len(sigs))
			return sigs, nil
		}
	}

	rewards := false
	maxVersion := uint64(0)
	out, err := c.rpc.GetBlockWithOpts(ctx, slot, &rpc.GetBlockOpts{
		TransactionDetails:             rpc.TransactionDetailsSignatures,
		Rewards:                        &rewards,
		Commitment:                     c.Commitment,
		MaxSupportedTransactionVersion: &maxVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("getBlock %d: %w", slot, err)
	}
	if out == nil {
		return nil, fmt.Errorf("getBlock %d: block not available", slot)
	}

	sigs := make([]string, 0, len(out.Signatures))
	for _, s := range out.Signatures {
		sigs = append(sigs, s.String())
	}
	if c.Cache != nil {
		c.Cache.Put(slot, sigs)
	}
	return sigs, nil
}

// GetTransactionDetails fetches every signature with getTransaction, Parallel at a time.
// Unknown signatures are left out of the result. Any other failure fails the whole batch.
func (c *Client) GetTransactionDetails(ctx context.Context, signatures []string) (map[string]*types.RawTransaction, error) {
	var mu sync.Mutex
	res := make(map[string]*types.RawTransaction, len(signatures))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, c.Parallel))
	for _, sig := range signatures {
		g.Go(func() error {
			raw, err := c.getTransaction(ctx, sig)
			if err != nil {
				return err
			}
			if raw == nil {
				return nil
			}
			mu.Lock()
			res[sig] = raw
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Client) getTransaction(ctx context.Context, sig string) (*types.RawTransaction, error) {
	txSig, err := solana.SignatureFromBase58(sig)
	if err != nil {
		c.log().Debug("Skip malformed signature", "signature", sig, "err", err)
		return nil, nil
	}

	maxVersion := uint64(0)
	out, err := c.rpc.GetTransaction(ctx, txSig, &rpc.GetTransactionOpts{
		Encoding:                       solana.EncodingBase64,
		Commitment:                     c.Commitment,
		MaxSupportedTransactionVersion: &maxVersion,
	})
	if errors.Is(err, rpc.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getTransaction %s: %w", sig, err)
	}
	if out == nil || out.Transaction == nil || out.Meta == nil {
		return nil, nil
	}

	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(out.Transaction.GetBinary()))
	if err != nil {
		c.log().Debug("Skip undecodable transaction", "signature", sig, "err", err)
		return nil, nil
	}

	var blockTime int64
	if out.BlockTime != nil {
		blockTime = int64(*out.BlockTime)
	}
	return ConvertTransaction(sig, out.Slot, blockTime, tx, out.Meta), nil
}
