package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"sandwichcheck/config"
	"sandwichcheck/types"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

// RedisCache shares reports between API instances. Values are the report JSON.
type RedisCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

var _ ReportCache = (*RedisCache)(nil)

func NewRedisCache(client redis.Cmdable, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = config.REPORT_CACHE_TTL
	}
	return &RedisCache{client: client, ttl: ttl}
}

// NewRedisCacheFromConfig connects to REDIS_ADDR. It returns nil when no address is configured.
func NewRedisCacheFromConfig(ctx context.Context) (*RedisCache, error) {
	addr := viper.GetString("REDIS_ADDR")
	if addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: viper.GetString("REDIS_PASSWORD"),
		DB:       viper.GetInt("REDIS_DB"),
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to reach redis at %s: %w", addr, err)
	}
	return NewRedisCache(client, config.REPORT_CACHE_TTL), nil
}

func (r *RedisCache) Get(ctx context.Context, wallet string) (*types.WalletReportJSON, bool, error) {
	data, err := r.client.Get(ctx, reportKey(wallet)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var report types.WalletReportJSON
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return &report, true, nil
}

func (r *RedisCache) Set(ctx context.Context, wallet string, report *types.WalletReportJSON) error {
	if report == nil {
		return nil
	}
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	return r.client.Set(ctx, reportKey(wallet), data, r.ttl).Err()
}
