package db

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"sandwichcheck/logger"
	"sandwichcheck/types"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/spf13/viper"
)

const DatabaseName = "sandwichcheck"

var validName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type ClickhouseDB struct {
	conn     driver.Conn
	database string
}

// ConfiguredDatabase returns CLICKHOUSE_DATABASE, or DatabaseName when unset.
func ConfiguredDatabase() (string, error) {
	database := viper.GetString("CLICKHOUSE_DATABASE")
	if database == "" {
		return DatabaseName, nil
	}
	if !validName.MatchString(database) {
		return "", fmt.Errorf("invalid CLICKHOUSE_DATABASE %q", database)
	}
	return database, nil
}

func NewClickhouse() (Database, error) {
	database, err := ConfiguredDatabase()
	if err != nil {
		return nil, err
	}
	opts := &clickhouse.Options{
		Addr: []string{viper.GetString("CLICKHOUSE_ADDR")},
		Auth: clickhouse.Auth{
			Database: database,
			Username: viper.GetString("CLICKHOUSE_USERNAME"),
			Password: viper.GetString("CLICKHOUSE_PASSWORD"),
		},
		DialTimeout:  5 * time.Second,
		Compression:  &clickhouse.Compression{Method: clickhouse.CompressionLZ4},
		MaxOpenConns: 10,
	}

	conn, err := clickhouse.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}
	return &ClickhouseDB{conn: conn, database: database}, nil
}

func (d *ClickhouseDB) Close() error {
	return d.conn.Close()
}

func (d *ClickhouseDB) EnsureDatabaseExists() error {
	query := `CREATE DATABASE IF NOT EXISTS ` + d.database
	if err := d.conn.Exec(context.Background(), query); err != nil {
		return fmt.Errorf("failed to ensure database exists: %w", err)
	}
	logger.GlobalLogger.Info("Database ensured to exist", "database", d.database)
	return nil
}

func tableQueries(database string) []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS ` + database + `.attacks
	(
		sandwichId String,
		kind LowCardinality(String),
		victimWallet String,
		attackerWallet String,
		slot UInt64,
		timestamp DateTime,
		pool String,
		tokenMint String,
		tokenSymbol String,
		dex LowCardinality(String),
		frontrunTxSig String,
		victimTxSig String,
		backrunTxSig String,
		lossLamports UInt64,
		lossUSD Float64,
		botProfitLamports UInt64,
		detectedAt DateTime
	)
	ENGINE = ReplacingMergeTree
	ORDER BY (victimWallet, slot, sandwichId)
	SETTINGS index_granularity = 8192`,

		`CREATE TABLE IF NOT EXISTS ` + database + `.reports
	(
		wallet String,
		analyzedAt DateTime,
		attackCount UInt32,
		totalLossLamports UInt64,
		totalLossSOL Float64,
		totalLossUSD Float64,
		solPriceUSD Float64,
		mostTargetedToken String,
		mostActiveAttacker String,
		fromTime DateTime,
		toTime DateTime
	)
	ENGINE = MergeTree
	ORDER BY (wallet, analyzedAt)
	SETTINGS index_granularity = 8192`,
	}
}

func (d *ClickhouseDB) CreateTables() error {
	for _, q := range tableQueries(d.database) {
		if err := d.conn.Exec(context.Background(), q); err != nil {
			return err
		}
		logger.GlobalLogger.Info("Check or create table in DB", "query", q)
	}
	return nil
}

func (d *ClickhouseDB) DropTables() error {
	rows, err := d.conn.Query(context.Background(), "SHOW TABLES FROM "+d.database)
	if err != nil {
		return fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, t)
	}

	for _, t := range tables {
		q := fmt.Sprintf("DROP TABLE IF EXISTS %s.%s", d.database, t)
		if err := d.conn.Exec(context.Background(), q); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", t, err)
		}
		logger.GlobalLogger.Info("Dropped table", "table", t)
	}
	return nil
}

func (d *ClickhouseDB) Exec(query string, args ...any) error {
	return d.conn.Exec(context.Background(), query, args...)
}

func (d *ClickhouseDB) InsertAttacks(ctx context.Context, rows []*types.AttackRow) error {
	if len(rows) == 0 {
		return nil
	}
	batch, err := d.conn.PrepareBatch(ctx, "INSERT INTO "+d.database+".attacks")
	if err != nil {
		return err
	}
	for _, row := range rows {
		if err := batch.AppendStruct(row); err != nil {
			return err
		}
	}
	return batch.Send()
}

func (d *ClickhouseDB) InsertReport(ctx context.Context, row *types.ReportRow) error {
	if row == nil {
		return nil
	}
	batch, err := d.conn.PrepareBatch(ctx, "INSERT INTO "+d.database+".reports")
	if err != nil {
		return err
	}
	if err := batch.AppendStruct(row); err != nil {
		return err
	}
	return batch.Send()
}
