package db

import (
	"context"
	"fmt"

	"sandwichcheck/types"
)

type Database interface {
	Close() error
	EnsureDatabaseExists() error
	CreateTables() error
	DropTables() error

	Exec(query string, args ...any) error
	InsertAttacks(ctx context.Context, rows []*types.AttackRow) error
	InsertReport(ctx context.Context, row *types.ReportRow) error
}

// StoreReport writes the report summary and its attacks.
func StoreReport(ctx context.Context, d Database, report *types.WalletReport) error {
	if report == nil {
		return nil
	}
	if err := d.InsertAttacks(ctx, types.NewAttackRows(report.Attacks)); err != nil {
		return fmt.Errorf("insert attacks of %s: %w", report.Wallet, err)
	}
	if err := d.InsertReport(ctx, types.NewReportRow(report)); err != nil {
		return fmt.Errorf("insert report of %s: %w", report.Wallet, err)
	}
	return nil
}
