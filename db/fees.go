package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ipfs/go-cid"
	"github.com/shopspring/decimal"

	"github.com/jhuhnke/solana-walrus/db/fielddef"
	"github.com/jhuhnke/solana-walrus/saga/types"
)

type LedgerStatus string

const (
	// LedgerPending means a transaction may have been submitted but its
	// outcome is unknown
	LedgerPending LedgerStatus = "pending"
	// LedgerConfirmed means the transaction is confirmed on the ledger
	LedgerConfirmed LedgerStatus = "confirmed"
)

// FeeEntry records one fee collection, keyed by its idempotency key.
type FeeEntry struct {
	IdempotencyKey  string
	UploadID        cid.Cid
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Payer           string
	Treasury        string
	AmountRequested types.Amount
	FeePercent      decimal.Decimal
	AmountDebited   types.Amount
	SourceTxID      string
	Status          LedgerStatus
}

// Outcome rebuilds the fee outcome of a confirmed entry.
func (e *FeeEntry) Outcome() (types.FeeOutcome, error) {
	out, err := types.SplitFee(e.AmountRequested, e.FeePercent)
	if err != nil {
		return types.FeeOutcome{}, err
	}
	if out.AmountDebited() != e.AmountDebited {
		return types.FeeOutcome{}, fmt.Errorf("fee ledger entry %s: debited %s does not match %s of %s",
			e.IdempotencyKey, e.AmountDebited, e.FeePercent, e.AmountRequested)
	}
	out.SourceTxID = e.SourceTxID
	return out, nil
}

var feeFields = []string{"IdempotencyKey", "UploadID", "CreatedAt", "UpdatedAt", "Payer", "Treasury",
	"AmountRequested", "FeePercent", "AmountDebited", "SourceTxID", "Status"}

type FeeLedgerDB struct {
	db *sql.DB
}

func NewFeeLedgerDB(db *sql.DB) *FeeLedgerDB {
	return &FeeLedgerDB{db: db}
}

func feeDef(e *FeeEntry, pct *string) map[string]fielddef.FieldDefinition {
	return map[string]fielddef.FieldDefinition{
		"IdempotencyKey":  &fielddef.FieldDef{F: &e.IdempotencyKey},
		"UploadID":        &fielddef.CidFieldDef{F: &e.UploadID},
		"CreatedAt":       &fielddef.FieldDef{F: &e.CreatedAt},
		"UpdatedAt":       &fielddef.FieldDef{F: &e.UpdatedAt},
		"Payer":           &fielddef.FieldDef{F: &e.Payer},
		"Treasury":        &fielddef.FieldDef{F: &e.Treasury},
		"AmountRequested": &fielddef.AmountFieldDef{F: &e.AmountRequested},
		"FeePercent":      &fielddef.FieldDef{F: pct},
		"AmountDebited":   &fielddef.AmountFieldDef{F: &e.AmountDebited},
		"SourceTxID":      &fielddef.FieldDef{F: &e.SourceTxID},
		"Status":          &fielddef.FieldDef{F: &e.Status},
	}
}

// InsertPending records that a fee transfer is about to be submitted.
func (f *FeeLedgerDB) InsertPending(ctx context.Context, e *FeeEntry) error {
	now := time.Now()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now
	e.Status = LedgerPending
	pct := e.FeePercent.String()
	return insert(ctx, "FeeLedger", feeFields, joinFields(feeFields), feeDef(e, &pct), f.db)
}

// Confirm marks the entry as confirmed by the transaction txID.
func (f *FeeLedgerDB) Confirm(ctx context.Context, key string, txID string) error {
	qry := "UPDATE FeeLedger SET Status = ?, SourceTxID = ?, UpdatedAt = ? WHERE IdempotencyKey = ?"
	res, err := f.db.ExecContext(ctx, qry, LedgerConfirmed, txID, time.Now(), key)
	if err != nil {
		return fmt.Errorf("confirming fee ledger entry %s: %w", key, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("fee ledger entry %s: %w", key, ErrNotFound)
	}
	return nil
}

// Delete removes a pending entry whose transfer is known not to have
// landed on the ledger.
func (f *FeeLedgerDB) Delete(ctx context.Context, key string) error {
	_, err := f.db.ExecContext(ctx, "DELETE FROM FeeLedger WHERE IdempotencyKey = ? AND Status = ?", key, LedgerPending)
	return err
}

func (f *FeeLedgerDB) ByKey(ctx context.Context, key string) (*FeeEntry, error) {
	qry := "SELECT " + joinFields(feeFields) + " FROM FeeLedger WHERE IdempotencyKey = ?"
	row := f.db.QueryRowContext(ctx, qry, key)
	e, err := scanFeeEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("fee ledger entry %s: %w", key, ErrNotFound)
	}
	return e, err
}

func (f *FeeLedgerDB) List(ctx context.Context) ([]*FeeEntry, error) {
	qry := "SELECT " + joinFields(feeFields) + " FROM FeeLedger ORDER BY CreatedAt DESC"
	rows, err := f.db.QueryContext(ctx, qry)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	entries := make([]*FeeEntry, 0, 16)
	for rows.Next() {
		e, err := scanFeeEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// TotalCollected is the sum of all confirmed fees.
func (f *FeeLedgerDB) TotalCollected(ctx context.Context) (types.Amount, error) {
	entries, err := f.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("getting total collected: %w", err)
	}
	var total types.Amount
	for _, e := range entries {
		if e.Status == LedgerConfirmed {
			total += e.AmountDebited
		}
	}
	return total, nil
}

func scanFeeEntry(row Scannable) (*FeeEntry, error) {
	var e FeeEntry
	var pct string
	if err := scan(feeFields, feeDef(&e, &pct), row); err != nil {
		return nil, err
	}
	d, err := decimal.NewFromString(pct)
	if err != nil {
		return nil, fmt.Errorf("parsing fee percent '%s': %w", pct, err)
	}
	e.FeePercent = d
	return &e, nil
}
