package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ipfs/go-cid"

	"github.com/jhuhnke/solana-walrus/db/fielddef"
	"github.com/jhuhnke/solana-walrus/saga/types"
)

// BridgeEntry records a bridge transfer submission, keyed by its
// idempotency key. A pending entry means the submission may or may not have
// been accepted by the source ledger.
type BridgeEntry struct {
	IdempotencyKey     string
	UploadID           cid.Cid
	CreatedAt          time.Time
	UpdatedAt          time.Time
	SourceAddress      string
	DestinationAddress string
	Amount             types.Amount
	SourceTxID         string
	Status             LedgerStatus
}

var bridgeFields = []string{"IdempotencyKey", "UploadID", "CreatedAt", "UpdatedAt", "SourceAddress",
	"DestinationAddress", "Amount", "SourceTxID", "Status"}

type BridgeLedgerDB struct {
	db *sql.DB
}

func NewBridgeLedgerDB(db *sql.DB) *BridgeLedgerDB {
	return &BridgeLedgerDB{db: db}
}

func bridgeDef(e *BridgeEntry) map[string]fielddef.FieldDefinition {
	return map[string]fielddef.FieldDefinition{
		"IdempotencyKey":     &fielddef.FieldDef{F: &e.IdempotencyKey},
		"UploadID":           &fielddef.CidFieldDef{F: &e.UploadID},
		"CreatedAt":          &fielddef.FieldDef{F: &e.CreatedAt},
		"UpdatedAt":          &fielddef.FieldDef{F: &e.UpdatedAt},
		"SourceAddress":      &fielddef.FieldDef{F: &e.SourceAddress},
		"DestinationAddress": &fielddef.FieldDef{F: &e.DestinationAddress},
		"Amount":             &fielddef.AmountFieldDef{F: &e.Amount},
		"SourceTxID":         &fielddef.FieldDef{F: &e.SourceTxID},
		"Status":             &fielddef.FieldDef{F: &e.Status},
	}
}

func (b *BridgeLedgerDB) InsertPending(ctx context.Context, e *BridgeEntry) error {
	now := time.Now()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now
	e.Status = LedgerPending
	return insert(ctx, "BridgeLedger", bridgeFields, joinFields(bridgeFields), bridgeDef(e), b.db)
}

// Confirm marks the transfer as accepted by the source ledger in txID.
func (b *BridgeLedgerDB) Confirm(ctx context.Context, key string, txID string) error {
	qry := "UPDATE BridgeLedger SET Status = ?, SourceTxID = ?, UpdatedAt = ? WHERE IdempotencyKey = ?"
	res, err := b.db.ExecContext(ctx, qry, LedgerConfirmed, txID, time.Now(), key)
	if err != nil {
		return fmt.Errorf("confirming bridge ledger entry %s: %w", key, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("bridge ledger entry %s: %w", key, ErrNotFound)
	}
	return nil
}

// Delete removes a pending entry whose submission was never accepted.
func (b *BridgeLedgerDB) Delete(ctx context.Context, key string) error {
	_, err := b.db.ExecContext(ctx, "DELETE FROM BridgeLedger WHERE IdempotencyKey = ? AND Status = ?", key, LedgerPending)
	return err
}

func (b *BridgeLedgerDB) ByKey(ctx context.Context, key string) (*BridgeEntry, error) {
	qry := "SELECT " + joinFields(bridgeFields) + " FROM BridgeLedger WHERE IdempotencyKey = ?"
	row := b.db.QueryRowContext(ctx, qry, key)

	var e BridgeEntry
	err := scan(bridgeFields, bridgeDef(&e), row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("bridge ledger entry %s: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}
