package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"

	"github.com/jhuhnke/solana-walrus/saga/types"
)

func init() {
	goose.AddMigrationContext(upUploadsBackfillAttempts, downUploadsBackfillAttempts)
}

func upUploadsBackfillAttempts(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, "UPDATE Uploads SET AttemptCounts='{}' WHERE AttemptCounts IS NULL;")
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, "UPDATE Uploads SET Retry=? WHERE Retry IS NULL OR Retry = '';", types.UploadRetryAuto)
	if err != nil {
		return err
	}
	return nil
}

func downUploadsBackfillAttempts(ctx context.Context, tx *sql.Tx) error {
	// This code is executed when the migration is rolled back.
	return nil
}
