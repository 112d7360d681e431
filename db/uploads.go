package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ipfs/go-cid"

	"github.com/jhuhnke/solana-walrus/db/fielddef"
	"github.com/jhuhnke/solana-walrus/saga/types"
	"github.com/jhuhnke/solana-walrus/saga/types/uploadcheckpoints"
)

// Used for SELECT statements: "ID, CreatedAt, ..."
var uploadFields []string
var uploadFieldsStr = ""

func init() {
	var upload types.UploadState
	def := newUploadAccessor(nil, &upload)
	uploadFields = make([]string, 0, len(def.def))
	for k := range def.def {
		uploadFields = append(uploadFields, k)
	}
	uploadFieldsStr = strings.Join(uploadFields, ", ")
}

type uploadAccessor struct {
	db     *sql.DB
	upload *types.UploadState
	def    map[string]fielddef.FieldDefinition
}

type FilterOptions struct {
	Checkpoint *string
	Payer      *string
	HasError   *bool
}

func (d *UploadsDB) newUploadDef(upload *types.UploadState) *uploadAccessor {
	return newUploadAccessor(d.db, upload)
}

func newUploadAccessor(db *sql.DB, upload *types.UploadState) *uploadAccessor {
	return &uploadAccessor{
		db:     db,
		upload: upload,
		def: map[string]fielddef.FieldDefinition{
			"ID":                &fielddef.CidFieldDef{F: &upload.ID},
			"CreatedAt":         &fielddef.FieldDef{F: &upload.CreatedAt},
			"Network":           &fielddef.FieldDef{F: &upload.Network},
			"FilePath":          &fielddef.FieldDef{F: &upload.FilePath},
			"FileHash":          &fielddef.MultihashFieldDef{F: &upload.FileHash},
			"FileSizeBytes":     &fielddef.FieldDef{F: &upload.FileSizeBytes},
			"Epochs":            &fielddef.FieldDef{F: &upload.Epochs},
			"Deletable":         &fielddef.FieldDef{F: &upload.Deletable},
			"Payer":             &fielddef.FieldDef{F: &upload.Payer},
			"RequestedReceiver": &fielddef.FieldDef{F: &upload.RequestedReceiver},
			"Receiver":          &fielddef.FieldDef{F: &upload.Receiver},
			"FeeTier":           &fielddef.FieldDef{F: &upload.FeeTier},
			"Quote":             &fielddef.JSONFieldDef{F: &upload.Quote},
			"Fee":               &fielddef.FeeFieldDef{F: &upload.Fee},
			"Bridge":            &fielddef.JSONFieldDef{F: &upload.Bridge},
			"Swap":              &fielddef.JSONFieldDef{F: &upload.Swap},
			"BlobID":            &fielddef.FieldDef{F: &upload.Blob.BlobID},
			"BlobObjectID":      &fielddef.FieldDef{F: &upload.Blob.BlobObjectID},
			"RegistrationTxID":  &fielddef.FieldDef{F: &upload.Blob.RegistrationTxID},
			"CertificationTxID": &fielddef.FieldDef{F: &upload.Blob.CertificationTxID},
			"Confirmations":     &fielddef.JSONFieldDef{F: &upload.Confirmations},
			"Checkpoint":        &fielddef.CkptFieldDef{F: &upload.Checkpoint},
			"CheckpointAt":      &fielddef.FieldDef{F: &upload.CheckpointAt},
			"State":             &fielddef.FieldDef{F: &upload.State},
			"Error":             &fielddef.FieldDef{F: &upload.Err},
			"Retry":             &fielddef.FieldDef{F: &upload.Retry},
			"AttemptCounts":     &fielddef.JSONFieldDef{F: &upload.Attempts},
		},
	}
}

func (d *uploadAccessor) scan(row Scannable) error {
	return scan(uploadFields, d.def, row)
}

func scan(fields []string, def map[string]fielddef.FieldDefinition, row Scannable) error {
	// For each field
	dest := []interface{}{}
	for _, name := range fields {
		// Get a pointer to the field that will receive the scanned value
		fieldDef := def[name]
		dest = append(dest, fieldDef.FieldPtr())
	}

	// Scan the row into each pointer
	err := row.Scan(dest...)
	if err != nil {
		return fmt.Errorf("scanning upload row: %w", err)
	}

	// For each field
	for name, fieldDef := range def {
		// Unmarshall the scanned value into upload object
		err := fieldDef.Unmarshall()
		if err != nil {
			return fmt.Errorf("unmarshalling db field %s: %s", name, err)
		}
	}
	return nil
}

func (d *uploadAccessor) insert(ctx context.Context) error {
	return insert(ctx, "Uploads", uploadFields, uploadFieldsStr, d.def, d.db)
}

func insert(ctx context.Context, table string, fields []string, fieldsStr string, def map[string]fielddef.FieldDefinition, db *sql.DB) error {
	values := make([]interface{}, 0, len(fields))
	placeholders := make([]string, 0, len(fields))
	for _, name := range fields {
		fieldDef := def[name]
		placeholders = append(placeholders, "?")

		// Marshall the field into a value that can be stored in the database
		v, err := fieldDef.Marshall()
		if err != nil {
			return fmt.Errorf("marshalling field %s: %w", name, err)
		}
		values = append(values, v)
	}

	qry := "INSERT INTO " + table + " (" + fieldsStr + ") "
	qry += "VALUES (" + strings.Join(placeholders, ",") + ")"
	_, err := db.ExecContext(ctx, qry, values...)
	return err
}

func (d *uploadAccessor) update(ctx context.Context) error {
	return update(ctx, "Uploads", uploadFields, d.def, d.db, d.upload.ID)
}

func update(ctx context.Context, table string, fields []string, def map[string]fielddef.FieldDefinition, db *sql.DB, id cid.Cid) error {
	values := make([]interface{}, 0, len(fields))
	setNames := make([]string, 0, len(fields))
	for _, name := range fields {
		// Skip the ID field
		if name == "ID" {
			continue
		}

		// Add "fieldName = ?"
		fieldDef := def[name]
		setNames = append(setNames, name+" = ?")

		v, err := fieldDef.Marshall()
		if err != nil {
			return fmt.Errorf("marshalling field %s: %w", name, err)
		}
		values = append(values, v)
	}

	qry := "UPDATE " + table + " "
	qry += "SET " + strings.Join(setNames, ", ")
	qry += " WHERE ID = ?"
	values = append(values, id.String())

	res, err := db.ExecContext(ctx, qry, values...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("updating %s row %s: %w", table, id, ErrNotFound)
	}
	return nil
}

type UploadsDB struct {
	db *sql.DB
}

func NewUploadsDB(db *sql.DB) *UploadsDB {
	return &UploadsDB{db: db}
}

func (d *UploadsDB) Insert(ctx context.Context, upload *types.UploadState) error {
	return d.newUploadDef(upload).insert(ctx)
}

func (d *UploadsDB) Update(ctx context.Context, upload *types.UploadState) error {
	return d.newUploadDef(upload).update(ctx)
}

func (d *UploadsDB) ByID(ctx context.Context, id cid.Cid) (*types.UploadState, error) {
	qry := "SELECT " + uploadFieldsStr + " FROM Uploads WHERE ID=?"
	row := d.db.QueryRowContext(ctx, qry, id.String())
	upload, err := d.scanRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("upload %s: %w", id, ErrNotFound)
	}
	return upload, err
}

func (d *UploadsDB) ByBlobObjectID(ctx context.Context, blobObjectID string) (*types.UploadState, error) {
	qry := "SELECT " + uploadFieldsStr + " FROM Uploads WHERE BlobObjectID=?"
	row := d.db.QueryRowContext(ctx, qry, blobObjectID)
	upload, err := d.scanRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("upload with blob object %s: %w", blobObjectID, ErrNotFound)
	}
	return upload, err
}

func (d *UploadsDB) ByPayer(ctx context.Context, payer string) ([]*types.UploadState, error) {
	return d.list(ctx, 0, 0, "Payer=?", payer)
}

// ListActive lists the uploads that should be resumed on startup: uploads
// that are not complete and have not failed.
func (d *UploadsDB) ListActive(ctx context.Context) ([]*types.UploadState, error) {
	return d.list(ctx, 0, 0, "Checkpoint != ? AND (Error IS NULL OR Error = '')", uploadcheckpoints.Complete.String())
}

func (d *UploadsDB) ListCompleted(ctx context.Context) ([]*types.UploadState, error) {
	return d.list(ctx, 0, 0, "Checkpoint = ?", uploadcheckpoints.Complete.String())
}

func (d *UploadsDB) Count(ctx context.Context, filter *FilterOptions) (int, error) {
	qry := "SELECT count(*) FROM Uploads"
	var args []interface{}
	if filter != nil {
		where, whereArgs := withSearchFilter(*filter)
		if where != "" {
			qry += " WHERE " + where
			args = whereArgs
		}
	}

	var count int
	err := d.db.QueryRowContext(ctx, qry, args...).Scan(&count)
	return count, err
}

func (d *UploadsDB) List(ctx context.Context, filter *FilterOptions, offset int, limit int) ([]*types.UploadState, error) {
	where := ""
	var whereArgs []interface{}
	if filter != nil {
		where, whereArgs = withSearchFilter(*filter)
	}
	return d.list(ctx, offset, limit, where, whereArgs...)
}

func withSearchFilter(filter FilterOptions) (string, []interface{}) {
	whereArgs := []interface{}{}
	statements := []string{}

	if filter.Checkpoint != nil {
		statements = append(statements, "Checkpoint = ?")
		whereArgs = append(whereArgs, *filter.Checkpoint)
	}

	if filter.Payer != nil {
		statements = append(statements, "Payer = ?")
		whereArgs = append(whereArgs, *filter.Payer)
	}

	if filter.HasError != nil {
		if *filter.HasError {
			statements = append(statements, "(Error IS NOT NULL AND Error != '')")
		} else {
			statements = append(statements, "(Error IS NULL OR Error = '')")
		}
	}

	if len(statements) == 0 {
		return "", whereArgs
	}

	where := "(" + strings.Join(statements, " AND ") + ")"
	return where, whereArgs
}

func (d *UploadsDB) list(ctx context.Context, offset int, limit int, whereClause string, whereArgs ...interface{}) ([]*types.UploadState, error) {
	args := whereArgs
	qry := "SELECT " + uploadFieldsStr + " FROM Uploads"
	if whereClause != "" {
		qry += " WHERE " + whereClause
	}
	qry += " ORDER BY CreatedAt DESC"
	if limit > 0 {
		qry += " LIMIT ?"
		args = append(args, limit)

		if offset > 0 {
			qry += " OFFSET ?"
			args = append(args, offset)
		}
	}

	rows, err := d.db.QueryContext(ctx, qry, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	uploads := make([]*types.UploadState, 0, 16)
	for rows.Next() {
		upload, err := d.scanRow(rows)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, upload)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return uploads, nil
}

func (d *UploadsDB) scanRow(row Scannable) (*types.UploadState, error) {
	var upload types.UploadState
	err := d.newUploadDef(&upload).scan(row)
	if err != nil {
		return nil, err
	}
	if upload.Attempts == nil {
		upload.Attempts = make(map[string]int)
	}
	return &upload, nil
}
