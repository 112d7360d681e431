package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/ipfs/go-cid"
)

type UploadLog struct {
	UploadID  cid.Cid
	CreatedAt time.Time
	LogLevel  string
	LogMsg    string
	LogParams string
	Subsystem string
}

type LogsDB struct {
	db *sql.DB
}

func NewLogsDB(db *sql.DB) *LogsDB {
	return &LogsDB{db}
}

func (d *LogsDB) InsertLog(ctx context.Context, l *UploadLog) error {
	qry := "INSERT INTO UploadLogs (UploadID, CreatedAt, LogLevel, LogMsg, LogParams, Subsystem) "
	qry += "VALUES (?, ?, ?, ?, ?, ?)"
	values := []interface{}{l.UploadID.String(), l.CreatedAt, l.LogLevel, l.LogMsg, l.LogParams, l.Subsystem}
	_, err := d.db.ExecContext(ctx, qry, values...)
	return err
}

func (d *LogsDB) Logs(ctx context.Context, uploadID cid.Cid) ([]UploadLog, error) {
	qry := "SELECT CreatedAt, LogLevel, LogMsg, LogParams, Subsystem FROM UploadLogs WHERE UploadID=? ORDER BY CreatedAt"
	rows, err := d.db.QueryContext(ctx, qry, uploadID.String())
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	uploadLogs := make([]UploadLog, 0, 16)
	for rows.Next() {
		uploadLog := UploadLog{UploadID: uploadID}
		err := rows.Scan(
			&uploadLog.CreatedAt,
			&uploadLog.LogLevel,
			&uploadLog.LogMsg,
			&uploadLog.LogParams,
			&uploadLog.Subsystem)

		if err != nil {
			return nil, err
		}
		uploadLogs = append(uploadLogs, uploadLog)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return uploadLogs, nil
}

func (d *LogsDB) CleanupLogs(ctx context.Context, daysOld int) error {
	td := time.Now().AddDate(0, 0, -1*daysOld)

	qry := "DELETE from UploadLogs WHERE UploadID IN (SELECT DISTINCT UploadID FROM UploadLogs WHERE CreatedAt < ?)"

	_, err := d.db.ExecContext(ctx, qry, td)
	return err
}
