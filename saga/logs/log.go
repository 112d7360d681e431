package logs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ipfs/go-cid"
	logging "github.com/ipfs/go-log/v2"

	"github.com/jhuhnke/solana-walrus/db"
)

// UploadLogger writes to the process log and persists each line against the
// upload it belongs to, so that `walrus-bridge logs` can replay it.
type UploadLogger struct {
	ctx    context.Context
	logger *logging.ZapEventLogger
	logsDB *db.LogsDB
	prefix string
}

func NewUploadLogger(ctx context.Context, logsDB *db.LogsDB) *UploadLogger {
	prefix := "walrus-upload"
	return &UploadLogger{
		ctx:    ctx,
		logger: logging.Logger(prefix),
		logsDB: logsDB,
		prefix: prefix,
	}
}

func (u *UploadLogger) Subsystem(name string) *UploadLogger {
	prefix := u.prefix + "/" + name
	return &UploadLogger{
		ctx:    u.ctx,
		logger: logging.Logger(prefix),
		logsDB: u.logsDB,
		prefix: prefix,
	}
}

func (u *UploadLogger) Infow(id cid.Cid, msg string, kvs ...interface{}) {
	u.logger.Infow(msg, append([]interface{}{"id", id}, kvs...)...)
	u.updateLogDB(id, msg, "INFO", kvs)
}

func (u *UploadLogger) Warnw(id cid.Cid, msg string, kvs ...interface{}) {
	u.logger.Warnw(msg, append([]interface{}{"id", id}, kvs...)...)
	u.updateLogDB(id, msg, "WARN", kvs)
}

func (u *UploadLogger) Errorw(id cid.Cid, errMsg string, kvs ...interface{}) {
	u.logger.Errorw(errMsg, append([]interface{}{"id", id}, kvs...)...)
	u.updateLogDB(id, errMsg, "ERROR", kvs)
}

func (u *UploadLogger) updateLogDB(id cid.Cid, msg string, level string, kvs []interface{}) {
	params := make(map[string]interface{}, len(kvs)/2)
	for i := 0; i+1 < len(kvs); i += 2 {
		params[fmt.Sprint(kvs[i])] = stringify(kvs[i+1])
	}
	jsn, err := json.Marshal(params)
	if err != nil {
		u.logger.Warnw("failed to marshal log params to json", "err", err, "id", id)
	}

	l := &db.UploadLog{
		UploadID:  id,
		CreatedAt: time.Now(),
		LogLevel:  level,
		LogMsg:    msg,
		LogParams: string(jsn),
		Subsystem: u.prefix,
	}
	if err := u.logsDB.InsertLog(u.ctx, l); err != nil {
		u.logger.Warnw("failed to persist upload log", "id", id, "err", err)
	}
}

func (u *UploadLogger) LogError(id cid.Cid, errMsg string, err error) {
	u.logger.Errorw(errMsg, "id", id, "err", err)

	l := &db.UploadLog{
		UploadID:  id,
		CreatedAt: time.Now(),
		LogLevel:  "ERROR",
		LogMsg:    fmt.Sprintf("msg: %s, err: %s", errMsg, err),
		Subsystem: u.prefix,
	}
	if err := u.logsDB.InsertLog(u.ctx, l); err != nil {
		u.logger.Warnw("failed to persist upload log", "id", id, "err", err)
	}
}

// errors and stringers do not marshal to anything useful
func stringify(v interface{}) interface{} {
	switch vv := v.(type) {
	case error:
		return vv.Error()
	case fmt.Stringer:
		return vv.String()
	}
	return v
}
