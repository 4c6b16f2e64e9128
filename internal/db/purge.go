package db

import (
	"context"
	"database/sql"

	"go.uber.org/zap"
)

// PurgeMessages deletes every relayed message. It runs once at startup: the
// messages table is a short-lived relay buffer, not an archive. A failure
// is logged and reported to the caller, which decides whether to continue.
func PurgeMessages(ctx context.Context, db *sql.DB, log *zap.Logger) (int64, error) {
	res, err := db.ExecContext(ctx, `DELETE FROM messages`)
	if err != nil {
		log.Error("failed to clear messages", zap.Error(err))
		return 0, err
	}

	rows, _ := res.RowsAffected()
	log.Info("cleared messages", zap.Int64("removed", rows))
	return rows, nil
}
