package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upAddKVSize, downAddKVSize)
}

func upAddKVSize(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		ALTER TABLE kv ADD COLUMN size_bytes BIGINT NOT NULL DEFAULT 0;
	`)
	if err != nil {
		return err
	}
	return nil
}

func downAddKVSize(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		ALTER TABLE kv DROP COLUMN size_bytes;
	`)
	if err != nil {
		return err
	}
	return nil
}
