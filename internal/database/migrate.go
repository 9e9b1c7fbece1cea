package database

import (
	"context"
	"fmt"
)

// 两种驱动通用的建表语句
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS draft_snapshots (
		draft       TEXT PRIMARY KEY,
		snapshot_id TEXT NOT NULL,
		revision    BIGINT NOT NULL DEFAULT 0,
		ledger      TEXT NOT NULL,
		history     TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS assignment_events (
		id         TEXT PRIMARY KEY,
		draft      TEXT NOT NULL,
		seq        BIGINT NOT NULL,
		action     TEXT NOT NULL,
		shift_date TEXT NOT NULL DEFAULT '',
		shift      TEXT NOT NULL DEFAULT '',
		resident   TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_assignment_events_draft ON assignment_events(draft, seq)`,
}

// Migrate 创建所需表，可重复执行
func (db *DB) Migrate(ctx context.Context) error {
	for i, stmt := range migrations {
		if _, err := db.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("迁移 %d 失败: %w", i, err)
		}
	}
	return nil
}
