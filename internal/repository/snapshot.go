package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/calldraft/calldraft/pkg/errors"
	"github.com/calldraft/calldraft/pkg/model"
)

// Snapshot 某草案的分配账本与值班历史
type Snapshot struct {
	ID        uuid.UUID     `json:"id"`
	Draft     string        `json:"draft"`
	Revision  int64         `json:"revision"`
	Ledger    model.Ledger  `json:"ledger"`
	History   model.History `json:"history"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// SnapshotRepositoryInterface 快照仓储接口
type SnapshotRepositoryInterface interface {
	Load(ctx context.Context, draft string) (*Snapshot, error)
	Save(ctx context.Context, snap *Snapshot) error
	Delete(ctx context.Context, draft string) error
}

// SnapshotRepository 快照仓储实现，每个草案一行
type SnapshotRepository struct {
	db DB
}

// NewSnapshotRepository 创建快照仓储
func NewSnapshotRepository(db DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Load 读取快照，不存在时返回 NOT_FOUND
func (r *SnapshotRepository) Load(ctx context.Context, draft string) (*Snapshot, error) {
	query := `
		SELECT snapshot_id, draft, revision, ledger, history, updated_at
		FROM draft_snapshots WHERE draft = ?`

	snap, err := scanSnapshot(r.db.QueryRowContext(ctx, query, draft))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("草案快照", draft)
	}
	if err != nil {
		return nil, fmt.Errorf("查询快照失败: %w", err)
	}
	return snap, nil
}

// Save 写入快照；ID 为空时生成新 ID，UpdatedAt 取当前时间；已存版本更新时不覆盖
func (r *SnapshotRepository) Save(ctx context.Context, snap *Snapshot) error {
	if snap.Draft == "" {
		return apperrors.InvalidInput("draft", "不能为空")
	}
	if snap.ID == uuid.Nil {
		snap.ID = uuid.New()
	}
	snap.UpdatedAt = time.Now()

	ledger := snap.Ledger
	if ledger == nil {
		ledger = model.Ledger{}
	}
	history := snap.History
	if history == nil {
		history = model.History{}
	}
	ledgerJSON, err := json.Marshal(ledger)
	if err != nil {
		return fmt.Errorf("序列化账本失败: %w", err)
	}
	historyJSON, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("序列化历史失败: %w", err)
	}

	query := `
		INSERT INTO draft_snapshots (draft, snapshot_id, revision, ledger, history, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (draft) DO UPDATE SET
			snapshot_id = excluded.snapshot_id,
			revision = excluded.revision,
			ledger = excluded.ledger,
			history = excluded.history,
			updated_at = excluded.updated_at
		WHERE draft_snapshots.revision <= excluded.revision`

	_, err = r.db.ExecContext(ctx, query,
		snap.Draft, snap.ID.String(), snap.Revision,
		string(ledgerJSON), string(historyJSON), formatTime(snap.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("保存快照失败: %w", err)
	}
	return nil
}

// Delete 删除快照
func (r *SnapshotRepository) Delete(ctx context.Context, draft string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM draft_snapshots WHERE draft = ?`, draft)
	if err != nil {
		return fmt.Errorf("删除快照失败: %w", err)
	}
	return nil
}

func scanSnapshot(row Scanner) (*Snapshot, error) {
	var (
		snap        Snapshot
		id          string
		ledgerJSON  string
		historyJSON string
		updatedAt   string
	)
	if err := row.Scan(&id, &snap.Draft, &snap.Revision, &ledgerJSON, &historyJSON, &updatedAt); err != nil {
		return nil, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("快照 ID 无效: %w", err)
	}
	snap.ID = parsed
	snap.UpdatedAt = parseTime(updatedAt)

	if err := json.Unmarshal([]byte(ledgerJSON), &snap.Ledger); err != nil {
		return nil, fmt.Errorf("解析账本失败: %w", err)
	}
	if err := json.Unmarshal([]byte(historyJSON), &snap.History); err != nil {
		return nil, fmt.Errorf("解析历史失败: %w", err)
	}
	if snap.Ledger == nil {
		snap.Ledger = model.Ledger{}
	}
	if snap.History == nil {
		snap.History = model.History{}
	}
	return &snap, nil
}
