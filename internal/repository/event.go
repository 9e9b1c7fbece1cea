package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event 一次已生效的分配变更
type Event struct {
	ID        uuid.UUID `json:"id"`
	Draft     string    `json:"draft"`
	Seq       int64     `json:"seq"`
	Action    string    `json:"action"`
	Date      string    `json:"date,omitempty"`
	Shift     string    `json:"shift,omitempty"`
	Resident  string    `json:"resident,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// EventRepositoryInterface 变更记录仓储接口
type EventRepositoryInterface interface {
	Append(ctx context.Context, e *Event) error
	List(ctx context.Context, draft string, limit int) ([]*Event, error)
}

// EventRepository 变更记录仓储实现，只追加
type EventRepository struct {
	db DB
}

// NewEventRepository 创建变更记录仓储
func NewEventRepository(db DB) *EventRepository {
	return &EventRepository{db: db}
}

// Append 追加一条记录
func (r *EventRepository) Append(ctx context.Context, e *Event) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO assignment_events (id, draft, seq, action, shift_date, shift, resident, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		e.ID.String(), e.Draft, e.Seq, e.Action, e.Date, e.Shift, e.Resident, formatTime(e.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("写入变更记录失败: %w", err)
	}
	return nil
}

// List 按顺序返回最近 limit 条记录；limit<=0 返回全部
func (r *EventRepository) List(ctx context.Context, draft string, limit int) ([]*Event, error) {
	query := `
		SELECT id, draft, seq, action, shift_date, shift, resident, created_at
		FROM assignment_events WHERE draft = ?
		ORDER BY seq DESC, created_at DESC`
	args := []interface{}{draft}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("查询变更记录失败: %w", err)
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("遍历变更记录失败: %w", err)
	}

	// 查询为倒序，翻转为时间正序
	for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
		events[i], events[j] = events[j], events[i]
	}
	return events, nil
}

func scanEvent(row Scanner) (*Event, error) {
	var (
		e         Event
		id        string
		createdAt string
	)
	if err := row.Scan(&id, &e.Draft, &e.Seq, &e.Action, &e.Date, &e.Shift, &e.Resident, &createdAt); err != nil {
		return nil, fmt.Errorf("扫描变更记录失败: %w", err)
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("变更记录 ID 无效: %w", err)
	}
	e.ID = parsed
	e.CreatedAt = parseTime(createdAt)
	return &e, nil
}
