package ingest

import (
	"fmt"
	"io"
	"os"

	"github.com/calldraft/calldraft/internal/config"
	"github.com/calldraft/calldraft/pkg/engine"
	"github.com/calldraft/calldraft/pkg/holiday"
	"github.com/calldraft/calldraft/pkg/logger"
)

// Sources 三张表的读取源
type Sources struct {
	Shifts      io.Reader
	Rotations   io.Reader
	Preferences io.Reader
}

// Loader 将数据源转换为有序的导入动作
type Loader struct {
	calendar  *holiday.Calendar
	deriver   *holiday.Deriver
	blockDays int
}

// NewLoader 创建加载器；calendar 为空时不推导节假日
func NewLoader(calendar *holiday.Calendar, blockDays int) *Loader {
	return &Loader{
		calendar:  calendar,
		deriver:   holiday.NewDeriver(),
		blockDays: blockDays,
	}
}

// LoadFiles 按草案配置读取文件；未配置的文件跳过
func (l *Loader) LoadFiles(cfg config.DraftConfig) ([]engine.Action, error) {
	var src Sources
	for _, f := range []struct {
		path string
		dst  *io.Reader
	}{
		{cfg.ShiftsFile, &src.Shifts},
		{cfg.RotationsFile, &src.Rotations},
		{cfg.PreferencesFile, &src.Preferences},
	} {
		if f.path == "" {
			continue
		}
		fh, err := os.Open(f.path)
		if err != nil {
			return nil, fmt.Errorf("打开数据文件失败: %w", err)
		}
		defer fh.Close()
		*f.dst = fh
	}
	if cfg.BlockLengthDays > 0 {
		l.blockDays = cfg.BlockLengthDays
	}
	return l.Load(src)
}

// Load 依次产出 IngestHolidays、IngestShiftRequirements、IngestRotations、IngestPreferences
func (l *Loader) Load(src Sources) ([]engine.Action, error) {
	var actions []engine.Action

	if src.Shifts != nil {
		rows, err := ReadShifts(src.Shifts)
		if err != nil {
			return nil, fmt.Errorf("读取需求表失败: %w", err)
		}
		if l.calendar != nil && len(rows) > 0 {
			start, end := holiday.DateSpan(rows)
			isHoliday, err := l.calendar.Predicate(start, end)
			if err != nil {
				return nil, fmt.Errorf("展开节假日失败: %w", err)
			}
			if set := l.deriver.DeriveSet(rows, isHoliday); len(set) > 0 {
				actions = append(actions, engine.IngestHolidays{Dates: set.Sorted()})
			}
		}
		actions = append(actions, engine.IngestShiftRequirements{Rows: rows})
	}

	if src.Rotations != nil {
		rows, err := ReadRotations(src.Rotations, l.blockDays)
		if err != nil {
			return nil, fmt.Errorf("读取轮转表失败: %w", err)
		}
		actions = append(actions, engine.IngestRotations{Rows: rows})
	}

	if src.Preferences != nil {
		rows, err := ReadPreferences(src.Preferences)
		if err != nil {
			return nil, fmt.Errorf("读取偏好表失败: %w", err)
		}
		actions = append(actions, engine.IngestPreferences{Rows: rows})
	}

	logger.Debug().Int("actions", len(actions)).Msg("数据源已加载")
	return actions, nil
}
