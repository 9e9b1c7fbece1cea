// Package service 组合状态机、推荐器与持久化，供 HTTP 与命令行共用
package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/calldraft/calldraft/internal/metrics"
	"github.com/calldraft/calldraft/internal/repository"
	"github.com/calldraft/calldraft/pkg/engine"
	apperrors "github.com/calldraft/calldraft/pkg/errors"
	"github.com/calldraft/calldraft/pkg/logger"
	"github.com/calldraft/calldraft/pkg/model"
	"github.com/calldraft/calldraft/pkg/recommend"
	"github.com/calldraft/calldraft/pkg/scheduler/constraint"
	"github.com/calldraft/calldraft/pkg/stats"
)

// Options 服务依赖；Snapshots 与 Events 为空时不持久化
type Options struct {
	Draft     string
	Registry  *constraint.Registry
	Snapshots repository.SnapshotRepositoryInterface
	Events    repository.EventRepositoryInterface
	Engine    *engine.Engine
}

// DraftService 一个草案的值班分配服务
type DraftService struct {
	mu          sync.Mutex // 串行化转换与保存
	draft       string
	engine      *engine.Engine
	registry    *constraint.Registry
	recommender *recommend.Recommender
	snapshots   repository.SnapshotRepositoryInterface
	events      repository.EventRepositoryInterface
	log         *zerolog.Logger
}

// New 创建服务
func New(opts Options) *DraftService {
	eng := opts.Engine
	if eng == nil {
		eng = engine.New()
	}
	reg := opts.Registry
	if reg == nil {
		reg = constraint.NewRegistry()
	}
	draft := opts.Draft
	if draft == "" {
		draft = "default"
	}
	return &DraftService{
		draft:       draft,
		engine:      eng,
		registry:    reg,
		recommender: recommend.NewRecommender(reg),
		snapshots:   opts.Snapshots,
		events:      opts.Events,
		log:         logger.Component("service"),
	}
}

// Draft 草案名称
func (s *DraftService) Draft() string { return s.draft }

// Registry 约束注册表
func (s *DraftService) Registry() *constraint.Registry { return s.registry }

// Revision 状态机版本号
func (s *DraftService) Revision() int64 { return s.engine.Revision() }

// State 当前状态副本
func (s *DraftService) State() *engine.State { return s.engine.Snapshot() }

// Bootstrap 先恢复持久化的分配，再依次应用导入动作
func (s *DraftService) Bootstrap(ctx context.Context, ingest []engine.Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapshots != nil {
		snap, err := s.snapshots.Load(ctx, s.draft)
		switch {
		case apperrors.Is(err, apperrors.CodeNotFound):
			s.log.Info().Str("draft", s.draft).Msg("没有已保存的分配，从空白开始")
		case err != nil:
			metrics.RecordPersist("load", false)
			return apperrors.Wrap(err, apperrors.CodeDatabaseError, "读取已保存的分配失败")
		default:
			metrics.RecordPersist("load", true)
			s.engine.SeedRevision(snap.Revision)
			if err := s.dispatch(engine.RestoreAssignments{Ledger: snap.Ledger, History: snap.History}); err != nil {
				return err
			}
			s.log.Info().
				Str("draft", s.draft).
				Int("filled", snap.Ledger.Filled()).
				Int64("revision", snap.Revision).
				Msg("已恢复保存的分配")
		}
	}

	for _, a := range ingest {
		if err := s.dispatch(a); err != nil {
			return err
		}
	}
	// 导入可能触发重置，保存一次结果
	if err := s.persist(ctx, nil); err != nil {
		return err
	}
	s.refreshGauges()
	return nil
}

// Apply 应用一个动作；影响分配时写入快照与变更记录
func (s *DraftService) Apply(ctx context.Context, a engine.Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkAssign(a); err != nil {
		return err
	}
	if err := s.dispatch(a); err != nil {
		return err
	}
	if !engine.TouchesAssignments(a) {
		return nil
	}
	if err := s.persist(ctx, a); err != nil {
		return err
	}
	s.refreshGauges()
	return nil
}

// Assign 分配班次
func (s *DraftService) Assign(ctx context.Context, name, date, shift string) error {
	return s.Apply(ctx, engine.AssignShift{Name: name, Date: date, Shift: shift})
}

// Clear 清空班次
func (s *DraftService) Clear(ctx context.Context, date, shift string) error {
	return s.Apply(ctx, engine.ClearShift{Date: date, Shift: shift})
}

// Reset 清空全部分配
func (s *DraftService) Reset(ctx context.Context) error {
	return s.Apply(ctx, engine.ResetShifts{})
}

// Recommendations 计算某班次的四组推荐
func (s *DraftService) Recommendations(date, shift string) (*recommend.Buckets, error) {
	if _, err := model.ParseDate(date); err != nil {
		return nil, apperrors.InvalidInput("date", "需要 YYYY-MM-DD 格式")
	}
	if shift == "" {
		return nil, apperrors.InvalidInput("shift", "不能为空")
	}
	st := s.engine.Snapshot()
	buckets, err := s.recommender.SplitResidents(st.Residents, st.Holidays, date, shift)
	if err != nil {
		metrics.RecordRecommendation(false, 0, 0, 0, 0)
		return nil, err
	}
	metrics.RecordRecommendation(true,
		len(buckets.PreferredToWork), len(buckets.Neutral),
		len(buckets.SoftRestricted), len(buckets.HardRestricted))
	return buckets, nil
}

// Demand 未排班次按可排人数升序
func (s *DraftService) Demand() ([]recommend.ShiftDemand, error) {
	st := s.engine.Snapshot()
	return s.recommender.RankDemand(st.Residents, st.Holidays, st.ShiftRequirements, st.Ledger)
}

// Workload 工作量统计
func (s *DraftService) Workload() *stats.WorkloadMetrics {
	st := s.engine.Snapshot()
	m := stats.NewWorkloadAnalyzer().Analyze(st.Residents, st.Holidays)
	metrics.SetWorkloadGini(s.draft, "shifts", m.ShiftGini)
	metrics.SetWorkloadGini(s.draft, "weekend", m.WeekendGini)
	metrics.SetWorkloadGini(s.draft, "holiday", m.HolidayGini)
	return m
}

// Coverage 覆盖率统计
func (s *DraftService) Coverage() *stats.CoverageMetrics {
	st := s.engine.Snapshot()
	return stats.Coverage(st.ShiftRequirements, st.Ledger)
}

// Events 最近的变更记录
func (s *DraftService) Events(ctx context.Context, limit int) ([]*repository.Event, error) {
	if s.events == nil {
		return []*repository.Event{}, nil
	}
	return s.events.List(ctx, s.draft, limit)
}

func (s *DraftService) dispatch(a engine.Action) error {
	start := time.Now()
	err := s.engine.Dispatch(a)
	metrics.RecordTransition(engine.KindOf(a), err == nil, time.Since(start))
	return err
}

// checkAssign 住院医已导入时只允许分配给名单中的人；需求表已导入时只允许分配需要排人的班次
func (s *DraftService) checkAssign(a engine.Action) error {
	var name, date, shift string
	switch act := a.(type) {
	case engine.AssignShift:
		name, date, shift = act.Name, act.Date, act.Shift
	case *engine.AssignShift:
		if act == nil {
			return nil
		}
		name, date, shift = act.Name, act.Date, act.Shift
	default:
		return nil
	}
	st := s.engine.Snapshot()
	if name != "" && len(st.Residents) > 0 && st.Resident(name) == nil {
		return apperrors.InvalidInput("name", "住院医 '"+name+"' 不在名单中")
	}
	if len(st.ShiftRequirements) == 0 {
		return nil
	}
	row, ok := st.Requirement(date)
	if !ok || !row.Required(shift) {
		return apperrors.ShiftNotRequired(date, shift)
	}
	return nil
}

// persist 保存快照；a 不为空时追加变更记录
func (s *DraftService) persist(ctx context.Context, a engine.Action) error {
	if s.snapshots == nil {
		return nil
	}
	st, rev := s.engine.Current()

	snap := &repository.Snapshot{Draft: s.draft, Revision: rev, Ledger: st.Ledger, History: st.History}
	if err := s.snapshots.Save(ctx, snap); err != nil {
		metrics.RecordPersist("save", false)
		s.log.Error().Err(err).Str("draft", s.draft).Msg("保存分配失败")
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "保存分配失败")
	}
	metrics.RecordPersist("save", true)

	if a == nil || s.events == nil {
		return nil
	}
	ev := &repository.Event{Draft: s.draft, Seq: rev, Action: engine.KindOf(a)}
	switch act := a.(type) {
	case engine.AssignShift:
		ev.Date, ev.Shift, ev.Resident = act.Date, act.Shift, act.Name
	case *engine.AssignShift:
		ev.Date, ev.Shift, ev.Resident = act.Date, act.Shift, act.Name
	case engine.ClearShift:
		ev.Date, ev.Shift = act.Date, act.Shift
	case *engine.ClearShift:
		ev.Date, ev.Shift = act.Date, act.Shift
	}
	if err := s.events.Append(ctx, ev); err != nil {
		metrics.RecordPersist("event", false)
		s.log.Warn().Err(err).Str("action", ev.Action).Msg("写入变更记录失败")
		return nil
	}
	metrics.RecordPersist("event", true)
	return nil
}

func (s *DraftService) refreshGauges() {
	st := s.engine.Snapshot()
	cov := stats.Coverage(st.ShiftRequirements, st.Ledger)
	metrics.SetDraftGauges(s.draft, cov.RequiredSlots-cov.FilledSlots, len(st.Residents), cov.FillRate)
}
