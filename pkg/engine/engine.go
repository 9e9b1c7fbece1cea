package engine

import (
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/calldraft/calldraft/pkg/logger"
)

// Engine 状态机的唯一修改入口，Dispatch 串行执行
type Engine struct {
	mu       sync.RWMutex
	state    *State
	revision int64
	log      *logger.EngineLogger
}

// Option 引擎选项
type Option func(*Engine)

// WithLogger 指定日志器
func WithLogger(l *logger.EngineLogger) Option {
	return func(e *Engine) { e.log = l }
}

// WithState 以给定状态启动
func WithState(s *State) Option {
	return func(e *Engine) { e.state = s.Clone() }
}

// New 创建引擎
func New(opts ...Option) *Engine {
	e := &Engine{state: NewState()}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = logger.NewEngineLogger()
	}
	return e
}

// Dispatch 应用一个动作；失败时状态保持不变
func (e *Engine) Dispatch(a Action) error {
	start := time.Now()

	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.state.Clone()
	if err := Reduce(next, a); err != nil {
		e.log.Rejected(kindOf(a), err)
		return err
	}
	e.state = next
	e.revision++

	e.log.Transition(kindOf(a), time.Since(start), fieldsOf(a))
	if _, ok := normalize(a).(ResetShifts); ok {
		e.log.ResetPerformed(len(next.Residents), len(next.Ledger))
	}
	return nil
}

// DispatchAll 依次应用多个动作，遇错停止
func (e *Engine) DispatchAll(actions ...Action) error {
	for _, a := range actions {
		if err := e.Dispatch(a); err != nil {
			return err
		}
	}
	return nil
}

// Snapshot 返回状态副本
func (e *Engine) Snapshot() *State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.Clone()
}

// Revision 成功转换的次数（含 SeedRevision 设定的起点）
func (e *Engine) Revision() int64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.revision
}

// Current 同一时刻的状态副本与版本号
func (e *Engine) Current() (*State, int64) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.Clone(), e.revision
}

// SeedRevision 版本号不低于 rev，用于接续已保存的版本；不会回退
func (e *Engine) SeedRevision(rev int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if rev > e.revision {
		e.revision = rev
	}
}

// KindOf 动作名称，nil 与 nil 指针返回 "<nil>"
func KindOf(a Action) string {
	return kindOf(a)
}

func kindOf(a Action) string {
	n := normalize(a)
	if n == nil {
		return "<nil>"
	}
	if v := reflect.ValueOf(n); v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return "<nil>"
		}
		return fmt.Sprintf("%T", n)
	}
	return n.Kind()
}

func fieldsOf(a Action) map[string]string {
	switch act := normalize(a).(type) {
	case AssignShift:
		return map[string]string{"name": act.Name, "date": act.Date, "shift": act.Shift}
	case ClearShift:
		return map[string]string{"date": act.Date, "shift": act.Shift}
	case SetFocusDateAndShift:
		return map[string]string{"date": act.Date, "shift": act.Shift}
	case SetFocusResident:
		return map[string]string{"name": act.Name}
	}
	return nil
}
