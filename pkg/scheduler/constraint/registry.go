package constraint

import (
	"sort"
	"sync"

	apperrors "github.com/calldraft/calldraft/pkg/errors"
	"github.com/calldraft/calldraft/pkg/model"
)

// Registry 约束注册表，进程启动时填充，之后只读
type Registry struct {
	constraints []Constraint
	mu          sync.RWMutex
}

// NewRegistry 创建约束注册表
func NewRegistry() *Registry {
	return &Registry{
		constraints: make([]Constraint, 0),
	}
}

// Register 注册约束，同名约束会被替换
func (r *Registry) Register(c Constraint) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.constraints {
		if existing.Type() == c.Type() {
			r.constraints[i] = c
			return
		}
	}

	r.constraints = append(r.constraints, c)

	// hard 在前，同类别内权重高的在前
	sort.SliceStable(r.constraints, func(i, j int) bool {
		ci, cj := r.constraints[i], r.constraints[j]
		if ci.Category() != cj.Category() {
			return ci.Category().rank() < cj.Category().rank()
		}
		return ci.Weight() > cj.Weight()
	})
}

// Unregister 注销约束
func (r *Registry) Unregister(t Type) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, c := range r.constraints {
		if c.Type() == t {
			r.constraints = append(r.constraints[:i], r.constraints[i+1:]...)
			return
		}
	}
}

// Get 按名称查找约束，未注册时返回 CONSTRAINT_NOT_FOUND
func (r *Registry) Get(t Type) (Constraint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.constraints {
		if c.Type() == t {
			return c, nil
		}
	}
	return nil, apperrors.ConstraintNotFound(string(t))
}

// GetAll 获取所有约束
func (r *Registry) GetAll() []Constraint {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Constraint, len(r.constraints))
	copy(result, r.constraints)
	return result
}

// GetByCategory 按类别获取约束
func (r *Registry) GetByCategory(cat Category) []Constraint {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []Constraint
	for _, c := range r.constraints {
		if c.Category() == cat {
			result = append(result, c)
		}
	}
	return result
}

// Restrictions 按类别列出已注册的约束名
func (r *Registry) Restrictions() Restrictions {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out Restrictions
	for _, c := range r.constraints {
		switch c.Category() {
		case CategoryHard:
			out.Hard = append(out.Hard, c.Type())
		case CategorySoft:
			out.Soft = append(out.Soft, c.Type())
		case CategoryPrefer:
			out.Prefer = append(out.Prefer, c.Type())
		}
	}
	return out
}

// Validate 启动时校验约束名列表，任一未注册即返回错误
func (r *Registry) Validate(types []Type) error {
	for _, t := range types {
		if _, err := r.Get(t); err != nil {
			return err
		}
	}
	return nil
}

// resolve 将约束名解析为约束对象
func (r *Registry) resolve(types []Type) ([]Constraint, error) {
	out := make([]Constraint, 0, len(types))
	for _, t := range types {
		c, err := r.Get(t)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Count 返回约束数量
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.constraints)
}

// Summary 返回约束摘要
func (r *Registry) Summary() map[string]interface{} {
	rs := r.Restrictions()
	return map[string]interface{}{
		"total":  len(rs.Hard) + len(rs.Soft) + len(rs.Prefer),
		"hard":   len(rs.Hard),
		"soft":   len(rs.Soft),
		"prefer": len(rs.Prefer),
	}
}

// TotalDifficulty 住院医难度分：所有生效约束的权重之和
func (r *Registry) TotalDifficulty(resident *model.Resident, holidays model.HolidaySet) float64 {
	total := 0.0
	for _, c := range r.GetAll() {
		src, ok := c.(DifficultySource)
		if !ok {
			continue
		}
		if src.Active(resident, holidays) {
			total += c.Weight()
		}
	}
	return total
}
