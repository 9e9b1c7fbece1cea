package constraint

import (
	"github.com/calldraft/calldraft/pkg/model"
)

// EvaluateResidents 对每位住院医依次求值给定约束，结果按住院医姓名索引，
// 每个列表的顺序与 types 一致
func (r *Registry) EvaluateResidents(types []Type, residents []*model.Resident, holidays model.HolidaySet, date, shift string) (map[string][]Outcome, error) {
	constraints, err := r.resolve(types)
	if err != nil {
		return nil, err
	}

	result := make(map[string][]Outcome, len(residents))
	for _, res := range residents {
		ctx := NewContext(res, holidays, date, shift)
		outcomes := make([]Outcome, 0, len(constraints))
		for _, c := range constraints {
			outcomes = append(outcomes, Outcome{
				Type:     c.Type(),
				Category: c.Category(),
				Message:  c.Message(),
				Passed:   c.Evaluate(ctx),
			})
		}
		result[res.Name] = outcomes
	}
	return result, nil
}

// UnrestrictedResidents 返回所有约束均通过的住院医，保持输入顺序
func (r *Registry) UnrestrictedResidents(types []Type, residents []*model.Resident, holidays model.HolidaySet, date, shift string) ([]*model.Resident, error) {
	constraints, err := r.resolve(types)
	if err != nil {
		return nil, err
	}

	var out []*model.Resident
	for _, res := range residents {
		ctx := NewContext(res, holidays, date, shift)
		ok := true
		for _, c := range constraints {
			if !c.Evaluate(ctx) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, res)
		}
	}
	return out, nil
}

// Failed 返回未通过的约束说明
func Failed(outcomes []Outcome) []string {
	var out []string
	for _, o := range outcomes {
		if !o.Passed {
			out = append(out, o.Message)
		}
	}
	return out
}

// Satisfied 返回通过的约束说明
func Satisfied(outcomes []Outcome) []string {
	var out []string
	for _, o := range outcomes {
		if o.Passed {
			out = append(out, o.Message)
		}
	}
	return out
}
