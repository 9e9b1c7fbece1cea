// Package builtin 提供内置值班约束
package builtin

import (
	"github.com/calldraft/calldraft/pkg/model"
	"github.com/calldraft/calldraft/pkg/scheduler/constraint"
)

// BaseConstraint 约束基类
type BaseConstraint struct {
	typ      constraint.Type
	category constraint.Category
	message  string
	weight   float64
}

// NewBaseConstraint 创建基础约束
func NewBaseConstraint(typ constraint.Type, cat constraint.Category, message string, weight float64) *BaseConstraint {
	return &BaseConstraint{
		typ:      typ,
		category: cat,
		message:  message,
		weight:   weight,
	}
}

// Type 返回约束名称
func (c *BaseConstraint) Type() constraint.Type { return c.typ }

// Category 返回约束类别
func (c *BaseConstraint) Category() constraint.Category { return c.category }

// Message 返回约束说明
func (c *BaseConstraint) Message() string { return c.message }

// Weight 返回难度权重
func (c *BaseConstraint) Weight() float64 { return c.weight }

// SetWeight 覆盖权重
func (c *BaseConstraint) SetWeight(w float64) { c.weight = w }

// Evaluate 默认实现：不限制、不偏好（子类需覆盖）
func (c *BaseConstraint) Evaluate(ctx *constraint.Context) bool {
	return c.category != constraint.CategoryPrefer
}

// hasShiftWithin 是否有其他班次距 date 不超过 days 天（不含 date 当天的同一班次）
func hasShiftWithin(r *model.Resident, date, shift string, days int) bool {
	for _, s := range r.AssignedShifts {
		if s.Date == date && s.Shift == shift {
			continue
		}
		if d := model.DaysBetween(s.Date, date); d >= 0 && d <= days {
			return true
		}
	}
	return false
}
