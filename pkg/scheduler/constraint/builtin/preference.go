package builtin

import (
	"github.com/calldraft/calldraft/pkg/model"
	"github.com/calldraft/calldraft/pkg/scheduler/constraint"
)

// AvoidWeekdayConstraint 住院医希望避开某些星期
type AvoidWeekdayConstraint struct {
	*BaseConstraint
}

// NewAvoidWeekdayConstraint 创建星期回避约束
func NewAvoidWeekdayConstraint(weight float64) *AvoidWeekdayConstraint {
	return &AvoidWeekdayConstraint{
		BaseConstraint: NewBaseConstraint(TypeAvoidWeekday, constraint.CategorySoft,
			"Asked to avoid this day of the week", weight),
	}
}

// Evaluate 当天星期不在回避列表中则通过
func (c *AvoidWeekdayConstraint) Evaluate(ctx *constraint.Context) bool {
	return !ctx.Resident.Preferences.Has(PrefAvoidDays, ctx.Weekday())
}

// Active 填写了回避星期即计入难度
func (c *AvoidWeekdayConstraint) Active(r *model.Resident, _ model.HolidaySet) bool {
	return len(r.Preferences.List(PrefAvoidDays)) > 0
}

// AvoidShiftTypeConstraint 住院医希望避开某类班次
type AvoidShiftTypeConstraint struct {
	*BaseConstraint
}

// NewAvoidShiftTypeConstraint 创建班次回避约束
func NewAvoidShiftTypeConstraint(weight float64) *AvoidShiftTypeConstraint {
	return &AvoidShiftTypeConstraint{
		BaseConstraint: NewBaseConstraint(TypeAvoidShiftType, constraint.CategorySoft,
			"Asked to avoid this shift", weight),
	}
}

// Evaluate 班次不在回避列表中则通过
func (c *AvoidShiftTypeConstraint) Evaluate(ctx *constraint.Context) bool {
	return !ctx.Resident.Preferences.Has(PrefAvoidShifts, ctx.Shift)
}

// Active 填写了回避班次即计入难度
func (c *AvoidShiftTypeConstraint) Active(r *model.Resident, _ model.HolidaySet) bool {
	return len(r.Preferences.List(PrefAvoidShifts)) > 0
}

// AvoidHolidaysConstraint 住院医希望避开节假日
type AvoidHolidaysConstraint struct {
	*BaseConstraint
}

// NewAvoidHolidaysConstraint 创建节假日回避约束
func NewAvoidHolidaysConstraint(weight float64) *AvoidHolidaysConstraint {
	return &AvoidHolidaysConstraint{
		BaseConstraint: NewBaseConstraint(TypeAvoidHolidays, constraint.CategorySoft,
			"Asked to avoid holidays", weight),
	}
}

// Evaluate 非节假日或未要求回避则通过
func (c *AvoidHolidaysConstraint) Evaluate(ctx *constraint.Context) bool {
	return !(ctx.IsHoliday() && ctx.Resident.Preferences.Bool(PrefAvoidHolidays))
}

// Active 要求回避节假日且存在节假日时计入难度
func (c *AvoidHolidaysConstraint) Active(r *model.Resident, holidays model.HolidaySet) bool {
	return len(holidays) > 0 && r.Preferences.Bool(PrefAvoidHolidays)
}

// PrefersShiftTypeConstraint 住院医偏好某类班次
type PrefersShiftTypeConstraint struct {
	*BaseConstraint
}

// NewPrefersShiftTypeConstraint 创建班次偏好
func NewPrefersShiftTypeConstraint(weight float64) *PrefersShiftTypeConstraint {
	return &PrefersShiftTypeConstraint{
		BaseConstraint: NewBaseConstraint(TypePrefersShiftType, constraint.CategoryPrefer,
			"Prefers this shift", weight),
	}
}

// Evaluate 班次在偏好列表中返回 true
func (c *PrefersShiftTypeConstraint) Evaluate(ctx *constraint.Context) bool {
	return ctx.Resident.Preferences.Has(PrefPreferredShifts, ctx.Shift)
}

// PrefersWeekdayConstraint 住院医偏好某些星期
type PrefersWeekdayConstraint struct {
	*BaseConstraint
}

// NewPrefersWeekdayConstraint 创建星期偏好
func NewPrefersWeekdayConstraint(weight float64) *PrefersWeekdayConstraint {
	return &PrefersWeekdayConstraint{
		BaseConstraint: NewBaseConstraint(TypePrefersWeekday, constraint.CategoryPrefer,
			"Prefers this day of the week", weight),
	}
}

// Evaluate 星期在偏好列表中返回 true
func (c *PrefersWeekdayConstraint) Evaluate(ctx *constraint.Context) bool {
	return ctx.Resident.Preferences.Has(PrefPreferredDays, ctx.Weekday())
}

// PrefersHolidaysConstraint 住院医愿意值节假日
type PrefersHolidaysConstraint struct {
	*BaseConstraint
}

// NewPrefersHolidaysConstraint 创建节假日偏好
func NewPrefersHolidaysConstraint(weight float64) *PrefersHolidaysConstraint {
	return &PrefersHolidaysConstraint{
		BaseConstraint: NewBaseConstraint(TypePrefersHolidays, constraint.CategoryPrefer,
			"Wants to work holidays", weight),
	}
}

// Evaluate 节假日且愿意值班返回 true
func (c *PrefersHolidaysConstraint) Evaluate(ctx *constraint.Context) bool {
	return ctx.IsHoliday() && ctx.Resident.Preferences.Bool(PrefPreferHolidays)
}
