package builtin

import (
	"fmt"
	"strings"

	"github.com/calldraft/calldraft/pkg/model"
	"github.com/calldraft/calldraft/pkg/scheduler/constraint"
)

// BlockedRotationConstraint 处于不排班轮转（休假、ICU 夜班等）时不可排
type BlockedRotationConstraint struct {
	*BaseConstraint
	blocked []string
}

// NewBlockedRotationConstraint 创建轮转限制约束
func NewBlockedRotationConstraint(weight float64, blocked []string) *BlockedRotationConstraint {
	return &BlockedRotationConstraint{
		BaseConstraint: NewBaseConstraint(TypeBlockedRotation, constraint.CategoryHard,
			"On a rotation without call", weight),
		blocked: blocked,
	}
}

func (c *BlockedRotationConstraint) isBlocked(rotation string) bool {
	for _, b := range c.blocked {
		if strings.EqualFold(b, rotation) {
			return true
		}
	}
	return false
}

// Evaluate 当天轮转不在限制列表中则通过
func (c *BlockedRotationConstraint) Evaluate(ctx *constraint.Context) bool {
	rotation := ctx.Resident.RotationOn(ctx.Date)
	return rotation == "" || !c.isBlocked(rotation)
}

// Active 限制轮转与任一节假日重叠时计入难度
func (c *BlockedRotationConstraint) Active(r *model.Resident, holidays model.HolidaySet) bool {
	for date := range holidays {
		if rotation := r.RotationOn(date); rotation != "" && c.isBlocked(rotation) {
			return true
		}
	}
	return false
}

// AlreadyWorkingConstraint 当天已有其他班次
type AlreadyWorkingConstraint struct {
	*BaseConstraint
}

// NewAlreadyWorkingConstraint 创建同日重复排班约束
func NewAlreadyWorkingConstraint(weight float64) *AlreadyWorkingConstraint {
	return &AlreadyWorkingConstraint{
		BaseConstraint: NewBaseConstraint(TypeAlreadyWorkingThatDay, constraint.CategoryHard,
			"Already working that day", weight),
	}
}

// Evaluate 当天没有其他班次则通过
func (c *AlreadyWorkingConstraint) Evaluate(ctx *constraint.Context) bool {
	return !ctx.Resident.WorksOn(ctx.Date, ctx.Shift)
}

// PostCallConstraint 前一天或后一天已有班次
type PostCallConstraint struct {
	*BaseConstraint
}

// NewPostCallConstraint 创建连班约束
func NewPostCallConstraint(weight float64) *PostCallConstraint {
	return &PostCallConstraint{
		BaseConstraint: NewBaseConstraint(TypePostCall, constraint.CategoryHard,
			"Working the day before or after", weight),
	}
}

// Evaluate 相邻两天没有班次则通过
func (c *PostCallConstraint) Evaluate(ctx *constraint.Context) bool {
	prev := model.AddDays(ctx.Date, -1)
	next := model.AddDays(ctx.Date, 1)
	for _, s := range ctx.Resident.AssignedShifts {
		if s.Date == prev || s.Date == next {
			return false
		}
	}
	return true
}

// OneHolidayConstraint 节假日班次每人最多一个
type OneHolidayConstraint struct {
	*BaseConstraint
}

// NewOneHolidayConstraint 创建节假日限制约束
func NewOneHolidayConstraint(weight float64) *OneHolidayConstraint {
	return &OneHolidayConstraint{
		BaseConstraint: NewBaseConstraint(TypeOneHolidayPerCluster, constraint.CategoryHard,
			"Already working a holiday", weight),
	}
}

// Evaluate 非节假日，或尚未在任何节假日值班，则通过
func (c *OneHolidayConstraint) Evaluate(ctx *constraint.Context) bool {
	if !ctx.IsHoliday() {
		return true
	}
	for _, s := range ctx.Resident.AssignedShifts {
		if s.Date == ctx.Date && s.Shift == ctx.Shift {
			continue
		}
		if ctx.Holidays.Contains(s.Date) {
			return false
		}
	}
	return true
}

// NearOtherShiftConstraint 与其他班次间隔过近
type NearOtherShiftConstraint struct {
	*BaseConstraint
	minDays int
}

// NewNearOtherShiftConstraint 创建班次间隔约束
func NewNearOtherShiftConstraint(weight float64, minDays int) *NearOtherShiftConstraint {
	return &NearOtherShiftConstraint{
		BaseConstraint: NewBaseConstraint(TypeNearOtherShift, constraint.CategorySoft,
			fmt.Sprintf("Another shift within %d days", minDays), weight),
		minDays: minDays,
	}
}

// Evaluate minDays 天内没有其他班次则通过
func (c *NearOtherShiftConstraint) Evaluate(ctx *constraint.Context) bool {
	return !hasShiftWithin(ctx.Resident, ctx.Date, ctx.Shift, c.minDays)
}

// TargetReachedConstraint 已达到个人班次上限
type TargetReachedConstraint struct {
	*BaseConstraint
}

// NewTargetReachedConstraint 创建班次上限约束
func NewTargetReachedConstraint(weight float64) *TargetReachedConstraint {
	return &TargetReachedConstraint{
		BaseConstraint: NewBaseConstraint(TypeTargetReached, constraint.CategorySoft,
			"Already at requested number of shifts", weight),
	}
}

// Evaluate 未设置上限或未达到上限则通过
func (c *TargetReachedConstraint) Evaluate(ctx *constraint.Context) bool {
	max, ok := ctx.Resident.Preferences.Int(PrefMaxShifts)
	if !ok {
		return true
	}
	held := 0
	for _, s := range ctx.Resident.AssignedShifts {
		if s.Date == ctx.Date && s.Shift == ctx.Shift {
			continue
		}
		held++
	}
	return held < max
}
