// Package constraint 定义值班约束接口、注册表与资格评估
package constraint

import (
	"github.com/calldraft/calldraft/pkg/model"
)

// Type 约束名称（注册表中的唯一标识）
type Type string

// Category 约束类别
type Category string

const (
	CategoryHard   Category = "hard"   // 硬约束：不满足则不可排
	CategorySoft   Category = "soft"   // 软约束：不满足则尽量不排
	CategoryPrefer Category = "prefer" // 偏好：满足则优先排
)

// rank 类别排序：hard < soft < prefer
func (c Category) rank() int {
	switch c {
	case CategoryHard:
		return 0
	case CategorySoft:
		return 1
	case CategoryPrefer:
		return 2
	}
	return 3
}

// Valid 是否为已知类别
func (c Category) Valid() bool {
	return c.rank() < 3
}

// Constraint 约束接口
//
// 对 hard/soft 约束，Evaluate 返回 false 表示该住院医被此规则限制；
// 对 prefer 约束，返回 true 表示住院医偏好此班次。
type Constraint interface {
	// Type 返回约束名称
	Type() Type
	// Category 返回约束类别
	Category() Category
	// Message 返回展示给操作员的说明
	Message() string
	// Weight 返回难度权重
	Weight() float64
	// Evaluate 对 (住院医, 节假日, 日期, 班次) 求值，必须是纯函数
	Evaluate(ctx *Context) bool
}

// DifficultySource 可参与难度评分的约束
type DifficultySource interface {
	// Active 该约束是否在整个排班周期内对住院医生效（与具体班次无关）
	Active(resident *model.Resident, holidays model.HolidaySet) bool
}

// Context 约束求值上下文
type Context struct {
	Resident *model.Resident
	Holidays model.HolidaySet
	Date     string
	Shift    string
}

// NewContext 创建上下文
func NewContext(resident *model.Resident, holidays model.HolidaySet, date, shift string) *Context {
	return &Context{
		Resident: resident,
		Holidays: holidays,
		Date:     date,
		Shift:    shift,
	}
}

// IsHoliday 当天是否属于节假日集合
func (c *Context) IsHoliday() bool {
	return c.Holidays.Contains(c.Date)
}

// Weekday 当天星期缩写
func (c *Context) Weekday() string {
	return model.WeekdayAbbrev(c.Date)
}

// Outcome 单条约束的求值结果
type Outcome struct {
	Type     Type     `json:"type"`
	Category Category `json:"category"`
	Message  string   `json:"message"`
	Passed   bool     `json:"passed"`
}

// Restrictions 按类别划分的约束名列表
type Restrictions struct {
	Hard   []Type `json:"hard"`
	Soft   []Type `json:"soft"`
	Prefer []Type `json:"prefer"`
}

// All 全部约束名，按 hard、soft、prefer 顺序
func (r Restrictions) All() []Type {
	out := make([]Type, 0, len(r.Hard)+len(r.Soft)+len(r.Prefer))
	out = append(out, r.Hard...)
	out = append(out, r.Soft...)
	return append(out, r.Prefer...)
}
