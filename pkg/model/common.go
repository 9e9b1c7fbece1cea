// Package model 定义值班草案引擎的核心数据模型
package model

import (
	"sort"
	"strings"
	"time"
)

// DateLayout ISO 日期格式
const DateLayout = "2006-01-02"

// ParseDate 解析 ISO 日期
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}

// MustParseDate 解析 ISO 日期，失败时 panic，仅用于测试与常量
func MustParseDate(s string) time.Time {
	t, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

// FormatDate 格式化为 ISO 日期
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// AddDays 在 ISO 日期上加减天数
func AddDays(date string, days int) string {
	t, err := ParseDate(date)
	if err != nil {
		return ""
	}
	return FormatDate(t.AddDate(0, 0, days))
}

// ISOWeekday 返回 ISO 星期数（周一=1 … 周日=7）
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// WeekdayAbbrev 三字母星期缩写，如 "Mon"
func WeekdayAbbrev(date string) string {
	t, err := ParseDate(date)
	if err != nil {
		return ""
	}
	return t.Weekday().String()[:3]
}

// DaysBetween 两个 ISO 日期相差的天数（绝对值）
func DaysBetween(a, b string) int {
	ta, err1 := ParseDate(a)
	tb, err2 := ParseDate(b)
	if err1 != nil || err2 != nil {
		return -1
	}
	d := int(tb.Sub(ta).Hours() / 24)
	if d < 0 {
		return -d
	}
	return d
}

// ShiftRef 一个 (日期, 班次) 对
type ShiftRef struct {
	Date  string `json:"date"`
	Shift string `json:"shift"`
}

// Same 是否同一天同一班次
func (r ShiftRef) Same(other ShiftRef) bool {
	return r.Date == other.Date && r.Shift == other.Shift
}

// String 形如 2024-07-04/night
func (r ShiftRef) String() string {
	return r.Date + "/" + r.Shift
}

// DateRange 闭区间日期范围
type DateRange struct {
	Start string `json:"start"` // YYYY-MM-DD
	End   string `json:"end"`   // YYYY-MM-DD
}

// Contains 是否包含某日期，ISO 日期可直接按字符串比较
func (r DateRange) Contains(date string) bool {
	return date >= r.Start && date <= r.End
}

// HolidaySet 节假日集合（含邻近日）
type HolidaySet map[string]struct{}

// NewHolidaySet 创建节假日集合
func NewHolidaySet(dates ...string) HolidaySet {
	hs := make(HolidaySet, len(dates))
	hs.Add(dates...)
	return hs
}

// Add 加入日期
func (hs HolidaySet) Add(dates ...string) {
	for _, d := range dates {
		hs[d] = struct{}{}
	}
}

// Contains 是否包含日期
func (hs HolidaySet) Contains(date string) bool {
	_, ok := hs[date]
	return ok
}

// Sorted 按日期排序的列表
func (hs HolidaySet) Sorted() []string {
	out := make([]string, 0, len(hs))
	for d := range hs {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// Clone 复制
func (hs HolidaySet) Clone() HolidaySet {
	out := make(HolidaySet, len(hs))
	for d := range hs {
		out[d] = struct{}{}
	}
	return out
}
