package holiday

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/calldraft/calldraft/pkg/model"
)

// Calendar 节假日日历：RRULE 规则加固定日期
type Calendar struct {
	rules []string
	fixed model.HolidaySet
}

// NewCalendar 创建日历，规则或日期非法时返回错误
func NewCalendar(rules []string, dates []string) (*Calendar, error) {
	for i, r := range rules {
		if _, err := rrule.StrToRRule(r); err != nil {
			return nil, fmt.Errorf("failed to parse holiday rule %d (%q): %w", i, r, err)
		}
	}
	fixed := model.NewHolidaySet()
	for _, d := range dates {
		if _, err := model.ParseDate(d); err != nil {
			return nil, fmt.Errorf("invalid holiday date %q: %w", d, err)
		}
		fixed.Add(d)
	}
	return &Calendar{rules: append([]string(nil), rules...), fixed: fixed}, nil
}

// Resolve 展开 [start, end] 区间内的节假日
func (c *Calendar) Resolve(start, end string) (model.HolidaySet, error) {
	from, err := model.ParseDate(start)
	if err != nil {
		return nil, fmt.Errorf("invalid start date: %w", err)
	}
	to, err := model.ParseDate(end)
	if err != nil {
		return nil, fmt.Errorf("invalid end date: %w", err)
	}

	out := model.NewHolidaySet()
	for d := range c.fixed {
		if d >= start && d <= end {
			out.Add(d)
		}
	}

	// 每次重新解析，避免并发调用共享 DTStart
	for _, r := range c.rules {
		rule, err := rrule.StrToRRule(r)
		if err != nil {
			return nil, fmt.Errorf("failed to parse holiday rule %q: %w", r, err)
		}
		// 年度规则从起始年份的 1 月 1 日展开，避免 DTSTART 截断当年
		rule.DTStart(time.Date(from.Year(), 1, 1, 0, 0, 0, 0, time.UTC))
		for _, occ := range rule.Between(from, to, true) {
			out.Add(model.FormatDate(occ))
		}
	}
	return out, nil
}

// Predicate 返回区间内的节假日判定函数
func (c *Calendar) Predicate(start, end string) (func(date string) bool, error) {
	set, err := c.Resolve(start, end)
	if err != nil {
		return nil, err
	}
	return set.Contains, nil
}

// DateSpan 返回需求行覆盖的最早、最晚日期
func DateSpan(rows []model.ShiftRequirement) (string, string) {
	if len(rows) == 0 {
		return "", ""
	}
	start, end := rows[0].Date, rows[0].Date
	for _, r := range rows[1:] {
		if r.Date < start {
			start = r.Date
		}
		if r.Date > end {
			end = r.Date
		}
	}
	return start, end
}
