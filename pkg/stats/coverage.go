package stats

import (
	"sort"

	"github.com/calldraft/calldraft/pkg/model"
)

// CoverageMetrics 班次覆盖率
type CoverageMetrics struct {
	RequiredSlots   int            `json:"required_slots"`
	FilledSlots     int            `json:"filled_slots"`
	FillRate        float64        `json:"fill_rate"` // 百分比
	UnfilledByShift map[string]int `json:"unfilled_by_shift"`
	UnfilledDates   []string       `json:"unfilled_dates"` // 至少有一个空缺的日期
}

// Coverage 计算需求表在账本中的覆盖情况
func Coverage(rows []model.ShiftRequirement, ledger model.Ledger) *CoverageMetrics {
	m := &CoverageMetrics{
		UnfilledByShift: make(map[string]int),
		UnfilledDates:   []string{},
	}
	dates := make(map[string]bool)
	for _, row := range rows {
		for _, shift := range row.RequiredShifts() {
			m.RequiredSlots++
			if _, ok := ledger.Occupant(row.Date, shift); ok {
				m.FilledSlots++
				continue
			}
			m.UnfilledByShift[shift]++
			dates[row.Date] = true
		}
	}
	for d := range dates {
		m.UnfilledDates = append(m.UnfilledDates, d)
	}
	sort.Strings(m.UnfilledDates)

	if m.RequiredSlots > 0 {
		m.FillRate = float64(m.FilledSlots) / float64(m.RequiredSlots) * 100
	} else {
		m.FillRate = 100
	}
	return m
}
