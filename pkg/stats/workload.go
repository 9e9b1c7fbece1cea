// Package stats 提供值班分配的工作量与覆盖率统计
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/calldraft/calldraft/pkg/model"
)

// WorkloadMetrics 工作量公平性指标
type WorkloadMetrics struct {
	ShiftGini   float64 `json:"shift_gini"` // 班次数基尼系数 (0=完全公平, 1=完全不公平)
	WeekendGini float64 `json:"weekend_gini"`
	HolidayGini float64 `json:"holiday_gini"`
	ShiftStdDev float64 `json:"shift_std_dev"`
	AvgShifts   float64 `json:"avg_shifts"`
	MaxShifts   float64 `json:"max_shifts"`
	MinShifts   float64 `json:"min_shifts"`
	ShiftRange  float64 `json:"shift_range"`

	// 各班次名称占比（百分比）
	ShiftTypeDistribution map[string]float64 `json:"shift_type_distribution"`

	ResidentStats []ResidentStat `json:"resident_stats"`

	OverallFairnessScore float64 `json:"overall_fairness_score"` // 0-100
}

// ResidentStat 住院医统计
type ResidentStat struct {
	Name          string         `json:"name"`
	TotalShifts   int            `json:"total_shifts"`
	ByShift       map[string]int `json:"by_shift"`
	WeekendShifts int            `json:"weekend_shifts"`
	HolidayShifts int            `json:"holiday_shifts"`
	Deviation     float64        `json:"deviation"` // 与平均值的偏差百分比
}

// WorkloadAnalyzer 工作量分析器
type WorkloadAnalyzer struct{}

// NewWorkloadAnalyzer 创建工作量分析器
func NewWorkloadAnalyzer() *WorkloadAnalyzer {
	return &WorkloadAnalyzer{}
}

// Analyze 分析住院医之间的班次分配公平性，未分配班次的住院医也计入
func (w *WorkloadAnalyzer) Analyze(residents []*model.Resident, holidays model.HolidaySet) *WorkloadMetrics {
	if len(residents) == 0 {
		return &WorkloadMetrics{
			ShiftTypeDistribution: make(map[string]float64),
			ResidentStats:         []ResidentStat{},
			OverallFairnessScore:  100,
		}
	}

	residentStats := make([]ResidentStat, 0, len(residents))
	typeCounts := make(map[string]int)
	total := 0
	for _, r := range residents {
		stat := ResidentStat{Name: r.Name, ByShift: make(map[string]int)}
		for _, s := range r.AssignedShifts {
			stat.TotalShifts++
			stat.ByShift[s.Shift]++
			typeCounts[s.Shift]++
			total++
			if isWeekend(s.Date) {
				stat.WeekendShifts++
			}
			if holidays.Contains(s.Date) {
				stat.HolidayShifts++
			}
		}
		residentStats = append(residentStats, stat)
	}

	shifts := make([]float64, len(residentStats))
	weekends := make([]float64, len(residentStats))
	holidayShifts := make([]float64, len(residentStats))
	for i, s := range residentStats {
		shifts[i] = float64(s.TotalShifts)
		weekends[i] = float64(s.WeekendShifts)
		holidayShifts[i] = float64(s.HolidayShifts)
	}

	avg := mean(shifts)
	stdDev := math.Sqrt(variance(shifts, avg))
	max, min := valueRange(shifts)

	for i := range residentStats {
		if avg > 0 {
			residentStats[i].Deviation = (shifts[i] - avg) / avg * 100
		}
	}

	sort.SliceStable(residentStats, func(i, j int) bool {
		return residentStats[i].TotalShifts > residentStats[j].TotalShifts
	})

	dist := make(map[string]float64, len(typeCounts))
	if total > 0 {
		for name, n := range typeCounts {
			dist[name] = float64(n) / float64(total) * 100
		}
	}

	m := &WorkloadMetrics{
		ShiftGini:             gini(shifts),
		WeekendGini:           gini(weekends),
		HolidayGini:           gini(holidayShifts),
		ShiftStdDev:           stdDev,
		AvgShifts:             avg,
		MaxShifts:             max,
		MinShifts:             min,
		ShiftRange:            max - min,
		ShiftTypeDistribution: dist,
		ResidentStats:         residentStats,
	}
	m.OverallFairnessScore = overallScore(m.ShiftGini, m.WeekendGini, m.HolidayGini, stdDev, avg)
	return m
}

func isWeekend(date string) bool {
	t, err := model.ParseDate(date)
	if err != nil {
		return false
	}
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func variance(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sumSquares := 0.0
	for _, v := range values {
		diff := v - mean
		sumSquares += diff * diff
	}
	return sumSquares / float64(len(values))
}

func valueRange(values []float64) (max, min float64) {
	if len(values) == 0 {
		return 0, 0
	}
	max, min = values[0], values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
		if v < min {
			min = v
		}
	}
	return
}

// gini 基尼系数
func gini(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	if sum == 0 {
		return 0
	}

	g := 0.0
	for i, v := range sorted {
		g += (2*float64(i+1) - float64(n) - 1) * v
	}
	g = g / (float64(n) * sum)
	return math.Max(0, math.Min(1, g))
}

// overallScore 综合公平性评分
func overallScore(shiftGini, weekendGini, holidayGini, stdDev, avg float64) float64 {
	const (
		shiftWeight   = 0.4
		weekendWeight = 0.25
		holidayWeight = 0.25
		cvWeight      = 0.1
	)

	cvScore := 100.0
	if avg > 0 {
		cvScore = math.Max(0, 100-stdDev/avg*200)
	}

	score := shiftWeight*(1-shiftGini)*100 +
		weekendWeight*(1-weekendGini)*100 +
		holidayWeight*(1-holidayGini)*100 +
		cvWeight*cvScore
	return math.Max(0, math.Min(100, score))
}
