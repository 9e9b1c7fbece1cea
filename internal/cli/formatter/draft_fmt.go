package formatter

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/calldraft/calldraft/internal/repository"
	"github.com/calldraft/calldraft/pkg/model"
	"github.com/calldraft/calldraft/pkg/recommend"
	"github.com/calldraft/calldraft/pkg/scheduler/constraint"
	"github.com/calldraft/calldraft/pkg/stats"
)

// FormatBuckets 四个推荐分组依次输出，空分组显示占位
func FormatBuckets(b *recommend.Buckets) string {
	var sb strings.Builder
	sb.WriteString(StyleBold.Render(fmt.Sprintf("%s %s", b.Date, b.Shift)))
	sb.WriteString("\n\n")

	groups := []struct {
		title   string
		style   lipgloss.Style
		entries []recommend.Entry
	}{
		{"推荐", StyleGreen, b.PreferredToWork},
		{"可排", StyleBlue, b.Neutral},
		{"软限制", StyleYellow, b.SoftRestricted},
		{"硬限制", StyleRed, b.HardRestricted},
	}
	for _, g := range groups {
		sb.WriteString(g.style.Render(fmt.Sprintf("%s (%d)", g.title, len(g.entries))))
		sb.WriteString("\n")
		if len(g.entries) == 0 {
			sb.WriteString(Dim("  无"))
			sb.WriteString("\n\n")
			continue
		}
		rows := make([][]string, 0, len(g.entries))
		for _, e := range g.entries {
			reasons := e.Constraints
			if len(reasons) == 0 {
				reasons = e.Preferred
			}
			rows = append(rows, []string{
				e.Name,
				strconv.Itoa(e.NumTotalShifts),
				strconv.Itoa(e.NumSpecificShifts),
				strconv.FormatFloat(e.TotalDifficulty, 'f', 1, 64),
				strings.Join(reasons, ", "),
			})
		}
		sb.WriteString(RenderTable([]string{"NAME", "TOTAL", "SAME TYPE", "DIFFICULTY", "REASONS"}, rows))
		sb.WriteString("\n")
	}
	return sb.String()
}

// FormatDemand 待填班次表
func FormatDemand(demand []recommend.ShiftDemand) string {
	if len(demand) == 0 {
		return StyleGreen.Render("所有需要排人的班次均已分配") + "\n"
	}
	rows := make([][]string, 0, len(demand))
	for _, d := range demand {
		count := strconv.Itoa(len(d.AvailableResidents))
		switch len(d.AvailableResidents) {
		case 0:
			count = StyleRed.Render(count)
		case 1:
			count = StyleYellow.Render(count)
		}
		rows = append(rows, []string{d.Date, d.Shift, count, strings.Join(d.AvailableResidents, ", ")})
	}
	return RenderTable([]string{"DATE", "SHIFT", "AVAILABLE", "RESIDENTS"}, rows)
}

// FormatWorkload 工作量统计
func FormatWorkload(m *stats.WorkloadMetrics) string {
	var sb strings.Builder
	rows := make([][]string, 0, len(m.ResidentStats))
	for _, r := range m.ResidentStats {
		rows = append(rows, []string{
			r.Name,
			strconv.Itoa(r.TotalShifts),
			byShift(r.ByShift),
			strconv.Itoa(r.WeekendShifts),
			strconv.Itoa(r.HolidayShifts),
			fmt.Sprintf("%+.0f%%", r.Deviation),
		})
	}
	sb.WriteString(RenderTable([]string{"NAME", "SHIFTS", "BY TYPE", "WEEKEND", "HOLIDAY", "DEVIATION"}, rows))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("平均 %.1f  最多 %.0f  最少 %.0f  基尼 %.3f  公平性 %s\n",
		m.AvgShifts, m.MaxShifts, m.MinShifts, m.ShiftGini, fairness(m.OverallFairnessScore)))
	return sb.String()
}

func fairness(score float64) string {
	text := fmt.Sprintf("%.0f", score)
	switch {
	case score >= 80:
		return StyleGreen.Render(text)
	case score >= 60:
		return StyleYellow.Render(text)
	default:
		return StyleRed.Render(text)
	}
}

func byShift(counts map[string]int) string {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s:%d", name, counts[name]))
	}
	return strings.Join(parts, " ")
}

// FormatCoverage 覆盖率概要
func FormatCoverage(c *stats.CoverageMetrics) string {
	line := fmt.Sprintf("已分配 %d / %d (%.1f%%)\n", c.FilledSlots, c.RequiredSlots, c.FillRate)
	if len(c.UnfilledDates) == 0 {
		return line
	}
	return line + Dim("空缺日期: "+strings.Join(c.UnfilledDates, ", ")) + "\n"
}

// FormatAssignments 账本中的占用记录
func FormatAssignments(entries []model.LedgerEntry) string {
	if len(entries) == 0 {
		return Dim("暂无分配") + "\n"
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.Date, e.Shift, e.Name})
	}
	return RenderTable([]string{"DATE", "SHIFT", "RESIDENT"}, rows)
}

// FormatConstraints 已注册约束
func FormatConstraints(all []constraint.Constraint) string {
	rows := make([][]string, 0, len(all))
	for _, c := range all {
		cat := string(c.Category())
		if c.Category() == constraint.CategoryHard {
			cat = StyleRed.Render(cat)
		}
		rows = append(rows, []string{string(c.Type()), cat, strconv.FormatFloat(c.Weight(), 'f', -1, 64), c.Message()})
	}
	return RenderTable([]string{"TYPE", "CATEGORY", "WEIGHT", "MESSAGE"}, rows)
}

// FormatEvents 分配事件日志
func FormatEvents(events []*repository.Event) string {
	if len(events) == 0 {
		return Dim("暂无事件") + "\n"
	}
	rows := make([][]string, 0, len(events))
	for _, e := range events {
		rows = append(rows, []string{
			strconv.FormatInt(e.Seq, 10),
			e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			e.Action,
			e.Date,
			e.Shift,
			e.Resident,
		})
	}
	return RenderTable([]string{"SEQ", "AT", "ACTION", "DATE", "SHIFT", "RESIDENT"}, rows)
}
