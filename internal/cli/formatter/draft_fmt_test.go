package formatter

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/calldraft/calldraft/internal/repository"
	"github.com/calldraft/calldraft/pkg/model"
	"github.com/calldraft/calldraft/pkg/recommend"
	"github.com/calldraft/calldraft/pkg/stats"
)

func TestRenderTable_AlignsColumns(t *testing.T) {
	out := RenderTable([]string{"A", "B"}, [][]string{{"long-value", "x"}, {"s"}})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 4)
	assert.Equal(t, lipgloss.Width(lines[0]), lipgloss.Width(lines[2]))
	assert.Empty(t, RenderTable(nil, nil))
}

func TestFormatBuckets(t *testing.T) {
	out := FormatBuckets(&recommend.Buckets{
		Date:            "2024-07-01",
		Shift:           "night",
		PreferredToWork: []recommend.Entry{{Name: "Bo", Preferred: []string{"prefers_shift_type"}, NumTotalShifts: 2}},
		HardRestricted:  []recommend.Entry{{Name: "Ada", Constraints: []string{"blocked_rotation"}}},
	})
	assert.Contains(t, out, "2024-07-01 night")
	assert.Contains(t, out, "推荐 (1)")
	assert.Contains(t, out, "prefers_shift_type")
	assert.Contains(t, out, "可排 (0)")
	assert.Contains(t, out, "blocked_rotation")
}

func TestFormatDemand(t *testing.T) {
	assert.Contains(t, FormatDemand(nil), "均已分配")

	out := FormatDemand([]recommend.ShiftDemand{
		{Date: "2024-07-02", Shift: "day", AvailableResidents: nil},
		{Date: "2024-07-01", Shift: "night", AvailableResidents: []string{"Ada", "Bo"}},
	})
	assert.Contains(t, out, "Ada, Bo")
	assert.Less(t, strings.Index(out, "2024-07-02"), strings.Index(out, "2024-07-01"), "input order kept")
}

func TestFormatWorkloadAndCoverage(t *testing.T) {
	out := FormatWorkload(&stats.WorkloadMetrics{
		AvgShifts:            2,
		MaxShifts:            3,
		MinShifts:            1,
		OverallFairnessScore: 75,
		ResidentStats: []stats.ResidentStat{
			{Name: "Ada", TotalShifts: 3, ByShift: map[string]int{"night": 2, "day": 1}, Deviation: 50},
		},
	})
	assert.Contains(t, out, "day:1 night:2")
	assert.Contains(t, out, "+50%")

	cov := FormatCoverage(&stats.CoverageMetrics{RequiredSlots: 4, FilledSlots: 3, FillRate: 75, UnfilledDates: []string{"2024-07-02"}})
	assert.Contains(t, cov, "3 / 4")
	assert.Contains(t, cov, "2024-07-02")
}

func TestFormatAssignmentsAndEvents(t *testing.T) {
	assert.Contains(t, FormatAssignments(nil), "暂无分配")
	out := FormatAssignments([]model.LedgerEntry{{ShiftRef: model.ShiftRef{Date: "2024-07-01", Shift: "day"}, Name: "Ada"}})
	assert.Contains(t, out, "Ada")

	assert.Contains(t, FormatEvents(nil), "暂无事件")
	out = FormatEvents([]*repository.Event{{Seq: 7, Action: "AssignShift", Date: "2024-07-01", Shift: "day", Resident: "Ada", CreatedAt: time.Now()}})
	assert.Contains(t, out, "AssignShift")
	assert.Contains(t, out, "7")
}
