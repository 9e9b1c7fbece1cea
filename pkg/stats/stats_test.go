package stats

import (
	"math"
	"testing"

	"github.com/calldraft/calldraft/pkg/model"
)

func ref(date, shift string) model.ShiftRef {
	return model.ShiftRef{Date: date, Shift: shift}
}

func TestWorkloadAnalyzer_Analyze(t *testing.T) {
	analyzer := NewWorkloadAnalyzer()

	residents := []*model.Resident{
		{Name: "Ada", AssignedShifts: []model.ShiftRef{ref("2024-07-06", "night"), ref("2024-07-10", "day"), ref("2024-07-04", "night")}},
		{Name: "Bo", AssignedShifts: []model.ShiftRef{ref("2024-07-08", "night")}},
		{Name: "Cy"},
	}
	holidays := model.NewHolidaySet("2024-07-04")

	m := analyzer.Analyze(residents, holidays)

	if m.ShiftGini <= 0 || m.ShiftGini > 1 {
		t.Errorf("ShiftGini = %f, want within (0, 1]", m.ShiftGini)
	}
	if m.MaxShifts != 3 || m.MinShifts != 0 || m.ShiftRange != 3 {
		t.Errorf("range = %v..%v", m.MinShifts, m.MaxShifts)
	}
	if len(m.ResidentStats) != 3 || m.ResidentStats[0].Name != "Ada" {
		t.Fatalf("ResidentStats = %+v", m.ResidentStats)
	}
	ada := m.ResidentStats[0]
	if ada.WeekendShifts != 1 || ada.HolidayShifts != 1 || ada.ByShift["night"] != 2 {
		t.Errorf("Ada stat = %+v", ada)
	}
	if math.Abs(m.ShiftTypeDistribution["night"]-75) > 0.001 {
		t.Errorf("night share = %v", m.ShiftTypeDistribution["night"])
	}
	if m.OverallFairnessScore < 0 || m.OverallFairnessScore > 100 {
		t.Errorf("OverallFairnessScore = %v", m.OverallFairnessScore)
	}
}

func TestWorkloadAnalyzer_EvenSplit(t *testing.T) {
	residents := []*model.Resident{
		{Name: "Ada", AssignedShifts: []model.ShiftRef{ref("2024-07-01", "night")}},
		{Name: "Bo", AssignedShifts: []model.ShiftRef{ref("2024-07-02", "night")}},
	}
	m := NewWorkloadAnalyzer().Analyze(residents, nil)
	if m.ShiftGini != 0 {
		t.Errorf("even split gini = %v", m.ShiftGini)
	}
	if math.Abs(m.OverallFairnessScore-100) > 1e-9 {
		t.Errorf("even split score = %v", m.OverallFairnessScore)
	}
}

func TestWorkloadAnalyzer_EmptyInput(t *testing.T) {
	m := NewWorkloadAnalyzer().Analyze(nil, nil)
	if m.OverallFairnessScore != 100 {
		t.Errorf("empty score = %v", m.OverallFairnessScore)
	}
}

func TestCoverage(t *testing.T) {
	rows := []model.ShiftRequirement{
		{Date: "2024-07-01", Flags: map[string]string{"day": "1", "night": "1"}},
		{Date: "2024-07-02", Flags: map[string]string{"day": "0", "night": "1"}},
	}
	ledger := model.Ledger{"2024-07-01": {"night": "Ada", "day": ""}}

	m := Coverage(rows, ledger)
	if m.RequiredSlots != 3 || m.FilledSlots != 1 {
		t.Errorf("slots = %d/%d", m.FilledSlots, m.RequiredSlots)
	}
	if m.UnfilledByShift["night"] != 1 || m.UnfilledByShift["day"] != 1 {
		t.Errorf("UnfilledByShift = %v", m.UnfilledByShift)
	}
	if len(m.UnfilledDates) != 2 {
		t.Errorf("UnfilledDates = %v", m.UnfilledDates)
	}
	if Coverage(nil, nil).FillRate != 100 {
		t.Error("no requirements should count as fully covered")
	}
}
