package model

import (
	"testing"
)

func TestISOWeekday(t *testing.T) {
	tests := []struct {
		date string
		want int
	}{
		{"2024-07-01", 1}, // 周一
		{"2024-07-03", 3},
		{"2024-07-06", 6},
		{"2024-07-07", 7}, // 周日
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			if got := ISOWeekday(MustParseDate(tt.date)); got != tt.want {
				t.Errorf("ISOWeekday(%s) = %d, want %d", tt.date, got, tt.want)
			}
		})
	}
}

func TestDateHelpers(t *testing.T) {
	if got := AddDays("2024-02-28", 2); got != "2024-03-01" {
		t.Errorf("AddDays = %s", got)
	}
	if got := DaysBetween("2024-07-10", "2024-07-04"); got != 6 {
		t.Errorf("DaysBetween = %d", got)
	}
	if got := WeekdayAbbrev("2024-07-04"); got != "Thu" {
		t.Errorf("WeekdayAbbrev = %s", got)
	}
}

func TestPreferences(t *testing.T) {
	p := Preferences{
		"avoid_days":     "Sat; sun",
		"avoid_holidays": "TRUE",
		"max_shifts":     "4",
		"blank":          "  ",
	}

	if !p.Bool("avoid_holidays") {
		t.Error("TRUE should parse as true")
	}
	if p.Bool("blank") {
		t.Error("blank should parse as false")
	}
	if !p.Has("avoid_days", "Sun") {
		t.Error("list lookup should be case-insensitive")
	}
	if got := p.List("avoid_days"); len(got) != 2 {
		t.Errorf("List = %v", got)
	}
	if n, ok := p.Int("max_shifts"); !ok || n != 4 {
		t.Errorf("Int = %d, %v", n, ok)
	}
	if _, ok := p.Int("blank"); ok {
		t.Error("blank int should not parse")
	}
}

func TestResident(t *testing.T) {
	r := &Resident{
		Name: "Ada",
		Rotations: []RotationEntry{
			{Rotation: "Wards", Start: "2024-07-01", End: "2024-07-28"},
			{Rotation: "Vacation", Start: "2024-07-29", End: "2024-08-04"},
		},
		AssignedShifts: []ShiftRef{
			{Date: "2024-07-04", Shift: "night"},
			{Date: "2024-07-06", Shift: "day"},
			{Date: "2024-07-09", Shift: "night"},
		},
	}

	if got := r.RotationOn("2024-07-30"); got != "Vacation" {
		t.Errorf("RotationOn = %q", got)
	}
	if got := r.RotationOn("2024-09-01"); got != "" {
		t.Errorf("RotationOn outside range = %q", got)
	}
	if r.CountShifts("") != 3 || r.CountShifts("night") != 2 {
		t.Errorf("CountShifts wrong: %d/%d", r.CountShifts(""), r.CountShifts("night"))
	}
	if !r.WorksOn("2024-07-04", "day") || r.WorksOn("2024-07-04", "night") {
		t.Error("WorksOn should ignore the excepted shift")
	}

	cp := r.Clone()
	cp.AssignedShifts[0].Shift = "changed"
	if r.AssignedShifts[0].Shift != "night" {
		t.Error("Clone shares AssignedShifts backing array")
	}
}

func TestLedger(t *testing.T) {
	l := Ledger{"2024-07-04": {"night": "", "day": ""}}

	l.Set("2024-07-04", "night", "Ada")
	if name, ok := l.Occupant("2024-07-04", "night"); !ok || name != "Ada" {
		t.Errorf("Occupant = %q, %v", name, ok)
	}
	if _, ok := l.Occupant("2024-07-05", "night"); ok {
		t.Error("missing row should be unoccupied")
	}
	if l.Filled() != 1 {
		t.Errorf("Filled = %d", l.Filled())
	}

	l.Vacate("2024-07-04", "night")
	if _, exists := l["2024-07-04"]["night"]; !exists {
		t.Error("Vacate should keep the slot")
	}
	if !l.Equal(Ledger{}) {
		t.Error("ledger with only empty slots should equal an empty ledger")
	}
}

func TestHistory(t *testing.T) {
	ref := ShiftRef{Date: "2024-07-04", Shift: "night"}
	h := History{"Ada": nil, "Bo": nil}
	h.Append("Ada", ref)
	h.Append("Bo", ShiftRef{Date: "2024-07-05", Shift: "night"})

	before := h.Clone()
	h.Append("Bo", ref)

	affected := h.Strip(ref)
	if len(affected) != 2 || affected[0] != "Ada" || affected[1] != "Bo" {
		t.Errorf("Strip affected = %v", affected)
	}
	if len(h["Ada"]) != 0 || len(h["Bo"]) != 1 {
		t.Errorf("after Strip: %v", h)
	}
	if before.Equal(h) {
		t.Error("histories should differ after stripping Ada's record")
	}
	if !(History{"Ada": {}}).Equal(History{}) {
		t.Error("empty list should equal missing entry")
	}
}

func TestHolidaySet(t *testing.T) {
	hs := NewHolidaySet("2024-12-25", "2024-07-04")
	hs.Add("2024-07-04")

	if len(hs) != 2 {
		t.Errorf("len = %d", len(hs))
	}
	sorted := hs.Sorted()
	if sorted[0] != "2024-07-04" {
		t.Errorf("Sorted = %v", sorted)
	}
	cp := hs.Clone()
	cp.Add("2025-01-01")
	if hs.Contains("2025-01-01") {
		t.Error("Clone shares storage")
	}
}

func TestShiftRequirement(t *testing.T) {
	row := ShiftRequirement{Date: "2024-07-04", Flags: map[string]string{"night": "1", "day": "1", "swing": "0"}}

	got := row.RequiredShifts()
	if len(got) != 2 || got[0] != "day" || got[1] != "night" {
		t.Errorf("RequiredShifts = %v", got)
	}
	if row.Required("swing") {
		t.Error("swing flagged 0 should not be required")
	}

	rows := []ShiftRequirement{{Date: "2024-07-05"}, {Date: "2024-07-03"}}
	SortRequirements(rows)
	if rows[0].Date != "2024-07-03" {
		t.Errorf("SortRequirements = %v", rows)
	}
}
