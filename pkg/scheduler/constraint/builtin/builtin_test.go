package builtin

import (
	"testing"

	"github.com/calldraft/calldraft/pkg/model"
	"github.com/calldraft/calldraft/pkg/scheduler/constraint"
)

// createResident 创建测试住院医
func createResident(prefs model.Preferences, shifts ...model.ShiftRef) *model.Resident {
	return &model.Resident{
		Name: "Ada",
		Rotations: []model.RotationEntry{
			{Rotation: "Wards", Start: "2024-07-01", End: "2024-07-14"},
			{Rotation: "Vacation", Start: "2024-07-15", End: "2024-07-21"},
		},
		Preferences:    prefs,
		AssignedShifts: shifts,
	}
}

func ref(date, shift string) model.ShiftRef {
	return model.ShiftRef{Date: date, Shift: shift}
}

func TestHardConstraints(t *testing.T) {
	holidays := model.NewHolidaySet("2024-07-04", "2024-07-05", "2024-07-06")

	tests := []struct {
		name     string
		c        constraint.Constraint
		resident *model.Resident
		date     string
		shift    string
		want     bool
	}{
		{"休假期间不可排", NewBlockedRotationConstraint(0, DefaultBlockedRotations), createResident(nil), "2024-07-16", "night", false},
		{"普通轮转可排", NewBlockedRotationConstraint(0, DefaultBlockedRotations), createResident(nil), "2024-07-10", "night", true},
		{"无轮转记录可排", NewBlockedRotationConstraint(0, DefaultBlockedRotations), createResident(nil), "2024-09-01", "night", true},
		{"同日已有班次", NewAlreadyWorkingConstraint(0), createResident(nil, ref("2024-07-10", "day")), "2024-07-10", "night", false},
		{"同日同班次不算冲突", NewAlreadyWorkingConstraint(0), createResident(nil, ref("2024-07-10", "night")), "2024-07-10", "night", true},
		{"前一天值班", NewPostCallConstraint(0), createResident(nil, ref("2024-07-09", "night")), "2024-07-10", "night", false},
		{"后一天值班", NewPostCallConstraint(0), createResident(nil, ref("2024-07-11", "day")), "2024-07-10", "night", false},
		{"隔天值班可排", NewPostCallConstraint(0), createResident(nil, ref("2024-07-12", "day")), "2024-07-10", "night", true},
		{"已值过节假日", NewOneHolidayConstraint(0), createResident(nil, ref("2024-07-04", "day")), "2024-07-06", "night", false},
		{"非节假日不受限", NewOneHolidayConstraint(0), createResident(nil, ref("2024-07-04", "day")), "2024-07-10", "night", true},
		{"首个节假日可排", NewOneHolidayConstraint(0), createResident(nil), "2024-07-05", "night", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.c.Category() != constraint.CategoryHard {
				t.Fatalf("%s should be hard", tt.c.Type())
			}
			ctx := constraint.NewContext(tt.resident, holidays, tt.date, tt.shift)
			if got := tt.c.Evaluate(ctx); got != tt.want {
				t.Errorf("Evaluate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSoftConstraints(t *testing.T) {
	holidays := model.NewHolidaySet("2024-07-04")

	tests := []struct {
		name     string
		c        constraint.Constraint
		resident *model.Resident
		date     string
		shift    string
		want     bool
	}{
		{"三天内有班次", NewNearOtherShiftConstraint(0, 3), createResident(nil, ref("2024-07-07", "day")), "2024-07-10", "night", false},
		{"间隔足够", NewNearOtherShiftConstraint(0, 3), createResident(nil, ref("2024-07-06", "day")), "2024-07-10", "night", true},
		{"回避周六", NewAvoidWeekdayConstraint(0), createResident(model.Preferences{PrefAvoidDays: "Sat"}), "2024-07-06", "night", false},
		{"周日不回避", NewAvoidWeekdayConstraint(0), createResident(model.Preferences{PrefAvoidDays: "Sat"}), "2024-07-07", "night", true},
		{"回避夜班", NewAvoidShiftTypeConstraint(0), createResident(model.Preferences{PrefAvoidShifts: "night"}), "2024-07-07", "night", false},
		{"回避节假日", NewAvoidHolidaysConstraint(0), createResident(model.Preferences{PrefAvoidHolidays: "TRUE"}), "2024-07-04", "night", false},
		{"节假日不回避", NewAvoidHolidaysConstraint(0), createResident(model.Preferences{PrefAvoidHolidays: "FALSE"}), "2024-07-04", "night", true},
		{"达到上限", NewTargetReachedConstraint(0), createResident(model.Preferences{PrefMaxShifts: "1"}, ref("2024-07-01", "day")), "2024-07-10", "night", false},
		{"未设上限", NewTargetReachedConstraint(0), createResident(nil, ref("2024-07-01", "day")), "2024-07-10", "night", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := constraint.NewContext(tt.resident, holidays, tt.date, tt.shift)
			if got := tt.c.Evaluate(ctx); got != tt.want {
				t.Errorf("Evaluate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPreferConstraints(t *testing.T) {
	holidays := model.NewHolidaySet("2024-07-04")
	prefs := model.Preferences{
		PrefPreferredShifts: "day",
		PrefPreferredDays:   "Fri;Sat",
		PrefPreferHolidays:  "yes",
	}
	r := createResident(prefs)

	tests := []struct {
		name  string
		c     constraint.Constraint
		date  string
		shift string
		want  bool
	}{
		{"偏好白班", NewPrefersShiftTypeConstraint(0), "2024-07-10", "day", true},
		{"不偏好夜班", NewPrefersShiftTypeConstraint(0), "2024-07-10", "night", false},
		{"偏好周五", NewPrefersWeekdayConstraint(0), "2024-07-05", "night", true},
		{"偏好节假日", NewPrefersHolidaysConstraint(0), "2024-07-04", "night", true},
		{"普通日不触发", NewPrefersHolidaysConstraint(0), "2024-07-10", "night", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := constraint.NewContext(r, holidays, tt.date, tt.shift)
			if got := tt.c.Evaluate(ctx); got != tt.want {
				t.Errorf("Evaluate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRegisterDefaultConstraints(t *testing.T) {
	registry := constraint.NewRegistry()
	RegisterDefaultConstraints(registry, map[string]interface{}{
		"weights":           map[string]interface{}{"avoid_holidays": 5},
		"blocked_rotations": []interface{}{"Research"},
	})

	rs := registry.Restrictions()
	if len(rs.Hard) != 4 || len(rs.Soft) != 5 || len(rs.Prefer) != 3 {
		t.Fatalf("Restrictions = %+v", rs)
	}

	c, err := registry.Get(TypeAvoidHolidays)
	if err != nil {
		t.Fatal(err)
	}
	if c.Weight() != 5 {
		t.Errorf("avoid_holidays weight = %v, want 5", c.Weight())
	}

	// 配置覆盖默认限制轮转
	research := &model.Resident{
		Name:      "Bo",
		Rotations: []model.RotationEntry{{Rotation: "Research", Start: "2024-07-01", End: "2024-07-31"}},
	}
	blocked, _ := registry.Get(TypeBlockedRotation)
	if blocked.Evaluate(constraint.NewContext(research, nil, "2024-07-10", "night")) {
		t.Error("Research should be blocked by config")
	}
}

func TestDifficulty(t *testing.T) {
	registry := constraint.NewRegistry()
	RegisterDefaultConstraints(registry, nil)

	holidays := model.NewHolidaySet("2024-07-16")
	tests := []struct {
		name     string
		resident *model.Resident
		want     float64
	}{
		{"无特殊情况", &model.Resident{Name: "x"}, 0},
		{"节假日休假", createResident(nil), 3},
		{"节假日休假且回避周末", createResident(model.Preferences{PrefAvoidDays: "Sat;Sun"}), 4},
		{"全部生效", createResident(model.Preferences{PrefAvoidDays: "Sat", PrefAvoidShifts: "night", PrefAvoidHolidays: "TRUE"}), 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := registry.TotalDifficulty(tt.resident, holidays); got != tt.want {
				t.Errorf("TotalDifficulty = %v, want %v", got, tt.want)
			}
		})
	}
}
