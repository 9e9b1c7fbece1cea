package recommend

import (
	"reflect"
	"testing"

	"github.com/calldraft/calldraft/pkg/model"
	"github.com/calldraft/calldraft/pkg/scheduler/constraint"
	"github.com/calldraft/calldraft/pkg/scheduler/constraint/builtin"
)

func newTestRecommender(t *testing.T) *Recommender {
	t.Helper()
	registry := constraint.NewRegistry()
	builtin.RegisterDefaultConstraints(registry, nil)
	return NewRecommender(registry)
}

func names(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Name)
	}
	return out
}

// testResidents 2024-07-06（周六）night 的各类住院医
func testResidents() []*model.Resident {
	return []*model.Resident{
		{ // 休假：硬限制
			Name:      "Vac",
			Rotations: []model.RotationEntry{{Rotation: "Vacation", Start: "2024-07-01", End: "2024-07-07"}},
		},
		{ // 回避周六：软限制
			Name:        "Sat",
			Preferences: model.Preferences{builtin.PrefAvoidDays: "Sat"},
		},
		{ // 偏好夜班
			Name:        "Owl",
			Preferences: model.Preferences{builtin.PrefPreferredShifts: "night"},
		},
		{Name: "Plain"},
		{ // 难度更高的中立者
			Name:        "Picky",
			Preferences: model.Preferences{builtin.PrefAvoidShifts: "day"},
		},
		{ // 偏好夜班但前一天值班：硬限制优先
			Name:           "Tired",
			Preferences:    model.Preferences{builtin.PrefPreferredShifts: "night"},
			AssignedShifts: []model.ShiftRef{{Date: "2024-07-05", Shift: "day"}},
		},
	}
}

func TestSplitResidents(t *testing.T) {
	r := newTestRecommender(t)
	residents := testResidents()

	b, err := r.SplitResidents(residents, model.NewHolidaySet(), "2024-07-06", "night")
	if err != nil {
		t.Fatalf("SplitResidents: %v", err)
	}

	if got := names(b.HardRestricted); !reflect.DeepEqual(got, []string{"Vac", "Tired"}) {
		t.Errorf("HardRestricted = %v", got)
	}
	if got := names(b.SoftRestricted); !reflect.DeepEqual(got, []string{"Sat"}) {
		t.Errorf("SoftRestricted = %v", got)
	}
	if got := names(b.PreferredToWork); !reflect.DeepEqual(got, []string{"Owl"}) {
		t.Errorf("PreferredToWork = %v", got)
	}
	if got := names(b.Neutral); !reflect.DeepEqual(got, []string{"Plain", "Picky"}) {
		t.Errorf("Neutral = %v", got)
	}

	if b.Len() != len(residents) {
		t.Errorf("buckets hold %d residents, want %d", b.Len(), len(residents))
	}
	if msgs := b.HardRestricted[0].Constraints; len(msgs) == 0 {
		t.Error("hard restricted entry should carry failed constraint messages")
	}
	if msgs := b.PreferredToWork[0].Preferred; len(msgs) != 1 {
		t.Errorf("preferred messages = %v", msgs)
	}
	if tired := b.HardRestricted[1]; tired.NumTotalShifts != 1 || tired.NumSpecificShifts != 0 {
		t.Errorf("shift counts = %+v", tired)
	}
}

func TestSplitResidents_Partition(t *testing.T) {
	r := newTestRecommender(t)
	residents := testResidents()
	holidays := model.NewHolidaySet("2024-07-04", "2024-07-05", "2024-07-06")

	for _, date := range []string{"2024-07-03", "2024-07-04", "2024-07-06", "2024-07-10"} {
		for _, shift := range []string{"day", "night"} {
			b, err := r.SplitResidents(residents, holidays, date, shift)
			if err != nil {
				t.Fatal(err)
			}
			seen := make(map[string]int)
			for _, bucket := range [][]Entry{b.PreferredToWork, b.Neutral, b.SoftRestricted, b.HardRestricted} {
				for i, e := range bucket {
					seen[e.Name]++
					if i > 0 && bucket[i-1].TotalDifficulty > e.TotalDifficulty {
						t.Errorf("%s/%s: bucket not sorted by difficulty", date, shift)
					}
				}
			}
			for _, res := range residents {
				if seen[res.Name] != 1 {
					t.Errorf("%s/%s: %s appears %d times", date, shift, res.Name, seen[res.Name])
				}
			}
		}
	}
}

func TestSplitResidents_UnknownConstraint(t *testing.T) {
	registry := constraint.NewRegistry()
	builtin.RegisterDefaultConstraints(registry, nil)

	_, err := NewRecommenderWith(registry, constraint.Restrictions{Hard: []constraint.Type{"nope"}})
	if err == nil {
		t.Error("unknown constraint should be rejected at construction")
	}
}

func TestFlattenAndUnfilled(t *testing.T) {
	rows := []model.ShiftRequirement{
		{Date: "2024-07-01", Flags: map[string]string{"night": "1", "day": "0"}},
		{Date: "2024-07-02", Flags: map[string]string{"night": "1", "day": "1"}},
	}

	slots := FlattenShifts(rows)
	want := []model.ShiftRef{
		{Date: "2024-07-01", Shift: "night"},
		{Date: "2024-07-02", Shift: "day"},
		{Date: "2024-07-02", Shift: "night"},
	}
	if !reflect.DeepEqual(slots, want) {
		t.Fatalf("FlattenShifts = %v", slots)
	}

	ledger := model.Ledger{"2024-07-02": {"day": "Ada", "night": ""}}
	unfilled := UnfilledShifts(slots, ledger)
	if len(unfilled) != 2 || unfilled[1].Shift != "night" {
		t.Errorf("UnfilledShifts = %v", unfilled)
	}
}

func TestRankDemand(t *testing.T) {
	r := newTestRecommender(t)

	vacation := func(name, start, end string) *model.Resident {
		return &model.Resident{Name: name, Rotations: []model.RotationEntry{{Rotation: "Vacation", Start: start, End: end}}}
	}
	residents := []*model.Resident{
		vacation("A", "2024-07-01", "2024-07-01"),
		vacation("B", "2024-07-01", "2024-07-01"),
		vacation("C", "2024-07-01", "2024-07-01"),
		vacation("D", "2024-07-01", "2024-07-01"),
		{Name: "E"},
	}
	rows := []model.ShiftRequirement{
		{Date: "2024-07-02", Flags: map[string]string{"night": "1"}},
		{Date: "2024-07-01", Flags: map[string]string{"night": "1"}},
		{Date: "2024-07-03", Flags: map[string]string{"night": "1"}},
	}
	ledger := model.Ledger{"2024-07-03": {"night": "E"}}

	demand, err := r.RankDemand(residents, model.NewHolidaySet(), rows, ledger)
	if err != nil {
		t.Fatalf("RankDemand: %v", err)
	}
	if len(demand) != 2 {
		t.Fatalf("len = %d, want 2 (filled shift excluded)", len(demand))
	}
	if demand[0].Date != "2024-07-01" || len(demand[0].AvailableResidents) != 1 {
		t.Errorf("most urgent = %+v", demand[0])
	}
	if demand[1].Date != "2024-07-02" || len(demand[1].AvailableResidents) != 5 {
		t.Errorf("least urgent = %+v", demand[1])
	}
}
