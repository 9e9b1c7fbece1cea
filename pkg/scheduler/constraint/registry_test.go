package constraint

import (
	"testing"

	apperrors "github.com/calldraft/calldraft/pkg/errors"
	"github.com/calldraft/calldraft/pkg/model"
)

// MockConstraint 测试用约束，按住院医姓名决定结果
type MockConstraint struct {
	typ      Type
	category Category
	weight   float64
	pass     map[string]bool
	active   map[string]bool
}

func (m *MockConstraint) Type() Type         { return m.typ }
func (m *MockConstraint) Category() Category { return m.category }
func (m *MockConstraint) Message() string    { return "msg:" + string(m.typ) }
func (m *MockConstraint) Weight() float64    { return m.weight }
func (m *MockConstraint) Evaluate(ctx *Context) bool {
	return m.pass[ctx.Resident.Name]
}

func (m *MockConstraint) Active(r *model.Resident, _ model.HolidaySet) bool {
	return m.active[r.Name]
}

// plainConstraint 不实现 DifficultySource
type plainConstraint struct{ Constraint }

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	r.Register(&MockConstraint{typ: "p", category: CategoryPrefer, weight: 5})
	r.Register(&MockConstraint{typ: "s", category: CategorySoft, weight: 1})
	r.Register(&MockConstraint{typ: "h1", category: CategoryHard, weight: 1})
	r.Register(&MockConstraint{typ: "h2", category: CategoryHard, weight: 9})

	all := r.GetAll()
	want := []Type{"h2", "h1", "s", "p"}
	for i, c := range all {
		if c.Type() != want[i] {
			t.Errorf("order[%d] = %s, want %s", i, c.Type(), want[i])
		}
	}

	// 同名替换
	r.Register(&MockConstraint{typ: "s", category: CategorySoft, weight: 7})
	if r.Count() != 4 {
		t.Errorf("Count = %d, want 4", r.Count())
	}
	c, _ := r.Get("s")
	if c.Weight() != 7 {
		t.Errorf("replaced weight = %v", c.Weight())
	}
}

func TestRegistry_GetUnknown(t *testing.T) {
	r := NewRegistry()
	r.Register(&MockConstraint{typ: "known", category: CategoryHard})

	if _, err := r.Get("missing"); !apperrors.Is(err, apperrors.CodeConstraintNotFound) {
		t.Errorf("Get(missing) err = %v", err)
	}
	if err := r.Validate([]Type{"known", "missing"}); err == nil {
		t.Error("Validate should reject unknown names")
	}
	if err := r.Validate([]Type{"known"}); err != nil {
		t.Errorf("Validate known: %v", err)
	}

	residents := []*model.Resident{{Name: "Ada"}}
	if _, err := r.EvaluateResidents([]Type{"missing"}, residents, nil, "2024-07-04", "night"); err == nil {
		t.Error("EvaluateResidents should fail on unknown name")
	}
}

func TestRegistry_Restrictions(t *testing.T) {
	r := NewRegistry()
	r.Register(&MockConstraint{typ: "h", category: CategoryHard})
	r.Register(&MockConstraint{typ: "s", category: CategorySoft})
	r.Register(&MockConstraint{typ: "p", category: CategoryPrefer})
	r.Unregister("s")

	rs := r.Restrictions()
	if len(rs.Hard) != 1 || len(rs.Soft) != 0 || len(rs.Prefer) != 1 {
		t.Errorf("Restrictions = %+v", rs)
	}
	if got := rs.All(); len(got) != 2 || got[0] != "h" {
		t.Errorf("All = %v", got)
	}
	if r.Summary()["prefer"] != 1 {
		t.Errorf("Summary = %v", r.Summary())
	}
}

func TestRegistry_EvaluateResidents(t *testing.T) {
	r := NewRegistry()
	r.Register(&MockConstraint{typ: "a", category: CategoryHard, pass: map[string]bool{"Ada": true}})
	r.Register(&MockConstraint{typ: "b", category: CategoryHard, pass: map[string]bool{"Ada": true, "Bo": true}})

	residents := []*model.Resident{{Name: "Ada"}, {Name: "Bo"}, {Name: "Cy"}}

	got, err := r.EvaluateResidents([]Type{"a", "b"}, residents, model.NewHolidaySet(), "2024-07-04", "night")
	if err != nil {
		t.Fatalf("EvaluateResidents: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d", len(got))
	}
	if failed := Failed(got["Bo"]); len(failed) != 1 || failed[0] != "msg:a" {
		t.Errorf("Bo failed = %v", failed)
	}
	if sat := Satisfied(got["Ada"]); len(sat) != 2 {
		t.Errorf("Ada satisfied = %v", sat)
	}

	free, err := r.UnrestrictedResidents([]Type{"a", "b"}, residents, nil, "2024-07-04", "night")
	if err != nil {
		t.Fatalf("UnrestrictedResidents: %v", err)
	}
	if len(free) != 1 || free[0].Name != "Ada" {
		t.Errorf("unrestricted = %v", free)
	}
}

func TestRegistry_TotalDifficulty(t *testing.T) {
	r := NewRegistry()
	r.Register(&MockConstraint{typ: "x", category: CategorySoft, weight: 2.5, active: map[string]bool{"Ada": true}})
	r.Register(&MockConstraint{typ: "y", category: CategoryHard, weight: 4, active: map[string]bool{"Ada": true, "Bo": true}})
	r.Register(plainConstraint{&MockConstraint{typ: "z", category: CategorySoft, weight: 100}})

	tests := []struct {
		name string
		want float64
	}{
		{"Ada", 6.5},
		{"Bo", 4},
		{"Cy", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.TotalDifficulty(&model.Resident{Name: tt.name}, nil)
			if got != tt.want {
				t.Errorf("TotalDifficulty = %v, want %v", got, tt.want)
			}
		})
	}
}
