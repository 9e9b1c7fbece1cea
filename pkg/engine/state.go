// Package engine 实现值班分配状态机：所有状态变更都经由 Reduce
package engine

import (
	"reflect"

	"github.com/calldraft/calldraft/pkg/model"
)

// State 状态机的完整状态
type State struct {
	ShiftRequirements []model.ShiftRequirement `json:"requiredShifts"`
	Rotations         []model.RotationRecord   `json:"rotations"`
	Preferences       []model.PreferenceRecord `json:"preferences"`
	Residents         []*model.Resident        `json:"residents"`
	Holidays          model.HolidaySet         `json:"holidays"`
	Ledger            model.Ledger             `json:"assignedShifts"`
	History           model.History            `json:"assignedShiftsByResident"`

	// 焦点仅影响界面，不参与一致性检查与状态比较
	FocusedDate     string `json:"focusedDate,omitempty"`
	FocusedShift    string `json:"focusedShift,omitempty"`
	FocusedResident string `json:"focusedResident,omitempty"`
}

// NewState 创建空状态
func NewState() *State {
	return &State{
		Holidays: model.NewHolidaySet(),
		Ledger:   make(model.Ledger),
		History:  make(model.History),
	}
}

// Clone 深拷贝
func (s *State) Clone() *State {
	out := &State{
		ShiftRequirements: make([]model.ShiftRequirement, len(s.ShiftRequirements)),
		Rotations:         make([]model.RotationRecord, len(s.Rotations)),
		Preferences:       make([]model.PreferenceRecord, len(s.Preferences)),
		Residents:         make([]*model.Resident, len(s.Residents)),
		Holidays:          s.Holidays.Clone(),
		Ledger:            s.Ledger.Clone(),
		History:           s.History.Clone(),
		FocusedDate:       s.FocusedDate,
		FocusedShift:      s.FocusedShift,
		FocusedResident:   s.FocusedResident,
	}
	for i, r := range s.ShiftRequirements {
		out.ShiftRequirements[i] = cloneRequirement(r)
	}
	for i, r := range s.Rotations {
		out.Rotations[i] = cloneRotation(r)
	}
	for i, p := range s.Preferences {
		out.Preferences[i] = clonePreference(p)
	}
	for i, r := range s.Residents {
		out.Residents[i] = r.Clone()
	}
	return out
}

// Equal 比较两个状态，忽略焦点
func (s *State) Equal(other *State) bool {
	if !s.Ledger.Equal(other.Ledger) || !s.History.Equal(other.History) {
		return false
	}
	if !reflect.DeepEqual(s.Holidays.Sorted(), other.Holidays.Sorted()) {
		return false
	}
	if !reflect.DeepEqual(s.ShiftRequirements, other.ShiftRequirements) ||
		!reflect.DeepEqual(s.Rotations, other.Rotations) ||
		!reflect.DeepEqual(s.Preferences, other.Preferences) {
		return false
	}
	if len(s.Residents) != len(other.Residents) {
		return false
	}
	for i := range s.Residents {
		a, b := s.Residents[i], other.Residents[i]
		if a.Name != b.Name || len(a.AssignedShifts) != len(b.AssignedShifts) {
			return false
		}
		for j := range a.AssignedShifts {
			if a.AssignedShifts[j] != b.AssignedShifts[j] {
				return false
			}
		}
	}
	return true
}

// Resident 按姓名查找住院医
func (s *State) Resident(name string) *model.Resident {
	for _, r := range s.Residents {
		if r.Name == name {
			return r
		}
	}
	return nil
}

// Requirement 按日期查找需求行
func (s *State) Requirement(date string) (model.ShiftRequirement, bool) {
	for _, r := range s.ShiftRequirements {
		if r.Date == date {
			return r, true
		}
	}
	return model.ShiftRequirement{}, false
}

func cloneRequirement(r model.ShiftRequirement) model.ShiftRequirement {
	flags := make(map[string]string, len(r.Flags))
	for k, v := range r.Flags {
		flags[k] = v
	}
	return model.ShiftRequirement{Date: r.Date, Flags: flags}
}

func cloneRotation(r model.RotationRecord) model.RotationRecord {
	out := model.RotationRecord{
		Name:      r.Name,
		Rotations: append([]model.RotationEntry(nil), r.Rotations...),
	}
	if r.Metadata != nil {
		out.Metadata = make(map[string]string, len(r.Metadata))
		for k, v := range r.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}

func clonePreference(p model.PreferenceRecord) model.PreferenceRecord {
	values := make(model.Preferences, len(p.Values))
	for k, v := range p.Values {
		values[k] = v
	}
	return model.PreferenceRecord{Name: p.Name, Values: values}
}
