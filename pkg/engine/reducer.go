package engine

import (
	"fmt"

	apperrors "github.com/calldraft/calldraft/pkg/errors"
	"github.com/calldraft/calldraft/pkg/model"
	"github.com/calldraft/calldraft/pkg/validator"
)

// Reduce 在 s 上原地应用动作；返回错误时 s 可能已部分修改，调用方应在副本上执行
func Reduce(s *State, a Action) error {
	switch act := normalize(a).(type) {
	case IngestShiftRequirements:
		rows := make([]model.ShiftRequirement, len(act.Rows))
		for i, r := range act.Rows {
			rows[i] = cloneRequirement(r)
		}
		model.SortRequirements(rows)
		s.ShiftRequirements = rows

	case IngestHolidays:
		s.Holidays.Add(act.Dates...)

	case IngestRotations:
		rows := make([]model.RotationRecord, len(act.Rows))
		for i, r := range act.Rows {
			rows[i] = cloneRotation(r)
		}
		s.Rotations = rows
		if len(s.Preferences) > 0 {
			deriveResidents(s)
		}

	case IngestPreferences:
		rows := make([]model.PreferenceRecord, len(act.Rows))
		for i, p := range act.Rows {
			rows[i] = clonePreference(p)
		}
		s.Preferences = rows
		deriveResidents(s)
		if len(s.Ledger) == 0 {
			resetShifts(s)
		}

	case AssignShift:
		if act.Name == "" {
			return apperrors.InvalidInput("name", "不能为空")
		}
		if err := checkSlot(act.Date, act.Shift); err != nil {
			return err
		}
		ref := model.ShiftRef{Date: act.Date, Shift: act.Shift}
		clearShift(s, ref)
		s.FocusedResident = ""
		s.History.Append(act.Name, ref)
		s.Ledger.Set(act.Date, act.Shift, act.Name)
		syncResidents(s)

	case ClearShift:
		if err := checkSlot(act.Date, act.Shift); err != nil {
			return err
		}
		clearShift(s, model.ShiftRef{Date: act.Date, Shift: act.Shift})
		syncResidents(s)

	case ResetShifts:
		resetShifts(s)

	case SetFocusDateAndShift:
		s.FocusedDate = act.Date
		s.FocusedShift = act.Shift

	case SetFocusResident:
		s.FocusedResident = act.Name

	case RestoreAssignments:
		ledger := act.Ledger
		if ledger == nil {
			ledger = make(model.Ledger)
		}
		history := act.History
		if history == nil {
			history = make(model.History)
		}
		if conflicts := validator.CheckConsistency(ledger, history); len(conflicts) > 0 {
			return apperrors.InconsistentState(validator.Summarize(conflicts)).
				WithField("conflicts", len(conflicts))
		}
		s.Ledger = ledger.Clone()
		s.History = history.Clone()
		for _, r := range s.Residents {
			if _, ok := s.History[r.Name]; !ok {
				s.History[r.Name] = []model.ShiftRef{}
			}
		}
		syncResidents(s)

	default:
		return apperrors.UnknownAction(fmt.Sprintf("%T", a))
	}
	return nil
}

// normalize 将指针形式的动作转为值
func normalize(a Action) Action {
	switch v := a.(type) {
	case *IngestShiftRequirements:
		if v != nil {
			return *v
		}
	case *IngestHolidays:
		if v != nil {
			return *v
		}
	case *IngestRotations:
		if v != nil {
			return *v
		}
	case *IngestPreferences:
		if v != nil {
			return *v
		}
	case *AssignShift:
		if v != nil {
			return *v
		}
	case *ClearShift:
		if v != nil {
			return *v
		}
	case *ResetShifts:
		if v != nil {
			return *v
		}
	case *SetFocusDateAndShift:
		if v != nil {
			return *v
		}
	case *SetFocusResident:
		if v != nil {
			return *v
		}
	case *RestoreAssignments:
		if v != nil {
			return *v
		}
	}
	return a
}

func checkSlot(date, shift string) error {
	if _, err := model.ParseDate(date); err != nil {
		return apperrors.InvalidInput("date", "需要 YYYY-MM-DD 格式")
	}
	if shift == "" {
		return apperrors.InvalidInput("shift", "不能为空")
	}
	return nil
}

// clearShift 清空账本槽位并从所有历史中移除该班次
func clearShift(s *State, ref model.ShiftRef) {
	s.Ledger.Vacate(ref.Date, ref.Shift)
	s.History.Strip(ref)
}

// resetShifts 每位住院医历史清空，账本按需求表重建为全部空缺
func resetShifts(s *State) {
	s.History = make(model.History, len(s.Residents))
	for _, r := range s.Residents {
		s.History[r.Name] = []model.ShiftRef{}
	}

	s.Ledger = make(model.Ledger, len(s.ShiftRequirements))
	for _, row := range s.ShiftRequirements {
		slots := make(map[string]string)
		for _, shift := range row.RequiredShifts() {
			slots[shift] = ""
		}
		s.Ledger[row.Date] = slots
	}
	syncResidents(s)
}

// deriveResidents 以偏好行为准，按姓名合并轮转行
func deriveResidents(s *State) {
	byName := make(map[string]model.RotationRecord, len(s.Rotations))
	for _, r := range s.Rotations {
		byName[r.Name] = r
	}

	residents := make([]*model.Resident, 0, len(s.Preferences))
	for _, p := range s.Preferences {
		res := &model.Resident{
			Name:        p.Name,
			Preferences: clonePreference(p).Values,
		}
		if rot, ok := byName[p.Name]; ok {
			cp := cloneRotation(rot)
			res.Rotations = cp.Rotations
			res.Metadata = cp.Metadata
		}
		residents = append(residents, res)
	}
	s.Residents = residents
	syncResidents(s)
}

// syncResidents 依据历史重建每位住院医的 AssignedShifts
func syncResidents(s *State) {
	for _, r := range s.Residents {
		r.AssignedShifts = append([]model.ShiftRef(nil), s.History[r.Name]...)
	}
}
