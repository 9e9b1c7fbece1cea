package engine

import "github.com/calldraft/calldraft/pkg/model"

// Action 状态转换，只能由本包定义的类型实现
type Action interface {
	// Kind 动作名称，用于日志与审计
	Kind() string
	isAction()
}

type sealed struct{}

func (sealed) isAction() {}

// IngestShiftRequirements 整体替换班次需求表
type IngestShiftRequirements struct {
	sealed
	Rows []model.ShiftRequirement
}

// IngestHolidays 将日期并入节假日集合
type IngestHolidays struct {
	sealed
	Dates []string
}

// IngestRotations 整体替换轮转表
type IngestRotations struct {
	sealed
	Rows []model.RotationRecord
}

// IngestPreferences 整体替换偏好表并重建住院医；账本为空时执行全量重置
type IngestPreferences struct {
	sealed
	Rows []model.PreferenceRecord
}

// AssignShift 将班次分配给住院医，覆盖原值班人
type AssignShift struct {
	sealed
	Name  string
	Date  string
	Shift string
}

// ClearShift 清空班次
type ClearShift struct {
	sealed
	Date  string
	Shift string
}

// ResetShifts 清空全部分配
type ResetShifts struct {
	sealed
}

// SetFocusDateAndShift 设置当前关注的班次
type SetFocusDateAndShift struct {
	sealed
	Date  string
	Shift string
}

// SetFocusResident 设置当前关注的住院医
type SetFocusResident struct {
	sealed
	Name string
}

// RestoreAssignments 载入持久化的账本与历史，两者不一致时拒绝
type RestoreAssignments struct {
	sealed
	Ledger  model.Ledger
	History model.History
}

func (IngestShiftRequirements) Kind() string { return "IngestShiftRequirements" }
func (IngestHolidays) Kind() string          { return "IngestHolidays" }
func (IngestRotations) Kind() string         { return "IngestRotations" }
func (IngestPreferences) Kind() string       { return "IngestPreferences" }
func (AssignShift) Kind() string             { return "AssignShift" }
func (ClearShift) Kind() string              { return "ClearShift" }
func (ResetShifts) Kind() string             { return "ResetShifts" }
func (SetFocusDateAndShift) Kind() string    { return "SetFocusDateAndShift" }
func (SetFocusResident) Kind() string        { return "SetFocusResident" }
func (RestoreAssignments) Kind() string      { return "RestoreAssignments" }

// TouchesAssignments 该动作是否可能改变账本或历史
func TouchesAssignments(a Action) bool {
	switch a.(type) {
	case AssignShift, *AssignShift, ClearShift, *ClearShift, ResetShifts, *ResetShifts,
		RestoreAssignments, *RestoreAssignments, IngestPreferences, *IngestPreferences:
		return true
	}
	return false
}
