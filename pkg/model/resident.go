package model

import (
	"strconv"
	"strings"
)

// RotationEntry 住院医在某轮转科室的时间段
type RotationEntry struct {
	Rotation string `json:"rotation"`
	Start    string `json:"start"` // 含
	End      string `json:"end"`   // 含
}

// Covers 日期是否落在该轮转内
func (e RotationEntry) Covers(date string) bool {
	return DateRange{Start: e.Start, End: e.End}.Contains(date)
}

// RotationRecord 轮转表中的一行
type RotationRecord struct {
	Name      string            `json:"name"`
	Rotations []RotationEntry   `json:"rotations"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// PreferenceRecord 偏好表中的一行
type PreferenceRecord struct {
	Name   string      `json:"name"`
	Values Preferences `json:"values"`
}

// Preferences 偏好键到原始值的映射
type Preferences map[string]string

// Raw 原始值
func (p Preferences) Raw(key string) string {
	return strings.TrimSpace(p[key])
}

// Bool 解析布尔偏好，支持 TRUE/yes/1
func (p Preferences) Bool(key string) bool {
	switch strings.ToLower(p.Raw(key)) {
	case "true", "yes", "y", "1", "x":
		return true
	}
	return false
}

// List 解析以 ; 或 , 分隔的列表偏好
func (p Preferences) List(key string) []string {
	raw := p.Raw(key)
	if raw == "" {
		return nil
	}
	parts := strings.FieldsFunc(raw, func(r rune) bool { return r == ';' || r == ',' })
	out := make([]string, 0, len(parts))
	for _, s := range parts {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Has 列表偏好中是否包含某值（忽略大小写）
func (p Preferences) Has(key, value string) bool {
	for _, v := range p.List(key) {
		if strings.EqualFold(v, value) {
			return true
		}
	}
	return false
}

// Int 解析整数偏好，缺失或非法时返回 ok=false
func (p Preferences) Int(key string) (int, bool) {
	n, err := strconv.Atoi(p.Raw(key))
	if err != nil {
		return 0, false
	}
	return n, true
}

// Resident 住院医，由偏好行与同名轮转行合并而来
type Resident struct {
	Name           string            `json:"name"`
	Rotations      []RotationEntry   `json:"rotations"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	Preferences    Preferences       `json:"preferences"`
	AssignedShifts []ShiftRef        `json:"assignedShifts"`
}

// RotationOn 返回某日期所在轮转名，无则为空串
func (r *Resident) RotationOn(date string) string {
	for _, e := range r.Rotations {
		if e.Covers(date) {
			return e.Rotation
		}
	}
	return ""
}

// WorksOn 当天是否已有班次（可排除某个班次）
func (r *Resident) WorksOn(date, exceptShift string) bool {
	for _, s := range r.AssignedShifts {
		if s.Date == date && s.Shift != exceptShift {
			return true
		}
	}
	return false
}

// CountShifts 统计班次数，shift 为空统计全部
func (r *Resident) CountShifts(shift string) int {
	if shift == "" {
		return len(r.AssignedShifts)
	}
	n := 0
	for _, s := range r.AssignedShifts {
		if s.Shift == shift {
			n++
		}
	}
	return n
}

// Clone 深拷贝
func (r *Resident) Clone() *Resident {
	out := &Resident{
		Name:           r.Name,
		Rotations:      append([]RotationEntry(nil), r.Rotations...),
		AssignedShifts: append([]ShiftRef(nil), r.AssignedShifts...),
	}
	if r.Metadata != nil {
		out.Metadata = make(map[string]string, len(r.Metadata))
		for k, v := range r.Metadata {
			out.Metadata[k] = v
		}
	}
	out.Preferences = make(Preferences, len(r.Preferences))
	for k, v := range r.Preferences {
		out.Preferences[k] = v
	}
	return out
}
