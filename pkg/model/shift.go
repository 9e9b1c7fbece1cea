package model

import "sort"

const (
	// FlagRequired 班次需要排人
	FlagRequired = "1"
	// FlagNotRequired 班次不需要排人
	FlagNotRequired = "0"
)

// ShiftRequirement 某日期各班次是否需要排人
type ShiftRequirement struct {
	Date  string            `json:"date" validate:"required,datetime=2006-01-02"`
	Flags map[string]string `json:"flags"`
}

// Required 该班次是否需要排人
func (r ShiftRequirement) Required(shift string) bool {
	return r.Flags[shift] == FlagRequired
}

// RequiredShifts 需要排人的班次，按名称排序
func (r ShiftRequirement) RequiredShifts() []string {
	out := make([]string, 0, len(r.Flags))
	for name, flag := range r.Flags {
		if flag == FlagRequired {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// SortRequirements 按日期排序（稳定）
func SortRequirements(rows []ShiftRequirement) {
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date < rows[j].Date })
}

// Ledger 分配账本：日期 → 班次 → 住院医姓名，空串表示空缺
type Ledger map[string]map[string]string

// Occupant 返回某班次当前值班人
func (l Ledger) Occupant(date, shift string) (string, bool) {
	name := l[date][shift]
	return name, name != ""
}

// Set 写入值班人
func (l Ledger) Set(date, shift, name string) {
	row, ok := l[date]
	if !ok {
		row = make(map[string]string)
		l[date] = row
	}
	row[shift] = name
}

// Vacate 清空班次，保留槽位
func (l Ledger) Vacate(date, shift string) {
	if row, ok := l[date]; ok {
		if _, exists := row[shift]; exists {
			row[shift] = ""
		}
	}
}

// Entries 所有已占用班次，按日期、班次排序
func (l Ledger) Entries() []LedgerEntry {
	var out []LedgerEntry
	for date, row := range l {
		for shift, name := range row {
			if name != "" {
				out = append(out, LedgerEntry{ShiftRef: ShiftRef{Date: date, Shift: shift}, Name: name})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Shift < out[j].Shift
	})
	return out
}

// Filled 已占用班次数
func (l Ledger) Filled() int {
	n := 0
	for _, row := range l {
		for _, name := range row {
			if name != "" {
				n++
			}
		}
	}
	return n
}

// Clone 深拷贝
func (l Ledger) Clone() Ledger {
	out := make(Ledger, len(l))
	for date, row := range l {
		cp := make(map[string]string, len(row))
		for k, v := range row {
			cp[k] = v
		}
		out[date] = cp
	}
	return out
}

// Equal 比较已占用班次，空槽位与缺失槽位视为相同
func (l Ledger) Equal(other Ledger) bool {
	a, b := l.Entries(), other.Entries()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// LedgerEntry 账本中的一条占用记录
type LedgerEntry struct {
	ShiftRef
	Name string `json:"name"`
}

// History 每位住院医的值班历史
type History map[string][]ShiftRef

// Append 追加一条记录
func (h History) Append(name string, ref ShiftRef) {
	h[name] = append(h[name], ref)
}

// Strip 从所有住院医历史中移除匹配的记录，返回被移除的住院医
func (h History) Strip(ref ShiftRef) []string {
	var affected []string
	for name, refs := range h {
		kept := refs[:0:0]
		for _, r := range refs {
			if !r.Same(ref) {
				kept = append(kept, r)
			}
		}
		if len(kept) != len(refs) {
			affected = append(affected, name)
		}
		h[name] = kept
	}
	sort.Strings(affected)
	return affected
}

// Clone 深拷贝
func (h History) Clone() History {
	out := make(History, len(h))
	for name, refs := range h {
		out[name] = append([]ShiftRef{}, refs...)
	}
	return out
}

// Equal 比较历史，空列表与缺失视为相同，记录顺序有意义
func (h History) Equal(other History) bool {
	for name, refs := range h {
		o := other[name]
		if len(refs) != len(o) {
			return false
		}
		for i := range refs {
			if refs[i] != o[i] {
				return false
			}
		}
	}
	for name, refs := range other {
		if len(refs) > 0 && len(h[name]) == 0 {
			return false
		}
	}
	return true
}
