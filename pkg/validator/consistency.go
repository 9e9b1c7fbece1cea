// Package validator 校验分配账本与值班历史的一致性
package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/calldraft/calldraft/pkg/model"
)

// ConflictType 冲突类型
type ConflictType string

const (
	ConflictMissingHistory ConflictType = "missing_history" // 账本有记录，历史中没有
	ConflictOrphanHistory  ConflictType = "orphan_history"  // 历史有记录，账本不是此人
	ConflictDuplicate      ConflictType = "duplicate"       // 历史中同一班次出现多次
	ConflictSameDay        ConflictType = "same_day"        // 同一天多个班次
	ConflictUnknown        ConflictType = "unknown_resident"
)

// Conflict 冲突信息
type Conflict struct {
	Type     ConflictType `json:"type"`
	Severity string       `json:"severity"` // error/warning
	Resident string       `json:"resident"`
	Date     string       `json:"date"`
	Shift    string       `json:"shift,omitempty"`
	Message  string       `json:"message"`
}

// Checker 一致性检查器
type Checker struct {
	config *CheckerConfig
}

// CheckerConfig 检查器配置
type CheckerConfig struct {
	CheckSameDay   bool     // 是否报告同日多班（警告）
	KnownResidents []string // 非空时报告未知住院医（警告）
}

// DefaultCheckerConfig 返回默认配置
func DefaultCheckerConfig() *CheckerConfig {
	return &CheckerConfig{CheckSameDay: true}
}

// NewChecker 创建检查器
func NewChecker(config *CheckerConfig) *Checker {
	if config == nil {
		config = DefaultCheckerConfig()
	}
	return &Checker{config: config}
}

// Check 检测所有冲突，结果按日期、班次、住院医排序
func (c *Checker) Check(ledger model.Ledger, history model.History) []Conflict {
	var conflicts []Conflict

	for _, e := range ledger.Entries() {
		if count(history[e.Name], e.ShiftRef) == 0 {
			conflicts = append(conflicts, Conflict{
				Type:     ConflictMissingHistory,
				Severity: "error",
				Resident: e.Name,
				Date:     e.Date,
				Shift:    e.Shift,
				Message:  fmt.Sprintf("%s 在账本中值 %s，但历史中没有记录", e.Name, e.ShiftRef),
			})
		}
	}

	for name, refs := range history {
		seen := make(map[model.ShiftRef]bool)
		for _, ref := range refs {
			if seen[ref] {
				conflicts = append(conflicts, Conflict{
					Type:     ConflictDuplicate,
					Severity: "error",
					Resident: name,
					Date:     ref.Date,
					Shift:    ref.Shift,
					Message:  fmt.Sprintf("%s 的历史中 %s 出现多次", name, ref),
				})
				continue
			}
			seen[ref] = true

			if occupant, _ := ledger.Occupant(ref.Date, ref.Shift); occupant != name {
				conflicts = append(conflicts, Conflict{
					Type:     ConflictOrphanHistory,
					Severity: "error",
					Resident: name,
					Date:     ref.Date,
					Shift:    ref.Shift,
					Message:  fmt.Sprintf("%s 的历史包含 %s，但账本中为 %q", name, ref, occupant),
				})
			}
		}

		if c.config.CheckSameDay {
			conflicts = append(conflicts, c.detectSameDay(name, refs)...)
		}
	}

	if len(c.config.KnownResidents) > 0 {
		conflicts = append(conflicts, c.detectUnknown(ledger)...)
	}

	sort.SliceStable(conflicts, func(i, j int) bool {
		a, b := conflicts[i], conflicts[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.Shift != b.Shift {
			return a.Shift < b.Shift
		}
		return a.Resident < b.Resident
	})
	return conflicts
}

func (c *Checker) detectSameDay(name string, refs []model.ShiftRef) []Conflict {
	var conflicts []Conflict
	byDate := make(map[string][]string)
	for _, ref := range refs {
		byDate[ref.Date] = append(byDate[ref.Date], ref.Shift)
	}
	for date, shifts := range byDate {
		if len(shifts) > 1 {
			sort.Strings(shifts)
			conflicts = append(conflicts, Conflict{
				Type:     ConflictSameDay,
				Severity: "warning",
				Resident: name,
				Date:     date,
				Message:  fmt.Sprintf("%s 在 %s 有 %d 个班次: %s", name, date, len(shifts), strings.Join(shifts, ", ")),
			})
		}
	}
	return conflicts
}

func (c *Checker) detectUnknown(ledger model.Ledger) []Conflict {
	known := make(map[string]bool, len(c.config.KnownResidents))
	for _, n := range c.config.KnownResidents {
		known[n] = true
	}
	var conflicts []Conflict
	for _, e := range ledger.Entries() {
		if !known[e.Name] {
			conflicts = append(conflicts, Conflict{
				Type:     ConflictUnknown,
				Severity: "warning",
				Resident: e.Name,
				Date:     e.Date,
				Shift:    e.Shift,
				Message:  fmt.Sprintf("账本中的 %s 不在住院医名单中", e.Name),
			})
		}
	}
	return conflicts
}

// Errors 只保留 error 级别的冲突
func Errors(conflicts []Conflict) []Conflict {
	var out []Conflict
	for _, c := range conflicts {
		if c.Severity == "error" {
			out = append(out, c)
		}
	}
	return out
}

// CheckConsistency 只检查账本与历史的双向一致性
func CheckConsistency(ledger model.Ledger, history model.History) []Conflict {
	return Errors(NewChecker(&CheckerConfig{}).Check(ledger, history))
}

// Summarize 将冲突压缩为一行说明
func Summarize(conflicts []Conflict) string {
	if len(conflicts) == 0 {
		return ""
	}
	msgs := make([]string, 0, len(conflicts))
	for _, c := range conflicts {
		msgs = append(msgs, c.Message)
	}
	if len(msgs) > 5 {
		msgs = append(msgs[:5], fmt.Sprintf("…共 %d 项", len(conflicts)))
	}
	return strings.Join(msgs, "; ")
}

func count(refs []model.ShiftRef, target model.ShiftRef) int {
	n := 0
	for _, r := range refs {
		if r == target {
			n++
		}
	}
	return n
}
