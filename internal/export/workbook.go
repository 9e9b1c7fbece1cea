// Package export 将分配结果导出为 XLSX 工作簿
package export

import (
	"fmt"
	"io"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/calldraft/calldraft/pkg/engine"
	"github.com/calldraft/calldraft/pkg/model"
	"github.com/calldraft/calldraft/pkg/stats"
)

// 工作表名称
const (
	SheetCalendar    = "Calendar"
	SheetAssignments = "Assignments"
	SheetWorkload    = "Workload"
)

// notRequired 不需要排人的班次在日历中的占位
const notRequired = "-"

// Build 生成工作簿：日历、逐条分配、工作量三张表
func Build(st *engine.State) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetCalendar); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range []string{SheetAssignments, SheetWorkload} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	shifts := shiftColumns(st.ShiftRequirements)
	steps := []func() error{
		func() error { return writeCalendar(f, st, shifts, header) },
		func() error { return writeAssignments(f, st, header) },
		func() error { return writeWorkload(f, st, shifts, header) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

// Write 生成工作簿并写出
func Write(w io.Writer, st *engine.State) error {
	f, err := Build(st)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// shiftColumns 需求表中出现过的全部班次名，排序
func shiftColumns(rows []model.ShiftRequirement) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range rows {
		for shift := range r.Flags {
			if !seen[shift] {
				seen[shift] = true
				out = append(out, shift)
			}
		}
	}
	sort.Strings(out)
	return out
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, cols []string, style int) error {
	values := make([]interface{}, len(cols))
	for i, c := range cols {
		values[i] = c
	}
	if err := writeRow(f, sheet, 1, values); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(cols), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(cols))
	return f.SetColWidth(sheet, "A", lastCol, 14)
}

func holidayMark(holidays model.HolidaySet, date string) string {
	if holidays.Contains(date) {
		return "Y"
	}
	return ""
}

func writeCalendar(f *excelize.File, st *engine.State, shifts []string, style int) error {
	cols := append([]string{"Date", "Weekday", "Holiday"}, shifts...)
	if err := writeHeader(f, SheetCalendar, cols, style); err != nil {
		return err
	}
	for i, req := range st.ShiftRequirements {
		values := []interface{}{req.Date, model.WeekdayAbbrev(req.Date), holidayMark(st.Holidays, req.Date)}
		for _, shift := range shifts {
			if !req.Required(shift) {
				values = append(values, notRequired)
				continue
			}
			name, _ := st.Ledger.Occupant(req.Date, shift)
			values = append(values, name)
		}
		if err := writeRow(f, SheetCalendar, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

func writeAssignments(f *excelize.File, st *engine.State, style int) error {
	if err := writeHeader(f, SheetAssignments, []string{"Resident", "Date", "Weekday", "Shift", "Holiday"}, style); err != nil {
		return err
	}
	names := make([]string, 0, len(st.History))
	for name := range st.History {
		names = append(names, name)
	}
	sort.Strings(names)

	row := 2
	for _, name := range names {
		refs := append([]model.ShiftRef(nil), st.History[name]...)
		sort.SliceStable(refs, func(i, j int) bool { return refs[i].Date < refs[j].Date })
		for _, ref := range refs {
			values := []interface{}{name, ref.Date, model.WeekdayAbbrev(ref.Date), ref.Shift, holidayMark(st.Holidays, ref.Date)}
			if err := writeRow(f, SheetAssignments, row, values); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}

func writeWorkload(f *excelize.File, st *engine.State, shifts []string, style int) error {
	cols := append([]string{"Resident", "Total", "Weekend", "Holiday"}, shifts...)
	if err := writeHeader(f, SheetWorkload, cols, style); err != nil {
		return err
	}
	m := stats.NewWorkloadAnalyzer().Analyze(st.Residents, st.Holidays)
	for i, rs := range m.ResidentStats {
		values := []interface{}{rs.Name, rs.TotalShifts, rs.WeekendShifts, rs.HolidayShifts}
		for _, shift := range shifts {
			values = append(values, rs.ByShift[shift])
		}
		if err := writeRow(f, SheetWorkload, i+2, values); err != nil {
			return err
		}
	}
	return nil
}
