// Package ingest 读取班次需求、轮转与偏好三张表
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/calldraft/calldraft/pkg/errors"
	"github.com/calldraft/calldraft/pkg/model"
)

// DefaultBlockLengthDays 轮转块默认天数
const DefaultBlockLengthDays = 28

var validate = validator.New()

type namedRow struct {
	Name string `validate:"required"`
}

// ReadShifts 读取需求表：表头 date,<班次>...，"1" 表示需要排人
func ReadShifts(r io.Reader) ([]model.ShiftRequirement, error) {
	header, records, err := readAll(r)
	if err != nil {
		return nil, err
	}
	if len(header) == 0 || !strings.EqualFold(header[0], "date") {
		return nil, apperrors.InvalidInput("shifts", "首列必须为 date")
	}

	var verrs apperrors.ValidationErrors
	rows := make([]model.ShiftRequirement, 0, len(records))
	for i, rec := range records {
		row := model.ShiftRequirement{Date: cell(rec, 0), Flags: make(map[string]string, len(header)-1)}
		for j := 1; j < len(header); j++ {
			row.Flags[header[j]] = cell(rec, j)
		}
		if err := validate.Struct(row); err != nil {
			verrs.Add(fmt.Sprintf("shifts[%d].date", i+1), fmt.Sprintf("日期 %q 无效", row.Date))
			continue
		}
		rows = append(rows, row)
	}
	if verrs.HasErrors() {
		return nil, verrs.ToAppError().WithDetails(verrs.Error())
	}
	model.SortRequirements(rows)
	return rows, nil
}

// ReadRotations 读取轮转表：表头 name,<轮转块起始日期>...，单元格为轮转名。
// 非日期列作为元数据保留。每块长度 blockDays 天
func ReadRotations(r io.Reader, blockDays int) ([]model.RotationRecord, error) {
	if blockDays <= 0 {
		blockDays = DefaultBlockLengthDays
	}
	header, records, err := readAll(r)
	if err != nil {
		return nil, err
	}
	if len(header) == 0 || !strings.EqualFold(header[0], "name") {
		return nil, apperrors.InvalidInput("rotations", "首列必须为 name")
	}

	// 区块按开始日期排序；每个区块到下一区块开始前一天为止，最后一个区块持续 blockDays 天
	var blocks []int
	for j := 1; j < len(header); j++ {
		if _, err := model.ParseDate(header[j]); err == nil {
			blocks = append(blocks, j)
		}
	}
	sort.SliceStable(blocks, func(a, b int) bool { return header[blocks[a]] < header[blocks[b]] })
	blockEnd := make(map[int]string, len(blocks))
	for k, j := range blocks {
		if k+1 < len(blocks) {
			blockEnd[j] = model.AddDays(header[blocks[k+1]], -1)
		} else {
			blockEnd[j] = model.AddDays(header[j], blockDays-1)
		}
	}

	var verrs apperrors.ValidationErrors
	out := make([]model.RotationRecord, 0, len(records))
	for i, rec := range records {
		name := cell(rec, 0)
		if err := validate.Struct(namedRow{Name: name}); err != nil {
			verrs.Add(fmt.Sprintf("rotations[%d].name", i+1), "姓名不能为空")
			continue
		}
		row := model.RotationRecord{Name: name}
		for j := 1; j < len(header); j++ {
			v := cell(rec, j)
			if v == "" {
				continue
			}
			if _, ok := blockEnd[j]; !ok {
				if row.Metadata == nil {
					row.Metadata = make(map[string]string)
				}
				row.Metadata[header[j]] = v
			}
		}
		for _, j := range blocks {
			if v := cell(rec, j); v != "" {
				row.Rotations = append(row.Rotations, model.RotationEntry{
					Rotation: v,
					Start:    header[j],
					End:      blockEnd[j],
				})
			}
		}
		out = append(out, row)
	}
	if verrs.HasErrors() {
		return nil, verrs.ToAppError().WithDetails(verrs.Error())
	}
	return out, nil
}

// ReadPreferences 读取偏好表：表头 name,<偏好键>...，空行跳过
func ReadPreferences(r io.Reader) ([]model.PreferenceRecord, error) {
	header, records, err := readAll(r)
	if err != nil {
		return nil, err
	}
	if len(header) == 0 || !strings.EqualFold(header[0], "name") {
		return nil, apperrors.InvalidInput("preferences", "首列必须为 name")
	}

	out := make([]model.PreferenceRecord, 0, len(records))
	for _, rec := range records {
		name := cell(rec, 0)
		if validate.Struct(namedRow{Name: name}) != nil {
			continue
		}
		values := make(model.Preferences, len(header)-1)
		for j := 1; j < len(header); j++ {
			if v := cell(rec, j); v != "" {
				values[header[j]] = v
			}
		}
		out = append(out, model.PreferenceRecord{Name: name, Values: values})
	}
	return out, nil
}

// readAll 读取表头与数据行，去除空白与全空行
func readAll(r io.Reader) ([]string, [][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, apperrors.InvalidInput("csv", "缺少表头")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("读取表头失败: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	var records [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("读取数据行失败: %w", err)
		}
		if blank(rec) {
			continue
		}
		records = append(records, rec)
	}
	return header, records, nil
}

func cell(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
