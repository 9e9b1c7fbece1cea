// Package holiday 计算节假日及其邻近日
package holiday

import (
	"github.com/rs/zerolog"

	"github.com/calldraft/calldraft/pkg/logger"
	"github.com/calldraft/calldraft/pkg/model"
)

// Cluster 一个节假日及其连带的邻近日
type Cluster struct {
	Holiday string   `json:"holiday"`
	Dates   []string `json:"dates"` // 节假日在前，邻近日在后
}

// Deriver 节假日邻近日推导器
type Deriver struct {
	log *zerolog.Logger
}

// NewDeriver 创建推导器
func NewDeriver() *Deriver {
	return &Deriver{log: logger.Component("holiday")}
}

// NewDeriverWithLogger 使用指定日志器创建推导器
func NewDeriverWithLogger(l zerolog.Logger) *Deriver {
	return &Deriver{log: &l}
}

// Derive 按行序为每个节假日生成邻近日簇
//
// 周一、周二的节假日连带前两行，周四至周日连带后两行；
// 周三的节假日只包含自身，并记录告警。
func (d *Deriver) Derive(rows []model.ShiftRequirement, isHoliday func(date string) bool) []Cluster {
	sorted := append([]model.ShiftRequirement(nil), rows...)
	model.SortRequirements(sorted)

	var clusters []Cluster
	for i, row := range sorted {
		if !isHoliday(row.Date) {
			continue
		}
		t, err := model.ParseDate(row.Date)
		if err != nil {
			d.log.Warn().Str("date", row.Date).Err(err).Msg("无法解析节假日日期")
			continue
		}

		cluster := Cluster{Holiday: row.Date, Dates: []string{row.Date}}
		weekday := model.ISOWeekday(t)
		switch {
		case weekday < 3:
			for _, j := range []int{i - 1, i - 2} {
				if j >= 0 {
					cluster.Dates = append(cluster.Dates, sorted[j].Date)
				}
			}
		case weekday > 3:
			for _, j := range []int{i + 1, i + 2} {
				if j < len(sorted) {
					cluster.Dates = append(cluster.Dates, sorted[j].Date)
				}
			}
		default:
			d.log.Warn().Str("date", row.Date).Msg("节假日在周三，不推导邻近日")
		}
		clusters = append(clusters, cluster)
	}
	return clusters
}

// DeriveSet 返回所有簇的并集
func (d *Deriver) DeriveSet(rows []model.ShiftRequirement, isHoliday func(date string) bool) model.HolidaySet {
	set := model.NewHolidaySet()
	for _, c := range d.Derive(rows, isHoliday) {
		set.Add(c.Dates...)
	}
	return set
}
