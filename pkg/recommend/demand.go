package recommend

import (
	"sort"

	"github.com/calldraft/calldraft/pkg/model"
)

// ShiftDemand 一个待填班次及可排的住院医
type ShiftDemand struct {
	Date               string   `json:"date"`
	Shift              string   `json:"shift"`
	AvailableResidents []string `json:"availableResidents"`
}

// FlattenShifts 展开需求表，每个标记为 "1" 的 (日期, 班次) 一项
func FlattenShifts(rows []model.ShiftRequirement) []model.ShiftRef {
	var out []model.ShiftRef
	for _, row := range rows {
		for _, shift := range row.RequiredShifts() {
			out = append(out, model.ShiftRef{Date: row.Date, Shift: shift})
		}
	}
	return out
}

// UnfilledShifts 过滤掉账本中已有人的班次
func UnfilledShifts(slots []model.ShiftRef, ledger model.Ledger) []model.ShiftRef {
	var out []model.ShiftRef
	for _, s := range slots {
		if _, ok := ledger.Occupant(s.Date, s.Shift); !ok {
			out = append(out, s)
		}
	}
	return out
}

// RankDemand 列出所有待填班次，可排人数少的在前（稳定排序）
func (r *Recommender) RankDemand(residents []*model.Resident, holidays model.HolidaySet, rows []model.ShiftRequirement, ledger model.Ledger) ([]ShiftDemand, error) {
	unfilled := UnfilledShifts(FlattenShifts(rows), ledger)

	out := make([]ShiftDemand, 0, len(unfilled))
	for _, s := range unfilled {
		free, err := r.registry.UnrestrictedResidents(r.restrictions.Hard, residents, holidays, s.Date, s.Shift)
		if err != nil {
			return nil, err
		}
		names := make([]string, 0, len(free))
		for _, res := range free {
			names = append(names, res.Name)
		}
		out = append(out, ShiftDemand{Date: s.Date, Shift: s.Shift, AvailableResidents: names})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i].AvailableResidents) < len(out[j].AvailableResidents)
	})
	return out, nil
}
