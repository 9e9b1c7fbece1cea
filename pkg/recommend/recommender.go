// Package recommend 为单个班次给出住院医推荐分组，并按紧迫度列出待填班次
package recommend

import (
	"sort"

	"github.com/calldraft/calldraft/pkg/model"
	"github.com/calldraft/calldraft/pkg/scheduler/constraint"
)

// Recommender 班次推荐器
type Recommender struct {
	registry     *constraint.Registry
	restrictions constraint.Restrictions
}

// NewRecommender 使用注册表中全部约束创建推荐器
func NewRecommender(registry *constraint.Registry) *Recommender {
	return &Recommender{
		registry:     registry,
		restrictions: registry.Restrictions(),
	}
}

// NewRecommenderWith 使用指定约束列表创建推荐器，列表中有未注册约束时返回错误
func NewRecommenderWith(registry *constraint.Registry, rs constraint.Restrictions) (*Recommender, error) {
	if err := registry.Validate(rs.All()); err != nil {
		return nil, err
	}
	return &Recommender{registry: registry, restrictions: rs}, nil
}

// Restrictions 推荐器使用的约束列表
func (r *Recommender) Restrictions() constraint.Restrictions {
	return r.restrictions
}

// Entry 推荐分组中的一位住院医
type Entry struct {
	Name              string   `json:"name"`
	Constraints       []string `json:"constraints,omitempty"`
	Preferred         []string `json:"preferred,omitempty"`
	NumTotalShifts    int      `json:"numTotalShifts"`
	NumSpecificShifts int      `json:"numSpecificShifts"`
	TotalDifficulty   float64  `json:"totalDifficulty"`
}

// Buckets 四个互斥的推荐分组，每组按难度升序
type Buckets struct {
	Date            string  `json:"date"`
	Shift           string  `json:"shift"`
	PreferredToWork []Entry `json:"preferredToWork"`
	Neutral         []Entry `json:"neutral"`
	SoftRestricted  []Entry `json:"softRestricted"`
	HardRestricted  []Entry `json:"hardRestricted"`
}

// Len 分组中的住院医总数
func (b *Buckets) Len() int {
	return len(b.PreferredToWork) + len(b.Neutral) + len(b.SoftRestricted) + len(b.HardRestricted)
}

// SplitResidents 将住院医划入四个分组
//
// 优先级：硬限制 > 软限制 > 偏好 > 中立。
func (r *Recommender) SplitResidents(residents []*model.Resident, holidays model.HolidaySet, date, shift string) (*Buckets, error) {
	hard, err := r.registry.EvaluateResidents(r.restrictions.Hard, residents, holidays, date, shift)
	if err != nil {
		return nil, err
	}
	soft, err := r.registry.EvaluateResidents(r.restrictions.Soft, residents, holidays, date, shift)
	if err != nil {
		return nil, err
	}
	prefer, err := r.registry.EvaluateResidents(r.restrictions.Prefer, residents, holidays, date, shift)
	if err != nil {
		return nil, err
	}

	b := &Buckets{
		Date:            date,
		Shift:           shift,
		PreferredToWork: []Entry{},
		Neutral:         []Entry{},
		SoftRestricted:  []Entry{},
		HardRestricted:  []Entry{},
	}

	for _, res := range residents {
		entry := Entry{
			Name:              res.Name,
			NumTotalShifts:    res.CountShifts(""),
			NumSpecificShifts: res.CountShifts(shift),
			TotalDifficulty:   r.registry.TotalDifficulty(res, holidays),
		}

		if failed := constraint.Failed(hard[res.Name]); len(failed) > 0 {
			entry.Constraints = failed
			b.HardRestricted = append(b.HardRestricted, entry)
			continue
		}
		if failed := constraint.Failed(soft[res.Name]); len(failed) > 0 {
			entry.Constraints = failed
			b.SoftRestricted = append(b.SoftRestricted, entry)
			continue
		}
		if liked := constraint.Satisfied(prefer[res.Name]); len(liked) > 0 {
			entry.Preferred = liked
			b.PreferredToWork = append(b.PreferredToWork, entry)
			continue
		}
		b.Neutral = append(b.Neutral, entry)
	}

	sortByDifficulty(b.PreferredToWork)
	sortByDifficulty(b.Neutral)
	sortByDifficulty(b.SoftRestricted)
	sortByDifficulty(b.HardRestricted)
	return b, nil
}

// sortByDifficulty 难度升序，同分保持原顺序
func sortByDifficulty(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TotalDifficulty < entries[j].TotalDifficulty
	})
}
