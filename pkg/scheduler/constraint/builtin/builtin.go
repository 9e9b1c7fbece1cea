package builtin

import (
	"github.com/calldraft/calldraft/pkg/scheduler/constraint"
)

// 内置约束名称
const (
	TypeBlockedRotation       constraint.Type = "on_blocked_rotation"
	TypeAlreadyWorkingThatDay constraint.Type = "already_working_that_day"
	TypePostCall              constraint.Type = "post_call"
	TypeOneHolidayPerCluster  constraint.Type = "one_holiday_per_cluster"
	TypeNearOtherShift        constraint.Type = "near_other_shift"
	TypeTargetReached         constraint.Type = "target_reached"
	TypeAvoidWeekday          constraint.Type = "avoid_weekday"
	TypeAvoidShiftType        constraint.Type = "avoid_shift_type"
	TypeAvoidHolidays         constraint.Type = "avoid_holidays"
	TypePrefersShiftType      constraint.Type = "prefers_shift_type"
	TypePrefersWeekday        constraint.Type = "prefers_weekday"
	TypePrefersHolidays       constraint.Type = "prefers_holidays"
)

// 偏好表中使用的列名
const (
	PrefAvoidDays       = "avoid_days"
	PrefAvoidShifts     = "avoid_shifts"
	PrefAvoidHolidays   = "avoid_holidays"
	PrefMaxShifts       = "max_shifts"
	PrefPreferredShifts = "preferred_shifts"
	PrefPreferredDays   = "preferred_days"
	PrefPreferHolidays  = "prefer_holidays"
)

// DefaultBlockedRotations 默认不排班的轮转
var DefaultBlockedRotations = []string{"Vacation", "ICU Nights", "Away"}

// defaultWeights 默认难度权重
var defaultWeights = map[constraint.Type]float64{
	TypeBlockedRotation:       3,
	TypeAlreadyWorkingThatDay: 0,
	TypePostCall:              0,
	TypeOneHolidayPerCluster:  0,
	TypeNearOtherShift:        0,
	TypeTargetReached:         0,
	TypeAvoidWeekday:          1,
	TypeAvoidShiftType:        1,
	TypeAvoidHolidays:         2,
	TypePrefersShiftType:      0,
	TypePrefersWeekday:        0,
	TypePrefersHolidays:       0,
}

// RegisterDefaultConstraints 注册默认约束到注册表
//
// 支持的配置项：weights（约束名 → 权重）、blocked_rotations、min_days_between_shifts。
func RegisterDefaultConstraints(registry *constraint.Registry, config map[string]interface{}) {
	blocked := getConfigStrings(config, "blocked_rotations", DefaultBlockedRotations)
	minDays := getConfigInt(config, "min_days_between_shifts", 3)
	weights := getConfigWeights(config)

	w := func(t constraint.Type) float64 {
		if v, ok := weights[t]; ok {
			return v
		}
		return defaultWeights[t]
	}

	// 硬约束
	registry.Register(NewBlockedRotationConstraint(w(TypeBlockedRotation), blocked))
	registry.Register(NewAlreadyWorkingConstraint(w(TypeAlreadyWorkingThatDay)))
	registry.Register(NewPostCallConstraint(w(TypePostCall)))
	registry.Register(NewOneHolidayConstraint(w(TypeOneHolidayPerCluster)))

	// 软约束
	registry.Register(NewNearOtherShiftConstraint(w(TypeNearOtherShift), minDays))
	registry.Register(NewTargetReachedConstraint(w(TypeTargetReached)))
	registry.Register(NewAvoidWeekdayConstraint(w(TypeAvoidWeekday)))
	registry.Register(NewAvoidShiftTypeConstraint(w(TypeAvoidShiftType)))
	registry.Register(NewAvoidHolidaysConstraint(w(TypeAvoidHolidays)))

	// 偏好
	registry.Register(NewPrefersShiftTypeConstraint(w(TypePrefersShiftType)))
	registry.Register(NewPrefersWeekdayConstraint(w(TypePrefersWeekday)))
	registry.Register(NewPrefersHolidaysConstraint(w(TypePrefersHolidays)))
}

// getConfigInt 从配置中获取整数
func getConfigInt(config map[string]interface{}, key string, defaultVal int) int {
	if config == nil {
		return defaultVal
	}
	if val, ok := config[key]; ok {
		switch v := val.(type) {
		case int:
			return v
		case float64:
			return int(v)
		case int64:
			return int(v)
		}
	}
	return defaultVal
}

// getConfigStrings 从配置中获取字符串列表
func getConfigStrings(config map[string]interface{}, key string, defaultVal []string) []string {
	if config == nil {
		return defaultVal
	}
	switch v := config[key].(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return defaultVal
}

// getConfigWeights 从配置中获取权重表
func getConfigWeights(config map[string]interface{}) map[constraint.Type]float64 {
	out := make(map[constraint.Type]float64)
	if config == nil {
		return out
	}
	switch v := config["weights"].(type) {
	case map[string]float64:
		for k, w := range v {
			out[constraint.Type(k)] = w
		}
	case map[string]interface{}:
		for k, raw := range v {
			switch w := raw.(type) {
			case float64:
				out[constraint.Type(k)] = w
			case int:
				out[constraint.Type(k)] = float64(w)
			}
		}
	}
	return out
}
