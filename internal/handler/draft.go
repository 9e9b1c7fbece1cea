package handler

import (
	"net/http"
	"strconv"

	"github.com/calldraft/calldraft/internal/export"
	"github.com/calldraft/calldraft/internal/service"
	"github.com/calldraft/calldraft/pkg/engine"
	apperrors "github.com/calldraft/calldraft/pkg/errors"
	"github.com/calldraft/calldraft/pkg/logger"
	"github.com/calldraft/calldraft/pkg/model"
	"github.com/calldraft/calldraft/pkg/scheduler/constraint"
)

// DraftHandler 草案相关接口
type DraftHandler struct {
	svc *service.DraftService
}

// NewDraftHandler 创建处理器
func NewDraftHandler(svc *service.DraftService) *DraftHandler {
	return &DraftHandler{svc: svc}
}

// StateResponse 状态概要
type StateResponse struct {
	Draft             string                   `json:"draft"`
	Revision          int64                    `json:"revision"`
	ShiftRequirements []model.ShiftRequirement `json:"required_shifts"`
	Residents         []*model.Resident        `json:"residents"`
	Holidays          []string                 `json:"holidays"`
	Assignments       []model.LedgerEntry      `json:"assignments"`
	FocusedDate       string                   `json:"focused_date,omitempty"`
	FocusedShift      string                   `json:"focused_shift,omitempty"`
	FocusedResident   string                   `json:"focused_resident,omitempty"`
}

// State GET /api/v1/state
func (h *DraftHandler) State(w http.ResponseWriter, r *http.Request) {
	st := h.svc.State()
	sendData(w, StateResponse{
		Draft:             h.svc.Draft(),
		Revision:          h.svc.Revision(),
		ShiftRequirements: st.ShiftRequirements,
		Residents:         st.Residents,
		Holidays:          st.Holidays.Sorted(),
		Assignments:       st.Ledger.Entries(),
		FocusedDate:       st.FocusedDate,
		FocusedShift:      st.FocusedShift,
		FocusedResident:   st.FocusedResident,
	})
}

// Recommendations GET /api/v1/recommendations?date=&shift=
func (h *DraftHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	buckets, err := h.svc.Recommendations(q.Get("date"), q.Get("shift"))
	if err != nil {
		sendError(w, r, err)
		return
	}
	sendData(w, buckets)
}

// Demand GET /api/v1/demand
func (h *DraftHandler) Demand(w http.ResponseWriter, r *http.Request) {
	demand, err := h.svc.Demand()
	if err != nil {
		sendError(w, r, err)
		return
	}
	sendData(w, demand)
}

// Workload GET /api/v1/stats/workload
func (h *DraftHandler) Workload(w http.ResponseWriter, r *http.Request) {
	sendData(w, h.svc.Workload())
}

// Coverage GET /api/v1/stats/coverage
func (h *DraftHandler) Coverage(w http.ResponseWriter, r *http.Request) {
	sendData(w, h.svc.Coverage())
}

// ConstraintInfo 已注册约束
type ConstraintInfo struct {
	Type     string  `json:"type"`
	Category string  `json:"category"`
	Message  string  `json:"message"`
	Weight   float64 `json:"weight"`
}

// Constraints GET /api/v1/constraints?category=hard|soft|prefer
func (h *DraftHandler) Constraints(w http.ResponseWriter, r *http.Request) {
	all := h.svc.Registry().GetAll()
	switch cat := constraint.Category(r.URL.Query().Get("category")); cat {
	case "":
	case constraint.CategoryHard, constraint.CategorySoft, constraint.CategoryPrefer:
		all = h.svc.Registry().GetByCategory(cat)
	default:
		sendError(w, r, apperrors.InvalidInput("category", "可选 hard、soft、prefer"))
		return
	}
	out := make([]ConstraintInfo, 0, len(all))
	for _, c := range all {
		out = append(out, ConstraintInfo{
			Type:     string(c.Type()),
			Category: string(c.Category()),
			Message:  c.Message(),
			Weight:   c.Weight(),
		})
	}
	sendData(w, out)
}

// Events GET /api/v1/events?limit=
func (h *DraftHandler) Events(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			sendError(w, r, apperrors.InvalidInput("limit", "需要非负整数"))
			return
		}
		limit = n
	}
	events, err := h.svc.Events(r.Context(), limit)
	if err != nil {
		sendError(w, r, err)
		return
	}
	sendData(w, events)
}

// SlotRequest 班次请求
type SlotRequest struct {
	Name  string `json:"name,omitempty"`
	Date  string `json:"date"`
	Shift string `json:"shift"`
}

// Assign POST /api/v1/shifts/assign
func (h *DraftHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var req SlotRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.apply(w, r, engine.AssignShift{Name: req.Name, Date: req.Date, Shift: req.Shift})
}

// Clear POST /api/v1/shifts/clear
func (h *DraftHandler) Clear(w http.ResponseWriter, r *http.Request) {
	var req SlotRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.apply(w, r, engine.ClearShift{Date: req.Date, Shift: req.Shift})
}

// Reset POST /api/v1/shifts/reset
func (h *DraftHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, engine.ResetShifts{})
}

// FocusRequest 焦点请求；Name 非空时设置关注住院医，否则设置关注班次
type FocusRequest struct {
	Date  string `json:"date,omitempty"`
	Shift string `json:"shift,omitempty"`
	Name  string `json:"name,omitempty"`
}

// Focus POST /api/v1/focus
func (h *DraftHandler) Focus(w http.ResponseWriter, r *http.Request) {
	var req FocusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name != "" {
		h.apply(w, r, engine.SetFocusResident{Name: req.Name})
		return
	}
	h.apply(w, r, engine.SetFocusDateAndShift{Date: req.Date, Shift: req.Shift})
}

// Export GET /api/v1/export.xlsx
func (h *DraftHandler) Export(w http.ResponseWriter, r *http.Request) {
	f, err := export.Build(h.svc.State())
	if err != nil {
		sendError(w, r, apperrors.Wrap(err, apperrors.CodeInternal, "导出失败"))
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+h.svc.Draft()+`.xlsx"`)
	if err := f.Write(w); err != nil {
		logger.WithContext(r.Context()).Error().Err(err).Msg("写出工作簿失败")
	}
}

// apply 应用动作并返回新的版本号
func (h *DraftHandler) apply(w http.ResponseWriter, r *http.Request, a engine.Action) {
	if err := h.svc.Apply(r.Context(), a); err != nil {
		sendError(w, r, err)
		return
	}
	st := h.svc.State()
	sendData(w, map[string]interface{}{
		"revision": h.svc.Revision(),
		"filled":   st.Ledger.Filled(),
	})
}
