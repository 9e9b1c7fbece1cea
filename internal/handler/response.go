// Package handler 提供HTTP请求处理器
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/calldraft/calldraft/pkg/errors"
	"github.com/calldraft/calldraft/pkg/logger"
)

// Response 统一响应
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

// ErrorBody 错误详情
type ErrorBody struct {
	Code    apperrors.Code         `json:"code"`
	Message string                 `json:"message"`
	Details string                 `json:"details,omitempty"`
	Fields  map[string]interface{} `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn().Err(err).Msg("写入响应失败")
	}
}

func sendData(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, Response{Success: true, Data: data})
}

// sendError 将错误转换为 JSON 响应，AppError 使用其状态码
func sendError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.GetHTTPStatus(err)
	body := &ErrorBody{Code: apperrors.GetCode(err), Message: err.Error()}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		body.Message = appErr.Message
		body.Details = appErr.Details
		body.Fields = appErr.Fields
	}
	if status >= http.StatusInternalServerError {
		logger.WithContext(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("请求处理失败")
	}
	writeJSON(w, status, Response{Success: false, Error: body})
}

// decodeJSON 解析请求体，失败时已写出错误响应
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		sendError(w, r, apperrors.InvalidInput("body", err.Error()))
		return false
	}
	return true
}
