// Package server 组装 HTTP 路由与中间件
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/calldraft/calldraft/internal/config"
	"github.com/calldraft/calldraft/internal/handler"
	"github.com/calldraft/calldraft/internal/metrics"
	"github.com/calldraft/calldraft/internal/service"
	apperrors "github.com/calldraft/calldraft/pkg/errors"
	"github.com/calldraft/calldraft/pkg/logger"
)

// BuildInfo 构建信息
type BuildInfo struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
	GitCommit string `json:"git_commit"`
}

// HealthFunc 依赖健康检查
type HealthFunc func(ctx context.Context) error

// Server HTTP 服务
type Server struct {
	cfg     *config.Config
	svc     *service.DraftService
	info    BuildInfo
	health  HealthFunc
	handler http.Handler
}

// New 创建服务并注册路由；health 为空时只报告进程存活
func New(cfg *config.Config, svc *service.DraftService, info BuildInfo, health HealthFunc) *Server {
	s := &Server{cfg: cfg, svc: svc, info: info, health: health}

	var limiter *RateLimiter
	if cfg.API.RateLimit > 0 {
		limiter = NewRateLimiter(float64(cfg.API.RateLimit))
	}
	// 执行顺序：requestID -> rateLimit -> cors -> logging -> handler
	s.handler = chain(s.routes(),
		requestIDMiddleware,
		rateLimitMiddleware(limiter),
		corsMiddleware(cfg.API.CORS),
		loggingMiddleware,
	)
	return s
}

// Handler 带中间件的根处理器
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() *http.ServeMux {
	h := handler.NewDraftHandler(s.svc)
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.info)
	})

	mux.HandleFunc("GET /api/v1/state", h.State)
	mux.HandleFunc("GET /api/v1/recommendations", h.Recommendations)
	mux.HandleFunc("GET /api/v1/demand", h.Demand)
	mux.HandleFunc("GET /api/v1/stats/workload", h.Workload)
	mux.HandleFunc("GET /api/v1/stats/coverage", h.Coverage)
	mux.HandleFunc("GET /api/v1/constraints", h.Constraints)
	mux.HandleFunc("GET /api/v1/events", h.Events)
	mux.HandleFunc("GET /api/v1/export.xlsx", h.Export)

	mux.HandleFunc("POST /api/v1/shifts/assign", h.Assign)
	mux.HandleFunc("POST /api/v1/shifts/clear", h.Clear)
	mux.HandleFunc("POST /api/v1/shifts/reset", h.Reset)
	mux.HandleFunc("POST /api/v1/focus", h.Focus)

	if s.cfg.Metrics.Enabled {
		path := s.cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		mux.Handle("GET "+path, metrics.Handler())
	}
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":   "ok",
		"service":  s.cfg.App.Name,
		"draft":    s.svc.Draft(),
		"revision": s.svc.Revision(),
	}
	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.health(ctx); err != nil {
			status["status"] = "degraded"
			status["error"] = err.Error()
			writeJSON(w, http.StatusServiceUnavailable, status)
			return
		}
	}
	writeJSON(w, http.StatusOK, status)
}

// Run 监听端口直到 ctx 取消，然后优雅关闭
func (s *Server) Run(ctx context.Context) error {
	timeout := s.cfg.API.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.App.Port),
		Handler:      s.handler,
		ReadTimeout:  timeout,
		WriteTimeout: 2 * timeout,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		ev := logger.Info().
			Int("port", s.cfg.App.Port).
			Str("version", s.info.Version).
			Str("draft", s.svc.Draft())
		if s.cfg.IsDevelopment() {
			ev = ev.Str("url", fmt.Sprintf("http://localhost:%d", s.cfg.App.Port))
		}
		ev.Msg("服务器启动")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("服务器启动失败: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("正在关闭服务器...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("服务器关闭失败: %w", err)
	}
	logger.Info().Msg("服务器已关闭")
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err *apperrors.AppError) {
	writeJSON(w, err.HTTPStatus, map[string]interface{}{
		"success": false,
		"error":   map[string]interface{}{"code": err.Code, "message": err.Message},
	})
}
