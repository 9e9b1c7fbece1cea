// Package metrics 提供Prometheus文本格式的监控指标
package metrics

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// MetricsRegistry 指标注册表
type MetricsRegistry struct {
	counters   map[string]*Counter
	gauges     map[string]*Gauge
	histograms map[string]*Histogram
	mu         sync.RWMutex
}

// Counter 计数器
type Counter struct {
	Name   string
	Help   string
	Labels []string
	values map[string]float64
	mu     sync.RWMutex
}

// Gauge 仪表盘
type Gauge struct {
	Name   string
	Help   string
	Labels []string
	values map[string]float64
	mu     sync.RWMutex
}

// Histogram 直方图
type Histogram struct {
	Name    string
	Help    string
	Labels  []string
	Buckets []float64
	counts  map[string][]int
	sums    map[string]float64
	mu      sync.RWMutex
}

const (
	httpRequests       = "calldraft_http_requests_total"
	httpDuration       = "calldraft_http_request_duration_seconds"
	transitions        = "calldraft_transitions_total"
	transitionDuration = "calldraft_transition_duration_seconds"
	recommendations    = "calldraft_recommendations_total"
	bucketSize         = "calldraft_recommendation_bucket_size"
	persistOps         = "calldraft_persist_operations_total"
	unfilledShifts     = "calldraft_unfilled_shifts"
	residentsGauge     = "calldraft_residents"
	coverageRate       = "calldraft_coverage_rate"
	workloadGini       = "calldraft_workload_gini"
)

var (
	registry *MetricsRegistry
	once     sync.Once
)

// NewRegistry 创建空注册表
func NewRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		counters:   make(map[string]*Counter),
		gauges:     make(map[string]*Gauge),
		histograms: make(map[string]*Histogram),
	}
}

// GetRegistry 获取全局注册表
func GetRegistry() *MetricsRegistry {
	once.Do(func() {
		registry = NewRegistry()
		registerDefaults(registry)
	})
	return registry
}

func registerDefaults(r *MetricsRegistry) {
	r.NewCounter(httpRequests, "HTTP请求总数", []string{"method", "path", "status"})
	r.NewHistogram(httpDuration, "HTTP请求延迟",
		[]string{"method", "path"},
		[]float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0})

	r.NewCounter(transitions, "状态转换次数", []string{"action", "result"})
	r.NewHistogram(transitionDuration, "状态转换耗时",
		[]string{"action"},
		[]float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1})

	r.NewCounter(recommendations, "推荐计算次数", []string{"result"})
	r.NewGauge(bucketSize, "最近一次推荐各分组人数", []string{"bucket"})
	r.NewCounter(persistOps, "持久化操作次数", []string{"operation", "result"})

	r.NewGauge(unfilledShifts, "未排班次数", []string{"draft"})
	r.NewGauge(residentsGauge, "住院医人数", []string{"draft"})
	r.NewGauge(coverageRate, "班次覆盖率", []string{"draft"})
	r.NewGauge(workloadGini, "工作量基尼系数", []string{"draft", "metric_type"})
}

// NewCounter 创建计数器
func (r *MetricsRegistry) NewCounter(name, help string, labels []string) *Counter {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := &Counter{Name: name, Help: help, Labels: labels, values: make(map[string]float64)}
	r.counters[name] = c
	return c
}

// NewGauge 创建仪表盘
func (r *MetricsRegistry) NewGauge(name, help string, labels []string) *Gauge {
	r.mu.Lock()
	defer r.mu.Unlock()

	g := &Gauge{Name: name, Help: help, Labels: labels, values: make(map[string]float64)}
	r.gauges[name] = g
	return g
}

// NewHistogram 创建直方图
func (r *MetricsRegistry) NewHistogram(name, help string, labels []string, buckets []float64) *Histogram {
	r.mu.Lock()
	defer r.mu.Unlock()

	h := &Histogram{
		Name:    name,
		Help:    help,
		Labels:  labels,
		Buckets: buckets,
		counts:  make(map[string][]int),
		sums:    make(map[string]float64),
	}
	r.histograms[name] = h
	return h
}

// GetCounter 获取计数器
func (r *MetricsRegistry) GetCounter(name string) *Counter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.counters[name]
}

// GetGauge 获取仪表盘
func (r *MetricsRegistry) GetGauge(name string) *Gauge {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.gauges[name]
}

// GetHistogram 获取直方图
func (r *MetricsRegistry) GetHistogram(name string) *Histogram {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.histograms[name]
}

// Inc 增加计数
func (c *Counter) Inc(labelValues ...string) {
	c.Add(1, labelValues...)
}

// Add 增加指定值
func (c *Counter) Add(value float64, labelValues ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[labelKey(labelValues)] += value
}

// Value 读取当前值
func (c *Counter) Value(labelValues ...string) float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.values[labelKey(labelValues)]
}

// Set 设置值
func (g *Gauge) Set(value float64, labelValues ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.values[labelKey(labelValues)] = value
}

// Value 读取当前值
func (g *Gauge) Value(labelValues ...string) float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.values[labelKey(labelValues)]
}

// Observe 记录观测值；counts 按桶存放非累计计数，最后一格为 +Inf
func (h *Histogram) Observe(value float64, labelValues ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	key := labelKey(labelValues)
	counts, ok := h.counts[key]
	if !ok {
		counts = make([]int, len(h.Buckets)+1)
		h.counts[key] = counts
	}
	idx := sort.SearchFloat64s(h.Buckets, value)
	counts[idx]++
	h.sums[key] += value
}

// Count 观测总次数
func (h *Histogram) Count(labelValues ...string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := 0
	for _, n := range h.counts[labelKey(labelValues)] {
		total += n
	}
	return total
}

// labelKey 标签值以 \x1f 连接，避免与值中的逗号冲突
func labelKey(labels []string) string {
	return strings.Join(labels, "\x1f")
}

func splitLabelKey(key string) []string {
	if key == "" {
		return nil
	}
	return strings.Split(key, "\x1f")
}

// formatLabels 生成 name="value" 列表
func formatLabels(names []string, key string, extra ...string) string {
	vals := splitLabelKey(key)
	parts := make([]string, 0, len(names)+len(extra))
	for i, name := range names {
		val := ""
		if i < len(vals) {
			val = vals[i]
		}
		parts = append(parts, name+"="+strconv.Quote(val))
	}
	parts = append(parts, extra...)
	if len(parts) == 0 {
		return ""
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Write 以Prometheus文本格式输出全部指标，按名称排序
func (r *MetricsRegistry) Write(w io.Writer) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range sortedKeys(r.counters) {
		c := r.counters[name]
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s counter\n", c.Name, c.Help, c.Name)
		c.mu.RLock()
		for _, key := range sortedKeys(c.values) {
			fmt.Fprintf(w, "%s%s %g\n", c.Name, formatLabels(c.Labels, key), c.values[key])
		}
		c.mu.RUnlock()
	}

	for _, name := range sortedKeys(r.gauges) {
		g := r.gauges[name]
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s gauge\n", g.Name, g.Help, g.Name)
		g.mu.RLock()
		for _, key := range sortedKeys(g.values) {
			fmt.Fprintf(w, "%s%s %g\n", g.Name, formatLabels(g.Labels, key), g.values[key])
		}
		g.mu.RUnlock()
	}

	for _, name := range sortedKeys(r.histograms) {
		h := r.histograms[name]
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s histogram\n", h.Name, h.Help, h.Name)
		h.mu.RLock()
		for _, key := range sortedKeys(h.counts) {
			counts := h.counts[key]
			cumulative := 0
			for i, bound := range h.Buckets {
				cumulative += counts[i]
				le := `le="` + strconv.FormatFloat(bound, 'g', -1, 64) + `"`
				fmt.Fprintf(w, "%s_bucket%s %d\n", h.Name, formatLabels(h.Labels, key, le), cumulative)
			}
			cumulative += counts[len(h.Buckets)]
			fmt.Fprintf(w, "%s_bucket%s %d\n", h.Name, formatLabels(h.Labels, key, `le="+Inf"`), cumulative)
			fmt.Fprintf(w, "%s_sum%s %g\n", h.Name, formatLabels(h.Labels, key), h.sums[key])
			fmt.Fprintf(w, "%s_count%s %d\n", h.Name, formatLabels(h.Labels, key), cumulative)
		}
		h.mu.RUnlock()
	}
}

// Handler 返回Prometheus格式的指标HTTP处理器
func Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		GetRegistry().Write(w)
	})
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

// RecordRequestMetrics 记录请求指标
func RecordRequestMetrics(method, path string, status int, duration time.Duration) {
	r := GetRegistry()
	if c := r.GetCounter(httpRequests); c != nil {
		c.Inc(method, path, strconv.Itoa(status))
	}
	if h := r.GetHistogram(httpDuration); h != nil {
		h.Observe(duration.Seconds(), method, path)
	}
}

// RecordTransition 记录一次状态转换
func RecordTransition(action string, ok bool, duration time.Duration) {
	r := GetRegistry()
	if c := r.GetCounter(transitions); c != nil {
		c.Inc(action, result(ok))
	}
	if h := r.GetHistogram(transitionDuration); h != nil {
		h.Observe(duration.Seconds(), action)
	}
}

// RecordRecommendation 记录推荐计算及四个分组的人数
func RecordRecommendation(ok bool, preferred, neutral, soft, hard int) {
	r := GetRegistry()
	if c := r.GetCounter(recommendations); c != nil {
		c.Inc(result(ok))
	}
	if !ok {
		return
	}
	if g := r.GetGauge(bucketSize); g != nil {
		g.Set(float64(preferred), "preferred")
		g.Set(float64(neutral), "neutral")
		g.Set(float64(soft), "soft")
		g.Set(float64(hard), "hard")
	}
}

// RecordPersist 记录持久化操作
func RecordPersist(operation string, ok bool) {
	if c := GetRegistry().GetCounter(persistOps); c != nil {
		c.Inc(operation, result(ok))
	}
}

// SetDraftGauges 更新草案的未排班次、住院医人数与覆盖率
func SetDraftGauges(draft string, unfilled, residents int, coverage float64) {
	r := GetRegistry()
	if g := r.GetGauge(unfilledShifts); g != nil {
		g.Set(float64(unfilled), draft)
	}
	if g := r.GetGauge(residentsGauge); g != nil {
		g.Set(float64(residents), draft)
	}
	if g := r.GetGauge(coverageRate); g != nil {
		g.Set(coverage, draft)
	}
}

// SetWorkloadGini 设置工作量基尼系数
func SetWorkloadGini(draft, metricType string, gini float64) {
	if g := GetRegistry().GetGauge(workloadGini); g != nil {
		g.Set(gini, draft, metricType)
	}
}
