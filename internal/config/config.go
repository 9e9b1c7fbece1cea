// Package config 提供配置管理：环境变量提供默认值，YAML 草案文件覆盖
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"

	"github.com/calldraft/calldraft/pkg/logger"
)

// Config 应用配置
type Config struct {
	App         AppConfig        `yaml:"app"`
	Log         logger.Config    `yaml:"log"`
	Database    DatabaseConfig   `yaml:"database"`
	API         APIConfig        `yaml:"api"`
	Metrics     MetricsConfig    `yaml:"metrics"`
	Draft       DraftConfig      `yaml:"draft"`
	Holidays    HolidayConfig    `yaml:"holidays"`
	Constraints ConstraintConfig `yaml:"constraints"`
}

// AppConfig 应用基础配置
type AppConfig struct {
	Name string `yaml:"name" validate:"required"`
	Env  string `yaml:"env" validate:"oneof=development test production"`
	Port int    `yaml:"port" validate:"min=1,max=65535"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver          string        `yaml:"driver" validate:"oneof=postgres sqlite"`
	Path            string        `yaml:"path" validate:"required_if=Driver sqlite"`
	Host            string        `yaml:"host" validate:"required_if=Driver postgres"`
	Port            int           `yaml:"port"`
	Name            string        `yaml:"name"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"ssl_mode"`
	MaxOpenConns    int           `yaml:"max_open_conns" validate:"min=1"`
	MaxIdleConns    int           `yaml:"max_idle_conns" validate:"min=0"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	SlowQuery       time.Duration `yaml:"slow_query"`
}

// DSN 返回数据库连接字符串
func (c *DatabaseConfig) DSN() string {
	if c.Driver == "sqlite" {
		return c.Path
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// APIConfig API配置
type APIConfig struct {
	RateLimit int           `yaml:"rate_limit" validate:"min=0"`
	Timeout   time.Duration `yaml:"timeout"`
	CORS      CORSConfig    `yaml:"cors"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	Enabled bool     `yaml:"enabled"`
	Origins []string `yaml:"origins"`
}

// MetricsConfig 监控配置
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path" validate:"omitempty,startswith=/"`
}

// DraftConfig 值班草案来源
type DraftConfig struct {
	Name            string `yaml:"name" validate:"required"` // 持久化按此名称区分，例如 "2024-2025"
	ShiftsFile      string `yaml:"shifts_file"`
	RotationsFile   string `yaml:"rotations_file"`
	PreferencesFile string `yaml:"preferences_file"`
	BlockLengthDays int    `yaml:"block_length_days" validate:"min=1"`
}

// HolidayConfig 节假日规则
type HolidayConfig struct {
	Rules []string `yaml:"rules"`
	Dates []string `yaml:"dates" validate:"dive,datetime=2006-01-02"`
}

// ConstraintConfig 约束参数
type ConstraintConfig struct {
	Weights              map[string]float64 `yaml:"weights" validate:"dive,min=0"`
	BlockedRotations     []string           `yaml:"blocked_rotations"`
	MinDaysBetweenShifts int                `yaml:"min_days_between_shifts" validate:"min=0"`
}

// Params 转换为内置约束的配置表
func (c ConstraintConfig) Params() map[string]interface{} {
	params := map[string]interface{}{
		"min_days_between_shifts": c.MinDaysBetweenShifts,
	}
	if len(c.Weights) > 0 {
		params["weights"] = c.Weights
	}
	if len(c.BlockedRotations) > 0 {
		params["blocked_rotations"] = c.BlockedRotations
	}
	return params
}

var validate = validator.New()

// Load 从环境变量加载配置；CALLDRAFT_CONFIG 指向的 YAML 文件会覆盖对应字段
func Load() (*Config, error) {
	cfg := FromEnv()
	if path := os.Getenv("CALLDRAFT_CONFIG"); path != "" {
		if err := cfg.MergeFile(path); err != nil {
			return nil, err
		}
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile 以环境变量为默认值加载指定 YAML 文件
func LoadFile(path string) (*Config, error) {
	cfg := FromEnv()
	if err := cfg.MergeFile(path); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv 只读取环境变量
func FromEnv() *Config {
	return &Config{
		App: AppConfig{
			Name: getEnv("APP_NAME", "calldraft"),
			Env:  getEnv("APP_ENV", "development"),
			Port: getEnvInt("APP_PORT", 7012),
		},
		Log: logger.Config{
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", "console"),
			Output:     getEnv("LOG_OUTPUT", "stderr"),
			FilePath:   getEnv("LOG_FILE", ""),
			TimeFormat: time.RFC3339,
		},
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", "sqlite"),
			Path:            getEnv("DB_PATH", "calldraft.db"),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			Name:            getEnv("DB_NAME", "calldraft"),
			User:            getEnv("DB_USER", "calldraft"),
			Password:        getEnv("DB_PASSWORD", ""),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 2),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			SlowQuery:       getEnvDuration("DB_SLOW_QUERY", 100*time.Millisecond),
		},
		API: APIConfig{
			RateLimit: getEnvInt("API_RATE_LIMIT", 100),
			Timeout:   getEnvDuration("API_TIMEOUT", 30*time.Second),
			CORS: CORSConfig{
				Enabled: getEnvBool("API_CORS_ENABLED", true),
				Origins: []string{"*"},
			},
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
			Path:    getEnv("METRICS_PATH", "/metrics"),
		},
		Draft: DraftConfig{
			Name:            getEnv("DRAFT_NAME", "default"),
			ShiftsFile:      getEnv("DRAFT_SHIFTS_FILE", ""),
			RotationsFile:   getEnv("DRAFT_ROTATIONS_FILE", ""),
			PreferencesFile: getEnv("DRAFT_PREFERENCES_FILE", ""),
			BlockLengthDays: getEnvInt("DRAFT_BLOCK_LENGTH_DAYS", 28),
		},
		Constraints: ConstraintConfig{
			MinDaysBetweenShifts: getEnvInt("CONSTRAINT_MIN_DAYS_BETWEEN_SHIFTS", 3),
		},
	}
}

// MergeFile 将 YAML 文件中出现的字段覆盖到当前配置
func (c *Config) MergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// Validate 校验结构体标签并检查节假日 RRULE 语法
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	for i, r := range cfg.Holidays.Rules {
		if _, err := rrule.StrToRRule(r); err != nil {
			return fmt.Errorf("invalid rrule in holidays.rules[%d]: %w", i, err)
		}
	}
	return nil
}

// IsDevelopment 检查是否为开发环境
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// IsProduction 检查是否为生产环境
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
