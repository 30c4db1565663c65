package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 全局配置结构体（完全匹配config.yaml）
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`    // 服务器配置
	Database  DatabaseConfig  `mapstructure:"database"`  // PostgreSQL配置
	Broadcast BroadcastConfig `mapstructure:"broadcast"` // 直播状态自动调度配置
	Sync      SyncConfig      `mapstructure:"sync"`      // 表格导入调度配置
	Timezone  TimezoneConfig  `mapstructure:"timezone"`  // 固定时区配置
	Sheets    SheetsConfig    `mapstructure:"sheets"`    // Google Sheets数据源配置
	Signage   SignageConfig   `mapstructure:"signage"`   // 数字标牌配置
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port int    `mapstructure:"port"` // 服务端口
	Mode string `mapstructure:"mode"` // Gin运行模式：debug/release/test
}

// DatabaseConfig PostgreSQL数据库配置
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`               // 连接DSN
	MaxOpenConns    int           `mapstructure:"max_open_conns"`    // 最大打开连接数
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`    // 最大空闲连接数
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"` // 连接最大存活时间
}

// BroadcastConfig 直播状态自动调度配置
type BroadcastConfig struct {
	CheckInterval        time.Duration `mapstructure:"check_interval"`         // 调度检查间隔（最小10s，默认30s）
	ManualOverrideWindow time.Duration `mapstructure:"manual_override_window"` // 人工修改保护窗口（默认15m）
	SystemOverrideWindow time.Duration `mapstructure:"system_override_window"` // 系统修改保护窗口（默认5m）
	AutoStart            bool          `mapstructure:"auto_start"`             // 启动服务时是否自动开启调度
}

// SyncConfig 表格导入调度配置
type SyncConfig struct {
	Interval time.Duration `mapstructure:"interval"` // 自动导入间隔（默认5m）
	Enabled  bool          `mapstructure:"enabled"`  // 是否启用自动导入
}

// TimezoneConfig 固定时区配置（所有"今天/当前时间"计算均基于此偏移，不依赖主机时区）
type TimezoneConfig struct {
	Name        string `mapstructure:"name"`         // 时区显示名（如 WIB）
	OffsetHours int    `mapstructure:"offset_hours"` // 相对UTC的小时偏移（雅加达为+7）
}

// SheetsConfig Google Sheets数据源配置
type SheetsConfig struct {
	SpreadsheetID string `mapstructure:"spreadsheet_id"` // 表格ID
	SheetName     string `mapstructure:"sheet_name"`     // 工作表名称（默认 Form Responses 1）
	Range         string `mapstructure:"range"`          // 数据范围（跳过表头行，如 A2:N）
	APIKey        string `mapstructure:"api_key"`        // Sheets API Key
	BaseURL       string `mapstructure:"base_url"`       // API基础地址（测试时可指向mock server）
	Timeout       int    `mapstructure:"timeout"`        // 请求超时（秒）
	Proxy         string `mapstructure:"proxy"`          // 代理地址
}

// SignageConfig 数字标牌配置
type SignageConfig struct {
	QRServiceURL string `mapstructure:"qr_service_url"` // 外部二维码图片服务地址
	QRSize       int    `mapstructure:"qr_size"`        // 二维码尺寸（像素）
}

// LoadConfig 加载配置文件（config/config.yaml），敏感项从 .env 覆盖（不提交 git）
func LoadConfig() (*Config, error) {
	// 1. 加载 .env（若存在），env 中的值会覆盖 config.yaml 中同名字段
	_ = godotenv.Load() // 忽略错误（.env 可不存在）

	// 2. 读取 config.yaml
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	viper.SetTypeByDefaultValue(true)
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 3. 敏感字段：用 env 覆盖（优先级 env > yaml）
	overrideFromEnv(&cfg)
	ApplyDefaults(&cfg)
	return &cfg, nil
}

// overrideFromEnv 用环境变量覆盖敏感配置
func overrideFromEnv(cfg *Config) {
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("SHEETS_API_KEY"); v != "" {
		cfg.Sheets.APIKey = v
	}
	if v := os.Getenv("SHEETS_SPREADSHEET_ID"); v != "" {
		cfg.Sheets.SpreadsheetID = v
	}
	if v := os.Getenv("SHEETS_PROXY"); v != "" {
		cfg.Sheets.Proxy = v
	}
}

// ApplyDefaults 缺省值兜底，保证调度参数永远合法
func ApplyDefaults(cfg *Config) {
	if cfg.Broadcast.CheckInterval < 10*time.Second {
		cfg.Broadcast.CheckInterval = 30 * time.Second
	}
	if cfg.Broadcast.ManualOverrideWindow <= 0 {
		cfg.Broadcast.ManualOverrideWindow = 15 * time.Minute
	}
	if cfg.Broadcast.SystemOverrideWindow <= 0 {
		cfg.Broadcast.SystemOverrideWindow = 5 * time.Minute
	}
	if cfg.Sync.Interval <= 0 {
		cfg.Sync.Interval = 5 * time.Minute
	}
	if cfg.Timezone.Name == "" {
		cfg.Timezone.Name = "WIB"
	}
	if cfg.Timezone.OffsetHours == 0 {
		cfg.Timezone.OffsetHours = 7
	}
	if cfg.Sheets.SheetName == "" {
		cfg.Sheets.SheetName = "Form Responses 1"
	}
	if cfg.Sheets.Range == "" {
		cfg.Sheets.Range = "A2:N"
	}
	if cfg.Sheets.BaseURL == "" {
		cfg.Sheets.BaseURL = "https://sheets.googleapis.com"
	}
	if cfg.Signage.QRServiceURL == "" {
		cfg.Signage.QRServiceURL = "https://api.qrserver.com/v1/create-qr-code/"
	}
	if cfg.Signage.QRSize <= 0 {
		cfg.Signage.QRSize = 300
	}
}

// Location 返回配置的固定偏移时区（如 WIB = UTC+7），所有时间计算统一使用
func (t *TimezoneConfig) Location() *time.Location {
	return time.FixedZone(t.Name, t.OffsetHours*3600)
}
