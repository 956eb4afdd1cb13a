package conf

import (
	"fmt"
)

type Bootstrap struct {
	Server       *Server       `yaml:"server" json:"server"`
	Data         *Data         `yaml:"data" json:"data"`
	Quota        *Quota        `yaml:"quota" json:"quota"`
	Pricing      *Pricing      `yaml:"pricing" json:"pricing"`
	Push         *Push         `yaml:"push" json:"push"`
	AI           *AI           `yaml:"ai" json:"ai"`
	Subscription *Subscription `yaml:"subscription" json:"subscription"`
	Log          *Log          `yaml:"log" json:"log"`
}

type Server struct {
	Http struct {
		Addr    string `yaml:"addr" json:"addr"`
		Timeout string `yaml:"timeout" json:"timeout"`
	} `yaml:"http" json:"http"`
}

type Data struct {
	Database struct {
		Driver          string `yaml:"driver" json:"driver"`
		Source          string `yaml:"source" json:"source"`
		MaxIdleConns    int    `yaml:"max_idle_conns" json:"max_idle_conns"`
		MaxOpenConns    int    `yaml:"max_open_conns" json:"max_open_conns"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" json:"conn_max_lifetime"`
	} `yaml:"database" json:"database"`
	Redis struct {
		Addr         string `yaml:"addr" json:"addr"`
		Password     string `yaml:"password" json:"password"`
		Db           int32  `yaml:"db" json:"db"`
		ReadTimeout  string `yaml:"read_timeout" json:"read_timeout"`
		WriteTimeout string `yaml:"write_timeout" json:"write_timeout"`
	} `yaml:"redis" json:"redis"`
}

// Quota 套餐配额覆盖配置（为空时使用 constants 中的默认值）
type Quota struct {
	Plans map[string]*PlanLimits `yaml:"plans" json:"plans"`
}

// PlanLimits 单个套餐的配额限制，-1 表示不限制
type PlanLimits struct {
	Vehicles        *int `yaml:"vehicles" json:"vehicles"`
	MonthlyRequests *int `yaml:"monthly_requests" json:"monthly_requests"`
	DailyAiMessages *int `yaml:"daily_ai_messages" json:"daily_ai_messages"`
}

// Pricing 服务类型定价覆盖配置（单位：BOB，为空时使用默认价格表）
type Pricing struct {
	Services map[string]string `yaml:"services" json:"services"`
	Fallback string            `yaml:"fallback" json:"fallback"`
}

// Push Web Push 推送配置
type Push struct {
	VapidPublicKey  string `yaml:"vapid_public_key" json:"vapid_public_key"`
	VapidPrivateKey string `yaml:"vapid_private_key" json:"vapid_private_key"`
	Subscriber      string `yaml:"subscriber" json:"subscriber"`
}

// AI 文本补全服务配置
type AI struct {
	ApiKey  string `yaml:"api_key" json:"api_key"`
	BaseUrl string `yaml:"base_url" json:"base_url"`
	Model   string `yaml:"model" json:"model"`
}

// Subscription 订阅相关配置
type Subscription struct {
	// ExpirySweepEnabled 是否启用过期订阅巡检（默认关闭，见 cmd/cron）
	ExpirySweepEnabled bool `yaml:"expiry_sweep_enabled" json:"expiry_sweep_enabled"`
	// ExpirySweepCron 巡检调度表达式（秒级，robfig/cron 格式）
	ExpirySweepCron string `yaml:"expiry_sweep_cron" json:"expiry_sweep_cron"`
}

type Log struct {
	Level      string `yaml:"level" json:"level"`
	Format     string `yaml:"format" json:"format"`
	Output     string `yaml:"output" json:"output"`
	FilePath   string `yaml:"file_path" json:"file_path"`
	MaxSize    int    `yaml:"max_size" json:"max_size"`
	MaxAge     int    `yaml:"max_age" json:"max_age"`
	MaxBackups int    `yaml:"max_backups" json:"max_backups"`
	Compress   bool   `yaml:"compress" json:"compress"`
}

// Validate validates the configuration
func (b *Bootstrap) Validate() error {
	if b.Server == nil {
		return fmt.Errorf("server configuration is required")
	}
	if b.Server.Http.Addr == "" {
		return fmt.Errorf("server.http.addr is required")
	}
	if b.Data == nil {
		return fmt.Errorf("data configuration is required")
	}
	if b.Data.Database.Source == "" {
		return fmt.Errorf("data.database.source is required")
	}
	if b.Push != nil && b.Push.VapidPublicKey != "" && b.Push.VapidPrivateKey == "" {
		return fmt.Errorf("push.vapid_private_key is required when push.vapid_public_key is set")
	}
	if b.Log == nil {
		return fmt.Errorf("log configuration is required")
	}
	return nil
}
