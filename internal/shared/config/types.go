package config

import (
	"fmt"
	"time"
)

type ServerConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"min=1,max=65535"`
	Mode               string `mapstructure:"mode" validate:"oneof=debug release test"`
	BaseURL            string `mapstructure:"base_url"`
	RateLimitPerMinute int    `mapstructure:"rate_limit_per_minute" validate:"min=0"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig selects one of the supported gorm dialects.
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver" validate:"oneof=mysql postgres sqlite"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database" validate:"required"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) GetDSN() string {
	switch d.Driver {
	case "postgres":
		sslMode := d.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=UTC",
			d.Host, d.Username, d.Password, d.Database, d.Port, sslMode)
	case "sqlite":
		return d.Database
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			d.Username, d.Password, d.Host, d.Port, d.Database)
	}
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// SubscriptionConfig holds ledger policy knobs.
type SubscriptionConfig struct {
	GiftCodePrefix     string `mapstructure:"gift_code_prefix" validate:"required,alphanum,uppercase"`
	AutoRenewDays      int    `mapstructure:"auto_renew_days" validate:"min=1"`
	TrialPlanID        uint   `mapstructure:"trial_plan_id"`
	TrialDays          int    `mapstructure:"trial_days" validate:"min=0"`
	DeviceWindowMinute int    `mapstructure:"device_window_minutes" validate:"min=1"`
	DeviceRetainMinute int    `mapstructure:"device_retain_minutes" validate:"min=1"`
	WireGuardSubnet    string `mapstructure:"wireguard_subnet" validate:"required"`
	ProfileUpdateHours int    `mapstructure:"profile_update_hours" validate:"min=1"`
}

// DeviceWindow is the trailing window in which a device counts as active.
func (s *SubscriptionConfig) DeviceWindow() time.Duration {
	return time.Duration(s.DeviceWindowMinute) * time.Minute
}

// DeviceRetention is the age after which IP records are swept.
func (s *SubscriptionConfig) DeviceRetention() time.Duration {
	return time.Duration(s.DeviceRetainMinute) * time.Minute
}

// ProfileUpdateInterval is advertised to clients as their refresh period.
func (s *SubscriptionConfig) ProfileUpdateInterval() time.Duration {
	return time.Duration(s.ProfileUpdateHours) * time.Hour
}

type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token" validate:"required_if=Enabled true"`
}

type SchedulerConfig struct {
	AutoRenewInterval string `mapstructure:"auto_renew_interval"`
	AlertInterval     string `mapstructure:"alert_interval"`
	CleanupInterval   string `mapstructure:"cleanup_interval"`
	Timezone          string `mapstructure:"timezone"`
}

// AutoRenewEvery returns the auto-renew sweep interval, 1h when unset or invalid.
func (s *SchedulerConfig) AutoRenewEvery() time.Duration {
	return parseInterval(s.AutoRenewInterval, time.Hour)
}

func (s *SchedulerConfig) AlertEvery() time.Duration {
	return parseInterval(s.AlertInterval, time.Hour)
}

func (s *SchedulerConfig) CleanupEvery() time.Duration {
	return parseInterval(s.CleanupInterval, 10*time.Minute)
}

func parseInterval(raw string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
