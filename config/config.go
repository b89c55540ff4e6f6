package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Game      GameConfig      `mapstructure:"game"`
	Security  SecurityConfig  `mapstructure:"security"`
	Companion CompanionConfig `mapstructure:"companion"`
}

type ServerConfig struct {
	Port     int    `mapstructure:"port"`
	Debug    bool   `mapstructure:"debug"`
	AdminKey string `mapstructure:"admin_key"`
}

type DatabaseConfig struct {
	Mode         string        `mapstructure:"mode"` // sqlite | mysql
	SQLitePath   string        `mapstructure:"sqlite_path"`
	MySQLDSN     string        `mapstructure:"mysql_dsn"`
	MySQLMaxOpen int           `mapstructure:"mysql_max_open"`
	MySQLMaxIdle int           `mapstructure:"mysql_max_idle"`
	MySQLMaxLife time.Duration `mapstructure:"mysql_max_life"`
}

type CacheConfig struct {
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	LocalGCInterval time.Duration `mapstructure:"local_gc_interval"`
	LocalPubSubBuf  int           `mapstructure:"local_pubsub_buf"`
}

// GameConfig holds progression tuning and the timing of transient UI signals.
type GameConfig struct {
	CatalogPath      string        `mapstructure:"catalog_path"` // empty = embedded catalog
	APILatency       time.Duration `mapstructure:"api_latency"`
	ToastTTL         time.Duration `mapstructure:"toast_ttl"`
	BadgeNoticeTTL   time.Duration `mapstructure:"badge_notice_ttl"`
	BattleAnimTTL    time.Duration `mapstructure:"battle_anim_ttl"`
	SnapshotInterval time.Duration `mapstructure:"snapshot_interval"` // 0 disables snapshots
	BriefingInterval time.Duration `mapstructure:"briefing_interval"`
	LeaderboardSize  int           `mapstructure:"leaderboard_size"`
}

type SecurityConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	JWTTTLH        time.Duration `mapstructure:"jwt_ttl_h"`
	RateLimitRPS   float64       `mapstructure:"rate_limit_rps"`
	RateLimitBurst int           `mapstructure:"rate_limit_burst"`
	AdminAllowIPs  []string      `mapstructure:"admin_allow_ips"`
}

// CompanionConfig configures the remote conversational collaborator.
// An empty Endpoint selects the built-in scripted companion.
type CompanionConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	Model    string        `mapstructure:"model"`
	Timeout  time.Duration `mapstructure:"timeout"`
	APIKey   string        `mapstructure:"-"`
}

// Secrets are never read from the YAML file.
type Secrets struct {
	JWTSecret       string `env:"LIFEOS_JWT_SECRET"`
	AdminKey        string `env:"LIFEOS_ADMIN_KEY"`
	CompanionAPIKey string `env:"LIFEOS_COMPANION_API_KEY"`
	MySQLDSN        string `env:"LIFEOS_MYSQL_DSN"`
}

// Load reads config from the given YAML file path, then overlays secrets
// from the environment.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.debug", false)
	v.SetDefault("database.mode", "sqlite")
	v.SetDefault("database.sqlite_path", "./data/lifeos.db")
	v.SetDefault("database.mysql_max_open", 50)
	v.SetDefault("database.mysql_max_idle", 10)
	v.SetDefault("database.mysql_max_life", "1h")
	v.SetDefault("cache.local_gc_interval", "30s")
	v.SetDefault("cache.local_pubsub_buf", 256)
	v.SetDefault("game.api_latency", "300ms")
	v.SetDefault("game.toast_ttl", "5s")
	v.SetDefault("game.badge_notice_ttl", "4s")
	v.SetDefault("game.battle_anim_ttl", "1500ms")
	v.SetDefault("game.snapshot_interval", "60s")
	v.SetDefault("game.briefing_interval", "10m")
	v.SetDefault("game.leaderboard_size", 50)
	v.SetDefault("security.jwt_ttl_h", "72h")
	v.SetDefault("security.rate_limit_rps", 100)
	v.SetDefault("security.rate_limit_burst", 200)
	v.SetDefault("companion.model", "gpt-4.1-mini")
	v.SetDefault("companion.timeout", "20s")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if err := applySecrets(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applySecrets(cfg *Config) error {
	var s Secrets
	if err := env.Parse(&s); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if s.JWTSecret != "" {
		cfg.Security.JWTSecret = s.JWTSecret
	}
	if s.AdminKey != "" {
		cfg.Server.AdminKey = s.AdminKey
	}
	if s.MySQLDSN != "" {
		cfg.Database.MySQLDSN = s.MySQLDSN
	}
	cfg.Companion.APIKey = s.CompanionAPIKey
	return nil
}
