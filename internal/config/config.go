package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	commoncfg "github.com/cloudzeus/kimoncrm-sub005/common/config"

	"gopkg.in/yaml.v3"
)

// Config kimoncrm service configuration.
type Config struct {
	HTTP     HTTPConfig               `yaml:"http"`
	Database commoncfg.DatabaseConfig `yaml:"database"`
	Redis    RedisConfig              `yaml:"redis"`
	Log      LogConfig                `yaml:"log"`
	Auth     AuthConfig               `yaml:"auth"`
	Graph    GraphConfig              `yaml:"graph"`
	Bunny    BunnyConfig              `yaml:"bunny"`
	Events   EventsConfig             `yaml:"events"`
	Company  CompanyConfig            `yaml:"company"`
}

type HTTPConfig struct {
	Addr           string        `yaml:"addr"`
	CORSOrigins    []string      `yaml:"cors_origins"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
}

type RedisConfig struct {
	commoncfg.RedisConfig `yaml:",inline"`
	Enabled               bool          `yaml:"enabled"`
	MenuCacheTTL          time.Duration `yaml:"menu_cache_ttl"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AuthConfig JWT settings.
type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
	Issuer    string        `yaml:"issuer"`
	// SecureCookie marks the auth_token cookie Secure; enable behind TLS.
	SecureCookie bool `yaml:"secure_cookie"`
}

// GraphConfig Microsoft Graph app registration (client credentials flow).
type GraphConfig struct {
	Enabled      bool          `yaml:"enabled"`
	TenantID     string        `yaml:"tenant_id"`
	ClientID     string        `yaml:"client_id"`
	ClientSecret string        `yaml:"client_secret"`
	SenderMail   string        `yaml:"sender_mail"` // default mailbox used for outgoing mail
	BaseURL      string        `yaml:"base_url"`
	TokenURL     string        `yaml:"token_url"` // derived from TenantID when empty
	RatePerSec   float64       `yaml:"rate_per_sec"`
	Burst        int           `yaml:"burst"`
	RetryCount   int           `yaml:"retry_count"`
	Timeout      time.Duration `yaml:"timeout"`
}

// BunnyConfig Bunny storage zone used for uploads and generated documents.
type BunnyConfig struct {
	Enabled     bool          `yaml:"enabled"`
	StorageZone string        `yaml:"storage_zone"`
	StorageHost string        `yaml:"storage_host"` // e.g. storage.bunnycdn.com, or a regional host
	AccessKey   string        `yaml:"access_key"`
	PullZoneURL string        `yaml:"pull_zone_url"`
	Timeout     time.Duration `yaml:"timeout"`
}

// EventsConfig selects the integration event driver: none, redis or mqtt.
type EventsConfig struct {
	Driver       string               `yaml:"driver"`
	Stream       string               `yaml:"stream"`
	StreamMaxLen int64                `yaml:"stream_max_len"`
	TopicPrefix  string               `yaml:"topic_prefix"`
	MQTT         commoncfg.MQTTConfig `yaml:"mqtt"`
}

// CompanyConfig letterhead printed on generated documents.
type CompanyConfig struct {
	Name    string `yaml:"name"`
	Address string `yaml:"address"`
	VAT     string `yaml:"vat"`
	Phone   string `yaml:"phone"`
	Email   string `yaml:"email"`
}

// Default returns the built-in defaults.
func Default() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = ":8080"
	cfg.HTTP.MaxUploadBytes = 25 << 20
	cfg.HTTP.ReadTimeout = 30 * time.Second
	cfg.HTTP.WriteTimeout = 60 * time.Second

	cfg.Database = commoncfg.DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "postgres",
		Database: "kimoncrm",
		SSLMode:  "disable",
		MaxConns: 20,
		MaxIdle:  5,
	}

	cfg.Redis.Enabled = true
	cfg.Redis.Addr = "localhost:6379"
	cfg.Redis.MenuCacheTTL = 10 * time.Minute

	cfg.Log.Level = "info"
	cfg.Log.Format = "json"

	cfg.Auth.TokenTTL = 12 * time.Hour
	cfg.Auth.Issuer = "kimoncrm"

	cfg.Graph.BaseURL = "https://graph.microsoft.com/v1.0"
	cfg.Graph.RatePerSec = 4
	cfg.Graph.Burst = 8
	cfg.Graph.RetryCount = 3
	cfg.Graph.Timeout = 30 * time.Second

	cfg.Bunny.StorageHost = "storage.bunnycdn.com"
	cfg.Bunny.Timeout = 60 * time.Second

	cfg.Events.Driver = "none"
	cfg.Events.Stream = "kimoncrm:events"
	cfg.Events.StreamMaxLen = 10000
	cfg.Events.TopicPrefix = "kimoncrm/events"
	cfg.Events.MQTT.ClientID = "kimoncrm"
	cfg.Events.MQTT.QoS = 1

	cfg.Company.Name = "Kimon"
	return cfg
}

// Load builds the configuration: defaults, then CONFIG_FILE (YAML) if set, then env.
func Load() (*Config, error) {
	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.LoadFromEnv()
	return cfg, nil
}

// LoadFile overlays the YAML document at path onto cfg.
func (c *Config) LoadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// LoadFromEnv overlays environment variables onto cfg.
func (c *Config) LoadFromEnv() {
	c.HTTP.Addr = getEnv("HTTP_ADDR", c.HTTP.Addr)
	if v := os.Getenv("HTTP_CORS_ORIGINS"); v != "" {
		c.HTTP.CORSOrigins = splitList(v)
	}
	c.HTTP.MaxUploadBytes = int64(parseInt(os.Getenv("HTTP_MAX_UPLOAD_BYTES"), int(c.HTTP.MaxUploadBytes)))

	c.Database.LoadFromEnv("DB")

	c.Redis.Enabled = parseBool(os.Getenv("REDIS_ENABLED"), c.Redis.Enabled)
	c.Redis.RedisConfig.LoadFromEnv("REDIS")

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)

	c.Auth.JWTSecret = getEnv("JWT_SECRET", c.Auth.JWTSecret)
	c.Auth.TokenTTL = parseDuration(os.Getenv("JWT_TTL"), c.Auth.TokenTTL)
	c.Auth.SecureCookie = parseBool(os.Getenv("AUTH_SECURE_COOKIE"), c.Auth.SecureCookie)

	c.Graph.Enabled = parseBool(os.Getenv("GRAPH_ENABLED"), c.Graph.Enabled)
	c.Graph.TenantID = getEnv("GRAPH_TENANT_ID", c.Graph.TenantID)
	c.Graph.ClientID = getEnv("GRAPH_CLIENT_ID", c.Graph.ClientID)
	c.Graph.ClientSecret = getEnv("GRAPH_CLIENT_SECRET", c.Graph.ClientSecret)
	c.Graph.SenderMail = getEnv("GRAPH_SENDER_MAIL", c.Graph.SenderMail)
	c.Graph.BaseURL = getEnv("GRAPH_BASE_URL", c.Graph.BaseURL)
	c.Graph.TokenURL = getEnv("GRAPH_TOKEN_URL", c.Graph.TokenURL)

	c.Bunny.Enabled = parseBool(os.Getenv("BUNNY_ENABLED"), c.Bunny.Enabled)
	c.Bunny.StorageZone = getEnv("BUNNY_STORAGE_ZONE", c.Bunny.StorageZone)
	c.Bunny.StorageHost = getEnv("BUNNY_STORAGE_HOST", c.Bunny.StorageHost)
	c.Bunny.AccessKey = getEnv("BUNNY_ACCESS_KEY", c.Bunny.AccessKey)
	c.Bunny.PullZoneURL = getEnv("BUNNY_PULL_ZONE_URL", c.Bunny.PullZoneURL)

	c.Events.Driver = getEnv("EVENTS_DRIVER", c.Events.Driver)
	c.Events.Stream = getEnv("EVENTS_STREAM", c.Events.Stream)
	c.Events.TopicPrefix = getEnv("EVENTS_TOPIC_PREFIX", c.Events.TopicPrefix)
	c.Events.MQTT.LoadFromEnv("MQTT")

	c.Company.Name = getEnv("COMPANY_NAME", c.Company.Name)
	c.Company.Address = getEnv("COMPANY_ADDRESS", c.Company.Address)
	c.Company.VAT = getEnv("COMPANY_VAT", c.Company.VAT)
	c.Company.Phone = getEnv("COMPANY_PHONE", c.Company.Phone)
	c.Company.Email = getEnv("COMPANY_EMAIL", c.Company.Email)
}

// GraphTokenURL returns the configured token endpoint or the tenant's v2 endpoint.
func (g GraphConfig) GraphTokenURL() string {
	if g.TokenURL != "" {
		return g.TokenURL
	}
	return "https://login.microsoftonline.com/" + g.TenantID + "/oauth2/v2.0/token"
}

// Validate reports settings the HTTP server cannot run without.
func (c *Config) Validate() error {
	var errs []error
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret (JWT_SECRET) is required"))
	} else if len(c.Auth.JWTSecret) < 32 {
		errs = append(errs, errors.New("auth.jwt_secret must be at least 32 bytes"))
	}
	if c.Graph.Enabled && (c.Graph.TenantID == "" || c.Graph.ClientID == "" || c.Graph.ClientSecret == "") {
		errs = append(errs, errors.New("graph.tenant_id, graph.client_id and graph.client_secret are required when graph is enabled"))
	}
	if c.Bunny.Enabled && (c.Bunny.StorageZone == "" || c.Bunny.AccessKey == "" || c.Bunny.PullZoneURL == "") {
		errs = append(errs, errors.New("bunny.storage_zone, bunny.access_key and bunny.pull_zone_url are required when bunny is enabled"))
	}
	switch c.Events.Driver {
	case "none", "redis", "mqtt":
	default:
		errs = append(errs, fmt.Errorf("events.driver %q is not one of none, redis, mqtt", c.Events.Driver))
	}
	if c.Events.Driver == "redis" && !c.Redis.Enabled {
		errs = append(errs, errors.New("events.driver=redis requires redis.enabled"))
	}
	return errors.Join(errs...)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func parseBool(s string, def bool) bool {
	if s == "" {
		return def
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return b
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
