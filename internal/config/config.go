package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"bookvideolink/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App         AppConfig         `yaml:"app"`
	Server      ServerConfig      `yaml:"server"`
	Session     SessionConfig     `yaml:"session"`
	Redis       RedisConfig       `yaml:"redis"`
	APIs        APIsConfig        `yaml:"apis"`
	Features    Features          `yaml:"features"`
	Maintenance MaintenanceConfig `yaml:"maintenance"`
	Auth        AuthConfig        `yaml:"auth"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
	Monitoring  MonitoringConfig  `yaml:"monitoring"`
	Logging     LoggingConfig     `yaml:"logging"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
	Timezone    string `yaml:"timezone"`
}

type ServerConfig struct {
	Port              int           `yaml:"port"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
	TrustedProxies    []string      `yaml:"trusted_proxies"`
}

type SessionConfig struct {
	Secret     string        `yaml:"secret"`
	CookieName string        `yaml:"cookie_name"`
	Expiry     time.Duration `yaml:"expiry"`
	Secure     bool          `yaml:"secure"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type APIsConfig struct {
	BookAVideoLink APIEndpoint `yaml:"book_a_video_link"`
	PrisonerSearch APIEndpoint `yaml:"prisoner_search"`
	ManageUsers    APIEndpoint `yaml:"manage_users"`
	Locations      APIEndpoint `yaml:"locations"`
}

type APIEndpoint struct {
	URL      string        `yaml:"url"`
	Timeout  APITimeout    `yaml:"timeout"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// APITimeout bounds one upstream call: Response waits for headers, Deadline for the whole exchange.
type APITimeout struct {
	Response time.Duration `yaml:"response"`
	Deadline time.Duration `yaml:"deadline"`
}

// Features is an immutable snapshot of the feature toggles.
type Features struct {
	MasterPublicPrivateNotes     bool `yaml:"master_public_private_notes"`
	ViewMultipleAgenciesBookings bool `yaml:"view_multiple_agencies_bookings"`
	AlteredCourtJourneyEnabled   bool `yaml:"altered_court_journey_enabled"`
}

type MaintenanceConfig struct {
	Enabled bool   `yaml:"enabled"`
	EndDate string `yaml:"end_date"`
}

type AuthConfig struct {
	Enabled           bool    `yaml:"enabled"`
	SharedSecret      string  `yaml:"shared_secret"`
	HeaderSecret      string  `yaml:"header_secret"`
	HeaderUsername    string  `yaml:"header_username"`
	HeaderDisplayName string  `yaml:"header_display_name"`
	HeaderUserType    string  `yaml:"header_user_type"`
	HeaderToken       string  `yaml:"header_token"`
	HeaderRoles       string  `yaml:"header_roles"`
	AdminRole         string  `yaml:"admin_role"`
	DevUser           DevUser `yaml:"dev_user"`
}

// DevUser is used for every request when auth is disabled.
type DevUser struct {
	Username    string `yaml:"username"`
	DisplayName string `yaml:"display_name"`
	UserType    string `yaml:"user_type"`
	Token       string `yaml:"token"`
	IsAdmin     bool   `yaml:"is_admin"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional, variables may come from the environment
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Expand environment variables in the YAML before parsing
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Session.Secret == "" {
		return errors.New("session secret is required")
	}

	apis := map[string]string{
		"book_a_video_link": c.APIs.BookAVideoLink.URL,
		"prisoner_search":   c.APIs.PrisonerSearch.URL,
		"manage_users":      c.APIs.ManageUsers.URL,
		"locations":         c.APIs.Locations.URL,
	}
	for name, url := range apis {
		if url == "" {
			return fmt.Errorf("apis.%s.url is required", name)
		}
	}

	if c.Redis.Enabled && c.Redis.Address == "" {
		return errors.New("redis address is required when redis is enabled")
	}

	if c.Auth.Enabled && c.Auth.SharedSecret == "" {
		return errors.New("auth shared secret is required when auth is enabled")
	}
	if !c.Auth.Enabled && c.Auth.DevUser.Username == "" {
		return errors.New("auth.dev_user is required when auth is disabled")
	}

	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.App.Timezone, err)
	}

	return nil
}

// Location is the time zone bookings are made in.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "book-a-video-link"
	}
	if c.App.Timezone == "" {
		c.App.Timezone = "Europe/London"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 3000
	}
	if c.Server.ReadHeaderTimeout == 0 {
		c.Server.ReadHeaderTimeout = 5 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}

	if c.Session.CookieName == "" {
		c.Session.CookieName = "book-a-video-link.session"
	}
	if c.Session.Expiry == 0 {
		c.Session.Expiry = models.DefaultSessionTTL
	}

	for _, api := range []*APIEndpoint{
		&c.APIs.BookAVideoLink,
		&c.APIs.PrisonerSearch,
		&c.APIs.ManageUsers,
		&c.APIs.Locations,
	} {
		if api.Timeout.Response == 0 {
			api.Timeout.Response = 10 * time.Second
		}
		if api.Timeout.Deadline == 0 {
			api.Timeout.Deadline = api.Timeout.Response
		}
	}

	if c.Auth.HeaderSecret == "" {
		c.Auth.HeaderSecret = "x-proxy-secret"
	}
	if c.Auth.HeaderUsername == "" {
		c.Auth.HeaderUsername = "x-auth-username"
	}
	if c.Auth.HeaderDisplayName == "" {
		c.Auth.HeaderDisplayName = "x-auth-display-name"
	}
	if c.Auth.HeaderUserType == "" {
		c.Auth.HeaderUserType = "x-auth-user-type"
	}
	if c.Auth.HeaderToken == "" {
		c.Auth.HeaderToken = "x-auth-token"
	}
	if c.Auth.HeaderRoles == "" {
		c.Auth.HeaderRoles = "x-auth-roles"
	}
	if c.Auth.AdminRole == "" {
		c.Auth.AdminRole = "BVLS_ACCESS__ADMIN"
	}

	if c.RateLimit.RPS > 0 && c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 10
	}
}
