package config

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/placelookup/pkg/geonorge"
)

// Backend names accepted by geonorge.elevation_backend and geonorge.places_backend.
const (
	ElevationHoydedata = "hoydedata"
	ElevationWPS       = "wps"
	PlacesStedsnavn    = "stedsnavn"
	PlacesSSR          = "ssr"
)

// Config holds the full application configuration.
type Config struct {
	App        AppConfig        `yaml:"app" mapstructure:"app"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Geonorge   GeonorgeConfig   `yaml:"geonorge" mapstructure:"geonorge"`
	Search     SearchConfig     `yaml:"search" mapstructure:"search"`
	Monitoring MonitoringConfig `yaml:"monitoring" mapstructure:"monitoring"`
}

// AppConfig holds deployment-wide settings.
type AppConfig struct {
	Env string `yaml:"env" mapstructure:"env"`
}

// Production reports whether the app runs in production, where swallowed
// lookup failures are not logged.
func (a AppConfig) Production() bool {
	return strings.EqualFold(a.Env, "production")
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// GeonorgeConfig selects and configures the upstream services.
type GeonorgeConfig struct {
	EPSG             string  `yaml:"epsg" mapstructure:"epsg"`
	TimeoutSecs      int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	UserAgent        string  `yaml:"user_agent" mapstructure:"user_agent"`
	ElevationBackend string  `yaml:"elevation_backend" mapstructure:"elevation_backend"`
	PlacesBackend    string  `yaml:"places_backend" mapstructure:"places_backend"`
	ElevationURL     string  `yaml:"elevation_url" mapstructure:"elevation_url"`
	PlacesURL        string  `yaml:"places_url" mapstructure:"places_url"`
	MunicipalityURL  string  `yaml:"municipality_url" mapstructure:"municipality_url"`
	WPSURL           string  `yaml:"wps_url" mapstructure:"wps_url"`
	SSRURL           string  `yaml:"ssr_url" mapstructure:"ssr_url"`
	SSRRadiusDeg     float64 `yaml:"ssr_radius_deg" mapstructure:"ssr_radius_deg"`
}

// SearchConfig configures name search.
type SearchConfig struct {
	DefaultLimit      int `yaml:"default_limit" mapstructure:"default_limit"`
	EnrichConcurrency int `yaml:"enrich_concurrency" mapstructure:"enrich_concurrency"`
}

// MonitoringConfig configures the upstream health checker of the server.
type MonitoringConfig struct {
	Enabled              bool    `yaml:"enabled" mapstructure:"enabled"`
	WebhookURL           string  `yaml:"webhook_url" mapstructure:"webhook_url"`
	CheckIntervalSecs    int     `yaml:"check_interval_secs" mapstructure:"check_interval_secs"`
	FailureRateThreshold float64 `yaml:"failure_rate_threshold" mapstructure:"failure_rate_threshold"`
	MinLookups           int     `yaml:"min_lookups" mapstructure:"min_lookups"`
}

// Load reads configuration from .env, file and environment.
func Load() (*Config, error) {
	_ = godotenv.Load() // optional

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PLACELOOKUP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("app.env", "development")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("geonorge.epsg", geonorge.DefaultEPSG)
	v.SetDefault("geonorge.timeout_secs", 30)
	v.SetDefault("geonorge.user_agent", "placelookup/1.0")
	v.SetDefault("geonorge.elevation_backend", ElevationHoydedata)
	v.SetDefault("geonorge.places_backend", PlacesStedsnavn)
	v.SetDefault("geonorge.elevation_url", geonorge.DefaultElevationURL)
	v.SetDefault("geonorge.places_url", geonorge.DefaultPlacesURL)
	v.SetDefault("geonorge.municipality_url", geonorge.DefaultMunicipalityURL)
	v.SetDefault("geonorge.wps_url", geonorge.DefaultWPSURL)
	v.SetDefault("geonorge.ssr_url", geonorge.DefaultSSRURL)
	v.SetDefault("geonorge.ssr_radius_deg", 0.01)
	v.SetDefault("search.default_limit", geonorge.DefaultSearchLimit)
	v.SetDefault("search.enrich_concurrency", 10)
	v.SetDefault("monitoring.enabled", true)
	v.SetDefault("monitoring.webhook_url", "")
	v.SetDefault("monitoring.check_interval_secs", 300)
	v.SetDefault("monitoring.failure_rate_threshold", 0.5)
	v.SetDefault("monitoring.min_lookups", 5)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command needs. Mode is "lookup" for the
// point and search commands, or "serve".
func (c *Config) Validate(mode string) error {
	var problems []string

	switch mode {
	case "lookup":
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			problems = append(problems, "server.port must be > 0 and <= 65535")
		}
		if c.Monitoring.Enabled {
			if c.Monitoring.FailureRateThreshold < 0 || c.Monitoring.FailureRateThreshold > 1 {
				problems = append(problems, "monitoring.failure_rate_threshold must be between 0 and 1")
			}
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	switch c.Geonorge.ElevationBackend {
	case ElevationHoydedata, ElevationWPS:
	default:
		problems = append(problems, "geonorge.elevation_backend must be hoydedata or wps")
	}
	switch c.Geonorge.PlacesBackend {
	case PlacesStedsnavn, PlacesSSR:
	default:
		problems = append(problems, "geonorge.places_backend must be stedsnavn or ssr")
	}
	if c.Geonorge.TimeoutSecs <= 0 {
		problems = append(problems, "geonorge.timeout_secs must be > 0")
	}
	if c.Geonorge.PlacesBackend == PlacesSSR && c.Geonorge.SSRRadiusDeg <= 0 {
		problems = append(problems, "geonorge.ssr_radius_deg must be > 0")
	}
	if c.Search.DefaultLimit < 1 {
		problems = append(problems, "search.default_limit must be >= 1")
	}
	if c.Search.EnrichConcurrency < 1 || c.Search.EnrichConcurrency > 50 {
		problems = append(problems, "search.enrich_concurrency must be between 1 and 50")
	}

	if len(problems) > 0 {
		return eris.Errorf("config: invalid for %s: %s", mode, strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger. An empty format picks
// console output for a terminal and JSON otherwise.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if resolveFormat(cfg.Format, stderrIsTerminal()) == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

func resolveFormat(format string, terminal bool) string {
	if format != "" {
		return format
	}
	if terminal {
		return "console"
	}
	return "json"
}

func stderrIsTerminal() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
