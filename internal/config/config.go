package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/speedwagon-io/openseat/internal/chart"
)

const SupportedSchemaVersion = 1

type Config struct {
	Env     string        `yaml:"env" env:"OPENSEAT_ENV" env-default:"prod"`
	Feed    FeedConfig    `yaml:"feed"`
	Chart   ChartConfig   `yaml:"chart"`
	HTTP    HTTPConfig    `yaml:"http"`
	Reports ReportsConfig `yaml:"reports"`
	Log     LogConfig     `yaml:"log"`
}

type FeedConfig struct {
	Kind          string        `yaml:"kind" env:"FEED_KIND" env-default:"file"`
	Path          string        `yaml:"path" env:"FEED_PATH" env-default:"data/mock.json"`
	URL           string        `yaml:"url" env:"FEED_URL"`
	Timeout       time.Duration `yaml:"timeout" env-default:"10s"`
	SchemaVersion int           `yaml:"schema_version" env-default:"1"`
}

type ChartConfig struct {
	Width    int     `yaml:"width" env-default:"800"`
	Height   int     `yaml:"height" env-default:"400"`
	Padding  float64 `yaml:"padding" env-default:"50"`
	MinValue float64 `yaml:"min_value" env-default:"0"`
	MaxValue float64 `yaml:"max_value" env-default:"5"`
	Timezone string  `yaml:"timezone" env:"CHART_TIMEZONE" env-default:"UTC"`
	// Floor restricts the default chart to one floor's records. Empty plots every record.
	Floor string `yaml:"floor"`
}

type HTTPConfig struct {
	Address      string        `yaml:"address" env:"HTTP_ADDRESS" env-default:":8080"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env-default:"5s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env-default:"10s"`
}

type ReportsConfig struct {
	MaxItems int `yaml:"max_items" env-default:"50"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env-default:"json"`
}

func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(err.Error())
	}
	return cfg
}

func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = os.Getenv("CONFIG_PATH")
	}

	if configPath == "" {
		configPath = "config/config.yaml"
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", configPath)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Feed.SchemaVersion != SupportedSchemaVersion {
		return fmt.Errorf("unsupported feed schema_version %d (want %d)", c.Feed.SchemaVersion, SupportedSchemaVersion)
	}

	switch c.Feed.Kind {
	case "file", "sqlite":
		if c.Feed.Path == "" {
			return fmt.Errorf("feed.path is required for %s feeds", c.Feed.Kind)
		}
	case "http":
		if c.Feed.URL == "" {
			return fmt.Errorf("feed.url is required for http feeds")
		}
	default:
		return fmt.Errorf("unknown feed kind %q", c.Feed.Kind)
	}

	if c.Chart.MinValue >= c.Chart.MaxValue {
		return fmt.Errorf("chart.min_value must be below chart.max_value")
	}

	if c.Chart.MaxValue-c.Chart.MinValue > chart.MaxValueSpan {
		return fmt.Errorf("chart value range may span at most %d", chart.MaxValueSpan)
	}

	if _, err := time.LoadLocation(c.Chart.Timezone); err != nil {
		return fmt.Errorf("invalid chart.timezone: %w", err)
	}

	if c.Reports.MaxItems <= 0 {
		return fmt.Errorf("reports.max_items must be positive")
	}

	return nil
}

// Location returns the zone hour labels are computed in. Validate has already checked it.
func (c ChartConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
