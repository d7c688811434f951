package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/soart-backend/internal/platform/envutil"
	"github.com/yungbote/soart-backend/internal/platform/logger"
)

const (
	defaultPort             = 8000
	defaultHost             = "127.0.0.1"
	defaultDataDir          = "./user_data"
	defaultConfigFile       = "config.yaml"
	defaultMagicConcurrency = 4
	defaultRefFetchTimeout  = 30 * time.Second
)

// Config is process configuration. Provider settings (API key, base URLs,
// model names) are not here; they are resolved per request from stored
// settings and the environment.
type Config struct {
	Host          string   `yaml:"host"`
	Port          int      `yaml:"port"`
	DataDir       string   `yaml:"data_dir"`
	DatabaseDSN   string   `yaml:"database_dsn"`
	PublicBaseURL string   `yaml:"public_base_url"`
	CORSOrigins   []string `yaml:"cors_allow_origins"`

	MagicMaxConcurrency int           `yaml:"magic_max_concurrency"`
	RefFetchTimeout     time.Duration `yaml:"ref_image_fetch_timeout"`

	MetricsEnabled bool       `yaml:"metrics_enabled"`
	Otel           OtelConfig `yaml:"otel"`
}

type OtelConfig struct {
	Enabled     bool    `yaml:"enabled"`
	ServiceName string  `yaml:"service_name"`
	Environment string  `yaml:"environment"`
	Endpoint    string  `yaml:"endpoint"`
	Headers     string  `yaml:"headers"`
	Insecure    bool    `yaml:"insecure"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// FilesDir is where generated artifacts live.
func (c Config) FilesDir() string {
	return filepath.Join(c.DataDir, "files")
}

// LoadDotEnv reads .env (or the given files) into the process environment.
// Variables already set win. A missing file is not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// LoadConfig layers defaults, the optional YAML file (SOART_CONFIG_PATH or
// ./config.yaml) and environment variables, in that order.
func LoadConfig(log *logger.Logger) (Config, error) {
	cfg := defaultConfig()

	path := envutil.String("SOART_CONFIG_PATH", "")
	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}
	if err := mergeConfigFile(&cfg, path); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	} else {
		log.Info("Loaded config file", "path", path)
	}

	applyEnv(&cfg)
	normalize(&cfg)
	return cfg, nil
}

func defaultConfig() Config {
	return Config{
		Host:                defaultHost,
		Port:                defaultPort,
		DataDir:             defaultDataDir,
		CORSOrigins:         []string{"*"},
		MagicMaxConcurrency: defaultMagicConcurrency,
		RefFetchTimeout:     defaultRefFetchTimeout,
		Otel: OtelConfig{
			ServiceName: "soart-backend",
			Environment: "local",
			SampleRatio: 1,
		},
	}
}

func mergeConfigFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Host = envutil.String("HOST", cfg.Host)
	cfg.Port = envutil.Int("PORT", cfg.Port)
	cfg.DataDir = envutil.String("SOART_DATA_DIR", cfg.DataDir)
	cfg.DatabaseDSN = envutil.String("DATABASE_DSN", cfg.DatabaseDSN)
	cfg.PublicBaseURL = envutil.String("PUBLIC_BASE_URL", cfg.PublicBaseURL)
	cfg.CORSOrigins = envutil.CSV("CORS_ALLOW_ORIGINS", cfg.CORSOrigins)
	cfg.MagicMaxConcurrency = envutil.Int("MAGIC_MAX_CONCURRENCY", cfg.MagicMaxConcurrency)
	if secs := envutil.Int("REF_IMAGE_FETCH_TIMEOUT_SECONDS", 0); secs > 0 {
		cfg.RefFetchTimeout = time.Duration(secs) * time.Second
	}
	cfg.MetricsEnabled = envutil.Bool("METRICS_ENABLED", cfg.MetricsEnabled)

	cfg.Otel.Enabled = envutil.Bool("OTEL_ENABLED", cfg.Otel.Enabled)
	cfg.Otel.ServiceName = envutil.String("OTEL_SERVICE_NAME", cfg.Otel.ServiceName)
	cfg.Otel.Environment = envutil.String("OTEL_ENVIRONMENT", cfg.Otel.Environment)
	cfg.Otel.Endpoint = envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Otel.Endpoint)
	cfg.Otel.Headers = envutil.String("OTEL_EXPORTER_OTLP_HEADERS", cfg.Otel.Headers)
	cfg.Otel.Insecure = envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", cfg.Otel.Insecure)
	if v := envutil.String("OTEL_SAMPLER_RATIO", ""); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Otel.SampleRatio = f
		}
	}
}

func normalize(cfg *Config) {
	if cfg.Port <= 0 {
		cfg.Port = defaultPort
	}
	if strings.TrimSpace(cfg.Host) == "" {
		cfg.Host = defaultHost
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = defaultDataDir
	}
	if cfg.MagicMaxConcurrency <= 0 {
		cfg.MagicMaxConcurrency = defaultMagicConcurrency
	}
	if cfg.RefFetchTimeout <= 0 {
		cfg.RefFetchTimeout = defaultRefFetchTimeout
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}
	cfg.PublicBaseURL = strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/")
	if cfg.PublicBaseURL == "" {
		cfg.PublicBaseURL = fmt.Sprintf("http://localhost:%d", cfg.Port)
	}
}
