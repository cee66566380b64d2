package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the central typed configuration struct.
type Config struct {
	App       AppConfig       `yaml:"app"`
	Log       LogConfig       `yaml:"log"`
	Container ContainerConfig `yaml:"container"`
}

type AppConfig struct {
	Name  string `yaml:"name"`
	Env   string `yaml:"env"` // local | production | testing
	Debug bool   `yaml:"debug"`
	Port  string `yaml:"port"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // json | console
}

type ContainerConfig struct {
	Metrics          bool   `yaml:"metrics"`
	MetricsNamespace string `yaml:"metrics_namespace"`
	InspectPrefix    string `yaml:"inspect_prefix"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *Config {
	return &Config{
		App: AppConfig{
			Name:  "GoIoC",
			Env:   "local",
			Debug: true,
			Port:  "8000",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Container: ContainerConfig{
			Metrics:          true,
			MetricsNamespace: "ioc",
			InspectPrefix:    "/_container",
		},
	}
}

// Load reads .env (if present) and populates a Config from environment variables.
// Call once at bootstrap: cfg := config.Load()
func Load(envFiles ...string) *Config {
	loadEnv(envFiles)
	cfg := Defaults()
	applyEnv(cfg)
	return cfg
}

// LoadFile reads a YAML file over the defaults, then applies .env files and
// environment variables on top.
//
//	cfg, err := config.LoadFile("config/app.yaml")
func LoadFile(path string, envFiles ...string) (*Config, error) {
	cfg := Defaults()
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "config: open %s", path)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return nil, errors.Wrapf(err, "config: decode %s", path)
	}

	loadEnv(envFiles)
	applyEnv(cfg)
	return cfg, nil
}

func loadEnv(files []string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	// Non-fatal: .env may not exist in production
	_ = godotenv.Load(files...)
}

func applyEnv(cfg *Config) {
	cfg.App.Name = env("APP_NAME", cfg.App.Name)
	cfg.App.Env = env("APP_ENV", cfg.App.Env)
	cfg.App.Debug = envBool("APP_DEBUG", cfg.App.Debug)
	cfg.App.Port = env("APP_PORT", cfg.App.Port)

	cfg.Log.Level = env("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = env("LOG_FORMAT", cfg.Log.Format)

	cfg.Container.Metrics = envBool("CONTAINER_METRICS", cfg.Container.Metrics)
	cfg.Container.MetricsNamespace = env("CONTAINER_METRICS_NAMESPACE", cfg.Container.MetricsNamespace)
	cfg.Container.InspectPrefix = env("CONTAINER_INSPECT_PREFIX", cfg.Container.InspectPrefix)
}

// Get returns a raw env value, falling back to defaultVal.
func Get(key, defaultVal string) string {
	return env(key, defaultVal)
}

// GetInt returns an int env value.
func GetInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

// GetBool returns a bool env value.
func GetBool(key string, defaultVal bool) bool {
	return envBool(key, defaultVal)
}

// ── helpers ─────────────────────────────────────────────────────────────────

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
