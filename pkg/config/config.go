package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store backends.
const (
	BackendMemory = "memory"
	BackendConsul = "consul"
	BackendMySQL  = "mysql"
)

type Settings struct {
	Evaluate EvaluateSettings `mapstructure:"evaluate"`
	Store    StoreSettings    `mapstructure:"store"`
	Agent    AgentSettings    `mapstructure:"agent"`
	Log      LogSettings      `mapstructure:"log"`
}

type EvaluateSettings struct {
	// Interval between agent pushes; zero means push once.
	Interval time.Duration `mapstructure:"interval"`
}

type StoreSettings struct {
	Backend    string `mapstructure:"backend"`
	ConsulAddr string `mapstructure:"consul_addr"`
	MySQLDSN   string `mapstructure:"mysql_dsn"`
}

type AgentSettings struct {
	Host       string `mapstructure:"host"`
	Controller string `mapstructure:"controller"`
	Snapshots  string `mapstructure:"snapshots"`
	CachePath  string `mapstructure:"cache_path"`
}

type LogSettings struct {
	Level string `mapstructure:"level"`
}

// LoadDotEnv loads .env from the working directory if present.
func LoadDotEnv() error {
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	return godotenv.Load(".env")
}

// Getenv returns the environment value for key, or def when unset.
func Getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// GetenvDuration parses a duration from the environment, falling back to def.
func GetenvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// New returns a viper instance with defaults and DOCTOR_* env bindings.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("evaluate.interval", "0s")
	v.SetDefault("store.backend", BackendMemory)
	v.SetDefault("store.consul_addr", "127.0.0.1:8500")
	v.SetDefault("store.mysql_dsn", "")
	v.SetDefault("agent.host", hostname())
	v.SetDefault("agent.controller", "http://127.0.0.1:8080")
	v.SetDefault("agent.snapshots", "snapshots.yaml")
	v.SetDefault("agent.cache_path", "doctor-agent.db")
	v.SetDefault("log.level", "info")

	v.SetEnvPrefix("DOCTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads settings from path (yaml, optional) layered over defaults and
// the environment.
func Load(path string) (Settings, error) {
	_ = LoadDotEnv()
	v := New()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return Decode(v)
}

// Decode unmarshals and validates settings held by v.
func Decode(v *viper.Viper) (Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decode config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

var ErrUnknownBackend = errors.New("unknown store backend")

func (s Settings) Validate() error {
	switch s.Store.Backend {
	case BackendMemory, BackendConsul, BackendMySQL:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, s.Store.Backend)
	}
	if s.Evaluate.Interval < 0 {
		return fmt.Errorf("evaluate.interval must not be negative")
	}
	return nil
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "localhost"
	}
	return h
}
