package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config interface {
	EnvConfig
	ClientConfig
	StorageConfig
	ServerConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type ClientConfig interface {
	GetAPIURL() string
	GetRequestTimeout() time.Duration
	GetRefreshTimeout() time.Duration
	GetRefreshPath() string
}

type StorageConfig interface {
	GetStorageBackend() string
	GetCredentialsPath() string
	GetRedisAddr() string
	GetRedisPrefix() string
}

type ServerConfig interface {
	GetPort() string
	GetJWTSecret() string
	GetJWTAlgorithm() string
	GetSeedPassword() string
	GetAccessTokenTTL() time.Duration
	GetRefreshTokenTTL() time.Duration
}

// File is the optional YAML configuration document. Environment variables
// take precedence over values set here.
type File struct {
	AppName  string `yaml:"app_name"`
	Env      string `yaml:"env"`
	LogLevel string `yaml:"log_level"`

	API struct {
		URL            string `yaml:"url"`
		RequestTimeout string `yaml:"request_timeout"`
		RefreshTimeout string `yaml:"refresh_timeout"`
		RefreshPath    string `yaml:"refresh_path"`
	} `yaml:"api"`

	Storage struct {
		Backend     string `yaml:"backend"`
		Path        string `yaml:"path"`
		RedisAddr   string `yaml:"redis_addr"`
		RedisPrefix string `yaml:"redis_prefix"`
	} `yaml:"storage"`

	Server struct {
		Port            string `yaml:"port"`
		JWTSecret       string `yaml:"jwt_secret"`
		JWTAlgorithm    string `yaml:"jwt_algorithm"`
		SeedPassword    string `yaml:"seed_password"`
		AccessTokenTTL  string `yaml:"access_token_ttl"`
		RefreshTokenTTL string `yaml:"refresh_token_ttl"`
	} `yaml:"server"`
}

type mainConfig struct {
	EnvVars
	Client
	Storage
	Server
}

// New returns a Config backed by environment variables and defaults only.
func New() Config {
	return fromFile(&File{})
}

// Load reads the YAML file at path and returns a Config that layers
// environment variables over it. An empty path behaves like New.
func Load(path string) (Config, error) {
	if path == "" {
		return New(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return fromFile(&f), nil
}

func fromFile(f *File) Config {
	return mainConfig{
		EnvVars: EnvVars{file: f},
		Client:  Client{file: f},
		Storage: Storage{file: f},
		Server:  Server{file: f},
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func parseDuration(value string, defaultValue time.Duration) time.Duration {
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}
