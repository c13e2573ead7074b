package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	appNameVar         = "APP_NAME"
	envVar             = "ENV"
	logLevelVar        = "LOG_LEVEL"
	apiURLVar          = "PCS_API_URL"
	requestTimeoutVar  = "PCS_REQUEST_TIMEOUT"
	refreshTimeoutVar  = "PCS_REFRESH_TIMEOUT"
	refreshPathVar     = "PCS_REFRESH_PATH"
	storageBackendVar  = "PCS_STORAGE"
	credentialsPathVar = "PCS_CREDENTIALS_PATH"
	redisAddrVar       = "PCS_REDIS_ADDR"
	redisPrefixVar     = "PCS_REDIS_PREFIX"
	portEnvVar         = "PORT"
	jwtSecretVar       = "PCS_JWT_SECRET"
	jwtAlgorithmVar    = "PCS_JWT_ALGORITHM"
	seedPasswordVar    = "PCS_SEED_PASSWORD"
	accessTTLVar       = "PCS_ACCESS_TOKEN_TTL"
	refreshTTLVar      = "PCS_REFRESH_TOKEN_TTL"
)

// Storage backends understood by GetStorageBackend.
const (
	StorageFile   = "file"
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

type EnvVars struct{ file *File }

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetAppName() string {
	return GetEnv(appNameVar, firstNonEmpty(e.file.AppName, "PCS Portal"))
}

func (e EnvVars) GetEnv() string {
	return strings.ToUpper(GetEnv(envVar, firstNonEmpty(e.file.Env, "DEV")))
}

func (e EnvVars) GetLogLevel() string {
	return GetEnv(logLevelVar, firstNonEmpty(e.file.LogLevel, "info"))
}

type Client struct{ file *File }

var _ ClientConfig = Client{}

// GetAPIURL returns the REST backend base URL without a trailing slash,
// e.g. "http://127.0.0.1:8000/api".
func (c Client) GetAPIURL() string {
	return strings.TrimSuffix(GetEnv(apiURLVar, firstNonEmpty(c.file.API.URL, "http://127.0.0.1:8000/api")), "/")
}

func (c Client) GetRequestTimeout() time.Duration {
	return parseDuration(GetEnv(requestTimeoutVar, c.file.API.RequestTimeout), 20*time.Second)
}

func (c Client) GetRefreshTimeout() time.Duration {
	return parseDuration(GetEnv(refreshTimeoutVar, c.file.API.RefreshTimeout), 10*time.Second)
}

func (c Client) GetRefreshPath() string {
	return GetEnv(refreshPathVar, firstNonEmpty(c.file.API.RefreshPath, "/auth/token/refresh/"))
}

type Storage struct{ file *File }

var _ StorageConfig = Storage{}

func (s Storage) GetStorageBackend() string {
	return strings.ToLower(GetEnv(storageBackendVar, firstNonEmpty(s.file.Storage.Backend, StorageFile)))
}

func (s Storage) GetCredentialsPath() string {
	if p := GetEnv(credentialsPathVar, s.file.Storage.Path); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "credentials.json")
	}
	return filepath.Join(home, ".config", "pcs", "credentials.json")
}

func (s Storage) GetRedisAddr() string {
	return GetEnv(redisAddrVar, firstNonEmpty(s.file.Storage.RedisAddr, "127.0.0.1:6379"))
}

func (s Storage) GetRedisPrefix() string {
	return GetEnv(redisPrefixVar, firstNonEmpty(s.file.Storage.RedisPrefix, "pcs"))
}

type Server struct{ file *File }

var _ ServerConfig = Server{}

func (s Server) GetPort() string {
	port := GetEnv(portEnvVar, firstNonEmpty(s.file.Server.Port, "8000"))
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (s Server) GetJWTSecret() string {
	return GetEnv(jwtSecretVar, firstNonEmpty(s.file.Server.JWTSecret, "pcs-dev-secret"))
}

// GetJWTAlgorithm is one of HS256, RS256 or ES256.
func (s Server) GetJWTAlgorithm() string {
	return strings.ToUpper(GetEnv(jwtAlgorithmVar, firstNonEmpty(s.file.Server.JWTAlgorithm, "HS256")))
}

// GetSeedPassword is the password given to the demo accounts.
func (s Server) GetSeedPassword() string {
	return GetEnv(seedPasswordVar, firstNonEmpty(s.file.Server.SeedPassword, "Password1"))
}

func (s Server) GetAccessTokenTTL() time.Duration {
	return parseDuration(GetEnv(accessTTLVar, s.file.Server.AccessTokenTTL), 5*time.Minute)
}

func (s Server) GetRefreshTokenTTL() time.Duration {
	return parseDuration(GetEnv(refreshTTLVar, s.file.Server.RefreshTokenTTL), 24*time.Hour)
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
