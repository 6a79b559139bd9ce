package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/AlibekovAA/estate-hub/internal/common/constants"
)

var (
	ErrMissingRequiredEnv  = errors.New("missing required environment variable")
	ErrInvalidJWTSecret    = errors.New("JWT_SECRET must be at least 32 bytes")
	ErrInvalidConnect      = errors.New("DB_CONNECT_POLICY must be retry or exit")
	ErrInvalidPresence     = errors.New("PRESENCE_BACKEND must be memory or redis")
	ErrMissingRedisAddress = errors.New("REDIS_URL is required when PRESENCE_BACKEND=redis")
	ErrInvalidWebSocket    = errors.New("invalid websocket settings")
	ErrInvalidLease        = errors.New("PRESENCE_LEASE_TTL must be 0 or longer than WS_PING_PERIOD")
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"

	PresenceMemory = "memory"
	PresenceRedis  = "redis"
)

type DatabaseConfig struct {
	URL            string
	ConnectPolicy  string
	MaxAttempts    int
	RetryDelay     time.Duration
	MigrateOnStart bool
}

type PresenceConfig struct {
	Backend            string
	RedisURL           string
	LeaseTTL           time.Duration
	RemoveOnDisconnect bool
}

type WebSocketConfig struct {
	WriteWait   time.Duration
	PongWait    time.Duration
	PingPeriod  time.Duration
	MaxMsgSize  int64
	SendBufSize int
}

type Config struct {
	Environment    string
	HTTPPort       string
	ClientOrigin   string
	JWTSecret      string
	SessionTTL     time.Duration
	RequestTimeout time.Duration
	Database       DatabaseConfig
	Presence       PresenceConfig
	WebSocket      WebSocketConfig
}

func (c Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

func Load() (Config, error) {
	jwtSecret, err := mustEnv("JWT_SECRET")
	if err != nil {
		return Config{}, err
	}

	if err := validateJWTSecret(jwtSecret); err != nil {
		return Config{}, err
	}

	databaseURL, err := mustEnv("DATABASE_URL")
	if err != nil {
		return Config{}, err
	}

	env := strings.ToLower(getEnv("APP_ENV", EnvDevelopment))
	if env != EnvProduction {
		env = EnvDevelopment
	}

	origin := constants.DevClientOrigin
	if env == EnvProduction {
		origin = constants.ProdClientOrigin
	}

	cfg := Config{
		Environment:    env,
		HTTPPort:       getEnv("HTTP_PORT", constants.DefaultHTTPPort),
		ClientOrigin:   getEnv("CLIENT_ORIGIN", origin),
		JWTSecret:      jwtSecret,
		SessionTTL:     getDurationEnv("SESSION_TTL", constants.DefaultSessionTTL),
		RequestTimeout: getDurationEnv("REQUEST_TIMEOUT", constants.DefaultRequestTimeout),
		Database: DatabaseConfig{
			URL:            databaseURL,
			ConnectPolicy:  strings.ToLower(getEnv("DB_CONNECT_POLICY", constants.DBConnectPolicyRetry)),
			MaxAttempts:    getIntEnv("DB_CONNECT_MAX_ATTEMPTS", constants.DBPoolMaxAttempts),
			RetryDelay:     getDurationEnv("DB_CONNECT_RETRY_DELAY", constants.DBPoolRetryDelay),
			MigrateOnStart: getBoolEnv("MIGRATE_ON_START", true),
		},
		Presence: PresenceConfig{
			Backend:            strings.ToLower(getEnv("PRESENCE_BACKEND", PresenceMemory)),
			RedisURL:           getEnv("REDIS_URL", ""),
			LeaseTTL:           getDurationEnv("PRESENCE_LEASE_TTL", constants.DefaultPresenceLeaseTTL),
			RemoveOnDisconnect: getBoolEnv("PRESENCE_REMOVE_ON_DISCONNECT", true),
		},
		WebSocket: WebSocketConfig{
			WriteWait:   getDurationEnv("WS_WRITE_WAIT", constants.DefaultWebSocketWriteWait),
			PongWait:    getDurationEnv("WS_PONG_WAIT", constants.DefaultWebSocketPongWait),
			PingPeriod:  getDurationEnv("WS_PING_PERIOD", constants.DefaultWebSocketPingPeriod),
			MaxMsgSize:  getInt64Env("WS_MAX_MSG_SIZE", constants.DefaultWebSocketMaxMsgSize),
			SendBufSize: getIntEnv("WS_SEND_BUF_SIZE", constants.DefaultWebSocketSendBufSize),
		},
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	switch c.Database.ConnectPolicy {
	case constants.DBConnectPolicyRetry, constants.DBConnectPolicyExit:
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidConnect, c.Database.ConnectPolicy)
	}

	switch c.Presence.Backend {
	case PresenceMemory:
	case PresenceRedis:
		if c.Presence.RedisURL == "" {
			return ErrMissingRedisAddress
		}
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidPresence, c.Presence.Backend)
	}

	if err := c.WebSocket.validate(); err != nil {
		return err
	}

	// Only pongs refresh the lease, so it has to outlive one ping round.
	lease := c.Presence.LeaseTTL
	if lease < 0 || (lease > 0 && lease <= c.WebSocket.PingPeriod) {
		return fmt.Errorf("%w: got %v with ping period %v", ErrInvalidLease, lease, c.WebSocket.PingPeriod)
	}

	return nil
}

func (w WebSocketConfig) validate() error {
	switch {
	case w.SendBufSize < 0:
		return fmt.Errorf("%w: WS_SEND_BUF_SIZE must not be negative, got %d", ErrInvalidWebSocket, w.SendBufSize)
	case w.MaxMsgSize <= 0:
		return fmt.Errorf("%w: WS_MAX_MSG_SIZE must be positive, got %d", ErrInvalidWebSocket, w.MaxMsgSize)
	case w.WriteWait <= 0:
		return fmt.Errorf("%w: WS_WRITE_WAIT must be positive, got %v", ErrInvalidWebSocket, w.WriteWait)
	case w.PingPeriod <= 0:
		return fmt.Errorf("%w: WS_PING_PERIOD must be positive, got %v", ErrInvalidWebSocket, w.PingPeriod)
	case w.PingPeriod >= w.PongWait:
		return fmt.Errorf("%w: WS_PING_PERIOD %v must be shorter than WS_PONG_WAIT %v", ErrInvalidWebSocket, w.PingPeriod, w.PongWait)
	}
	return nil
}

func validateJWTSecret(secret string) error {
	if len(secret) < constants.JWTSecretMinLength {
		return fmt.Errorf("%w: got %d bytes", ErrInvalidJWTSecret, len(secret))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func mustEnv(key string) (string, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingRequiredEnv, key)
	}
	return v, nil
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func getIntEnv(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func getInt64Env(key string, fallback int64) int64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return i
}

func getBoolEnv(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
