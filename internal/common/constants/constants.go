package constants

import "time"

const (
	JWTSecretMinLength = 32
	BcryptCost         = 10

	SessionCookieName = "token"
	DefaultSessionTTL = 7 * 24 * time.Hour

	DefaultMaxRequestSize = 1 << 20

	DefaultMinPrice int64 = 0
	DefaultMaxPrice int64 = 10_000_000_000_000

	DefaultPresenceLeaseTTL       = 2 * time.Minute
	PresenceCleanupInterval       = 30 * time.Second
	PresenceOperationTimeout      = 3 * time.Second
	PresenceRedisKeyPrefix        = "presence:user:"
	PresenceCircuitBreakerFailure = 5
	PresenceCircuitBreakerTimeout = 2 * time.Second
	PresenceCircuitBreakerReset   = 15 * time.Second

	DBPoolMaxConns          = 25
	DBPoolMinConns          = 5
	DBPoolConnMaxLifetime   = time.Hour
	DBPoolConnMaxIdleTime   = 30 * time.Minute
	DBPoolHealthCheck       = 1 * time.Minute
	DBPoolConnectTimeout    = 5 * time.Second
	DBPoolMaxAttempts       = 10
	DBPoolRetryDelay        = 5 * time.Second
	DBPoolMetricsInterval   = 30 * time.Second
	DBQueryTimeout          = 30 * time.Second
	DBConnectPolicyRetry    = "retry"
	DBConnectPolicyExit     = "exit"
	DBApplicationName       = "estate-hub"
	RedisConnectTimeout     = 5 * time.Second
	ServerReadHeaderTimeout = 10 * time.Second
	ServerReadTimeout       = 30 * time.Second
	ServerWriteTimeout      = 30 * time.Second
	ServerIdleTimeout       = 120 * time.Second

	ShutdownTimeout = 30 * time.Second
	DrainTimeout    = 10 * time.Second

	APIPrefix             = "/api"
	LegacyAPIPrefix       = "/api/v1"
	DefaultHTTPPort       = "8800"
	DefaultRequestTimeout = 5 * time.Second

	DevClientOrigin  = "http://localhost:5173"
	ProdClientOrigin = "https://real-estate-frontend-z0wx.onrender.com"

	DefaultWebSocketWriteWait   = 10 * time.Second
	DefaultWebSocketPongWait    = 60 * time.Second
	DefaultWebSocketPingPeriod  = 54 * time.Second
	DefaultWebSocketMaxMsgSize  = 64 * 1024
	DefaultWebSocketSendBufSize = 256
	WebSocketReadBufferSize     = 1024
	WebSocketWriteBufferSize    = 1024

	RateLimitCleanupInterval           = 5 * time.Minute
	RateLimitLoginRequestsPerSecond    = 0.5
	RateLimitLoginBurst                = 5
	RateLimitRegisterRequestsPerSecond = 0.2
	RateLimitRegisterBurst             = 3
	RateLimitGeneralRequestsPerSecond  = 20
	RateLimitGeneralBurst              = 40

	LoggerMaxSize    = 100
	LoggerMaxBackups = 3
	LoggerMaxAge     = 28
)

type TraceIDKeyType string

const TraceIDKey TraceIDKeyType = "trace_id"
