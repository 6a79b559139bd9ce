package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/AlibekovAA/estate-hub/internal/common/config"
	"github.com/AlibekovAA/estate-hub/internal/common/constants"
	"github.com/AlibekovAA/estate-hub/internal/common/logger"
	"github.com/AlibekovAA/estate-hub/internal/observability/metrics"
)

var ErrConnectFailed = errors.New("failed to connect to database")

func NewPool(ctx context.Context, log *logger.Logger, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}

	poolCfg.MaxConns = constants.DBPoolMaxConns
	poolCfg.MinConns = constants.DBPoolMinConns
	poolCfg.MaxConnLifetime = constants.DBPoolConnMaxLifetime
	poolCfg.MaxConnIdleTime = constants.DBPoolConnMaxIdleTime
	poolCfg.HealthCheckPeriod = constants.DBPoolHealthCheck
	poolCfg.ConnConfig.ConnectTimeout = constants.DBPoolConnectTimeout
	poolCfg.ConnConfig.RuntimeParams["application_name"] = constants.DBApplicationName

	var pool *pgxpool.Pool
	err = connectWithPolicy(ctx, log, cfg, func(ctx context.Context) error {
		p, err := pgxpool.ConnectConfig(ctx, poolCfg)
		if err != nil {
			return err
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			return err
		}
		pool = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Infof("database connection pool initialized: max=%d, min=%d", poolCfg.MaxConns, poolCfg.MinConns)
	return pool, nil
}

// connectWithPolicy makes a single attempt under the exit policy and up to MaxAttempts under retry.
func connectWithPolicy(ctx context.Context, log *logger.Logger, cfg config.DatabaseConfig, dial func(context.Context) error) error {
	maxAttempts := cfg.MaxAttempts
	if cfg.ConnectPolicy == constants.DBConnectPolicyExit || maxAttempts < 1 {
		maxAttempts = 1
	}
	delay := cfg.RetryDelay
	if delay <= 0 {
		delay = constants.DBPoolRetryDelay
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = dial(ctx)
		if lastErr == nil {
			metrics.DBConnectAttempts.WithLabelValues("success").Inc()
			return nil
		}

		metrics.DBConnectAttempts.WithLabelValues("failure").Inc()
		log.Warnf("failed to connect to database (attempt %d/%d): %v", attempt, maxAttempts, lastErr)

		if attempt == maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", ErrConnectFailed, ctx.Err())
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("%w after %d attempts: %v", ErrConnectFailed, maxAttempts, lastErr)
}
