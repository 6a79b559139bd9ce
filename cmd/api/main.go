package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	authhttp "github.com/AlibekovAA/estate-hub/internal/auth/http"
	authservice "github.com/AlibekovAA/estate-hub/internal/auth/service"
	"github.com/AlibekovAA/estate-hub/internal/common/bootstrap"
	"github.com/AlibekovAA/estate-hub/internal/common/cleanup"
	"github.com/AlibekovAA/estate-hub/internal/common/constants"
	commoncrypto "github.com/AlibekovAA/estate-hub/internal/common/crypto"
	"github.com/AlibekovAA/estate-hub/internal/common/db"
	commonhttp "github.com/AlibekovAA/estate-hub/internal/common/http"
	srv "github.com/AlibekovAA/estate-hub/internal/common/server"
	"github.com/AlibekovAA/estate-hub/internal/common/session"
	listinghttp "github.com/AlibekovAA/estate-hub/internal/listing/http"
	listingrepo "github.com/AlibekovAA/estate-hub/internal/listing/repository"
	listingservice "github.com/AlibekovAA/estate-hub/internal/listing/service"
	"github.com/AlibekovAA/estate-hub/internal/presence"
	"github.com/AlibekovAA/estate-hub/internal/realtime"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := bootstrap.NewApp(ctx, "api")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start api: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	log := app.Log
	cfg := app.Config

	codec := session.NewCodec(cfg.JWTSecret, nil)
	cookies := session.NewCookieWriter(cfg.IsProduction())
	ids := commoncrypto.NewUUIDGenerator()

	authSvc := authservice.NewAuthService(
		app.UserRepo,
		commoncrypto.NewBcryptHasher(),
		ids,
		codec,
		cfg.SessionTTL,
		nil,
		log,
	)

	listingRepo := listingrepo.NewPgRepository(app.Pool, db.NewPgTxManager(app.Pool, log))
	listingSvc := listingservice.NewListingService(listingRepo, ids, nil, log)

	hub := realtime.NewHub(log)
	tracker := presence.NewTracker(presence.TrackerDeps{
		Registry: app.Registry,
		Verifier: codec,
		Users:    app.UserRepo,
		Log:      log,
	}, cfg.Presence.RemoveOnDisconnect)
	tracker.SetBroadcaster(hub)
	hub.UsePresence(tracker)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		hub.Run(ctx)
	}()

	if mem, ok := app.Registry.(*presence.MemoryRegistry); ok && cfg.Presence.LeaseTTL > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cleanup.StartCleanup(ctx, mem, log, "presence", constants.PresenceCleanupInterval)
		}()
	}

	limiter := commonhttp.NewStrictRateLimiter()
	limiter.StartCleanup(ctx)

	healthChecks := []commonhttp.HealthCheck{
		{Name: "database", Check: app.Pool.Ping},
	}
	if rr, ok := app.Registry.(*presence.RedisRegistry); ok {
		healthChecks = append(healthChecks, commonhttp.HealthCheck{Name: "redis", Check: rr.Ping})
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", commonhttp.HealthHandler(log, healthChecks...))
	mux.Handle("GET /metrics", promhttp.Handler())

	authhttp.NewHandler(authSvc, cookies, cfg.RequestTimeout, log).Routes(mux, limiter)
	listinghttp.NewHandler(listingSvc, codec, cfg.RequestTimeout, log).Routes(mux, limiter)
	realtime.NewHandler(hub, tracker, ids, cfg.ClientOrigin, cfg.WebSocket, cfg.RequestTimeout, log).Routes(mux, limiter)
	mux.Handle(constants.LegacyAPIPrefix+"/", commonhttp.PathAlias(constants.LegacyAPIPrefix, constants.APIPrefix, mux))

	baseHandler := commonhttp.BuildBaseHandler("api", cfg.ClientOrigin, log, mux)
	server := srv.NewServer(srv.DefaultServerConfig(cfg.HTTPPort), baseHandler)

	shutdownHooks := []srv.ShutdownHook{
		func(ctx context.Context) error {
			log.Infof("api service: stopping hub and background workers")
			cancel()
			done := make(chan struct{})
			go func() {
				wg.Wait()
				close(done)
			}()
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	}

	srv.StartWithGracefulShutdownAndHooks(server, log, "api", shutdownHooks)
}
