package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mw "github.com/5w1tchy/textbooks-api/internal/api/middlewares"
	"github.com/5w1tchy/textbooks-api/internal/api/router"
	"github.com/5w1tchy/textbooks-api/internal/config"
	"github.com/5w1tchy/textbooks-api/internal/maintenance"
	"github.com/5w1tchy/textbooks-api/internal/service"
	"github.com/5w1tchy/textbooks-api/internal/storage/imagequeue"
	"github.com/5w1tchy/textbooks-api/internal/storage/s3"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	cfg, log := a.cfg, a.log

	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			log.WithError(err).Warn("closing store")
		}
	}()

	rdb := a.openRedis(ctx)
	if rdb != nil {
		defer rdb.Close()
	}

	var (
		images service.ImageStore
		purger service.ImagePurger
	)
	if cfg.StorageEnabled() {
		client, err := s3.NewClient(ctx, s3.Options{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			return err
		}
		queue := imagequeue.Start(client, 10000, 2, log)
		defer queue.Shutdown()
		images, purger = client, queue
		log.WithField("bucket", cfg.S3Bucket).Info("listing image storage enabled")
	}

	svcs := a.services(store, rdb, images, purger)

	hour, minute, _ := config.ParseClock(cfg.AuditAt)
	loc, _ := time.LoadLocation(cfg.AuditTZ)
	if _, err := maintenance.StartIntegrityAudit(ctx, svcs.Audit, hour, minute, loc, log); err != nil {
		return err
	}

	chain := []mw.Middleware{
		mw.RequestID,
		mw.AccessLog(log),
		mw.Recovery,
		mw.Cors(cfg.CORSOrigins, log),
		mw.SecurityHeaders,
		mw.HPP(mw.DefaultHPPOptions()),
	}
	if rdb != nil {
		tb := mw.NewRedisTokenBucket(rdb, cfg.RateLimitRPS, cfg.RateLimitBurst, mw.PerIPKey("tb"), log)
		sw := mw.NewRedisSlidingWindow(rdb, cfg.RateLimitHourly, time.Hour, mw.PerIPKey("sw"), log)
		chain = append(chain, tb.Middleware, sw.Middleware)
	} else {
		chain = append(chain, mw.NewMemoryLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, mw.PerIPKey("mem")).Middleware)
	}
	chain = append(chain, mw.BodySizeLimit(cfg.MaxBodySize), mw.Compression)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           mw.Apply(router.Router(svcs, store), chain...),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", server.Addr).Info("server is running")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(sctx); err != nil {
		log.WithError(err).Warn("graceful shutdown incomplete")
		return err
	}
	return nil
}
