package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/5w1tchy/textbooks-api/internal/config"
	"github.com/5w1tchy/textbooks-api/internal/logging"
	"github.com/5w1tchy/textbooks-api/internal/lookup"
	"github.com/5w1tchy/textbooks-api/internal/service"
	"github.com/5w1tchy/textbooks-api/internal/store/connect"
	"github.com/5w1tchy/textbooks-api/internal/store/docstore"
)

// app is what every command shares once the root has loaded the config.
type app struct {
	cfg *config.Config
	log *logrus.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "textbooks",
		Short: "Textbook exchange API",
		Long: `textbooks serves the textbook exchange REST API (books, courses, listings,
users) and carries the maintenance tools that work on the same document store.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration:\n%w", err)
			}
			a.cfg = cfg
			a.log = logging.New(cfg.AppEnv, cfg.LogLevel, cfg.LogFormat)
			for _, w := range cfg.Warnings() {
				a.log.Warn(w)
			}
			return nil
		},
	}
	root.AddCommand(newServeCmd(a), newCoursesCmd(a), newAuditCmd(a))
	return root
}

func (a *app) openStore(ctx context.Context) (docstore.Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	backend, err := connect.Backend(a.cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	store, err := connect.Open(ctx, a.cfg.DatabaseURL, a.cfg.DatabaseName)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", backend, err)
	}
	a.log.WithField("backend", backend).Info("document store connected")
	return store, nil
}

// openRedis returns nil when REDIS_URL is unset or the server does not
// answer; everything that uses redis has an in-process fallback.
func (a *app) openRedis(ctx context.Context) *redis.Client {
	if a.cfg.RedisURL == "" {
		return nil
	}
	opt, err := redis.ParseURL(a.cfg.RedisURL)
	if err != nil {
		a.log.WithError(err).Warn("invalid REDIS_URL; running without redis")
		return nil
	}
	if opt.TLSConfig != nil && opt.TLSConfig.MinVersion == 0 {
		opt.TLSConfig.MinVersion = tls.VersionTLS12
	}
	opt.DialTimeout = 5 * time.Second
	opt.ReadTimeout = 1 * time.Second
	opt.WriteTimeout = 1 * time.Second
	rdb := redis.NewClient(opt)

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pctx).Err(); err != nil {
		a.log.WithError(err).Warn("redis unreachable; running without redis")
		rdb.Close()
		return nil
	}
	a.log.Info("redis connected")
	return rdb
}

// services wires the entity services. Images and the purge queue are
// optional.
func (a *app) services(store docstore.Store, rdb *redis.Client, images service.ImageStore, purger service.ImagePurger) *service.Services {
	var lk lookup.Client = lookup.NewGoogleBooks(a.cfg.BooksAPIURL, a.cfg.BooksAPIKey, a.cfg.LookupTimeout)
	if rdb != nil {
		lk = lookup.NewCached(lk, lookup.NewRedisCache(rdb), a.cfg.LookupCacheTTL, a.log)
	}
	return service.New(service.Deps{
		Store:             store,
		Lookup:            lk,
		Images:            images,
		Purger:            purger,
		Log:               a.log,
		PruneStaleCourses: a.cfg.BookCoursesSync == config.SyncFull,
	})
}
