package cli

import (
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/rogerio-castellano/finance-dashboard/internal/apiclient"
	"github.com/rogerio-castellano/finance-dashboard/internal/auth"
	"github.com/rogerio-castellano/finance-dashboard/internal/config"
	"github.com/rogerio-castellano/finance-dashboard/internal/dashboard"
	"github.com/rogerio-castellano/finance-dashboard/internal/offline"
	"github.com/rogerio-castellano/finance-dashboard/internal/session"
)

// offlineTTL bounds how old a fallback copy may be.
const offlineTTL = 24 * time.Hour

// Deps is everything a command needs, built once from the configuration.
type Deps struct {
	Sessions session.Store
	HTTP     *http.Client
	API      *apiclient.Client
	Exchange *auth.Exchange

	redis *redis.Client
	cfg   *config.Config
	log   logrus.FieldLogger
}

func BuildDeps(cfg *config.Config, log logrus.FieldLogger) (*Deps, error) {
	d := &Deps{cfg: cfg, log: log, HTTP: &http.Client{}}

	if cfg.UsesRedis() {
		d.redis = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	}

	sessions, err := session.New(session.Options{
		Backend:  cfg.SessionBackend,
		FilePath: cfg.SessionFile,
		Redis: session.RedisOptions{
			Addr:   cfg.RedisAddr,
			Key:    cfg.RedisSessionKey,
			Client: d.redis,
		},
	})
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}
	d.Sessions = sessions

	switch cfg.OfflineCache {
	case config.OfflineMemory:
		offline.Install(d.HTTP, offline.NewMemoryCache(0, offlineTTL), offline.WithRemember(cfg.OfflineRemember), offline.WithLogger(log))
	case config.OfflineRedis:
		offline.Install(d.HTTP, offline.NewRedisCache(d.redis, "", offlineTTL), offline.WithRemember(cfg.OfflineRemember), offline.WithLogger(log))
	}

	d.API = apiclient.New(cfg.APIURL, sessions, apiclient.WithHTTPClient(d.HTTP), apiclient.WithLogger(log))

	mode, err := auth.ParseMode(cfg.AuthMode)
	if err != nil {
		d.Close()
		return nil, err
	}
	switch mode {
	case auth.ModeLocalMint:
		credential, err := auth.NewFixedCredential(cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			d.Close()
			return nil, err
		}
		minter, err := auth.NewMinter(cfg.JWTSecret, cfg.TokenTTL)
		if err != nil {
			d.Close()
			return nil, err
		}
		d.Exchange = auth.NewLocalExchange(sessions, credential, minter, log)
	default:
		d.Exchange = auth.NewDelegatedExchange(sessions, d.API, log)
	}

	return d, nil
}

// Controller returns a dashboard controller reporting to notify.
func (d *Deps) Controller(notify dashboard.Notifier) *dashboard.Controller {
	return dashboard.NewController(d.API, dashboard.Options{
		SummaryHonorsFilters: d.cfg.SummaryHonorsFilters,
		RecentLimit:          d.cfg.RecentLimit,
		Notifier:             notify,
		Log:                  d.log,
	})
}

func (d *Deps) Close() {
	if d.redis != nil {
		if err := d.redis.Close(); err != nil {
			d.log.WithError(err).Warn("CLI.Redis.CloseFailed")
		}
	}
}
