package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Overland-East-Bay/activity-signup-api/internal/adapters/hosted"
	"github.com/Overland-East-Bay/activity-signup-api/internal/adapters/httpapi"
	memauth "github.com/Overland-East-Bay/activity-signup-api/internal/adapters/memory/authprovider"
	membulletinrepo "github.com/Overland-East-Bay/activity-signup-api/internal/adapters/memory/bulletinrepo"
	memidempotency "github.com/Overland-East-Bay/activity-signup-api/internal/adapters/memory/idempotency"
	mempermissionrepo "github.com/Overland-East-Bay/activity-signup-api/internal/adapters/memory/permissionrepo"
	memregistrationrepo "github.com/Overland-East-Bay/activity-signup-api/internal/adapters/memory/registrationrepo"
	"github.com/Overland-East-Bay/activity-signup-api/internal/adapters/memory/seed"
	memsessionstore "github.com/Overland-East-Bay/activity-signup-api/internal/adapters/memory/sessionstore"
	memtaxonomyrepo "github.com/Overland-East-Bay/activity-signup-api/internal/adapters/memory/taxonomyrepo"
	"github.com/Overland-East-Bay/activity-signup-api/internal/adapters/postgres"
	pgauth "github.com/Overland-East-Bay/activity-signup-api/internal/adapters/postgres/authprovider"
	pgbulletinrepo "github.com/Overland-East-Bay/activity-signup-api/internal/adapters/postgres/bulletinrepo"
	pgidempotency "github.com/Overland-East-Bay/activity-signup-api/internal/adapters/postgres/idempotency"
	"github.com/Overland-East-Bay/activity-signup-api/internal/adapters/postgres/migrations"
	pgpermissionrepo "github.com/Overland-East-Bay/activity-signup-api/internal/adapters/postgres/permissionrepo"
	pgregistrationrepo "github.com/Overland-East-Bay/activity-signup-api/internal/adapters/postgres/registrationrepo"
	pgtaxonomyrepo "github.com/Overland-East-Bay/activity-signup-api/internal/adapters/postgres/taxonomyrepo"
	redisadapter "github.com/Overland-East-Bay/activity-signup-api/internal/adapters/redis"
	redissessionstore "github.com/Overland-East-Bay/activity-signup-api/internal/adapters/redis/sessionstore"
	"github.com/Overland-East-Bay/activity-signup-api/internal/adapters/spreadsheet"
	"github.com/Overland-East-Bay/activity-signup-api/internal/app/accounts"
	"github.com/Overland-East-Bay/activity-signup-api/internal/app/bulletins"
	"github.com/Overland-East-Bay/activity-signup-api/internal/app/catalog"
	"github.com/Overland-East-Bay/activity-signup-api/internal/app/registrations"
	platformclock "github.com/Overland-East-Bay/activity-signup-api/internal/platform/clock"
	"github.com/Overland-East-Bay/activity-signup-api/internal/platform/config"
	authproviderport "github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/authprovider"
	bulletinrepoport "github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/bulletinrepo"
	idempotencyport "github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/idempotency"
	permissionrepoport "github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/permissionrepo"
	registrationrepoport "github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/registrationrepo"
	sessionstoreport "github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/sessionstore"
	taxonomyrepoport "github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/taxonomyrepo"
)

// pruneInterval is how often expired idempotency records are removed from Postgres.
const pruneInterval = time.Hour

type ports struct {
	taxonomy      taxonomyrepoport.Repository
	registrations registrationrepoport.Repository
	bulletins     bulletinrepoport.Repository
	permissions   permissionrepoport.Repository
	auth          authproviderport.Provider
	idempotency   idempotencyport.Store
	// passwordless is set when auth accepts any password.
	passwordless bool
}

type app struct {
	api     *httpapi.Server
	closers []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func build(ctx context.Context, cfg config.Config, log *zap.Logger) (*app, error) {
	a := &app{}
	clk := platformclock.NewSystemClock()

	var (
		p   ports
		err error
	)
	switch mode := cfg.ResolvedBackend(); mode {
	case config.BackendHosted:
		p = hostedPorts(cfg, log)
	case config.BackendPostgres:
		p, err = postgresPorts(ctx, cfg, log, a)
	case config.BackendMemory:
		p, err = memoryPorts(cfg, log)
	default:
		err = fmt.Errorf("unsupported backend mode %q", mode)
	}
	if err != nil {
		a.Close()
		return nil, err
	}

	sessions, err := sessionStore(ctx, cfg, a)
	if err != nil {
		a.Close()
		return nil, err
	}

	acct := accounts.NewService(p.auth, p.permissions, sessions, clk, log.Named("accounts"))
	acct.SessionTTL = cfg.Sessions.TTL
	acct.RequirePassword = !p.passwordless

	a.api = httpapi.NewServer(httpapi.Services{
		Accounts:      acct,
		Catalog:       catalog.NewService(p.taxonomy, p.permissions, clk),
		Registrations: registrations.NewService(p.registrations, p.taxonomy, p.permissions, spreadsheet.NewWriter(), clk),
		Bulletins:     bulletins.NewService(p.bulletins, p.permissions, clk),
	}, p.idempotency, clk, log.Named("http"))
	return a, nil
}

func hostedPorts(cfg config.Config, log *zap.Logger) ports {
	c := hosted.NewClient(hosted.Config{
		BaseURL:    cfg.Backend.URL,
		APIKey:     cfg.Backend.APIKey,
		Timeout:    cfg.Backend.Timeout,
		RetryCount: cfg.Backend.RetryCount,
	}, log.Named("hosted"))
	idem := memidempotency.NewStore()
	idem.MaxAge = cfg.Idempotency.MaxAge
	return ports{
		taxonomy:      hosted.NewTaxonomyRepo(c),
		registrations: hosted.NewRegistrationRepo(c),
		bulletins:     hosted.NewBulletinRepo(c),
		permissions:   hosted.NewPermissionRepo(c),
		auth:          hosted.NewAuthProvider(c),
		idempotency:   idem,
	}
}

func memoryPorts(cfg config.Config, log *zap.Logger) (ports, error) {
	ds, err := seed.Load(cfg.Seed.Path)
	if err != nil {
		return ports{}, fmt.Errorf("loading seed data: %w", err)
	}
	log.Warn("no backend configured; serving from in-memory fallback data",
		zap.Int("taxonomy_entries", len(ds.Entries)),
		zap.Int("bulletins", len(ds.Bulletins)),
		zap.Int("admins", len(ds.Admins)))

	idem := memidempotency.NewStore()
	idem.MaxAge = cfg.Idempotency.MaxAge
	return ports{
		taxonomy:      memtaxonomyrepo.NewRepo(ds.Entries...),
		registrations: memregistrationrepo.NewRepo(),
		bulletins:     membulletinrepo.NewRepo(ds.Bulletins...),
		permissions:   mempermissionrepo.NewRepo(ds.Admins...),
		auth:          memauth.NewProvider(),
		idempotency:   idem,
		passwordless:  true,
	}, nil
}

func postgresPorts(ctx context.Context, cfg config.Config, log *zap.Logger, a *app) (ports, error) {
	if cfg.Database.MigrateOnStart {
		res, err := migrations.Up(cfg.Database.URL, 0)
		if err != nil {
			return ports{}, fmt.Errorf("migrating database: %w", err)
		}
		log.Info("database migrated", zap.Uint("version", res.Version), zap.Bool("no_change", res.NoChange))
	}

	pool, err := postgres.NewPool(ctx, cfg.Database.URL, postgres.PoolOptions{
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
	})
	if err != nil {
		return ports{}, fmt.Errorf("connecting to postgres: %w", err)
	}
	a.closers = append(a.closers, pool.Close)

	idem := pgidempotency.NewStore(pool)
	pruneCtx, cancel := context.WithCancel(context.Background())
	a.closers = append(a.closers, cancel)
	go pruneIdempotency(pruneCtx, idem, cfg.Idempotency.MaxAge, log)

	return postgresRepos(pool, idem), nil
}

func postgresRepos(pool *pgxpool.Pool, idem *pgidempotency.Store) ports {
	return ports{
		taxonomy:      pgtaxonomyrepo.NewRepo(pool),
		registrations: pgregistrationrepo.NewRepo(pool),
		bulletins:     pgbulletinrepo.NewRepo(pool),
		permissions:   pgpermissionrepo.NewRepo(pool),
		auth:          pgauth.NewProvider(pool),
		idempotency:   idem,
	}
}

func pruneIdempotency(ctx context.Context, idem *pgidempotency.Store, maxAge time.Duration, log *zap.Logger) {
	t := time.NewTicker(pruneInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := idem.Prune(ctx, now.UTC().Add(-maxAge))
			if err != nil {
				log.Warn("pruning idempotency records", zap.Error(err))
				continue
			}
			if n > 0 {
				log.Debug("pruned idempotency records", zap.Int64("removed", n))
			}
		}
	}
}

func sessionStore(ctx context.Context, cfg config.Config, a *app) (sessionstoreport.Store, error) {
	if cfg.Sessions.Store != config.SessionsRedis {
		return memsessionstore.NewStore(), nil
	}
	rdb, err := redisadapter.NewClient(ctx, redisadapter.Config{
		Addr:     cfg.Sessions.Redis.Addr,
		Password: cfg.Sessions.Redis.Password,
		DB:       cfg.Sessions.Redis.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	a.closers = append(a.closers, func() { _ = rdb.Close() })
	return redissessionstore.NewStore(rdb), nil
}
