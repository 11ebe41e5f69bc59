package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Overland-East-Bay/activity-signup-api/internal/adapters/hosted"
	"github.com/Overland-East-Bay/activity-signup-api/internal/adapters/postgres"
	pgauth "github.com/Overland-East-Bay/activity-signup-api/internal/adapters/postgres/authprovider"
	pgpermissionrepo "github.com/Overland-East-Bay/activity-signup-api/internal/adapters/postgres/permissionrepo"
	"github.com/Overland-East-Bay/activity-signup-api/internal/platform/config"
	"github.com/Overland-East-Bay/activity-signup-api/internal/platform/observability"
	permissionrepoport "github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/permissionrepo"
)

var errNeedsDatabase = errors.New("database.url is not configured")

// cli holds the state shared by subcommands.
type cli struct {
	configPath string
	cfg        config.Config
	log        *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "signupctl",
		Short:         "Operate the activity sign-up service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.load()
		},
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to a YAML config file (env SIGNUP_* overrides apply)")

	root.AddCommand(
		newEncodeCmd(),
		newDecodeCmd(),
		newMigrateCmd(c),
		newGrantAdminCmd(c),
		newCreateAccountCmd(c),
	)
	return root
}

func (c *cli) load() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	log, err := observability.NewLogger(config.LoggingConfig{Level: "warn", Format: "console"})
	if err != nil {
		return err
	}
	c.cfg, c.log = cfg, log
	return nil
}

func (c *cli) pool(ctx context.Context) (func(), *pgxpool.Pool, error) {
	if c.cfg.Database.URL == "" {
		return nil, nil, errNeedsDatabase
	}
	p, err := postgres.NewPool(ctx, c.cfg.Database.URL, postgres.PoolOptions{MaxConns: 2})
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	return p.Close, p, nil
}

// permissions returns the permission store of the configured backend.
func (c *cli) permissions(ctx context.Context) (permissionrepoport.Repository, func(), error) {
	switch mode := c.cfg.ResolvedBackend(); mode {
	case config.BackendHosted:
		client := hosted.NewClient(hosted.Config{
			BaseURL:    c.cfg.Backend.URL,
			APIKey:     c.cfg.Backend.APIKey,
			Timeout:    c.cfg.Backend.Timeout,
			RetryCount: c.cfg.Backend.RetryCount,
		}, c.log)
		return hosted.NewPermissionRepo(client), func() {}, nil
	case config.BackendPostgres:
		closer, p, err := c.pool(ctx)
		if err != nil {
			return nil, nil, err
		}
		return pgpermissionrepo.NewRepo(p), closer, nil
	default:
		return nil, nil, fmt.Errorf("backend mode %q has no persistent permissions; configure hosted or postgres", mode)
	}
}

func (c *cli) accounts(ctx context.Context) (*pgauth.Provider, func(), error) {
	if c.cfg.ResolvedBackend() != config.BackendPostgres {
		return nil, nil, errors.New("accounts can only be created when backend.mode is postgres")
	}
	closer, p, err := c.pool(ctx)
	if err != nil {
		return nil, nil, err
	}
	return pgauth.NewProvider(p), closer, nil
}
