package main

import (
	"context"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kbukum/deskhub/bootstrap"
	"github.com/kbukum/deskhub/logger"
	"github.com/kbukum/deskhub/mockapi"
	"github.com/kbukum/deskhub/observability"
	"github.com/kbukum/deskhub/redis"
	"github.com/kbukum/deskhub/server"
	"github.com/kbukum/deskhub/server/middleware"
)

const demoPassword = "deskhub-demo"

type mockAPIFlags struct {
	port      int
	demo      bool
	emitCodes bool
}

func newMockAPICmd(root *rootFlags) *cobra.Command {
	f := &mockAPIFlags{}
	cmd := &cobra.Command{
		Use:   "mock-api",
		Short: "Serve the reference backend",
		Long: `Serve the reference marketplace backend. Every role is mounted under
{prefix}/{segment} with login, refresh-token, logout, profile and bookings;
admins can block and unblock accounts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = f.port
			}
			if f.emitCodes {
				cfg.MockAPI.EmitCodes = true
			}
			if f.demo {
				cfg.MockAPI.Accounts = append(cfg.MockAPI.Accounts, demoAccounts()...)
			}

			app, err := bootstrap.NewApp(cfg)
			if err != nil {
				return err
			}
			return runMockAPI(cmd.Context(), app, nil)
		},
	}
	cmd.Flags().IntVar(&f.port, "port", 8080, "listen port (-1 picks a free port)")
	cmd.Flags().BoolVar(&f.demo, "demo", false, "seed one account per role with password "+demoPassword)
	cmd.Flags().BoolVar(&f.emitCodes, "emit-codes", false, "add structured error codes to failure bodies")
	return cmd
}

func demoAccounts() []mockapi.AccountConfig {
	return []mockapi.AccountConfig{
		{Role: "client", Email: "client@example.com", Password: demoPassword, Name: "Demo Client"},
		{Role: "vendor", Email: "vendor@example.com", Password: demoPassword, Name: "Demo Vendor"},
		{Role: "admin", Email: "admin@example.com", Password: demoPassword, Name: "Demo Admin"},
	}
}

// runMockAPI serves the backend until ctx is done or the process is
// signalled. ready, when set, receives the server URL once listening.
func runMockAPI(ctx context.Context, app *bootstrap.App[*Config], ready func(url string)) error {
	cfg := app.Cfg
	log := app.Logger

	if cfg.MockAPI.JWT.Secret == "" {
		cfg.MockAPI.JWT.Secret = uuid.NewString() + uuid.NewString()
		log.Warn("No mockapi.jwt.secret configured, using a random one; tokens will not survive a restart")
	}
	for _, acct := range cfg.MockAPI.Accounts {
		log.Info("Seeding account", logger.Fields(logger.FieldRole, acct.Role, logger.FieldEmail, acct.Email))
	}

	tel, err := observability.Init(ctx, cfg.Observability, log.WithComponent("observability"))
	if err != nil {
		return err
	}

	var redisComp *redis.Component
	if cfg.Redis.Enabled {
		redisComp = redis.NewComponent(cfg.Redis, log)
		if err := app.RegisterComponent(redisComp); err != nil {
			return err
		}
	}

	srv := server.New(cfg.Server, log)
	srv.ApplyDefaults(cfg.Name, app.Components.HealthAll)
	metrics, err := observability.NewMetrics(observability.Meter("github.com/kbukum/deskhub/mockapi"))
	if err != nil {
		return err
	}
	srv.Use(middleware.Telemetry("mockapi", metrics))

	var api *mockapi.API
	app.OnConfigure(func(_ context.Context, a *bootstrap.App[*Config]) error {
		opts := []mockapi.Option{mockapi.WithLogger(a.Logger)}
		if redisComp != nil {
			opts = append(opts, mockapi.WithBlacklist(mockapi.NewRedisBlacklist(redisComp.Client(), cfg.Name+":blacklist")))
		}
		var err error
		if api, err = mockapi.New(cfg.MockAPI, opts...); err != nil {
			return err
		}
		api.Register(srv.GinEngine())
		return nil
	})

	// The server starts once the routes exist and stops before telemetry
	// is flushed.
	app.OnReady(func(ctx context.Context) error {
		if err := srv.Start(ctx); err != nil {
			return err
		}
		log.Info("Mock API listening", logger.Fields(
			"url", srv.URL(),
			"prefix", api.Config().Prefix,
			"emit_codes", api.Config().EmitCodes,
		))
		if ready != nil {
			ready(srv.URL())
		}
		return nil
	})
	app.OnStop(srv.Stop, tel.Shutdown)

	return app.Run(ctx)
}
