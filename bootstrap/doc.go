// Package bootstrap runs a deskhub process: it applies and validates the
// typed configuration, initializes logging, starts registered components in
// order, runs lifecycle hooks and shuts everything down again.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.RegisterComponent(redis.NewComponent(cfg.Redis, app.Logger))
//	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*Config]) error {
//	    return wireHandlers(a)
//	})
//	err = app.Run(ctx)
//
// Run blocks until SIGINT, SIGTERM or context cancellation; RunTask runs a
// finite task, as the CLI commands do.
package bootstrap
