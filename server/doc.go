// Package server is the gin-backed HTTP server that hosts the reference
// backend. Middleware runs at the handler level so it covers every route:
//
//	srv := server.New(cfg, log)
//	srv.ApplyDefaults("deskhub-mock-api", registry.HealthAll)
//	api.Register(srv.GinEngine())
//	err := srv.Start(ctx)
package server
