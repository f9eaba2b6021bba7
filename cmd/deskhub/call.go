package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/deskhub/authclient"
	"github.com/kbukum/deskhub/bootstrap"
	"github.com/kbukum/deskhub/httpclient"
	"github.com/kbukum/deskhub/logger"
	"github.com/kbukum/deskhub/observability"
	"github.com/kbukum/deskhub/redis"
	"github.com/kbukum/deskhub/role"
	"github.com/kbukum/deskhub/session"
)

type callFlags struct {
	role     string
	email    string
	password string
	data     string
	backend  string
	query    []string
}

func newCallCmd(root *rootFlags) *cobra.Command {
	f := &callFlags{}
	cmd := &cobra.Command{
		Use:   "call METHOD PATH",
		Short: "Log in and send one authenticated request",
		Long: `Send one request through the role's authenticated client. With --email
the client logs in first. An expired credential is refreshed and the request
replayed; a terminal failure ends the session and exits non-zero.`,
		Example: `  deskhub call --role client --email client@example.com --password deskhub-demo \
      GET /bookings --query status=active --query status=pending`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := role.Parse(f.role)
			if err != nil {
				return err
			}
			query, err := parseQuery(f.query)
			if err != nil {
				return err
			}
			req := httpclient.Request{
				Method: strings.ToUpper(args[0]),
				Path:   args[1],
				Query:  query,
			}
			if f.data != "" {
				if !json.Valid([]byte(f.data)) {
					return fmt.Errorf("--data is not valid JSON")
				}
				req.Body = json.RawMessage(f.data)
			}

			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}
			if f.backend != "" {
				cfg.Client.BackendURL = f.backend
			}
			// stdout carries the response body.
			if cfg.Logging.Output == "" {
				cfg.Logging.Output = "stderr"
			}
			app, err := bootstrap.NewApp(cfg, bootstrap.WithGracefulTimeout(5*time.Second))
			if err != nil {
				return err
			}
			return runCall(cmd.Context(), app, r, f, req, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().StringVar(&f.role, "role", "client", "role the session belongs to (client, vendor, admin)")
	cmd.Flags().StringVar(&f.email, "email", "", "log in with this email before the call")
	cmd.Flags().StringVar(&f.password, "password", "", "password for --email")
	cmd.Flags().StringVar(&f.data, "data", "", "JSON request body")
	cmd.Flags().StringVar(&f.backend, "backend", "", "backend API base URL (overrides client.backend_url)")
	cmd.Flags().StringArrayVar(&f.query, "query", nil, "query parameter key=value; repeat a key to send several values")
	return cmd
}

// parseQuery turns key=value pairs into url.Values, keeping repeated keys.
func parseQuery(pairs []string) (url.Values, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	q := url.Values{}
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("--query %q: want key=value", p)
		}
		q.Add(k, v)
	}
	return q, nil
}

type loginData struct {
	ID string `json:"id"`
}

func runCall(ctx context.Context, app *bootstrap.App[*Config], r role.Role, f *callFlags,
	req httpclient.Request, out, errOut io.Writer) error {
	cfg := app.Cfg
	log := app.Logger

	tel, err := observability.Init(ctx, cfg.Observability, log.WithComponent("observability"))
	if err != nil {
		return err
	}
	app.OnStop(tel.Shutdown)

	var redisComp *redis.Component
	if cfg.Redis.Enabled {
		redisComp = redis.NewComponent(cfg.Redis, log)
		if err := app.RegisterComponent(redisComp); err != nil {
			return err
		}
	}

	return app.RunTask(ctx, func(ctx context.Context) error {
		var (
			store session.Store = session.NewMemoryStore()
			creds session.CredentialStore
		)
		if redisComp != nil {
			rs := session.NewRedisStore(redisComp.Client(), cfg.Name, cfg.SessionTTL)
			store, creds = rs, rs
		}
		nav := session.NavigatorFunc(func(_ context.Context, path string) error {
			fmt.Fprintf(errOut, "Session ended; log in again at %s\n", path)
			return nil
		})
		gw := session.NewGateway(store, nav, session.LogNotifier{Log: log.WithComponent("session")})
		gw.Log = log.WithComponent("session.gateway")

		for _, rl := range role.All() {
			name := "authclient." + rl.String()
			logger.Register(name, log.WithComponent(name))
		}
		set, err := authclient.NewSet(cfg.Client, gw)
		if err != nil {
			return err
		}
		client := set.For(r)
		base, err := url.Parse(client.BaseURL())
		if err != nil {
			return err
		}

		// A session stored by an earlier run is resumed with its cookies.
		if creds != nil && f.email == "" {
			found, err := session.RestoreJar(ctx, creds, r, client.Jar(), base)
			if err != nil {
				return err
			}
			if found {
				log.Debug("Resumed stored session", logger.Fields(logger.FieldRole, r.String()))
			}
		}
		if f.email != "" {
			if err := login(ctx, client, store, r, f, log); err != nil {
				return err
			}
		}

		resp, err := client.Do(ctx, req)
		if resp != nil {
			writeBody(out, resp.Body)
		}
		if reason := authclient.TerminationReason(err); reason != "" {
			return fmt.Errorf("%s: %w", reason.Message(), err)
		}
		// Refreshed cookies are stored even when the call itself failed.
		if creds != nil {
			if saveErr := session.SaveJar(ctx, creds, r, client.Jar(), base); saveErr != nil {
				log.Warn("Storing session credentials failed", logger.ErrorFields("save_credentials", saveErr))
			}
		}
		return err
	})
}

func login(ctx context.Context, client *authclient.Client, store session.Store, r role.Role, f *callFlags, log *logger.Logger) error {
	resp, err := client.Login(ctx, f.email, f.password)
	if err != nil {
		return fmt.Errorf("login as %s %s: %w", r, f.email, err)
	}
	userID := f.email
	if env, err := authclient.DecodeJSON[loginData](resp); err == nil && env.Data.ID != "" {
		userID = env.Data.ID
	}
	if err := store.Login(ctx, session.Session{UserID: userID, Email: f.email, Role: r, LoggedInAt: time.Now()}); err != nil {
		return err
	}
	log.Info("Logged in", logger.Fields(logger.FieldRole, r.String(), logger.FieldEmail, f.email))
	return nil
}

// writeBody prints JSON indented and anything else as is.
func writeBody(w io.Writer, body []byte) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err == nil {
		body = buf.Bytes()
	}
	_, _ = w.Write(body)
	if len(body) > 0 && body[len(body)-1] != '\n' {
		_, _ = io.WriteString(w, "\n")
	}
}
