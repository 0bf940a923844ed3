package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/config"
	"github.com/mmynk/splitledger/internal/events"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/recurring"
	"github.com/mmynk/splitledger/internal/service"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the Connect RPC server",
		Long: `Serve the splitledger RPC services over HTTP/1.1 and h2c, together with
Prometheus metrics on /metrics and group event streams on /ws/groups/{id}.
Unless disabled, recurring expenses are materialized in the background.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), cfg)
		},
	}

	cmd.Flags().Int("port", 8080, "port to listen on")
	_ = v.BindPFlag("server.port", cmd.Flags().Lookup("port"))

	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	store, err := openStore(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	m := metrics.New()
	hub := events.NewHub()
	defer hub.Close()

	publishers := events.Multi{hub}
	if broker := dialBroker(cfg.AMQP); broker != nil {
		defer broker.Close()
		publishers = append(publishers, broker)
	}

	l := ledger.New(store,
		ledger.WithPublisher(publishers),
		ledger.WithMetrics(m),
		ledger.WithBudgetConcurrency(cfg.Budgets.Concurrency),
	)
	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	mux := http.NewServeMux()
	service.Register(mux, service.Deps{
		Ledger:        l,
		Authenticator: auth.NewPasswordAuthenticator(store, cfg.Auth.BcryptCost),
		JWT:           jwtManager,
		Metrics:       m,
	})
	mux.Handle("GET /metrics", m.Handler())
	mux.Handle("GET /ws/groups/{id}", groupEvents(l, jwtManager, hub))

	// h2c serves HTTP/2 without TLS.
	handler := h2c.NewHandler(loggingMiddleware(corsMiddleware(cfg.Server.CORSOrigin, mux)), &http2.Server{})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Connect server starting", "address", addr, "url", fmt.Sprintf("http://localhost%s", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	if cfg.Recurring.Enabled {
		g.Go(func() error {
			return recurring.NewMaterializer(l, m).Run(ctx, cfg.Recurring.Interval)
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		slog.Info("Shutting down server", "timeout", cfg.Server.ShutdownTimeout)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// groupEvents streams a group's events to an authenticated member.
func groupEvents(l *ledger.Ledger, jwtManager *auth.JWTManager, hub *events.Hub) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := middleware.WebSocketAuth(jwtManager, r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		groupID := r.PathValue("id")
		if _, err := l.GetGroup(r.Context(), claims.UserID, groupID); err != nil {
			switch {
			case errors.Is(err, ledger.ErrNotFound):
				http.Error(w, "group not found", http.StatusNotFound)
			case errors.Is(err, ledger.ErrPermissionDenied):
				http.Error(w, "not a member of this group", http.StatusForbidden)
			default:
				slog.ErrorContext(r.Context(), "Group lookup failed", "group_id", groupID, "error", err)
				http.Error(w, "temporarily unavailable", http.StatusServiceUnavailable)
			}
			return
		}

		if err := hub.Subscribe(w, r, groupID); err != nil {
			slog.WarnContext(r.Context(), "Websocket subscription ended", "group_id", groupID, "error", err)
		}
	})
}
