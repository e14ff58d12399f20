package server

import (
	"context"
	"net/http"
	"time"

	"github.com/anrid/kbguard/internal/core"
	"github.com/anrid/kbguard/internal/server/auth"
	"github.com/anrid/kbguard/internal/server/endpoints"
	"github.com/anrid/kbguard/internal/server/endpoints/access"
	"github.com/go-chi/chi"
	"go.uber.org/zap"
)

// Config carries the transport settings
type Config struct {
	Addr      string
	JWTSecret []byte
}

// NewRouter assembles the API routes over a given core
func NewRouter(c *core.Core, cfg Config) chi.Router {
	r := chi.NewRouter()

	//---------------------------------------------------------------------------
	// API ROUTING (V1)
	//---------------------------------------------------------------------------
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.NewMiddleware(cfg.JWTSecret))

		r.Route("/knowledge", func(r chi.Router) {
			r.Method(http.MethodGet, "/{id}/access", endpoints.NewEndpoint(c, access.Get, "get_access"))
			r.Method(http.MethodPost, "/{id}/access", endpoints.NewEndpoint(c, access.Update, "update_access"))
			r.Method(http.MethodGet, "/{id}/access/check", endpoints.NewEndpoint(c, access.Check, "check_access"))
			r.Method(http.MethodPost, "/access/bulk", endpoints.NewEndpoint(c, access.Bulk, "bulk_access"))
		})
	})

	return r
}

// Run serves the API until the context is cancelled
func Run(ctx context.Context, c *core.Core, cfg Config) error {
	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: NewRouter(c, cfg),
	}

	errCh := make(chan error, 1)

	go func() {
		c.Logger().Info("starting server", zap.String("addr", cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		c.Logger().Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	}
}
