package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/csrf"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"dzkitab/db"
	"dzkitab/internal/announce"
	"dzkitab/internal/book"
	"dzkitab/internal/config"
	"dzkitab/internal/httpx"
	"dzkitab/internal/platform/apiclient"
	"dzkitab/internal/session"
	"dzkitab/internal/web"
	"dzkitab/internal/wishlist"
)

const (
	maxRequestBytes = 25 << 20
	wishlistIdle    = 30 * time.Minute
	draftIdle       = 2 * time.Hour
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	httpx.InitLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	backend, closeBackend, err := openWishlistBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeBackend()

	books, err := book.LoadDefault()
	if err != nil {
		return fmt.Errorf("load book data: %w", err)
	}

	templates := web.NewTemplateCache()
	if err := templates.LoadEmbedded(); err != nil {
		return fmt.Errorf("load templates: %w", err)
	}

	api := apiclient.New(cfg, &http.Client{Timeout: 15 * time.Second})
	drafts := announce.NewDraftStore(func() *announce.Wizard {
		return announce.NewWizard(api, announce.WithMaxWidth(cfg.PhotoMaxWidth))
	})
	drafts.StartJanitor(ctx, draftIdle)
	wishlists := wishlist.NewRegistry(backend)
	wishlists.StartJanitor(ctx, wishlistIdle)
	limiter := httpx.NewRateLimitMiddleware(ctx, 1, 5)

	site := web.New(web.Deps{
		API:       api,
		Books:     books,
		Wishlists: wishlists,
		Drafts:    drafts,
		Sessions:  session.NewManager(session.NewCookieStore(cfg.SessionKey, cfg.CookieSecure), cfg.CookieSecure),
		Templates: templates,
		RateLimit: limiter.Middleware,
		Static:    http.Dir(cfg.StaticDir),
	})

	protect := csrf.Protect(
		cfg.CSRFKey,
		csrf.Secure(cfg.CookieSecure),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.RequestHeader("X-CSRF-Token"),
		csrf.ErrorHandler(http.HandlerFunc(csrfFailure)),
	)

	handler := httpx.Chain(site.Handler(),
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware,
		httpx.RecoveryMiddleware,
		httpx.SecurityHeadersMiddleware,
		httpx.RequestSizeLimitMiddleware(maxRequestBytes),
		protect,
	)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", cfg.Addr, "env", cfg.Env, "api", cfg.APIBaseURL, "wishlist", cfg.WishlistBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// openWishlistBackend connects the configured wishlist storage. The returned
// func releases it.
func openWishlistBackend(ctx context.Context, cfg *config.Config) (wishlist.Backend, func(), error) {
	switch cfg.WishlistBackend {
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("cannot reach redis at %s: %w", cfg.RedisAddr, err)
		}
		slog.Info("wishlist storage: redis", "addr", cfg.RedisAddr)
		return wishlist.NewRedisBackend(client), func() { _ = client.Close() }, nil

	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("cannot create db pool: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := pool.Ping(pingCtx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("cannot ping database (%s): %w", redactDSN(cfg.DatabaseDSN), err)
		}
		if err := db.MigrateUp(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		slog.Info("wishlist storage: postgres")
		return wishlist.NewPostgresBackend(pool), pool.Close, nil

	default:
		files, err := wishlist.NewFileBackend(cfg.WishlistDir)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("wishlist storage: files", "dir", cfg.WishlistDir)
		return files, func() {}, nil
	}
}

func csrfFailure(w http.ResponseWriter, r *http.Request) {
	slog.WarnContext(r.Context(), "csrf check failed", "path", r.URL.Path, "reason", csrf.FailureReason(r))
	if httpx.WantsJSON(r) {
		httpx.JSONErrorWithRequest(r, w, http.StatusForbidden, "CSRF_FAILED", "Jeton CSRF invalide", nil)
		return
	}
	http.Error(w, "Session expirée, veuillez recharger la page.", http.StatusForbidden)
}

func redactDSN(dsn string) string {
	const marker = "://"
	start := strings.Index(dsn, marker)
	if start < 0 {
		return dsn
	}
	start += len(marker)
	end := strings.Index(dsn[start:], "@")
	if end < 0 {
		return dsn
	}
	return dsn[:start] + "***" + dsn[start+end:]
}
