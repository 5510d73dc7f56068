package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/hitoshi/storefront/internal/api"
	"github.com/hitoshi/storefront/internal/config"
	"github.com/hitoshi/storefront/internal/database"
	"github.com/hitoshi/storefront/internal/metrics"
	"github.com/hitoshi/storefront/internal/middleware"
	"github.com/hitoshi/storefront/internal/navigation"
	"github.com/hitoshi/storefront/internal/security"
	"github.com/hitoshi/storefront/internal/session"
	"github.com/hitoshi/storefront/internal/shop"
	"github.com/hitoshi/storefront/internal/toast"
	"github.com/hitoshi/storefront/internal/tokenstore"
)

// Context はクライアントプロセスの依存関係をまとめたアプリケーションコンテキスト。
// NewContextで構築し、Closeで解放する。
type Context struct {
	Config   *config.Config
	Logger   *slog.Logger
	Registry *prometheus.Registry
	Metrics  *metrics.Collector
	Tokens   tokenstore.TokenStore
	Notifier *toast.Notifier
	Routes   *navigation.Table
	Router   *navigation.Router
	Client   *api.Client
	Session  *session.Store
	Shop     *shop.Service

	toastMu sync.Mutex
	toasts  []toast.Toast
	closers []func() error
}

// NewContext は設定から依存関係を構築する。
// セッションの初期化（永続化トークンの読み込み）は呼び出し側でSession.Initializeを呼ぶこと。
func NewContext(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Context, error) {
	policy := security.NewOutboundPolicy(cfg.StrictNetwork)
	if err := policy.ValidateBaseURL(cfg.APIURL); err != nil {
		return nil, fmt.Errorf("invalid STOREFRONT_API_URL: %w", err)
	}

	c := &Context{
		Config:   cfg,
		Logger:   logger,
		Registry: prometheus.NewRegistry(),
	}
	c.Metrics = metrics.NewCollector(c.Registry)

	tokens, closer, err := openTokenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	c.Tokens = tokens
	if closer != nil {
		c.closers = append(c.closers, closer)
	}

	// 1. 外向きHTTPクライアント
	httpClient := policy.NewHTTPClient(cfg.RequestTimeout)
	limiter := middleware.RateLimiterConfig{
		Rate:  rate.Limit(cfg.RateLimitRPS),
		Burst: cfg.RateLimitBurst,
	}.NewLimiter()
	httpClient.Transport = middleware.Chain(httpClient.Transport,
		middleware.NewRateLimitMiddleware(limiter),
		middleware.NewLoggingMiddleware(logger),
		middleware.NewMetricsMiddleware(c.Metrics),
	)
	c.Client = api.NewClient(cfg.APIURL, httpClient, logger, cfg.RequestTimeout)
	logger.Debug("api client ready",
		slog.String("base_url", c.Client.BaseURL()),
		slog.Duration("timeout", cfg.RequestTimeout),
	)

	// 2. 通知キュー
	c.Notifier = toast.NewNotifier(logger,
		toast.WithDefaultDuration(cfg.ToastDuration),
		toast.WithSanitizer(security.NewMessageSanitizer()),
		toast.WithMetrics(c.Metrics),
	)
	c.Notifier.Observe(func(t toast.Toast) {
		c.toastMu.Lock()
		c.toasts = append(c.toasts, t)
		c.toastMu.Unlock()
	})

	// 3. ルーティング
	c.Routes, err = navigation.NewTable(navigation.DefaultRoutes())
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to build route table: %w", err)
	}
	c.Router = navigation.NewRouter(navigation.NewGuard(c.Routes), logger)

	// 4. セッションとショップ
	c.Session = session.NewStore(c.Client, c.Tokens, c.Router, c.Notifier, logger,
		session.WithMetrics(c.Metrics),
	)
	c.Router.Bind(c.Session)
	c.Shop = shop.NewService(c.Client, c.Session, c.Notifier, logger)

	return c, nil
}

// DrainToasts は前回の呼び出し以降に発行された通知を発行順に取り出す。
func (c *Context) DrainToasts() []toast.Toast {
	c.toastMu.Lock()
	defer c.toastMu.Unlock()

	out := c.toasts
	c.toasts = nil
	return out
}

// Close は通知キューとトークン保存先を解放する。
func (c *Context) Close() error {
	if c.Notifier != nil {
		c.Notifier.Close()
	}
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

// openTokenStore はTOKEN_STOREに応じたトークン保存先を開く。
func openTokenStore(ctx context.Context, cfg *config.Config) (tokenstore.TokenStore, func() error, error) {
	switch cfg.TokenStore {
	case config.TokenStoreMemory:
		return tokenstore.NewMemoryStore(""), nil, nil

	case config.TokenStorePostgres:
		db, err := database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return tokenstore.NewPostgresStore(db, tokenstore.DefaultSlot), db.Close, nil

	default:
		path := cfg.TokenFile
		if path == "" {
			p, err := tokenstore.DefaultFilePath()
			if err != nil {
				return nil, nil, fmt.Errorf("failed to resolve token file: %w", err)
			}
			path = p
		}
		return tokenstore.NewFileStore(path), nil, nil
	}
}
