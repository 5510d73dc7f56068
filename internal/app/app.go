// Package app はストアフロントCLIの初期化とサブコマンドの実行を提供する。
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hitoshi/storefront/internal/config"
	"github.com/hitoshi/storefront/internal/database"
	"github.com/hitoshi/storefront/internal/logger"
	"github.com/hitoshi/storefront/internal/metrics"
)

// ErrRedirected はナビゲーションガードにより遷移が転送され、コマンドを中断したことを示す。
var ErrRedirected = errors.New("navigation redirected")

// ErrCommandFailed はコマンドの操作が失敗したことを示す。詳細は通知として出力済み。
var ErrCommandFailed = errors.New("command failed")

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// logwが指定された場合はログ出力先としてそのwriterを使用する。
func Init(logw io.Writer) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		logger.SetupDefault(logw, slog.LevelInfo)
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	l := logger.SetupDefault(logw, logger.ParseLevel(cfg.LogLevel))
	return cfg, l, nil
}

// Run はアプリケーションのメインエントリーポイント。
// 結果はwに、ログは標準エラーに出力する。argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	return RunWithLog(w, os.Stderr, args)
}

// RunWithLog はログ出力先を指定してRunを実行する。
func RunWithLog(w, logw io.Writer, args []string) error {
	cmd := ParseCommand(args)
	if cmd == CommandHelp {
		fmt.Fprint(w, usage)
		return nil
	}

	cfg, l, err := Init(logw)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	l.Debug("starting command",
		slog.String("command", string(cmd)),
		slog.String("api_url", cfg.APIURL),
		slog.String("token_store", cfg.TokenStore),
	)

	if !cmd.NeedsSession() {
		return runStandalone(cmd, cfg, l)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	actx, err := NewContext(ctx, cfg, l)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	defer actx.Close()

	actx.Session.Initialize(ctx)

	if cmd == CommandServeMetrics {
		return runServeMetrics(ctx, actx)
	}

	runErr := runCommand(ctx, w, actx, cmd, args[1:])
	printToasts(w, actx)
	return runErr
}

// runStandalone はセッションを構築せずに実行するコマンドを処理する。
func runStandalone(cmd Command, cfg *config.Config, l *slog.Logger) error {
	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg, l)
	default:
		return fmt.Errorf("unsupported command: %s", cmd)
	}
}

// runMigrate はトークン保存用テーブルのマイグレーションを実行する。
func runMigrate(cfg *config.Config, l *slog.Logger) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("migration failed: DATABASE_URL is not set")
	}

	files, err := database.MigrationFiles()
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	l.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
		slog.Any("files", files),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	l.Info("database migrations completed successfully")
	return nil
}

// runServeMetrics はメトリクスエンドポイントを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServeMetrics(ctx context.Context, actx *Context) error {
	addr := actx.Config.MetricsAddr
	if addr == "" {
		return fmt.Errorf("METRICS_ADDR is not set")
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      metrics.SetupMetricsRoute(actx.Registry),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		actx.Logger.Info("metrics server starting", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("metrics server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	actx.Logger.Info("shutting down metrics server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("metrics server shutdown failed: %w", err)
	}

	actx.Logger.Info("metrics server stopped gracefully")
	return nil
}

// printToasts はコマンド中に発行された通知を出力する。
func printToasts(w io.Writer, actx *Context) {
	for _, t := range actx.DrainToasts() {
		fmt.Fprintf(w, "[%s] %s\n", t.Severity, t.Message)
	}
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
