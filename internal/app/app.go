// Package app はアプリケーションの起動と依存関係のワイヤリングを行う。
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/hitoshi/innman/internal/config"
	"github.com/hitoshi/innman/internal/gateway"
	"github.com/hitoshi/innman/internal/handler"
	"github.com/hitoshi/innman/internal/logger"
	"github.com/hitoshi/innman/internal/metrics"
	"github.com/hitoshi/innman/internal/middleware"
	"github.com/hitoshi/innman/internal/reservations"
	"github.com/hitoshi/innman/internal/rooms"
	"github.com/hitoshi/innman/internal/security"
	"github.com/hitoshi/innman/internal/session"
	"github.com/hitoshi/innman/internal/validate"
)

// Init はアプリケーションの初期化を行う。
// .envがあれば読み込み、JSON構造化ログをセットアップした上で
// 環境変数からConfigを読み込む。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. .envの読み込み。ローカル開発用であり、存在しなくてもよい
	if err := godotenv.Load(); err == nil {
		slog.Info("loaded environment from .env file")
	}

	// 3. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("gateway_base_url", cfg.GatewayBaseURL),
	)

	return runServe(cfg)
}

// runServe はAPIサーバーモードで起動する。
// ゲートウェイクライアントと全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. 外向き通信の防護とゲートウェイベースURLの検証
	egressGuard := security.NewEgressGuard(cfg.GatewayAllowPrivate)
	if err := egressGuard.ValidateBaseURL(cfg.GatewayBaseURL); err != nil {
		return fmt.Errorf("invalid gateway base URL: %w", err)
	}
	httpClient := egressGuard.NewClient(cfg.GatewayTimeout)

	slog.Info("gateway egress guard configured",
		slog.Bool("allow_private", cfg.GatewayAllowPrivate),
	)

	// 2. メトリクスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 3. コアサービスのワイヤリング
	// セッションマネージャーはTokenSourceを兼ねるため、
	// ゲートウェイクライアントと相互参照になる。クライアント側は
	// TokenSourceインターフェース経由で参照するので循環しない。
	validator := validate.New()
	sessionManager := session.NewManager(nil, validator, slog.Default())
	gatewayClient := gateway.NewClient(cfg.GatewayBaseURL, httpClient, sessionManager, collector, slog.Default())
	sessionManager.SetGateway(gatewayClient)

	roomStore := rooms.NewStore(gatewayClient, validator, slog.Default(), collector)
	reservationLedger := reservations.NewLedger(gatewayClient, validator, slog.Default(), collector)

	// 4. レート制限の構成（設定はreq/min単位、rate.Limitはreq/sec単位）
	rateLimiterCfg := middleware.DefaultRateLimiterConfig()
	rateLimiterCfg.GeneralRate = rate.Limit(float64(cfg.RateLimitGeneral) / 60.0)
	rateLimiterCfg.GeneralBurst = cfg.RateLimitGeneral
	rateLimiterCfg.MutationRate = rate.Limit(float64(cfg.RateLimitMutation) / 60.0)
	rateLimiterCfg.MutationBurst = cfg.RateLimitMutation
	rateLimiter := middleware.NewRateLimiter(rateLimiterCfg)
	defer rateLimiter.Stop()

	// 5. ルーターの構築
	router := handler.NewRouter(&handler.RouterDeps{
		Matcher:           sessionManager,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		Logger:            slog.Default(),

		Session:      sessionManager,
		Rooms:        roomStore,
		Reservations: reservationLedger,
		Validator:    validator,

		Gatherer: registry,
	})

	// 6. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /healthz エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/healthz", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}
