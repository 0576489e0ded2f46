package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/walletauth/internal/metrics"
	"github.com/hitoshi/walletauth/internal/middleware"
)

// HealthChecker はヘルスチェックが依存するDB接続のインターフェース。
// *sql.DBがそのまま満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// SessionPinger はセッションストアの到達性確認インターフェース。
type SessionPinger interface {
	Ping(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	Logger            *slog.Logger
	CORSAllowedOrigin string

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// ヘルスチェック（nilの場合は該当ストアの確認をスキップ）
	DB           HealthChecker
	SessionStore SessionPinger

	// メトリクス（nilの場合は計測と/metricsを無効化）
	Metrics  *metrics.Collector
	Gatherer prometheus.Gatherer
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → Metrics
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	}
	if deps.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	}

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)

	r.Get("/health", NewHealthHandler(deps.DB, deps.SessionStore))

	r.Route("/auth", func(r chi.Router) {
		r.Get("/google/login", authHandler.Login)
		r.Get("/google/callback", authHandler.Callback)
		r.Get("/verify", authHandler.Verify)
		r.Get("/session/restore", authHandler.RestoreSession)
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	return r
}

// NewHealthHandler はサービス状態と依存ストアの到達性を返すハンドラーを生成する。
// いずれかのストアに到達できない場合は503を返す。
func NewHealthHandler(db HealthChecker, store SessionPinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if db != nil {
			if err := db.PingContext(ctx); err != nil {
				slog.Error("health check: database unreachable", slog.String("error", err.Error()))
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status":  "unavailable",
					"service": "walletauth",
				})
				return
			}
		}

		if store != nil {
			if err := store.Ping(ctx); err != nil {
				slog.Error("health check: session store unreachable", slog.String("error", err.Error()))
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status":  "unavailable",
					"service": "walletauth",
				})
				return
			}
		}

		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "walletauth",
		})
	}
}
