package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/innman/internal/metrics"
	"github.com/hitoshi/innman/internal/middleware"
	"github.com/hitoshi/innman/internal/validate"
	"github.com/prometheus/client_golang/prometheus"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Matcher           middleware.CredentialMatcher
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger

	// コア
	Session      SessionServiceInterface
	Rooms        RoomStoreInterface
	Reservations LedgerInterface
	Validator    *validate.Engine

	// メトリクス公開。nilの場合は/metricsを公開しない。
	Gatherer prometheus.Gatherer
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Logging → CORS → SessionMiddleware → RateLimit(General)
//
// 認証ルート（/auth/*）とヘルスチェックはセッションゲートの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	}
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	authHandler := NewAuthHandler(deps.Session)
	roomHandler := NewRoomHandler(deps.Rooms)
	reservationHandler := NewReservationHandler(deps.Reservations)
	validateHandler := NewValidateHandler(deps.Validator)

	// --- 認証不要のルート ---

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.SignUp)
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	// 逐次検証は入力中のフォームから呼ばれるため、ログイン前でも利用できる
	r.Post("/api/validate", validateHandler.CheckField)

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → RateLimit(General)、変更系にはMutationを追加
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.Matcher))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		mutation := deps.RateLimiter.MutationMiddleware()

		// 客室在庫
		r.Route("/api/rooms", func(r chi.Router) {
			r.Get("/", roomHandler.ListRooms)
			r.With(mutation).Post("/", roomHandler.CreateRoom)

			r.Route("/{id}", func(r chi.Router) {
				r.With(mutation).Put("/", roomHandler.UpdateRoom)
				r.With(mutation).Delete("/", roomHandler.DeleteRoom)
			})
		})

		// 予約台帳
		r.Route("/api/reservations", func(r chi.Router) {
			r.Get("/", reservationHandler.ListReservations)

			r.Route("/{id}", func(r chi.Router) {
				r.With(mutation).Put("/", reservationHandler.UpdateReservation)
				r.With(mutation).Delete("/", reservationHandler.DeleteReservation)
			})
		})
	})

	return r
}
