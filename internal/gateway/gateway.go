// Package gateway はリモート在庫ゲートウェイとの通信を提供する。
// ゲートウェイは客室・予約・認証の唯一の正であり、このパッケージは
// そのRESTコントラクトをGoのインターフェースとして表現する。
package gateway

import (
	"context"
	"time"

	"github.com/hitoshi/innman/internal/model"
)

// Photo はアップロードする客室画像のバイナリアセット。
type Photo struct {
	FileName    string
	ContentType string
	Data        []byte
}

// RoomPayload は客室の作成・更新でゲートウェイに送信するフィールド。
// MonthlyRentはユーザー入力の10進数テキストをそのままワイヤに流す。
// Photoは更新時のみnil可（既存画像を維持する）。
type RoomPayload struct {
	RoomNumber  string
	Available   bool
	RoomType    string
	MonthlyRent string
	Photo       *Photo
}

// ReservationPayload は予約更新でゲートウェイに送信するフィールド。
type ReservationPayload struct {
	StartDate     time.Time
	EndDate       time.Time
	PaymentAmount float64
	PaymentStatus model.PaymentStatus
	PaymentMethod model.PaymentMethod
	CustomerEmail string
	RoomNumber    string
}

// AdminPayload は管理者登録でゲートウェイに送信するフィールド。
type AdminPayload struct {
	Name      string
	Email     string
	Password  string
	Telephone string
}

// Gateway はリモート在庫ゲートウェイのRESTコントラクト。
// 失敗はすべて統一エラー（model.APIError）にマップされる:
// トランスポート/パース失敗と非2xxはGATEWAY_UNAVAILABLE、
// ログイン時の401のみUNAUTHORIZED。
type Gateway interface {
	// ListRooms は全客室を取得する。順序は保証されない。
	ListRooms(ctx context.Context) ([]model.Room, error)
	// CreateRoom は客室をマルチパートで作成し、正準レコードを返す。
	CreateRoom(ctx context.Context, payload RoomPayload) (*model.Room, error)
	// UpdateRoom は客室をマルチパートで更新し、正準レコードを返す。
	UpdateRoom(ctx context.Context, id string, payload RoomPayload) (*model.Room, error)
	// DeleteRoom は客室を削除する。
	DeleteRoom(ctx context.Context, id string) error

	// ListReservations は全予約を取得する。順序は保証されない。
	ListReservations(ctx context.Context) ([]model.Reservation, error)
	// UpdateReservation は予約をJSONで更新し、正準レコードを返す。
	UpdateReservation(ctx context.Context, id string, payload ReservationPayload) (*model.Reservation, error)
	// DeleteReservation は予約を削除する。
	DeleteReservation(ctx context.Context, id string) error

	// Login は認証を行い、不透明なトークンを返す。
	Login(ctx context.Context, email, password string) (string, error)
	// CreateAdmin は管理者アカウントを登録する。
	CreateAdmin(ctx context.Context, payload AdminPayload) error
}

// TokenSource はゲートウェイ呼び出しに添付する認証トークンの供給元。
// セッションマネージャーが実装する。未認証時は空文字列を返す。
type TokenSource interface {
	Token() string
}

// MetricsRecorder はゲートウェイ呼び出しのメトリクス記録のインターフェース。
type MetricsRecorder interface {
	RecordGatewayCall(operation string, statusCode int, duration time.Duration)
	RecordGatewayFailure(operation string)
}
