// Package rooms は客室在庫ストアを提供する。
// ゲートウェイを唯一の正とするクライアント側キャッシュであり、
// 客室番号の昇順（数値比較)でソートされた一覧を常に提示する。
package rooms

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/hitoshi/innman/internal/gateway"
	"github.com/hitoshi/innman/internal/model"
	"github.com/hitoshi/innman/internal/validate"
)

// InventoryGateway はストアが必要とするゲートウェイ操作。
// gateway.Gatewayの部分集合として定義する。
type InventoryGateway interface {
	ListRooms(ctx context.Context) ([]model.Room, error)
	CreateRoom(ctx context.Context, payload gateway.RoomPayload) (*model.Room, error)
	UpdateRoom(ctx context.Context, id string, payload gateway.RoomPayload) (*model.Room, error)
	DeleteRoom(ctx context.Context, id string) error
}

// MetricsRecorder はキャッシュサイズのメトリクス記録のインターフェース。
type MetricsRecorder interface {
	SetRoomCacheSize(size int)
}

// RoomInput は客室の作成・更新フォームの入力。
// MonthlyRentはユーザー入力の10進数テキスト。
type RoomInput struct {
	RoomNumber  string
	RoomType    string
	MonthlyRent string
	Available   bool
	Photo       *gateway.Photo
}

// Store は客室キャッシュを排他的に所有する。
// すべての失敗経路でキャッシュは直前の正常な状態のまま保持される。
type Store struct {
	gw        InventoryGateway
	validator *validate.Engine
	logger    *slog.Logger
	metrics   MetricsRecorder

	mu    sync.RWMutex
	cache []model.Room
}

// NewStore は空のキャッシュを持つStoreを生成する。
func NewStore(gw InventoryGateway, validator *validate.Engine, logger *slog.Logger, metrics MetricsRecorder) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		gw:        gw,
		validator: validator,
		logger:    logger,
		metrics:   metrics,
	}
}

// Refresh はゲートウェイから全客室を取得し、客室番号の昇順に
// ソートしてキャッシュを丸ごと置き換える。
// 失敗時はキャッシュを変更せずエラーを返す（部分的な上書きはしない）。
func (s *Store) Refresh(ctx context.Context) ([]model.Room, error) {
	rooms, err := s.gw.ListRooms(ctx)
	if err != nil {
		return nil, err
	}

	sortRooms(rooms)

	s.mu.Lock()
	s.cache = rooms
	s.mu.Unlock()
	s.recordSize(len(rooms))

	s.logger.Info("room cache refreshed", slog.Int("count", len(rooms)))
	return s.Rooms(), nil
}

// Create は入力を検証してから客室を作成する。
// 成功時はRefreshでキャッシュを再導出する。サーバー採番のIDと
// ソート位置がクライアント側では不明なため、楽観挿入は行わない。
func (s *Store) Create(ctx context.Context, input RoomInput) (*model.Room, error) {
	if err := s.validateInput(input, true); err != nil {
		return nil, err
	}

	created, err := s.gw.CreateRoom(ctx, toPayload(input))
	if err != nil {
		return nil, err
	}

	if _, err := s.Refresh(ctx); err != nil {
		// 作成自体は完了している。キャッシュは直前の状態のまま。
		s.logger.Warn("refresh after create failed", slog.String("error", err.Error()))
		return nil, err
	}

	return created, nil
}

// Update は入力を検証してから客室を更新する。画像は省略可能で、
// 省略時はゲートウェイ側が既存の画像参照を維持する。
// 成功時はRefreshでキャッシュを再導出する。
func (s *Store) Update(ctx context.Context, id string, input RoomInput) (*model.Room, error) {
	if err := s.validateInput(input, false); err != nil {
		return nil, err
	}

	updated, err := s.gw.UpdateRoom(ctx, id, toPayload(input))
	if err != nil {
		return nil, err
	}

	if _, err := s.Refresh(ctx); err != nil {
		s.logger.Warn("refresh after update failed", slog.String("error", err.Error()))
		return nil, err
	}

	return updated, nil
}

// Delete はゲートウェイで削除してからキャッシュの該当エントリを
// 外科的に取り除く。削除は残りの相対順序に影響しないため、
// 全件再取得は不要。失敗時はキャッシュを変更しない。
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.gw.DeleteRoom(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	s.cache = slices.DeleteFunc(s.cache, func(r model.Room) bool {
		return r.ID == id
	})
	size := len(s.cache)
	s.mu.Unlock()
	s.recordSize(size)

	return nil
}

// Rooms は現在のキャッシュのコピーを返す純粋クエリ。
func (s *Store) Rooms() []model.Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.cache)
}

// validateInput はネットワーク呼び出しの前に必須フィールドを検証する。
func (s *Store) validateInput(input RoomInput, requirePhoto bool) *model.APIError {
	if err := s.validator.CheckRequired("roomNumber", input.RoomNumber); err != nil {
		return err
	}
	if err := s.validator.CheckRequired("type", input.RoomType); err != nil {
		return err
	}
	if err := s.validator.CheckRequired("loyer", input.MonthlyRent); err != nil {
		return err
	}
	if err := s.validator.CheckDecimal("loyer", input.MonthlyRent); err != nil {
		return err
	}
	rent, err := strconv.ParseFloat(input.MonthlyRent, 64)
	if err != nil || rent <= 0 {
		return model.NewInvalidNumberError("loyer")
	}
	if requirePhoto && input.Photo == nil {
		return model.NewMissingFieldError("imageRoom")
	}
	return nil
}

// toPayload はフォーム入力をゲートウェイのペイロードに変換する。
func toPayload(input RoomInput) gateway.RoomPayload {
	return gateway.RoomPayload{
		RoomNumber:  strings.TrimSpace(input.RoomNumber),
		Available:   input.Available,
		RoomType:    strings.TrimSpace(input.RoomType),
		MonthlyRent: strings.TrimSpace(input.MonthlyRent),
		Photo:       input.Photo,
	}
}

func (s *Store) recordSize(size int) {
	if s.metrics != nil {
		s.metrics.SetRoomCacheSize(size)
	}
}

// sortRooms は客室番号の昇順でソートする。両者が数値として解釈できる
// 場合は数値比較、そうでない場合は文字列比較にフォールバックする。
func sortRooms(rooms []model.Room) {
	slices.SortStableFunc(rooms, func(a, b model.Room) int {
		return compareRoomNumbers(a.RoomNumber, b.RoomNumber)
	})
}

func compareRoomNumbers(a, b string) int {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	if errA == nil && errB == nil {
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a, b)
}
