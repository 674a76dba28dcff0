// Package reservations は予約台帳を提供する。
// ゲートウェイを唯一の正とするクライアント側キャッシュであり、
// 予約日の降順（最新の予約が先頭）でソートされた一覧と、
// 検索クエリから導出されるフィルタ済みビューを保持する。
package reservations

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hitoshi/innman/internal/gateway"
	"github.com/hitoshi/innman/internal/model"
	"github.com/hitoshi/innman/internal/validate"
)

// LedgerGateway は台帳が必要とするゲートウェイ操作。
// gateway.Gatewayの部分集合として定義する。
type LedgerGateway interface {
	ListReservations(ctx context.Context) ([]model.Reservation, error)
	UpdateReservation(ctx context.Context, id string, payload gateway.ReservationPayload) (*model.Reservation, error)
	DeleteReservation(ctx context.Context, id string) error
}

// MetricsRecorder はキャッシュサイズのメトリクス記録のインターフェース。
type MetricsRecorder interface {
	SetReservationCacheSize(size int)
}

// ReservationInput は予約更新フォームの入力。
// PaymentAmountはユーザー入力の10進数テキスト。
type ReservationInput struct {
	StartDate     time.Time
	EndDate       time.Time
	PaymentAmount string
	PaymentStatus string
	PaymentMethod string
	CustomerEmail string
	RoomNumber    string
}

// Ledger は予約キャッシュとフィルタ済みビューを排他的に所有する。
// ビューはキャッシュまたはアクティブなクエリが変化するたびに
// 同一ロック下で再計算され、削除・更新後の陳腐化を防ぐ。
type Ledger struct {
	gw        LedgerGateway
	validator *validate.Engine
	logger    *slog.Logger
	metrics   MetricsRecorder

	mu    sync.RWMutex
	cache []model.Reservation
	query string
	view  []model.Reservation
}

// NewLedger は空のキャッシュを持つLedgerを生成する。
func NewLedger(gw LedgerGateway, validator *validate.Engine, logger *slog.Logger, metrics MetricsRecorder) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{
		gw:        gw,
		validator: validator,
		logger:    logger,
		metrics:   metrics,
	}
}

// Refresh はゲートウェイから全予約を取得し、予約日の降順に
// ソートしてキャッシュを丸ごと置き換える。
// 失敗時はキャッシュもビューも変更しない。
func (l *Ledger) Refresh(ctx context.Context) ([]model.Reservation, error) {
	reservations, err := l.gw.ListReservations(ctx)
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(reservations, func(a, b model.Reservation) int {
		// 降順: 新しい予約が先頭
		return b.ReservationDate.Compare(a.ReservationDate)
	})

	l.mu.Lock()
	l.cache = reservations
	l.view = filterReservations(l.cache, l.query)
	size := len(l.cache)
	l.mu.Unlock()
	l.recordSize(size)

	l.logger.Info("reservation cache refreshed", slog.Int("count", size))
	return l.Reservations(), nil
}

// Search はアクティブなクエリを更新し、フィルタ済みビューを返す。
// キャッシュ上の純粋・同期なビュー操作であり、ゲートウェイには触れない。
// 空クエリはキャッシュ全体を既存の順序のまま返す。
func (l *Ledger) Search(query string) []model.Reservation {
	l.mu.Lock()
	l.query = query
	l.view = filterReservations(l.cache, query)
	result := slices.Clone(l.view)
	l.mu.Unlock()
	return result
}

// Update は入力を検証してから予約を更新する。
// 成功時はゲートウェイが返した正準レコードでキャッシュの該当エントリを
// 外科的に置き換える。予約日は編集で変化しないため再ソートはしない。
// 失敗時はキャッシュも依存するビューも変更しない。
func (l *Ledger) Update(ctx context.Context, id string, input ReservationInput) (*model.Reservation, error) {
	payload, verr := l.toPayload(input)
	if verr != nil {
		return nil, verr
	}

	updated, err := l.gw.UpdateReservation(ctx, id, *payload)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	for i := range l.cache {
		if l.cache[i].ID == id {
			l.cache[i] = *updated
			break
		}
	}
	l.view = filterReservations(l.cache, l.query)
	l.mu.Unlock()

	return updated, nil
}

// Delete はゲートウェイで削除してからキャッシュとフィルタ済みビューの
// 両方から該当エントリを取り除く。両者は同一ロック下で更新されるため、
// 呼び出し側から見て原子的に反映される。失敗時はどちらも変更しない。
func (l *Ledger) Delete(ctx context.Context, id string) error {
	if err := l.gw.DeleteReservation(ctx, id); err != nil {
		return err
	}

	l.mu.Lock()
	l.cache = slices.DeleteFunc(l.cache, func(r model.Reservation) bool {
		return r.ID == id
	})
	l.view = filterReservations(l.cache, l.query)
	size := len(l.cache)
	l.mu.Unlock()
	l.recordSize(size)

	return nil
}

// Reservations は現在のキャッシュのコピーを返す純粋クエリ。
func (l *Ledger) Reservations() []model.Reservation {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.cache)
}

// View は現在のフィルタ済みビューのコピーを返す純粋クエリ。
func (l *Ledger) View() []model.Reservation {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.view)
}

// toPayload は入力を検証してゲートウェイのペイロードに変換する。
// 支払い金額の不正なテキストはネットワーク呼び出しの前に拒否する。
func (l *Ledger) toPayload(input ReservationInput) (*gateway.ReservationPayload, *model.APIError) {
	if err := l.validator.CheckRequired("paymentAmount", input.PaymentAmount); err != nil {
		return nil, err
	}
	amount, err := strconv.ParseFloat(strings.TrimSpace(input.PaymentAmount), 64)
	if err != nil || amount < 0 {
		return nil, model.NewInvalidNumberError("paymentAmount")
	}

	status := model.PaymentStatus(input.PaymentStatus)
	if !status.Valid() {
		return nil, model.NewInvalidEnumError("paymentStatus", input.PaymentStatus)
	}
	method := model.PaymentMethod(input.PaymentMethod)
	if !method.Valid() {
		return nil, model.NewInvalidEnumError("paymentMethod", input.PaymentMethod)
	}

	if verr := l.validator.CheckRequired("customerEmail", input.CustomerEmail); verr != nil {
		return nil, verr
	}
	if verr := l.validator.CheckEmail(input.CustomerEmail); verr != nil {
		return nil, verr
	}
	if verr := l.validator.CheckRequired("roomNumber", input.RoomNumber); verr != nil {
		return nil, verr
	}

	// 日付範囲の順序は観測されたシステムでは未検証だったが、
	// 正しさのために必須の不変条件として強制する。
	if input.EndDate.Before(input.StartDate) {
		return nil, model.NewInvalidDateRangeError()
	}

	return &gateway.ReservationPayload{
		StartDate:     input.StartDate,
		EndDate:       input.EndDate,
		PaymentAmount: amount,
		PaymentStatus: status,
		PaymentMethod: method,
		CustomerEmail: strings.TrimSpace(input.CustomerEmail),
		RoomNumber:    strings.TrimSpace(input.RoomNumber),
	}, nil
}

func (l *Ledger) recordSize(size int) {
	if l.metrics != nil {
		l.metrics.SetReservationCacheSize(size)
	}
}

// filterReservations は顧客メールまたは客室番号に対する
// 大文字小文字を区別しない部分一致でフィルタする。
// 空クエリは入力をそのまま複製して返す。
func filterReservations(reservations []model.Reservation, query string) []model.Reservation {
	if query == "" {
		return slices.Clone(reservations)
	}
	q := strings.ToLower(query)
	filtered := make([]model.Reservation, 0, len(reservations))
	for _, r := range reservations {
		if strings.Contains(strings.ToLower(r.Customer.Email), q) ||
			strings.Contains(strings.ToLower(r.Room.RoomNumber), q) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}
