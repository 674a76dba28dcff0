package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/innman/internal/model"
	"github.com/hitoshi/innman/internal/reservations"
)

// LedgerInterface は予約ハンドラーが必要とする台帳操作。
type LedgerInterface interface {
	// Refresh はゲートウェイから全予約を取得してキャッシュを置き換える。
	Refresh(ctx context.Context) ([]model.Reservation, error)
	// Search はアクティブなクエリを更新し、フィルタ済みビューを返す。
	Search(query string) []model.Reservation
	// Update は予約を更新し、キャッシュの該当エントリを置き換える。
	Update(ctx context.Context, id string, input reservations.ReservationInput) (*model.Reservation, error)
	// Delete は予約を削除し、キャッシュとビューから取り除く。
	Delete(ctx context.Context, id string) error
}

// ReservationHandler は予約台帳のHTTPハンドラー。
type ReservationHandler struct {
	ledger LedgerInterface
}

// NewReservationHandler はReservationHandlerを生成する。
func NewReservationHandler(ledger LedgerInterface) *ReservationHandler {
	return &ReservationHandler{ledger: ledger}
}

// updateReservationRequest は予約更新リクエストのボディ。
// PaymentAmountはフォーム入力のまま10進数テキストで受け取る。
type updateReservationRequest struct {
	StartDate     time.Time `json:"startDate"`
	EndDate       time.Time `json:"endDate"`
	PaymentAmount string    `json:"paymentAmount"`
	PaymentStatus string    `json:"paymentStatus"`
	PaymentMethod string    `json:"paymentMethod"`
	CustomerEmail string    `json:"customerEmail"`
	RoomNumber    string    `json:"roomNumber"`
}

// customerResponse は予約に埋め込まれる顧客スナップショット。
type customerResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Telephone string `json:"telephone"`
}

// roomSnapshotResponse は予約に埋め込まれる客室スナップショット。
type roomSnapshotResponse struct {
	RoomNumber  string  `json:"roomNumber"`
	RoomType    string  `json:"roomType"`
	MonthlyRent float64 `json:"monthlyRent"`
}

// reservationResponse は予約情報のAPIレスポンス。
type reservationResponse struct {
	ID              string               `json:"id"`
	Customer        customerResponse     `json:"customer"`
	Room            roomSnapshotResponse `json:"room"`
	StartDate       time.Time            `json:"startDate"`
	EndDate         time.Time            `json:"endDate"`
	PaymentAmount   float64              `json:"paymentAmount"`
	PaymentStatus   string               `json:"paymentStatus"`
	PaymentMethod   string               `json:"paymentMethod"`
	ReservationDate time.Time            `json:"reservationDate"`
}

// ListReservations は予約一覧を返す。
// クエリなしの場合はゲートウェイから再取得し、予約日の降順で返す。
// クエリ付きの場合はキャッシュ上の純粋なフィルタ操作のみを行い、
// ゲートウェイには触れない（キーストロークごとの検索を想定）。
// GET /api/reservations?q=...
func (h *ReservationHandler) ListReservations(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	if query == "" {
		if _, err := h.ledger.Refresh(r.Context()); err != nil {
			handleServiceError(w, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, toReservationResponses(h.ledger.Search(query)))
}

// UpdateReservation は予約更新を処理する。
// PUT /api/reservations/:id
func (h *ReservationHandler) UpdateReservation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	updated, err := h.ledger.Update(r.Context(), id, reservations.ReservationInput{
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		PaymentAmount: req.PaymentAmount,
		PaymentStatus: req.PaymentStatus,
		PaymentMethod: req.PaymentMethod,
		CustomerEmail: req.CustomerEmail,
		RoomNumber:    req.RoomNumber,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toReservationResponse(updated))
}

// DeleteReservation は予約削除を処理する。
// DELETE /api/reservations/:id
func (h *ReservationHandler) DeleteReservation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.ledger.Delete(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- ヘルパー関数 ---

// toReservationResponse はmodel.ReservationからAPIレスポンスに変換する。
func toReservationResponse(res *model.Reservation) reservationResponse {
	return reservationResponse{
		ID: res.ID,
		Customer: customerResponse{
			ID:        res.Customer.ID,
			Name:      res.Customer.Name,
			Email:     res.Customer.Email,
			Telephone: res.Customer.Telephone,
		},
		Room: roomSnapshotResponse{
			RoomNumber:  res.Room.RoomNumber,
			RoomType:    res.Room.RoomType,
			MonthlyRent: res.Room.MonthlyRent,
		},
		StartDate:       res.StartDate,
		EndDate:         res.EndDate,
		PaymentAmount:   res.PaymentAmount,
		PaymentStatus:   string(res.PaymentStatus),
		PaymentMethod:   string(res.PaymentMethod),
		ReservationDate: res.ReservationDate,
	}
}

func toReservationResponses(list []model.Reservation) []reservationResponse {
	out := make([]reservationResponse, len(list))
	for i := range list {
		out[i] = toReservationResponse(&list[i])
	}
	return out
}
