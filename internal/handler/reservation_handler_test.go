package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/innman/internal/model"
	"github.com/hitoshi/innman/internal/reservations"
)

// --- モック ---

type mockLedger struct {
	refreshFn func(ctx context.Context) ([]model.Reservation, error)
	searchFn  func(query string) []model.Reservation
	updateFn  func(ctx context.Context, id string, input reservations.ReservationInput) (*model.Reservation, error)
	deleteFn  func(ctx context.Context, id string) error
}

func (m *mockLedger) Refresh(ctx context.Context) ([]model.Reservation, error) {
	if m.refreshFn != nil {
		return m.refreshFn(ctx)
	}
	return nil, nil
}

func (m *mockLedger) Search(query string) []model.Reservation {
	if m.searchFn != nil {
		return m.searchFn(query)
	}
	return nil
}

func (m *mockLedger) Update(ctx context.Context, id string, input reservations.ReservationInput) (*model.Reservation, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, input)
	}
	return &model.Reservation{}, nil
}

func (m *mockLedger) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func sampleReservation(id, email, roomNumber string) model.Reservation {
	return model.Reservation{
		ID: id,
		Customer: model.Customer{
			ID:        "c-" + id,
			Name:      "Alice Martin",
			Email:     email,
			Telephone: "0123456789",
		},
		Room: model.RoomSnapshot{
			RoomNumber:  roomNumber,
			RoomType:    "double",
			MonthlyRent: 750,
		},
		StartDate:       time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		EndDate:         time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC),
		PaymentAmount:   480.50,
		PaymentStatus:   model.PaymentStatusPaid,
		PaymentMethod:   model.PaymentMethodCreditCard,
		ReservationDate: time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC),
	}
}

// --- テスト ---

// TestReservationHandler_ListReservations は一覧と検索の動作を検証する。
func TestReservationHandler_ListReservations(t *testing.T) {
	t.Run("クエリなしはリフレッシュしてから全件返す", func(t *testing.T) {
		refreshCalled := false
		ledger := &mockLedger{
			refreshFn: func(ctx context.Context) ([]model.Reservation, error) {
				refreshCalled = true
				return nil, nil
			},
			searchFn: func(query string) []model.Reservation {
				if query != "" {
					t.Errorf("query = %q, want empty", query)
				}
				return []model.Reservation{
					sampleReservation("res1", "alice@example.com", "101"),
					sampleReservation("res2", "bob@example.com", "102"),
				}
			},
		}
		h := NewReservationHandler(ledger)

		req := httptest.NewRequest(http.MethodGet, "/api/reservations", nil)
		w := httptest.NewRecorder()

		h.ListReservations(w, req)

		resp := w.Result()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}
		if !refreshCalled {
			t.Error("Refresh was not called")
		}

		var body []reservationResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode: %v", err)
		}
		if len(body) != 2 {
			t.Fatalf("len = %d, want 2", len(body))
		}
		if body[0].Customer.Email != "alice@example.com" {
			t.Errorf("email = %q", body[0].Customer.Email)
		}
		if body[0].Room.RoomNumber != "101" {
			t.Errorf("roomNumber = %q", body[0].Room.RoomNumber)
		}
	})

	t.Run("クエリ付きはキャッシュ検索のみでゲートウェイに触れない", func(t *testing.T) {
		ledger := &mockLedger{
			refreshFn: func(ctx context.Context) ([]model.Reservation, error) {
				t.Error("Refresh should not be called for filtered queries")
				return nil, nil
			},
			searchFn: func(query string) []model.Reservation {
				if query != "alice" {
					t.Errorf("query = %q, want alice", query)
				}
				return []model.Reservation{sampleReservation("res1", "alice@example.com", "101")}
			},
		}
		h := NewReservationHandler(ledger)

		req := httptest.NewRequest(http.MethodGet, "/api/reservations?q=alice", nil)
		w := httptest.NewRecorder()

		h.ListReservations(w, req)

		resp := w.Result()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}

		var body []reservationResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode: %v", err)
		}
		if len(body) != 1 || body[0].ID != "res1" {
			t.Errorf("body = %+v", body)
		}
	})

	t.Run("リフレッシュ失敗は502", func(t *testing.T) {
		ledger := &mockLedger{
			refreshFn: func(ctx context.Context) ([]model.Reservation, error) {
				return nil, model.NewGatewayUnavailableError("timeout")
			},
		}
		h := NewReservationHandler(ledger)

		req := httptest.NewRequest(http.MethodGet, "/api/reservations", nil)
		w := httptest.NewRecorder()

		h.ListReservations(w, req)

		if w.Result().StatusCode != http.StatusBadGateway {
			t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusBadGateway)
		}
	})

	t.Run("該当なしは空配列を返す", func(t *testing.T) {
		ledger := &mockLedger{
			searchFn: func(query string) []model.Reservation { return nil },
		}
		h := NewReservationHandler(ledger)

		req := httptest.NewRequest(http.MethodGet, "/api/reservations?q=nobody", nil)
		w := httptest.NewRecorder()

		h.ListReservations(w, req)

		body := strings.TrimSpace(w.Body.String())
		if body != "[]" {
			t.Errorf("body = %q, want []", body)
		}
	})
}

// TestReservationHandler_UpdateReservation は予約更新の入力転送と応答を検証する。
func TestReservationHandler_UpdateReservation(t *testing.T) {
	t.Run("更新成功で200", func(t *testing.T) {
		var gotID string
		var gotInput reservations.ReservationInput
		ledger := &mockLedger{
			updateFn: func(ctx context.Context, id string, input reservations.ReservationInput) (*model.Reservation, error) {
				gotID = id
				gotInput = input
				updated := sampleReservation(id, input.CustomerEmail, input.RoomNumber)
				updated.PaymentAmount = 520
				return &updated, nil
			},
		}
		h := NewReservationHandler(ledger)

		reqBody := `{
			"startDate": "2024-07-01T00:00:00Z",
			"endDate": "2024-07-10T00:00:00Z",
			"paymentAmount": "520",
			"paymentStatus": "paid",
			"paymentMethod": "paypal",
			"customerEmail": "alice@example.com",
			"roomNumber": "101"
		}`
		req := httptest.NewRequest(http.MethodPut, "/api/reservations/res1", strings.NewReader(reqBody))
		req = withURLParam(req, "id", "res1")
		w := httptest.NewRecorder()

		h.UpdateReservation(w, req)

		resp := w.Result()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}
		if gotID != "res1" {
			t.Errorf("id = %q, want res1", gotID)
		}
		if gotInput.PaymentAmount != "520" || gotInput.PaymentMethod != "paypal" {
			t.Errorf("input = %+v", gotInput)
		}

		var body reservationResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode: %v", err)
		}
		if body.PaymentAmount != 520 {
			t.Errorf("paymentAmount = %v, want 520", body.PaymentAmount)
		}
	})

	t.Run("検証エラーは400", func(t *testing.T) {
		ledger := &mockLedger{
			updateFn: func(ctx context.Context, id string, input reservations.ReservationInput) (*model.Reservation, error) {
				return nil, model.NewInvalidDateRangeError()
			},
		}
		h := NewReservationHandler(ledger)

		reqBody := `{
			"startDate": "2024-07-10T00:00:00Z",
			"endDate": "2024-07-01T00:00:00Z",
			"paymentAmount": "520",
			"paymentStatus": "paid",
			"paymentMethod": "paypal",
			"customerEmail": "alice@example.com",
			"roomNumber": "101"
		}`
		req := httptest.NewRequest(http.MethodPut, "/api/reservations/res1", strings.NewReader(reqBody))
		req = withURLParam(req, "id", "res1")
		w := httptest.NewRecorder()

		h.UpdateReservation(w, req)

		resp := w.Result()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
		}
		errBody := decodeErrorBody(t, resp)
		if errBody.Code != model.ErrCodeInvalidDateRange {
			t.Errorf("code = %q, want %q", errBody.Code, model.ErrCodeInvalidDateRange)
		}
	})

	t.Run("不正なJSONは400", func(t *testing.T) {
		h := NewReservationHandler(&mockLedger{})

		req := httptest.NewRequest(http.MethodPut, "/api/reservations/res1", strings.NewReader("{broken"))
		req = withURLParam(req, "id", "res1")
		w := httptest.NewRecorder()

		h.UpdateReservation(w, req)

		if w.Result().StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusBadRequest)
		}
	})
}

// TestReservationHandler_DeleteReservation は予約削除の応答を検証する。
func TestReservationHandler_DeleteReservation(t *testing.T) {
	t.Run("削除成功で204", func(t *testing.T) {
		var gotID string
		ledger := &mockLedger{
			deleteFn: func(ctx context.Context, id string) error {
				gotID = id
				return nil
			},
		}
		h := NewReservationHandler(ledger)

		req := httptest.NewRequest(http.MethodDelete, "/api/reservations/res2", nil)
		req = withURLParam(req, "id", "res2")
		w := httptest.NewRecorder()

		h.DeleteReservation(w, req)

		if w.Result().StatusCode != http.StatusNoContent {
			t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusNoContent)
		}
		if gotID != "res2" {
			t.Errorf("id = %q, want res2", gotID)
		}
	})

	t.Run("存在しない予約は404", func(t *testing.T) {
		ledger := &mockLedger{
			deleteFn: func(ctx context.Context, id string) error {
				return model.NewReservationNotFoundError("missing")
			},
		}
		h := NewReservationHandler(ledger)

		req := httptest.NewRequest(http.MethodDelete, "/api/reservations/missing", nil)
		req = withURLParam(req, "id", "missing")
		w := httptest.NewRecorder()

		h.DeleteReservation(w, req)

		if w.Result().StatusCode != http.StatusNotFound {
			t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusNotFound)
		}
	})
}
