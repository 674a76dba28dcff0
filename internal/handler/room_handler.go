package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/innman/internal/gateway"
	"github.com/hitoshi/innman/internal/model"
	"github.com/hitoshi/innman/internal/rooms"
)

// maxRoomFormSize は客室フォーム（画像含む）の最大サイズ。
const maxRoomFormSize = 10 << 20 // 10 MiB

// RoomStoreInterface は客室ハンドラーが必要とするストア操作。
type RoomStoreInterface interface {
	// Refresh はゲートウェイから全客室を取得してキャッシュを置き換える。
	Refresh(ctx context.Context) ([]model.Room, error)
	// Create は客室を作成し、キャッシュを再導出する。
	Create(ctx context.Context, input rooms.RoomInput) (*model.Room, error)
	// Update は客室を更新し、キャッシュを再導出する。
	Update(ctx context.Context, id string, input rooms.RoomInput) (*model.Room, error)
	// Delete は客室を削除し、キャッシュから取り除く。
	Delete(ctx context.Context, id string) error
	// Rooms は現在のキャッシュのコピーを返す。
	Rooms() []model.Room
}

// RoomHandler は客室在庫のHTTPハンドラー。
type RoomHandler struct {
	store RoomStoreInterface
}

// NewRoomHandler はRoomHandlerを生成する。
func NewRoomHandler(store RoomStoreInterface) *RoomHandler {
	return &RoomHandler{store: store}
}

// roomResponse は客室情報のAPIレスポンス。
type roomResponse struct {
	ID          string  `json:"id"`
	RoomNumber  string  `json:"roomNumber"`
	RoomType    string  `json:"roomType"`
	MonthlyRent float64 `json:"monthlyRent"`
	Available   bool    `json:"available"`
	PhotoURL    string  `json:"photoUrl"`
}

// ListRooms は客室一覧を返す。毎回ゲートウェイから再取得し、
// 客室番号の昇順でソートされた一覧を返す。
// GET /api/rooms
func (h *RoomHandler) ListRooms(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.Refresh(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toRoomResponses(list))
}

// CreateRoom は客室作成を処理する。multipart/form-dataを受け取る。
// POST /api/rooms
func (h *RoomHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	input, apiErr := parseRoomForm(r)
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	room, err := h.store.Create(r.Context(), *input)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toRoomResponse(room))
}

// UpdateRoom は客室更新を処理する。画像は省略可能。
// PUT /api/rooms/:id
func (h *RoomHandler) UpdateRoom(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	input, apiErr := parseRoomForm(r)
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	room, err := h.store.Update(r.Context(), id, *input)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toRoomResponse(room))
}

// DeleteRoom は客室削除を処理する。
// DELETE /api/rooms/:id
func (h *RoomHandler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.store.Delete(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parseRoomForm はmultipartフォームから客室入力を組み立てる。
// 必須フィールドの検証はストア側で行うため、ここでは形式エラーのみ扱う。
func parseRoomForm(r *http.Request) (*rooms.RoomInput, *model.APIError) {
	if err := r.ParseMultipartForm(maxRoomFormSize); err != nil {
		return nil, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "リクエストボディの解析に失敗しました。",
			Category: "validation",
			Action:   "multipart/form-data形式でリクエストしてください。",
		}
	}

	input := &rooms.RoomInput{
		RoomNumber:  r.FormValue("roomNumber"),
		RoomType:    r.FormValue("type"),
		MonthlyRent: r.FormValue("loyer"),
		Available:   r.FormValue("disponibility") == "true",
	}

	file, header, err := r.FormFile("imageRoom")
	if err == nil {
		defer file.Close()
		data, readErr := io.ReadAll(file)
		if readErr != nil {
			return nil, &model.APIError{
				Code:     "INVALID_REQUEST",
				Message:  "画像の読み込みに失敗しました。",
				Category: "validation",
				Action:   "画像を選択し直してください。",
			}
		}
		input.Photo = &gateway.Photo{
			FileName:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		}
	}

	return input, nil
}

// --- ヘルパー関数 ---

// toRoomResponse はmodel.RoomからAPIレスポンスに変換する。
func toRoomResponse(room *model.Room) roomResponse {
	return roomResponse{
		ID:          room.ID,
		RoomNumber:  room.RoomNumber,
		RoomType:    room.RoomType,
		MonthlyRent: room.MonthlyRent,
		Available:   room.Available,
		PhotoURL:    room.PhotoURL,
	}
}

func toRoomResponses(list []model.Room) []roomResponse {
	out := make([]roomResponse, len(list))
	for i := range list {
		out[i] = toRoomResponse(&list[i])
	}
	return out
}
