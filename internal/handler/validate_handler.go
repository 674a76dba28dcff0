package handler

import (
	"encoding/json"
	"net/http"

	"github.com/hitoshi/innman/internal/validate"
)

// ValidateHandler はフォーム入力の逐次検証のHTTPハンドラー。
// シェルがキーストロークごとに呼び出すため、純粋・同期で応答する。
type ValidateHandler struct {
	engine *validate.Engine
}

// NewValidateHandler はValidateHandlerを生成する。
func NewValidateHandler(engine *validate.Engine) *ValidateHandler {
	return &ValidateHandler{engine: engine}
}

// validateRequest は逐次検証リクエストのボディ。
// extraは確認パスワード照合時の元パスワードなど、補助値を渡す。
type validateRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
	Extra string `json:"extra,omitempty"`
}

// validateResponse は逐次検証のレスポンス。
// 検証失敗はリクエスト自体の失敗ではないため200で返し、
// エラー内容は統一フォーマットで埋め込む。
type validateResponse struct {
	Valid bool              `json:"valid"`
	Error *apiErrorResponse `json:"error,omitempty"`
}

// CheckField は単一フィールドの検証を行う。
// POST /api/validate
func (h *ValidateHandler) CheckField(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	if apiErr := h.engine.CheckField(req.Field, req.Value, req.Extra); apiErr != nil {
		writeJSON(w, http.StatusOK, validateResponse{
			Valid: false,
			Error: &apiErrorResponse{
				Code:     apiErr.Code,
				Message:  apiErr.Message,
				Category: apiErr.Category,
				Action:   apiErr.Action,
			},
		})
		return
	}

	writeJSON(w, http.StatusOK, validateResponse{Valid: true})
}
