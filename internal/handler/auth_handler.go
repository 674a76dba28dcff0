package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/hitoshi/innman/internal/model"
)

// SessionServiceInterface は認証ハンドラーが必要とするセッション操作。
type SessionServiceInterface interface {
	// Login は認証情報を検証してログインする。
	Login(ctx context.Context, email, password string) error
	// SignUp は管理者アカウントを登録する。セッション状態は変更しない。
	SignUp(ctx context.Context, name, email, password, confirmPassword, telephone string) error
	// Logout はセッションを破棄する。冪等。
	Logout()
	// IsAuthenticated は認証済みかどうかを返す。
	IsAuthenticated() bool
	// Credential は現在のクレデンシャルのコピーを返す。未認証時はnil。
	Credential() *model.Credential
}

// AuthHandler は認証関連のHTTPハンドラー。
type AuthHandler struct {
	session SessionServiceInterface
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(session SessionServiceInterface) *AuthHandler {
	return &AuthHandler{session: session}
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// signupRequest は管理者登録リクエストのボディ。
type signupRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Telephone       string `json:"telephone"`
}

// credentialResponse はログイン成功時のレスポンス。
type credentialResponse struct {
	Token    string    `json:"token"`
	IssuedAt time.Time `json:"issuedAt"`
}

// sessionStateResponse は現在のセッション状態のレスポンス。
type sessionStateResponse struct {
	Authenticated bool       `json:"authenticated"`
	IssuedAt      *time.Time `json:"issuedAt,omitempty"`
}

// Login はログインを処理する。
// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	if err := h.session.Login(r.Context(), req.Email, req.Password); err != nil {
		handleServiceError(w, err)
		return
	}

	cred := h.session.Credential()
	writeJSON(w, http.StatusOK, credentialResponse{
		Token:    cred.Token,
		IssuedAt: cred.IssuedAt,
	})
}

// SignUp は管理者登録を処理する。登録してもログイン状態にはならない。
// POST /auth/signup
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	err := h.session.SignUp(r.Context(), req.Name, req.Email, req.Password, req.ConfirmPassword, req.Telephone)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"status": "created"})
}

// Logout はログアウトを処理する。未認証でも204を返す（冪等）。
// POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.session.Logout()
	w.WriteHeader(http.StatusNoContent)
}

// Me は現在のセッション状態を返す。
// GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	resp := sessionStateResponse{Authenticated: h.session.IsAuthenticated()}
	if cred := h.session.Credential(); cred != nil {
		issued := cred.IssuedAt
		resp.IssuedAt = &issued
	}
	writeJSON(w, http.StatusOK, resp)
}
