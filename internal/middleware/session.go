// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// tokenContextKey はリクエストコンテキストにセッショントークンを格納するためのキー。
var tokenContextKey = contextKey("session_token")

// CredentialMatcher はセッショントークンの照合に必要なインターフェース。
// session.Managerの部分集合として定義する。
type CredentialMatcher interface {
	Matches(token string) bool
}

// NewSessionMiddleware はAuthorizationヘッダーのBearerトークンを
// アクティブなセッションと照合するミドルウェアを返す。
// 照合に成功したトークンをリクエストコンテキストに注入する。
// 未認証リクエストには401 Unauthorizedを返す。
func NewSessionMiddleware(matcher CredentialMatcher) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. AuthorizationヘッダーからBearerトークンを取得
			token := bearerToken(r)
			if token == "" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			// 2. アクティブなセッションと照合
			if !matcher.Matches(token) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			// 3. 照合済みトークンをコンテキストに注入
			ctx := context.WithValue(r.Context(), tokenContextKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken はAuthorizationヘッダーからBearerトークンを取り出す。
// 形式が異なる場合は空文字を返す。
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return ""
	}
	return strings.TrimSpace(auth[len(prefix):])
}

// TokenFromContext はリクエストコンテキストからセッショントークンを取得する。
// セッションミドルウェアを通過したリクエストでのみ有効。
func TokenFromContext(ctx context.Context) (string, error) {
	token, ok := ctx.Value(tokenContextKey).(string)
	if !ok || token == "" {
		return "", fmt.Errorf("session token not found in context")
	}
	return token, nil
}

// ContextWithToken はコンテキストにセッショントークンを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenContextKey, token)
}
