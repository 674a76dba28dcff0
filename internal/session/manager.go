// Package session は認証状態とクレデンシャルのライフサイクルを管理する。
// 状態はAnonymous（初期）とAuthenticatedの2つのみで、
// Anonymous -> Authenticated はログイン成功時、
// Authenticated -> Anonymous はログアウト時にのみ遷移する。
// 暗黙のグローバル状態は持たず、必要とするコンポーネントへ
// 明示的に渡される1つのオブジェクトとして実装する。
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hitoshi/innman/internal/gateway"
	"github.com/hitoshi/innman/internal/model"
	"github.com/hitoshi/innman/internal/validate"
)

// AuthGateway はセッションマネージャーが必要とするゲートウェイ操作。
// gateway.Gatewayの部分集合として定義する。
type AuthGateway interface {
	Login(ctx context.Context, email, password string) (string, error)
	CreateAdmin(ctx context.Context, payload gateway.AdminPayload) error
}

// Manager は認証状態とクレデンシャルを保持する。
// Goの並行HTTPサーバー下で安全に共有できるようミューテックスで保護する。
// gateway.TokenSourceを実装し、発行済みトークンを後続の
// ゲートウェイ呼び出しに添付させる。
type Manager struct {
	gw        AuthGateway
	validator *validate.Engine
	logger    *slog.Logger
	now       func() time.Time

	mu            sync.RWMutex
	authenticated bool
	credential    *model.Credential
}

// NewManager はAnonymous状態のManagerを生成する。
func NewManager(gw AuthGateway, validator *validate.Engine, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		gw:        gw,
		validator: validator,
		logger:    logger,
		now:       time.Now,
	}
}

// SetGateway は認証ゲートウェイを注入する。
// ゲートウェイクライアントはTokenSourceとしてManagerを参照するため、
// 起動時のワイヤリングではManagerを先に生成し、後からゲートウェイを注入する。
func (m *Manager) SetGateway(gw AuthGateway) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gw = gw
}

// Login は認証交換の全体を実行する。
// 入力検証 -> ゲートウェイ認証 -> クレデンシャル保存と状態遷移。
// 失敗時はどの経路でも状態はAnonymousのまま変化しない。
func (m *Manager) Login(ctx context.Context, email, password string) error {
	if err := m.validator.ValidateLogin(validate.LoginForm{Email: email, Password: password}); err != nil {
		return err
	}

	token, err := m.gw.Login(ctx, email, password)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.authenticated = true
	m.credential = &model.Credential{Token: token, IssuedAt: m.now()}
	m.mu.Unlock()

	m.logger.Info("administrator logged in")
	return nil
}

// SignUp は管理者アカウントを登録する。セッション状態は変更しない。
// 登録後のログインは別途Loginで行う。
func (m *Manager) SignUp(ctx context.Context, name, email, password, confirmPassword, telephone string) error {
	form := validate.SignupForm{
		Name:            name,
		Email:           email,
		Password:        password,
		ConfirmPassword: confirmPassword,
		Telephone:       telephone,
	}
	if err := m.validator.ValidateSignup(form); err != nil {
		return err
	}

	if err := m.gw.CreateAdmin(ctx, gateway.AdminPayload{
		Name:      name,
		Email:     email,
		Password:  password,
		Telephone: telephone,
	}); err != nil {
		return err
	}

	m.logger.Info("administrator account created")
	return nil
}

// Logout は認証フラグを下ろし、クレデンシャルを破棄する。冪等。
func (m *Manager) Logout() {
	m.mu.Lock()
	wasAuthenticated := m.authenticated
	m.authenticated = false
	m.credential = nil
	m.mu.Unlock()

	if wasAuthenticated {
		m.logger.Info("administrator logged out")
	}
}

// IsAuthenticated は現在の認証状態を返す純粋クエリ。
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.authenticated
}

// Credential は発行済みクレデンシャルのコピーを返す。未認証時はnil。
func (m *Manager) Credential() *model.Credential {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.credential == nil {
		return nil
	}
	c := *m.credential
	return &c
}

// Token はgateway.TokenSourceを実装する。未認証時は空文字列。
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.credential == nil {
		return ""
	}
	return m.credential.Token
}

// Matches は提示されたトークンが発行済みクレデンシャルと一致するかを返す。
// セッションゲートのミドルウェアが使用する。
func (m *Manager) Matches(token string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.authenticated && m.credential != nil && token != "" && m.credential.Token == token
}
