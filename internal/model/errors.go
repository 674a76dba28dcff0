// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, gateway, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeMissingField        = "MISSING_FIELD"
	ErrCodeInvalidEmail        = "INVALID_EMAIL"
	ErrCodeWeakPassword        = "WEAK_PASSWORD"
	ErrCodePasswordMismatch    = "PASSWORD_MISMATCH"
	ErrCodeInvalidPhone        = "INVALID_PHONE"
	ErrCodeInvalidNumber       = "INVALID_NUMBER"
	ErrCodeInvalidDateRange    = "INVALID_DATE_RANGE"
	ErrCodeInvalidEnum         = "INVALID_ENUM"
	ErrCodeGatewayUnavailable  = "GATEWAY_UNAVAILABLE"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeRoomNotFound        = "ROOM_NOT_FOUND"
	ErrCodeReservationNotFound = "RESERVATION_NOT_FOUND"
)

// NewMissingFieldError は必須フィールド未入力エラーを生成する。
func NewMissingFieldError(field string) *APIError {
	return &APIError{
		Code:     ErrCodeMissingField,
		Message:  fmt.Sprintf("必須フィールドが入力されていません: %s", field),
		Category: "validation",
		Action:   "すべての必須フィールドを入力してください。",
	}
}

// NewInvalidEmailError はメールアドレス形式エラーを生成する。
func NewInvalidEmailError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidEmail,
		Message:  "メールアドレスの形式が正しくありません。",
		Category: "validation",
		Action:   "name@example.com の形式で入力してください。",
	}
}

// NewWeakPasswordError はパスワード強度エラーを生成する。
func NewWeakPasswordError() *APIError {
	return &APIError{
		Code:     ErrCodeWeakPassword,
		Message:  "パスワードは6文字以上で入力してください。",
		Category: "validation",
		Action:   "6文字以上のパスワードを設定してください。",
	}
}

// NewPasswordMismatchError はパスワード不一致エラーを生成する。
func NewPasswordMismatchError() *APIError {
	return &APIError{
		Code:     ErrCodePasswordMismatch,
		Message:  "パスワードが一致しません。",
		Category: "validation",
		Action:   "確認用パスワードに同じ値を入力してください。",
	}
}

// NewInvalidPhoneError は電話番号形式エラーを生成する。
func NewInvalidPhoneError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidPhone,
		Message:  "電話番号は数字10桁で入力してください。",
		Category: "validation",
		Action:   "ハイフンを除いた10桁の数字を入力してください。",
	}
}

// NewInvalidNumberError は数値フィールドの形式エラーを生成する。
func NewInvalidNumberError(field string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidNumber,
		Message:  fmt.Sprintf("数値として解釈できません: %s", field),
		Category: "validation",
		Action:   "半角数字で金額を入力してください。",
	}
}

// NewInvalidDateRangeError は日付範囲エラーを生成する。
func NewInvalidDateRangeError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidDateRange,
		Message:  "チェックイン日はチェックアウト日以前である必要があります。",
		Category: "validation",
		Action:   "日付の前後関係を確認してください。",
	}
}

// NewInvalidEnumError は列挙値エラーを生成する。
func NewInvalidEnumError(field, value string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidEnum,
		Message:  fmt.Sprintf("許可されていない値です: %s = %q", field, value),
		Category: "validation",
		Action:   "選択肢の中から値を選んでください。",
	}
}

// NewGatewayUnavailableError はゲートウェイ到達不能エラーを生成する。
// ローカルキャッシュは直前の正常な状態のまま保持されるため、再試行で回復できる。
func NewGatewayUnavailableError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeGatewayUnavailable,
		Message:  fmt.Sprintf("在庫ゲートウェイとの通信に失敗しました: %s", reason),
		Category: "gateway",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewUnauthorizedError は認証失敗エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "認証情報を確認して再度ログインしてください。",
	}
}

// NewRoomNotFoundError は客室未検出エラーを生成する。
func NewRoomNotFoundError(roomID string) *APIError {
	return &APIError{
		Code:     ErrCodeRoomNotFound,
		Message:  fmt.Sprintf("指定された客室が見つかりません: %s", roomID),
		Category: "gateway",
		Action:   "一覧を再読み込みしてから操作してください。",
	}
}

// NewReservationNotFoundError は予約未検出エラーを生成する。
func NewReservationNotFoundError(reservationID string) *APIError {
	return &APIError{
		Code:     ErrCodeReservationNotFound,
		Message:  fmt.Sprintf("指定された予約が見つかりません: %s", reservationID),
		Category: "gateway",
		Action:   "一覧を再読み込みしてから操作してください。",
	}
}
