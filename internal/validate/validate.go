// Package validate はフォーム入力の検証エンジンを提供する。
// 純粋・同期・副作用なしの述語とメッセージ種別の対で構成され、
// 監視対象フィールドの変更ごとに再評価される。エンティティの状態は
// 一切保持・変更せず、入力の分類のみを行う。
package validate

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/hitoshi/innman/internal/model"
)

// emailShapePattern は観測された挙動に合わせた緩いメールアドレス形式。
// <非空白>@<非空白>.<非空白> のみを要求する。
var emailShapePattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// phonePattern は数字ちょうど10桁の電話番号形式。
var phonePattern = regexp.MustCompile(`^\d{10}$`)

// Engine はフィールド単位の検証とフォーム全体の検証を提供する。
// go-playground/validatorにカスタムルールを登録して使用する。
type Engine struct {
	v *validator.Validate
}

// New はカスタムルールを登録済みのEngineを生成する。
func New() *Engine {
	v := validator.New()

	// emailshape: 観測された緩いメール形式。validator標準のemailタグは
	// RFC準拠で厳しすぎるため使用しない。
	_ = v.RegisterValidation("emailshape", func(fl validator.FieldLevel) bool {
		return emailShapePattern.MatchString(fl.Field().String())
	})

	// phone10: ハイフンなし数字10桁。
	_ = v.RegisterValidation("phone10", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})

	return &Engine{v: v}
}

// --- フィールド単位の逐次検証 ---
// 原則として「未入力のフィールドにはエラーを出さない」。
// 必須性の検証はCheckRequiredおよびフォーム全体検証が担う。

// CheckEmail はメールアドレス形式を検証する。
func (e *Engine) CheckEmail(value string) *model.APIError {
	if value == "" {
		return nil
	}
	if err := e.v.Var(value, "emailshape"); err != nil {
		return model.NewInvalidEmailError()
	}
	return nil
}

// CheckPassword はパスワード強度（6文字以上）を検証する。
func (e *Engine) CheckPassword(value string) *model.APIError {
	if value == "" {
		return nil
	}
	if err := e.v.Var(value, "min=6"); err != nil {
		return model.NewWeakPasswordError()
	}
	return nil
}

// CheckPasswordConfirm は確認用パスワードの一致を検証する。
func (e *Engine) CheckPasswordConfirm(password, confirm string) *model.APIError {
	if confirm == "" {
		return nil
	}
	if confirm != password {
		return model.NewPasswordMismatchError()
	}
	return nil
}

// CheckPhone は電話番号形式（数字10桁）を検証する。
func (e *Engine) CheckPhone(value string) *model.APIError {
	if value == "" {
		return nil
	}
	if err := e.v.Var(value, "phone10"); err != nil {
		return model.NewInvalidPhoneError()
	}
	return nil
}

// CheckRequired は必須フィールドの非空を検証する。
func (e *Engine) CheckRequired(field, value string) *model.APIError {
	if strings.TrimSpace(value) == "" {
		return model.NewMissingFieldError(field)
	}
	return nil
}

// CheckDecimal はユーザー入力の10進数テキストを検証する。
func (e *Engine) CheckDecimal(field, value string) *model.APIError {
	if value == "" {
		return nil
	}
	if _, err := strconv.ParseFloat(value, 64); err != nil {
		return model.NewInvalidNumberError(field)
	}
	return nil
}

// CheckField はフィールド名に応じた逐次検証を1回分実行する。
// extraは確認用パスワード検証時の比較対象パスワードに使用する。
// 未知のフィールド名は必須性のみ検証する。
func (e *Engine) CheckField(field, value, extra string) *model.APIError {
	switch field {
	case "email", "customerEmail":
		return e.CheckEmail(value)
	case "password":
		return e.CheckPassword(value)
	case "confirmPassword":
		return e.CheckPasswordConfirm(extra, value)
	case "telephone", "phone":
		return e.CheckPhone(value)
	case "monthlyRent", "paymentAmount":
		return e.CheckDecimal(field, value)
	default:
		return e.CheckRequired(field, value)
	}
}

// --- フォーム全体の検証 ---

// SignupForm は管理者登録フォームの入力。
type SignupForm struct {
	Name            string `validate:"required"`
	Email           string `validate:"required,emailshape"`
	Password        string `validate:"required,min=6"`
	ConfirmPassword string `validate:"required,eqfield=Password"`
	Telephone       string `validate:"required,phone10"`
}

// LoginForm はログインフォームの入力。
type LoginForm struct {
	Email    string `validate:"required,emailshape"`
	Password string `validate:"required,min=6"`
}

// ValidateSignup は管理者登録フォーム全体を検証する。
// 最初に検出されたエラーを返す。
func (e *Engine) ValidateSignup(form SignupForm) *model.APIError {
	return e.mapStructError(e.v.Struct(form))
}

// ValidateLogin はログインフォーム全体を検証する。
func (e *Engine) ValidateLogin(form LoginForm) *model.APIError {
	return e.mapStructError(e.v.Struct(form))
}

// mapStructError はvalidatorの構造体検証結果を統一エラーに変換する。
func (e *Engine) mapStructError(err error) *model.APIError {
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return model.NewMissingFieldError("form")
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return model.NewMissingFieldError(fieldLabel(fe.Field()))
	case "emailshape":
		return model.NewInvalidEmailError()
	case "min":
		return model.NewWeakPasswordError()
	case "eqfield":
		return model.NewPasswordMismatchError()
	case "phone10":
		return model.NewInvalidPhoneError()
	default:
		return model.NewMissingFieldError(fieldLabel(fe.Field()))
	}
}

// fieldLabel はGoのフィールド名をワイヤ上のフィールド名に変換する。
func fieldLabel(name string) string {
	if name == "" {
		return name
	}
	return strings.ToLower(name[:1]) + name[1:]
}
