// Package model はドメインモデルを定義する。
package model

import "time"

// Credential はログイン時にゲートウェイから発行される不透明な認証トークン。
// セッションマネージャーが排他的に所有し、プロセスの生存期間を超えて
// 永続化されることはない。
type Credential struct {
	Token    string
	IssuedAt time.Time
}
