package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strictPolicy はすべてのマークアップを除去するポリシー。
// パッケージ初期化時に1回だけ構築する。
var strictPolicy = bluemonday.StrictPolicy()

// StripMarkup はゲートウェイから受信した自由記述テキストから
// マークアップを除去する。客室タイプや顧客名はゲートウェイ側で
// 検証されている保証がないため、キャッシュに入れる前に通す。
func StripMarkup(s string) string {
	return strings.TrimSpace(strictPolicy.Sanitize(s))
}
