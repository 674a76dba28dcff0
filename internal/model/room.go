// Package model はドメインモデルを定義する。
package model

// Room は客室を表す。
// リモート在庫ゲートウェイが唯一の正であり、ローカルには
// そのミラーとしてのみ保持される。
type Room struct {
	ID          string
	RoomNumber  string
	RoomType    string
	MonthlyRent float64
	Available   bool
	PhotoURL    string
}

// RoomSnapshot は予約に埋め込まれる客室の非正規化スナップショット。
// 予約作成時点の値を保持し、客室の後続更新には追従しない。
type RoomSnapshot struct {
	RoomNumber  string
	RoomType    string
	MonthlyRent float64
}
