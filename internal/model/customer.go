// Package model はドメインモデルを定義する。
package model

// Customer は予約に紐づく顧客を表す。
// このシステムからは読み取り専用であり、作成・更新の経路を持たない。
type Customer struct {
	ID        string
	Name      string
	Email     string
	Telephone string
}
