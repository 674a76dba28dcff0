// Package model はドメインモデルを定義する。
package model

import "time"

// PaymentStatus は予約の支払い状態を表す。
type PaymentStatus string

const (
	// PaymentStatusPaid は支払い済み。
	PaymentStatusPaid PaymentStatus = "paid"
	// PaymentStatusUnpaid は未払い。
	PaymentStatusUnpaid PaymentStatus = "unpaid"
)

// Valid は既知の支払い状態かどうかを返す。
func (s PaymentStatus) Valid() bool {
	return s == PaymentStatusPaid || s == PaymentStatusUnpaid
}

// PaymentMethod は予約の支払い方法を表す。
type PaymentMethod string

const (
	// PaymentMethodCreditCard はクレジットカード払い。
	PaymentMethodCreditCard PaymentMethod = "credit_card"
	// PaymentMethodPayPal はPayPal払い。
	PaymentMethodPayPal PaymentMethod = "paypal"
	// PaymentMethodBankTransfer は銀行振込。
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
)

// Valid は既知の支払い方法かどうかを返す。
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCreditCard, PaymentMethodPayPal, PaymentMethodBankTransfer:
		return true
	}
	return false
}

// Reservation は宿泊予約を表す。
// 顧客と客室は予約時点のスナップショットとして埋め込まれる。
type Reservation struct {
	ID              string
	Customer        Customer
	Room            RoomSnapshot
	StartDate       time.Time
	EndDate         time.Time
	PaymentAmount   float64
	PaymentStatus   PaymentStatus
	PaymentMethod   PaymentMethod
	ReservationDate time.Time
}
