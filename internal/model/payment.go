package model

import "time"

// Payment methods.
const (
	PaymentCash         = "CASH"
	PaymentBankTransfer = "BANK_TRANSFER"
)

// DefaultCurrency is used when a payment does not name one.
const DefaultCurrency = "RSD"

// Payment is a monthly membership fee paid for a member.
type Payment struct {
	ID            uint64    `json:"id"`
	MemberID      uint64    `json:"member_id"`
	MemberName    string    `json:"member_name"`
	Amount        float64   `json:"amount"`
	Currency      string    `json:"currency"`
	PaymentDate   Date      `json:"payment_date"`
	PaymentMethod string    `json:"payment_method"`
	Month         int       `json:"month"`
	Year          int       `json:"year"`
	Notes         *string   `json:"notes"`
	CreatedAt     time.Time `json:"created_at"`
}

// MonthlyRevenue is one row of a yearly summary.
type MonthlyRevenue struct {
	Month        int     `json:"month"`
	TotalRevenue float64 `json:"total_revenue"`
	PaymentCount int     `json:"payment_count"`
}

// Debtor is an active member with no payment for a given month.
type Debtor struct {
	ID          uint64  `json:"id"`
	FullName    string  `json:"full_name"`
	ParentName  *string `json:"parent_name"`
	ParentPhone *string `json:"parent_phone"`
}

// PaymentStatus tells a parent whether the current month is settled.
type PaymentStatus struct {
	IsPaid    bool   `json:"is_paid"`
	MonthName string `json:"month_name"`
}
