package models

import (
	"time"
)

type TransactionCategory string

const (
	CategoryFood          TransactionCategory = "Food"
	CategoryTransport     TransactionCategory = "Transport"
	CategoryShopping      TransactionCategory = "Shopping"
	CategoryBills         TransactionCategory = "Bills"
	CategoryEntertainment TransactionCategory = "Entertainment"
)

// Transaction is one row of the canonical ledger table. Amount is always finite.
type Transaction struct {
	ID            string    `db:"id" json:"id"`
	Date          time.Time `db:"date" json:"date"`
	Merchant      string    `db:"merchant" json:"merchant"`
	Category      string    `db:"category" json:"category"`
	Amount        float64   `db:"amount" json:"amount"`
	Currency      string    `db:"currency" json:"currency"`
	BankName      string    `db:"bankName" json:"bank_name,omitempty"`
	Source        string    `db:"source" json:"source,omitempty"`
	PaymentMethod string    `db:"payment_method" json:"payment_method,omitempty"`
}

// RawTransaction is a row as a data source hands it over, before normalization.
// Date may be a time.Time or a date string; Amount may be a float, an integer,
// a numeric string or a decimal.Decimal.
type RawTransaction struct {
	ID            string
	Date          any
	Merchant      string
	Category      string
	Amount        any
	Currency      string
	BankName      string
	Source        string
	PaymentMethod string
}
