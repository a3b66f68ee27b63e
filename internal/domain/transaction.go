package domain

import (
	"strings"
	"time"
)

// TxType tags a transaction as money going out or coming in.
type TxType string

const (
	TxTypeExpense TxType = "expense"
	TxTypeIncome  TxType = "income"
)

const (
	// DefaultCategory is used when the model leaves the category out.
	DefaultCategory = "Other"

	// DefaultCurrency is implicit for every amount the bot records.
	DefaultCurrency = "EUR"
)

// ParseTxType maps free text to a TxType. Anything other than "income"
// is treated as an expense.
func ParseTxType(s string) TxType {
	if strings.EqualFold(strings.TrimSpace(s), string(TxTypeIncome)) {
		return TxTypeIncome
	}
	return TxTypeExpense
}

// TransactionRecord is one persisted expense/income event.
// Records are append-only: nothing updates or deletes them once stored.
type TransactionRecord struct {
	ID          int64     // assigned by the store
	UserID      string    // sender id as given by the messaging provider
	Amount      float64   // signed, in Currency
	Currency    string    // "EUR" unless stated otherwise
	Category    string    // never empty, "Other" by default
	Description string    // may be empty
	Type        TxType    // expense or income
	Date        time.Time // assigned by the store at write time
	RawText     string    // JSON of the single model item that produced this record
}

// NewRecord is the input to the record store; the store assigns ID and Date.
type NewRecord struct {
	UserID      string
	Amount      float64
	Category    string
	Description string
	Type        TxType
	RawText     string
}

// CategoryTotal is the sum of amounts for one category.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

// UserStats is computed on demand from a user's records.
type UserStats struct {
	Total      float64         `json:"total"`
	Categories []CategoryTotal `json:"categories"` // descending by Total
}
