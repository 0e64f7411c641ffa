package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind is the unified ledger vocabulary. Earlier versions of the
// schema wrote "deposit"/"withdraw" on one code path and "credit"/"debit" on
// the other; NormalizeKind folds the legacy spellings in when reading.
type TransactionKind string

const (
	KindCredit TransactionKind = "credit"
	KindDebit  TransactionKind = "debit"
)

func NormalizeKind(s string) (TransactionKind, bool) {
	switch TransactionKind(s) {
	case KindCredit, "deposit":
		return KindCredit, true
	case KindDebit, "withdraw":
		return KindDebit, true
	}
	return "", false
}

// Transaction is an immutable ledger row for a direct balance adjustment.
type Transaction struct {
	ID          int64           `json:"id"`
	StudentID   int64           `json:"student_id"`
	Kind        TransactionKind `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
}
