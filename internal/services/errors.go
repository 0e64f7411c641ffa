package services

import (
	"fmt"

	"github.com/jabenlo/pstep-bank-store/internal/repository"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrDuplicateStudentID = errors.New("student id already in use")
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrInvalidPrice       = errors.New("price must not be negative")
	ErrInvalidQuantity    = errors.New("quantity must be positive")
	ErrCartEmpty          = errors.New("cart is empty")
	ErrItemNotInCart      = errors.New("item not in cart")
	ErrItemUnavailable    = errors.New("item is no longer available")
)

// InsufficientBalanceError reports a rejected debit along with the numbers
// the caller needs for a useful message. It matches
// repository.ErrInsufficientBalance under errors.Is.
type InsufficientBalanceError struct {
	Required  decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: need $%s, have $%s",
		e.Required.StringFixed(2), e.Available.StringFixed(2))
}

func (e *InsufficientBalanceError) Is(target error) bool {
	return target == repository.ErrInsufficientBalance
}
