package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jabenlo/pstep-bank-store/internal/model"
	"github.com/jabenlo/pstep-bank-store/internal/money"
	"github.com/jabenlo/pstep-bank-store/internal/repository"
	"github.com/jabenlo/pstep-bank-store/internal/session"
	"github.com/jabenlo/pstep-bank-store/pkg/logger"
	"github.com/jabenlo/pstep-bank-store/pkg/pg"
	"github.com/jabenlo/pstep-bank-store/pkg/prom"
	"github.com/shopspring/decimal"
)

// CheckoutService owns the cart and the purchase flow. The cart lives in the
// session; the database is only touched at checkout, where the whole order
// commits atomically or not at all.
type CheckoutService struct {
	db           *pg.DB
	students     *repository.StudentRepository
	items        *repository.ItemRepository
	purchases    *repository.PurchaseRepository
	transactions *repository.TransactionRepository
}

func NewCheckoutService(
	db *pg.DB,
	students *repository.StudentRepository,
	items *repository.ItemRepository,
	purchases *repository.PurchaseRepository,
	transactions *repository.TransactionRepository,
) *CheckoutService {
	return &CheckoutService{
		db:           db,
		students:     students,
		items:        items,
		purchases:    purchases,
		transactions: transactions,
	}
}

// CartLine is one resolved cart row for display. Price and Subtotal use the
// snapshot taken when the item was added; the live price applies at
// checkout.
type CartLine struct {
	ItemID   int64           `json:"item_id"`
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type CartView struct {
	Lines []CartLine      `json:"items"`
	Total decimal.Decimal `json:"total"`
}

type CheckoutResult struct {
	Total      decimal.Decimal
	NewBalance decimal.Decimal
	Purchases  []*model.Purchase
}

// AddToCart verifies the item belongs to the student's classroom store and
// adds it with a price snapshot. The caller persists the session afterwards.
func (s *CheckoutService) AddToCart(ctx context.Context, sess *session.Session, itemID int64, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	student, err := s.students.FindByID(ctx, sess.StudentID)
	if err != nil {
		return err
	}

	item, err := s.items.FindForTeacher(ctx, itemID, student.TeacherID)
	if err != nil {
		return err
	}

	sess.Cart.Add(item.ID, quantity, item.Price)
	return nil
}

// ViewCart resolves cart lines against the catalog. Lines whose item has
// been removed from the store are skipped in the view but stay in the cart,
// so a later checkout still sees them and aborts.
func (s *CheckoutService) ViewCart(ctx context.Context, sess *session.Session) (*CartView, error) {
	view := &CartView{
		Lines: make([]CartLine, 0, len(sess.Cart)),
		Total: decimal.Zero,
	}

	for _, entry := range sess.Cart {
		item, err := s.items.FindByID(ctx, entry.ItemID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return nil, err
		}

		subtotal := money.LineTotal(entry.Quantity, entry.Price)
		view.Lines = append(view.Lines, CartLine{
			ItemID:   entry.ItemID,
			Name:     item.Name,
			Quantity: entry.Quantity,
			Price:    entry.Price,
			Subtotal: subtotal,
		})
		view.Total = money.Quantize(view.Total.Add(subtotal))
	}

	return view, nil
}

func (s *CheckoutService) UpdateQuantity(sess *session.Session, itemID int64, quantity int) error {
	if !sess.Cart.SetQuantity(itemID, quantity) {
		return ErrItemNotInCart
	}
	return nil
}

func (s *CheckoutService) RemoveFromCart(sess *session.Session, itemID int64) error {
	if !sess.Cart.Remove(itemID) {
		return ErrItemNotInCart
	}
	return nil
}

// Checkout prices every cart line at the live catalog price, debits the
// student once for the order total and records one purchase row per line
// plus a single ledger entry. Any missing item aborts the whole order. On
// success the cart is emptied.
func (s *CheckoutService) Checkout(ctx context.Context, sess *session.Session) (*CheckoutResult, error) {
	if len(sess.Cart) == 0 {
		prom.IncCounterVec(prom.SystemCheckout, prom.MetricCheckoutsFailed, "empty_cart")
		return nil, ErrCartEmpty
	}

	student, err := s.students.FindByID(ctx, sess.StudentID)
	if err != nil {
		return nil, err
	}

	type pricedLine struct {
		item     *model.Item
		quantity int
		subtotal decimal.Decimal
	}

	lines := make([]pricedLine, 0, len(sess.Cart))
	total := decimal.Zero
	for _, entry := range sess.Cart {
		item, err := s.items.FindForTeacher(ctx, entry.ItemID, student.TeacherID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				prom.IncCounterVec(prom.SystemCheckout, prom.MetricCheckoutsFailed, "item_unavailable")
				return nil, ErrItemUnavailable
			}
			return nil, err
		}

		subtotal := money.LineTotal(entry.Quantity, item.Price)
		lines = append(lines, pricedLine{item: item, quantity: entry.Quantity, subtotal: subtotal})
		total = money.Quantize(total.Add(subtotal))
	}

	if student.Balance.LessThan(total) {
		prom.IncCounterVec(prom.SystemCheckout, prom.MetricCheckoutsFailed, "insufficient_balance")
		return nil, &InsufficientBalanceError{Required: total, Available: student.Balance}
	}

	result := &CheckoutResult{Total: total}
	err = s.db.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.students.DeductBalance(ctx, student.ID, money.ToCents(total)); err != nil {
			if errors.Is(err, repository.ErrInsufficientBalance) {
				return &InsufficientBalanceError{Required: total, Available: student.Balance}
			}
			return err
		}

		for _, line := range lines {
			purchase, err := s.purchases.Create(ctx, &model.Purchase{
				StudentID:   student.ID,
				ItemID:      line.item.ID,
				Quantity:    line.quantity,
				TotalAmount: line.subtotal,
			})
			if err != nil {
				return err
			}
			result.Purchases = append(result.Purchases, purchase)
		}

		_, err := s.transactions.Create(ctx, &model.Transaction{
			StudentID:   student.ID,
			Kind:        model.KindDebit,
			Amount:      total,
			Description: fmt.Sprintf("Purchase of %d items", len(lines)),
		})
		return err
	})
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientBalance) {
			prom.IncCounterVec(prom.SystemCheckout, prom.MetricCheckoutsFailed, "insufficient_balance")
		} else {
			prom.IncCounterVec(prom.SystemCheckout, prom.MetricCheckoutsFailed, "error")
		}
		return nil, err
	}

	for k := range sess.Cart {
		delete(sess.Cart, k)
	}

	updated, err := s.students.FindByID(ctx, student.ID)
	if err != nil {
		return nil, err
	}
	result.NewBalance = updated.Balance

	prom.IncCounter(prom.SystemCheckout, prom.MetricCheckoutsCompleted)
	prom.AddHistogram(prom.SystemCheckout, prom.MetricCheckoutAmount, total.InexactFloat64())
	logger.Info("checkout completed",
		"student_id", student.ID,
		"lines", len(lines),
		"total", total.StringFixed(2))

	return result, nil
}
