package handlers

import (
	"errors"

	"github.com/fasthttp/router"
	"github.com/jabenlo/pstep-bank-store/internal/repository"
	"github.com/jabenlo/pstep-bank-store/internal/services"
	"github.com/jabenlo/pstep-bank-store/internal/session"
	xhttp "github.com/jabenlo/pstep-bank-store/pkg/http"
	"github.com/jabenlo/pstep-bank-store/pkg/logger"
)

type StudentHandler struct {
	students *services.StudentService
	checkout *services.CheckoutService
	auth     *SessionAuth
}

func RegisterStudentRoutes(e *router.Group, h *StudentHandler) {
	e.GET("/dashboard", h.auth.RequireStudent(h.Dashboard))
	e.GET("/balance", h.auth.RequireStudent(h.Balance))
	e.GET("/store", h.auth.RequireStudent(h.Store))
	e.GET("/transactions", h.auth.RequireStudent(h.Transactions))
	e.GET("/purchases", h.auth.RequireStudent(h.Purchases))

	e.POST("/cart", h.auth.RequireStudent(h.AddToCart))
	e.GET("/cart", h.auth.RequireStudent(h.ViewCart))
	e.PUT("/cart/{item_id}", h.auth.RequireStudent(h.UpdateCartItem))
	e.DELETE("/cart/{item_id}", h.auth.RequireStudent(h.RemoveCartItem))

	e.POST("/purchase", h.auth.RequireStudent(h.Purchase))
}

func NewStudentHandler(students *services.StudentService, checkout *services.CheckoutService, auth *SessionAuth) *StudentHandler {
	return &StudentHandler{
		students: students,
		checkout: checkout,
		auth:     auth,
	}
}

type addToCartRequest struct {
	ItemID   int64 `json:"item_id"`
	Quantity int   `json:"quantity"`
}

type updateCartRequest struct {
	Quantity int `json:"quantity"`
}

type cartLineJSON struct {
	ItemID   int64   `json:"item_id"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
	Subtotal float64 `json:"subtotal"`
}

type cartJSON struct {
	Items []cartLineJSON `json:"items"`
	Total float64        `json:"total"`
}

func toCartJSON(view *services.CartView) cartJSON {
	out := cartJSON{
		Items: make([]cartLineJSON, len(view.Lines)),
		Total: view.Total.InexactFloat64(),
	}
	for i, line := range view.Lines {
		out.Items[i] = cartLineJSON{
			ItemID:   line.ItemID,
			Name:     line.Name,
			Quantity: line.Quantity,
			Price:    line.Price.InexactFloat64(),
			Subtotal: line.Subtotal.InexactFloat64(),
		}
	}
	return out
}

/* --------------------------------- Routes ----------------------------------- */

func (h *StudentHandler) Dashboard(ctx *xhttp.RequestCtx, sess *session.Session) {
	d, err := h.students.Dashboard(ctx, sess.StudentID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, map[string]any{
		"student":             toStudentJSON(d.Student),
		"recent_transactions": toTransactionJSONs(d.RecentTransactions),
		"recent_purchases":    toPurchaseJSONs(d.RecentPurchases),
	})
}

// Balance always reads the database, never the session snapshot.
func (h *StudentHandler) Balance(ctx *xhttp.RequestCtx, sess *session.Session) {
	student, err := h.students.Balance(ctx, sess.StudentID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, map[string]float64{"balance": student.Balance.InexactFloat64()})
}

func (h *StudentHandler) Store(ctx *xhttp.RequestCtx, sess *session.Session) {
	items, err := h.students.StoreItems(ctx, sess.StudentID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, map[string]any{"items": toItemJSONs(items)})
}

func (h *StudentHandler) Transactions(ctx *xhttp.RequestCtx, sess *session.Session) {
	txns, err := h.students.Transactions(ctx, sess.StudentID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, toTransactionJSONs(txns))
}

func (h *StudentHandler) Purchases(ctx *xhttp.RequestCtx, sess *session.Session) {
	purchases, err := h.students.Purchases(ctx, sess.StudentID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, toPurchaseJSONs(purchases))
}

func (h *StudentHandler) AddToCart(ctx *xhttp.RequestCtx, sess *session.Session) {
	var req addToCartRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	if err := h.checkout.AddToCart(ctx, sess, req.ItemID, req.Quantity); err != nil {
		writeServiceError(ctx, err)
		return
	}
	if err := h.auth.Save(sess); err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, map[string]string{"message": "added to cart"})
}

func (h *StudentHandler) ViewCart(ctx *xhttp.RequestCtx, sess *session.Session) {
	view, err := h.checkout.ViewCart(ctx, sess)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, toCartJSON(view))
}

func (h *StudentHandler) UpdateCartItem(ctx *xhttp.RequestCtx, sess *session.Session) {
	itemID, err := pathInt64(ctx, "item_id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid item id")
		return
	}
	var req updateCartRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	if err := h.checkout.UpdateQuantity(sess, itemID, req.Quantity); err != nil {
		writeServiceError(ctx, err)
		return
	}
	if err := h.auth.Save(sess); err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, map[string]string{"message": "cart updated"})
}

func (h *StudentHandler) RemoveCartItem(ctx *xhttp.RequestCtx, sess *session.Session) {
	itemID, err := pathInt64(ctx, "item_id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid item id")
		return
	}

	if err := h.checkout.RemoveFromCart(sess, itemID); err != nil {
		writeServiceError(ctx, err)
		return
	}
	if err := h.auth.Save(sess); err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, map[string]string{"message": "removed from cart"})
}

func (h *StudentHandler) Purchase(ctx *xhttp.RequestCtx, sess *session.Session) {
	result, err := h.checkout.Checkout(ctx, sess)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCartEmpty),
			errors.Is(err, services.ErrItemUnavailable),
			errors.Is(err, repository.ErrInsufficientBalance),
			errors.Is(err, repository.ErrNotFound):
			writeServiceError(ctx, err)
		default:
			logger.Error("checkout failed", "student_id", sess.StudentID, "error", err)
			writeError(ctx, xhttp.StatusInternalServerError, "Purchase failed. Please try again.")
		}
		return
	}
	if err := h.auth.Save(sess); err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, map[string]any{
		"message":     "purchase complete",
		"total":       result.Total.InexactFloat64(),
		"new_balance": result.NewBalance.InexactFloat64(),
	})
}
