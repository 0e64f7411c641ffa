package handlers

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/jabenlo/pstep-bank-store/internal/model"
	"github.com/jabenlo/pstep-bank-store/internal/repository"
	"github.com/jabenlo/pstep-bank-store/internal/services"
	xhttp "github.com/jabenlo/pstep-bank-store/pkg/http"
	"github.com/jabenlo/pstep-bank-store/pkg/logger"
)

const apiTimeLayout = time.RFC3339

/* ------------------------------ JSON shapes -------------------------------- */

// Money fields go out as plain JSON numbers with two decimals of meaning,
// the format the frontend expects.

type userJSON struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type studentJSON struct {
	ID        int64   `json:"id"`
	StudentID string  `json:"student_id"`
	Name      string  `json:"name"`
	Balance   float64 `json:"balance"`
	CreatedAt string  `json:"created_at"`
}

type itemJSON struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	ImagePath   string  `json:"image_path,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

type transactionJSON struct {
	ID          int64   `json:"id"`
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	CreatedAt   string  `json:"created_at"`
}

type purchaseJSON struct {
	ID        int64   `json:"id"`
	ItemID    int64   `json:"item_id"`
	ItemName  string  `json:"item_name"`
	Quantity  int     `json:"quantity"`
	Total     float64 `json:"total"`
	CreatedAt string  `json:"created_at"`
}

func toUserJSON(u *model.User) userJSON {
	return userJSON{ID: u.ID, Username: u.Username, Role: u.Role}
}

func toStudentJSON(s *model.Student) studentJSON {
	return studentJSON{
		ID:        s.ID,
		StudentID: s.ExternalID,
		Name:      s.Name,
		Balance:   s.Balance.InexactFloat64(),
		CreatedAt: s.CreatedAt.Format(apiTimeLayout),
	}
}

func toStudentJSONs(students []*model.Student) []studentJSON {
	out := make([]studentJSON, len(students))
	for i, s := range students {
		out[i] = toStudentJSON(s)
	}
	return out
}

func toItemJSON(i *model.Item) itemJSON {
	return itemJSON{
		ID:          i.ID,
		Name:        i.Name,
		Description: i.Description,
		Price:       i.Price.InexactFloat64(),
		ImagePath:   i.ImagePath,
		CreatedAt:   i.CreatedAt.Format(apiTimeLayout),
	}
}

func toItemJSONs(items []*model.Item) []itemJSON {
	out := make([]itemJSON, len(items))
	for i, item := range items {
		out[i] = toItemJSON(item)
	}
	return out
}

func toTransactionJSON(t *model.Transaction) transactionJSON {
	return transactionJSON{
		ID:          t.ID,
		Type:        string(t.Kind),
		Amount:      t.Amount.InexactFloat64(),
		Description: t.Description,
		CreatedAt:   t.CreatedAt.Format(apiTimeLayout),
	}
}

func toTransactionJSONs(txns []*model.Transaction) []transactionJSON {
	out := make([]transactionJSON, len(txns))
	for i, t := range txns {
		out[i] = toTransactionJSON(t)
	}
	return out
}

func toPurchaseJSON(p *model.PurchaseWithItem) purchaseJSON {
	return purchaseJSON{
		ID:        p.ID,
		ItemID:    p.ItemID,
		ItemName:  p.Item.Name,
		Quantity:  p.Quantity,
		Total:     p.TotalAmount.InexactFloat64(),
		CreatedAt: p.CreatedAt.Format(apiTimeLayout),
	}
}

func toPurchaseJSONs(purchases []*model.PurchaseWithItem) []purchaseJSON {
	out := make([]purchaseJSON, len(purchases))
	for i, p := range purchases {
		out[i] = toPurchaseJSON(p)
	}
	return out
}

/* -------------------------------- Plumbing --------------------------------- */

func readJSON(ctx *xhttp.RequestCtx, dst any) error {
	body := ctx.PostBody()
	return json.Unmarshal(body, dst)
}

func writeJSON(ctx *xhttp.RequestCtx, status int, v any) {
	b, _ := json.Marshal(v)
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.Response.SetStatusCode(status)
	ctx.Response.SetBodyRaw(b)
}

func writeError(ctx *xhttp.RequestCtx, status int, msg string) {
	writeJSON(ctx, status, map[string]string{"error": msg})
}

// writeServiceError maps domain errors onto status codes. Anything
// unrecognized is a 500 and gets logged.
func writeServiceError(ctx *xhttp.RequestCtx, err error) {
	var insufficient *services.InsufficientBalanceError
	if errors.As(err, &insufficient) {
		writeJSON(ctx, xhttp.StatusBadRequest, map[string]any{
			"error":     "insufficient balance",
			"required":  insufficient.Required.InexactFloat64(),
			"available": insufficient.Available.InexactFloat64(),
		})
		return
	}

	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(ctx, xhttp.StatusNotFound, "not found")
	case errors.Is(err, services.ErrItemUnavailable),
		errors.Is(err, services.ErrItemNotInCart):
		writeError(ctx, xhttp.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		writeError(ctx, xhttp.StatusUnauthorized, err.Error())
	case errors.Is(err, repository.ErrInsufficientBalance),
		errors.Is(err, services.ErrUsernameTaken),
		errors.Is(err, services.ErrDuplicateStudentID),
		errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrInvalidPrice),
		errors.Is(err, services.ErrInvalidQuantity),
		errors.Is(err, services.ErrCartEmpty):
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrConcurrentUpdate):
		writeError(ctx, xhttp.StatusConflict, "please retry")
	default:
		logger.Error("request failed", "path", string(ctx.Path()), "error", err)
		writeError(ctx, xhttp.StatusInternalServerError, "internal error")
	}
}

func query(ctx *xhttp.RequestCtx, key string) string {
	return string(ctx.QueryArgs().Peek(key))
}

// pathInt64 reads a numeric route parameter like {id}.
func pathInt64(ctx *xhttp.RequestCtx, name string) (int64, error) {
	v, _ := ctx.UserValue(name).(string)
	return strconv.ParseInt(v, 10, 64)
}
