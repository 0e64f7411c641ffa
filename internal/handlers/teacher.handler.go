package handlers

import (
	"io"
	"mime/multipart"

	"github.com/fasthttp/router"
	"github.com/jabenlo/pstep-bank-store/internal/model"
	"github.com/jabenlo/pstep-bank-store/internal/services"
	"github.com/jabenlo/pstep-bank-store/internal/session"
	xhttp "github.com/jabenlo/pstep-bank-store/pkg/http"
	"github.com/shopspring/decimal"
)

type TeacherHandler struct {
	roster     *services.RosterService
	store      *services.StoreService
	statements *services.StatementService
	auth       *SessionAuth
}

func RegisterTeacherRoutes(e *router.Group, h *TeacherHandler) {
	e.GET("/dashboard", h.auth.RequireTeacher(h.Dashboard))

	e.POST("/students", h.auth.RequireTeacher(h.AddStudent))
	e.GET("/students", h.auth.RequireTeacher(h.ListStudents))
	e.GET("/students/{id}", h.auth.RequireTeacher(h.GetStudent))
	e.PUT("/students/{id}", h.auth.RequireTeacher(h.UpdateStudent))
	e.DELETE("/students/{id}", h.auth.RequireTeacher(h.DeleteStudent))
	e.POST("/students/{id}/balance", h.auth.RequireTeacher(h.AdjustBalance))
	e.GET("/students/{id}/statement", h.auth.RequireTeacher(h.DownloadStatement))

	e.POST("/items", h.auth.RequireTeacher(h.CreateItem))
	e.GET("/items", h.auth.RequireTeacher(h.ListItems))
	e.GET("/items/{id}", h.auth.RequireTeacher(h.GetItem))
	e.PUT("/items/{id}", h.auth.RequireTeacher(h.UpdateItem))
	e.DELETE("/items/{id}", h.auth.RequireTeacher(h.DeleteItem))
}

func NewTeacherHandler(
	roster *services.RosterService,
	store *services.StoreService,
	statements *services.StatementService,
	auth *SessionAuth,
) *TeacherHandler {
	return &TeacherHandler{
		roster:     roster,
		store:      store,
		statements: statements,
		auth:       auth,
	}
}

type addStudentRequest struct {
	StudentID      string  `json:"student_id"`
	Name           string  `json:"name"`
	InitialBalance float64 `json:"initial_balance"`
}

type updateStudentRequest struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Amount      *float64 `json:"amount"`
	Description string   `json:"description"`
}

type adjustBalanceRequest struct {
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
}

type dashboardResponse struct {
	Students           []studentJSON     `json:"students"`
	StudentCount       int               `json:"student_count"`
	Items              []itemJSON        `json:"items"`
	TotalBalance       float64           `json:"total_balance"`
	TotalRevenue       float64           `json:"total_revenue"`
	RecentTransactions []transactionJSON `json:"recent_transactions"`
}

/* --------------------------------- Routes ----------------------------------- */

func (h *TeacherHandler) Dashboard(ctx *xhttp.RequestCtx, sess *session.Session) {
	d, err := h.roster.Dashboard(ctx, sess.TeacherID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	items, err := h.store.ListItems(ctx, sess.TeacherID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, dashboardResponse{
		Students:           toStudentJSONs(d.Students),
		StudentCount:       len(d.Students),
		Items:              toItemJSONs(items),
		TotalBalance:       d.TotalBalance.InexactFloat64(),
		TotalRevenue:       d.TotalRevenue.InexactFloat64(),
		RecentTransactions: toTransactionJSONs(d.RecentTransactions),
	})
}

func (h *TeacherHandler) AddStudent(ctx *xhttp.RequestCtx, sess *session.Session) {
	var req addStudentRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.StudentID == "" || req.Name == "" {
		writeError(ctx, xhttp.StatusBadRequest, "student_id and name are required")
		return
	}

	student, err := h.roster.AddStudent(ctx, sess.TeacherID, req.StudentID, req.Name, decimal.NewFromFloat(req.InitialBalance))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, toStudentJSON(student))
}

func (h *TeacherHandler) ListStudents(ctx *xhttp.RequestCtx, sess *session.Session) {
	students, err := h.roster.ListStudents(ctx, sess.TeacherID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, toStudentJSONs(students))
}

func (h *TeacherHandler) GetStudent(ctx *xhttp.RequestCtx, sess *session.Session) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid id")
		return
	}
	student, err := h.roster.GetStudent(ctx, sess.TeacherID, id)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, toStudentJSON(student))
}

func (h *TeacherHandler) UpdateStudent(ctx *xhttp.RequestCtx, sess *session.Session) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid id")
		return
	}
	var req updateStudentRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	adjusting := req.Amount != nil && req.Type != ""
	if req.Name == "" && !adjusting {
		writeError(ctx, xhttp.StatusBadRequest, "no data provided")
		return
	}

	student, err := h.roster.GetStudent(ctx, sess.TeacherID, id)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}

	if req.Name != "" {
		student, err = h.roster.UpdateStudent(ctx, sess.TeacherID, id, req.Name)
		if err != nil {
			writeServiceError(ctx, err)
			return
		}
	}
	if adjusting {
		kind, ok := model.NormalizeKind(req.Type)
		if !ok {
			writeError(ctx, xhttp.StatusBadRequest, "type must be credit or debit")
			return
		}
		student, err = h.roster.AdjustBalance(ctx, sess.TeacherID, id, kind, decimal.NewFromFloat(*req.Amount), req.Description)
		if err != nil {
			writeServiceError(ctx, err)
			return
		}
	}
	writeJSON(ctx, xhttp.StatusOK, toStudentJSON(student))
}

func (h *TeacherHandler) DeleteStudent(ctx *xhttp.RequestCtx, sess *session.Session) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid id")
		return
	}
	if err := h.roster.DeleteStudent(ctx, sess.TeacherID, id); err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, map[string]string{"message": "student deleted"})
}

func (h *TeacherHandler) AdjustBalance(ctx *xhttp.RequestCtx, sess *session.Session) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid id")
		return
	}
	var req adjustBalanceRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	kind, ok := model.NormalizeKind(req.Type)
	if !ok {
		writeError(ctx, xhttp.StatusBadRequest, "type must be credit or debit")
		return
	}

	student, err := h.roster.AdjustBalance(ctx, sess.TeacherID, id, kind, decimal.NewFromFloat(req.Amount), req.Description)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, toStudentJSON(student))
}

func (h *TeacherHandler) DownloadStatement(ctx *xhttp.RequestCtx, sess *session.Session) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid id")
		return
	}

	st, err := h.statements.BuildStatement(ctx, sess.TeacherID, id)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}

	ctx.Response.Header.Set("Content-Type", "text/csv; charset=utf-8")
	ctx.Response.Header.Set("Content-Disposition", `attachment; filename="`+h.statements.Filename(st)+`"`)
	if err := h.statements.WriteCSV(ctx.Response.BodyWriter(), st); err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.Response.SetStatusCode(xhttp.StatusOK)
}

func (h *TeacherHandler) CreateItem(ctx *xhttp.RequestCtx, sess *session.Session) {
	form, err := parseItemForm(ctx)
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
		return
	}
	if form.Name == "" || !form.HasPrice {
		writeError(ctx, xhttp.StatusBadRequest, "name and price are required")
		return
	}

	item, err := h.store.CreateItem(ctx, sess.TeacherID, form.Name, form.Description, form.Price, form.ImageName, form.ImageData)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, toItemJSON(item))
}

func (h *TeacherHandler) ListItems(ctx *xhttp.RequestCtx, sess *session.Session) {
	items, err := h.store.ListItems(ctx, sess.TeacherID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, toItemJSONs(items))
}

func (h *TeacherHandler) GetItem(ctx *xhttp.RequestCtx, sess *session.Session) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid id")
		return
	}
	item, err := h.store.GetItem(ctx, sess.TeacherID, id)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, toItemJSON(item))
}

func (h *TeacherHandler) UpdateItem(ctx *xhttp.RequestCtx, sess *session.Session) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid id")
		return
	}
	form, err := parseItemForm(ctx)
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
		return
	}

	// partial update: absent fields keep their current values
	existing, err := h.store.GetItem(ctx, sess.TeacherID, id)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	if form.Name == "" {
		form.Name = existing.Name
	}
	if form.Description == "" {
		form.Description = existing.Description
	}
	if !form.HasPrice {
		form.Price = existing.Price
	}

	item, err := h.store.UpdateItem(ctx, sess.TeacherID, id, form.Name, form.Description, form.Price, form.ImageName, form.ImageData)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, toItemJSON(item))
}

func (h *TeacherHandler) DeleteItem(ctx *xhttp.RequestCtx, sess *session.Session) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid id")
		return
	}
	if err := h.store.DeleteItem(ctx, sess.TeacherID, id); err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, map[string]string{"message": "item deleted"})
}

// itemForm is the parsed multipart item form. Absent fields stay at their
// zero values; HasPrice distinguishes a missing price from a zero one.
type itemForm struct {
	Name        string
	Description string
	Price       decimal.Decimal
	HasPrice    bool
	ImageName   string
	ImageData   []byte
}

func parseItemForm(ctx *xhttp.RequestCtx) (*itemForm, error) {
	form, err := ctx.MultipartForm()
	if err != nil {
		return nil, err
	}

	f := &itemForm{
		Name:        formValue(form, "name"),
		Description: formValue(form, "description"),
		Price:       decimal.Zero,
	}

	if v := formValue(form, "price"); v != "" {
		f.Price, err = decimal.NewFromString(v)
		if err != nil {
			return nil, err
		}
		f.HasPrice = true
	}

	if files := form.File["image"]; len(files) > 0 {
		f.ImageName = files[0].Filename
		f.ImageData, err = readFormFile(files[0])
		if err != nil {
			return nil, err
		}
	}
	return f, nil
}

func formValue(form *multipart.Form, key string) string {
	if v := form.Value[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
