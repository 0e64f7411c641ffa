package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"strconv"
	"strings"
	"testing"

	"github.com/jabenlo/pstep-bank-store/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

func TestTeacherHandler_RequiresTeacherSession(t *testing.T) {
	env := setupHandlerEnv(t)
	handler := env.auth.RequireTeacher(env.teacherHandler.ListStudents)

	t.Run("no cookie", func(t *testing.T) {
		ctx := setupTestContext("GET", "/api/teacher/students", nil)
		handler(ctx)
		assert.Equal(t, 401, ctx.Response.StatusCode())
	})

	t.Run("student session", func(t *testing.T) {
		teacher := env.createTeacher(t, "mr-lopez")
		student := env.createStudent(t, teacher.ID, "S-001", "Ada", "5.00")
		token := env.studentToken(t, student)

		ctx := withToken(setupTestContext("GET", "/api/teacher/students", nil), token)
		handler(ctx)
		assert.Equal(t, 403, ctx.Response.StatusCode())
	})
}

func TestTeacherHandler_AddStudent(t *testing.T) {
	env := setupHandlerEnv(t)
	teacher := env.createTeacher(t, "mr-lopez")
	token := env.teacherToken(t, teacher.ID)
	handler := env.auth.RequireTeacher(env.teacherHandler.AddStudent)

	t.Run("creates with initial balance", func(t *testing.T) {
		body, _ := json.Marshal(addStudentRequest{StudentID: "S-001", Name: "Ada", InitialBalance: 12.5})
		ctx := withToken(setupTestContext("POST", "/api/teacher/students", body), token)
		handler(ctx)

		require.Equal(t, 201, ctx.Response.StatusCode())
		var resp studentJSON
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
		assert.Equal(t, "S-001", resp.StudentID)
		assert.InDelta(t, 12.5, resp.Balance, 0.001)
	})

	t.Run("duplicate id", func(t *testing.T) {
		body, _ := json.Marshal(addStudentRequest{StudentID: "S-001", Name: "Copy"})
		ctx := withToken(setupTestContext("POST", "/api/teacher/students", body), token)
		handler(ctx)
		assert.Equal(t, 400, ctx.Response.StatusCode())
	})

	t.Run("missing fields", func(t *testing.T) {
		body, _ := json.Marshal(addStudentRequest{Name: "No ID"})
		ctx := withToken(setupTestContext("POST", "/api/teacher/students", body), token)
		handler(ctx)
		assert.Equal(t, 400, ctx.Response.StatusCode())
	})
}

func TestTeacherHandler_AdjustBalance(t *testing.T) {
	env := setupHandlerEnv(t)
	teacher := env.createTeacher(t, "mr-lopez")
	student := env.createStudent(t, teacher.ID, "S-001", "Ada", "5.00")
	token := env.teacherToken(t, teacher.ID)
	handler := env.auth.RequireTeacher(env.teacherHandler.AdjustBalance)

	id := strconv.FormatInt(student.ID, 10)
	call := func(body []byte) *struct {
		status int
		resp   []byte
	} {
		ctx := withToken(setupTestContext("POST", "/api/teacher/students/"+id+"/balance", body), token)
		ctx.SetUserValue("id", id)
		handler(ctx)
		return &struct {
			status int
			resp   []byte
		}{ctx.Response.StatusCode(), ctx.Response.Body()}
	}

	t.Run("credit", func(t *testing.T) {
		body, _ := json.Marshal(adjustBalanceRequest{Type: "credit", Amount: 2.5, Description: "Reward"})
		r := call(body)
		require.Equal(t, 200, r.status)

		var resp studentJSON
		require.NoError(t, json.Unmarshal(r.resp, &resp))
		assert.InDelta(t, 7.5, resp.Balance, 0.001)
	})

	t.Run("legacy deposit spelling accepted", func(t *testing.T) {
		body, _ := json.Marshal(adjustBalanceRequest{Type: "deposit", Amount: 1})
		r := call(body)
		assert.Equal(t, 200, r.status)
	})

	t.Run("debit beyond balance", func(t *testing.T) {
		body, _ := json.Marshal(adjustBalanceRequest{Type: "debit", Amount: 100})
		r := call(body)
		assert.Equal(t, 400, r.status)
		assert.Contains(t, string(r.resp), "insufficient balance")
	})

	t.Run("unknown type", func(t *testing.T) {
		body, _ := json.Marshal(adjustBalanceRequest{Type: "transfer", Amount: 1})
		r := call(body)
		assert.Equal(t, 400, r.status)
	})
}

func TestTeacherHandler_UpdateStudent(t *testing.T) {
	env := setupHandlerEnv(t)
	teacher := env.createTeacher(t, "mr-lopez")
	student := env.createStudent(t, teacher.ID, "S-001", "Ada", "5.00")
	token := env.teacherToken(t, teacher.ID)
	handler := env.auth.RequireTeacher(env.teacherHandler.UpdateStudent)

	id := strconv.FormatInt(student.ID, 10)
	call := func(body []byte) *struct {
		status int
		resp   []byte
	} {
		ctx := withToken(setupTestContext("PUT", "/api/teacher/students/"+id, body), token)
		ctx.SetUserValue("id", id)
		handler(ctx)
		return &struct {
			status int
			resp   []byte
		}{ctx.Response.StatusCode(), ctx.Response.Body()}
	}

	t.Run("rename and credit in one request", func(t *testing.T) {
		amount := 2.5
		body, _ := json.Marshal(updateStudentRequest{Name: "Ada Lovelace", Type: "credit", Amount: &amount})
		r := call(body)
		require.Equal(t, 200, r.status)

		var resp studentJSON
		require.NoError(t, json.Unmarshal(r.resp, &resp))
		assert.Equal(t, "Ada Lovelace", resp.Name)
		assert.InDelta(t, 7.5, resp.Balance, 0.001)
	})

	t.Run("rename only leaves balance alone", func(t *testing.T) {
		body, _ := json.Marshal(updateStudentRequest{Name: "Ada"})
		r := call(body)
		require.Equal(t, 200, r.status)

		var resp studentJSON
		require.NoError(t, json.Unmarshal(r.resp, &resp))
		assert.InDelta(t, 7.5, resp.Balance, 0.001)
	})

	t.Run("empty body", func(t *testing.T) {
		r := call([]byte(`{}`))
		assert.Equal(t, 400, r.status)
	})
}

func TestTeacherHandler_Dashboard(t *testing.T) {
	env := setupHandlerEnv(t)
	teacher := env.createTeacher(t, "mr-lopez")
	student := env.createStudent(t, teacher.ID, "S-001", "Ada", "5.00")
	item := env.createItem(t, teacher.ID, "Pencil", "1.25")
	ctxBg := context.Background()

	_, err := env.purchases.Create(ctxBg, &model.Purchase{
		StudentID:   student.ID,
		ItemID:      item.ID,
		Quantity:    2,
		TotalAmount: decimal.RequireFromString("2.50"),
	})
	require.NoError(t, err)

	token := env.teacherToken(t, teacher.ID)
	ctx := withToken(setupTestContext("GET", "/api/teacher/dashboard", nil), token)
	env.auth.RequireTeacher(env.teacherHandler.Dashboard)(ctx)

	require.Equal(t, 200, ctx.Response.StatusCode())
	var resp dashboardResponse
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	assert.Equal(t, 1, resp.StudentCount)
	require.Len(t, resp.Items, 1)
	assert.InDelta(t, 5.0, resp.TotalBalance, 0.001)
	assert.InDelta(t, 2.5, resp.TotalRevenue, 0.001)
}

func multipartItemBody(t *testing.T, fields map[string]string, imageName string, imageData []byte) (contentType string, body []byte) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if imageName != "" {
		fw, err := w.CreateFormFile("image", imageName)
		require.NoError(t, err)
		_, err = fw.Write(imageData)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return w.FormDataContentType(), buf.Bytes()
}

func TestTeacherHandler_CreateItem(t *testing.T) {
	env := setupHandlerEnv(t)
	teacher := env.createTeacher(t, "mr-lopez")
	token := env.teacherToken(t, teacher.ID)
	handler := env.auth.RequireTeacher(env.teacherHandler.CreateItem)

	call := func(contentType string, body []byte) *fasthttp.RequestCtx {
		ctx := withToken(setupTestContext("POST", "/api/teacher/items", body), token)
		ctx.Request.Header.SetContentType(contentType)
		handler(ctx)
		return ctx
	}

	t.Run("with image", func(t *testing.T) {
		ct, body := multipartItemBody(t, map[string]string{"name": "Pencil", "price": "1.25"}, "logo.png", []byte("png-bytes"))
		ctx := call(ct, body)
		require.Equal(t, 201, ctx.Response.StatusCode())

		var resp itemJSON
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
		assert.Equal(t, "Pencil", resp.Name)
		assert.InDelta(t, 1.25, resp.Price, 0.001)
		assert.True(t, strings.HasPrefix(resp.ImagePath, "/uploads/"))
	})

	t.Run("bad extension drops the image only", func(t *testing.T) {
		ct, body := multipartItemBody(t, map[string]string{"name": "Sticker", "price": "0.50"}, "nope.exe", []byte("x"))
		ctx := call(ct, body)
		require.Equal(t, 201, ctx.Response.StatusCode())

		var resp itemJSON
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
		assert.Empty(t, resp.ImagePath)
	})

	t.Run("missing price", func(t *testing.T) {
		ct, body := multipartItemBody(t, map[string]string{"name": "Free"}, "", nil)
		ctx := call(ct, body)
		assert.Equal(t, 400, ctx.Response.StatusCode())
	})
}

func TestTeacherHandler_UpdateItem(t *testing.T) {
	env := setupHandlerEnv(t)
	teacher := env.createTeacher(t, "mr-lopez")
	item := env.createItem(t, teacher.ID, "Pencil", "1.25")
	token := env.teacherToken(t, teacher.ID)
	handler := env.auth.RequireTeacher(env.teacherHandler.UpdateItem)

	id := strconv.FormatInt(item.ID, 10)
	ct, body := multipartItemBody(t, map[string]string{"price": "2.00"}, "", nil)
	ctx := withToken(setupTestContext("PUT", "/api/teacher/items/"+id, body), token)
	ctx.Request.Header.SetContentType(ct)
	ctx.SetUserValue("id", id)
	handler(ctx)

	require.Equal(t, 200, ctx.Response.StatusCode())
	var resp itemJSON
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	// name untouched, price updated
	assert.Equal(t, "Pencil", resp.Name)
	assert.InDelta(t, 2.0, resp.Price, 0.001)
}

func TestTeacherHandler_DownloadStatement(t *testing.T) {
	env := setupHandlerEnv(t)
	teacher := env.createTeacher(t, "mr-lopez")
	student := env.createStudent(t, teacher.ID, "S-001", "Ada Lovelace", "5.00")
	token := env.teacherToken(t, teacher.ID)
	handler := env.auth.RequireTeacher(env.teacherHandler.DownloadStatement)

	id := strconv.FormatInt(student.ID, 10)
	ctx := withToken(setupTestContext("GET", "/api/teacher/students/"+id+"/statement", nil), token)
	ctx.SetUserValue("id", id)
	handler(ctx)

	require.Equal(t, 200, ctx.Response.StatusCode())
	assert.Contains(t, string(ctx.Response.Header.ContentType()), "text/csv")
	disposition := string(ctx.Response.Header.Peek("Content-Disposition"))
	assert.Contains(t, disposition, "Ada_Lovelace_S-001_statement.csv")

	body := string(ctx.Response.Body())
	assert.True(t, strings.HasPrefix(body, "PSTEP Classroom Bank Statement"))
	assert.Contains(t, body, "Current Balance:,$5.00")
}
