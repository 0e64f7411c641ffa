package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jabenlo/pstep-bank-store/internal/model"
	"github.com/jabenlo/pstep-bank-store/internal/money"
	"github.com/jabenlo/pstep-bank-store/internal/repository"
	"github.com/jabenlo/pstep-bank-store/internal/services"
	"github.com/jabenlo/pstep-bank-store/internal/session"
	"github.com/jabenlo/pstep-bank-store/internal/uploads"
	xhttp "github.com/jabenlo/pstep-bank-store/pkg/http"
	"github.com/jabenlo/pstep-bank-store/pkg/pg"
	"github.com/jabenlo/pstep-bank-store/pkg/redis"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testCookieName = "pstep_session"

type handlerEnv struct {
	db           *pg.DB
	students     *repository.StudentRepository
	items        *repository.ItemRepository
	transactions *repository.TransactionRepository
	purchases    *repository.PurchaseRepository
	users        *repository.UserRepository

	sessions *session.Store
	auth     *SessionAuth

	teacherHandler *TeacherHandler
	studentHandler *StudentHandler
}

func setupHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()

	raw, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	err = raw.AutoMigrate(
		&repository.UserEntity{},
		&repository.StudentEntity{},
		&repository.ItemEntity{},
		&repository.TransactionEntity{},
		&repository.PurchaseEntity{},
	)
	require.NoError(t, err)
	db := pg.NewFromGorm(raw, raw)

	mr := miniredis.RunT(t)
	adapter, err := redis.NewRedisAdapter(t.Name(), "test", &redis.Options{Addrs: []string{mr.Addr()}})
	require.NoError(t, err)

	sessions := session.NewStore(adapter, 720*time.Hour, 12*time.Hour)
	auth := NewSessionAuth(sessions, testCookieName)

	env := &handlerEnv{
		db:           db,
		students:     repository.NewStudentRepository(db),
		items:        repository.NewItemRepository(db),
		transactions: repository.NewTransactionRepository(db),
		purchases:    repository.NewPurchaseRepository(db),
		users:        repository.NewUserRepository(db),
		sessions:     sessions,
		auth:         auth,
	}

	images, err := uploads.NewStore(t.TempDir())
	require.NoError(t, err)

	roster := services.NewRosterService(db, env.students, env.transactions, env.purchases)
	store := services.NewStoreService(env.items, images)
	statements := services.NewStatementService(env.students, env.transactions, env.purchases)
	studentSvc := services.NewStudentService(env.students, env.items, env.transactions, env.purchases)
	checkout := services.NewCheckoutService(db, env.students, env.items, env.purchases, env.transactions)

	env.teacherHandler = NewTeacherHandler(roster, store, statements, auth)
	env.studentHandler = NewStudentHandler(studentSvc, checkout, auth)
	return env
}

func (e *handlerEnv) createTeacher(t *testing.T, username string) *model.User {
	t.Helper()
	user, err := e.users.Create(context.Background(), &model.User{
		Username:     username,
		PasswordHash: "$2a$10$unused",
		Role:         model.RoleTeacher,
	})
	require.NoError(t, err)
	return user
}

func (e *handlerEnv) createStudent(t *testing.T, teacherID int64, externalID, name, balance string) *model.Student {
	t.Helper()
	student, err := e.students.Create(context.Background(), &model.Student{
		ExternalID: externalID,
		Name:       name,
		Balance:    decimal.RequireFromString(balance),
		TeacherID:  teacherID,
	})
	require.NoError(t, err)
	return student
}

func (e *handlerEnv) createItem(t *testing.T, teacherID int64, name, price string) *model.Item {
	t.Helper()
	item, err := e.items.Create(context.Background(), &model.Item{
		Name:      name,
		Price:     money.Quantize(decimal.RequireFromString(price)),
		TeacherID: teacherID,
	})
	require.NoError(t, err)
	return item
}

// teacherToken logs the teacher in at the session layer and returns the
// cookie value.
func (e *handlerEnv) teacherToken(t *testing.T, teacherID int64) string {
	t.Helper()
	token, err := e.sessions.Create(session.NewTeacherSession(teacherID))
	require.NoError(t, err)
	return token
}

func (e *handlerEnv) studentToken(t *testing.T, student *model.Student) string {
	t.Helper()
	token, err := e.sessions.Create(session.NewStudentSession(student))
	require.NoError(t, err)
	return token
}

func setupTestContext(method, path string, body []byte) *xhttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Init(&fasthttp.Request{}, nil, nil)
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(path)
	if body != nil {
		ctx.Request.SetBody(body)
	}
	return ctx
}

func withToken(ctx *xhttp.RequestCtx, token string) *xhttp.RequestCtx {
	ctx.Request.Header.SetCookie(testCookieName, token)
	return ctx
}
