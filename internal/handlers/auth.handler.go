package handlers

import (
	"context"
	"errors"

	"github.com/fasthttp/router"
	"github.com/jabenlo/pstep-bank-store/internal/model"
	"github.com/jabenlo/pstep-bank-store/internal/repository"
	"github.com/jabenlo/pstep-bank-store/internal/session"
	xhttp "github.com/jabenlo/pstep-bank-store/pkg/http"
)

type AuthService interface {
	RegisterTeacher(ctx context.Context, username, password string) (*model.User, error)
	LoginTeacher(ctx context.Context, username, password string) (*model.User, error)
	LoginStudent(ctx context.Context, externalID string) (*model.Student, error)
	GetProfile(ctx context.Context, userID int64) (*model.User, error)
	UpdateProfile(ctx context.Context, userID int64, username, newPassword string) (*model.User, error)
}

type AuthHandler struct {
	svc  AuthService
	auth *SessionAuth
}

func RegisterAuthRoutes(e *router.Group, h *AuthHandler) {
	e.POST("/register", h.Register)
	e.POST("/login", h.Login)
	e.POST("/logout", h.Logout)
	e.GET("/check-auth", h.CheckAuth)
	e.GET("/profile", h.auth.RequireTeacher(h.GetProfile))
	e.PUT("/profile", h.auth.RequireTeacher(h.UpdateProfile))
}

func NewAuthHandler(svc AuthService, auth *SessionAuth) *AuthHandler {
	return &AuthHandler{
		svc:  svc,
		auth: auth,
	}
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	StudentID string `json:"student_id"`
}

type profileUpdateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

/* --------------------------------- Routes ----------------------------------- */

func (h *AuthHandler) Register(ctx *xhttp.RequestCtx) {
	var req registerRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(ctx, xhttp.StatusBadRequest, "username and password are required")
		return
	}

	user, err := h.svc.RegisterTeacher(ctx, req.Username, req.Password)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	// registration logs the teacher straight in
	if err := h.auth.Issue(ctx, session.NewTeacherSession(user.ID)); err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, toUserJSON(user))
}

// Login handles both principals: a student_id logs a student in, otherwise
// username/password logs a teacher in.
func (h *AuthHandler) Login(ctx *xhttp.RequestCtx) {
	var req loginRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	if req.StudentID != "" {
		student, err := h.svc.LoginStudent(ctx, req.StudentID)
		if err != nil {
			writeServiceError(ctx, err)
			return
		}
		if err := h.auth.Issue(ctx, session.NewStudentSession(student)); err != nil {
			writeServiceError(ctx, err)
			return
		}
		writeJSON(ctx, xhttp.StatusOK, map[string]any{
			"user_type": session.UserTypeStudent,
			"student":   toStudentJSON(student),
		})
		return
	}

	if req.Username == "" || req.Password == "" {
		writeError(ctx, xhttp.StatusBadRequest, "username and password are required")
		return
	}
	user, err := h.svc.LoginTeacher(ctx, req.Username, req.Password)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	if err := h.auth.Issue(ctx, session.NewTeacherSession(user.ID)); err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, map[string]any{
		"user_type": session.UserTypeTeacher,
		"user":      toUserJSON(user),
	})
}

func (h *AuthHandler) Logout(ctx *xhttp.RequestCtx) {
	h.auth.Clear(ctx)
	writeJSON(ctx, xhttp.StatusOK, map[string]string{"message": "logged out"})
}

// CheckAuth reports the current principal. The student payload comes from
// the login-time snapshot in the session, not a fresh read.
func (h *AuthHandler) CheckAuth(ctx *xhttp.RequestCtx) {
	sess, err := h.auth.Current(ctx)
	if err != nil {
		writeJSON(ctx, xhttp.StatusOK, map[string]any{"authenticated": false})
		return
	}

	if sess.IsStudent() && sess.Student != nil {
		writeJSON(ctx, xhttp.StatusOK, map[string]any{
			"authenticated": true,
			"user_type":     session.UserTypeStudent,
			"student":       toStudentJSON(sess.Student),
		})
		return
	}

	user, err := h.svc.GetProfile(ctx, sess.TeacherID)
	if err != nil {
		// a teacher deleted mid-session is simply not logged in anymore
		if errors.Is(err, repository.ErrNotFound) {
			writeJSON(ctx, xhttp.StatusOK, map[string]any{"authenticated": false})
			return
		}
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, map[string]any{
		"authenticated": true,
		"user_type":     session.UserTypeTeacher,
		"user":          toUserJSON(user),
	})
}

func (h *AuthHandler) GetProfile(ctx *xhttp.RequestCtx, sess *session.Session) {
	user, err := h.svc.GetProfile(ctx, sess.TeacherID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, map[string]any{"user": toUserJSON(user)})
}

func (h *AuthHandler) UpdateProfile(ctx *xhttp.RequestCtx, sess *session.Session) {
	var req profileUpdateRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	user, err := h.svc.UpdateProfile(ctx, sess.TeacherID, req.Username, req.Password)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, map[string]any{"user": toUserJSON(user)})
}
