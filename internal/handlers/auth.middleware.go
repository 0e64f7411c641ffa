package handlers

import (
	"errors"
	"time"

	"github.com/jabenlo/pstep-bank-store/internal/session"
	xhttp "github.com/jabenlo/pstep-bank-store/pkg/http"
	"github.com/jabenlo/pstep-bank-store/pkg/logger"
)

// SessionAuth resolves the session cookie and guards role-scoped routes.
type SessionAuth struct {
	sessions   *session.Store
	cookieName string
}

func NewSessionAuth(sessions *session.Store, cookieName string) *SessionAuth {
	return &SessionAuth{
		sessions:   sessions,
		cookieName: cookieName,
	}
}

// Current returns the session for the request's cookie, or ErrNoSession.
func (a *SessionAuth) Current(ctx *xhttp.RequestCtx) (*session.Session, error) {
	return a.sessions.Get(xhttp.Cookie(ctx, a.cookieName))
}

// Issue stores the session and sets the cookie on the response.
func (a *SessionAuth) Issue(ctx *xhttp.RequestCtx, sess *session.Session) error {
	token, err := a.sessions.Create(sess)
	if err != nil {
		return err
	}
	xhttp.SetCookie(ctx, a.cookieName, token, time.Now().Add(a.sessions.TTL(sess)))
	return nil
}

// Save persists session mutations such as cart changes.
func (a *SessionAuth) Save(sess *session.Session) error {
	return a.sessions.Save(sess)
}

// Clear drops the session and expires the cookie.
func (a *SessionAuth) Clear(ctx *xhttp.RequestCtx) {
	token := xhttp.Cookie(ctx, a.cookieName)
	if err := a.sessions.Delete(token); err != nil {
		logger.Warn("failed to delete session", "error", err)
	}
	xhttp.ExpireCookie(ctx, a.cookieName)
}

func (a *SessionAuth) RequireTeacher(next func(ctx *xhttp.RequestCtx, sess *session.Session)) xhttp.RequestHandler {
	return func(ctx *xhttp.RequestCtx) {
		sess, err := a.Current(ctx)
		if err != nil {
			if errors.Is(err, session.ErrNoSession) {
				writeError(ctx, xhttp.StatusUnauthorized, "authentication required")
				return
			}
			writeServiceError(ctx, err)
			return
		}
		if !sess.IsTeacher() {
			writeError(ctx, xhttp.StatusForbidden, "teacher access required")
			return
		}
		next(ctx, sess)
	}
}

func (a *SessionAuth) RequireStudent(next func(ctx *xhttp.RequestCtx, sess *session.Session)) xhttp.RequestHandler {
	return func(ctx *xhttp.RequestCtx) {
		sess, err := a.Current(ctx)
		if err != nil {
			if errors.Is(err, session.ErrNoSession) {
				writeError(ctx, xhttp.StatusUnauthorized, "authentication required")
				return
			}
			writeServiceError(ctx, err)
			return
		}
		if !sess.IsStudent() {
			writeError(ctx, xhttp.StatusForbidden, "student access required")
			return
		}
		next(ctx, sess)
	}
}
