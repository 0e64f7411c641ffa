package xhttp

import (
	"time"

	"github.com/valyala/fasthttp"
)

// SetCookie writes an HTTP-only cookie scoped to the whole site.
func SetCookie(ctx *RequestCtx, name, value string, expires time.Time) {
	c := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(c)

	c.SetKey(name)
	c.SetValue(value)
	c.SetPath("/")
	c.SetHTTPOnly(true)
	c.SetSameSite(fasthttp.CookieSameSiteLaxMode)
	if !expires.IsZero() {
		c.SetExpire(expires)
	}
	ctx.Response.Header.SetCookie(c)
}

// Cookie returns the value of the named request cookie, or "".
func Cookie(ctx *RequestCtx, name string) string {
	return string(ctx.Request.Header.Cookie(name))
}

// ExpireCookie instructs the client to drop the named cookie.
func ExpireCookie(ctx *RequestCtx, name string) {
	SetCookie(ctx, name, "", fasthttp.CookieExpireDelete)
}
