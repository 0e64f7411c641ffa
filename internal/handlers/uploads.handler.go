package handlers

import (
	"os"

	"github.com/fasthttp/router"
	"github.com/jabenlo/pstep-bank-store/internal/uploads"
	xhttp "github.com/jabenlo/pstep-bank-store/pkg/http"
	"github.com/valyala/fasthttp"
)

// UploadsHandler serves stored item images. Names are uuid-generated so
// there is nothing guessable to protect; the store strips any directory
// components.
type UploadsHandler struct {
	images *uploads.Store
}

func RegisterUploadRoutes(r *router.Router, h *UploadsHandler) {
	r.GET("/uploads/{name}", h.GetImage)
}

func NewUploadsHandler(images *uploads.Store) *UploadsHandler {
	return &UploadsHandler{
		images: images,
	}
}

func (h *UploadsHandler) GetImage(ctx *xhttp.RequestCtx) {
	name, _ := ctx.UserValue("name").(string)
	path := h.images.LocalPath(name)

	if _, err := os.Stat(path); err != nil {
		writeError(ctx, xhttp.StatusNotFound, "not found")
		return
	}
	fasthttp.ServeFile(ctx, path)
}
