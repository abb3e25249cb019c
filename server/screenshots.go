package server

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rustyeddy/tradejournal/blob"
	"github.com/rustyeddy/tradejournal/service"
)

type ScreenshotHandler struct {
	Service  *service.JournalService
	MaxBytes int64
}

func (h *ScreenshotHandler) Register(r *gin.Engine) {
	r.POST("/api/screenshots", h.upload)
	r.GET("/screenshots/*path", h.serve)
}

func (h *ScreenshotHandler) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxBytes)
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			Error(c, http.StatusRequestEntityTooLarge, "file too large", nil)
			return
		}
		Error(c, http.StatusBadRequest, "missing file", nil)
		return
	}
	f, err := fh.Open()
	if err != nil {
		fail(c, err)
		return
	}
	defer f.Close()

	url, err := h.Service.UploadScreenshot(c.Request.Context(), fh.Filename, f, fh.Header.Get("Content-Type"))
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, gin.H{"url": url}, nil)
}

// serve streams a stored screenshot back. It is what resolves the URLs
// handed out by the local blob store.
func (h *ScreenshotHandler) serve(c *gin.Context) {
	blobs := h.Service.Blobs()
	if blobs == nil {
		Error(c, http.StatusNotFound, "no blob store", nil)
		return
	}
	name := strings.TrimPrefix(c.Param("path"), "/")
	rc, err := blobs.Get(c.Request.Context(), name)
	switch {
	case errors.Is(err, blob.ErrNotFound), errors.Is(err, blob.ErrInvalidName):
		Error(c, http.StatusNotFound, "screenshot not found", nil)
		return
	case err != nil:
		fail(c, err)
		return
	}
	defer rc.Close()

	c.Header("Content-Type", blob.ContentType(name))
	c.Header("Cache-Control", "public, max-age=86400")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, rc)
}
