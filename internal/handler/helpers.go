package handler

import (
	"errors"
	"mime/multipart"
	"net/http"

	"bakery-backend/internal/apperr"
	"bakery-backend/internal/storage"
	"bakery-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// writeError maps service errors to HTTP status codes.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperr.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, apperr.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperr.ErrStorage):
		status = http.StatusBadGateway
	}
	c.JSON(status, response.Error(status, err.Error()))
}

// requestBaseURL reconstructs the externally visible base URL of the request
// so image links resolve against whatever host the client used.
func requestBaseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}

// formUploads collects the files posted under the given multipart field.
func formUploads(c *gin.Context, field string) ([]storage.Upload, []multipart.File, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, nil, nil // no multipart body at all
	}

	var uploads []storage.Upload
	var open []multipart.File
	for _, fh := range form.File[field] {
		f, err := fh.Open()
		if err != nil {
			closeAll(open)
			return nil, nil, err
		}
		open = append(open, f)
		uploads = append(uploads, storage.Upload{OriginalName: fh.Filename, Content: f})
	}
	return uploads, open, nil
}

func closeAll(files []multipart.File) {
	for _, f := range files {
		_ = f.Close()
	}
}
