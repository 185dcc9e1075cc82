package handler

import (
	"errors"
	"net/http"

	"github.com/BloggingApp/blog-gateway/internal/apiclient"
	"github.com/BloggingApp/blog-gateway/internal/model"
	"github.com/gin-gonic/gin"
)

// uploadFromRequest returns the optional image part of a multipart request.
// The returned close func is never nil.
func uploadFromRequest(c *gin.Context) (*model.Upload, func(), error) {
	file, fileHeader, err := c.Request.FormFile(apiclient.FileField)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, err
	}

	upload := &model.Upload{
		Content:  file,
		MIMEType: fileHeader.Header.Get("Content-Type"),
		Filename: fileHeader.Filename,
	}

	return upload, func() { file.Close() }, nil
}
