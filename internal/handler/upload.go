package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pdfdesk/backend/internal/service"
)

// maxUploadBytes caps the whole multipart request.
const maxUploadBytes = 20 << 20

type UploadHandler struct {
	svc    *service.UploadService
	logger *slog.Logger
}

func NewUploadHandler(svc *service.UploadService, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{svc: svc, logger: logger}
}

// UploadFile godoc
// @Summary Upload a PDF
// @Tags upload
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "PDF file"
// @Param title formData string true "Title"
// @Success 200 {object} model.Response{data=model.File}
// @Failure 400 {object} model.ErrorResponse
// @Failure 413 {object} model.ErrorResponse
// @Router /upload/upload-file [post]
func (h *UploadHandler) UploadFile(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			abortWith(c, http.StatusRequestEntityTooLarge, "File is too large", nil)
			return
		}
		abortWith(c, http.StatusBadRequest, "Validation error", map[string]string{"file": "file is required"})
		return
	}

	title := c.PostForm("title")
	if title == "" {
		abortWith(c, http.StatusBadRequest, "Validation error", map[string]string{"title": "title is required"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	defer f.Close()

	file, err := h.svc.UploadFile(c.Request.Context(), title, service.Upload{
		FieldName:   "file",
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "File uploaded successfully", file)
}

// GetFiles godoc
// @Summary List uploaded files
// @Tags upload
// @Produce json
// @Success 200 {object} model.Response{data=[]model.File}
// @Router /upload/get-files [get]
func (h *UploadHandler) GetFiles(c *gin.Context) {
	files, err := h.svc.ListFiles(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "Files are retrieved successfully", files)
}
