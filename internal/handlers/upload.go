package handlers

import (
	"io"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/wishlink-backend/internal/apperr"
	"github.com/yungbote/wishlink-backend/internal/logger"
	"github.com/yungbote/wishlink-backend/internal/services"
)

// MaxUploadBytes bounds a single image upload.
const MaxUploadBytes = 10 << 20

type UploadHandler struct {
	log           *logger.Logger
	uploadService services.UploadService
}

func NewUploadHandler(log *logger.Logger, uploadService services.UploadService) *UploadHandler {
	return &UploadHandler{log: log, uploadService: uploadService}
}

func readUploadedFile(c *gin.Context) ([]byte, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return nil, apperr.New(apperr.KindValidation, "missing file upload")
	}
	if fileHeader.Size > MaxUploadBytes {
		return nil, apperr.New(apperr.KindValidation, "file too large")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "failed to open uploaded file", err)
	}
	defer file.Close()
	raw, err := io.ReadAll(io.LimitReader(file, MaxUploadBytes+1))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "failed to read uploaded file", err)
	}
	if len(raw) > MaxUploadBytes {
		return nil, apperr.New(apperr.KindValidation, "file too large")
	}
	return raw, nil
}

func (uh *UploadHandler) UploadAvatar(c *gin.Context) {
	actor, err := actorID(c)
	if err != nil {
		RespondError(c, uh.log, err)
		return
	}
	raw, err := readUploadedFile(c)
	if err != nil {
		RespondError(c, uh.log, err)
		return
	}
	url, err := uh.uploadService.UploadAvatar(c.Request.Context(), actor, raw)
	if err != nil {
		RespondError(c, uh.log, err)
		return
	}
	RespondOK(c, gin.H{"url": url})
}

func (uh *UploadHandler) UploadProductImage(c *gin.Context) {
	actor, err := actorID(c)
	if err != nil {
		RespondError(c, uh.log, err)
		return
	}
	raw, err := readUploadedFile(c)
	if err != nil {
		RespondError(c, uh.log, err)
		return
	}
	url, err := uh.uploadService.UploadProductImage(c.Request.Context(), actor, raw)
	if err != nil {
		RespondError(c, uh.log, err)
		return
	}
	RespondOK(c, gin.H{"url": url})
}

func (uh *UploadHandler) DeleteImage(c *gin.Context) {
	if _, err := actorID(c); err != nil {
		RespondError(c, uh.log, err)
		return
	}
	var req struct {
		URL string `json:"url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, uh.log, apperr.New(apperr.KindValidation, "invalid request body"))
		return
	}
	if err := uh.uploadService.DeleteImage(c.Request.Context(), req.URL); err != nil {
		RespondError(c, uh.log, err)
		return
	}
	RespondOK(c, gin.H{"message": "image deleted"})
}
