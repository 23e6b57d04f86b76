package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/wishlink-backend/internal/apperr"
	"github.com/yungbote/wishlink-backend/internal/logger"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

var kindStatus = map[apperr.Kind]int{
	apperr.KindValidation:     http.StatusBadRequest,
	apperr.KindAuthentication: http.StatusUnauthorized,
	apperr.KindAuthorization:  http.StatusForbidden,
	apperr.KindNotFound:       http.StatusNotFound,
	apperr.KindConflict:       http.StatusConflict,
	apperr.KindUpstream:       http.StatusServiceUnavailable,
	apperr.KindUnexpected:     http.StatusInternalServerError,
}

var kindCode = map[apperr.Kind]string{
	apperr.KindValidation:     "validation",
	apperr.KindAuthentication: "authentication",
	apperr.KindAuthorization:  "authorization",
	apperr.KindNotFound:       "not_found",
	apperr.KindConflict:       "conflict",
	apperr.KindUpstream:       "upstream_unavailable",
	apperr.KindUnexpected:     "internal",
}

// RespondError maps the error's taxonomy kind to a status code. Unexpected
// errors are logged with full detail and surfaced with a generic message.
func RespondError(c *gin.Context, log *logger.Logger, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindUnexpected && log != nil {
		log.Error("Unexpected error handling request", "path", c.FullPath(), "error", err)
	}
	c.JSON(kindStatus[kind], ErrorEnvelope{
		Error: APIError{
			Message: apperr.Message(err),
			Code:    kindCode[kind],
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
