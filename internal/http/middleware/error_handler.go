package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/gig-escrow/internal/logger"
	"github.com/ignatzorin/gig-escrow/internal/pkg/apperror"
)

// ErrorResponse - тело ответа с ошибкой.
type ErrorResponse struct {
	Error string             `json:"error"`
	Code  apperror.ErrorCode `json:"code"`
}

// ErrorHandler обрабатывает ошибки централизованно.
// Внутренние ошибки логируются с причиной и маскируются для клиента.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err

		var appErr *apperror.AppError
		if !errors.As(err, &appErr) {
			appErr = apperror.Internal(err)
		}

		fields := logrus.Fields{
			"code":   appErr.Code,
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		}
		if appErr.Code == apperror.ErrCodeInternal {
			fields["error"] = err.Error()
			logger.Component("http").WithFields(fields).Error("ошибка обработки запроса")
		} else {
			logger.Component("http").WithFields(fields).Debug(appErr.Message)
		}

		c.JSON(appErr.HTTPStatus, ErrorResponse{Error: appErr.Message, Code: appErr.Code})
	}
}

// abortWithError прерывает цепочку и сразу отвечает ошибкой.
func abortWithError(c *gin.Context, appErr *apperror.AppError) {
	c.AbortWithStatusJSON(appErr.HTTPStatus, ErrorResponse{Error: appErr.Message, Code: appErr.Code})
}
