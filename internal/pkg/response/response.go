// Package response writes the {code,message,data} envelope used by every HTTP handler.
package response

import (
	"net/http"

	"github.com/fekuna/omnipos-pricing-service/internal/apperror"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: 0, Message: "success", Data: data})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Code: 0, Message: "success", Data: data})
}

// Error writes an error envelope. code is the HTTP status times 100 plus a detail.
func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = http.StatusInternalServerError
	}
	c.AbortWithStatusJSON(statusCode, Response{Code: code, Message: message})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

func Unauthorized(c *gin.Context, message string) {
	Error(c, 40100, message)
}

// AppError maps the use case error taxonomy onto HTTP statuses. Fatal errors are logged
// and their detail hidden from the caller.
func AppError(c *gin.Context, log logger.ZapLogger, err error) {
	switch apperror.KindOf(err) {
	case apperror.KindValidation:
		Error(c, 40000, err.Error())
	case apperror.KindNotFound:
		Error(c, 40400, err.Error())
	case apperror.KindConflict:
		Error(c, 40900, err.Error())
	default:
		log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		Error(c, 50000, "internal error")
	}
}
