package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes carried in ErrorResponse.Code
const (
	CodeInvalidRequest   = 400001
	CodeUnsupportedFile  = 400002
	CodeEmptyMessage     = 400003
	CodeMissingAPIKey    = 401001
	CodeInvalidAPIKey    = 403001
	CodeTenantExists     = 409001
	CodePayloadTooLarge  = 413001
	CodeInternal         = 500001
	CodeIndexUnavailable = 503001
	CodeReindexConflict  = 503002
)

// ErrorResponse error body
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// Success writes data as a 200 JSON body
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Error error response
func Error(c *gin.Context, httpCode int, errCode int, message string) {
	c.AbortWithStatusJSON(httpCode, ErrorResponse{
		Code:    errCode,
		Message: message,
	})
}

// ErrorWithDetail error response with detail
func ErrorWithDetail(c *gin.Context, httpCode int, errCode int, message, detail string) {
	c.AbortWithStatusJSON(httpCode, ErrorResponse{
		Code:    errCode,
		Message: message,
		Detail:  detail,
	})
}
