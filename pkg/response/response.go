package response

import (
	"github.com/gin-gonic/gin"

	appErrors "github.com/operank/scheduling-api/pkg/errors"
)

// Envelope is the canonical API response shape.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// ErrorBody carries a machine readable error code plus a human message.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Meta holds pagination details for list responses.
type Meta struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// OK writes a success envelope with the given status code.
func OK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Envelope{Success: true, Data: data})
}

// OKWithMeta writes a success envelope with pagination metadata.
func OKWithMeta(c *gin.Context, status int, data interface{}, meta *Meta) {
	c.JSON(status, Envelope{Success: true, Data: data, Meta: meta})
}

// Fail writes an error envelope derived from any error value.
func Fail(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	c.JSON(appErr.Status, Envelope{
		Success: false,
		Error:   &ErrorBody{Code: appErr.Code, Message: appErr.Message},
	})
}

// FailWithStatus writes an error envelope with an explicit status override.
func FailWithStatus(c *gin.Context, status int, code, message string) {
	c.JSON(status, Envelope{
		Success: false,
		Error:   &ErrorBody{Code: code, Message: message},
	})
}

// NewMeta builds pagination metadata from raw counts.
func NewMeta(page, perPage, total int) *Meta {
	if perPage <= 0 {
		perPage = 1
	}
	totalPages := total / perPage
	if total%perPage != 0 {
		totalPages++
	}
	return &Meta{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}
