package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Body is the standard API response envelope.
type Body struct {
	Success bool        `json:"success"`
	Status  int         `json:"status"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// OK sends a 200 JSON response with data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Body{Success: true, Status: http.StatusOK, Data: data})
}

// Accepted sends a 202 JSON response with data.
func Accepted(c *gin.Context, data interface{}) {
	c.JSON(http.StatusAccepted, Body{Success: true, Status: http.StatusAccepted, Data: data})
}

// BadRequest sends 400 with error message.
func BadRequest(c *gin.Context, msg string) {
	fail(c, http.StatusBadRequest, msg)
}

// Unauthorized sends 401.
func Unauthorized(c *gin.Context, msg string) {
	fail(c, http.StatusUnauthorized, msg)
}

// NotFound sends 404.
func NotFound(c *gin.Context, msg string) {
	fail(c, http.StatusNotFound, msg)
}

// ServiceUnavailable sends 503.
func ServiceUnavailable(c *gin.Context, msg string) {
	fail(c, http.StatusServiceUnavailable, msg)
}

// Internal sends 500.
func Internal(c *gin.Context, msg string) {
	fail(c, http.StatusInternalServerError, msg)
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, Body{Success: false, Status: status, Message: msg})
}
