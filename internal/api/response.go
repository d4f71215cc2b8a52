package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func Error(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

func BadRequest(c *gin.Context, msg string)  { Error(c, http.StatusBadRequest, msg) }
func NotFound(c *gin.Context, msg string)    { Error(c, http.StatusNotFound, msg) }
func Conflict(c *gin.Context, msg string)    { Error(c, http.StatusConflict, msg) }
func Internal(c *gin.Context, msg string)    { Error(c, http.StatusInternalServerError, msg) }
func TooManyRequests(c *gin.Context)         { Error(c, http.StatusTooManyRequests, "too many requests") }
func Unavailable(c *gin.Context, msg string) { Error(c, http.StatusServiceUnavailable, msg) }

// Invalid 返回 422，并附带逐字段的校验错误。
func Invalid(c *gin.Context, msg string, fields any) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"error": msg, "fields": fields})
}
